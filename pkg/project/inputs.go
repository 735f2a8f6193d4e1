package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"

	"github.com/leapstack-labs/varlint/pkg/core"
)

// VariantInputs are the files a lint client analyzes for one variant.
// All paths are relative to ProjectDir and use forward slashes.
type VariantInputs struct {
	Name        string
	ProjectDir  string
	Sources     []string
	Resources   []string
	TestSources []string
	BuildFile   string
}

// Files returns every input file in a stable order.
func (in *VariantInputs) Files() []string {
	var files []string
	files = append(files, in.Sources...)
	files = append(files, in.Resources...)
	files = append(files, in.TestSources...)
	if in.BuildFile != "" {
		files = append(files, in.BuildFile)
	}
	return files
}

// Abs returns the absolute path of a project-relative input path.
func (in *VariantInputs) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(in.ProjectDir, filepath.FromSlash(rel))
}

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	"build":        true,
	"node_modules": true,
	"vendor":       true,
}

// Resolver resolves VariantInputs from the project configuration.
type Resolver struct {
	dir string
	cfg core.ProjectConfig
}

// NewResolver creates a resolver for the project rooted at dir.
func NewResolver(dir string, cfg core.ProjectConfig) *Resolver {
	return &Resolver{dir: dir, cfg: cfg}
}

// Inputs returns the inputs for the named variant. The empty name selects the
// single configuration of a non-platform project. It returns nil without an
// error for unknown variants and variants excluded from linting.
func (r *Resolver) Inputs(name string) (*VariantInputs, error) {
	sources := r.cfg.Sources
	resources := r.cfg.Resources

	if name != "" {
		var variant *core.VariantConfig
		for i := range r.cfg.Variants {
			if r.cfg.Variants[i].Name == name {
				variant = &r.cfg.Variants[i]
				break
			}
		}
		if variant == nil || !variant.IsLinted() {
			return nil, nil
		}
		sources = append(append([]string{}, sources...), variant.Sources...)
		resources = append(append([]string{}, resources...), variant.Resources...)
	}
	if len(sources) == 0 {
		sources = []string{"."}
	}

	inputs := &VariantInputs{Name: name, ProjectDir: r.dir}

	var err error
	if inputs.Sources, err = r.collect(sources, r.cfg.Extensions); err != nil {
		return nil, err
	}
	if inputs.Resources, err = r.collect(resources, nil); err != nil {
		return nil, err
	}
	if inputs.TestSources, err = r.collect(r.cfg.TestSources, r.cfg.Extensions); err != nil {
		return nil, err
	}

	// Resources and test sources win over a broad source root.
	inputs.Sources = subtract(inputs.Sources, inputs.Resources, inputs.TestSources)

	if r.cfg.BuildFile != "" {
		if _, err := os.Stat(filepath.Join(r.dir, r.cfg.BuildFile)); err == nil {
			inputs.BuildFile = filepath.ToSlash(r.cfg.BuildFile)
			inputs.Sources = subtract(inputs.Sources, []string{inputs.BuildFile})
		}
	}
	return inputs, nil
}

// collect walks each root and returns the regular files whose extension is in
// exts (all files when exts is empty), deduplicated and sorted.
func (r *Resolver) collect(roots, exts []string) ([]string, error) {
	seen := make(map[string]bool)
	for _, root := range roots {
		abs := filepath.Join(r.dir, root)
		info, err := os.Stat(abs)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("failed to stat source set %s: %w", root, err)
		}
		if !info.IsDir() {
			if matchesExt(abs, exts) {
				seen[r.rel(abs)] = true
			}
			continue
		}

		err = godirwalk.Walk(abs, &godirwalk.Options{
			Unsorted: true,
			Callback: func(name string, de *godirwalk.Dirent) error {
				if de.IsDir() {
					if name != abs && (strings.HasPrefix(de.Name(), ".") || skipDirs[de.Name()]) {
						return filepath.SkipDir
					}
					return nil
				}
				if de.IsRegular() && matchesExt(name, exts) {
					seen[r.rel(name)] = true
				}
				return nil
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk source set %s: %w", root, err)
		}
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

func (r *Resolver) rel(path string) string {
	rel, err := filepath.Rel(r.dir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func matchesExt(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func subtract(files []string, remove ...[]string) []string {
	drop := make(map[string]bool)
	for _, list := range remove {
		for _, f := range list {
			drop[f] = true
		}
	}
	if len(drop) == 0 {
		return files
	}
	out := files[:0:0]
	for _, f := range files {
		if !drop[f] {
			out = append(out, f)
		}
	}
	return out
}
