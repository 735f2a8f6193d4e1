package scm

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// changedFilter selects added, copied, modified, renamed, type-changed,
// unmerged, unknown and broken files; deletions have nothing to lint.
const changedFilter = "--diff-filter=ACMRTUXB"

// Git reads changes from the repository containing a project directory.
type Git struct {
	dir  string
	root string
}

// NewGit returns a Git for the repository containing dir.
func NewGit(ctx context.Context, dir string) (*Git, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	g := &Git{dir: abs}
	out, err := g.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("%s is not inside a git repository: %w", dir, err)
	}
	root := strings.TrimSpace(string(out))
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	g.root = root
	return g, nil
}

// Root returns the repository root.
func (g *Git) Root() string {
	return g.root
}

// ChangedFiles returns the project files changed in the working tree
// relative to HEAD, plus untracked files. With since set, files changed on
// the branch since its merge base with since are included as well.
func (g *Git) ChangedFiles(ctx context.Context, since string) ([]string, error) {
	out, err := g.run(ctx, "diff", "--name-only", changedFilter, "HEAD", "--", g.dir)
	if err != nil {
		return nil, fmt.Errorf("unable to find changes: %w", err)
	}
	files := parseNames(out)

	if since != "" {
		out, err = g.run(ctx, "diff", "--name-only", changedFilter, since+"...HEAD", "--", g.dir)
		if err != nil {
			return nil, fmt.Errorf("unable to check diff vs. %s: %w", since, err)
		}
		files = append(files, parseNames(out)...)
	}

	out, err = g.run(ctx, "ls-files", "--others", "--exclude-standard", "--full-name", "--", g.dir)
	if err != nil {
		return nil, fmt.Errorf("unable to determine untracked files: %w", err)
	}
	files = append(files, parseNames(out)...)

	return g.relativize(files), nil
}

// ChangedLines returns the changed line numbers per project file.
func (g *Git) ChangedLines(ctx context.Context, since string) (map[string][]int, error) {
	base := "HEAD"
	if since != "" {
		out, err := g.run(ctx, "merge-base", since, "HEAD")
		if err != nil {
			return nil, fmt.Errorf("unable to find merge base with %s: %w", since, err)
		}
		base = strings.TrimSpace(string(out))
	}
	out, err := g.run(ctx, "diff", "--unified=0", "--no-color", "--no-ext-diff", changedFilter, base, "--", g.dir)
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}
	lines, err := ParseChangedLines(out)
	if err != nil {
		return nil, err
	}
	rel := make(map[string][]int, len(lines))
	for f, ls := range lines {
		if p, ok := g.relative(f); ok {
			rel[p] = ls
		}
	}
	return rel, nil
}

// Changes returns the change set of the project. Line information is only
// collected when withLines is set.
func (g *Git) Changes(ctx context.Context, since string, withLines bool) (*ChangeSet, error) {
	files, err := g.ChangedFiles(ctx, since)
	if err != nil {
		return nil, err
	}
	var lines map[string][]int
	if withLines {
		if lines, err = g.ChangedLines(ctx, since); err != nil {
			return nil, err
		}
		// untracked files have no diff and are changed on every line
		present := make(map[string]bool, len(files))
		for _, f := range files {
			present[f] = true
		}
		for f := range lines {
			if !present[f] {
				delete(lines, f)
			}
		}
	}
	return NewChangeSet(files, lines), nil
}

// ParseChangedLines extracts the added or modified line numbers per file
// from a unified diff.
func ParseChangedLines(input []byte) (map[string][]int, error) {
	m := map[string][]int{}
	fds, err := diff.ParseMultiFileDiff(input)
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}
	for _, fd := range fds {
		if fd.NewName == "/dev/null" {
			continue
		}
		m[strings.TrimPrefix(fd.NewName, "b/")] = parseHunks(fd.Hunks)
	}
	return m, nil
}

func parseHunks(hunks []*diff.Hunk) []int {
	ret := []int{}
	for _, hunk := range hunks {
		for i := 0; i < int(hunk.NewLines); i++ {
			ret = append(ret, int(hunk.NewStartLine)+i)
		}
	}
	return ret
}

func parseNames(out []byte) []string {
	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// relativize converts repository-relative paths to project-relative ones,
// dropping duplicates and files outside the project.
func (g *Git) relativize(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		p, ok := g.relative(f)
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func (g *Git) relative(worktreePath string) (string, bool) {
	dir := g.dir
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	p, err := filepath.Rel(dir, filepath.Join(g.root, filepath.FromSlash(worktreePath)))
	if err != nil || p == ".." || strings.HasPrefix(p, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(p), true
}

func (g *Git) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", g.dir}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s: %w\nOutput:\n%s", strings.Join(args, " "), err, stderr.String())
	}
	return out, nil
}

// HookPath returns the path of the named git hook, honouring core.hooksPath
// and linked worktrees.
func (g *Git) HookPath(ctx context.Context, name string) (string, error) {
	out, err := g.run(ctx, "rev-parse", "--git-path", "hooks/"+name)
	if err != nil {
		return "", err
	}
	path := strings.TrimSpace(string(out))
	if !filepath.IsAbs(path) {
		path = filepath.Join(g.dir, path)
	}
	return path, nil
}
