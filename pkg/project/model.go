package project

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/varlint/pkg/core"
)

// Variant is one named build configuration of a platform project.
type Variant struct {
	Name      string
	BuildType string
	Release   bool
}

// TaskName returns the per-variant lint command name, e.g. "lintDebug".
func (v Variant) TaskName() string {
	if v.Name == "" {
		return "lint"
	}
	return "lint" + strings.ToUpper(v.Name[:1]) + v.Name[1:]
}

// Description describes the per-variant lint command.
func (v Variant) Description() string {
	if v.Name == "" {
		return "Runs lint on all variants."
	}
	return "Runs lint on the " + strings.ToUpper(v.Name[:1]) + v.Name[1:] + " build."
}

// Model is the variant model of a platform project.
type Model struct {
	Name     string
	Variants []Variant
}

// Variant returns the variant with the given name.
func (m *Model) Variant(name string) (Variant, bool) {
	for _, v := range m.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// VariantNames returns the variant names in declaration order.
func (m *Model) VariantNames() []string {
	names := make([]string, len(m.Variants))
	for i, v := range m.Variants {
		names[i] = v.Name
	}
	return names
}

// First returns the variant with the lexicographically smallest name.
func (m *Model) First() (Variant, bool) {
	if len(m.Variants) == 0 {
		return Variant{}, false
	}
	sorted := make([]Variant, len(m.Variants))
	copy(sorted, m.Variants)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted[0], true
}

// ModelBuilder produces the variant model of a platform project.
type ModelBuilder interface {
	BuildModel() (*Model, error)
}

// configBuilder builds a Model from the project section of varlint.yaml.
type configBuilder struct {
	cfg core.ProjectConfig
}

// NewModelBuilder returns a ModelBuilder for a platform project, or nil when
// the project has no variant model.
func NewModelBuilder(cfg core.ProjectConfig) ModelBuilder {
	if !cfg.Platform {
		return nil
	}
	return &configBuilder{cfg: cfg}
}

func (b *configBuilder) BuildModel() (*Model, error) {
	model := &Model{Name: b.cfg.Name}
	seen := make(map[string]bool, len(b.cfg.Variants))
	for _, vc := range b.cfg.Variants {
		if vc.Name == "" {
			return nil, fmt.Errorf("project %q: variant without a name", b.cfg.Name)
		}
		if seen[vc.Name] {
			return nil, fmt.Errorf("project %q: duplicate variant %q", b.cfg.Name, vc.Name)
		}
		seen[vc.Name] = true
		buildType := vc.BuildType
		if buildType == "" {
			buildType = vc.Name
		}
		model.Variants = append(model.Variants, Variant{
			Name:      vc.Name,
			BuildType: buildType,
			Release:   vc.Release,
		})
	}
	return model, nil
}
