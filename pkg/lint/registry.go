package lint

import (
	"fmt"
	"sort"
)

// Registry is an immutable, ordered set of issues.
type Registry struct {
	issues []*Issue
	byID   map[string]*Issue
}

// NewRegistry builds a registry from issues. Issue IDs must be unique.
func NewRegistry(issues ...*Issue) (*Registry, error) {
	r := &Registry{
		issues: make([]*Issue, 0, len(issues)),
		byID:   make(map[string]*Issue, len(issues)),
	}
	for _, issue := range issues {
		if issue == nil {
			continue
		}
		if issue.ID == "" {
			return nil, fmt.Errorf("issue without an ID: %q", issue.Summary)
		}
		if _, dup := r.byID[issue.ID]; dup {
			return nil, fmt.Errorf("duplicate issue ID %q", issue.ID)
		}
		if issue.Implementation.NewDetector == nil {
			return nil, fmt.Errorf("issue %q has no detector", issue.ID)
		}
		r.byID[issue.ID] = issue
		r.issues = append(r.issues, issue)
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
// Use it for registries built from compiled-in issues.
func MustRegistry(issues ...*Issue) *Registry {
	r, err := NewRegistry(issues...)
	if err != nil {
		panic(err)
	}
	return r
}

// Issues returns the issues in registration order.
func (r *Registry) Issues() []*Issue {
	out := make([]*Issue, len(r.issues))
	copy(out, r.issues)
	return out
}

// Issue returns the issue with the given ID.
func (r *Registry) Issue(id string) (*Issue, bool) {
	issue, ok := r.byID[id]
	return issue, ok
}

// IDs returns the sorted issue IDs.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.issues))
	for _, issue := range r.issues {
		ids = append(ids, issue.ID)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of issues.
func (r *Registry) Len() int {
	return len(r.issues)
}

// With returns a new registry containing r's issues followed by extra.
func (r *Registry) With(extra ...*Issue) (*Registry, error) {
	all := append(r.Issues(), extra...)
	return NewRegistry(all...)
}
