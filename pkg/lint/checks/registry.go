package checks

import (
	"github.com/leapstack-labs/varlint/pkg/lint"
)

// BuiltinIssues returns the built-in issues in registration order.
func BuiltinIssues() []*lint.Issue {
	return []*lint.Issue{
		StopShip,
		MergeMarker,
		HardcodedSecret,
		TrailingWhitespace,
		LongLine,
		TodoComment,
		DynamicVersion,
		UnusedResources,
	}
}

// NewBuiltinRegistry returns the registry of all built-in issues plus extra.
func NewBuiltinRegistry(extra ...*lint.Issue) (*lint.Registry, error) {
	return lint.NewRegistry(append(BuiltinIssues(), extra...)...)
}

// NewPlatformRegistry returns the registry used for platform projects. The
// DynamicVersion issue is bound to the YAML-aware detector; the substitution
// happens here, once, and the registry is not modified afterwards.
func NewPlatformRegistry(extra ...*lint.Issue) (*lint.Registry, error) {
	builtin := BuiltinIssues()
	issues := make([]*lint.Issue, 0, len(builtin)+len(extra))
	for _, issue := range builtin {
		if issue == DynamicVersion {
			issue = issue.WithImplementation(StructuredDynamicVersion)
		}
		issues = append(issues, issue)
	}
	return lint.NewRegistry(append(issues, extra...)...)
}

// NewNonPlatformRegistry returns the registry used for projects without a
// variant model. Platform-only issues are left out.
func NewNonPlatformRegistry(extra ...*lint.Issue) (*lint.Registry, error) {
	var issues []*lint.Issue
	for _, issue := range BuiltinIssues() {
		if !issue.PlatformOnly {
			issues = append(issues, issue)
		}
	}
	return lint.NewRegistry(append(issues, extra...)...)
}
