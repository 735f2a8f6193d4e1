package checks

import (
	"fmt"
	"strings"

	deferredregex "github.com/peterebden/go-deferred-regex"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
)

// DynamicVersion flags dependency versions that can resolve differently
// between builds.
var DynamicVersion = &lint.Issue{
	ID:      "DynamicVersion",
	Summary: "Dependency uses a dynamic version",
	Explanation: "Using `latest`, wildcards, `+` suffixes or range operators for dependency versions can cause " +
		"unexpected version updates and hard to reproduce builds. Pin an exact version instead.",
	Category:         "Correctness",
	Priority:         4,
	Severity:         core.SeverityWarning,
	EnabledByDefault: true,
	Implementation: lint.Implementation{
		Scope:       lint.ScopeBuildFile,
		NewDetector: lineDetector(checkDynamicVersionLine),
	},
}

// StructuredDynamicVersion reads the build file as YAML. It replaces the
// textual implementation in the platform registry.
var StructuredDynamicVersion = lint.Implementation{
	Scope:       lint.ScopeBuildFile,
	NewDetector: func() lint.Detector { return lint.DetectorFunc(checkDynamicVersionYAML) },
}

var versionAssignment = deferredregex.DeferredRegex{Re: `(?i)(?:^|[\s"'])([\w.\-/]*version)["']?\s*[:=]\s*["']?([^"'\s#,]+)`}

func checkDynamicVersionLine(ctx *lint.Context, n int, line string) {
	m := versionAssignment.FindStringSubmatch(line)
	if m == nil || !isDynamicVersion(m[2]) {
		return
	}
	ctx.Report(n, indexOf(line, m[2])+1, dynamicVersionMessage(m[2], m[1]))
}

func checkDynamicVersionYAML(ctx *lint.Context) error {
	var doc yaml.Node
	err := yaml.Unmarshal([]byte(ctx.Text()), &doc)
	if err != nil || !isMappingDocument(&doc) {
		ctx.Logger.Debug("build file is not a YAML mapping, using textual check", "file", ctx.File, "error", err)
		for i, line := range ctx.Lines {
			checkDynamicVersionLine(ctx, i+1, line)
		}
		return nil
	}
	walkVersions(&doc, "", func(name string, value *yaml.Node) {
		if isDynamicVersion(value.Value) {
			ctx.Report(value.Line, value.Column, dynamicVersionMessage(value.Value, name))
		}
	})
	return nil
}

// isMappingDocument reports whether doc parsed as a YAML document whose root
// is a mapping. Other build file syntaxes often parse as a single scalar.
func isMappingDocument(doc *yaml.Node) bool {
	return doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 && doc.Content[0].Kind == yaml.MappingNode
}

// walkVersions calls fn for every scalar version in the document: values of
// keys ending in "version", and scalar entries of a "dependencies" mapping.
func walkVersions(node *yaml.Node, parent string, fn func(name string, value *yaml.Node)) {
	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			walkVersions(child, parent, fn)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if value.Kind == yaml.ScalarNode {
				switch {
				case strings.HasSuffix(strings.ToLower(key.Value), "version"):
					fn(key.Value, value)
				case strings.EqualFold(parent, "dependencies"):
					fn(key.Value, value)
				}
				continue
			}
			walkVersions(value, key.Value, fn)
		}
	}
}

func isDynamicVersion(v string) bool {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return false
	case strings.EqualFold(v, "latest"), v == "*", strings.HasSuffix(v, "+"):
		return true
	case strings.HasPrefix(v, "^"), strings.HasPrefix(v, "~"), strings.HasPrefix(v, ">"), strings.HasPrefix(v, "<"):
		return true
	case strings.HasSuffix(v, ".x"), strings.HasSuffix(v, ".*"):
		return true
	}
	return false
}

func dynamicVersionMessage(version, name string) string {
	return fmt.Sprintf("Avoid using dynamic version `%s` for %s", version, name)
}
