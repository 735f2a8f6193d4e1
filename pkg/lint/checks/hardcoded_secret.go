package checks

import (
	"fmt"
	"strings"

	deferredregex "github.com/peterebden/go-deferred-regex"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
)

// HardcodedSecret flags credentials committed to sources and resources.
var HardcodedSecret = &lint.Issue{
	ID:      "HardcodedSecret",
	Summary: "Hardcoded secret",
	Explanation: "The file appears to contain a credential such as an access key, API key, private key or password. " +
		"Secrets in version control leak to everyone with read access; load them from the environment or a secret store instead.",
	Category:         "Security",
	Priority:         9,
	Severity:         core.SeverityError,
	EnabledByDefault: true,
	Implementation: lint.Implementation{
		Scope:       lint.ScopeSource | lint.ScopeResource | lint.ScopeBuildFile,
		NewDetector: lineDetector(checkHardcodedSecret),
	},
}

type secretPattern struct {
	name    string
	pattern *deferredregex.DeferredRegex
}

var secretPatterns = []secretPattern{
	{"AWS access key", &deferredregex.DeferredRegex{Re: `AKIA[0-9A-Z]{16}`}},
	{"API key", &deferredregex.DeferredRegex{Re: `(?i)(api[_-]?key|apikey)\s*[=:]\s*['"]?[a-zA-Z0-9]{20,}['"]?`}},
	{"private key", &deferredregex.DeferredRegex{Re: `-----BEGIN\s+(RSA|DSA|EC|OPENSSH)\s+PRIVATE KEY-----`}},
	{"password", &deferredregex.DeferredRegex{Re: `(?i)(password|pwd|passwd)\s*[=:]\s*['"]?[^'\s"]+['"]?`}},
}

func checkHardcodedSecret(ctx *lint.Context, n int, line string) {
	for _, p := range secretPatterns {
		m := p.pattern.FindStringSubmatch(line)
		if m == nil || placeholder(m[0]) {
			continue
		}
		ctx.Report(n, indexOf(line, m[0])+1, fmt.Sprintf("Possible hardcoded %s", p.name))
		return
	}
}

// placeholder reports whether a match only refers to a variable, e.g. password: ${DB_PASSWORD}.
func placeholder(match string) bool {
	return strings.Contains(match, "${") || strings.Contains(match, "$(") || strings.Contains(match, "{{")
}

func indexOf(s, sub string) int {
	if i := strings.Index(s, sub); i >= 0 {
		return i
	}
	return 0
}
