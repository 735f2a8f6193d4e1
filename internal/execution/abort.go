package execution

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/varlint/pkg/lint"
	"github.com/leapstack-labs/varlint/pkg/lint/report"
)

// maxAbortErrors is the number of errors quoted in an abort message when no
// text report was printed.
const maxAbortErrors = 3

const (
	fatalAbortMessage = "Lint found fatal errors while assembling a release target.\n" +
		"\n" +
		"To proceed, either fix the issues identified by lint, or modify varlint.yaml as follows:\n" +
		"...\n" +
		"lint:\n" +
		"  check_release_builds: false\n" +
		"  # Or, if you prefer, you can continue to check for errors in release builds,\n" +
		"  # but continue the build even when errors are found:\n" +
		"  abort_on_error: false\n" +
		"..."

	platformAbortMessage = "Lint found errors in the project; aborting build.\n" +
		"\n" +
		"Fix the issues identified by lint, or add the following to varlint.yaml to proceed with errors:\n" +
		"...\n" +
		"lint:\n" +
		"  abort_on_error: false\n" +
		"# Or exclude a variant from lint runs:\n" +
		"project:\n" +
		"  variants:\n" +
		"    - name: <variant>\n" +
		"      lint: false\n" +
		"..."

	projectAbortMessage = "Lint found errors in the project; aborting build.\n" +
		"\n" +
		"Fix the issues identified by lint, or add the following to varlint.yaml to proceed with errors:\n" +
		"...\n" +
		"lint:\n" +
		"  abort_on_error: false\n" +
		"...\n" +
		"or run varlint lint --no-abort."
)

// abort builds the error that fails the build after blocking findings.
// When no text report was printed it quotes the first errors.
func (e *Execution) abort(client *lint.Client, warnings []*lint.Warning, platform bool) error {
	var message string
	switch {
	case platform && e.req.FatalOnly():
		message = fatalAbortMessage
	case platform:
		message = platformAbortMessage
	default:
		message = projectAbortMessage
	}

	if client != nil && warnings != nil && !hasTextReporter(client.Flags()) {
		if excerpt := e.errorExcerpt(client, warnings); excerpt != "" {
			message += "\n\n" + excerpt
		}
	}
	return buildError(message, nil)
}

func hasTextReporter(flags *lint.Flags) bool {
	for _, r := range flags.Reporters {
		if _, ok := r.(*report.Text); ok {
			return true
		}
	}
	return false
}

func (e *Execution) errorExcerpt(client *lint.Client, warnings []*lint.Warning) string {
	errs := lint.Errors(warnings)
	if len(errs) == 0 {
		return ""
	}
	prefix := "Errors found:\n\n"
	if len(errs) > maxAbortErrors {
		prefix = fmt.Sprintf("The first %d errors (out of %d) were:\n", maxAbortErrors, len(errs))
		errs = errs[:maxAbortErrors]
	}

	flags := client.Flags()
	flags.ExplainIssues = false
	var b strings.Builder
	text := report.NewText(e.reportConfig(client, ""), &b)
	text.SetWriteStats(false)
	if err := text.Write(lint.Stats{ErrorCount: len(errs)}, errs); err != nil {
		e.log.Debug("failed to render abort excerpt", "error", err)
		return ""
	}
	return prefix + b.String()
}
