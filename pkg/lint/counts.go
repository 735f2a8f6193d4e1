package lint

import "github.com/dustin/go-humanize/english"

// DescribeCounts formats error and warning counts for humans, e.g.
// "1 error and 2 warnings". With comma set the parts are joined by ", ".
func DescribeCounts(errors, warnings int, comma, capitalize bool) string {
	if errors == 0 && warnings == 0 {
		if capitalize {
			return "No errors or warnings"
		}
		return "no errors or warnings"
	}

	errorCount := english.Plural(errors, "error", "")
	warningCount := english.Plural(warnings, "warning", "")
	switch {
	case errors == 0:
		return warningCount
	case warnings == 0:
		return errorCount
	case comma:
		return errorCount + ", " + warningCount
	default:
		return errorCount + " and " + warningCount
	}
}
