package core

import "strings"

// =============================================================================
// Severity
// =============================================================================

// Severity indicates how important a lint finding is.
// Lower values are more severe.
type Severity int

// Severity levels for findings.
const (
	// SeverityFatal is an issue severe enough to break a release build.
	SeverityFatal Severity = iota
	// SeverityError is an issue that fails the build when abort_on_error is set.
	SeverityError
	// SeverityWarning is a potential issue that should be reviewed.
	SeverityWarning
	// SeverityInformational is informational feedback.
	SeverityInformational
	// SeverityIgnore turns the issue off.
	SeverityIgnore
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformational:
		return "informational"
	case SeverityIgnore:
		return "ignore"
	default:
		return "unknown"
	}
}

// Description returns the capitalised label used in reports, e.g. "Error".
func (s Severity) Description() string {
	switch s {
	case SeverityFatal:
		return "Fatal"
	case SeverityError:
		return "Error"
	case SeverityWarning:
		return "Warning"
	case SeverityInformational:
		return "Information"
	case SeverityIgnore:
		return "Ignore"
	default:
		return "Unknown"
	}
}

// IsError reports whether findings of this severity are blocking.
func (s Severity) IsError() bool {
	return s == SeverityFatal || s == SeverityError
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fatal":
		return SeverityFatal, true
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "informational", "information", "info":
		return SeverityInformational, true
	case "ignore", "off":
		return SeverityIgnore, true
	default:
		return SeverityWarning, false
	}
}
