package lint

// Stats are the counts passed to reporters alongside the findings.
type Stats struct {
	ErrorCount           int
	WarningCount         int
	BaselineErrorCount   int
	BaselineWarningCount int
	BaselineFixedCount   int
}

// NewStats counts the findings and reads the baseline counters, if any.
func NewStats(warnings []*Warning, baseline *Baseline) Stats {
	errs, warns := CountBySeverity(warnings)
	stats := Stats{ErrorCount: errs, WarningCount: warns}
	if baseline != nil {
		stats.BaselineErrorCount = baseline.FoundErrorCount()
		stats.BaselineWarningCount = baseline.FoundWarningCount()
		stats.BaselineFixedCount = baseline.FixedCount()
	}
	return stats
}

// Count returns the total number of errors and warnings.
func (s Stats) Count() int {
	return s.ErrorCount + s.WarningCount
}

// Reporter writes a set of findings in one representation.
type Reporter interface {
	Write(stats Stats, warnings []*Warning) error
	// SetDisplayEmpty controls whether a report is produced for an empty
	// finding set.
	SetDisplayEmpty(display bool)
}
