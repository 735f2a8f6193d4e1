package report

import (
	"github.com/leapstack-labs/varlint/pkg/lint"
)

// XML writes findings as an issues document. Baseline files use the same
// document through lint.WriteBaseline.
type XML struct {
	fileOutput
}

// NewXML returns an XML reporter writing to path.
func NewXML(cfg Config, path string) *XML {
	return &XML{fileOutput: newFileOutput(cfg, path, "XML")}
}

// Write encodes the findings.
func (x *XML) Write(_ lint.Stats, warnings []*lint.Warning) error {
	doc := lint.NewXMLIssues(warnings, x.cfg.Version, false)
	return x.write(doc.Encode)
}
