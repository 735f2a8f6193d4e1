package lint

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// XMLFormat is the version of the issues document written by varlint.
const XMLFormat = "5"

// XMLIssues is the root of an XML report or baseline file.
type XMLIssues struct {
	XMLName xml.Name   `xml:"issues"`
	Format  string     `xml:"format,attr"`
	By      string     `xml:"by,attr,omitempty"`
	Issues  []XMLIssue `xml:"issue"`
}

// XMLIssue is one finding in an XML document.
type XMLIssue struct {
	ID          string        `xml:"id,attr"`
	Severity    string        `xml:"severity,attr"`
	Message     string        `xml:"message,attr"`
	Category    string        `xml:"category,attr,omitempty"`
	Priority    int           `xml:"priority,attr,omitempty"`
	Summary     string        `xml:"summary,attr,omitempty"`
	Explanation string        `xml:"explanation,attr,omitempty"`
	Variants    string        `xml:"variants,attr,omitempty"`
	ErrorLine   string        `xml:"errorLine1,attr,omitempty"`
	Locations   []XMLLocation `xml:"location"`
}

// XMLLocation is the position of a finding.
type XMLLocation struct {
	File   string `xml:"file,attr"`
	Line   int    `xml:"line,attr,omitempty"`
	Column int    `xml:"column,attr,omitempty"`
}

// NewXMLIssues converts findings into an XML document. In baseline mode the
// issue metadata (category, priority, summary, explanation) is left out.
func NewXMLIssues(warnings []*Warning, version string, baseline bool) *XMLIssues {
	doc := &XMLIssues{Format: XMLFormat}
	if version != "" {
		doc.By = "varlint " + version
	}
	for _, w := range warnings {
		issue := XMLIssue{
			ID:        w.ID(),
			Severity:  w.Severity.Description(),
			Message:   w.Message,
			ErrorLine: w.ErrorLine,
			Locations: []XMLLocation{{File: w.Location.File, Line: w.Location.Line, Column: w.Location.Column}},
		}
		if !baseline && w.Issue != nil {
			issue.Category = w.Issue.Category
			issue.Priority = w.Issue.Priority
			issue.Summary = w.Issue.Summary
			issue.Explanation = w.Issue.Explanation
			if len(w.Variants) > 0 {
				issue.Variants = strings.Join(w.Variants, ",")
			}
		}
		doc.Issues = append(doc.Issues, issue)
	}
	return doc
}

// Encode writes the document with an XML header.
func (doc *XMLIssues) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	b, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode issues: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return err
	}
	return nil
}
