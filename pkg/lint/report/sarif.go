package report

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
)

// SARIF schema details written by the SARIF reporter.
const (
	SarifVersion = "2.1.0"
	SarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

// SARIF writes a SARIF 2.1.0 log for code scanning services.
type SARIF struct {
	fileOutput
}

// NewSARIF returns a SARIF reporter writing to path.
func NewSARIF(cfg Config, path string) *SARIF {
	return &SARIF{fileOutput: newFileOutput(cfg, path, "SARIF")}
}

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool               sarifTool              `json:"tool"`
	AutomationDetails  *sarifAutomation       `json:"automationDetails,omitempty"`
	OriginalURIBaseIDs map[string]sarifURIRef `json:"originalUriBaseIds,omitempty"`
	Results            []sarifResult          `json:"results"`
}

type sarifAutomation struct {
	ID   string `json:"id"`
	GUID string `json:"guid,omitempty"`
}

type sarifURIRef struct {
	URI string `json:"uri"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
	FullDescription  sarifMessage `json:"fullDescription"`
	DefaultConfig    sarifConfig  `json:"defaultConfiguration"`
	Properties       sarifProps   `json:"properties"`
}

type sarifConfig struct {
	Level string `json:"level"`
}

type sarifProps struct {
	Category string `json:"category,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLocation   `json:"locations,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId,omitempty"`
}

type sarifRegion struct {
	StartLine   int           `json:"startLine"`
	StartColumn int           `json:"startColumn,omitempty"`
	Snippet     *sarifSnippet `json:"snippet,omitempty"`
}

type sarifSnippet struct {
	Text string `json:"text"`
}

// sarifLevel maps a severity to a SARIF result level.
func sarifLevel(sev core.Severity) string {
	switch sev {
	case core.SeverityFatal, core.SeverityError:
		return "error"
	case core.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

// Write encodes the findings.
func (s *SARIF) Write(_ lint.Stats, warnings []*lint.Warning) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:    "varlint",
			Version: s.cfg.Version,
			Rules:   []sarifRule{},
		}},
		Results: make([]sarifResult, 0, len(warnings)),
	}
	if s.cfg.RunID != "" {
		id := "varlint/"
		if s.cfg.Variant != "" {
			id += s.cfg.Variant + "/"
		}
		run.AutomationDetails = &sarifAutomation{ID: id, GUID: s.cfg.RunID}
	}
	if s.cfg.ProjectDir != "" {
		if abs, err := filepath.Abs(s.cfg.ProjectDir); err == nil {
			run.OriginalURIBaseIDs = map[string]sarifURIRef{"%SRCROOT%": {URI: FileURL(abs) + "/"}}
		}
	}

	ruleIndex := make(map[string]int)
	for _, w := range warnings {
		id := w.ID()
		idx, ok := ruleIndex[id]
		if !ok {
			idx = len(run.Tool.Driver.Rules)
			ruleIndex[id] = idx
			rule := sarifRule{ID: id, DefaultConfig: sarifConfig{Level: sarifLevel(w.Severity)}}
			if w.Issue != nil {
				rule.ShortDescription = sarifMessage{Text: w.Issue.Summary}
				rule.FullDescription = sarifMessage{Text: w.Issue.Explanation}
				rule.DefaultConfig.Level = sarifLevel(w.Issue.Severity)
				rule.Properties = sarifProps{Category: w.Issue.Category, Priority: w.Issue.Priority}
			}
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, rule)
		}

		result := sarifResult{
			RuleID:              id,
			RuleIndex:           idx,
			Level:               sarifLevel(w.Severity),
			Message:             sarifMessage{Text: w.Message},
			PartialFingerprints: map[string]string{"varlint/v1": w.Fingerprint()},
		}
		if w.Location.File != "" {
			loc := sarifPhysicalLocation{ArtifactLocation: sarifArtifactLocation{
				URI:       filepath.ToSlash(w.Location.File),
				URIBaseID: "%SRCROOT%",
			}}
			if w.Location.Line > 0 {
				loc.Region = &sarifRegion{StartLine: w.Location.Line, StartColumn: w.Location.Column}
				if w.ErrorLine != "" {
					loc.Region.Snippet = &sarifSnippet{Text: w.ErrorLine}
				}
			}
			result.Locations = []sarifLocation{{PhysicalLocation: loc}}
		}
		run.Results = append(run.Results, result)
	}

	doc := sarifLog{Schema: SarifSchema, Version: SarifVersion, Runs: []sarifRun{run}}
	return s.write(func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	})
}
