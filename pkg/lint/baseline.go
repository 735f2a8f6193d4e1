package lint

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrBaselineCreated is returned by Client.Run after it wrote a baseline file
// that did not exist yet.
var ErrBaselineCreated = errors.New("created baseline file")

// ErrBaselineFolder means the directory of a new baseline file could not be created.
var ErrBaselineFolder = errors.New("couldn't create baseline folder")

type baselineKey struct {
	id, file, message string
}

// Baseline holds the accepted findings loaded from a baseline file and counts
// the findings it filters during a run.
type Baseline struct {
	file    string
	entries map[baselineKey]int
	total   int

	foundErrors   int
	foundWarnings int
	matched       int
}

// LoadBaseline reads a baseline file.
func LoadBaseline(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline %s: %w", path, err)
	}
	var doc XMLIssues
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse baseline %s: %w", path, err)
	}

	b := &Baseline{file: path, entries: make(map[baselineKey]int)}
	for _, issue := range doc.Issues {
		file := ""
		if len(issue.Locations) > 0 {
			file = issue.Locations[0].File
		}
		b.entries[baselineKey{issue.ID, file, issue.Message}]++
		b.total++
	}
	return b, nil
}

// File returns the path the baseline was loaded from.
func (b *Baseline) File() string {
	return b.file
}

// Find reports whether w is listed in the baseline and, if so, consumes the
// matching entry. Each entry matches at most one finding.
func (b *Baseline) Find(w *Warning) bool {
	k := baselineKey{w.ID(), w.Location.File, w.Message}
	if b.entries[k] == 0 {
		return false
	}
	b.entries[k]--
	b.matched++
	if w.Severity.IsError() {
		b.foundErrors++
	} else {
		b.foundWarnings++
	}
	return true
}

// FoundErrorCount is the number of blocking findings filtered by the baseline.
func (b *Baseline) FoundErrorCount() int {
	return b.foundErrors
}

// FoundWarningCount is the number of non-blocking findings filtered by the baseline.
func (b *Baseline) FoundWarningCount() int {
	return b.foundWarnings
}

// FixedCount is the number of baseline entries that matched no finding.
func (b *Baseline) FixedCount() int {
	return b.total - b.matched
}

// BaselineMissing reports whether there is no readable baseline at path.
// Any stat failure counts as missing.
func BaselineMissing(path string) bool {
	_, err := os.Stat(path)
	return err != nil
}

// WriteBaseline writes findings as a baseline file, creating parent
// directories as needed. A parent directory that cannot be created yields an
// error wrapping ErrBaselineFolder.
func WriteBaseline(path string, warnings []*Warning, version string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w %s: %w", ErrBaselineFolder, dir, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create baseline %s: %w", path, err)
	}
	if err := NewXMLIssues(warnings, version, true).Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write baseline %s: %w", path, err)
	}
	return f.Close()
}

// CreateBaseline writes a missing baseline file and confirms it on stderr.
// When the baseline folder cannot be created it says so on stderr, skips the
// write and returns false with no error.
func CreateBaseline(path string, warnings []*Warning, version string, stderr io.Writer) (bool, error) {
	if err := WriteBaseline(path, warnings, version); err != nil {
		if errors.Is(err, ErrBaselineFolder) {
			fmt.Fprintf(stderr, "Couldn't create baseline folder %s\n", filepath.Dir(path))
			return false, nil
		}
		return false, err
	}
	fmt.Fprintf(stderr, "Created baseline file %s\n", path)
	return true, nil
}
