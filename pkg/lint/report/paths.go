package report

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// DefaultBaseName is the file name stem of reports written to the reports
// directory.
const DefaultBaseName = "lint-results"

// OutputPath returns the conventional report location
// <reportsDir>/lint-results[-<variant>][-fatal].<ext>.
func OutputPath(reportsDir, variant, ext string, fatalOnly bool) string {
	name := DefaultBaseName
	if variant != "" {
		name += "-" + variant
	}
	if fatalOnly {
		name += "-fatal"
	}
	return filepath.Join(reportsDir, name+"."+ext)
}

// ValidateOutputFile makes sure the directory of path exists and that path
// itself is not a directory.
func ValidateOutputFile(path string) error {
	if path == "" {
		return fmt.Errorf("report output path is empty")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("report output %s is a directory", path)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}
	return nil
}

// FileURL formats path as a file:// URL.
func FileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}
