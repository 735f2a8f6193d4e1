package reportserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
)

// ReportFile describes one file in the reports directory.
type ReportFile struct {
	Name     string    `json:"name"`
	Format   string    `json:"format"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

var reportFormats = map[string]string{
	".html":  "HTML",
	".xml":   "XML",
	".json":  "JSON",
	".sarif": "SARIF",
	".txt":   "Text",
}

// ListReports returns the report files in dir, newest first.
func ListReports(dir string) ([]ReportFile, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}
	var files []ReportFile
	for _, e := range entries {
		format, ok := reportFormats[strings.ToLower(filepath.Ext(e.Name()))]
		if e.IsDir() || !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, ReportFile{
			Name:     e.Name(),
			Format:   format,
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].Modified.Equal(files[j].Modified) {
			return files[i].Modified.After(files[j].Modified)
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"bytes": func(n int64) string { return humanize.Bytes(uint64(max(n, 0))) },
	"ago":   humanize.Time,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Lint reports</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
td, th { padding: 4px 12px; text-align: left; border-bottom: 1px solid #ddd; }
</style>
</head>
<body>
<h1>Lint reports</h1>
{{if .}}
<table>
<tr><th>Report</th><th>Format</th><th>Size</th><th>Updated</th></tr>
{{range .}}<tr><td><a href="/reports/{{.Name}}">{{.Name}}</a></td><td>{{.Format}}</td><td>{{bytes .Size}}</td><td>{{ago .Modified}}</td></tr>
{{end}}</table>
{{else}}
<p>No reports yet. Run <code>varlint lint</code> to create them.</p>
{{end}}
<script>
new EventSource('/__reload').onmessage = function(e) {
  if (e.data === 'reload') { window.location.reload(); }
};
</script>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	files, err := ListReports(s.cfg.ReportsDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	if err := indexTemplate.Execute(w, files); err != nil {
		s.logger.Error("failed to render index", "error", err)
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}
	if _, ok := reportFormats[strings.ToLower(filepath.Ext(name))]; !ok {
		http.NotFound(w, r)
		return
	}
	path := filepath.Join(s.cfg.ReportsDir, name)
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}
	if strings.EqualFold(filepath.Ext(name), ".sarif") {
		w.Header().Set("Content-Type", "application/sarif+json")
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, path)
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	files, err := ListReports(s.cfg.ReportsDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if files == nil {
		files = []ReportFile{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(files)
}

// handleReload streams a server-sent "reload" event after every lint run.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.notifier.subscribe()
	defer s.notifier.unsubscribe(ch)

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			_, _ = fmt.Fprintf(w, "data: reload\n\n")
			flusher.Flush()
		}
	}
}
