// Package diagnostics renders the read-only operational view of a
// Repository: the human-readable HTML page and its JSON sibling
// consumed by cmd/filehub-monitor and the MCP tool server.
package diagnostics

import (
	"encoding/json"
	"html/template"
	"io"
	"time"

	"github.com/arkenfold/filehub/internal/filestore"
	"github.com/arkenfold/filehub/internal/support"
)

// Snapshot is the full point-in-time view rendered by both formats.
type Snapshot struct {
	GeneratedAt time.Time                  `json:"generated_at"`
	Entries     []filestore.SnapshotEntry  `json:"entries"`
	Counters    filestore.CountersSnapshot `json:"counters"`
	Runtime     support.RuntimeSnapshot    `json:"runtime"`
}

// Collect reads a fresh Snapshot from repo.
func Collect(repo *filestore.Repository) Snapshot {
	return Snapshot{
		GeneratedAt: time.Now(),
		Entries:     repo.Snapshot(),
		Counters:    repo.Counters(),
		Runtime:     support.ReadRuntimeSnapshot(),
	}
}

// WriteJSON encodes snap as the /diagnostics.json response body.
func WriteJSON(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

var pageTemplate = template.Must(template.New("diagnostics").Funcs(template.FuncMap{
	"until": func(t time.Time) string { return time.Until(t).Round(time.Second).String() },
}).Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>filehub diagnostics</title>
  <style>
    body { font-family: monospace; background: #1e1e1e; color: #d4d4d4; padding: 1.5rem; }
    h1 { color: #569cd6; }
    table { border-collapse: collapse; width: 100%; }
    th, td { border: 1px solid #3c3c3c; padding: 0.4rem 0.7rem; text-align: left; }
    th { color: #4ec9b0; }
    .counters span { margin-right: 1.5rem; color: #ce9178; }
  </style>
</head>
<body>
  <h1>filehub diagnostics</h1>
  <p class="counters">
    <span>overwritten: {{.Counters.Overwritten}}</span>
    <span>evicted: {{.Counters.Evicted}}</span>
    <span>failed: {{.Counters.Failed}}</span>
    <span>deleted: {{.Counters.Deleted}}</span>
    <span>goroutines: {{.Runtime.Goroutines}}</span>
    <span>fds: {{.Runtime.FileDescriptors}}</span>
  </p>
  <table>
    <tr><th>path</th><th>content-type</th><th>length</th><th>accesses</th><th>expires in</th><th>upload id</th></tr>
    {{range .Entries}}
    <tr>
      <td>{{.Path}}</td>
      <td>{{.ContentType}}</td>
      <td>{{.Length}}</td>
      <td>{{.AccessCount}}</td>
      <td>{{until .ExpiresAt}}</td>
      <td>{{.UploadID}}</td>
    </tr>
    {{end}}
  </table>
</body>
</html>
`))

// WriteHTML renders snap as the human-readable /diagnostics page.
func WriteHTML(w io.Writer, snap Snapshot) error {
	return pageTemplate.Execute(w, snap)
}
