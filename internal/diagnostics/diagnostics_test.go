package diagnostics

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/arkenfold/filehub/internal/filestore"
)

type oneShotSource struct {
	data []byte
	sent bool
}

func (s *oneShotSource) Next(ctx context.Context) ([]byte, bool, error) {
	if s.sent {
		return nil, false, nil
	}
	s.sent = true
	return s.data, true, nil
}

func TestCollectReflectsRepositoryState(t *testing.T) {
	repo := filestore.New(filestore.Options{}, nil)
	slab := repo.Create("/a.txt", "text/plain")
	if err := slab.Append(context.Background(), &oneShotSource{data: []byte("hello")}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	snap := Collect(repo)
	if len(snap.Entries) != 1 {
		t.Fatalf("Entries = %d, want 1", len(snap.Entries))
	}
	if snap.Entries[0].Path != "/a.txt" {
		t.Fatalf("Path = %q, want /a.txt", snap.Entries[0].Path)
	}
	if snap.Entries[0].Length != len("hello") {
		t.Fatalf("Length = %d, want %d", snap.Entries[0].Length, len("hello"))
	}
	if snap.GeneratedAt.IsZero() {
		t.Fatal("GeneratedAt should be set")
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	repo := filestore.New(filestore.Options{}, nil)
	repo.Create("/x.bin", "application/octet-stream")

	var buf bytes.Buffer
	if err := WriteJSON(&buf, Collect(repo)); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded Snapshot
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(decoded.Entries) != 1 || decoded.Entries[0].Path != "/x.bin" {
		t.Fatalf("decoded entries = %+v", decoded.Entries)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"path": "/x.bin"`)) {
		t.Fatalf("expected indented snake_case JSON, got: %s", buf.String())
	}
}

func TestWriteHTMLIncludesEntryAndCounters(t *testing.T) {
	repo := filestore.New(filestore.Options{}, nil)
	repo.Create("/report.csv", "text/csv")
	repo.Delete("/never-existed.csv")

	var buf bytes.Buffer
	if err := WriteHTML(&buf, Collect(repo)); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "/report.csv") {
		t.Fatalf("expected HTML to mention the stored path, got: %s", out)
	}
	if !strings.Contains(out, "text/csv") {
		t.Fatalf("expected HTML to mention the content type, got: %s", out)
	}
	if !strings.Contains(out, "<table>") {
		t.Fatalf("expected an HTML table, got: %s", out)
	}
	if !strings.Contains(out, "deleted: 0") {
		t.Fatalf("expected HTML to show the deleted counter, got: %s", out)
	}
}

func TestWriteHTMLOnEmptyRepository(t *testing.T) {
	repo := filestore.New(filestore.Options{}, nil)

	var buf bytes.Buffer
	if err := WriteHTML(&buf, Collect(repo)); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	if !strings.Contains(buf.String(), "filehub diagnostics") {
		t.Fatalf("expected page title, got: %s", buf.String())
	}
}
