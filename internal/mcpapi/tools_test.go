package mcpapi

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"github.com/arkenfold/filehub/internal/filestore"
)

func newTestMCPServer(t *testing.T) *Server {
	t.Helper()
	repo := filestore.New(filestore.Options{}, nil)
	s, err := New(repo, 0, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func callToolRequest(t *testing.T, args interface{}) *protocol.CallToolRequest {
	t.Helper()
	raw, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("marshal args: %v", err)
	}
	return &protocol.CallToolRequest{RawArguments: raw}
}

func resultText(t *testing.T, res *protocol.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("Content length = %d, want 1", len(res.Content))
	}
	tc, ok := res.Content[0].(*protocol.TextContent)
	if !ok {
		t.Fatalf("Content[0] is %T, want *protocol.TextContent", res.Content[0])
	}
	return tc.Text
}

func TestHandleListFilesReturnsAllEntries(t *testing.T) {
	s := newTestMCPServer(t)
	s.repo.Create("/a.txt", "text/plain")
	s.repo.Create("/b.txt", "text/plain")

	res, err := s.handleListFiles(context.Background(), callToolRequest(t, ListFilesArgs{}))
	if err != nil {
		t.Fatalf("handleListFiles: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "/a.txt") || !strings.Contains(text, "/b.txt") {
		t.Fatalf("expected both paths listed, got: %s", text)
	}
}

func TestHandleListFilesAppliesPathFilter(t *testing.T) {
	s := newTestMCPServer(t)
	s.repo.Create("/logs/app.log", "text/plain")
	s.repo.Create("/images/cat.png", "image/png")

	res, err := s.handleListFiles(context.Background(), callToolRequest(t, ListFilesArgs{PathFilter: "logs"}))
	if err != nil {
		t.Fatalf("handleListFiles: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "/logs/app.log") {
		t.Fatalf("expected matching path, got: %s", text)
	}
	if strings.Contains(text, "/images/cat.png") {
		t.Fatalf("expected non-matching path to be filtered out, got: %s", text)
	}
}

func TestHandleGetFileInfoKnownPath(t *testing.T) {
	s := newTestMCPServer(t)
	s.repo.Create("/x.bin", "application/octet-stream")

	res, err := s.handleGetFileInfo(context.Background(), callToolRequest(t, GetFileInfoArgs{Path: "/x.bin"}))
	if err != nil {
		t.Fatalf("handleGetFileInfo: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "/x.bin") || !strings.Contains(text, "application/octet-stream") {
		t.Fatalf("expected file info in result, got: %s", text)
	}
}

func TestHandleGetFileInfoUnknownPath(t *testing.T) {
	s := newTestMCPServer(t)

	res, err := s.handleGetFileInfo(context.Background(), callToolRequest(t, GetFileInfoArgs{Path: "/missing.bin"}))
	if err != nil {
		t.Fatalf("handleGetFileInfo: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "no file stored") {
		t.Fatalf("expected a no-file-stored message, got: %s", text)
	}
}

func TestHandleDeleteFileKnownAndUnknownPath(t *testing.T) {
	s := newTestMCPServer(t)
	s.repo.Create("/doomed.txt", "text/plain")

	res, err := s.handleDeleteFile(context.Background(), callToolRequest(t, DeleteFileArgs{Path: "/doomed.txt"}))
	if err != nil {
		t.Fatalf("handleDeleteFile: %v", err)
	}
	if !strings.Contains(resultText(t, res), "deleted") {
		t.Fatalf("expected deleted confirmation, got: %s", resultText(t, res))
	}

	res, err = s.handleDeleteFile(context.Background(), callToolRequest(t, DeleteFileArgs{Path: "/doomed.txt"}))
	if err != nil {
		t.Fatalf("handleDeleteFile: %v", err)
	}
	if !strings.Contains(resultText(t, res), "no file stored") {
		t.Fatalf("expected no-file-stored on repeat delete, got: %s", resultText(t, res))
	}
}
