package mcpapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
)

func (s *Server) handleListFiles(ctx context.Context, request *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	args := new(ListFilesArgs)
	if err := protocol.VerifyAndUnmarshal(request.RawArguments, args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	entries := s.repo.Snapshot()
	if args.PathFilter != "" {
		filtered := entries[:0]
		needle := strings.ToLower(args.PathFilter)
		for _, e := range entries {
			if strings.Contains(strings.ToLower(e.Path), needle) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	return jsonResult(entries)
}

func (s *Server) handleGetFileInfo(ctx context.Context, request *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	args := new(GetFileInfoArgs)
	if err := protocol.VerifyAndUnmarshal(request.RawArguments, args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	slab, ok := s.repo.Lookup(args.Path)
	if !ok {
		return textResult(fmt.Sprintf("no file stored at %q", args.Path)), nil
	}

	info := struct {
		Path        string `json:"path"`
		ContentType string `json:"content_type"`
		Length      int    `json:"length"`
		Complete    bool   `json:"complete"`
		Failed      bool   `json:"failed"`
	}{
		Path:        slab.Path(),
		ContentType: slab.ContentType(),
		Length:      slab.Length(),
		Complete:    slab.IsComplete(),
		Failed:      slab.IsFailed(),
	}
	return jsonResult(info)
}

func (s *Server) handleDeleteFile(ctx context.Context, request *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	args := new(DeleteFileArgs)
	if err := protocol.VerifyAndUnmarshal(request.RawArguments, args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	if s.repo.Delete(args.Path) {
		return textResult(fmt.Sprintf("deleted %q", args.Path)), nil
	}
	return textResult(fmt.Sprintf("no file stored at %q", args.Path)), nil
}
