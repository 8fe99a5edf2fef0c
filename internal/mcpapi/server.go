// Package mcpapi exposes the repository over the Model Context
// Protocol, mirroring the teacher's mcpserver.go/mcptools.go pairing:
// a thin StreamableHTTPServerTransport wrapping a handful of tool
// handlers that delegate straight into filestore.Repository.
package mcpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/ThinkInAIXYZ/go-mcp/server"
	"github.com/ThinkInAIXYZ/go-mcp/transport"
	"github.com/sirupsen/logrus"

	"github.com/arkenfold/filehub/internal/filestore"
)

// Server wraps a go-mcp server bound to a Repository.
type Server struct {
	repo      *filestore.Repository
	mcpServer *server.Server
	port      int
	log       *logrus.Entry
}

// New builds the MCP server and registers its tools. Start blocks
// until Shutdown is called.
func New(repo *filestore.Repository, port int, log *logrus.Entry) (*Server, error) {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		discard.SetLevel(logrus.PanicLevel + 1)
		log = logrus.NewEntry(discard)
	}

	tr := transport.NewStreamableHTTPServerTransport(
		fmt.Sprintf(":%d", port),
		transport.WithStreamableHTTPServerTransportOptionEndpoint("/mcp"),
		transport.WithStreamableHTTPServerTransportOptionStateMode(transport.Stateful),
	)

	mcpServer, err := server.NewServer(
		tr,
		server.WithServerInfo(protocol.Implementation{
			Name:    "filehub-mcp",
			Version: "dev",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("mcpapi: create server: %w", err)
	}

	s := &Server{repo: repo, mcpServer: mcpServer, port: port, log: log}
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("mcpapi: register tools: %w", err)
	}
	return s, nil
}

func (s *Server) registerTools() error {
	listFiles, err := protocol.NewTool(
		"list_files",
		"List every file currently stored, with content type, length, and expiry",
		ListFilesArgs{},
	)
	if err != nil {
		return err
	}
	s.mcpServer.RegisterTool(listFiles, s.handleListFiles)

	getFileInfo, err := protocol.NewTool(
		"get_file_info",
		"Get metadata for one stored file by exact path",
		GetFileInfoArgs{},
	)
	if err != nil {
		return err
	}
	s.mcpServer.RegisterTool(getFileInfo, s.handleGetFileInfo)

	deleteFile, err := protocol.NewTool(
		"delete_file",
		"Delete a stored file by exact path",
		DeleteFileArgs{},
	)
	if err != nil {
		return err
	}
	s.mcpServer.RegisterTool(deleteFile, s.handleDeleteFile)

	return nil
}

// Start runs the MCP server. Blocking.
func (s *Server) Start() error {
	s.log.WithField("port", s.port).Info("MCP server listening")
	return s.mcpServer.Run()
}

// Shutdown gracefully stops the MCP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.mcpServer.Shutdown(ctx)
}

func textResult(text string) *protocol.CallToolResult {
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			&protocol.TextContent{Type: "text", Text: text},
		},
	}
}

func jsonResult(v interface{}) (*protocol.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(out)), nil
}
