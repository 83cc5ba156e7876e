package mcpserver

import (
	"net/http"

	"github.com/akolanti/DocsAPI/internal/rag"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const version = "1.0.0"

// Server exposes the rag pipeline as MCP tools so agent clients can query
// the indexed documents over the same service the HTTP handlers use.
type Server struct {
	rag    rag.Service
	server *mcp.Server
	logger *logger_i.Logger
}

func NewServer(ragService rag.Service) *Server {
	impl := &mcp.Implementation{
		Name:    "docsapi",
		Version: version,
	}

	s := &Server{
		rag:    ragService,
		server: mcp.NewServer(impl, nil),
		logger: logger_i.NewLogger("MCP Server"),
	}

	s.registerTools()
	return s
}

// HTTPHandler returns the streamable HTTP transport, mounted on the main
// router instead of running its own listener.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}
