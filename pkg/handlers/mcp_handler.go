package handlers

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/mcp"
	mcpauth "github.com/ekaya-inc/manpower-engine/pkg/mcp/auth"
	"github.com/ekaya-inc/manpower-engine/pkg/middleware"
)

// MCPHandler serves the MCP tool surface over HTTP.
type MCPHandler struct {
	httpServer *server.StreamableHTTPServer
	logger     *zap.Logger
}

// NewMCPHandler creates a new MCP handler from an MCP server.
func NewMCPHandler(mcpServer *mcp.Server, logger *zap.Logger) *MCPHandler {
	return &MCPHandler{
		httpServer: mcpServer.NewStreamableHTTPServer(),
		logger:     logger,
	}
}

// RegisterRoutes mounts the MCP endpoint at /mcp behind bearer authentication.
func (h *MCPHandler) RegisterRoutes(mux *http.ServeMux, mcpAuthMiddleware *mcpauth.Middleware) {
	// Outermost first: method check, authentication, JSON-RPC logging.
	logged := middleware.MCPRequestLogger(h.logger)(h.httpServer)
	authed := mcpAuthMiddleware.RequireAuth(logged)
	mux.Handle("/mcp", h.requirePOST(authed))
}

// requirePOST returns 405 Method Not Allowed for non-POST requests.
func (h *MCPHandler) requirePOST(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}
