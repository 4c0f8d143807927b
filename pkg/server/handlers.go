package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/harun/toolgate/internal/tracing"
	"github.com/harun/toolgate/pkg/catalog"
	"github.com/harun/toolgate/pkg/dispatch"
)

// handleInfo handles GET /
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, InfoResponse{
		Name:           s.options.ServiceName,
		Version:        s.options.Version,
		Description:    s.options.Description,
		AvailableTools: s.catalog.Names(),
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.shuttingDown() {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "shutting_down", Service: s.options.ServiceName})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Service: s.options.ServiceName})
}

// handleListTools handles GET /tools
func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	tools := make(map[string]ToolView, s.catalog.Len())
	for _, def := range s.catalog.List() {
		tools[def.Name] = ToolView{
			FunctionSchema: catalog.Describe(def),
			RequiresAuth:   def.RequiresAuth,
		}
	}
	writeJSON(w, http.StatusOK, ToolsResponse{Tools: tools})
}

// handleSchemas handles GET /tools/schemas[?format=openai|anthropic]
func (s *Server) handleSchemas(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	schemas, err := s.catalog.Render(format)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Unsupported schema format: "+format)
		return
	}
	writeJSON(w, http.StatusOK, SchemasResponse{Schemas: schemas})
}

// handleCallTool handles POST /tools/{toolName}
func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	if !s.beginRequest() {
		writeDetail(w, http.StatusServiceUnavailable, "Server is shutting down")
		return
	}
	defer s.inFlightReqs.Done()

	logger := tracing.LoggerFromContext(r.Context(), s.logger)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.options.MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		logger.Error().Err(err).Msg("Failed to read request body")
		writeDetail(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	env, err := s.dispatcher.Dispatch(r.Context(), dispatch.Request{
		ToolName:      r.PathValue("toolName"),
		Body:          body,
		Authorization: r.Header.Get("Authorization"),
	})

	// The caller is gone; nobody is left to read a response
	if r.Context().Err() != nil {
		logger.Warn().
			Str("tool", r.PathValue("toolName")).
			Msg("Client disconnected before tool call finished")
		return
	}

	if err != nil {
		var derr *dispatch.Error
		if !errors.As(err, &derr) {
			derr = &dispatch.Error{Kind: dispatch.KindInternal, Message: "Internal Server Error", Err: err}
		}
		if derr.Kind == dispatch.KindUnauthenticated {
			w.Header().Set("WWW-Authenticate", `Bearer realm="toolgate"`)
		}
		writeJSON(w, derr.StatusCode(), derr.Envelope())
		return
	}

	writeJSON(w, http.StatusOK, env)
}
