package server

import (
	"time"

	"github.com/harun/toolgate/pkg/catalog"
)

// Options configures the HTTP server
type Options struct {
	Host            string        // Server host (default: "0.0.0.0")
	Port            int           // Server port (default: 8000)
	ServiceName     string        // Reported by / and /health
	Version         string        // Reported by /
	Description     string        // Reported by /
	ShutdownTimeout time.Duration // Grace period for in-flight calls (default: 30s)
	MaxBodyBytes    int64         // Request body limit (default: 1MB)
	MetricsPath     string        // Prometheus endpoint; empty disables it
}

// InfoResponse is returned by GET /
type InfoResponse struct {
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	Description    string   `json:"description"`
	AvailableTools []string `json:"available_tools"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ToolView is one entry of GET /tools
type ToolView struct {
	catalog.FunctionSchema
	RequiresAuth bool `json:"requires_auth"`
}

// ToolsResponse is returned by GET /tools
type ToolsResponse struct {
	Tools map[string]ToolView `json:"tools"`
}

// SchemasResponse is returned by GET /tools/schemas
type SchemasResponse struct {
	Schemas interface{} `json:"schemas"`
}

// ErrorResponse is returned for requests that never reach the dispatcher
type ErrorResponse struct {
	Detail string `json:"detail"`
}
