// Package coretools implements the builtin tools served by the gateway: a
// local greeting and two remote proxies (an n8n workflow webhook and the
// Notion pages API).
package coretools

import (
	"net/http"
	"time"

	"github.com/harun/toolgate/pkg/catalog"
)

// DefaultTimeout bounds every outbound call
const DefaultTimeout = 30 * time.Second

const tracerName = "toolgate/coretools"

// Options configures the builtin tools
type Options struct {
	// N8nWebhookURL is a URL template containing {workflow}
	N8nWebhookURL string
	N8nTimeout    time.Duration

	NotionBaseURL string
	NotionVersion string
	// NotionAPIKey may be empty; the notion tool then reports misconfiguration per call
	NotionAPIKey  string
	NotionTimeout time.Duration

	HTTPClient *http.Client
	Recorder   DownstreamRecorder
}

// DefaultOptions returns options pointing at the public endpoints
func DefaultOptions() Options {
	return Options{
		N8nWebhookURL: "https://my-n8n-server/webhook/{workflow}",
		N8nTimeout:    DefaultTimeout,
		NotionBaseURL: "https://api.notion.com/v1",
		NotionVersion: "2022-06-28",
		NotionTimeout: DefaultTimeout,
	}
}

// Entries returns the builtin tools in the order they are advertised
func Entries(opts Options) []catalog.Entry {
	return []catalog.Entry{
		HelloTool(),
		N8nTool(opts),
		NotionTool(opts),
	}
}

// Names lists the builtin tool names, for config validation without
// constructing handlers
func Names() []string {
	return []string{HelloToolName, N8nToolName, NotionToolName}
}

// NewCatalog builds the gateway catalog from the builtin tools
func NewCatalog(opts Options) (*catalog.Catalog, error) {
	return catalog.New(Entries(opts)...)
}
