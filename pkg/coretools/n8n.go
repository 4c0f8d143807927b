package coretools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/harun/toolgate/pkg/catalog"
	"github.com/harun/toolgate/pkg/tool"
)

// N8nToolName triggers an n8n workflow
const N8nToolName = "run_n8n"

// N8nTool triggers an n8n workflow through its webhook. The gateway attaches
// no credential; the webhook is trusted at the network level.
func N8nTool(opts Options) catalog.Entry {
	h := &n8nHandler{
		urlTemplate: opts.N8nWebhookURL,
		proxy:       NewProxy(opts.HTTPClient, opts.N8nTimeout, opts.Recorder),
	}

	return catalog.Entry{
		Definition: tool.Definition{
			Name:         N8nToolName,
			Description:  "Triggers an n8n workflow via webhook",
			RequiresAuth: false,
			Parameters: []tool.Parameter{
				{Name: "workflow", Type: tool.TypeString, Description: "The name/identifier of the n8n workflow to trigger", Required: true},
				{Name: "data", Type: tool.TypeObject, Description: "Optional data to send to the workflow", Required: false},
			},
		},
		Handler: h,
	}
}

type n8nHandler struct {
	urlTemplate string
	proxy       *Proxy
}

// WebhookURL expands the {workflow} placeholder with the path-escaped name
func WebhookURL(template, workflow string) string {
	return strings.ReplaceAll(template, "{workflow}", url.PathEscape(workflow))
}

func (h *n8nHandler) Invoke(ctx context.Context, args map[string]interface{}) tool.Result {
	workflow := tool.String(args, "workflow")
	detail := map[string]interface{}{"workflow": workflow}

	payload := tool.Object(args, "data")
	if payload == nil {
		payload = map[string]interface{}{}
	}

	resp, err := h.proxy.Post(ctx, ProxyRequest{
		Tool: N8nToolName,
		URL:  WebhookURL(h.urlTemplate, workflow),
		Body: payload,
	})
	if err != nil {
		if IsTimeout(err) {
			return tool.Failure(tool.KindTimeout, fmt.Sprintf("Timeout while calling n8n webhook for workflow: %s", workflow), detail)
		}
		return tool.Failure(tool.KindInternal, fmt.Sprintf("Error calling n8n webhook: %v", err), detail)
	}

	if resp.StatusCode != http.StatusOK {
		return tool.Failure(tool.KindDownstream, fmt.Sprintf("Failed to trigger workflow: %s", workflow), resp.FailureDetail())
	}

	return tool.Success(resp.Data(), fmt.Sprintf("Successfully triggered workflow: %s", workflow))
}
