package coretools

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/harun/toolgate/pkg/catalog"
	"github.com/harun/toolgate/pkg/tool"
)

// NotionToolName creates a page in a Notion database
const NotionToolName = "notion"

const defaultTitleProperty = "Name"

// NotionTool creates a page in a Notion database. The bearer credential
// comes from server configuration only.
func NotionTool(opts Options) catalog.Entry {
	h := &notionHandler{
		baseURL: strings.TrimRight(opts.NotionBaseURL, "/"),
		version: opts.NotionVersion,
		apiKey:  opts.NotionAPIKey,
		proxy:   NewProxy(opts.HTTPClient, opts.NotionTimeout, opts.Recorder),
	}

	return catalog.Entry{
		Definition: tool.Definition{
			Name:         NotionToolName,
			Description:  "Creates a page in a Notion database",
			RequiresAuth: true,
			Parameters: []tool.Parameter{
				{Name: "database_id", Type: tool.TypeString, Description: "ID of the Notion database that will contain the page", Required: true},
				{Name: "title", Type: tool.TypeString, Description: "Title of the new page", Required: true},
				{Name: "title_property", Type: tool.TypeString, Description: "Name of the database title property (default: Name)", Required: false},
				{Name: "properties", Type: tool.TypeObject, Description: "Additional page properties in Notion API format", Required: false},
				{Name: "children", Type: tool.TypeArray, Description: "Optional page content as Notion block objects", Required: false},
			},
		},
		Handler: h,
	}
}

type notionHandler struct {
	baseURL string
	version string
	apiKey  string
	proxy   *Proxy
}

// NotionPageBody restructures flat tool arguments into the Notion
// create-page shape: {parent: {database_id}, properties: {...}, children}.
func NotionPageBody(args map[string]interface{}) map[string]interface{} {
	titleProperty := tool.String(args, "title_property")
	if titleProperty == "" {
		titleProperty = defaultTitleProperty
	}

	properties := map[string]interface{}{}
	for key, value := range tool.Object(args, "properties") {
		properties[key] = value
	}
	properties[titleProperty] = map[string]interface{}{
		"title": []interface{}{
			map[string]interface{}{
				"text": map[string]interface{}{"content": tool.String(args, "title")},
			},
		},
	}

	body := map[string]interface{}{
		"parent":     map[string]interface{}{"database_id": tool.String(args, "database_id")},
		"properties": properties,
	}
	if children, ok := args["children"].([]interface{}); ok && len(children) > 0 {
		body["children"] = children
	}

	return body
}

func (h *notionHandler) Invoke(ctx context.Context, args map[string]interface{}) tool.Result {
	if h.apiKey == "" {
		return tool.Failuref(tool.KindMisconfigured, "Notion API key not configured")
	}

	headers := map[string]string{}
	if h.version != "" {
		headers["Notion-Version"] = h.version
	}

	resp, err := h.proxy.Post(ctx, ProxyRequest{
		Tool:    NotionToolName,
		URL:     h.baseURL + "/pages",
		Body:    NotionPageBody(args),
		Bearer:  h.apiKey,
		Headers: headers,
	})
	if err != nil {
		if IsTimeout(err) {
			return tool.Failuref(tool.KindTimeout, "Timeout while calling Notion API")
		}
		return tool.Failuref(tool.KindInternal, "Error calling Notion API: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return tool.Failure(tool.KindDownstream, "Failed to create Notion page", resp.FailureDetail())
	}

	return tool.Success(resp.Data(), fmt.Sprintf("Successfully created Notion page: %s", tool.String(args, "title")))
}
