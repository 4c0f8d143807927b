package catalog

import (
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/harun/toolgate/pkg/tool"
	"github.com/openai/openai-go"
)

// Schema output formats
const (
	FormatFunction  = "function"
	FormatOpenAI    = "openai"
	FormatAnthropic = "anthropic"
)

// ErrUnsupportedFormat is returned by Render for an unknown schema format
var ErrUnsupportedFormat = errors.New("unsupported schema format")

// FunctionSchema is the function-calling shape shared by OpenAI-style clients
type FunctionSchema struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

// FunctionSpec is the body of a FunctionSchema
type FunctionSpec struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ParametersSchema renders the JSON Schema of a tool's arguments. The same
// document is advertised to clients and compiled for validation.
func ParametersSchema(def tool.Definition) map[string]interface{} {
	properties := make(map[string]interface{}, len(def.Parameters))
	required := []string{}

	for _, param := range def.Parameters {
		prop := map[string]interface{}{
			"type":        param.Type,
			"description": param.Description,
		}
		if param.Type == tool.TypeObject {
			prop["additionalProperties"] = true
		}
		properties[param.Name] = prop

		if param.Required {
			required = append(required, param.Name)
		}
	}

	schema := map[string]interface{}{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": true,
	}
	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// Describe returns the function-call schema of a single tool
func Describe(def tool.Definition) FunctionSchema {
	return FunctionSchema{
		Type: "function",
		Function: FunctionSpec{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  ParametersSchema(def),
		},
	}
}

// Schemas returns function-call schemas in registration order
func (c *Catalog) Schemas() []FunctionSchema {
	schemas := make([]FunctionSchema, 0, len(c.order))
	for _, def := range c.List() {
		schemas = append(schemas, Describe(def))
	}
	return schemas
}

// OpenAITools renders the catalog as OpenAI chat-completion tool params
func (c *Catalog) OpenAITools() []openai.ChatCompletionToolParam {
	defs := c.List()
	result := make([]openai.ChatCompletionToolParam, len(defs))
	for i, def := range defs {
		result[i] = openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  openai.FunctionParameters(ParametersSchema(def)),
			},
		}
	}
	return result
}

// AnthropicTools renders the catalog as Anthropic messages tool params
func (c *Catalog) AnthropicTools() []anthropic.ToolUnionParam {
	defs := c.List()
	result := make([]anthropic.ToolUnionParam, len(defs))
	for i, def := range defs {
		schema := ParametersSchema(def)
		inputSchema := anthropic.ToolInputSchemaParam{
			Properties: schema["properties"],
		}
		if required, ok := schema["required"].([]string); ok {
			inputSchema.Required = required
		}

		result[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        def.Name,
				Description: anthropic.String(def.Description),
				InputSchema: inputSchema,
			},
		}
	}
	return result
}

// Render returns the catalog schemas in the requested format. An empty
// format means FormatFunction.
func (c *Catalog) Render(format string) (interface{}, error) {
	switch format {
	case "", FormatFunction:
		return c.Schemas(), nil
	case FormatOpenAI:
		return c.OpenAITools(), nil
	case FormatAnthropic:
		return c.AnthropicTools(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
