package coretools

import (
	"context"
	"fmt"

	"github.com/harun/toolgate/pkg/catalog"
	"github.com/harun/toolgate/pkg/tool"
)

// HelloToolName is the greeting tool
const HelloToolName = "hello"

// HelloTool greets a person by name. It performs no I/O.
func HelloTool() catalog.Entry {
	return catalog.Entry{
		Definition: tool.Definition{
			Name:         HelloToolName,
			Description:  "Greets a person by name",
			RequiresAuth: true,
			Parameters: []tool.Parameter{
				{Name: "name", Type: tool.TypeString, Description: "The name of the person to greet", Required: true},
			},
		},
		Handler: tool.HandlerFunc(hello),
	}
}

func hello(_ context.Context, args map[string]interface{}) tool.Result {
	message := fmt.Sprintf("Hello, %s!", tool.String(args, "name"))
	return tool.Success(map[string]interface{}{"message": message}, message)
}
