// Package catalog holds the fixed set of tools the gateway exposes. It is
// built once at startup and is read-only afterwards, so it is safe for
// concurrent use without locking.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harun/toolgate/pkg/tool"
	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

// ErrNotFound is returned by Get for a tool name that is not registered
var ErrNotFound = errors.New("tool not found")

// Entry binds a tool definition to the handler that executes it
type Entry struct {
	Definition tool.Definition
	Handler    tool.Handler
}

// Catalog is an ordered, immutable tool registry
type Catalog struct {
	order   []string
	tools   map[string]*Entry
	schemas map[string]*gojsonschema.Schema
}

// ValidationError lists every way a set of arguments violates a tool schema
type ValidationError struct {
	Tool   string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(e.Errors, "; "))
}

// New builds a catalog from entries, keeping their order
func New(entries ...Entry) (*Catalog, error) {
	c := &Catalog{
		order:   make([]string, 0, len(entries)),
		tools:   make(map[string]*Entry, len(entries)),
		schemas: make(map[string]*gojsonschema.Schema, len(entries)),
	}

	for i := range entries {
		entry := entries[i]
		if err := validateEntry(entry); err != nil {
			return nil, fmt.Errorf("invalid tool definition: %w", err)
		}

		name := entry.Definition.Name
		if _, exists := c.tools[name]; exists {
			return nil, fmt.Errorf("duplicate tool name: %s", name)
		}

		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(ParametersSchema(entry.Definition)))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema for %s: %w", name, err)
		}

		c.order = append(c.order, name)
		c.tools[name] = &entry
		c.schemas[name] = schema

		log.Debug().
			Str("tool", name).
			Bool("requires_auth", entry.Definition.RequiresAuth).
			Msg("Tool registered")
	}

	return c, nil
}

// Get returns the entry registered under name
func (c *Catalog) Get(name string) (*Entry, error) {
	entry, ok := c.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return entry, nil
}

// Has reports whether name is registered
func (c *Catalog) Has(name string) bool {
	_, ok := c.tools[name]
	return ok
}

// Names returns tool names in registration order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// List returns tool definitions in registration order
func (c *Catalog) List() []tool.Definition {
	defs := make([]tool.Definition, 0, len(c.order))
	for _, name := range c.order {
		defs = append(defs, c.tools[name].Definition)
	}
	return defs
}

// Len returns the number of registered tools
func (c *Catalog) Len() int {
	return len(c.order)
}

// Validate checks args against the schema advertised for the named tool.
// Unknown extra keys are accepted.
func (c *Catalog) Validate(name string, args map[string]interface{}) error {
	schema, ok := c.schemas[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("failed to validate arguments: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			msgs = append(msgs, re.String())
		}
		return &ValidationError{Tool: name, Errors: msgs}
	}

	return nil
}

func validateEntry(entry Entry) error {
	def := entry.Definition
	if def.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if strings.ContainsAny(def.Name, "/ ") {
		return fmt.Errorf("tool name %q cannot contain spaces or slashes", def.Name)
	}
	if def.Description == "" {
		return fmt.Errorf("tool description cannot be empty for %s", def.Name)
	}
	if entry.Handler == nil {
		return fmt.Errorf("tool handler cannot be nil for %s", def.Name)
	}

	validTypes := map[string]bool{
		tool.TypeString: true, tool.TypeNumber: true, tool.TypeBoolean: true,
		tool.TypeObject: true, tool.TypeArray: true, tool.TypeInteger: true,
	}
	seen := make(map[string]bool, len(def.Parameters))
	for _, param := range def.Parameters {
		if param.Name == "" {
			return fmt.Errorf("parameter name cannot be empty for %s", def.Name)
		}
		if seen[param.Name] {
			return fmt.Errorf("duplicate parameter %s for %s", param.Name, def.Name)
		}
		seen[param.Name] = true
		if !validTypes[param.Type] {
			return fmt.Errorf("invalid parameter type %s for %s", param.Type, param.Name)
		}
		if param.Description == "" {
			return fmt.Errorf("parameter description cannot be empty for %s", param.Name)
		}
	}

	return nil
}
