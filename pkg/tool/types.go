// Package tool defines the values shared by the catalog, the handlers and
// the dispatcher: tool definitions, the handler contract and call results.
package tool

import (
	"context"
	"fmt"
)

// Parameter types accepted in a tool definition
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

// Parameter describes one named argument of a tool
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Definition is the static description of a tool
type Definition struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Parameters   []Parameter `json:"parameters"`
	RequiresAuth bool        `json:"requires_auth"`
}

// Handler executes a tool. Expected failures are returned as Failure
// results, never as panics.
type Handler interface {
	Invoke(ctx context.Context, args map[string]interface{}) Result
}

// HandlerFunc adapts a plain function to Handler
type HandlerFunc func(ctx context.Context, args map[string]interface{}) Result

// Invoke calls f(ctx, args)
func (f HandlerFunc) Invoke(ctx context.Context, args map[string]interface{}) Result {
	return f(ctx, args)
}

// Kind classifies a failed tool call
type Kind string

const (
	KindDownstream    Kind = "downstream_error"
	KindTimeout       Kind = "timeout"
	KindMisconfigured Kind = "misconfigured"
	KindInternal      Kind = "internal"
)

// Result is the outcome of a handler invocation. Exactly one of the
// success or failure shapes is meaningful, selected by OK.
type Result struct {
	OK      bool
	Data    map[string]interface{}
	Message string

	// Set when OK is false
	Kind   Kind
	Detail map[string]interface{}
}

// Success builds a successful result
func Success(data map[string]interface{}, message string) Result {
	if data == nil {
		data = map[string]interface{}{}
	}
	return Result{OK: true, Data: data, Message: message}
}

// Failure builds a failed result
func Failure(kind Kind, message string, detail map[string]interface{}) Result {
	if detail == nil {
		detail = map[string]interface{}{}
	}
	return Result{Kind: kind, Message: message, Detail: detail}
}

// Failuref builds a failed result with a formatted message and no detail
func Failuref(kind Kind, format string, a ...interface{}) Result {
	return Failure(kind, fmt.Sprintf(format, a...), nil)
}

// String returns the argument as a string, or "" if absent or of another type
func String(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

// Object returns the argument as a JSON object, or nil if absent or of another type
func Object(args map[string]interface{}, name string) map[string]interface{} {
	m, _ := args[name].(map[string]interface{})
	return m
}
