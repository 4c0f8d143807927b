package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/harun/toolgate/pkg/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noop = tool.HandlerFunc(func(ctx context.Context, args map[string]interface{}) tool.Result {
	return tool.Success(nil, "ok")
})

func greetEntry() Entry {
	return Entry{
		Definition: tool.Definition{
			Name:        "greet",
			Description: "Greets someone",
			Parameters: []tool.Parameter{
				{Name: "name", Type: tool.TypeString, Description: "Who to greet", Required: true},
				{Name: "times", Type: tool.TypeInteger, Description: "Repeat count"},
				{Name: "extra", Type: tool.TypeObject, Description: "Free-form options"},
			},
			RequiresAuth: true,
		},
		Handler: noop,
	}
}

func pingEntry() Entry {
	return Entry{
		Definition: tool.Definition{Name: "ping", Description: "Replies pong"},
		Handler:    noop,
	}
}

func TestNew(t *testing.T) {
	t.Run("keeps registration order", func(t *testing.T) {
		c, err := New(pingEntry(), greetEntry())
		require.NoError(t, err)

		assert.Equal(t, []string{"ping", "greet"}, c.Names())
		assert.Equal(t, 2, c.Len())
		assert.True(t, c.Has("greet"))
		assert.False(t, c.Has("missing"))

		defs := c.List()
		require.Len(t, defs, 2)
		assert.Equal(t, "ping", defs[0].Name)
		assert.True(t, defs[1].RequiresAuth)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := New(pingEntry(), pingEntry())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate tool name: ping")
	})

	tests := []struct {
		name    string
		mutate  func(e *Entry)
		wantErr string
	}{
		{"empty name", func(e *Entry) { e.Definition.Name = "" }, "tool name cannot be empty"},
		{"slash in name", func(e *Entry) { e.Definition.Name = "a/b" }, "cannot contain spaces or slashes"},
		{"empty description", func(e *Entry) { e.Definition.Description = "" }, "tool description cannot be empty"},
		{"nil handler", func(e *Entry) { e.Handler = nil }, "tool handler cannot be nil"},
		{"bad parameter type", func(e *Entry) { e.Definition.Parameters[0].Type = "date" }, "invalid parameter type date"},
		{"duplicate parameter", func(e *Entry) {
			e.Definition.Parameters = append(e.Definition.Parameters, e.Definition.Parameters[0])
		}, "duplicate parameter name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := greetEntry()
			tt.mutate(&entry)

			_, err := New(entry)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGet(t *testing.T) {
	c, err := New(greetEntry())
	require.NoError(t, err)

	entry, err := c.Get("greet")
	require.NoError(t, err)
	assert.Equal(t, "greet", entry.Definition.Name)
	assert.NotNil(t, entry.Handler)

	_, err = c.Get("unknown")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestValidate(t *testing.T) {
	c, err := New(greetEntry(), pingEntry())
	require.NoError(t, err)

	tests := []struct {
		name    string
		tool    string
		args    map[string]interface{}
		wantErr bool
	}{
		{"required present", "greet", map[string]interface{}{"name": "Ada"}, false},
		{"extra keys accepted", "greet", map[string]interface{}{"name": "Ada", "mood": "happy"}, false},
		{"optional typed values", "greet", map[string]interface{}{"name": "Ada", "times": 2, "extra": map[string]interface{}{"k": "v"}}, false},
		{"missing required", "greet", map[string]interface{}{}, true},
		{"wrong type", "greet", map[string]interface{}{"name": 42}, true},
		{"integer rejects fraction", "greet", map[string]interface{}{"name": "Ada", "times": 1.5}, true},
		{"object rejects string", "greet", map[string]interface{}{"name": "Ada", "extra": "nope"}, true},
		{"no parameters nil args", "ping", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Validate(tt.tool, tt.args)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.tool, verr.Tool)
			assert.NotEmpty(t, verr.Errors)
		})
	}

	t.Run("unknown tool", func(t *testing.T) {
		err := c.Validate("missing", nil)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("missing required names the field", func(t *testing.T) {
		err := c.Validate("greet", map[string]interface{}{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name")
	})
}
