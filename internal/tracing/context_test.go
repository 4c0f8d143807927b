package tracing

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestID(t *testing.T) {
	id1 := NewRequestID()
	id2 := NewRequestID()

	assert.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2)
}

func TestNewRequestContext(t *testing.T) {
	t.Run("keeps provided request ID", func(t *testing.T) {
		ctx := NewRequestContext(context.Background(), "req-123")
		assert.Equal(t, "req-123", GetRequestID(ctx))
	})

	t.Run("generates request ID when empty", func(t *testing.T) {
		ctx := NewRequestContext(context.Background(), "")
		assert.Len(t, GetRequestID(ctx), 36)
	})
}

func TestFromContext(t *testing.T) {
	ctx := context.Background()
	ctx = WithTraceID(ctx, "trace-1")
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithTool(ctx, "hello")
	ctx = WithIdentity(ctx, "Brian")

	tc := FromContext(ctx)
	assert.Equal(t, "trace-1", tc.TraceID)
	assert.Equal(t, "req-1", tc.RequestID)
	assert.Equal(t, "hello", tc.Tool)
	assert.Equal(t, "Brian", tc.Identity)
}

func TestFromContextEmpty(t *testing.T) {
	tc := FromContext(context.Background())
	assert.Empty(t, tc.TraceID)
	assert.Empty(t, tc.RequestID)
	assert.Empty(t, tc.Tool)
	assert.Empty(t, tc.Identity)
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := WithTool(WithRequestID(context.Background(), "req-9"), "run_n8n")
	logger := LoggerFromContext(ctx, base)
	logger.Info().Msg("call")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-9", entry["request_id"])
	assert.Equal(t, "run_n8n", entry["tool"])
	assert.NotContains(t, entry, "identity")
}

func TestStartSpanWithoutProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test", "span")
	defer span.End()

	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
}
