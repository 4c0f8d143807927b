// Package dispatch runs a tool call through its fixed pipeline: resolve the
// tool, validate arguments, authenticate and authorize when the tool
// requires it, invoke the handler and wrap the outcome in an envelope. The
// pipeline stops at the first failing step and never retries.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/harun/toolgate/internal/tracing"
	"github.com/harun/toolgate/pkg/auth"
	"github.com/harun/toolgate/pkg/catalog"
	"github.com/harun/toolgate/pkg/tool"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "toolgate/dispatch"

// Envelope is the wire shape of every tool call outcome
type Envelope struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
	Message string                 `json:"message"`
	Detail  string                 `json:"detail,omitempty"`
}

// Request is an inbound call as seen by the transport
type Request struct {
	ToolName string
	// Body is the raw JSON arguments object; empty means {}
	Body []byte
	// Authorization is the raw Authorization header value
	Authorization string
}

// ToolCall is a validated call ready for its handler
type ToolCall struct {
	ToolName  string
	Arguments map[string]interface{}
	Identity  *auth.Identity
}

// Observer receives per-call measurements. Implemented by metrics.Metrics.
type Observer interface {
	ObserveToolCall(tool, outcome string, duration time.Duration)
	ObserveAuthFailure(tool, reason string)
}

// Dispatcher routes calls to catalog handlers
type Dispatcher struct {
	catalog    *catalog.Catalog
	authorizer *auth.Authorizer
	observer   Observer
	logger     zerolog.Logger
}

// New creates a dispatcher. observer may be nil.
func New(cat *catalog.Catalog, authorizer *auth.Authorizer, observer Observer, logger zerolog.Logger) (*Dispatcher, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if authorizer == nil {
		return nil, fmt.Errorf("authorizer is required")
	}
	return &Dispatcher{
		catalog:    cat,
		authorizer: authorizer,
		observer:   observer,
		logger:     logger,
	}, nil
}

// Dispatch executes req. A non-nil error is always a *Error; downstream
// business failures come back as an envelope with Success false.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Envelope, error) {
	start := time.Now()
	ctx = tracing.WithTool(ctx, req.ToolName)
	ctx, span := tracing.StartSpan(ctx, tracerName, "tool.call", attribute.String("tool.name", req.ToolName))
	defer span.End()

	env, derr := d.run(ctx, req)

	outcome := "success"
	switch {
	case derr != nil:
		outcome = string(derr.Kind)
		span.SetStatus(codes.Error, derr.Message)
	case !env.Success:
		outcome = string(tool.KindDownstream)
	}
	span.SetAttributes(attribute.String("tool.outcome", outcome))

	duration := time.Since(start)
	if d.observer != nil {
		d.observer.ObserveToolCall(req.ToolName, outcome, duration)
	}

	logger := tracing.LoggerFromContext(ctx, d.logger)
	if derr != nil {
		event := logger.Warn()
		if derr.StatusCode() >= 500 {
			event = logger.Error()
		}
		event.
			Err(derr.Err).
			Str("outcome", outcome).
			Dur("duration", duration).
			Msg(derr.Message)
		return nil, derr
	}

	logger.Info().
		Str("outcome", outcome).
		Bool("success", env.Success).
		Dur("duration", duration).
		Msg("Tool call completed")

	return env, nil
}

func (d *Dispatcher) run(ctx context.Context, req Request) (*Envelope, *Error) {
	// 1. resolve
	entry, err := d.catalog.Get(req.ToolName)
	if err != nil {
		return nil, newError(KindNotFound, err, "Tool not found: %s", req.ToolName)
	}

	// 2. validate
	args, derr := decodeArguments(req.Body)
	if derr != nil {
		return nil, derr
	}
	if err := d.catalog.Validate(req.ToolName, args); err != nil {
		derr := newError(KindInvalidArguments, err, "Invalid arguments for tool: %s", req.ToolName)
		var verr *catalog.ValidationError
		if errors.As(err, &verr) {
			derr.Data = map[string]interface{}{"errors": verr.Errors}
		}
		return nil, derr
	}

	call := ToolCall{ToolName: req.ToolName, Arguments: args}

	// 3 & 4. authenticate and authorize
	if entry.Definition.RequiresAuth {
		identity, derr := d.authenticate(req)
		if derr != nil {
			return nil, derr
		}
		call.Identity = identity

		if err := d.authorizer.Authorize(identity, req.ToolName); err != nil {
			d.observeAuthFailure(req.ToolName, "forbidden")
			return nil, newError(KindForbidden, err, "Insufficient permissions for tool: %s", req.ToolName)
		}
		ctx = tracing.WithIdentity(ctx, identity.Name)
	}

	// 5. invoke
	res := d.invoke(ctx, entry.Handler, call)

	// 6. envelope
	if res.OK {
		return &Envelope{Success: true, Data: res.Data, Message: res.Message}, nil
	}
	if res.Kind == tool.KindDownstream {
		return &Envelope{Success: false, Data: res.Detail, Message: res.Message}, nil
	}
	return nil, fromFailure(res)
}

func (d *Dispatcher) authenticate(req Request) (*auth.Identity, *Error) {
	key, err := auth.ParseBearer(req.Authorization)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidScheme) {
			d.observeAuthFailure(req.ToolName, "invalid_scheme")
			return nil, newError(KindUnauthenticated, err, "Authorization header must be 'Bearer <api key>'")
		}
		d.observeAuthFailure(req.ToolName, "missing_key")
		return nil, newError(KindUnauthenticated, err, "Invalid or missing API key")
	}

	identity, err := d.authorizer.Authenticate(key)
	if err != nil {
		d.observeAuthFailure(req.ToolName, "invalid_key")
		return nil, newError(KindUnauthenticated, err, "Invalid or missing API key")
	}
	return identity, nil
}

// invoke runs the handler, turning a panic into an internal failure
func (d *Dispatcher) invoke(ctx context.Context, h tool.Handler, call ToolCall) (res tool.Result) {
	defer func() {
		if r := recover(); r != nil {
			logger := tracing.LoggerFromContext(ctx, d.logger)
			logger.Error().
				Interface("panic", r).
				Msg("Panic in tool handler")
			res = tool.Failuref(tool.KindInternal, "Error processing %s request: %v", call.ToolName, r)
		}
	}()

	return h.Invoke(ctx, call.Arguments)
}

func (d *Dispatcher) observeAuthFailure(toolName, reason string) {
	if d.observer != nil {
		d.observer.ObserveAuthFailure(toolName, reason)
	}
}

// decodeArguments parses the request body as a JSON object. Numbers are
// kept as json.Number so payloads pass through downstream unchanged.
func decodeArguments(body []byte) (map[string]interface{}, *Error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return map[string]interface{}{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, newError(KindInvalidArguments, err, "Request body is not valid JSON")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, newError(KindInvalidArguments, err, "Request body is not valid JSON")
	}

	args, ok := raw.(map[string]interface{})
	if !ok {
		return nil, newError(KindInvalidArguments, nil, "Request body must be a JSON object")
	}
	return args, nil
}
