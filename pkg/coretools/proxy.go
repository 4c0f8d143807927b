package coretools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/harun/toolgate/internal/tracing"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const maxResponseBytes = 10 * 1024 * 1024 // 10MB

// DownstreamRecorder observes outbound calls. Implemented by metrics.Metrics.
type DownstreamRecorder interface {
	ObserveDownstream(tool string, statusCode int)
}

// Proxy issues the single outbound POST a remote tool performs
type Proxy struct {
	client   *http.Client
	timeout  time.Duration
	recorder DownstreamRecorder
	maxBody  int64
}

// ProxyRequest describes one outbound call
type ProxyRequest struct {
	Tool    string
	URL     string
	Body    interface{}
	Bearer  string
	Headers map[string]string
}

// ProxyResponse is the raw downstream answer
type ProxyResponse struct {
	StatusCode int
	Body       []byte
	// Truncated is set when the body exceeded the read limit and was cut
	Truncated bool
}

// NewProxy creates a proxy with the given per-call timeout. A nil client
// uses a fresh http.Client; the timeout is applied through the context so
// that caller cancellation also aborts the call.
func NewProxy(client *http.Client, timeout time.Duration, recorder DownstreamRecorder) *Proxy {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Proxy{client: client, timeout: timeout, recorder: recorder, maxBody: maxResponseBytes}
}

// Post sends req as JSON. Non-2xx answers are not errors; only transport
// faults are.
func (p *Proxy) Post(ctx context.Context, req ProxyRequest) (*ProxyResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "downstream.post",
		attribute.String("tool.name", req.Tool),
		attribute.String("http.url", req.URL),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	payload, err := json.Marshal(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.Bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Bearer)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if requestID := tracing.GetRequestID(ctx); requestID != "" {
		httpReq.Header.Set("X-Request-ID", requestID)
	}

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.observe(req.Tool, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBody+1))
	if err != nil {
		p.observe(req.Tool, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "read error")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	truncated := int64(len(body)) > p.maxBody
	if truncated {
		body = body[:p.maxBody]
		span.SetAttributes(attribute.Bool("http.response_truncated", true))
		log.Warn().
			Str("tool", req.Tool).
			Int64("limit", p.maxBody).
			Msg("Downstream response exceeded read limit and was truncated")
	}

	p.observe(req.Tool, resp.StatusCode)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	log.Debug().
		Str("tool", req.Tool).
		Str("url", req.URL).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Downstream call completed")

	return &ProxyResponse{StatusCode: resp.StatusCode, Body: body, Truncated: truncated}, nil
}

func (p *Proxy) observe(toolName string, statusCode int) {
	if p.recorder != nil {
		p.recorder.ObserveDownstream(toolName, statusCode)
	}
}

// Data decodes the body as a single JSON object, keeping numbers as
// json.Number so large integers survive. Anything else, including valid
// JSON that is not an object, is returned under "raw_response".
func (r *ProxyResponse) Data() map[string]interface{} {
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()

	var data map[string]interface{}
	if err := dec.Decode(&data); err != nil || data == nil {
		return r.withTruncation(map[string]interface{}{"raw_response": string(r.Body)})
	}
	if _, err := dec.Token(); err != io.EOF {
		return r.withTruncation(map[string]interface{}{"raw_response": string(r.Body)})
	}
	return data
}

// FailureDetail is the detail carried by a downstream error result: the
// status code and the body verbatim
func (r *ProxyResponse) FailureDetail() map[string]interface{} {
	return r.withTruncation(map[string]interface{}{
		"status_code": r.StatusCode,
		"response":    string(r.Body),
	})
}

func (r *ProxyResponse) withTruncation(m map[string]interface{}) map[string]interface{} {
	if r.Truncated {
		m["truncated"] = true
	}
	return m
}

// IsTimeout reports whether err came from the call exceeding its deadline
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
