package dispatch

import (
	"fmt"
	"net/http"

	"github.com/harun/toolgate/pkg/tool"
)

// Kind is the failure taxonomy of a tool call. It decides the HTTP status.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindInvalidArguments Kind = "invalid_arguments"
	KindUnauthenticated  Kind = "unauthenticated"
	KindForbidden        Kind = "forbidden"
	KindTimeout          Kind = "timeout"
	KindMisconfigured    Kind = "misconfigured"
	KindInternal         Kind = "internal"
)

// Error is a call that did not produce an envelope-level result
type Error struct {
	Kind    Kind
	Message string
	Data    map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsClientError reports whether the caller sent an unusable request
func (e *Error) IsClientError() bool {
	return e.Kind == KindNotFound || e.Kind == KindInvalidArguments
}

// StatusCode maps the failure kind to its HTTP status
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArguments:
		return http.StatusUnprocessableEntity
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Envelope renders the error in the uniform response shape. Detail repeats
// the message for clients that expect a {detail} error body.
func (e *Error) Envelope() *Envelope {
	data := make(map[string]interface{}, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = v
	}
	data["error"] = string(e.Kind)

	return &Envelope{
		Success: false,
		Data:    data,
		Message: e.Message,
		Detail:  e.Message,
	}
}

func newError(kind Kind, err error, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...), Err: err}
}

// fromFailure converts a handler failure that is not reported in-band
func fromFailure(res tool.Result) *Error {
	kind := KindInternal
	switch res.Kind {
	case tool.KindTimeout:
		kind = KindTimeout
	case tool.KindMisconfigured:
		kind = KindMisconfigured
	}
	return &Error{Kind: kind, Message: res.Message, Data: res.Detail}
}
