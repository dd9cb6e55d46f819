// Package apierr classifies failures of calls against the events API.
package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is the failure class of an API call, derived from the status code.
type Kind int

const (
	// KindNetwork covers timeouts, connection failures, cancellations and
	// unreadable responses. The status code is 0.
	KindNetwork Kind = iota
	// KindClient covers 4xx responses, which the caller can correct.
	KindClient
	// KindServer covers 5xx responses.
	KindServer
	// KindUnexpected covers any other non-2xx status, e.g. an unfollowed redirect.
	KindUnexpected
)

// String returns the kind name used in logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	default:
		return "unexpected"
	}
}

// KindOf classifies a status code.
func KindOf(status int) Kind {
	switch {
	case status == 0:
		return KindNetwork
	case status >= 400 && status < 500:
		return KindClient
	case status >= 500:
		return KindServer
	default:
		return KindUnexpected
	}
}

// Messages attached to network-level failures.
const (
	MsgTimeout        = "timeout: the request took too long"
	MsgConnection     = "unable to connect to the server"
	MsgInvalidPayload = "invalid response payload"
)

// Payload is the structured error body returned by the server, if any.
type Payload struct {
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Status  int             `json:"status,omitempty"`
	Path    string          `json:"path,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

// ParsePayload decodes an error body. It returns nil when the body is empty
// or is not a JSON object. Fields are decoded one by one, so a field with an
// unexpected type is left empty without losing the others.
func ParsePayload(body []byte) *Payload {
	if len(body) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil
	}

	p := &Payload{Raw: append(json.RawMessage(nil), body...)}
	decodeField(fields, "message", &p.Message)
	decodeField(fields, "error", &p.Error)
	decodeField(fields, "status", &p.Status)
	decodeField(fields, "path", &p.Path)
	return p
}

func decodeField(fields map[string]json.RawMessage, key string, dst any) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	_ = json.Unmarshal(raw, dst)
}

// Error is a failed API call.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Payload *Payload
	Cause   error
}

// New builds an error for a non-2xx response. The message is the server's
// message when present, else "HTTP <status>: <reason>".
func New(status int, reason string, payload *Payload) *Error {
	msg := fmt.Sprintf("HTTP %d: %s", status, reason)
	if payload != nil && payload.Message != "" {
		msg = payload.Message
	}
	return &Error{
		Kind:    KindOf(status),
		Status:  status,
		Message: msg,
		Payload: payload,
	}
}

// Network builds a status-0 error wrapping cause.
func Network(message string, cause error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: message,
		Cause:   cause,
	}
}

// FromTransport maps a transport-level failure to a network error. Only
// deadline expiry is told apart; a canceled call reads as a connection failure.
func FromTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return Network(MsgTimeout, err)
	}
	return Network(MsgConnection, err)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status == 0 {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Unwrap returns the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsNetworkError reports whether the call failed before a response was received.
func (e *Error) IsNetworkError() bool {
	return e.Status == 0
}

// IsClientError reports whether the server answered with a 4xx status.
func (e *Error) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// IsServerError reports whether the server answered with a 5xx status.
func (e *Error) IsServerError() bool {
	return e.Status >= 500
}

// IsTimeout reports whether the call was aborted by its deadline.
func (e *Error) IsTimeout() bool {
	return e.Status == 0 && errors.Is(e.Cause, context.DeadlineExceeded)
}

// UserMessage returns the user-facing text for the error.
func (e *Error) UserMessage() string {
	return UserMessage(e)
}

// As extracts an *Error from an error chain.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
