package extract

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FailureKind classifies where a Failure originated.
type FailureKind int

const (
	ParseFailure FailureKind = iota + 1
	ShapeFailure
	TransportFailure
	StoreFailure
	// InputFailure means the request itself was unusable, e.g. a blank food name.
	InputFailure
)

func (k FailureKind) String() string {
	switch k {
	case ParseFailure:
		return "parse"
	case ShapeFailure:
		return "shape"
	case TransportFailure:
		return "transport"
	case StoreFailure:
		return "store"
	case InputFailure:
		return "input"
	}
	return "unknown"
}

// Failure is the uniform error value handed back in place of a domain
// object. It serialises as {"error":true,"message":...,"details":...}.
type Failure struct {
	Error   bool        `json:"error"`
	Message string      `json:"message"`
	Details string      `json:"details,omitempty"`
	Kind    FailureKind `json:"-"`
}

// NewFailure builds a Failure of the given kind.
func NewFailure(kind FailureKind, message, details string) *Failure {
	return &Failure{Error: true, Message: message, Details: details, Kind: kind}
}

// Err adapts the Failure to the error interface.
func (f *Failure) Err() error {
	if f == nil {
		return nil
	}
	return failureError{f}
}

// WithMessage returns a copy of f whose user-facing message is replaced. The
// previous message is prepended to Details.
func (f *Failure) WithMessage(message string) *Failure {
	c := *f
	if c.Details == "" {
		c.Details = c.Message
	} else {
		c.Details = c.Message + ": " + c.Details
	}
	c.Message = message
	return &c
}

// JSON renders the Failure the way it is persisted and returned to clients.
func (f *Failure) JSON() string {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Sprintf(`{"error":true,"message":%q}`, f.Message)
	}
	return string(b)
}

type failureError struct{ f *Failure }

func (e failureError) Error() string {
	if e.f.Details != "" {
		return fmt.Sprintf("%s failure: %s: %s", e.f.Kind, e.f.Message, e.f.Details)
	}
	return fmt.Sprintf("%s failure: %s", e.f.Kind, e.f.Message)
}

// AsFailure recovers the Failure carried by an error produced by Failure.Err.
func AsFailure(err error) (*Failure, bool) {
	var fe failureError
	if !errors.As(err, &fe) {
		return nil, false
	}
	return fe.f, true
}

// Result holds exactly one of Value or Failure. Raw is the JSON text that was
// accepted, kept so callers can persist exactly what was validated.
type Result[T any] struct {
	Value   *T
	Failure *Failure
	Raw     json.RawMessage
}

// OK reports whether the result carries a value.
func (r Result[T]) OK() bool { return r.Failure == nil && r.Value != nil }

func succeed[T any](v *T, raw string) Result[T] {
	return Result[T]{Value: v, Raw: json.RawMessage(raw)}
}

func fail[T any](f *Failure) Result[T] {
	return Result[T]{Failure: f}
}
