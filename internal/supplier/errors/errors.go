package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a supplier call failure. Only Transport is retryable;
// Parse and Supplier failures are deterministic.
type Kind int

const (
	KindTransport Kind = iota
	KindParse
	KindSupplier
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	case KindSupplier:
		return "supplier"
	case KindUnavailable:
		return "unavailable"
	}
	return "unknown"
}

type Error struct {
	Kind     Kind
	Supplier string
	Op       string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s %s: %s error: %s", e.Supplier, e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Transport(supplier, op string, err error) *Error {
	return &Error{Kind: KindTransport, Supplier: supplier, Op: op, Err: err}
}

func Parse(supplier, op, message string) *Error {
	return &Error{Kind: KindParse, Supplier: supplier, Op: op, Message: message}
}

func Supplier(supplier, op, message string) *Error {
	return &Error{Kind: KindSupplier, Supplier: supplier, Op: op, Message: message}
}

func Unavailable(supplier, op string) *Error {
	return &Error{Kind: KindUnavailable, Supplier: supplier, Op: op, Message: "supplier unavailable"}
}

// KindOf reports the kind of err, or KindTransport for untyped errors since
// raw network failures arrive untyped from the http client.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}

func IsRetryable(err error) bool {
	return KindOf(err) == KindTransport
}

var (
	ErrInvalidRateReference = errors.New("invalid rate reference")
	ErrorNotImplemented     = errors.New("not implemented")
)
