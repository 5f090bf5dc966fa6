package schema

import (
	"sync"
)

type SupplierResponseErrorCode string

const (
	TransportError      SupplierResponseErrorCode = "TRANSPORT_ERROR"
	TimeoutError        SupplierResponseErrorCode = "TIMEOUT_ERROR"
	ParseError          SupplierResponseErrorCode = "PARSE_ERROR"
	SupplierError       SupplierResponseErrorCode = "SUPPLIER_ERROR"
	SupplierUnavailable SupplierResponseErrorCode = "SUPPLIER_UNAVAILABLE"
)

type SupplierResponseError struct {
	Code    SupplierResponseErrorCode `json:"code"`
	Message string                    `json:"message"`
}

type SupplierResponseErrors []SupplierResponseError

type errorsBucket struct {
	errors SupplierResponseErrors
	sync.Mutex
}

func NewErrorsBucket() errorsBucket {
	return errorsBucket{
		errors: []SupplierResponseError{},
	}
}

func (e *errorsBucket) AddErrors(errors []SupplierResponseError) {
	e.Lock()
	e.errors = append(e.errors, errors...)
	e.Unlock()
}

func (e *errorsBucket) AddError(err SupplierResponseError) {
	e.Lock()
	e.errors = append(e.errors, err)
	e.Unlock()
}

func (e *errorsBucket) Errors() *SupplierResponseErrors {
	return &e.errors
}

func NewSupplierError(msg string) SupplierResponseError {
	return SupplierResponseError{
		Code:    SupplierError,
		Message: msg,
	}
}

func NewParseError(msg string) SupplierResponseError {
	return SupplierResponseError{
		Code:    ParseError,
		Message: msg,
	}
}

func NewTimeoutError(msg string) SupplierResponseError {
	return SupplierResponseError{
		Code:    TimeoutError,
		Message: msg,
	}
}

func NewTransportError(msg string) SupplierResponseError {
	return SupplierResponseError{
		Code:    TransportError,
		Message: msg,
	}
}

func NewSupplierUnavailableError(msg string) SupplierResponseError {
	return SupplierResponseError{
		Code:    SupplierUnavailable,
		Message: msg,
	}
}
