// Package apperr defines the closed error taxonomy shared by the service
// and HTTP layers. Store and Provider errors keep their cause for logging
// but expose only a generic user-facing message.
package apperr

import (
	"fmt"
	"net/http"
)

type Kind int

const (
	KindNotFound Kind = iota
	KindValidation
	KindStore
	KindProvider
)

type Error struct {
	Kind     Kind
	Resource string // set for NotFound
	Message  string // set for Validation
	Err      error  // internal cause for Store/Provider, never user-visible
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Resource: resource}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Store(err error) *Error {
	return &Error{Kind: KindStore, Err: err}
}

func Provider(err error) *Error {
	return &Error{Kind: KindProvider, Err: err}
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("resource not found: %s", e.Resource)
	case KindValidation:
		return fmt.Sprintf("validation error: %s", e.Message)
	case KindStore:
		return fmt.Sprintf("database error: %v", e.Err)
	case KindProvider:
		return fmt.Sprintf("external api error: %v", e.Err)
	}
	return "unknown error"
}

func (e *Error) Unwrap() error { return e.Err }

// Code is the stable client-visible error code.
func (e *Error) Code() string {
	switch e.Kind {
	case KindNotFound:
		return "NOT_FOUND"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindStore:
		return "DATABASE_ERROR"
	default:
		return "EXTERNAL_API_ERROR"
	}
}

// UserMessage is safe to return to clients; internal detail stays in Err.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("%s not found", e.Resource)
	case KindValidation:
		return e.Message
	case KindStore:
		return "Database operation failed"
	default:
		return "External service unavailable"
	}
}

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindStore:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}
