package requests

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeNotFound          Code = "NOT_FOUND"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodeForbidden         Code = "FORBIDDEN"
	CodeInternal          Code = "INTERNAL"
)

type DomainError struct {
	Code    Code
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func ErrInvalid(msg string) error {
	return &DomainError{Code: CodeInvalidArgument, Message: msg}
}

func ErrNotFound(msg string) error {
	return &DomainError{Code: CodeNotFound, Message: msg}
}

// ErrInvalidTransition covers double-issue, double-return, deciding a
// non-pending request and issuing a document request.
func ErrInvalidTransition(msg string) error {
	return &DomainError{Code: CodeInvalidTransition, Message: msg}
}

// ErrInsufficientStock leaves the request approved; the caller may retry
// once stock comes back.
func ErrInsufficientStock(msg string) error {
	return &DomainError{Code: CodeInsufficientStock, Message: msg}
}

func ErrInternal(msg string) error {
	return &DomainError{Code: CodeInternal, Message: msg}
}

// IsCode reports whether err is a DomainError with the given code.
func IsCode(err error, code Code) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

func ToHTTPStatus(err error) int {
	var de *DomainError
	if errors.As(err, &de) {
		switch de.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeNotFound:
			return http.StatusNotFound
		case CodeInvalidTransition, CodeInsufficientStock:
			return http.StatusConflict
		case CodeForbidden:
			return http.StatusForbidden
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
