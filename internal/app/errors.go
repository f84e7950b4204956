package app

import (
	"fmt"
	"net/http"
)

const (
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeNotFound         = "NOT_FOUND"
	CodePersistenceError = "PERSISTENCE_ERROR"
	CodeServerError      = "SERVER_ERROR"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func unauthenticated() *DomainError {
	return domainError(http.StatusUnauthorized, CodeUnauthenticated, "Unauthenticated", nil)
}

func invalidRequest(message string, details any) *DomainError {
	return domainError(http.StatusBadRequest, CodeInvalidRequest, message, details)
}

// notFound is used both for missing notes and for notes owned by someone
// else.
func notFound() *DomainError {
	return domainError(http.StatusNotFound, CodeNotFound, "Not found", nil)
}
