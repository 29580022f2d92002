package models

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string // Category of a domain error

const (
	KindNotFound          ErrorKind = "not_found"
	KindValidation        ErrorKind = "validation"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindNotAuthorized     ErrorKind = "not_authorized"
	KindRFQClosed         ErrorKind = "rfq_closed"
	KindDuplicateBid      ErrorKind = "duplicate_bid"
)

// ErrorResponse describes a domain error with a kind, an HTTP status code and
// a message. The kind is what services and tests branch on; the status code is
// only consumed by the HTTP layer.
type ErrorResponse struct {
	Kind       ErrorKind `json:"kind"`
	StatusCode int       `json:"-"`
	Message    string    `json:"reason"`
}

// NewErrorResponse creates a new error with a kind, status code and message.
func NewErrorResponse(kind ErrorKind, statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		Kind:       kind,
		StatusCode: statusCode,
		Message:    message,
	}
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// NewNotFound reports an identifier that does not resolve to an entity.
func NewNotFound(message string) *ErrorResponse {
	return NewErrorResponse(KindNotFound, http.StatusNotFound, message)
}

// NewValidation reports a malformed or out-of-range field.
func NewValidation(message string) *ErrorResponse {
	return NewErrorResponse(KindValidation, http.StatusBadRequest, message)
}

// NewInvalidTransition reports an illegal state-machine transition, naming the
// current and attempted state.
func NewInvalidTransition(entity, from, to string) *ErrorResponse {
	return NewErrorResponse(KindInvalidTransition, http.StatusConflict,
		fmt.Sprintf("invalid %s transition from %q to %q", entity, from, to))
}

// NewNotAuthorized reports an acting user lacking ownership or panel membership.
func NewNotAuthorized(message string) *ErrorResponse {
	return NewErrorResponse(KindNotAuthorized, http.StatusForbidden, message)
}

// NewRFQClosed reports a bid attempt against a non-active or past-deadline RFQ.
func NewRFQClosed(message string) *ErrorResponse {
	return NewErrorResponse(KindRFQClosed, http.StatusConflict, message)
}

// NewDuplicateBid reports a second non-withdrawn bid from the same seller.
func NewDuplicateBid(message string) *ErrorResponse {
	return NewErrorResponse(KindDuplicateBid, http.StatusConflict, message)
}

// IsKind reports whether err is an ErrorResponse of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var resp *ErrorResponse
	if errors.As(err, &resp) {
		return resp.Kind == kind
	}
	return false
}
