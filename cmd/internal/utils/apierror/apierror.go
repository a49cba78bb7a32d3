// Package apierror is the error surface services hand to the transport
// layer. Every error knows its HTTP status and carries a stable
// machine-readable id alongside the human message, so callers can
// branch without string matching.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"meetpoint/cmd/internal/domain/invariant"
)

type ErrorResponse interface {
	error

	// Code is the HTTP status the transport layer should answer with.
	Code() int

	// ID is the stable error identifier ("Conflict", "INV-A001", ...).
	ID() string
}

type apiError struct {
	Status        int    `json:"-"`
	ErrorID       string `json:"error"`
	Message       string `json:"message"`
	ConflictingID string `json:"conflicting_appointment_id,omitempty"`
}

func (e *apiError) Error() string { return e.Message }
func (e *apiError) Code() int     { return e.Status }
func (e *apiError) ID() string    { return e.ErrorID }

var (
	InternalServerError = NewSimple(http.StatusInternalServerError, "InternalError", "Unexpected internal error")
	MalformedBodyError  = NewSimple(http.StatusBadRequest, "InvalidRequest", "Request body could not be parsed")
	NotFoundError       = NewSimple(http.StatusNotFound, "NotFound", "Resource not found")
)

func NewSimple(status int, id, message string) ErrorResponse {
	return &apiError{Status: status, ErrorID: id, Message: message}
}

func NewMissingParamError(name string) ErrorResponse {
	return NewSimple(http.StatusBadRequest, "InvalidRequest", fmt.Sprintf("Missing required parameter %q", name))
}

// NewValidation wraps a broken creation invariant. The invariant code
// is the error id so clients can tell INV-A001 from INV-A004 apart.
func NewValidation(v *invariant.Violation) ErrorResponse {
	return &apiError{Status: http.StatusBadRequest, ErrorID: v.Code, Message: v.Message}
}

// NewTransition wraps an illegal manual status change (terminal
// current status, or an order violation).
func NewTransition(v *invariant.Violation) ErrorResponse {
	return &apiError{Status: http.StatusConflict, ErrorID: v.Code, Message: v.Message}
}

// NewManualTargetNotAllowed rejects manual updates whose target is
// anything but CANCELLED. Deliberately distinct from NewTransition so
// the automatic-only policy is discoverable by clients.
func NewManualTargetNotAllowed(requested string) ErrorResponse {
	return &apiError{
		Status:  http.StatusBadRequest,
		ErrorID: "ManualTransitionNotAllowed",
		Message: fmt.Sprintf("Only CANCELLED may be requested manually, got %q", requested),
	}
}

// NewConflict reports a double-booking against an existing
// appointment of the same host.
func NewConflict(conflictingID string) ErrorResponse {
	return &apiError{
		Status:        http.StatusConflict,
		ErrorID:       "Conflict",
		Message:       fmt.Sprintf("Time window overlaps appointment %s", conflictingID),
		ConflictingID: conflictingID,
	}
}

// NewHostNotFound rejects creation for a host the directory does not
// know. Nothing is persisted.
func NewHostNotFound(hostID string) ErrorResponse {
	return &apiError{
		Status:  http.StatusNotFound,
		ErrorID: "HostNotFound",
		Message: fmt.Sprintf("Host %s does not exist", hostID),
	}
}

// NewDependency reports a failed or timed-out collaborator call that
// was fatal to the operation.
func NewDependency(dependency string) ErrorResponse {
	return &apiError{
		Status:  http.StatusFailedDependency,
		ErrorID: "DependencyFailure",
		Message: fmt.Sprintf("Lookup against %s failed", dependency),
	}
}

// FromValidationError converts go-playground struct validation
// failures into a 400 naming the first offending field.
func FromValidationError(err error) ErrorResponse {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		first := fieldErrors[0]
		return NewSimple(http.StatusBadRequest, "InvalidRequest",
			fmt.Sprintf("Field %q failed validation rule %q", first.Field(), first.Tag()))
	}
	return NewSimple(http.StatusBadRequest, "InvalidRequest", "Request validation failed")
}
