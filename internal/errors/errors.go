package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeInternal              = "INTERNAL_ERROR"
	ErrCodeBadRequest            = "BAD_REQUEST"
	ErrCodeInsufficientQuestions = "INSUFFICIENT_QUESTIONS"
	ErrCodeInvalidState          = "INVALID_STATE"
)

// AppError is an error that knows how it should be reported to a client.
type AppError struct {
	Code    string
	Message string
	Status  int
	// Field names the offending input for validation errors.
	Field string
	Err   error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// From returns the AppError in err's chain, wrapping anything else as an
// internal error.
func From(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
		Field:   field,
	}
}

// NewInternalError hides err from clients; it is only logged.
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewInsufficientQuestionsError reports a filtered question pool too small
// for the requested quiz.
func NewInsufficientQuestionsError(requested, available int, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInsufficientQuestions,
		Message: fmt.Sprintf("not enough questions available with the selected criteria: requested %d, only %d found", requested, available),
		Status:  http.StatusUnprocessableEntity,
		Err:     err,
	}
}

// NewInvalidStateError reports a quiz action the session's state does not allow.
func NewInvalidStateError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidState,
		Message: message,
		Status:  http.StatusConflict,
		Err:     err,
	}
}
