// Package errors contains helper functions and types to work with errors
package errors

import (
	"errors"
	"net/http"
)

// Category defines error category
type Category int

const (
	// CategoryNoError is used when a call completed without error.
	CategoryNoError Category = iota
	// CategoryDataError The client sends some invalid data in the request,
	// for example, missing or incorrect content in the payload or parameters.
	CategoryDataError
	// CategoryUnauthorized The client is not authorized to access the requested resource
	CategoryUnauthorized
	// CategoryForbidden The client is not authenticated to access the requested resource
	CategoryForbidden
	// CategoryResourceNotFound The client is attempting to access a resource that does not exist
	CategoryResourceNotFound
	// CategoryNotSupported The requested functionality is not supported
	CategoryNotSupported
	// CategoryDataConflict The client send some data that can create conflict with existing data
	CategoryDataConflict
	// CategoryLocked The client is not able to access the requested resource due to its locked state
	CategoryLocked
	// CategoryDependencyFailure A dependent service is throwing errors
	CategoryDependencyFailure
	// CategoryGeneralError The service failed in an unexpected way
	CategoryGeneralError
)

func (c Category) String() string {
	switch c {
	case CategoryNoError:
		return "CategoryNoError"
	case CategoryDataError:
		return "CategoryDataError"
	case CategoryUnauthorized:
		return "CategoryUnauthorized"
	case CategoryForbidden:
		return "CategoryForbidden"
	case CategoryResourceNotFound:
		return "CategoryResourceNotFound"
	case CategoryNotSupported:
		return "CategoryNotSupported"
	case CategoryDataConflict:
		return "CategoryDataConflict"
	case CategoryLocked:
		return "CategoryLocked"
	case CategoryDependencyFailure:
		return "CategoryDependencyFailure"
	default:
		return "CategoryGeneralError"
	}
}

// CodeInternal is the machine-readable code attached to every unexpected failure.
const CodeInternal = "INTERNAL_ERROR"

// ServiceError represents service specific type that
// is used all over the services.
//
// Code is a stable machine-readable identifier for callers; Details carries the
// values (totals, identifiers) that caused the rejection.
type ServiceError struct {
	Category Category
	Code     string
	Message  string
	Details  map[string]any
	Err      error
}

// Error method to comply with error interface
func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

// Unwrap returns the underlying error
func (err ServiceError) Unwrap() error {
	return err.Err
}

// Is checks that provided error is a ServiceError with desired Category
func Is(err error, cat Category) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Category == cat {
		return true
	}
	return false
}

// CodeOf returns the machine-readable code of err, or CodeInternal when err
// is not a coded ServiceError.
func CodeOf(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Code != "" {
		return svcErr.Code
	}
	return CodeInternal
}

// IsInternalError checks that provided error is a Internal system error
func IsInternalError(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && (svcErr.Category < CategoryDependencyFailure) {
		return false
	}
	return true
}

// WithDetails attaches diagnostic values to the error and returns it.
func (err *ServiceError) WithDetails(details map[string]any) *ServiceError {
	if err.Details == nil {
		err.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		err.Details[k] = v
	}
	return err
}

func newError(cat Category, code string, err error, message, fallback string) *ServiceError {
	if err == nil {
		err = errors.New(fallback + message)
	}
	return &ServiceError{
		Category: cat,
		Code:     code,
		Message:  message,
		Err:      err,
	}
}

// GeneralError returns a general service error
// this error mesage sent to the user is "Internal Server Error"
// the error passed is logged in the logger
func GeneralError(err error) *ServiceError {
	if err == nil {
		err = errors.New("internal server error")
	}
	return &ServiceError{
		Category: CategoryGeneralError,
		Code:     CodeInternal,
		Message:  "Internal Server Error",
		Err:      err,
	}
}

// ResourceNotFoundError returns an error with category ResourceNotFound
func ResourceNotFoundError(code string, err error, message string) *ServiceError {
	return newError(CategoryResourceNotFound, code, err, message, "resource not found: ")
}

// BadRequestError returns an error with category DataError
func BadRequestError(code string, err error, message string) *ServiceError {
	return newError(CategoryDataError, code, err, message, "bad request: ")
}

// ForbiddenError returns an error with category CategoryForbidden
func ForbiddenError(code string, err error, message string) *ServiceError {
	return newError(CategoryForbidden, code, err, message, "request forbidden: ")
}

// ConflictError returns an error with category CategoryDataConflict
func ConflictError(code string, err error, message string) *ServiceError {
	return newError(CategoryDataConflict, code, err, message, "conflict: ")
}

// LockedError returns an error with category CategoryLocked.
// Used when a resource is in a state that blocks the requested transition.
func LockedError(code string, err error, message string) *ServiceError {
	return newError(CategoryLocked, code, err, message, "locked: ")
}

// StatusCode returns the HTTP status code for the error category
func (err ServiceError) StatusCode() int {
	switch err.Category {
	case CategoryDataError:
		return http.StatusBadRequest
	case CategoryUnauthorized:
		return http.StatusUnauthorized
	case CategoryForbidden:
		return http.StatusForbidden
	case CategoryResourceNotFound:
		return http.StatusNotFound
	case CategoryNotSupported:
		return http.StatusMethodNotAllowed
	case CategoryDataConflict:
		return http.StatusConflict
	case CategoryLocked:
		return http.StatusLocked
	case CategoryDependencyFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
