package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error independently of its HTTP status
type Kind string

const (
	KindGeneric         Kind = "generic"
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindOutOfStock      Kind = "out_of_stock"
	KindHidden          Kind = "hidden"
	KindTransport       Kind = "transport"
	KindAuthExpired     Kind = "auth_expired"
	KindPartialCheckout Kind = "partial_checkout"
	KindBusy            Kind = "busy"
	KindUnauthorized    Kind = "unauthorized"
	KindConflict        Kind = "conflict"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind"`
	Message string       `json:"message"`
	Stage   string       `json:"stage,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two application errors by kind, so callers can test
// errors.Is(err, apperror.ErrOutOfStock) without caring about the message.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Common errors
var (
	ErrNotFound        = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrUnauthorized    = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrBadRequest      = &AppError{Code: http.StatusBadRequest, Kind: KindValidation, Message: "Bad request"}
	ErrInternalServer  = &AppError{Code: http.StatusInternalServerError, Kind: KindGeneric, Message: "Internal server error"}
	ErrConflict        = &AppError{Code: http.StatusConflict, Kind: KindConflict, Message: "Resource already exists"}
	ErrValidation      = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindValidation, Message: "Validation failed"}
	ErrOutOfStock      = &AppError{Code: http.StatusConflict, Kind: KindOutOfStock, Message: "Insufficient stock"}
	ErrHiddenProduct   = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindHidden, Message: "This product is no longer available for sale"}
	ErrTransport       = &AppError{Code: http.StatusBadGateway, Kind: KindTransport, Message: "Back office unreachable"}
	ErrAuthExpired     = &AppError{Code: http.StatusUnauthorized, Kind: KindAuthExpired, Message: "Session expired, please log in again"}
	ErrPartialCheckout = &AppError{Code: http.StatusOK, Kind: KindPartialCheckout, Message: "Order recorded with warnings"}
	ErrBusy            = &AppError{Code: http.StatusConflict, Kind: KindBusy, Message: "Another request is already in progress"}
	ErrInvalidToken    = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Invalid token"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    KindGeneric,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Message: message,
	}
}

// NewOutOfStockError names the store the product cannot be sold from
func NewOutOfStockError(storeName string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindOutOfStock,
		Message: "Insufficient stock for this product in the " + storeName + " store",
	}
}

// NewTransportError wraps a network, timeout or unexpected-status failure
func NewTransportError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Kind:    KindTransport,
		Message: message,
		Err:     err,
	}
}

// NewAuthExpiredError reports a missing or rejected credential
func NewAuthExpiredError(err error) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Kind:    KindAuthExpired,
		Message: "Session expired, please log in again",
		Err:     err,
	}
}

// NewPartialCheckoutError reports an order that exists but whose documents
// were not generated or retrieved at the given stage
func NewPartialCheckoutError(stage, message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusOK,
		Kind:    KindPartialCheckout,
		Stage:   stage,
		Message: message,
		Err:     err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// KindOf returns the kind of err, or KindGeneric for foreign errors
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindGeneric
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindGeneric,
		Message: err.Error(),
	}
}
