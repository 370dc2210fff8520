package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// PaymentErrorCode is the closed set of failure kinds the orchestration
// layer can surface. Retryability is decided where the error is created,
// never by inspecting message text.
type PaymentErrorCode string

const (
	ErrAuthRequired          PaymentErrorCode = "AUTH_REQUIRED"
	ErrEmailNotVerified      PaymentErrorCode = "EMAIL_NOT_VERIFIED"
	ErrServiceNotFound       PaymentErrorCode = "SERVICE_NOT_FOUND"
	ErrServiceDataMissing    PaymentErrorCode = "SERVICE_DATA_MISSING"
	ErrInvalidPackage        PaymentErrorCode = "INVALID_PACKAGE"
	ErrClientProfileMissing  PaymentErrorCode = "CLIENT_PROFILE_MISSING"
	ErrClientProfileError    PaymentErrorCode = "CLIENT_PROFILE_ERROR"
	ErrOrderCreationFailed   PaymentErrorCode = "ORDER_CREATION_FAILED"
	ErrZohoUnavailable       PaymentErrorCode = "ZOHO_UNAVAILABLE"
	ErrZohoConfigMissing     PaymentErrorCode = "ZOHO_CONFIG_MISSING"
	ErrZohoAuthFailed        PaymentErrorCode = "ZOHO_AUTH_FAILED"
	ErrZohoAPIError          PaymentErrorCode = "ZOHO_API_ERROR"
	ErrZohoIntegrationFailed PaymentErrorCode = "ZOHO_INTEGRATION_FAILED"
)

// PaymentError carries a machine-readable code, a human message, optional
// detail payload and an explicit retryable flag.
type PaymentError struct {
	Code      PaymentErrorCode `json:"code"`
	Message   string           `json:"message"`
	Detail    interface{}      `json:"detail,omitempty"`
	Retryable bool             `json:"retryable"`
	Err       error            `json:"-"`
}

// Error implements the error interface
func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the unwrap interface
func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a non-retryable PaymentError
func NewPaymentError(code PaymentErrorCode, message string, err error) *PaymentError {
	return &PaymentError{Code: code, Message: message, Err: err}
}

// NewRetryablePaymentError creates a PaymentError tagged for retry
func NewRetryablePaymentError(code PaymentErrorCode, message string, err error) *PaymentError {
	return &PaymentError{Code: code, Message: message, Err: err, Retryable: true}
}

// WithDetail attaches a detail payload and returns the error
func (e *PaymentError) WithDetail(detail interface{}) *PaymentError {
	e.Detail = detail
	return e
}

// AsPaymentError returns the PaymentError wrapped anywhere in err's chain
func AsPaymentError(err error) (*PaymentError, bool) {
	var pe *PaymentError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsRetryable reports whether err is a PaymentError tagged as retryable
func IsRetryable(err error) bool {
	if pe, ok := AsPaymentError(err); ok {
		return pe.Retryable
	}
	return false
}

// HTTPStatus maps an error code to the response status for the handler layer
func (e *PaymentError) HTTPStatus() int {
	switch e.Code {
	case ErrAuthRequired:
		return http.StatusUnauthorized
	case ErrEmailNotVerified:
		return http.StatusForbidden
	case ErrServiceNotFound:
		return http.StatusNotFound
	case ErrInvalidPackage:
		return http.StatusBadRequest
	case ErrClientProfileMissing:
		return http.StatusNotFound
	case ErrZohoUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
