package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentErrorRetryableTagging(t *testing.T) {
	hard := NewPaymentError(ErrZohoAuthFailed, "bad credentials", nil)
	assert.False(t, IsRetryable(hard))

	soft := NewRetryablePaymentError(ErrZohoUnavailable, "provider down", nil)
	assert.True(t, IsRetryable(soft))

	// Wrapping must not change retryability
	wrapped := fmt.Errorf("invoicing: %w", soft)
	assert.True(t, IsRetryable(wrapped))

	assert.False(t, IsRetryable(errors.New("plain error")))
}

func TestAsPaymentErrorUnwrapsChain(t *testing.T) {
	pe := NewPaymentError(ErrServiceNotFound, "not found", nil)
	wrapped := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", pe))

	got, ok := AsPaymentError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ErrServiceNotFound, got.Code)

	_, ok = AsPaymentError(errors.New("plain"))
	assert.False(t, ok)
}

func TestPaymentErrorHTTPStatus(t *testing.T) {
	cases := map[PaymentErrorCode]int{
		ErrAuthRequired:          http.StatusUnauthorized,
		ErrEmailNotVerified:      http.StatusForbidden,
		ErrServiceNotFound:       http.StatusNotFound,
		ErrInvalidPackage:        http.StatusBadRequest,
		ErrClientProfileMissing:  http.StatusNotFound,
		ErrZohoUnavailable:       http.StatusServiceUnavailable,
		ErrZohoAPIError:          http.StatusInternalServerError,
		ErrZohoIntegrationFailed: http.StatusInternalServerError,
	}
	for code, want := range cases {
		pe := NewPaymentError(code, "x", nil)
		assert.Equal(t, want, pe.HTTPStatus(), "code %s", code)
	}
}

func TestPaymentErrorMessageFormat(t *testing.T) {
	bare := NewPaymentError(ErrInvalidPackage, "Package not available", nil)
	assert.Equal(t, "INVALID_PACKAGE: Package not available", bare.Error())

	caused := NewPaymentError(ErrZohoAPIError, "Invoice rejected", errors.New("status 400"))
	assert.Contains(t, caused.Error(), "status 400")
	assert.Equal(t, "status 400", caused.Unwrap().Error())
}

func TestWithDetail(t *testing.T) {
	pe := NewPaymentError(ErrInvalidPackage, "x", nil).WithDetail("duplicate")
	detail, ok := pe.Detail.(string)
	assert.True(t, ok)
	assert.Equal(t, "duplicate", detail)
}
