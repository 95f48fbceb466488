package apierr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalicha-dev28/boutique-pos/internal/apperr"
	"github.com/qalicha-dev28/boutique-pos/pkg/validator"
	"github.com/qalicha-dev28/boutique-pos/pkg/zerror"
)

func TestZErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"not found", apperr.ErrSaleNotFound, "SALE_NOT_FOUND", http.StatusNotFound},
		{"conflict", apperr.ErrEmailTaken, "EMAIL_TAKEN", http.StatusConflict},
		{"unauthorized", apperr.ErrInvalidCredentials, "INVALID_CREDENTIALS", http.StatusUnauthorized},
		{"forbidden", apperr.ErrForbidden, "FORBIDDEN", http.StatusForbidden},
		{"insufficient stock", apperr.ErrInsufficientStock, "INSUFFICIENT_STOCK", http.StatusBadRequest},
		{"already refunded", apperr.ErrAlreadyRefunded, "ALREADY_REFUNDED", http.StatusBadRequest},
		{"validation", apperr.ValidationErr.WithMsg("quantity must be positive"), "VALIDATION_FAILED", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(tt.err)
			assert.Equal(t, tt.wantCode, res.Code)
			assert.Equal(t, tt.wantStatus, res.StatusCode)
		})
	}
}

func TestStatusToHTTPStatusCoversAllStatuses(t *testing.T) {
	tests := []struct {
		status zerror.Status
		want   int
	}{
		{zerror.StatusUnknown, http.StatusInternalServerError},
		{zerror.StatusBadRequest, http.StatusBadRequest},
		{zerror.StatusValidationFailed, http.StatusBadRequest},
		{zerror.StatusUnauthorized, http.StatusUnauthorized},
		{zerror.StatusForbidden, http.StatusForbidden},
		{zerror.StatusNotFound, http.StatusNotFound},
		{zerror.StatusConflict, http.StatusConflict},
		{zerror.StatusUnprocessableEntity, http.StatusUnprocessableEntity},
		{zerror.StatusTooManyRequests, http.StatusTooManyRequests},
		{zerror.StatusInternalServerError, http.StatusInternalServerError},
		{zerror.StatusNotImplemented, http.StatusNotImplemented},
		{zerror.StatusBadGateway, http.StatusBadGateway},
		{zerror.StatusServiceUnavailable, http.StatusServiceUnavailable},
		{zerror.StatusTimeout, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ZErrorStatusToHTTPStatus(tt.status))
		})
	}
}

func TestWrappedZErrorMapping(t *testing.T) {
	err := apperr.ErrProductNotFound.WrapParent(errors.New("no rows"))
	res := New(err)

	assert.Equal(t, "PRODUCT_NOT_FOUND", res.Code)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestValidationErrorsCarryFieldDetails(t *testing.T) {
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	type req struct {
		Email    string `validate:"required,email"`
		Quantity int    `validate:"gt=0"`
	}

	res := New(v.Validate(req{Email: "not-an-email"}))
	assert.Equal(t, "validationError", res.Code)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.NotNil(t, res.Details)
	assert.Len(t, *res.Details, 2)
}

func TestUnknownErrorIsInternal(t *testing.T) {
	res := New(errors.New("boom"))
	assert.Equal(t, InternalServerErr, res)
}
