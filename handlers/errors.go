package handlers

import (
	"errors"
	"net/http"

	"ride-booking-api/auth"
	"ride-booking-api/middleware"
	"ride-booking-api/statemachine"
	"ride-booking-api/store"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/sirupsen/logrus"
)

const (
	codeValidation  = "validation"
	codeNotFound    = "not_found"
	codeConflict    = "conflict"
	codeInvalidCode = "invalid_code"
	codeExpiredCode = "expired_code"
	codeCredentials = "invalid_credentials"
	codeInternal    = "internal"
)

// APIError is a failure with a fixed status and client-facing message.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func newAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

var (
	errInvalidCredentials = newAPIError(http.StatusUnauthorized, codeCredentials, "Invalid credentials")
	errFederatedLogin     = newAPIError(http.StatusUnauthorized, codeCredentials, "This account was created with a third-party provider. Please use that sign-in method.")
	errElevatedPassword   = newAPIError(http.StatusUnauthorized, codeCredentials, "Admin accounts must use password authentication.")
	errFederatedPassword  = newAPIError(http.StatusBadRequest, codeValidation, "This account was created with a third-party provider and has no password.")
	errAlreadyVerified    = newAPIError(http.StatusBadRequest, codeValidation, "User is already verified")
	errDevelopmentOnly    = newAPIError(http.StatusForbidden, middleware.CodeForbidden, "Admin registration is only available in development mode")
)

// errorFor maps a domain error to its response. Unknown errors are internal.
func errorFor(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return newAPIError(http.StatusNotFound, codeNotFound, "Record not found")
	case errors.Is(err, store.ErrEmailTaken):
		return newAPIError(http.StatusConflict, codeConflict, "Email already registered")
	case errors.Is(err, store.ErrPrimeAdminExists):
		return newAPIError(http.StatusConflict, codeConflict, "A Prime Admin account already exists. There can only be one Prime Admin.")
	case errors.Is(err, auth.ErrOTPExpired):
		return newAPIError(http.StatusBadRequest, codeExpiredCode, "OTP has expired. Please request a new one.")
	case errors.Is(err, auth.ErrOTPMismatch), errors.Is(err, auth.ErrOTPMissing), errors.Is(err, store.ErrCodeAlreadyUsed):
		return newAPIError(http.StatusBadRequest, codeInvalidCode, "Invalid OTP")
	case errors.Is(err, store.ErrFederatedElevated),
		errors.Is(err, store.ErrCreditsNotTracked),
		errors.Is(err, store.ErrNegativeCredits),
		errors.Is(err, store.ErrInvalidAccountRole),
		errors.Is(err, statemachine.ErrInvalidTransition),
		errors.Is(err, statemachine.ErrNotAdmin):
		return newAPIError(http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, statemachine.ErrSelfAction),
		errors.Is(err, statemachine.ErrInsufficientTier),
		errors.Is(err, statemachine.ErrPrimeAdminImmutable):
		return newAPIError(http.StatusForbidden, middleware.CodeForbidden, err.Error())
	}
	return nil
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := map[string]string{}
		for field, fieldErr := range verrs {
			fields[field] = fieldErr.Error()
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "code": codeValidation, "fields": fields})
		return
	}
	if apiErr := errorFor(err); apiErr != nil {
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Message, "code": apiErr.Code})
		return
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"path":       c.FullPath(),
	}).Error("internal error")
	body := gin.H{"error": "Internal server error", "code": codeInternal}
	if h.Debug {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}
