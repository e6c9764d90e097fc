package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"ride-booking-api/auth"
	"ride-booking-api/config"
	"ride-booking-api/mailer"
	"ride-booking-api/metrics"
	"ride-booking-api/middleware"
	"ride-booking-api/models"
	"ride-booking-api/social"
	"ride-booking-api/statemachine"
	"ride-booking-api/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler holds every dependency the controllers need. It is built once at
// startup and shared by all requests.
type Handler struct {
	Store     *store.Store
	Tokens    *auth.TokenService
	OTP       *auth.OTPIssuer
	Passwords *auth.Passwords
	Mailer    mailer.Sender
	Policy    config.Policy
	// Google and States are nil when third-party sign-in is disabled.
	Google social.Provider
	States *social.StateSigner
	// Debug adds internal error details to 500 responses.
	Debug bool
}

func New(s *store.Store, tokens *auth.TokenService, otp *auth.OTPIssuer, passwords *auth.Passwords, sender mailer.Sender, policy config.Policy, debug bool) *Handler {
	return &Handler{
		Store:     s,
		Tokens:    tokens,
		OTP:       otp,
		Passwords: passwords,
		Mailer:    sender,
		Policy:    policy,
		Debug:     debug,
	}
}

// issueCode stores a fresh code on the account and emails it. A dispatch
// failure is logged and does not fail the caller.
func (h *Handler) issueCode(ctx context.Context, u *models.User, purpose mailer.Purpose) error {
	code, expiresAt, err := h.OTP.Issue(u.Email)
	if err != nil {
		return err
	}
	if err := h.Store.SetOTP(ctx, u.ID, code, expiresAt); err != nil {
		return err
	}
	u.OTPCode, u.OTPExpiresAt = &code, &expiresAt
	h.dispatch(ctx, u, code, purpose)
	return nil
}

func (h *Handler) dispatch(ctx context.Context, u *models.User, code string, purpose mailer.Purpose) {
	err := h.Mailer.SendCode(ctx, u.Email, code, purpose)
	metrics.RecordDispatch(string(purpose), err)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": u.ID,
			"purpose": purpose,
		}).Warn("failed to email one-time code, continuing")
	}
}

// authResponse mints a session token for u and builds the login payload.
func (h *Handler) authResponse(c *gin.Context, status int, message string, u *models.User) {
	token, expiresAt, err := h.Tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(status, gin.H{
		"message":   message,
		"token":     token,
		"expiresAt": expiresAt,
		"user":      u.Summary(),
	})
}

func (h *Handler) hasInstitutionalEmail(email string) bool {
	return strings.HasSuffix(store.NormalizeEmail(email), "@"+h.Policy.UserEmailDomain)
}

// actorOf describes the caller using the account loaded by the gate, falling
// back to the token claims when no account was loaded.
func actorOf(c *gin.Context) statemachine.Actor {
	if account := middleware.GetAccount(c); account != nil {
		return statemachine.Actor{ID: account.ID, Role: account.Role}
	}
	return statemachine.Actor{ID: middleware.GetUserID(c), Role: middleware.GetRole(c)}
}

func parseAccountID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account id", "code": codeValidation})
		return 0, false
	}
	return id, true
}

func parseLocationID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid location id", "code": codeValidation})
		return 0, false
	}
	return uint(id), true
}

// bind decodes the JSON body and runs its validation rules.
func (h *Handler) bind(c *gin.Context, req interface{ Validate() error }) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": codeValidation})
		return false
	}
	if err := req.Validate(); err != nil {
		h.respondError(c, err)
		return false
	}
	return true
}
