package handlers

import (
	"errors"
	"net/http"

	"ride-booking-api/mailer"
	"ride-booking-api/middleware"
	"ride-booking-api/models"
	"ride-booking-api/store"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		// bcrypt ignores everything past 72 bytes
		validation.Field(&r.Password, validation.Required, validation.Length(6, 72)),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
	)
}

type VerifyEmailRequest struct {
	UserID int64  `json:"userId"`
	OTP    string `json:"otp"`
}

func (r VerifyEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.OTP, validation.Required, is.Digit),
	)
}

type EmailRequest struct {
	Email string `json:"email"`
}

func (r EmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type ResetPasswordRequest struct {
	UserID      int64  `json:"userId"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.OTP, validation.Required, is.Digit),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(6, 72)),
	)
}

// Register creates an unverified account and emails it a verification code.
// Re-registering an email that never got verified only re-issues the code.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	role := models.RoleUser
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": codeValidation})
			return
		}
		role = parsed
	}
	if role.IsElevated() && !h.Policy.DeveloperRegistration {
		h.respondError(c, errDevelopmentOnly)
		return
	}
	h.register(c, req, role)
}

// RegisterAdmin is the development-only shortcut for an admin account.
func (h *Handler) RegisterAdmin(c *gin.Context) {
	h.registerElevated(c, models.RoleAdmin)
}

// RegisterPrimeAdmin is the development-only shortcut for the single prime admin.
func (h *Handler) RegisterPrimeAdmin(c *gin.Context) {
	h.registerElevated(c, models.RolePrimeAdmin)
}

func (h *Handler) registerElevated(c *gin.Context, role models.UserRole) {
	if !h.Policy.DeveloperRegistration {
		h.respondError(c, errDevelopmentOnly)
		return
	}
	var req RegisterRequest
	if !h.bind(c, &req) {
		return
	}
	h.register(c, req, role)
}

func (h *Handler) register(c *gin.Context, req RegisterRequest, role models.UserRole) {
	ctx := c.Request.Context()

	if role == models.RoleUser && !h.hasInstitutionalEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Regular user accounts require an email address ending with @" + h.Policy.UserEmailDomain,
			"code":  codeValidation,
		})
		return
	}

	existing, err := h.Store.FindByEmail(ctx, req.Email)
	switch {
	case err == nil && existing.IsVerified:
		h.respondError(c, store.ErrEmailTaken)
		return
	case err == nil:
		if err := h.issueCode(ctx, existing, mailer.PurposeVerification); err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Account already registered but not verified. A new verification code has been sent.",
			"userId":  existing.ID,
			"role":    existing.Role,
		})
		return
	case !errors.Is(err, store.ErrNotFound):
		h.respondError(c, err)
		return
	}

	hash, err := h.Passwords.Hash(req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	code, expiresAt, err := h.OTP.Issue(req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	user := &models.User{
		Email:        req.Email,
		PasswordHash: &hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		OTPCode:      &code,
		OTPExpiresAt: &expiresAt,
	}
	if role == models.RoleUser {
		user.Credits = h.Policy.DefaultCredits
	}
	if err := h.Store.CreateAccount(ctx, user); err != nil {
		h.respondError(c, err)
		return
	}
	h.dispatch(ctx, user, code, mailer.PurposeVerification)

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully. Please verify your email with the OTP sent.",
		"userId":  user.ID,
		"role":    user.Role,
	})
}

// VerifyEmail consumes the verification code and signs the account in.
func (h *Handler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if !h.bind(c, &req) {
		return
	}
	ctx := c.Request.Context()

	user, err := h.Store.FindByID(ctx, req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.OTP.Validate(user.OTPCode, user.OTPExpiresAt, req.OTP); err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Store.MarkVerified(ctx, user.ID, req.OTP); err != nil {
		h.respondError(c, err)
		return
	}
	user.IsVerified = true
	user.OTPCode, user.OTPExpiresAt = nil, nil

	h.authResponse(c, http.StatusOK, "Email verified successfully", user)
}

// ResendOTP replaces the pending verification code of an unverified account.
func (h *Handler) ResendOTP(c *gin.Context) {
	var req EmailRequest
	if !h.bind(c, &req) {
		return
	}
	ctx := c.Request.Context()

	user, err := h.Store.FindByEmail(ctx, req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if user.IsVerified {
		h.respondError(c, errAlreadyVerified)
		return
	}
	if err := h.issueCode(ctx, user, mailer.PurposeVerification); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent successfully", "userId": user.ID})
}

// Login authenticates with email and password. An unverified account gets a
// fresh code instead of a token.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bind(c, &req) {
		return
	}
	ctx := c.Request.Context()

	user, err := h.Store.FindByEmail(ctx, req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if !user.IsVerified {
		if err := h.issueCode(ctx, user, mailer.PurposeVerification); err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusForbidden, gin.H{
			"error":  "Email not verified. A new verification code has been sent.",
			"code":   middleware.CodeUnverified,
			"userId": user.ID,
		})
		return
	}

	if user.Role.IsElevated() && (!user.HasPassword() || user.IsFederated()) {
		h.respondError(c, errElevatedPassword)
		return
	}
	if !user.HasPassword() {
		h.respondError(c, errFederatedLogin)
		return
	}
	ok, err := h.Passwords.Check(*user.PasswordHash, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ok {
		h.respondError(c, errInvalidCredentials)
		return
	}

	h.authResponse(c, http.StatusOK, "Login successful", user)
}

// ForgotPassword emails a reset code to a password-based account.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req EmailRequest
	if !h.bind(c, &req) {
		return
	}
	ctx := c.Request.Context()

	user, err := h.Store.FindByEmail(ctx, req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !user.HasPassword() {
		h.respondError(c, errFederatedPassword)
		return
	}
	if err := h.issueCode(ctx, user, mailer.PurposePasswordReset); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset code sent to your email", "userId": user.ID})
}

// ResetPassword sets a new password once the reset code checks out.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !h.bind(c, &req) {
		return
	}
	ctx := c.Request.Context()

	user, err := h.Store.FindByID(ctx, req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.OTP.Validate(user.OTPCode, user.OTPExpiresAt, req.OTP); err != nil {
		h.respondError(c, err)
		return
	}
	hash, err := h.Passwords.Hash(req.NewPassword)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Store.ResetPassword(ctx, user.ID, req.OTP, hash); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}
