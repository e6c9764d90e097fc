package handlers

import (
	"net/http"

	"ride-booking-api/middleware"
	"ride-booking-api/store"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
)

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.NilOrNotEmpty, validation.Length(1, 100)),
	)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(6, 72)),
	)
}

// GetProfile returns the authenticated account
func (h *Handler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.GetAccount(c)})
}

// UpdateProfile changes the caller's name
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !h.bind(c, &req) {
		return
	}
	account := middleware.GetAccount(c)
	user, err := h.Store.UpdateProfile(c.Request.Context(), account.ID, store.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
}

// ChangePassword requires the current password; third-party accounts have none.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !h.bind(c, &req) {
		return
	}
	account := middleware.GetAccount(c)
	if !account.HasPassword() {
		h.respondError(c, errFederatedPassword)
		return
	}
	ok, err := h.Passwords.Check(*account.PasswordHash, req.CurrentPassword)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect", "code": codeCredentials})
		return
	}
	hash, err := h.Passwords.Hash(req.NewPassword)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Store.SetPassword(c.Request.Context(), account.ID, hash); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// MyCreditHistory lists the balance changes applied to the caller
func (h *Handler) MyCreditHistory(c *gin.Context) {
	account := middleware.GetAccount(c)
	history, err := h.Store.CreditHistory(c.Request.Context(), account.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credits": account.Credits, "count": len(history), "history": history})
}
