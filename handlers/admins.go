package handlers

import (
	"net/http"

	"ride-booking-api/models"
	"ride-booking-api/statemachine"

	"github.com/gin-gonic/gin"
)

// ListAdmins returns every admin-tier account
func (h *Handler) ListAdmins(c *gin.Context) {
	admins, err := h.Store.ListUsers(c.Request.Context(), models.RoleAdmin)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(admins), "admins": admins})
}

// CreateAdmin adds a verified admin account on behalf of the prime admin.
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req RegisterRequest
	if !h.bind(c, &req) {
		return
	}
	hash, err := h.Passwords.Hash(req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	admin := &models.User{
		Email:        req.Email,
		PasswordHash: &hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleAdmin,
		IsVerified:   true,
	}
	if err := h.Store.CreateAccount(c.Request.Context(), admin); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Admin created successfully", "user": admin})
}

// RemoveAdmin deletes an admin-tier account; any other target is rejected.
func (h *Handler) RemoveAdmin(c *gin.Context) {
	id, ok := parseAccountID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	target, err := h.Store.FindByID(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := statemachine.CanRemoveAdmin(actorOf(c), statemachine.SubjectOf(target)); err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Store.DeleteAccount(ctx, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin removed successfully"})
}
