package handlers

import (
	"errors"
	"net/http"

	"ride-booking-api/models"
	"ride-booking-api/statemachine"
	"ride-booking-api/store"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type AdminUpdateUserRequest struct {
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Email      *string `json:"email"`
	IsVerified *bool   `json:"isVerified"`
}

func (r AdminUpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&r.IsVerified, validation.By(verifyOnly)),
	)
}

// verifyOnly rejects isVerified=false: a verified account never goes back.
func verifyOnly(value interface{}) error {
	if v, ok := value.(*bool); ok && v != nil && !*v {
		return errors.New("a verified account cannot be marked unverified")
	}
	return nil
}

type SetCreditsRequest struct {
	Credits *int   `json:"credits"`
	Reason  string `json:"reason"`
}

func (r SetCreditsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Credits, validation.NotNil, validation.Min(0)),
		validation.Field(&r.Reason, validation.Length(0, 255)),
	)
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

func (r ChangeRoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.Required),
	)
}

// AdminListUsers returns every account, optionally filtered by ?role=
func (h *Handler) AdminListUsers(c *gin.Context) {
	var role models.UserRole
	if raw := c.Query("role"); raw != "" {
		parsed, err := models.ParseRole(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": codeValidation})
			return
		}
		role = parsed
	}
	users, err := h.Store.ListUsers(c.Request.Context(), role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

func (h *Handler) AdminGetUser(c *gin.Context) {
	id, ok := parseAccountID(c)
	if !ok {
		return
	}
	user, err := h.Store.FindByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"allowedRoles": statemachine.ValidTransitionsFrom(user.Role),
	})
}

// AdminUpdateUser edits another account. Elevated accounts can only be edited
// by a strictly higher tier.
func (h *Handler) AdminUpdateUser(c *gin.Context) {
	id, ok := parseAccountID(c)
	if !ok {
		return
	}
	var req AdminUpdateUserRequest
	if !h.bind(c, &req) {
		return
	}
	ctx := c.Request.Context()

	target, err := h.Store.FindByID(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := statemachine.CanUpdate(actorOf(c), statemachine.SubjectOf(target)); err != nil {
		h.respondError(c, err)
		return
	}
	if req.Email != nil && target.Role == models.RoleUser && !h.hasInstitutionalEmail(*req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Regular user accounts require an email address ending with @" + h.Policy.UserEmailDomain,
			"code":  codeValidation,
		})
		return
	}

	user, err := h.Store.UpdateProfile(ctx, id, store.ProfileUpdate{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		MarkVerified: req.IsVerified != nil && *req.IsVerified,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "user": user})
}

// AdminDeleteUser removes an account: never yourself, never the prime admin,
// and admins only when the caller is the prime admin.
func (h *Handler) AdminDeleteUser(c *gin.Context) {
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
	if err := statemachine.CanDelete(actorOf(c), statemachine.SubjectOf(target)); err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Store.DeleteAccount(ctx, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// AdminSetCredits overwrites a standard account's balance and records who did it.
func (h *Handler) AdminSetCredits(c *gin.Context) {
	id, ok := parseAccountID(c)
	if !ok {
		return
	}
	var req SetCreditsRequest
	if !h.bind(c, &req) {
		return
	}
	adj, err := h.Store.SetCredits(c.Request.Context(), id, actorOf(c).ID, *req.Credits, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Credits updated successfully",
		"userId":     id,
		"credits":    adj.NewCredits,
		"adjustment": adj,
	})
}

func (h *Handler) AdminCreditHistory(c *gin.Context) {
	id, ok := parseAccountID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.Store.FindByID(ctx, id); err != nil {
		h.respondError(c, err)
		return
	}
	history, err := h.Store.CreditHistory(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(history), "history": history})
}

// AdminChangeRole moves an account between user and admin. Asking for the
// role the account already has succeeds without writing.
func (h *Handler) AdminChangeRole(c *gin.Context) {
	id, ok := parseAccountID(c)
	if !ok {
		return
	}
	var req ChangeRoleRequest
	if !h.bind(c, &req) {
		return
	}
	to, err := models.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": codeValidation})
		return
	}
	ctx := c.Request.Context()

	target, err := h.Store.FindByID(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := statemachine.CanChangeRole(actorOf(c), statemachine.SubjectOf(target), to); err != nil {
		h.respondError(c, err)
		return
	}
	if target.Role == to {
		c.JSON(http.StatusOK, gin.H{"message": "Role unchanged", "user": target})
		return
	}
	if err := h.Store.SetRole(ctx, id, to); err != nil {
		h.respondError(c, err)
		return
	}
	target.Role = to
	c.JSON(http.StatusOK, gin.H{"message": "Role updated successfully", "user": target})
}
