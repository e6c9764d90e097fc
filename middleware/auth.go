package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ride-booking-api/auth"
	"ride-booking-api/models"
	"ride-booking-api/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	ctxUserID  = "userID"
	ctxRole    = "role"
	ctxAccount = "account"
)

// Error codes shared by the gate and the handlers.
const (
	CodeUnauthenticated = "unauthenticated"
	CodeUnverified      = "unverified"
	CodeForbidden       = "forbidden"
	CodeRateLimited     = "rate_limited"
)

// TokenVerifier is satisfied by *auth.TokenService.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AccountFinder is satisfied by *store.Store.
type AccountFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}

// AuthRequired validates the bearer token and puts its user id and role on the context
func AuthRequired(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenStr) == "" {
			abort(c, http.StatusUnauthorized, CodeUnauthenticated, "Authorization header required (Bearer <token>)")
			return
		}
		claims, err := tokens.Verify(strings.TrimSpace(tokenStr))
		if err != nil {
			abort(c, http.StatusUnauthorized, CodeUnauthenticated, "Invalid or expired token")
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// VerifiedRequired loads the caller's account and rejects unverified ones.
// The stored role replaces the one carried by the token, so a demotion takes
// effect before the token expires. It must run after AuthRequired.
func VerifiedRequired(accounts AccountFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := accounts.FindByID(c.Request.Context(), GetUserID(c))
		if errors.Is(err, store.ErrNotFound) {
			abort(c, http.StatusUnauthorized, CodeUnauthenticated, "Account no longer exists")
			return
		}
		if err != nil {
			logrus.WithError(err).Error("failed to load account for request")
			abort(c, http.StatusInternalServerError, "internal", "Internal server error")
			return
		}
		if !account.IsVerified {
			abort(c, http.StatusForbidden, CodeUnverified, "Email address not verified")
			return
		}
		c.Set(ctxAccount, account)
		c.Set(ctxRole, account.Role)
		c.Next()
	}
}

// TierRequired enforces that the caller's role is at least min
func TierRequired(min models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetRole(c).Satisfies(min) {
			abort(c, http.StatusForbidden, CodeForbidden, "Access denied. Required role: "+string(min)+" or higher")
			return
		}
		c.Next()
	}
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}

// GetRole extracts caller role from context: the stored role once
// VerifiedRequired has run, the token's role before that.
func GetRole(c *gin.Context) models.UserRole {
	val, _ := c.Get(ctxRole)
	role, _ := val.(models.UserRole)
	return role
}

// GetAccount returns the account loaded by VerifiedRequired, or nil.
func GetAccount(c *gin.Context) *models.User {
	val, ok := c.Get(ctxAccount)
	if !ok {
		return nil
	}
	account, _ := val.(*models.User)
	return account
}
