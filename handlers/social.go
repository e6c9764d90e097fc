package handlers

import (
	"errors"
	"net/http"

	"ride-booking-api/middleware"
	"ride-booking-api/social"
	"ride-booking-api/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const stateCookie = "oauth_state"

var (
	errGoogleDisabled = newAPIError(http.StatusNotFound, codeNotFound, "Google sign-in is not configured")
	errOAuthState     = newAPIError(http.StatusBadRequest, codeValidation, "Invalid or expired sign-in state. Please try again.")
	errOAuthFailed    = newAPIError(http.StatusUnauthorized, codeCredentials, "Authentication failed")
	errUnverifiedIdP  = newAPIError(http.StatusUnauthorized, codeCredentials, "Your Google account email is not verified")
	errElevatedGoogle = newAPIError(http.StatusForbidden, middleware.CodeForbidden, "Admin accounts cannot use Google authentication. Please use email and password login instead.")
	errIdentityLinked = newAPIError(http.StatusConflict, codeConflict, "This email is already linked to a different Google account")
)

// GoogleLogin redirects the browser to Google's consent screen. The signed
// state also goes into a short-lived cookie and must come back on both.
func (h *Handler) GoogleLogin(c *gin.Context) {
	if h.Google == nil || h.States == nil {
		h.respondError(c, errGoogleDisabled)
		return
	}
	state, err := h.States.Issue(h.Google.Name())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 600, "/api/auth", "", !h.Debug, true)
	c.Redirect(http.StatusFound, h.Google.AuthCodeURL(state))
}

// GoogleCallback completes the code flow and signs the account in. Only
// standard accounts may use it.
func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.Google == nil || h.States == nil {
		h.respondError(c, errGoogleDisabled)
		return
	}
	c.SetCookie(stateCookie, "", -1, "/api/auth", "", !h.Debug, true)

	if c.Query("error") != "" {
		h.respondError(c, errOAuthFailed)
		return
	}
	state, code := c.Query("state"), c.Query("code")
	cookie, _ := c.Cookie(stateCookie)
	if state == "" || code == "" || cookie != state {
		h.respondError(c, errOAuthState)
		return
	}
	if err := h.States.Verify(state, h.Google.Name()); err != nil {
		h.respondError(c, errOAuthState)
		return
	}

	ctx := c.Request.Context()
	profile, err := h.Google.Exchange(ctx, code)
	if err != nil {
		logrus.WithError(err).WithField("provider", h.Google.Name()).Warn("third-party sign-in failed")
		h.respondError(c, errOAuthFailed)
		return
	}
	if !profile.EmailVerified {
		h.respondError(c, errUnverifiedIdP)
		return
	}

	user, created, err := h.Store.SignInFederated(ctx, federatedIdentity(profile), h.Policy.DefaultCredits, h.hasInstitutionalEmail)
	switch {
	case errors.Is(err, store.ErrFederatedElevated):
		h.respondError(c, errElevatedGoogle)
		return
	case errors.Is(err, store.ErrIdentityLinked):
		h.respondError(c, errIdentityLinked)
		return
	case errors.Is(err, store.ErrSignupNotAllowed):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Regular user accounts require an email address ending with @" + h.Policy.UserEmailDomain,
			"code":  codeValidation,
		})
		return
	case err != nil:
		h.respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.authResponse(c, status, "Google authentication successful", user)
}

func federatedIdentity(p *social.Profile) store.FederatedIdentity {
	return store.FederatedIdentity{
		Provider:  p.Provider,
		Subject:   p.Subject,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
}
