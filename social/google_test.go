package social

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeGoogle(t *testing.T, userInfo map[string]any, userInfoStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
		if r.PostForm.Get("code") != "auth-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "invalid_grant"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(userInfoStatus)
		_ = json.NewEncoder(w).Encode(userInfo)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestGoogle(server *httptest.Server) *Google {
	return NewGoogle(GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "https://rides.example.com/api/auth/google/callback",
		AuthURL:      server.URL + "/auth",
		TokenURL:     server.URL + "/token",
		UserInfoURL:  server.URL + "/userinfo",
	})
}

func TestGoogleAuthCodeURL(t *testing.T) {
	g := NewGoogle(GoogleConfig{ClientID: "client-id", RedirectURL: "https://rides.example.com/cb"})

	parsed, err := url.Parse(g.AuthCodeURL("state-token"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", parsed.Host)

	query := parsed.Query()
	assert.Equal(t, "client-id", query.Get("client_id"))
	assert.Equal(t, "https://rides.example.com/cb", query.Get("redirect_uri"))
	assert.Equal(t, "state-token", query.Get("state"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Contains(t, query.Get("scope"), "email")
}

func TestGoogleExchange(t *testing.T) {
	server := fakeGoogle(t, map[string]any{
		"sub":            "1234567890",
		"email":          "rider@bennett.edu.in",
		"email_verified": true,
		"given_name":     "Asha",
		"family_name":    "Rao",
	}, http.StatusOK)

	profile, err := newTestGoogle(server).Exchange(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, &Profile{
		Provider:      "google",
		Subject:       "1234567890",
		Email:         "rider@bennett.edu.in",
		EmailVerified: true,
		FirstName:     "Asha",
		LastName:      "Rao",
	}, profile)
}

func TestGoogleExchangeFailures(t *testing.T) {
	server := fakeGoogle(t, map[string]any{"error": "invalid_token"}, http.StatusUnauthorized)
	g := newTestGoogle(server)

	_, err := g.Exchange(context.Background(), "wrong-code")
	assert.ErrorIs(t, err, ErrExchangeFailed)

	_, err = g.Exchange(context.Background(), "auth-code")
	assert.ErrorIs(t, err, ErrUserInfoFailed)
}

func TestMapProfileFallsBackToName(t *testing.T) {
	p := mapProfile("google", &googleUserInfo{Sub: "1", Email: "a@bennett.edu.in", Name: "Asha Rao"})
	assert.Equal(t, "Asha", p.FirstName)
	assert.Equal(t, "Rao", p.LastName)

	p = mapProfile("google", &googleUserInfo{Sub: "1", Email: "asha@bennett.edu.in"})
	assert.Equal(t, "asha", p.FirstName)
	assert.Empty(t, p.LastName)
}

func TestStateSigner(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	signer := NewStateSigner("0123456789abcdef0123456789abcdef", time.Minute)
	signer.now = func() time.Time { return now }

	state, err := signer.Issue("google")
	require.NoError(t, err)
	assert.NoError(t, signer.Verify(state, "google"))
	assert.ErrorIs(t, signer.Verify(state, "github"), ErrInvalidState)
	assert.ErrorIs(t, signer.Verify(state+"x", "google"), ErrInvalidState)

	other := NewStateSigner("fedcba9876543210fedcba9876543210", time.Minute)
	other.now = signer.now
	assert.ErrorIs(t, other.Verify(state, "google"), ErrInvalidState)

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, signer.Verify(state, "google"), ErrInvalidState)
}
