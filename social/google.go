package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

const (
	defaultAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenURL    = "https://oauth2.googleapis.com/token"
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

var (
	ErrExchangeFailed = errors.New("oauth code exchange failed")
	ErrUserInfoFailed = errors.New("failed to fetch user info")
)

// Profile is the identity returned by a provider after a successful exchange.
type Profile struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
}

// Provider is a third-party identity provider using the authorization code flow.
type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint overrides, empty means Google's public endpoints.
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

type Google struct {
	oauth       *oauth2.Config
	userInfoURL string
}

func NewGoogle(cfg GoogleConfig) *Google {
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = defaultUserInfoURL
	}
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: cfg.UserInfoURL,
	}
}

func (g *Google) Name() string {
	return "google"
}

func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// Exchange trades the authorization code for a token and loads the profile.
func (g *Google) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfoFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfoFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUserInfoFailed, resp.StatusCode)
	}
	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfoFailed, err)
	}
	if info.Sub == "" || info.Email == "" {
		return nil, fmt.Errorf("%w: profile without subject or email", ErrUserInfoFailed)
	}
	return mapProfile(g.Name(), &info), nil
}

func mapProfile(provider string, info *googleUserInfo) *Profile {
	first, last := info.GivenName, info.FamilyName
	if first == "" {
		name := strings.TrimSpace(info.Name)
		first, last, _ = strings.Cut(name, " ")
	}
	if first == "" {
		first, _, _ = strings.Cut(info.Email, "@")
	}
	return &Profile{
		Provider:      provider,
		Subject:       info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		FirstName:     first,
		LastName:      strings.TrimSpace(last),
	}
}
