// Package oauth signs users in with external identity providers.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var (
	ErrInvalidCode        = errors.New("invalid authorization code")
	ErrFailedToGetUser    = errors.New("failed to get user info from provider")
	ErrInvalidState       = errors.New("invalid state parameter")
	ErrOAuthNotConfigured = errors.New("oauth provider is not configured")
	ErrEmailNotVerified   = errors.New("provider email is not verified")
)

// Profile is the account facts an identity provider vouches for.
type Profile struct {
	Provider  string
	SubjectID string
	Email     string
	FirstName string
	LastName  string
	Picture   string
}

// googleUserInfo is the userinfo payload returned by Google
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// GoogleConfig holds the configuration for Google sign-in
type GoogleConfig struct {
	ClientID           string
	ClientSecret       string
	RedirectURL        string
	FrontendSuccessURL string
	FrontendErrorURL   string
}

// GoogleProvider runs the Google authorization code flow.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
	successURL  string
	errorURL    string
}

// NewGoogleProvider creates a Google sign-in provider
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
		successURL:  cfg.FrontendSuccessURL,
		errorURL:    cfg.FrontendErrorURL,
	}
}

// Name is the provider name stored on users.
func (p *GoogleProvider) Name() string { return "google" }

// IsConfigured checks whether client credentials are set
func (p *GoogleProvider) IsConfigured() bool {
	return p.config.ClientID != "" && p.config.ClientSecret != ""
}

// AuthURL returns the consent page URL carrying state
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Authenticate exchanges the authorization code and reads the profile.
func (p *GoogleProvider) Authenticate(ctx context.Context, code string) (*Profile, error) {
	if !p.IsConfigured() {
		return nil, ErrOAuthNotConfigured
	}
	if strings.TrimSpace(code) == "" {
		return nil, ErrInvalidCode
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}

	info, err := p.fetchUserInfo(ctx, p.config.Client(ctx, token))
	if err != nil {
		return nil, err
	}
	if !info.VerifiedEmail {
		return nil, ErrEmailNotVerified
	}

	first, last := info.GivenName, info.FamilyName
	if first == "" && last == "" {
		first, last, _ = strings.Cut(info.Name, " ")
	}
	return &Profile{
		Provider:  p.Name(),
		SubjectID: info.ID,
		Email:     strings.ToLower(info.Email),
		FirstName: first,
		LastName:  last,
		Picture:   info.Picture,
	}, nil
}

func (p *GoogleProvider) fetchUserInfo(ctx context.Context, client *http.Client) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetUser, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrFailedToGetUser, resp.StatusCode, string(body))
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetUser, err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, fmt.Errorf("%w: incomplete profile", ErrFailedToGetUser)
	}
	return &info, nil
}

// SuccessRedirect returns the frontend URL that receives the issued tokens
// in the fragment, so they never reach server logs.
func (p *GoogleProvider) SuccessRedirect(accessToken, refreshToken string) string {
	frag := url.Values{}
	frag.Set("access_token", accessToken)
	frag.Set("refresh_token", refreshToken)
	frag.Set("token_type", "Bearer")
	return p.successURL + "#" + frag.Encode()
}

// ErrorRedirect returns the frontend URL for a failed sign-in.
func (p *GoogleProvider) ErrorRedirect(reason string) string {
	q := url.Values{}
	q.Set("error", reason)
	sep := "?"
	if strings.Contains(p.errorURL, "?") {
		sep = "&"
	}
	return p.errorURL + sep + q.Encode()
}
