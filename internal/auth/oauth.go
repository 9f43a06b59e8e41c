package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OAuthUserInfo is the profile returned by a provider after code exchange.
type OAuthUserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// OAuthService runs the Google authorization-code flow and maps the resulting
// profile onto a local account.
type OAuthService struct {
	google *oauth2.Config
}

// OAuthConfig holds provider credentials.
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// NewOAuthService creates the OAuth service, or nil when no provider is
// configured.
func NewOAuthService(cfg OAuthConfig) *OAuthService {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil
	}
	return &OAuthService{
		google: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL builds the provider consent URL with the CSRF state embedded.
func (s *OAuthService) AuthURL(provider, state string) (string, error) {
	if provider != OAuthProviderGoogle {
		return "", fmt.Errorf("unsupported oauth provider %q", provider)
	}
	return s.google.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Exchange trades an authorization code for the provider's user profile.
func (s *OAuthService) Exchange(ctx context.Context, provider, code string) (OAuthUserInfo, error) {
	if provider != OAuthProviderGoogle {
		return OAuthUserInfo{}, fmt.Errorf("unsupported oauth provider %q", provider)
	}
	token, err := s.google.Exchange(ctx, code)
	if err != nil {
		return OAuthUserInfo{}, fmt.Errorf("exchange code: %w", err)
	}

	client := s.google.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return OAuthUserInfo{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return OAuthUserInfo{}, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var info OAuthUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return OAuthUserInfo{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Email == "" {
		return OAuthUserInfo{}, fmt.Errorf("provider returned no email")
	}
	return info, nil
}
