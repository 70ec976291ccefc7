// Package google implements the review-platform clients for Google Business
// Profile: the OAuth token endpoint and the account/location/review
// directory. All outbound calls go through the resilient httpx client.
package google

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"reviewhub/config"
	"reviewhub/internal/domain/entity"
	"reviewhub/internal/domain/service"
	"reviewhub/internal/infra/httpx"

	"github.com/pkg/errors"
)

const (
	defaultAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenURL = "https://oauth2.googleapis.com/token"
)

// provider is the Google side of the OAuth authorization-code flow.
type provider struct {
	clientID     string
	clientSecret string
	redirectURI  string
	scopes       string
	authURL      string
	tokenURL     string
	client       *httpx.Client
}

// NewReviewProvider is the constructor for the Google review provider.
func NewReviewProvider(cfg *config.Config, logger *slog.Logger) (service.ReviewProvider, error) {
	oauth := cfg.GoogleOAuth
	if oauth == nil || oauth.ClientID == "" || oauth.ClientSecret == "" || oauth.RedirectURI == "" {
		return nil, errors.New("google oauth client configuration must be provided")
	}

	authURL := oauth.AuthURL
	if authURL == "" {
		authURL = defaultAuthURL
	}
	tokenURL := oauth.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	var tokenProfile *config.FetchProfile
	if cfg.Fetch != nil {
		tokenProfile = cfg.Fetch.Token
	}

	return &provider{
		clientID:     oauth.ClientID,
		clientSecret: oauth.ClientSecret,
		redirectURI:  oauth.RedirectURI,
		scopes:       oauth.Scopes,
		authURL:      authURL,
		tokenURL:     tokenURL,
		client:       httpx.NewClient(httpx.FromConfig(tokenProfile), logger),
	}, nil
}

func (p *provider) Provider() entity.ProviderType {
	return entity.ProviderTypeGoogle
}

// AuthorizationURL builds the consent-screen redirect. access_type=offline
// with prompt=consent makes Google return a refresh token on every approval.
func (p *provider) AuthorizationURL(state string) string {
	query := url.Values{}
	query.Set("client_id", p.clientID)
	query.Set("redirect_uri", p.redirectURI)
	query.Set("response_type", "code")
	query.Set("scope", p.scopes)
	query.Set("state", state)
	query.Set("access_type", "offline")
	query.Set("prompt", "consent")

	return p.authURL + "?" + query.Encode()
}

// ExchangeCode trades an authorization code for the initial token pair.
func (p *provider) ExchangeCode(ctx context.Context, code string) (*service.TokenGrant, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)
	form.Set("redirect_uri", p.redirectURI)

	return p.tokenRequest(ctx, form)
}

// RefreshGrant mints a new access token from the stored refresh token.
func (p *provider) RefreshGrant(ctx context.Context, refreshToken string) (*service.TokenGrant, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)

	return p.tokenRequest(ctx, form)
}

// tokenGrantDTO is the token endpoint's response shape.
type tokenGrantDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"`
}

func (p *provider) tokenRequest(ctx context.Context, form url.Values) (*service.TokenGrant, error) {
	encoded := form.Encode()
	resp, err := p.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		return req, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to call token endpoint")
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// Parsed below.
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, errors.Wrapf(service.ErrGrantRejected, "token endpoint returned %d", resp.StatusCode)
	default:
		return nil, errors.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var dto tokenGrantDTO
	if err := json.Unmarshal(resp.Body, &dto); err != nil {
		return nil, errors.Wrap(err, "failed to decode token response")
	}
	if dto.AccessToken == "" {
		return nil, errors.New("token response missing access token")
	}

	return &service.TokenGrant{
		AccessToken:  dto.AccessToken,
		RefreshToken: dto.RefreshToken,
		Scope:        dto.Scope,
		ExpiresIn:    dto.ExpiresIn,
	}, nil
}
