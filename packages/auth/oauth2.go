package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/fetchkit/packages/fetch"
)

// GrantType selects the OAuth2 flow used for token acquisition.
type GrantType string

const (
	// GrantClientCredentials is the client_credentials grant.
	GrantClientCredentials GrantType = "client_credentials"
	// GrantPassword is the resource-owner password grant.
	GrantPassword GrantType = "password"
)

// OAuth2Config holds the token endpoint and client credentials.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Username     string // password grant only
	Password     string // password grant only
	GrantType    GrantType
}

// Token is an OAuth2 access token as returned by the token endpoint.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresAt    time.Time `json:"-"`
}

// IsExpired reports whether the token has expired. Tokens without an
// expiry never expire; a 30 second skew buffer guards against clock drift.
func (t *Token) IsExpired() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(30 * time.Second).After(t.ExpiresAt)
}

// TokenSource acquires and caches OAuth2 access tokens for one
// configuration. A cached token is reused until it expires.
type TokenSource struct {
	config     OAuth2Config
	httpClient *http.Client

	mu      sync.Mutex
	current *Token
}

// NewTokenSource builds a TokenSource for config.
func NewTokenSource(config OAuth2Config) *TokenSource {
	return &TokenSource{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Token returns a valid access token, fetching a fresh one when the cached
// token is missing or expired.
func (s *TokenSource) Token(ctx context.Context) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && !s.current.IsExpired() {
		return s.current, nil
	}

	token, err := s.fetchToken(ctx)
	if err != nil {
		return nil, err
	}
	s.current = token
	return token, nil
}

// Invalidate drops the cached token so the next call fetches a fresh one.
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Refresh exchanges a refresh token for a new access token and caches it.
func (s *TokenSource) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	token, err := s.doTokenRequest(ctx, data)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = token
	s.mu.Unlock()
	return token, nil
}

// Hook returns a before hook that attaches a bearer token from this source
// to every request.
func (s *TokenSource) Hook() fetch.BeforeHook {
	return func(ctx context.Context, url string, opts *fetch.Options) (string, *fetch.Options, error) {
		token, err := s.Token(ctx)
		if err != nil {
			return "", nil, err
		}
		next := opts.Clone()
		next.Headers["Authorization"] = "Bearer " + token.AccessToken
		return url, next, nil
	}
}

func (s *TokenSource) fetchToken(ctx context.Context) (*Token, error) {
	data := url.Values{}
	switch s.config.GrantType {
	case GrantPassword:
		data.Set("grant_type", "password")
		data.Set("username", s.config.Username)
		data.Set("password", s.config.Password)
	default:
		data.Set("grant_type", "client_credentials")
	}
	if len(s.config.Scopes) > 0 {
		data.Set("scope", strings.Join(s.config.Scopes, " "))
	}

	return s.doTokenRequest(ctx, data)
}

func (s *TokenSource) doTokenRequest(ctx context.Context, data url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if s.config.ClientID != "" && s.config.ClientSecret != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(s.config.ClientID + ":" + s.config.ClientSecret))
		req.Header.Set("Authorization", "Basic "+credentials)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("token request failed: %s - %s", errResp.Error, errResp.ErrorDescription)
		}
		return nil, fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	if token.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	return &token, nil
}
