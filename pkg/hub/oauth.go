package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// tokenExpiryTolerance refreshes tokens slightly before they expire
const tokenExpiryTolerance = 60 * time.Second

// oauthToken is the hub's token endpoint response
type oauthToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	CreatedAt    int64  `json:"created_at"`
}

// authState caches the bearer token between calls
type authState struct {
	mu        sync.Mutex
	token     *oauthToken
	expiresAt time.Time
}

// authorize sets the Authorization header on a request: basic auth for
// technical users, OAuth2 bearer token when an API secret is configured.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.cred.APISecret == "" {
		req.Header.Set("Authorization", basicAuthValue(c.cred.User, c.cred.Password))
		return nil
	}

	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", token.TokenType+" "+token.AccessToken)
	return nil
}

// ensureToken fetches a token via the password grant on first use and
// via the refresh grant once the cached token is about to expire.
func (c *Client) ensureToken(ctx context.Context) (*oauthToken, error) {
	c.auth.mu.Lock()
	defer c.auth.mu.Unlock()

	var form url.Values
	switch {
	case c.auth.token == nil:
		form = url.Values{
			"client_id":     {c.cred.APIKey},
			"client_secret": {c.cred.APISecret},
			"grant_type":    {"password"},
			"username":      {c.cred.User},
			"password":      {c.cred.Password},
		}
	case !time.Now().Before(c.auth.expiresAt):
		form = url.Values{
			"client_id":     {c.cred.APIKey},
			"client_secret": {c.cred.APISecret},
			"grant_type":    {"refresh_token"},
			"refresh_token": {c.auth.token.RefreshToken},
		}
	default:
		return c.auth.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordAuthFailure()
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordAuthFailure()
		return nil, fmt.Errorf("%w: token endpoint returned status %d", ErrAuthFailed, resp.StatusCode)
	}

	var token oauthToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		c.metrics.RecordAuthFailure()
		return nil, fmt.Errorf("%w: decode token: %v", ErrAuthFailed, err)
	}

	c.auth.token = &token
	c.auth.expiresAt = time.Unix(token.CreatedAt+token.ExpiresIn, 0).Add(-tokenExpiryTolerance)
	return c.auth.token, nil
}
