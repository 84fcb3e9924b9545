package kis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// TokenSource supplies the bearer token for REST calls. Implementations must
// be safe for concurrent use; worker clients share one.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticToken is a pre-issued access token.
type StaticToken string

func (t StaticToken) AccessToken(context.Context) (string, error) {
	return string(t), nil
}

// AuthClient issues and caches tokens from /oauth2/tokenP.
type AuthClient struct {
	appKey    string
	appSecret string
	baseURL   string

	mu          sync.RWMutex
	accessToken string
	expiresAt   time.Time
	nextRefresh time.Time // KIS 6시간 재발급 규칙

	// EGW00133: 토큰 발급 1분당 1회
	holdUntil time.Time

	sf singleflight.Group

	httpClient *http.Client
}

func NewAuthClient(appKey, appSecret, baseURL string, timeout time.Duration) *AuthClient {
	return &AuthClient{
		appKey:     appKey,
		appSecret:  appSecret,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type tokenResponse struct {
	AccessToken        string `json:"access_token"`
	AccessTokenExpired string `json:"access_token_token_expired"`
	TokenType          string `json:"token_type"`
	ExpiresIn          int    `json:"expires_in"`
}

// AccessToken returns the cached token or issues a new one. Concurrent
// callers share a single issuance.
func (c *AuthClient) AccessToken(ctx context.Context) (string, error) {
	if token, ok := c.cached(time.Now()); ok {
		return token, nil
	}

	v, err, _ := c.sf.Do("issue", func() (interface{}, error) {
		return c.issue(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *AuthClient) cached(now time.Time) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.accessToken == "" || !now.Before(c.expiresAt) {
		return "", false
	}
	if now.Before(c.expiresAt.Add(-30*time.Second)) && now.Before(c.nextRefresh) {
		return c.accessToken, true
	}
	// Still valid while issuance is on hold.
	if now.Before(c.holdUntil) {
		return c.accessToken, true
	}
	return "", false
}

func (c *AuthClient) issue(ctx context.Context) (string, error) {
	if token, ok := c.cached(time.Now()); ok {
		return token, nil
	}

	c.mu.RLock()
	hold := c.holdUntil
	c.mu.RUnlock()
	if time.Now().Before(hold) {
		return "", fmt.Errorf("token issuance on hold until %s (EGW00133)", hold.Format(time.RFC3339))
	}

	body, err := json.Marshal(map[string]string{
		"grant_type": "client_credentials",
		"appkey":     c.appKey,
		"appsecret":  c.appSecret,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth2/tokenP", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Op: "issue token", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Op: "read token response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		if isEGW00133(string(respBody)) {
			c.mu.Lock()
			c.holdUntil = time.Now().Add(65 * time.Second)
			c.mu.Unlock()
		}
		return "", &APIError{Status: resp.StatusCode, Message: string(respBody)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return "", &APIError{Status: resp.StatusCode, Message: "decode token response: " + err.Error()}
	}
	if tr.AccessToken == "" {
		return "", &APIError{Status: resp.StatusCode, Message: "empty access_token"}
	}

	ttl := 24 * time.Hour
	if tr.ExpiresIn > 0 {
		ttl = time.Duration(tr.ExpiresIn) * time.Second
	}

	now := time.Now()
	c.mu.Lock()
	c.accessToken = tr.AccessToken
	c.expiresAt = now.Add(ttl)
	c.nextRefresh = now.Add(6*time.Hour - 5*time.Minute)
	c.mu.Unlock()

	return tr.AccessToken, nil
}

func isEGW00133(body string) bool {
	return strings.Contains(body, "EGW00133") || strings.Contains(body, "1분당 1회")
}

// ClearToken drops the cached token so the next AccessToken issues a new
// one. An EGW00133 hold stays in force.
func (c *AuthClient) ClearToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = ""
	c.expiresAt = time.Time{}
	c.nextRefresh = time.Time{}
}
