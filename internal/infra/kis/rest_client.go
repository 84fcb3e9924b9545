package kis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
)

// Envelope is the status block every KIS REST response carries.
type Envelope struct {
	RtCd  string `json:"rt_cd"` // "0" = success
	MsgCd string `json:"msg_cd"`
	Msg1  string `json:"msg1"`
}

func (e *Envelope) envelope() *Envelope { return e }

type enveloped interface {
	envelope() *Envelope
}

// RESTClient handles KIS REST API requests
type RESTClient struct {
	config     *Config
	tokens     TokenSource
	httpClient *http.Client
}

func NewRESTClient(cfg *Config, tokens TokenSource, httpClient *http.Client) *RESTClient {
	return &RESTClient{
		config:     cfg,
		tokens:     tokens,
		httpClient: httpClient,
	}
}

// tokenClearer is a TokenSource that can forget a token the server rejected.
type tokenClearer interface {
	ClearToken()
}

// get issues a GET and decodes the body into out. Transport faults come back
// as *NetworkError, everything the server said no to as *APIError. A 401 drops
// a cached token and retries once with a fresh one.
func (c *RESTClient) get(ctx context.Context, path, trID string, params url.Values, out enveloped) error {
	err := c.do(ctx, path, trID, params, out)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return err
	}
	clearer, ok := c.tokens.(tokenClearer)
	if !ok {
		return err
	}
	log.Warn().Str("tr_id", trID).Msg("KIS rejected the access token, reissuing")
	clearer.ClearToken()
	return c.do(ctx, path, trID, params, out)
}

func (c *RESTClient) do(ctx context.Context, path, trID string, params url.Values, out enveloped) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("get access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.URL.RawQuery = params.Encode()

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("authorization", "Bearer "+token)
	req.Header.Set("appkey", c.config.AppKey)
	req.Header.Set("appsecret", c.config.AppSecret)
	req.Header.Set("tr_id", trID)
	req.Header.Set("custtype", "P")

	if c.config.Debug {
		log.Debug().Str("tr_id", trID).Str("path", path).Str("query", req.URL.RawQuery).Msg("KIS request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: "execute request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: "read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Message: truncate(string(body), 512)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "decode response: " + err.Error()}
	}

	env := out.envelope()
	if env.RtCd != "0" {
		return &APIError{Status: resp.StatusCode, RtCd: env.RtCd, MsgCd: env.MsgCd, Message: env.Msg1}
	}

	if c.config.Debug {
		log.Debug().Str("tr_id", trID).Str("msg_cd", env.MsgCd).Int("bytes", len(body)).Msg("KIS response")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
