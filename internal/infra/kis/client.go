package kis

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kgcrom/cluefin-sub000/internal/pkg/config"
)

const (
	ProdBaseURL  = "https://openapi.koreainvestment.com:9443"
	PaperBaseURL = "https://openapivts.koreainvestment.com:29443"
)

// Config holds KIS API configuration
type Config struct {
	AppKey      string
	AppSecret   string
	BaseURL     string
	IsPaper     bool
	AccessToken string // optional pre-issued token
	Debug       bool
	Timeout     time.Duration
}

// ConfigFrom maps the application KIS settings. BaseURL follows the env
// unless explicitly overridden.
func ConfigFrom(c config.KISConfig) *Config {
	cfg := &Config{
		AppKey:      c.AppKey,
		AppSecret:   c.SecretKey,
		BaseURL:     c.BaseURL,
		IsPaper:     c.IsPaper(),
		AccessToken: c.AccessToken,
		Debug:       c.Debug,
		Timeout:     c.Timeout,
	}
	return cfg.withDefaults()
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.BaseURL == "" {
		out.BaseURL = ProdBaseURL
		if out.IsPaper {
			out.BaseURL = PaperBaseURL
		}
	}
	if out.Timeout <= 0 {
		out.Timeout = 30 * time.Second
	}
	return &out
}

func (c *Config) validate() error {
	if c.AccessToken != "" {
		return nil
	}
	if c.AppKey == "" || c.AppSecret == "" {
		return fmt.Errorf("KIS app key and secret are required when no access token is configured")
	}
	return nil
}

// Client groups the KIS quotation APIs used by the importers.
//
// A Client's HTTP session is not meant to be shared across goroutines that
// each need their own connection; use Clone for per-worker clients.
type Client struct {
	config *Config
	tokens TokenSource

	REST               *RESTClient
	DomesticBasicQuote *DomesticBasicQuote
	OverseasBasicQuote *OverseasBasicQuote
}

// NewClient creates a new KIS Client. No network call happens here; tokens
// are issued lazily on the first request.
func NewClient(cfg *Config) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var tokens TokenSource
	if cfg.AccessToken != "" {
		tokens = StaticToken(cfg.AccessToken)
	} else {
		tokens = NewAuthClient(cfg.AppKey, cfg.AppSecret, cfg.BaseURL, cfg.Timeout)
	}
	return newClient(cfg, tokens), nil
}

func newClient(cfg *Config, tokens TokenSource) *Client {
	rest := NewRESTClient(cfg, tokens, newHTTPClient(cfg.Timeout))
	return &Client{
		config:             cfg,
		tokens:             tokens,
		REST:               rest,
		DomesticBasicQuote: &DomesticBasicQuote{rest: rest},
		OverseasBasicQuote: &OverseasBasicQuote{rest: rest},
	}
}

// Clone returns a client with the same configuration and token source but
// its own HTTP session. It never authenticates.
func (c *Client) Clone() *Client {
	return newClient(c.config, c.tokens)
}

// Config returns a copy of the client's configuration.
func (c *Client) Config() Config {
	return *c.config
}

// Close releases the client's idle connections.
func (c *Client) Close() error {
	c.REST.httpClient.CloseIdleConnections()
	return nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          4,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
