// Package suiteql implements the client for the NetSuite SuiteQL REST endpoint.
//
// A Client signs every request with OAuth 1.0a (HMAC-SHA256) using
// token-based authentication credentials and decodes the response into a
// PagedResult. Failures are reported as NetworkError, HTTPStatusError or
// DecodeError so callers can decide how fatal each one is.
package suiteql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dghubble/oauth1"
)

// DefaultTimeout bounds a single query request.
const DefaultTimeout = 60 * time.Second

const endpointPath = "/services/rest/query/v1/suiteql"

// Client executes SuiteQL queries against one NetSuite account.
type Client struct {
	creds      Credentials
	baseURL    string
	timeout    time.Duration
	logger     *slog.Logger
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the account-derived REST base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient validates the credentials and returns a ready client.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		creds:   creds,
		baseURL: fmt.Sprintf("https://%s.suitetalk.api.netsuite.com", creds.HostID()),
		timeout: DefaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	oauthCfg := oauth1.Config{
		ConsumerKey:    creds.ConsumerKey,
		ConsumerSecret: creds.ConsumerSecret,
		Realm:          creds.Realm(),
		Signer:         &oauth1.HMAC256Signer{ConsumerSecret: creds.ConsumerSecret},
	}
	token := oauth1.NewToken(creds.Token, creds.TokenSecret)
	base := context.WithValue(context.Background(), oauth1.HTTPClient, &http.Client{Timeout: c.timeout})
	c.httpClient = oauthCfg.Client(base, token)

	return c, nil
}

// Endpoint returns the full SuiteQL URL without query parameters.
func (c *Client) Endpoint() string {
	return c.baseURL + endpointPath
}

type queryRequest struct {
	Q string `json:"q"`
}

// Execute runs one query. limit and offset are sent only when non-nil.
func (c *Client) Execute(ctx context.Context, query string, limit, offset *int) (*PagedResult, error) {
	u, err := url.Parse(c.Endpoint())
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	params := u.Query()
	if limit != nil {
		params.Set("limit", strconv.Itoa(*limit))
	}
	if offset != nil {
		params.Set("offset", strconv.Itoa(*offset))
	}
	u.RawQuery = params.Encode()

	payload, err := json.Marshal(queryRequest{Q: query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "transient")

	c.logger.Debug("suiteql request", "url", u.String(), "query", query)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("suiteql response",
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	res, err := DecodePagedResult(body)
	if err != nil {
		return nil, &DecodeError{Err: err, Body: string(body)}
	}
	return res, nil
}
