package hapapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultTimeout bounds a single open API call. Calls are never retried.
	DefaultTimeout = 60 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes  = 8 << 20
	maxErrorBodyBytes = 512
)

// Client issues open API calls against one normalized HAP base URL. It holds
// no mutable state and is safe for concurrent use.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	maxResponseBytes int64

	// used for mock test
	doJSONRequestFunc func(ctx context.Context, path string, payload any) ([]byte, error)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (DefaultTimeout, no retries).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient normalizes host (see NormalizeHost) and builds a Client for it.
func NewClient(host string, opts ...Option) (*Client, error) {
	baseURL, err := NormalizeHost(host)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:          baseURL,
		httpClient:       &http.Client{Timeout: DefaultTimeout},
		maxResponseBytes: maxResponseBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) doJSONRequest(ctx context.Context, path string, payload any) ([]byte, error) {
	if c.doJSONRequestFunc != nil {
		return c.doJSONRequestFunc(ctx, path, payload)
	}
	return c.doJSONRequestInternal(ctx, path, payload)
}

func (c *Client) doJSONRequestInternal(ctx context.Context, path string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, newError(KindUnexpected, OpRequest, errors.Wrap(err, "encode request payload"))
	}
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, newError(KindTransport, OpRequest, errors.Wrap(err, "build request"))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindTransport, OpRequest, errors.Wrapf(err, "POST %s", endpoint))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return nil, newError(KindTransport, OpRequest, errors.Wrap(err, "read response"))
	}
	if int64(len(body)) > c.maxResponseBytes {
		return nil, newError(KindTransport, OpRequest,
			errors.Errorf("POST %s: response body exceeds %d bytes", endpoint, c.maxResponseBytes))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Debug().Str("url", endpoint).Int("status", resp.StatusCode).Msg("hap open api returned non-2xx status")
		return nil, newError(KindTransport, OpRequest,
			errors.Errorf("POST %s: http %d response: %s", endpoint, resp.StatusCode, truncateBody(body)))
	}
	return body, nil
}

func truncateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBodyBytes {
		return text[:maxErrorBodyBytes] + "..."
	}
	return text
}
