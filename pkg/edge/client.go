// Package edge invokes the hosted platform's serverless proxy functions
// (fetch-rss, fetch-rta-traffic, content-moderation, ...). The functions do
// the actual third-party HTTP calls; this client only carries JSON in and
// out. Invocations are attempted exactly once.
package edge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client invokes named proxy functions with a JSON body.
type Client interface {
	Invoke(ctx context.Context, fn string, body any) (json.RawMessage, error)
	ModerateContent(ctx context.Context, title, content string) (bool, error)
}

// ModerationResult is the payload returned by the content-moderation
// function.
type ModerationResult struct {
	Approved bool     `json:"approved"`
	Flags    []string `json:"flags,omitempty"`
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout overrides the default per-invocation timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

// WithRateLimit caps outbound invocations at rps with the given burst.
// Zero rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

type httpClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a proxy-function client. baseURL is the platform root;
// functions are invoked at {baseURL}/functions/v1/{name}.
func NewClient(baseURL, apiKey string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Invoke(ctx context.Context, fn string, body any) (json.RawMessage, error) {
	if fn == "" {
		return nil, eris.New("edge: function name is required")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrapf(err, "edge: rate limit wait for %s", fn)
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, eris.Wrapf(err, "edge: marshal body for %s", fn)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/functions/v1/"+fn, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrapf(err, "edge: create request for %s", fn)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "edge: invoke %s", fn)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "edge: read response from %s", fn)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("edge: %s returned status %d: %s", fn, resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// ModerateContent runs the content-moderation function and reports whether
// the text was approved. The error is returned alongside so callers can
// apply their own default when moderation is unavailable.
func (c *httpClient) ModerateContent(ctx context.Context, title, content string) (bool, error) {
	raw, err := c.Invoke(ctx, "content-moderation", map[string]string{
		"title":   title,
		"content": content,
	})
	if err != nil {
		return false, err
	}

	var result ModerationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return false, eris.Wrap(err, "edge: unmarshal moderation result")
	}
	return result.Approved, nil
}
