// Package probe issues HEAD and GET requests against arbitrary URLs on
// behalf of the resolver and downloader. It is deliberately thin: status
// codes, headers and bodies are interpreted by the callers.
package probe

import (
	"fmt"
	"net/http"
	"time"

	"redscraper/pkg/errors"
	"redscraper/pkg/logger"
)

// DefaultTimeout bounds every probe request. The upstream behavior was to
// block indefinitely; a bounded wait is strictly safer for a batch run.
const DefaultTimeout = 30 * time.Second

// Client performs HTTP probes with optional redirect following
type Client struct {
	httpClient       *http.Client
	noRedirectClient *http.Client
	headers          map[string]string
	logger           logger.Logger
}

// NewClient creates a probe client. A nil logger falls back to the global one.
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		noRedirectClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		headers: map[string]string{
			"User-Agent": "redscraper/1.0 (batch subreddit image downloader)",
			"Accept":     "text/html,image/avif,image/webp,image/apng,*/*;q=0.8",
		},
		logger: log,
	}
}

// SetHeader sets a custom header applied to every probe request
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// Get performs a GET request, following redirects
func (c *Client) Get(url string) (*http.Response, error) {
	return c.do(c.httpClient, http.MethodGet, url)
}

// Head performs a HEAD request, following redirects
func (c *Client) Head(url string) (*http.Response, error) {
	return c.do(c.httpClient, http.MethodHead, url)
}

// HeadNoRedirect performs a HEAD request without following redirects, so
// the caller can inspect the Location header of a 3xx response.
func (c *Client) HeadNoRedirect(url string) (*http.Response, error) {
	return c.do(c.noRedirectClient, http.MethodHead, url)
}

// do issues the request with the configured headers. The caller owns the
// response body.
func (c *Client) do(client *http.Client, method, url string) (*http.Response, error) {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeUnknown,
			fmt.Sprintf("failed to create request: %v", err), 0)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending probe request", map[string]interface{}{
		"method": method,
		"url":    url,
	})

	resp, err := client.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.DebugWithFields("probe request failed", map[string]interface{}{
			"method":   method,
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.New(errors.ErrorTypeNetwork,
			fmt.Sprintf("network error: %v", err), 0)
	}

	c.logger.DebugWithFields("probe request completed", map[string]interface{}{
		"method":   method,
		"url":      url,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}
