package reddit

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"redscraper/pkg/errors"
	"redscraper/pkg/logger"
)

// Client fetches subreddit listings from the public reddit JSON endpoint
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	logger     logger.Logger
}

// NewClient creates a new reddit listing client
func NewClient(baseURL, userAgent string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			// Reddit throttles default Go user agents aggressively; a
			// descriptive one is required for the public endpoint.
			"User-Agent": userAgent,
			"Accept":     "application/json",
		},
		baseURL: baseURL,
		logger:  log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// FetchTop returns up to limit top-ranked submissions for the subreddit
// over the given window, in listing (descending rank) order. A
// nonexistent, banned or private subreddit yields a not_found error,
// which callers treat as fatal for the run.
func (c *Client) FetchTop(subreddit string, period Period, limit int) ([]Submission, error) {
	url := TopListingURL(c.baseURL, subreddit, period, limit)

	c.logger.DebugWithFields("fetching top listing", map[string]interface{}{
		"subreddit": subreddit,
		"period":    string(period),
		"limit":     limit,
		"url":       url,
	})

	var listing listingResponse
	if err := c.getJSON(url, &listing); err != nil {
		c.logger.WithError(err).WithField("subreddit", subreddit).Error("failed to fetch listing")
		return nil, err
	}

	// Reddit answers some unknown subreddit names with a 200 redirect to
	// its search page, whose listing has no children. Treat that like a
	// 404 so the run fails instead of silently downloading nothing.
	if len(listing.Data.Children) == 0 {
		c.logger.WarnWithFields("listing came back empty", map[string]interface{}{
			"subreddit": subreddit,
			"period":    string(period),
		})
		return nil, errors.New(errors.ErrorTypeNotFound, "subreddit not found", http.StatusOK)
	}

	submissions := make([]Submission, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		submissions = append(submissions, Submission{
			ID:    child.Data.ID,
			Title: child.Data.Title,
			URL:   child.Data.URL,
			Score: child.Data.Score,
		})
	}

	c.logger.InfoWithFields("listing fetched", map[string]interface{}{
		"subreddit":   subreddit,
		"period":      string(period),
		"submissions": len(submissions),
	})

	return submissions, nil
}

// getJSON performs a GET request and decodes the JSON response
func (c *Client) getJSON(url string, target interface{}) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return errors.New(errors.ErrorTypeUnknown,
			fmt.Sprintf("failed to create request: %v", err), 0)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.New(errors.ErrorTypeNetwork,
			fmt.Sprintf("network error: %v", err), 0)
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("listing request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.New(errors.ErrorTypeNetwork,
			fmt.Sprintf("failed to read response body: %v", err), resp.StatusCode)
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse listing JSON", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return errors.New(errors.ErrorTypeParsing,
			fmt.Sprintf("failed to parse JSON: %v", err), resp.StatusCode)
	}

	return nil
}

// checkResponseStatus maps listing HTTP statuses onto the error taxonomy.
// Reddit answers 404 for unknown subreddits and 403 for private or
// banned ones; both mean there is nothing to scrape.
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusForbidden:
		return errors.New(errors.ErrorTypeNotFound, "subreddit not found", resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return errors.New(errors.ErrorTypeRateLimit, "rate limit exceeded", resp.StatusCode)
	case resp.StatusCode >= 500:
		return errors.New(errors.ErrorTypeServerError, "server error", resp.StatusCode)
	default:
		return errors.New(errors.ErrorTypeUnknown,
			fmt.Sprintf("unexpected status code: %d", resp.StatusCode), resp.StatusCode)
	}
}
