// Package downloader retrieves resolved image URLs and hands the bytes
// to storage.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"redscraper/pkg/errors"
	"redscraper/pkg/logger"
	"redscraper/pkg/ratelimit"
)

// ImageGetter fetches a URL, following redirects
type ImageGetter interface {
	Get(url string) (*http.Response, error)
}

// ImageStorage persists a downloaded image under the given filename
type ImageStorage interface {
	SaveImage(r io.Reader, filename string) error
}

// Fetcher downloads images one at a time, waiting on the limiter it
// shares with the rest of the pipeline before each fetch.
type Fetcher struct {
	client  ImageGetter
	storage ImageStorage
	limiter ratelimit.Limiter
	logger  logger.Logger
}

// NewFetcher creates a Fetcher
func NewFetcher(client ImageGetter, storage ImageStorage, limiter ratelimit.Limiter, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Fetcher{
		client:  client,
		storage: storage,
		limiter: limiter,
		logger:  log,
	}
}

// FetchToFile downloads url and stores it under filename. The response
// body is streamed straight into storage, never buffered whole.
func (f *Fetcher) FetchToFile(ctx context.Context, url, filename string) error {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return errors.New(errors.ErrorTypeNetwork,
				fmt.Sprintf("canceled while waiting for rate limit: %v", err), 0)
		}
	}

	start := time.Now()
	resp, err := f.client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkDownloadStatus(resp); err != nil {
		return err
	}

	fields := map[string]interface{}{
		"url":  url,
		"file": filename,
	}
	// Content-Length is optional; chunked responses report -1
	if resp.ContentLength >= 0 {
		fields["size_mb"] = fmt.Sprintf("%.2f", float64(resp.ContentLength)/(1024*1024))
	}
	f.logger.InfoWithFields("downloading image", fields)

	if err := f.storage.SaveImage(resp.Body, filename); err != nil {
		return errors.New(errors.ErrorTypeUnknown,
			fmt.Sprintf("failed to store image: %v", err), resp.StatusCode)
	}

	f.logger.DebugWithFields("image stored", map[string]interface{}{
		"file":     filename,
		"duration": time.Since(start),
	})

	return nil
}

// checkDownloadStatus maps image fetch statuses onto the error taxonomy
func checkDownloadStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return errors.New(errors.ErrorTypeRateLimit, "rate limit exceeded", resp.StatusCode)
	case resp.StatusCode >= 500:
		return errors.New(errors.ErrorTypeServerError, "server error", resp.StatusCode)
	default:
		return errors.New(errors.ErrorTypeUnknown,
			fmt.Sprintf("unexpected status code: %d", resp.StatusCode), resp.StatusCode)
	}
}
