// Package scraper orchestrates a scrape run: fetch the listing, filter
// it, resolve each submission to image URLs and download them.
package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"redscraper/internal/downloader"
	"redscraper/pkg/config"
	"redscraper/pkg/errors"
	"redscraper/pkg/logger"
	"redscraper/pkg/probe"
	"redscraper/pkg/ratelimit"
	"redscraper/pkg/reddit"
	"redscraper/pkg/resolver"
	"redscraper/pkg/storage"
)

// Result summarizes one scrape run
type Result struct {
	Submissions int
	Downloaded  int
	Skipped     int
	Failed      int
	Duration    time.Duration
}

// Scraper drives the listing-resolve-download pipeline
type Scraper struct {
	listing  ListingClient
	resolver LinkResolver
	fetcher  ImageFetcher
	filter   *Filter
	limiter  ratelimit.Limiter
	config   *config.Config
	logger   logger.Logger
}

// New wires a Scraper from configuration, creating the download
// directory and indexing earlier downloads in the process.
func New(cfg *config.Config) (*Scraper, error) {
	log := logger.GetLogger()

	store, err := storage.NewManager(cfg.Download.DownloadLocation)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	probeClient := probe.NewClient(cfg.Download.Timeout, log)
	probeClient.SetHeader("User-Agent", cfg.Reddit.UserAgent)

	limiter := ratelimit.PerMinute(cfg.RateLimit.RequestsPerMinute)

	return &Scraper{
		listing:  reddit.NewClient(cfg.Reddit.BaseURL, cfg.Reddit.UserAgent, cfg.Download.Timeout, log),
		resolver: resolver.New(probeClient, log),
		fetcher:  downloader.NewFetcher(probeClient, store, limiter, log),
		filter:   NewFilter(cfg.Download.MinScore, store),
		limiter:  limiter,
		config:   cfg,
		logger:   log,
	}, nil
}

// NewWithComponents wires a Scraper from explicit collaborators
func NewWithComponents(listing ListingClient, res LinkResolver, fetcher ImageFetcher, filter *Filter, limiter ratelimit.Limiter, cfg *config.Config, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		listing:  listing,
		resolver: res,
		fetcher:  fetcher,
		filter:   filter,
		limiter:  limiter,
		config:   cfg,
		logger:   log,
	}
}

// Run scrapes one subreddit end to end. Per-submission and per-image
// failures are logged and counted but never abort the run; the only
// fatal condition is a subreddit that cannot be listed at all.
func (s *Scraper) Run(ctx context.Context, subreddit string) (*Result, error) {
	start := time.Now()

	period, err := reddit.ParsePeriod(s.config.Download.Period)
	if err != nil {
		return nil, err
	}

	s.logger.InfoWithFields("starting scrape run", map[string]interface{}{
		"subreddit": subreddit,
		"period":    s.config.Download.Period,
		"min_score": s.config.Download.MinScore,
		"max":       s.config.Download.MaxSubmissions,
	})

	submissions, err := s.listing.FetchTop(subreddit, period, s.config.Download.MaxSubmissions)
	if err != nil {
		return nil, err
	}

	result := &Result{Submissions: len(submissions)}

	for _, submission := range submissions {
		select {
		case <-ctx.Done():
			result.Duration = time.Since(start)
			return result, ctx.Err()
		default:
		}

		s.processSubmission(ctx, subreddit, submission, result)
	}

	result.Duration = time.Since(start)

	s.logger.InfoWithFields("scrape run complete", map[string]interface{}{
		"subreddit":   subreddit,
		"submissions": result.Submissions,
		"downloaded":  result.Downloaded,
		"skipped":     result.Skipped,
		"failed":      result.Failed,
		"duration":    result.Duration,
	})

	return result, nil
}

// processSubmission resolves and downloads one submission's images
func (s *Scraper) processSubmission(ctx context.Context, subreddit string, submission reddit.Submission, result *Result) {
	ok, reason := s.filter.ShouldProcess(subreddit, submission)
	if !ok {
		s.logger.DebugWithFields("skipping submission", map[string]interface{}{
			"id":     submission.ID,
			"score":  submission.Score,
			"reason": reason,
		})
		result.Skipped++
		return
	}

	// Resolving probes the submission's host, so it counts against the
	// same allowance as the downloads.
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
	}

	urls, err := s.resolver.Resolve(submission.URL)
	if err != nil {
		if errors.IsUnsupportedContent(err) {
			s.logger.WarnWithFields("submission links to non-image content", map[string]interface{}{
				"id":  submission.ID,
				"url": submission.URL,
			})
			result.Skipped++
			return
		}
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"id":  submission.ID,
			"url": submission.URL,
		}).Warn("failed to resolve submission")
		result.Failed++
		return
	}

	if len(urls) == 0 {
		s.logger.DebugWithFields("submission resolved to no images", map[string]interface{}{
			"id":  submission.ID,
			"url": submission.URL,
		})
		result.Skipped++
		return
	}

	for index, imageURL := range urls {
		filename := ImageFilename(subreddit, submission.ID, index, imageURL)

		if err := s.fetcher.FetchToFile(ctx, imageURL, filename); err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"id":   submission.ID,
				"url":  imageURL,
				"file": filename,
			}).Warn("failed to download image")
			result.Failed++
			continue
		}

		result.Downloaded++
	}
}

// ImageFilename builds the on-disk name for one image of a submission.
// The index is always present, zero padded, so a submission's files sort
// in album order and single images and albums share one naming scheme.
func ImageFilename(subreddit, id string, index int, imageURL string) string {
	return fmt.Sprintf("%s%02d_%s", storage.SubmissionPrefix(subreddit, id), index, urlBasename(imageURL))
}

// urlBasename extracts the final path segment of a URL, with any query
// string or fragment stripped.
func urlBasename(rawURL string) string {
	name := rawURL
	if i := strings.IndexByte(name, '#'); i >= 0 {
		name = name[:i]
	}
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		name = "image"
	}
	return name
}
