package scraper

import (
	"context"

	"redscraper/pkg/reddit"
)

// ListingClient fetches ranked submissions for a subreddit
type ListingClient interface {
	FetchTop(subreddit string, period reddit.Period, limit int) ([]reddit.Submission, error)
}

// LinkResolver resolves a submission's outbound URL to image URLs
type LinkResolver interface {
	Resolve(rawURL string) ([]string, error)
}

// ImageFetcher downloads one image URL into the named file
type ImageFetcher interface {
	FetchToFile(ctx context.Context, url, filename string) error
}

// SubmissionStore answers whether a submission was downloaded before
type SubmissionStore interface {
	HasSubmission(subreddit, id string) bool
}
