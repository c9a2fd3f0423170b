package scraper

import "redscraper/pkg/reddit"

// Skip reasons reported by the filter
const (
	SkipLowScore   = "score below threshold"
	SkipDownloaded = "already downloaded"
)

// Filter decides which listed submissions are worth processing. The
// score gate runs before the dedup lookup so low-ranked posts never
// touch the disk index.
type Filter struct {
	minScore int
	store    SubmissionStore
}

// NewFilter creates a Filter with the given score threshold
func NewFilter(minScore int, store SubmissionStore) *Filter {
	return &Filter{minScore: minScore, store: store}
}

// ShouldProcess reports whether the submission passes the score gate and
// has not been downloaded on an earlier run. A skipped submission comes
// back with the reason for logging.
func (f *Filter) ShouldProcess(subreddit string, s reddit.Submission) (bool, string) {
	if s.Score < f.minScore {
		return false, SkipLowScore
	}
	if f.store.HasSubmission(subreddit, s.ID) {
		return false, SkipDownloaded
	}
	return true, ""
}
