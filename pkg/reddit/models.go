package reddit

import "fmt"

// Period is the ranking window for a top-posts listing
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod converts a string into a Period
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return Period(s), nil
	}
	return "", fmt.Errorf("unsupported period %q", s)
}

// Submission is a single ranked post from a subreddit listing
type Submission struct {
	ID    string
	Title string
	URL   string
	Score int
}

// listingResponse mirrors the reddit listing JSON envelope
type listingResponse struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data listingPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// listingPost is the subset of post fields the scraper consumes
type listingPost struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Score     int    `json:"score"`
	Subreddit string `json:"subreddit"`
}
