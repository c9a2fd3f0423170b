package reddit

import (
	"fmt"
	"net/url"
)

// DefaultBaseURL is the public reddit endpoint serving JSON listings
const DefaultBaseURL = "https://www.reddit.com"

// TopListingURL builds the URL for a subreddit's top-posts listing over
// the given ranking window.
func TopListingURL(baseURL, subreddit string, period Period, limit int) string {
	params := url.Values{}
	params.Set("t", string(period))
	params.Set("limit", fmt.Sprintf("%d", limit))
	return fmt.Sprintf("%s/r/%s/top.json?%s", baseURL, url.PathEscape(subreddit), params.Encode())
}
