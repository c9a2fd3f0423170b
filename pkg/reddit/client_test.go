package reddit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redscraper/pkg/errors"
	"redscraper/pkg/logger"
)

const listingFixture = `{
  "kind": "Listing",
  "data": {
    "after": "t3_next",
    "children": [
      {"kind": "t3", "data": {"id": "aaa111", "title": "First", "url": "http://i.imgur.com/one.jpg", "score": 2100, "subreddit": "pics"}},
      {"kind": "t3", "data": {"id": "bbb222", "title": "Second", "url": "http://imgur.com/a/xyz", "score": 900, "subreddit": "pics"}},
      {"kind": "t3", "data": {"id": "ccc333", "title": "Third", "url": "http://example.com/page", "score": 450, "subreddit": "pics"}}
    ]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, "redscraper-test/1.0", 5*time.Second, logger.NewTestLogger())
	return client, server
}

func TestFetchTop(t *testing.T) {
	var requestedPath, requestedQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		requestedQuery = r.URL.RawQuery
		assert.Contains(t, r.Header.Get("User-Agent"), "redscraper-test")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(listingFixture))
	})

	submissions, err := client.FetchTop("pics", PeriodDay, 25)
	require.NoError(t, err)

	assert.Equal(t, "/r/pics/top.json", requestedPath)
	assert.Contains(t, requestedQuery, "t=day")
	assert.Contains(t, requestedQuery, "limit=25")

	// Listing order is preserved
	require.Len(t, submissions, 3)
	assert.Equal(t, "aaa111", submissions[0].ID)
	assert.Equal(t, "bbb222", submissions[1].ID)
	assert.Equal(t, "ccc333", submissions[2].ID)
	assert.Equal(t, 2100, submissions[0].Score)
	assert.Equal(t, "http://imgur.com/a/xyz", submissions[1].URL)
}

func TestFetchTopSubredditNotFound(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusForbidden} {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		submissions, err := client.FetchTop("nosuchsub", PeriodDay, 25)
		assert.Nil(t, submissions)
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err), "status %d should map to not_found", status)
		assert.True(t, errors.IsFatal(err))
	}
}

func TestFetchTopEmptyListing(t *testing.T) {
	// Unknown subreddit names can come back as a 200 redirect to the
	// search page with an empty listing instead of a 404
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"kind": "Listing", "data": {"after": null, "children": []}}`))
	})

	submissions, err := client.FetchTop("nosuchsub", PeriodDay, 25)
	assert.Nil(t, submissions)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.True(t, errors.IsFatal(err))
}

func TestFetchTopServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchTop("pics", PeriodWeek, 10)
	require.Error(t, err)

	var typedErr *errors.Error
	require.ErrorAs(t, err, &typedErr)
	assert.Equal(t, errors.ErrorTypeServerError, typedErr.Type)
	assert.False(t, errors.IsFatal(err))
}

func TestFetchTopInvalidJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.FetchTop("pics", PeriodDay, 25)
	require.Error(t, err)

	var typedErr *errors.Error
	require.ErrorAs(t, err, &typedErr)
	assert.Equal(t, errors.ErrorTypeParsing, typedErr.Type)
}

func TestParsePeriod(t *testing.T) {
	for _, valid := range []string{"day", "week", "month"} {
		period, err := ParsePeriod(valid)
		require.NoError(t, err)
		assert.Equal(t, Period(valid), period)
	}

	_, err := ParsePeriod("year")
	assert.Error(t, err)
}

func TestTopListingURL(t *testing.T) {
	url := TopListingURL(DefaultBaseURL, "earthporn", PeriodMonth, 50)
	assert.Equal(t, "https://www.reddit.com/r/earthporn/top.json?limit=50&t=month", url)
}
