package resolver

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redscraper/pkg/errors"
	"redscraper/pkg/logger"
)

const albumPage = `<html><body>
  <div class="album-view-image-link"><a href="//i.imgur.com/first.jpg">one</a></div>
  <div class="album-view-image-link"><a href="//i.imgur.com/second.png">two</a></div>
  <div class="album-view-image-link"><a href="//cdn.example.com/third.gif">three</a></div>
  <div class="unrelated"><a href="//i.imgur.com/nope.jpg">decoy</a></div>
</body></html>`

const imagePage = `<html><head>
  <link rel="image_src" href="//i.imgur.com/single.jpg"/>
</head><body></body></html>`

// fakeProber serves canned responses and counts requests per method
type fakeProber struct {
	getResponse            *http.Response
	headResponse           *http.Response
	headNoRedirectResponse *http.Response

	getCalls            int
	headCalls           int
	headNoRedirectCalls int
}

func (f *fakeProber) Get(url string) (*http.Response, error) {
	f.getCalls++
	if f.getResponse == nil {
		return nil, errors.New(errors.ErrorTypeNetwork, "unexpected GET", 0)
	}
	return f.getResponse, nil
}

func (f *fakeProber) Head(url string) (*http.Response, error) {
	f.headCalls++
	if f.headResponse == nil {
		return nil, errors.New(errors.ErrorTypeNetwork, "unexpected HEAD", 0)
	}
	return f.headResponse, nil
}

func (f *fakeProber) HeadNoRedirect(url string) (*http.Response, error) {
	f.headNoRedirectCalls++
	if f.headNoRedirectResponse == nil {
		return nil, errors.New(errors.ErrorTypeNetwork, "unexpected HEAD", 0)
	}
	return f.headNoRedirectResponse, nil
}

func response(status int, body string, headers map[string]string) *http.Response {
	header := http.Header{}
	for key, value := range headers {
		header.Set(key, value)
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestResolveAlbum(t *testing.T) {
	probe := &fakeProber{getResponse: response(http.StatusOK, albumPage, nil)}
	r := New(probe, logger.NewTestLogger())

	urls, err := r.Resolve("http://imgur.com/a/abc12")
	require.NoError(t, err)

	// Album order is preserved and scheme-relative hrefs gain http:
	assert.Equal(t, []string{
		"http://i.imgur.com/first.jpg",
		"http://i.imgur.com/second.png",
		"http://cdn.example.com/third.gif",
	}, urls)
	assert.Equal(t, 1, probe.getCalls)
}

func TestResolveAlbumUnavailable(t *testing.T) {
	probe := &fakeProber{getResponse: response(http.StatusNotFound, "", nil)}
	r := New(probe, logger.NewTestLogger())

	urls, err := r.Resolve("http://imgur.com/a/gone1")
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestResolvePageRedirect(t *testing.T) {
	probe := &fakeProber{
		headNoRedirectResponse: response(http.StatusMovedPermanently, "",
			map[string]string{"Location": "//i.imgur.com/moved.jpg"}),
	}
	r := New(probe, logger.NewTestLogger())

	urls, err := r.Resolve("http://imgur.com/moved")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://i.imgur.com/moved.jpg"}, urls)

	// The redirect target is trusted as-is, no follow-up request
	assert.Equal(t, 1, probe.headNoRedirectCalls)
	assert.Equal(t, 0, probe.getCalls)
	assert.Equal(t, 0, probe.headCalls)
}

func TestResolvePageImageSrc(t *testing.T) {
	probe := &fakeProber{
		headNoRedirectResponse: response(http.StatusOK, "", nil),
		getResponse:            response(http.StatusOK, imagePage, nil),
	}
	r := New(probe, logger.NewTestLogger())

	urls, err := r.Resolve("http://imgur.com/single")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://i.imgur.com/single.jpg"}, urls)
}

func TestResolvePageMissingImageSrc(t *testing.T) {
	probe := &fakeProber{
		headNoRedirectResponse: response(http.StatusOK, "", nil),
		getResponse:            response(http.StatusOK, "<html><head></head></html>", nil),
	}
	r := New(probe, logger.NewTestLogger())

	_, err := r.Resolve("http://imgur.com/odd")
	require.Error(t, err)

	var typedErr *errors.Error
	require.ErrorAs(t, err, &typedErr)
	assert.Equal(t, errors.ErrorTypeParsing, typedErr.Type)
}

func TestResolveDirect(t *testing.T) {
	probe := &fakeProber{}
	r := New(probe, logger.NewTestLogger())

	urls, err := r.Resolve("http://i.imgur.com/direct.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://i.imgur.com/direct.jpg"}, urls)

	// Direct CDN links resolve without touching the network
	assert.Equal(t, 0, probe.getCalls)
	assert.Equal(t, 0, probe.headCalls)
	assert.Equal(t, 0, probe.headNoRedirectCalls)
}

func TestResolveSchemelessInput(t *testing.T) {
	r := New(&fakeProber{}, logger.NewTestLogger())

	urls, err := r.Resolve("//i.imgur.com/bare.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://i.imgur.com/bare.png"}, urls)
}

func TestResolveContentTypeSniff(t *testing.T) {
	probe := &fakeProber{
		headResponse: response(http.StatusOK, "",
			map[string]string{"Content-Type": "image/jpeg"}),
	}
	r := New(probe, logger.NewTestLogger())

	urls, err := r.Resolve("http://photos.example.com/shot.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://photos.example.com/shot.jpg"}, urls)
	assert.Equal(t, 1, probe.headCalls)
}

func TestResolveUnsupportedContent(t *testing.T) {
	probe := &fakeProber{
		headResponse: response(http.StatusOK, "",
			map[string]string{"Content-Type": "text/html; charset=utf-8"}),
	}
	r := New(probe, logger.NewTestLogger())

	urls, err := r.Resolve("http://blog.example.com/article")
	assert.Nil(t, urls)
	require.Error(t, err)
	assert.True(t, errors.IsUnsupportedContent(err))
	assert.False(t, errors.IsFatal(err))
}

func TestRegisterStrategy(t *testing.T) {
	probe := &fakeProber{}
	r := New(probe, logger.NewTestLogger())

	r.Register(Strategy{
		Name:    "gfycat",
		Matches: func(url string) bool { return strings.Contains(url, "//gfycat.com/") },
		Resolve: func(url string) ([]string, error) {
			return []string{url + ".gif"}, nil
		},
	})

	urls, err := r.Resolve("http://gfycat.com/clip")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://gfycat.com/clip.gif"}, urls)

	// The fallback still catches everything else
	_, err = r.Resolve("http://other.example.com/page")
	require.Error(t, err)
}
