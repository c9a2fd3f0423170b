package probe

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

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.Header.Get("User-Agent"), "redscraper")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("body"))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, logger.NewTestLogger())
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(5*time.Second, logger.NewTestLogger())
	resp, err := client.Head(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

func TestHeadNoRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "http://i.example.com/abc.jpg")
		w.WriteHeader(http.StatusMovedPermanently)
	}))
	defer server.Close()

	client := NewClient(5*time.Second, logger.NewTestLogger())

	resp, err := client.HeadNoRedirect(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "http://i.example.com/abc.jpg", resp.Header.Get("Location"))
}

func TestHeadFollowsRedirect(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusMovedPermanently)
	}))
	defer server.Close()

	client := NewClient(5*time.Second, logger.NewTestLogger())

	resp, err := client.Head(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
}

func TestNetworkError(t *testing.T) {
	client := NewClient(time.Second, logger.NewTestLogger())

	resp, err := client.Get("http://127.0.0.1:1")
	assert.Nil(t, resp)
	require.Error(t, err)

	var typedErr *errors.Error
	require.ErrorAs(t, err, &typedErr)
	assert.Equal(t, errors.ErrorTypeNetwork, typedErr.Type)
}

func TestInvalidURL(t *testing.T) {
	client := NewClient(time.Second, logger.NewTestLogger())

	resp, err := client.Get("://not-a-url")
	assert.Nil(t, resp)
	assert.Error(t, err)
}
