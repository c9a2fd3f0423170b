// Package resolver turns a submission's outbound URL into the list of
// directly fetchable image URLs behind it. Classification is purely
// syntactic so no network round-trip is spent deciding how to probe; each
// strategy then issues the cheapest request sufficient for its case.
package resolver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"redscraper/pkg/errors"
	"redscraper/pkg/logger"
)

// albumImageSelector matches the per-image anchors on an imgur album page
const albumImageSelector = ".album-view-image-link a"

// Prober is the HTTP collaborator the resolver probes URLs with
type Prober interface {
	Get(url string) (*http.Response, error)
	Head(url string) (*http.Response, error)
	HeadNoRedirect(url string) (*http.Response, error)
}

// Strategy pairs a syntactic URL match with a resolution procedure.
// Additional image hosts are supported by registering a Strategy; the
// orchestrator never changes.
type Strategy struct {
	Name    string
	Matches func(url string) bool
	Resolve func(url string) ([]string, error)
}

// Resolver classifies outbound URLs and resolves them to image URLs
type Resolver struct {
	probe      Prober
	logger     logger.Logger
	strategies []Strategy
}

// New creates a Resolver with the built-in imgur strategies and the
// content-type sniff fallback.
func New(probe Prober, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetLogger()
	}
	r := &Resolver{probe: probe, logger: log}
	r.strategies = []Strategy{
		{
			Name:    "imgur album",
			Matches: func(url string) bool { return strings.Contains(url, "//imgur.com/a/") },
			Resolve: r.resolveAlbum,
		},
		{
			Name:    "imgur page",
			Matches: func(url string) bool { return strings.Contains(url, "//imgur.com/") },
			Resolve: r.resolvePage,
		},
		{
			Name:    "imgur direct",
			Matches: func(url string) bool { return strings.Contains(url, "//i.imgur.com/") },
			Resolve: r.resolveDirect,
		},
		{
			Name:    "content-type sniff",
			Matches: func(string) bool { return true },
			Resolve: r.resolveByContentType,
		},
	}
	return r
}

// Register adds a provider strategy ahead of the content-type fallback
func (r *Resolver) Register(s Strategy) {
	last := len(r.strategies) - 1
	r.strategies = append(r.strategies[:last], s, r.strategies[last])
}

// Resolve classifies rawURL and returns the direct image URLs behind it,
// in display order. An empty slice with a nil error means the URL could
// not be resolved for a benign reason (unexpected status); a typed error
// reports why resolution failed. Neither outcome is fatal to a run.
func (r *Resolver) Resolve(rawURL string) ([]string, error) {
	url := fixSchemeless(rawURL)

	for _, s := range r.strategies {
		if !s.Matches(url) {
			continue
		}
		r.logger.DebugWithFields("resolving submission URL", map[string]interface{}{
			"url":      url,
			"strategy": s.Name,
		})
		return s.Resolve(url)
	}

	// Unreachable: the sniff fallback matches everything
	return nil, nil
}

// resolveAlbum scrapes an imgur album listing page. The anchors are
// returned in document order, which is the album's display order and
// determines file numbering.
func (r *Resolver) resolveAlbum(url string) ([]string, error) {
	resp, err := r.probe.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.DebugWithFields("album page not available", map[string]interface{}{
			"url":    url,
			"status": resp.StatusCode,
		})
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeParsing,
			fmt.Sprintf("failed to parse album page: %v", err), resp.StatusCode)
	}

	var urls []string
	doc.Find(albumImageSelector).Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			urls = append(urls, fixSchemeless(href))
		}
	})

	r.logger.DebugWithFields("album resolved", map[string]interface{}{
		"url":    url,
		"images": len(urls),
	})

	return urls, nil
}

// resolvePage handles an imgur page holding a single image, which is
// served either as a 301 redirect straight to the image or as an HTML
// page carrying a link[rel=image_src] element. Only the first redirect
// hop is honored, matching the host's observed behavior.
func (r *Resolver) resolvePage(url string) ([]string, error) {
	resp, err := r.probe.HeadNoRedirect(url)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusMovedPermanently:
		location := resp.Header.Get("Location")
		if location == "" {
			return nil, errors.New(errors.ErrorTypeParsing,
				"redirect without Location header", resp.StatusCode)
		}
		return []string{fixSchemeless(location)}, nil

	case http.StatusOK:
		return r.scrapeImageSrc(url)

	default:
		r.logger.DebugWithFields("image page not available", map[string]interface{}{
			"url":    url,
			"status": resp.StatusCode,
		})
		return nil, nil
	}
}

// scrapeImageSrc fetches an image landing page and extracts the URL
// declared by its link[rel=image_src] element.
func (r *Resolver) scrapeImageSrc(url string) ([]string, error) {
	resp, err := r.probe.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeParsing,
			fmt.Sprintf("failed to parse image page: %v", err), resp.StatusCode)
	}

	href, ok := doc.Find(`link[rel="image_src"]`).Attr("href")
	if !ok {
		return nil, errors.New(errors.ErrorTypeParsing,
			"no image_src link found on page", resp.StatusCode)
	}

	return []string{fixSchemeless(href)}, nil
}

// resolveDirect passes a CDN image URL through untouched, no probe needed
func (r *Resolver) resolveDirect(url string) ([]string, error) {
	return []string{url}, nil
}

// resolveByContentType is the fallback for unrecognized hosts: a HEAD
// request decides by Content-Type whether the URL is an image.
func (r *Resolver) resolveByContentType(url string) ([]string, error) {
	resp, err := r.probe.Head(url)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "image/") {
		return []string{url}, nil
	}

	return nil, errors.New(errors.ErrorTypeUnsupportedContent,
		fmt.Sprintf("content type not suitable (%s)", contentType), resp.StatusCode)
}

// fixSchemeless prepends http: to scheme-relative URLs (//host/path)
func fixSchemeless(url string) string {
	if strings.HasPrefix(url, "//") {
		return "http:" + url
	}
	return url
}
