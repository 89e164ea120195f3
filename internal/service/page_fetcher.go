package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/brandsight/brandsight-api/internal/netguard"
)

// browserUserAgent avoids the reflexive bot-blocking some sites apply to
// default Go user agents.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var multiSpace = regexp.MustCompile(`\s+`)

// PageFetcher retrieves a page and extracts its readable text. All fetches
// go through the SSRF guard first.
type PageFetcher struct {
	logger  *slog.Logger
	timeout time.Duration
}

// NewPageFetcher creates a page fetcher with the given request timeout.
func NewPageFetcher(logger *slog.Logger, timeout time.Duration) *PageFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PageFetcher{logger: logger, timeout: timeout}
}

// FetchHTML retrieves raw HTML from a URL. Errors carry user-facing
// messages since they surface in API responses during target creation.
func (f *PageFetcher) FetchHTML(ctx context.Context, pageURL string) (string, error) {
	if err := netguard.CheckURL(pageURL); err != nil {
		return "", err
	}

	f.logger.Info("fetching page", "url", pageURL)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := colly.NewCollector(colly.UserAgent(browserUserAgent))
	c.SetRequestTimeout(f.timeout)

	var body []byte
	var fetchErr error
	var statusCode int

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
	})

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	c.OnError(func(r *colly.Response, err error) {
		statusCode = r.StatusCode
		fetchErr = err
	})

	if err := c.Visit(pageURL); err != nil && fetchErr == nil {
		fetchErr = err
	}
	c.Wait()

	if fetchErr != nil {
		return "", f.friendlyFetchError(pageURL, statusCode, fetchErr)
	}
	return string(body), nil
}

// friendlyFetchError translates transport failures into messages a user
// entering their website URL can act on.
func (f *PageFetcher) friendlyFetchError(pageURL string, statusCode int, err error) error {
	f.logger.Error("page fetch failed", "url", pageURL, "status", statusCode, "error", err)

	switch statusCode {
	case http.StatusForbidden:
		return fmt.Errorf("website %s blocked the request (403 Forbidden); it may restrict automated access", pageURL)
	case http.StatusNotFound:
		return fmt.Errorf("website not found (404) at %s; please check the URL is correct", pageURL)
	}
	if statusCode != 0 {
		return fmt.Errorf("cannot access website: HTTP %d; please check the URL is correct and accessible", statusCode)
	}
	if strings.Contains(err.Error(), "Timeout") || strings.Contains(err.Error(), "deadline exceeded") {
		return fmt.Errorf("request to %s timed out; the website may be slow or unreachable", pageURL)
	}
	return fmt.Errorf("cannot reach website: %w", err)
}

// ExtractText strips scripts and styles from HTML and returns the visible
// text with whitespace normalized.
func ExtractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}

	return strings.TrimSpace(multiSpace.ReplaceAllString(text, " ")), nil
}

// ExtractMetaKeywords reads the meta keywords tag, if present.
func ExtractMetaKeywords(html string) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
	if err != nil {
		return nil
	}

	content, exists := doc.Find(`meta[name="keywords"]`).Attr("content")
	if !exists {
		return nil
	}

	var keywords []string
	for _, part := range strings.Split(content, ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
