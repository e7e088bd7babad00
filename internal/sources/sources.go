// Package sources holds the connectors to external opportunity providers.
// Every connector fails soft: per-item and per-request errors are logged and
// swallowed, and an empty list is a valid result.
package sources

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kec-hub/opportunities/internal/opportunity"
)

const (
	userAgent       = "kec-hub/opportunities (opportunities@kec.ac.in)"
	contentEncoding = "gzip, deflate"

	defaultTimeout = 12 * time.Second
)

// Source is one external provider of opportunity listings.
type Source interface {
	Name() string
	Fetch(ctx context.Context, profile *opportunity.Profile) (*opportunity.List, error)
}

// statusError is returned by getJSON for non-2xx responses so callers can
// inspect the HTTP status (the web-search source escalates some of these).
type statusError struct {
	Status int
	URL    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("bad status %d from %s", e.Status, e.URL)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// getJSON performs a GET against url with the query values and decodes the
// JSON body into target. Handles gzip bodies and sets the shared User-Agent.
func getJSON(ctx context.Context, client *http.Client, rawURL string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", contentEncoding)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{Status: resp.StatusCode, URL: req.URL.Redacted()}
	}

	if target == nil {
		return nil
	}

	return json.Unmarshal(data, target)
}

// parseTimestamp accepts the ISO-ish timestamp shapes the providers return.
func parseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
