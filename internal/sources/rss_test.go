package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Campus Opportunities</title>
    <item>
      <title>National Hackathon 2026</title>
      <link>https://events.example/hackathon-2026</link>
      <description>Register before 2026-09-30 to participate.</description>
      <pubDate>Mon, 10 Aug 2026 08:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Internship drive - applications closed</title>
      <link>https://events.example/closed-drive</link>
      <description>This drive has ended.</description>
    </item>
    <item>
      <title>No Link Event</title>
      <description>Missing link, skipped.</description>
    </item>
  </channel>
</rss>`

func TestRSSFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFeed))
	}))
	defer server.Close()

	src := NewRSS([]string{server.URL}, 0, zap.NewNop())
	src.now = func() time.Time { return time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC) }

	got, err := src.Fetch(context.Background(), nil)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	// Closed and linkless entries are dropped at the source.
	if got.Len() != 1 {
		t.Fatalf("expected 1 item, got %d", got.Len())
	}

	op := got.Items[0]
	if op.Title != "National Hackathon 2026" {
		t.Fatalf("unexpected title %q", op.Title)
	}
	if op.PublishedAt == nil {
		t.Fatal("expected published timestamp from pubDate")
	}
	if op.Deadline == nil {
		t.Fatal("expected deadline parsed from the description")
	}
	if op.Deadline.Year() != 2026 || op.Deadline.Month() != time.September || op.Deadline.Day() != 30 {
		t.Fatalf("unexpected deadline %v", op.Deadline)
	}
}

func TestRSSFeedFailureSkipped(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(rssFeed))
	}))
	defer healthy.Close()

	src := NewRSS([]string{broken.URL, healthy.URL}, 0, zap.NewNop())

	got, err := src.Fetch(context.Background(), nil)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("expected the healthy feed's item, got %d", got.Len())
	}
}
