// Package dates holds the deadline parsing and freshness heuristics shared by
// the sources and the filter chain.
package dates

import (
	"regexp"
	"time"

	dateparser "github.com/markusmobius/go-dateparser"
)

var isoDateRe = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

// ParseDeadline tries to find a deadline date in free text. It first scans
// for a strict YYYY-MM-DD date, then falls back to a free-text parse biased
// toward dates in the future of now. Returns nil when uncertain.
func ParseDeadline(text string, now time.Time) *time.Time {
	if text == "" {
		return nil
	}

	if m := isoDateRe.FindString(text); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return &t
		}
	}

	cfg := &dateparser.Configuration{
		CurrentTime:         now,
		PreferredDateSource: dateparser.Future,
	}
	parsed, err := dateparser.Parse(cfg, text)
	if err != nil || parsed.Time.IsZero() {
		return nil
	}
	day := truncateToDay(parsed.Time)
	return &day
}

// IsActive reports whether a listing is still worth showing. A listing with
// an explicit deadline is active until that day passes. Without one it is
// active only when its publish timestamp is at most maxAgeDays old. Neither
// date means inactive.
func IsActive(deadline, publishedAt *time.Time, maxAgeDays int, now time.Time) bool {
	today := truncateToDay(now)
	if deadline != nil {
		return !truncateToDay(*deadline).Before(today)
	}

	if publishedAt == nil {
		return false
	}

	ageDays := int(now.Sub(*publishedAt).Hours() / 24)
	return ageDays <= maxAgeDays
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
