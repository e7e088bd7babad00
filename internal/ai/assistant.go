// Package ai defines the optional assistant capabilities the pipeline can be
// wired with. Both are pure enhancements: a nil implementation and a failed
// call are treated the same way by callers (empty contribution).
package ai

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kec-hub/opportunities/internal/opportunity"
)

// Expander generates short additional search queries from a profile.
type Expander interface {
	Expand(ctx context.Context, profile *opportunity.Profile) ([]string, error)
}

// LinkCandidate is one web-search hit offered to the link filter.
type LinkCandidate struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Host    string `json:"host"`
}

// LinkFilter narrows a set of discovered links down to real job/apply pages.
// The returned URLs are an allow-list: callers only ever intersect with it.
type LinkFilter interface {
	Keep(ctx context.Context, profile *opportunity.Profile, candidates []LinkCandidate) ([]string, error)
}

var jsonObjectRe = regexp.MustCompile(`\{[\s\S]*\}`)

// ExtractJSONObject parses a strict-JSON model response, tolerating an
// enclosing markdown code fence and surrounding prose. Returns nil when no
// JSON object can be recovered.
func ExtractJSONObject(text string) map[string]any {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil {
		return obj
	}

	m := jsonObjectRe.FindString(cleaned)
	if m == "" {
		return nil
	}
	obj = nil
	if err := json.Unmarshal([]byte(m), &obj); err != nil {
		return nil
	}
	return obj
}

// StringList pulls a []string out of a decoded JSON object, skipping
// non-string members.
func StringList(obj map[string]any, key string) ([]string, bool) {
	raw, ok := obj[key]
	if !ok {
		return nil, false
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

var (
	queryCharRe  = regexp.MustCompile(`[^a-zA-Z0-9\s\-_/+.]`)
	querySpaceRe = regexp.MustCompile(`\s+`)
)

// CleanQuery makes a model-suggested query safe for search APIs: capped at 80
// characters, scrubbed to a basic charset, whitespace collapsed. Queries that
// end up shorter than 3 characters are dropped (empty return).
func CleanQuery(q string) string {
	q = strings.TrimSpace(q)
	if len(q) > 80 {
		q = q[:80]
	}
	q = queryCharRe.ReplaceAllString(q, " ")
	q = strings.TrimSpace(querySpaceRe.ReplaceAllString(q, " "))
	if len(q) < 3 {
		return ""
	}
	return q
}

// DedupeQueries removes case-insensitive duplicates, preserving order, and
// caps the result.
func DedupeQueries(queries []string, max int) []string {
	seen := make(map[string]struct{}, len(queries))
	out := make([]string, 0, len(queries))
	for _, q := range queries {
		key := strings.ToLower(strings.TrimSpace(q))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}
