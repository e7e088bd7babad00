// Package opportunity defines the records flowing through the extraction
// pipeline: candidate profiles coming in and normalized opportunity listings
// going out.
package opportunity

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Kind classifies an opportunity listing.
type Kind string

const (
	KindInternship  Kind = "Internship"
	KindHackathon   Kind = "Hackathon"
	KindWorkshop    Kind = "Workshop"
	KindCompetition Kind = "Competition"
	KindFullTime    Kind = "Full-time"
	KindOther       Kind = "Other"
)

// Match methods record which query strategy produced an item. Sources prefix
// them as needed (the web source uses "web-base"/"web-ai").
const (
	MatchBase = "base"
	MatchAI   = "ai"
)

// Profile carries the signals used to build queries and score candidates.
// It is read-only for the whole pipeline run.
type Profile struct {
	ID         string   `json:"id,omitempty" mapstructure:"id"`
	Department string   `json:"department,omitempty" mapstructure:"department"`
	Skills     []string `json:"skills,omitempty" mapstructure:"skills"`
	Interests  []string `json:"interests,omitempty" mapstructure:"interests"`
}

// Opportunity is one normalized listing produced by a source.
// Score and Reasons are populated by the scoring stage only.
type Opportunity struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company,omitempty"`
	Kind     Kind   `json:"kind"`
	Location string `json:"location,omitempty"`
	Source   string `json:"source"`
	// SourceURL is the link to the posting. Its canonical form (trimmed,
	// lowercased) is the dedup key for a pipeline run.
	SourceURL string `json:"source_url"`
	// MatchMethod records which query strategy found this item. Not the
	// same thing as Source.
	MatchMethod string     `json:"match_method,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Tags        []string   `json:"tags,omitempty"`

	Score   float64  `json:"score"`
	Reasons []string `json:"reasons,omitempty"`
}

// List is a collection of opportunities with the helpers the pipeline needs.
type List struct {
	Items []*Opportunity
}

func NewList(items ...*Opportunity) *List {
	return &List{Items: items}
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Items)
}

func (l *List) Append(other *List) {
	if other == nil {
		return
	}
	l.Items = append(l.Items, other.Items...)
}

// CanonicalURL is the dedup key: trimmed and lowercased, nothing more.
// Trailing slashes and query strings are preserved on purpose, so two links
// differing only by a trailing slash count as distinct postings.
func CanonicalURL(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Dedupe returns a new list keeping the first occurrence of every canonical
// URL, in input order. Items with an empty URL are dropped.
func (l *List) Dedupe() *List {
	seen := make(map[string]struct{}, l.Len())
	out := &List{Items: make([]*Opportunity, 0, l.Len())}
	for _, op := range l.Items {
		key := CanonicalURL(op.SourceURL)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out.Items = append(out.Items, op)
	}
	return out
}

// Truncate caps the list at max items. Non-positive max leaves it untouched.
func (l *List) Truncate(max int) {
	if max <= 0 || len(l.Items) <= max {
		return
	}
	l.Items = l.Items[:max]
}

// ReportBySource groups listings per source for operator-facing reports.
func (l *List) ReportBySource() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, op := range l.Items {
		entry := map[string]string{
			"title":    op.Title,
			"company":  op.Company,
			"kind":     string(op.Kind),
			"location": op.Location,
			"url":      op.SourceURL,
			"score":    fmt.Sprintf("%.2f", op.Score),
		}
		if op.Deadline != nil {
			entry["deadline"] = op.Deadline.Format("2006-01-02")
		}
		if len(op.Reasons) > 0 {
			entry["reasons"] = strings.Join(op.Reasons, "; ")
		}
		report[op.Source] = append(report[op.Source], entry)
	}
	return report
}

func (l *List) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "opportunities_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return "", err
	}
	return file.Name(), nil
}
