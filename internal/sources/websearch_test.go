package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/ai"
	"github.com/kec-hub/opportunities/internal/opportunity"
)

const serpAPIPayload = `{
  "organic_results": [
    {
      "title": "Software Engineering Intern",
      "link": "https://acme.com/careers/intern-9",
      "snippet": "Apply now for our 2026 internship batch.",
      "displayed_link": "acme.com"
    },
    {
      "title": "Software Intern Salary Guide",
      "link": "https://www.glassdoor.example/salaries/intern",
      "snippet": "Average salary for interns in India.",
      "displayed_link": "glassdoor.example"
    },
    {
      "title": "Random Blog Post",
      "link": "https://blog.example.net/post",
      "snippet": "Thoughts about tooling.",
      "displayed_link": "blog.example.net"
    }
  ]
}`

type fakeLinkFilter struct {
	keep []string
	err  error
}

func (f *fakeLinkFilter) Keep(_ context.Context, _ *opportunity.Profile, _ []ai.LinkCandidate) ([]string, error) {
	return f.keep, f.err
}

func serpAPIWebSearch(t *testing.T, handler http.HandlerFunc, linkFilter ai.LinkFilter) (*WebSearch, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	restore := serpAPIBaseURL
	serpAPIBaseURL = server.URL

	src := NewWebSearch(WebSearchConfig{
		Provider:   WebProviderSerpAPI,
		SerpAPIKey: "test-key",
	}, nil, linkFilter, zap.NewNop())

	return src, func() {
		serpAPIBaseURL = restore
		server.Close()
	}
}

func TestWebSearchDisabledWithoutCredentials(t *testing.T) {
	src := NewWebSearch(WebSearchConfig{Provider: WebProviderSerpAPI}, nil, nil, zap.NewNop())
	if src.Enabled() {
		t.Fatal("expected disabled without an api key")
	}

	got, meta := src.FetchWithMeta(context.Background(), &opportunity.Profile{})
	if meta.Used {
		t.Fatal("expected Used=false when disabled")
	}
	if got.Len() != 0 {
		t.Fatalf("expected no items, got %d", got.Len())
	}
}

func TestWebSearchSerpAPIKeepsJobLikeResults(t *testing.T) {
	src, cleanup := serpAPIWebSearch(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("missing api key in %s", r.URL)
		}
		w.Write([]byte(serpAPIPayload))
	}, nil)
	defer cleanup()

	profile := &opportunity.Profile{Department: "CSE", Skills: []string{"python"}}

	got, meta := src.FetchWithMeta(context.Background(), profile)
	if !meta.Used || meta.Error != "" {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if got.Len() != 1 {
		t.Fatalf("expected only the job-like result, got %d", got.Len())
	}

	op := got.Items[0]
	if !strings.HasPrefix(op.ID, "web-") {
		t.Fatalf("unexpected id %q", op.ID)
	}
	if op.Kind != opportunity.KindInternship {
		t.Fatalf("expected internship, got %q", op.Kind)
	}
	if op.Company != "Acme" {
		t.Fatalf("expected company inferred from host, got %q", op.Company)
	}
	if op.Location != "India / Remote" {
		t.Fatalf("unexpected location %q", op.Location)
	}
	if op.MatchMethod != "web-base" {
		t.Fatalf("unexpected match method %q", op.MatchMethod)
	}
	if op.PublishedAt == nil {
		t.Fatal("expected a discovery timestamp")
	}
}

func TestWebSearchErrorLandsInMeta(t *testing.T) {
	src, cleanup := serpAPIWebSearch(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}, nil)
	defer cleanup()

	got, meta := src.FetchWithMeta(context.Background(), &opportunity.Profile{})
	if got.Len() != 0 {
		t.Fatalf("expected no items, got %d", got.Len())
	}
	if !meta.Used {
		t.Fatal("expected Used=true on a failed run")
	}
	if !strings.Contains(meta.Error, "SerpAPI request failed (status=403)") {
		t.Fatalf("unexpected meta error %q", meta.Error)
	}
}

func TestWebSearchAllowedDomains(t *testing.T) {
	payload := `{
	  "organic_results": [
	    {"title": "Acme Internship", "link": "https://careers.acme.com/jobs/1", "snippet": "intern role"},
	    {"title": "Other Internship", "link": "https://other.example/jobs/2", "snippet": "intern role"}
	  ]
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	restore := serpAPIBaseURL
	serpAPIBaseURL = server.URL
	defer func() { serpAPIBaseURL = restore }()

	src := NewWebSearch(WebSearchConfig{
		Provider:       WebProviderSerpAPI,
		SerpAPIKey:     "test-key",
		AllowedDomains: []string{"acme.com"},
	}, nil, nil, zap.NewNop())

	got, _ := src.FetchWithMeta(context.Background(), &opportunity.Profile{})
	if got.Len() != 1 {
		t.Fatalf("expected only the allowlisted domain, got %d", got.Len())
	}
	if got.Items[0].SourceURL != "https://careers.acme.com/jobs/1" {
		t.Fatalf("unexpected survivor %q", got.Items[0].SourceURL)
	}
}

func TestWebSearchLinkFilterIntersection(t *testing.T) {
	payload := `{
	  "organic_results": [
	    {"title": "Acme Internship", "link": "https://acme.com/jobs/1", "snippet": "intern role"},
	    {"title": "Beta Internship", "link": "https://beta.example/jobs/2", "snippet": "intern role"}
	  ]
	}`

	src, cleanup := serpAPIWebSearch(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(payload))
	}, &fakeLinkFilter{keep: []string{"https://acme.com/jobs/1"}})
	defer cleanup()

	got, _ := src.FetchWithMeta(context.Background(), &opportunity.Profile{})
	if got.Len() != 1 {
		t.Fatalf("expected the filter to keep one link, got %d", got.Len())
	}
	if got.Items[0].SourceURL != "https://acme.com/jobs/1" {
		t.Fatalf("unexpected survivor %q", got.Items[0].SourceURL)
	}
}

func TestWebSearchLinkFilterFailureKeepsHeuristics(t *testing.T) {
	payload := `{
	  "organic_results": [
	    {"title": "Acme Internship", "link": "https://acme.com/jobs/1", "snippet": "intern role"},
	    {"title": "Beta Internship", "link": "https://beta.example/jobs/2", "snippet": "intern role"}
	  ]
	}`

	src, cleanup := serpAPIWebSearch(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(payload))
	}, &fakeLinkFilter{err: context.DeadlineExceeded})
	defer cleanup()

	got, meta := src.FetchWithMeta(context.Background(), &opportunity.Profile{})
	if meta.Error != "" {
		t.Fatalf("filter failures must not surface in meta, got %q", meta.Error)
	}
	if got.Len() != 2 {
		t.Fatalf("expected the heuristic list to survive, got %d", got.Len())
	}
}
