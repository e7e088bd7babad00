package extractor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/filtering"
	"github.com/kec-hub/opportunities/internal/opportunity"
	"github.com/kec-hub/opportunities/internal/sources"
)

type fakeSource struct {
	name  string
	items []*opportunity.Opportunity
	err   error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(context.Context, *opportunity.Profile) (*opportunity.List, error) {
	if f.err != nil {
		return nil, f.err
	}
	return opportunity.NewList(f.items...), nil
}

type fakeMetaSource struct {
	fakeSource
	meta sources.WebMeta
}

func (f *fakeMetaSource) FetchWithMeta(ctx context.Context, profile *opportunity.Profile) (*opportunity.List, sources.WebMeta) {
	list, _ := f.Fetch(ctx, profile)
	return list, f.meta
}

var profile = &opportunity.Profile{
	Department: "Computer Science",
	Skills:     []string{"python"},
}

func anyConfig() Config {
	return Config{
		MaxResults: 25,
		Filters:    &filtering.Config{Country: "ANY", IncludeRemote: true, MaxAgeDays: 45},
	}
}

func freshItem(id, url string) *opportunity.Opportunity {
	published := time.Now().AddDate(0, 0, -1)
	return &opportunity.Opportunity{
		ID:          id,
		Title:       "Software Intern",
		Kind:        opportunity.KindInternship,
		SourceURL:   url,
		PublishedAt: &published,
	}
}

func TestExtractDedupeFirstSourceWins(t *testing.T) {
	first := freshItem("from-first", "https://example.com/job/1")
	first.Source = "first"
	second := freshItem("from-second", "https://EXAMPLE.com/job/1")
	second.Source = "second"

	ext := New(anyConfig(), []sources.Source{
		&fakeSource{name: "first", items: []*opportunity.Opportunity{first}},
		&fakeSource{name: "second", items: []*opportunity.Opportunity{second}},
	}, zap.NewNop())

	got, err := ext.Extract(context.Background(), profile)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("expected 1 item after dedupe, got %d", got.Len())
	}
	if got.Items[0].Source != "first" {
		t.Fatalf("expected registration order to win dedupe, got %q", got.Items[0].Source)
	}
}

func TestExtractFailingSourceSwallowed(t *testing.T) {
	ok := freshItem("ok", "https://example.com/job/ok")

	ext := New(anyConfig(), []sources.Source{
		&fakeSource{name: "broken", err: errors.New("provider down")},
		&fakeSource{name: "working", items: []*opportunity.Opportunity{ok}},
	}, zap.NewNop())

	got, err := ext.Extract(context.Background(), profile)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got.Len() != 1 || got.Items[0].ID != "ok" {
		t.Fatalf("expected the working source's item, got %v", got.Items)
	}
}

func TestExtractBudgetRespected(t *testing.T) {
	items := make([]*opportunity.Opportunity, 0, 30)
	for i := 0; i < 30; i++ {
		items = append(items, freshItem(fmt.Sprintf("op-%d", i), fmt.Sprintf("https://example.com/job/%d", i)))
	}

	cfg := anyConfig()
	cfg.MaxResults = 10

	ext := New(cfg, []sources.Source{&fakeSource{name: "bulk", items: items}}, zap.NewNop())

	got, err := ext.Extract(context.Background(), profile)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got.Len() > 10 {
		t.Fatalf("budget exceeded: %d items", got.Len())
	}
}

func TestExtractWebMetaPropagated(t *testing.T) {
	web := &fakeMetaSource{
		fakeSource: fakeSource{name: "web-search"},
		meta: sources.WebMeta{
			Enabled:  true,
			Provider: "serpapi",
			Used:     true,
			Error:    "SerpAPI request failed (status=403). Check: SERPAPI_API_KEY, plan/quota, and that the key is active.",
		},
	}

	ext := New(anyConfig(), []sources.Source{web}, zap.NewNop())

	_, meta, err := ext.ExtractWithMeta(context.Background(), profile)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !meta.Web.Used || meta.Web.Provider != "serpapi" {
		t.Fatalf("expected web meta to be propagated, got %+v", meta.Web)
	}
	if meta.Web.Error == "" {
		t.Fatal("expected the web error to be surfaced in meta")
	}
}

func TestExtractFiltersApplied(t *testing.T) {
	published := time.Now().AddDate(0, 0, -1)
	senior := &opportunity.Opportunity{
		ID:          "senior",
		Title:       "Senior Backend Engineer",
		SourceURL:   "https://example.com/job/senior",
		PublishedAt: &published,
	}
	intern := freshItem("intern", "https://example.com/job/intern")

	cfg := anyConfig()
	cfg.Filters.ExcludeSenior = true

	ext := New(cfg, []sources.Source{
		&fakeSource{name: "board", items: []*opportunity.Opportunity{senior, intern}},
	}, zap.NewNop())

	got, err := ext.Extract(context.Background(), profile)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got.Len() != 1 || got.Items[0].ID != "intern" {
		t.Fatalf("expected the senior listing to be filtered, got %v", got.Items)
	}
}
