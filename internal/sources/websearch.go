package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/ai"
	"github.com/kec-hub/opportunities/internal/opportunity"
)

var (
	serpAPIBaseURL   = "https://serpapi.com/search.json"
	googleCSEBaseURL = "https://www.googleapis.com/customsearch/v1"
)

// Web search providers.
const (
	WebProviderNone      = "none"
	WebProviderSerpAPI   = "serpapi"
	WebProviderGoogleCSE = "google_cse"
)

// WebSearchConfig configures the optional web-search source.
type WebSearchConfig struct {
	Provider        string
	SerpAPIKey      string
	GoogleCSEKey    string
	GoogleCSECX     string
	ResultsPerQuery int
	MaxQueries      int
	AllowedDomains  []string
	MaxResults      int
	Timeout         time.Duration
}

// WebMeta reports whether the web-search source ran and how it failed, so the
// diagnostics surface can explain an empty result instead of hiding it.
type WebMeta struct {
	Enabled  bool   `json:"enabled"`
	Provider string `json:"provider"`
	Used     bool   `json:"used"`
	Error    string `json:"error,omitempty"`
}

// WebSearch discovers direct job links through a search provider (SerpAPI or
// Google Custom Search). It never scrapes the result pages; the discovered
// link, title and snippet are the whole listing. Runs only when a provider
// and its credentials are configured.
type WebSearch struct {
	cfg        WebSearchConfig
	expander   ai.Expander
	linkFilter ai.LinkFilter
	client     *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

func NewWebSearch(cfg WebSearchConfig, expander ai.Expander, linkFilter ai.LinkFilter, logger *zap.Logger) *WebSearch {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = WebProviderNone
	}
	if cfg.ResultsPerQuery < 1 {
		cfg.ResultsPerQuery = 8
	}
	if cfg.MaxQueries < 1 {
		cfg.MaxQueries = 3
	}
	if cfg.MaxQueries > 8 {
		cfg.MaxQueries = 8
	}
	if cfg.MaxResults < 1 {
		cfg.MaxResults = 25
	}
	cfg.AllowedDomains = lowerStrings(cleanStrings(cfg.AllowedDomains))

	return &WebSearch{
		cfg:        cfg,
		expander:   expander,
		linkFilter: linkFilter,
		client:     newHTTPClient(cfg.Timeout),
		logger:     logger,
		now:        time.Now,
	}
}

func (s *WebSearch) Name() string { return "web-search" }

// Enabled reports whether the configured provider has usable credentials.
func (s *WebSearch) Enabled() bool {
	switch s.cfg.Provider {
	case WebProviderSerpAPI:
		return strings.TrimSpace(s.cfg.SerpAPIKey) != ""
	case WebProviderGoogleCSE:
		return strings.TrimSpace(s.cfg.GoogleCSEKey) != "" && strings.TrimSpace(s.cfg.GoogleCSECX) != ""
	default:
		return false
	}
}

func (s *WebSearch) Fetch(ctx context.Context, profile *opportunity.Profile) (*opportunity.List, error) {
	list, _ := s.FetchWithMeta(ctx, profile)
	return list, nil
}

// FetchWithMeta runs the search and reports diagnostics alongside the
// results. Provider failures land in the meta, never in a returned error.
func (s *WebSearch) FetchWithMeta(ctx context.Context, profile *opportunity.Profile) (*opportunity.List, WebMeta) {
	meta := WebMeta{
		Enabled:  s.Enabled(),
		Provider: s.cfg.Provider,
	}
	if !meta.Enabled {
		return opportunity.NewList(), meta
	}

	meta.Used = true
	list, err := s.run(ctx, profile)
	if err != nil {
		meta.Error = s.describeFailure(err)
		s.logger.Warn("web search failed", zap.String("provider", s.cfg.Provider), zap.Error(err))
		return opportunity.NewList(), meta
	}
	return list, meta
}

type webResult struct {
	title       string
	link        string
	snippet     string
	displayHost string
	matchMethod string
}

func (s *WebSearch) run(ctx context.Context, profile *opportunity.Profile) (*opportunity.List, error) {
	queries := s.buildQueries(ctx, profile)

	var (
		results        []webResult
		firstHTTPError error
	)
	for _, q := range queries {
		found, err := s.search(ctx, q.text)
		if err != nil {
			// Status errors usually mean bad credentials or quota, which
			// the rest of the queries would only repeat.
			if _, ok := err.(*statusError); ok {
				firstHTTPError = err
				break
			}
			s.logger.Info("web search query failed", zap.String("query", q.text), zap.Error(err))
			continue
		}
		for i := range found {
			found[i].matchMethod = "web-" + q.method
		}
		results = append(results, found...)
	}

	if firstHTTPError != nil && len(results) == 0 {
		return nil, firstHTTPError
	}

	kept := make([]webResult, 0, len(results))
	list := opportunity.NewList()
	seen := make(map[string]struct{})
	keptCap := maxInt(5, s.cfg.MaxResults)

	for _, r := range results {
		link := strings.TrimSpace(r.link)
		key := strings.ToLower(link)
		if link == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		if !s.domainAllowed(link) {
			continue
		}
		if !looksLikeJobListing(r.title, r.snippet, link) {
			continue
		}
		seen[key] = struct{}{}

		now := s.now().UTC()
		list.Items = append(list.Items, &opportunity.Opportunity{
			ID:          opportunity.HashID("web", link),
			Title:       cleanWebText(r.title),
			Company:     cleanWebText(inferCompany(r.title, r.displayHost)),
			Kind:        inferWebKind(r.title),
			Location:    "India / Remote",
			Source:      "Web Search",
			SourceURL:   link,
			MatchMethod: r.matchMethod,
			PublishedAt: &now,
			Excerpt:     cleanWebText(r.snippet),
		})
		kept = append(kept, r)

		// Web search stays additive: it must not swamp the board sources.
		if list.Len() >= keptCap {
			break
		}
	}

	s.applyLinkFilter(ctx, profile, list, kept)
	return list, nil
}

// applyLinkFilter asks the AI link filter to pick the best apply links among
// the heuristically kept ones. Any failure leaves the heuristic list as is.
func (s *WebSearch) applyLinkFilter(ctx context.Context, profile *opportunity.Profile, list *opportunity.List, kept []webResult) {
	if s.linkFilter == nil || list.Len() == 0 {
		return
	}

	candidates := make([]ai.LinkCandidate, 0, len(kept))
	for _, r := range kept {
		candidates = append(candidates, ai.LinkCandidate{
			Title:   r.title,
			URL:     r.link,
			Snippet: r.snippet,
			Host:    r.displayHost,
		})
	}

	keepURLs, err := s.linkFilter.Keep(ctx, profile, candidates)
	if err != nil {
		s.logger.Info("web link filter failed", zap.Error(err))
		return
	}
	if len(keepURLs) == 0 {
		return
	}

	keep := make(map[string]struct{}, len(keepURLs))
	for _, u := range keepURLs {
		keep[strings.TrimSpace(u)] = struct{}{}
	}

	filtered := list.Items[:0]
	for _, op := range list.Items {
		if _, ok := keep[op.SourceURL]; ok {
			filtered = append(filtered, op)
		}
	}
	list.Items = filtered
}

type webQuery struct {
	text   string
	method string
}

func (s *WebSearch) buildQueries(ctx context.Context, profile *opportunity.Profile) []webQuery {
	seedTerms := append(headStrings(profile.Skills, 6), headStrings(profile.Interests, 6)...)
	if len(seedTerms) > 6 {
		seedTerms = seedTerms[:6]
	}
	if len(seedTerms) == 0 {
		dept := strings.TrimSpace(profile.Department)
		if dept == "" {
			dept = "engineering"
		}
		seedTerms = []string{dept}
	}

	queries := make([]webQuery, 0, 8)
	for _, term := range headStrings(seedTerms, 3) {
		queries = append(queries, webQuery{text: term + " internship India apply", method: opportunity.MatchBase})
	}
	queries = append(queries, webQuery{text: "fresher software engineer India apply", method: opportunity.MatchBase})

	if s.expander != nil {
		expanded, err := s.expander.Expand(ctx, profile)
		if err != nil {
			s.logger.Info("web query expansion failed", zap.Error(err))
		}
		for _, q := range expanded {
			if q = strings.TrimSpace(q); q != "" {
				// Bias the search toward actual apply links.
				queries = append(queries, webQuery{text: q + " apply", method: opportunity.MatchAI})
			}
		}
	}

	seen := make(map[string]struct{}, len(queries))
	out := make([]webQuery, 0, len(queries))
	for _, q := range queries {
		key := strings.ToLower(strings.TrimSpace(q.text))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, webQuery{text: strings.TrimSpace(q.text), method: q.method})
		if len(out) >= s.cfg.MaxQueries {
			break
		}
	}
	return out
}

func (s *WebSearch) search(ctx context.Context, query string) ([]webResult, error) {
	switch s.cfg.Provider {
	case WebProviderSerpAPI:
		return s.searchSerpAPI(ctx, query)
	case WebProviderGoogleCSE:
		return s.searchGoogleCSE(ctx, query)
	default:
		return nil, nil
	}
}

func (s *WebSearch) searchSerpAPI(ctx context.Context, query string) ([]webResult, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("api_key", strings.TrimSpace(s.cfg.SerpAPIKey))
	params.Set("num", strconv.Itoa(s.cfg.ResultsPerQuery))
	params.Set("hl", "en")
	params.Set("gl", "in")

	var payload struct {
		OrganicResults []struct {
			Title         string `json:"title"`
			Link          string `json:"link"`
			Snippet       string `json:"snippet"`
			DisplayedLink string `json:"displayed_link"`
		} `json:"organic_results"`
	}
	if err := getJSON(ctx, s.client, serpAPIBaseURL, params, &payload); err != nil {
		return nil, err
	}

	items := payload.OrganicResults
	if len(items) > 20 {
		items = items[:20]
	}

	out := make([]webResult, 0, len(items))
	for _, it := range items {
		link := strings.TrimSpace(it.Link)
		title := cleanWebText(it.Title)
		if link == "" || title == "" {
			continue
		}
		host := hostOf(link)
		if host == "" {
			// displayed_link is often just the bare domain.
			host = hostOf("https://" + cleanWebText(it.DisplayedLink))
		}
		out = append(out, webResult{
			title:       title,
			link:        link,
			snippet:     cleanWebText(it.Snippet),
			displayHost: host,
		})
	}
	return out, nil
}

func (s *WebSearch) searchGoogleCSE(ctx context.Context, query string) ([]webResult, error) {
	params := url.Values{}
	params.Set("key", strings.TrimSpace(s.cfg.GoogleCSEKey))
	params.Set("cx", strings.TrimSpace(s.cfg.GoogleCSECX))
	params.Set("q", query)
	params.Set("num", strconv.Itoa(minInt(10, s.cfg.ResultsPerQuery)))

	var payload struct {
		Items []struct {
			Title       string `json:"title"`
			Link        string `json:"link"`
			Snippet     string `json:"snippet"`
			DisplayLink string `json:"displayLink"`
		} `json:"items"`
	}
	if err := getJSON(ctx, s.client, googleCSEBaseURL, params, &payload); err != nil {
		return nil, err
	}

	items := payload.Items
	if len(items) > 20 {
		items = items[:20]
	}

	out := make([]webResult, 0, len(items))
	for _, it := range items {
		link := strings.TrimSpace(it.Link)
		title := cleanWebText(it.Title)
		if link == "" || title == "" {
			continue
		}
		host := hostOf(link)
		if host == "" {
			host = strings.ToLower(cleanWebText(it.DisplayLink))
		}
		out = append(out, webResult{
			title:       title,
			link:        link,
			snippet:     cleanWebText(it.Snippet),
			displayHost: host,
		})
	}
	return out, nil
}

func (s *WebSearch) describeFailure(err error) string {
	status := 0
	if se, ok := err.(*statusError); ok {
		status = se.Status
	}

	switch s.cfg.Provider {
	case WebProviderGoogleCSE:
		return fmt.Sprintf("Google CSE request failed (status=%d). "+
			"Check: Custom Search API enabled in Google Cloud, API key restrictions, correct CX, and billing/quota.", status)
	case WebProviderSerpAPI:
		return fmt.Sprintf("SerpAPI request failed (status=%d). "+
			"Check: SERPAPI_API_KEY, plan/quota, and that the key is active.", status)
	default:
		return fmt.Sprintf("Web search request failed (status=%d).", status)
	}
}

func (s *WebSearch) domainAllowed(rawURL string) bool {
	if len(s.cfg.AllowedDomains) == 0 {
		return true
	}
	host := hostOf(rawURL)
	if host == "" {
		return false
	}
	base := baseDomain(host)
	for _, allowed := range s.cfg.AllowedDomains {
		if host == allowed || base == allowed {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// baseDomain collapses a hostname to its last two labels. No public suffix
// list, but good enough for allowlisting.
func baseDomain(hostname string) string {
	parts := strings.Split(hostname, ".")
	labels := parts[:0]
	for _, p := range parts {
		if p != "" {
			labels = append(labels, p)
		}
	}
	if len(labels) <= 2 {
		return hostname
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

func cleanWebText(s string) string {
	s = opportunity.NormalizeText(s)
	runes := []rune(s)
	if len(runes) > 500 {
		return string(runes[:500])
	}
	return s
}

// looksLikeJobListing keeps search hits that plausibly point at a posting and
// rejects the usual noise (salary pages, Q&A sites, alert digests).
func looksLikeJobListing(title, snippet, rawURL string) bool {
	text := strings.ToLower(title + " " + snippet)
	if containsAnyOf(text, "job alert", "salary", "glassdoor", "quora", "reddit") {
		return false
	}

	if containsAnyOf(text, "intern", "internship", "fresher", "graduate", "entry level", "campus", "trainee") {
		return true
	}
	if containsAnyOf(text, "software engineer", "developer", "data analyst", "data scientist", "ml engineer") {
		return true
	}

	low := strings.ToLower(rawURL)
	return containsAnyOf(low,
		"/jobs/", "/careers/", "/career/",
		"greenhouse.io", "lever.co", "smartrecruiters.com", "workdayjobs", "myworkdayjobs",
	)
}

func inferWebKind(title string) opportunity.Kind {
	low := strings.ToLower(title)
	switch {
	case strings.Contains(low, "intern"):
		return opportunity.KindInternship
	case containsAnyOf(low, "full time", "full-time", "fte"):
		return opportunity.KindFullTime
	default:
		return opportunity.KindOther
	}
}

// inferCompany guesses the company from the result host, falling back to the
// trailing segment of a "Role - Company" style title.
func inferCompany(title, displayHost string) string {
	if host := baseDomain(displayHost); host != "" {
		guess := strings.SplitN(host, ".", 2)[0]
		switch guess {
		case "", "www", "jobs", "careers":
		default:
			return titleCaseWords(strings.ReplaceAll(guess, "-", " "))
		}
	}

	for _, sep := range []string{" - ", " | ", " — ", " – "} {
		if strings.Contains(title, sep) {
			parts := strings.Split(title, sep)
			right := strings.TrimSpace(parts[len(parts)-1])
			if n := len(right); n >= 2 && n <= 60 {
				return right
			}
		}
	}
	return ""
}

func titleCaseWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func containsAnyOf(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func lowerStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(v))
	}
	return out
}
