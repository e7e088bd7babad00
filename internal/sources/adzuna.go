package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/ai"
	"github.com/kec-hub/opportunities/internal/opportunity"
)

// adzunaBaseURL is the Adzuna India search endpoint; the page number is
// appended as a path segment. A var so tests can point it at httptest.
var adzunaBaseURL = "https://api.adzuna.com/v1/api/jobs/in/search"

const (
	adzunaSourceName = "adzuna-in"

	// Paging and query budgets. With at most 10 queries and 2 pages each
	// the worst case is 20 API calls per run.
	adzunaMaxQueries = 10
	adzunaMaxPages   = 2
)

// AdzunaConfig configures the Adzuna India source.
type AdzunaConfig struct {
	AppID          string
	AppKey         string
	ResultsPerPage int
	Timeout        time.Duration
}

// Adzuna queries the Adzuna Jobs API (country=IN). Requires app_id+app_key;
// without them the source contributes nothing and makes no network calls.
// When an expander is wired, AI-suggested queries run between the primary
// query and the generic fallbacks, with result slots reserved for them.
type Adzuna struct {
	appID          string
	appKey         string
	resultsPerPage int
	expander       ai.Expander
	client         *http.Client
	logger         *zap.Logger
	baseURL        string
}

func NewAdzuna(cfg AdzunaConfig, expander ai.Expander, logger *zap.Logger) *Adzuna {
	perPage := cfg.ResultsPerPage
	if perPage < 1 {
		perPage = 25
	}
	if perPage > 50 {
		perPage = 50
	}

	return &Adzuna{
		appID:          strings.TrimSpace(cfg.AppID),
		appKey:         strings.TrimSpace(cfg.AppKey),
		resultsPerPage: perPage,
		expander:       expander,
		client:         newHTTPClient(cfg.Timeout),
		logger:         logger,
		baseURL:        adzunaBaseURL,
	}
}

func (s *Adzuna) Name() string { return adzunaSourceName }

type adzunaQuery struct {
	text   string
	method string
}

func (s *Adzuna) Fetch(ctx context.Context, profile *opportunity.Profile) (*opportunity.List, error) {
	if s.appID == "" || s.appKey == "" {
		return opportunity.NewList(), nil
	}

	queries := s.buildQueryPlan(ctx, profile)

	maxTotal := s.resultsPerPage
	perQueryCap := maxInt(3, maxTotal/maxInt(1, minInt(len(queries), 4)))

	aiAvailable := false
	firstAIIndex := -1
	for i, q := range queries {
		if q.method == opportunity.MatchAI {
			aiAvailable = true
			if firstAIIndex < 0 {
				firstAIIndex = i
			}
		}
	}

	// Reserve slots for AI queries so the primary query cannot consume
	// the whole budget before they run.
	reserveForAI := 0
	if aiAvailable {
		reserveForAI = maxInt(3, maxTotal/3)
	}
	baseBeforeAICap := maxTotal - reserveForAI
	baseBeforeAICount := 0
	aiUsed := false

	collected := opportunity.NewList()
	seen := make(map[string]struct{})

	for qi, q := range queries {
		addedForQuery := 0

	paging:
		for page := 1; page <= adzunaMaxPages; page++ {
			jobs, err := s.searchPage(ctx, q.text, page)
			if err != nil {
				s.logger.Warn("adzuna page request failed",
					zap.String("query", q.text),
					zap.Int("page", page),
					zap.Error(err),
				)
				break
			}

			s.logger.Info("adzuna page fetched",
				zap.String("query", q.text),
				zap.Int("page", page),
				zap.Int("items", len(jobs)),
			)

			// An empty page means this query is exhausted.
			if len(jobs) == 0 {
				break
			}

			for _, job := range jobs {
				op := adzunaToOpportunity(job, q.method)
				if op == nil {
					continue
				}
				key := opportunity.CanonicalURL(op.SourceURL)
				if key == "" {
					continue
				}
				if _, ok := seen[key]; ok {
					continue
				}

				// Plain queries running before the first AI query
				// must leave the reserved slots untouched.
				if q.method == opportunity.MatchBase && firstAIIndex >= 0 && qi < firstAIIndex &&
					baseBeforeAICount >= baseBeforeAICap {
					break paging
				}

				seen[key] = struct{}{}
				collected.Items = append(collected.Items, op)
				addedForQuery++

				if q.method == opportunity.MatchBase && firstAIIndex >= 0 && qi < firstAIIndex {
					baseBeforeAICount++
				}
				if q.method == opportunity.MatchAI {
					aiUsed = true
				}

				if collected.Len() >= maxTotal {
					break
				}
				if addedForQuery >= perQueryCap {
					break
				}
			}

			if collected.Len() >= maxTotal {
				break
			}
			if addedForQuery >= perQueryCap {
				break
			}
		}

		// Stop issuing queries only once the budget is full and the AI
		// queries had their chance (when any exist).
		if collected.Len() >= maxTotal && (!aiAvailable || aiUsed) {
			break
		}
	}

	collected.Truncate(maxTotal)
	return collected, nil
}

// buildQueryPlan assembles the prioritized query list: primary profile query,
// AI-expanded queries, generic fallbacks. Deduplicated case-insensitively and
// capped. First occurrence wins, so a plain query beats an identical AI one.
func (s *Adzuna) buildQueryPlan(ctx context.Context, profile *opportunity.Profile) []adzunaQuery {
	base := buildAdzunaQueries(profile)

	var expanded []string
	if s.expander == nil {
		s.logger.Info("adzuna query expander disabled")
	} else {
		qs, err := s.expander.Expand(ctx, profile)
		if err != nil {
			s.logger.Warn("adzuna query expansion failed", zap.Error(err))
		} else {
			expanded = qs
		}
		s.logger.Info("adzuna query expander produced queries", zap.Int("count", len(expanded)))
	}

	plan := make([]adzunaQuery, 0, len(base)+len(expanded))
	if len(base) > 0 {
		plan = append(plan, adzunaQuery{text: base[0], method: opportunity.MatchBase})
	}
	for _, q := range expanded {
		plan = append(plan, adzunaQuery{text: q, method: opportunity.MatchAI})
	}
	if len(base) > 1 {
		for _, q := range base[1:] {
			plan = append(plan, adzunaQuery{text: q, method: opportunity.MatchBase})
		}
	}

	seen := make(map[string]struct{}, len(plan))
	out := make([]adzunaQuery, 0, len(plan))
	for _, q := range plan {
		key := strings.ToLower(strings.TrimSpace(q.text))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
		if len(out) >= adzunaMaxQueries {
			break
		}
	}
	return out
}

// buildAdzunaQueries keeps queries short: Adzuna search quality degrades
// quickly with long query strings.
func buildAdzunaQueries(profile *opportunity.Profile) []string {
	dept := strings.TrimSpace(profile.Department)

	// A generic department label adds only noise to the query.
	deptHint := ""
	switch strings.ToLower(dept) {
	case "", "computer science", "cse", "cs", "computer":
	default:
		deptHint = dept
	}

	skills := make([]string, 0, 2)
	for _, skill := range profile.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			skills = append(skills, skill)
			if len(skills) == 2 {
				break
			}
		}
	}

	primary := opportunity.NormalizeText(strings.Join([]string{"software", "intern", strings.Join(skills, " "), deptHint}, " "))

	queries := []string{primary, "software intern", "internship", "graduate trainee"}
	out := queries[:0]
	for _, q := range queries {
		if q != "" {
			out = append(out, q)
		}
	}
	return out
}

type adzunaPage struct {
	Results []map[string]any `json:"results"`
}

type adzunaJob struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Created     string `json:"created"`
	RedirectURL string `json:"redirect_url"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	Category struct {
		Label string `json:"label"`
	} `json:"category"`
}

func (s *Adzuna) searchPage(ctx context.Context, query string, page int) ([]adzunaJob, error) {
	q := url.Values{}
	q.Set("app_id", s.appID)
	q.Set("app_key", s.appKey)
	q.Set("results_per_page", strconv.Itoa(s.resultsPerPage))
	// Newest first, so repeated scans surface fresh postings.
	q.Set("sort_by", "date")
	q.Set("what", query)

	var payload adzunaPage
	pageURL := fmt.Sprintf("%s/%d", s.baseURL, page)
	if err := getJSON(ctx, s.client, pageURL, q, &payload); err != nil {
		return nil, err
	}

	// The API mixes numeric and string field types between result shapes,
	// so decode loosely before mapping.
	jobs := make([]adzunaJob, 0, len(payload.Results))
	for _, item := range payload.Results {
		var job adzunaJob
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &job,
			TagName:          "json",
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(item); err != nil {
			s.logger.Debug("adzuna item decode failed", zap.Error(err))
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func adzunaToOpportunity(job adzunaJob, matchMethod string) *opportunity.Opportunity {
	title := strings.TrimSpace(job.Title)
	redirect := strings.TrimSpace(job.RedirectURL)
	if title == "" || redirect == "" {
		return nil
	}

	category := strings.TrimSpace(job.Category.Label)

	var tags []string
	if category != "" {
		tags = append(tags, category)
	}

	idBase := strings.TrimSpace(job.ID)
	if idBase == "" {
		idBase = redirect
	}

	location := strings.TrimSpace(job.Location.DisplayName)
	if location == "" {
		location = "India"
	}

	return &opportunity.Opportunity{
		ID:          opportunity.HashID("adzuna", idBase),
		Title:       title,
		Company:     strings.TrimSpace(job.Company.DisplayName),
		Kind:        opportunity.ClassifyKind(title + " " + category),
		Location:    location,
		Source:      "Adzuna (India)",
		SourceURL:   redirect,
		MatchMethod: matchMethod,
		PublishedAt: parseTimestamp(job.Created),
		Excerpt:     opportunity.SafeExcerpt(job.Description, opportunity.ExcerptLimit),
		Tags:        tags,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
