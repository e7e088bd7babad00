package sources

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/opportunity"
)

var remotiveBaseURL = "https://remotive.com/api/remote-jobs"

// Remotive queries the keyless Remotive remote-jobs API with a deterministic
// profile-derived search string.
type Remotive struct {
	client *http.Client
	logger *zap.Logger
}

func NewRemotive(timeout time.Duration, logger *zap.Logger) *Remotive {
	return &Remotive{
		client: newHTTPClient(timeout),
		logger: logger,
	}
}

func (s *Remotive) Name() string { return "remotive" }

type remotiveJob struct {
	Title           string `json:"title"`
	CompanyName     string `json:"company_name"`
	URL             string `json:"url"`
	Category        string `json:"category"`
	JobType         string `json:"job_type"`
	PublicationDate string `json:"publication_date"`
	Description     string `json:"description"`
	Location        string `json:"candidate_required_location"`
}

func (s *Remotive) Fetch(ctx context.Context, profile *opportunity.Profile) (*opportunity.List, error) {
	params := url.Values{}
	if query := remotiveQuery(profile); query != "" {
		params.Set("search", query)
	}

	var payload struct {
		Jobs []remotiveJob `json:"jobs"`
	}
	if err := getJSON(ctx, s.client, remotiveBaseURL, params, &payload); err != nil {
		return nil, err
	}

	list := opportunity.NewList()
	for _, job := range payload.Jobs {
		if op := remotiveToOpportunity(job); op != nil {
			list.Items = append(list.Items, op)
		}
	}
	return list, nil
}

func remotiveQuery(profile *opportunity.Profile) string {
	parts := []string{strings.TrimSpace(profile.Department)}
	parts = append(parts, headStrings(profile.Skills, 5)...)
	parts = append(parts, headStrings(profile.Interests, 5)...)

	base := opportunity.NormalizeText(strings.Join(parts, " "))
	hints := "intern junior entry graduate"
	if base == "" {
		return hints
	}
	return base + " " + hints
}

func remotiveToOpportunity(job remotiveJob) *opportunity.Opportunity {
	title := strings.TrimSpace(job.Title)
	link := strings.TrimSpace(job.URL)
	if title == "" || link == "" {
		return nil
	}

	company := strings.TrimSpace(job.CompanyName)
	if company == "" {
		company = "Unknown"
	}

	location := strings.TrimSpace(job.Location)
	if location == "" {
		location = "Remote"
	}

	category := strings.TrimSpace(job.Category)
	if category == "" {
		category = "Other"
	}

	var tags []string
	if jobType := strings.TrimSpace(job.JobType); jobType != "" {
		tags = append(tags, jobType)
	}
	tags = append(tags, category)

	return &opportunity.Opportunity{
		ID:          opportunity.HashID("remotive", link),
		Title:       title,
		Company:     company,
		Kind:        opportunity.ClassifyKind(title + " " + category),
		Location:    location,
		Source:      "Remotive",
		SourceURL:   link,
		PublishedAt: parseTimestamp(job.PublicationDate),
		Excerpt:     opportunity.SafeExcerpt(job.Description, opportunity.ExcerptLimit),
		Tags:        tags,
	}
}

func headStrings(values []string, n int) []string {
	out := make([]string, 0, n)
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
			if len(out) == n {
				break
			}
		}
	}
	return out
}
