package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/opportunity"
)

var leverBaseURL = "https://api.lever.co/v0/postings"

// Lever reads the public postings API of each configured company shortname.
type Lever struct {
	companies []string
	client    *http.Client
	logger    *zap.Logger
}

func NewLever(companies []string, timeout time.Duration, logger *zap.Logger) *Lever {
	return &Lever{
		companies: cleanStrings(companies),
		client:    newHTTPClient(timeout),
		logger:    logger,
	}
}

func (s *Lever) Name() string { return "lever" }

type leverPosting struct {
	Text             string `json:"text"`
	Title            string `json:"title"`
	HostedURL        string `json:"hostedUrl"`
	ApplyURL         string `json:"applyUrl"`
	DescriptionPlain string `json:"descriptionPlain"`
	Description      string `json:"description"`
	CreatedAt        int64  `json:"createdAt"`
	Categories       struct {
		Location string `json:"location"`
		Team     string `json:"team"`
	} `json:"categories"`
}

func (s *Lever) Fetch(ctx context.Context, _ *opportunity.Profile) (*opportunity.List, error) {
	list := opportunity.NewList()
	for _, company := range s.companies {
		var postings []leverPosting
		companyURL := fmt.Sprintf("%s/%s", leverBaseURL, url.PathEscape(company))
		if err := getJSON(ctx, s.client, companyURL, url.Values{"mode": {"json"}}, &postings); err != nil {
			s.logger.Warn("lever company fetch failed", zap.String("company", company), zap.Error(err))
			continue
		}
		for _, posting := range postings {
			if op := leverToOpportunity(company, posting); op != nil {
				list.Items = append(list.Items, op)
			}
		}
	}
	return list, nil
}

func leverToOpportunity(company string, posting leverPosting) *opportunity.Opportunity {
	title := strings.TrimSpace(posting.Text)
	if title == "" {
		title = strings.TrimSpace(posting.Title)
	}
	link := strings.TrimSpace(posting.HostedURL)
	if link == "" {
		link = strings.TrimSpace(posting.ApplyURL)
	}
	if title == "" || link == "" {
		return nil
	}

	team := strings.TrimSpace(posting.Categories.Team)
	desc := posting.DescriptionPlain
	if desc == "" {
		desc = posting.Description
	}

	var published *time.Time
	if posting.CreatedAt > 0 {
		// Lever timestamps are milliseconds since epoch.
		t := time.UnixMilli(posting.CreatedAt).UTC()
		published = &t
	}

	var tags []string
	if team != "" {
		tags = append(tags, team)
	}

	return &opportunity.Opportunity{
		ID:          opportunity.HashID("lever-"+company, link),
		Title:       title,
		Company:     company,
		Kind:        opportunity.ClassifyKind(title + " " + team),
		Location:    strings.TrimSpace(posting.Categories.Location),
		Source:      fmt.Sprintf("Company Careers (Lever:%s)", company),
		SourceURL:   link,
		PublishedAt: published,
		Excerpt:     opportunity.SafeExcerpt(desc, opportunity.ExcerptLimit),
		Tags:        tags,
	}
}
