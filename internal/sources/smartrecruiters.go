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

var smartRecruitersBaseURL = "https://api.smartrecruiters.com/v1/companies"

// SmartRecruiters reads the public postings API of each configured company
// identifier.
type SmartRecruiters struct {
	companies []string
	client    *http.Client
	logger    *zap.Logger
}

func NewSmartRecruiters(companies []string, timeout time.Duration, logger *zap.Logger) *SmartRecruiters {
	return &SmartRecruiters{
		companies: cleanStrings(companies),
		client:    newHTTPClient(timeout),
		logger:    logger,
	}
}

func (s *SmartRecruiters) Name() string { return "smartrecruiters" }

type smartRecruitersPosting struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Ref          string `json:"ref"`
	ReleasedDate string `json:"releasedDate"`
	CreatedOn    string `json:"createdOn"`
	JobAd        string `json:"jobAd"`
	Location     struct {
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"location"`
	Department struct {
		Label string `json:"label"`
	} `json:"department"`
}

func (s *SmartRecruiters) Fetch(ctx context.Context, _ *opportunity.Profile) (*opportunity.List, error) {
	list := opportunity.NewList()
	for _, company := range s.companies {
		var payload struct {
			Content []smartRecruitersPosting `json:"content"`
		}
		companyURL := fmt.Sprintf("%s/%s/postings", smartRecruitersBaseURL, url.PathEscape(company))
		if err := getJSON(ctx, s.client, companyURL, nil, &payload); err != nil {
			s.logger.Warn("smartrecruiters company fetch failed", zap.String("company", company), zap.Error(err))
			continue
		}
		for _, posting := range payload.Content {
			if op := smartRecruitersToOpportunity(company, posting); op != nil {
				list.Items = append(list.Items, op)
			}
		}
	}
	return list, nil
}

func smartRecruitersToOpportunity(company string, posting smartRecruitersPosting) *opportunity.Opportunity {
	title := strings.TrimSpace(posting.Name)
	if title == "" {
		return nil
	}

	link := strings.TrimSpace(posting.Ref)
	if strings.HasPrefix(link, "/") {
		link = "https://jobs.smartrecruiters.com" + link
	}
	if link == "" {
		if id := strings.TrimSpace(posting.ID); id != "" {
			link = fmt.Sprintf("https://jobs.smartrecruiters.com/%s/%s", company, id)
		}
	}
	if link == "" {
		return nil
	}

	location := strings.TrimSpace(posting.Location.City)
	if location == "" {
		location = strings.TrimSpace(posting.Location.Country)
	}

	department := strings.TrimSpace(posting.Department.Label)

	published := posting.ReleasedDate
	if published == "" {
		published = posting.CreatedOn
	}

	var tags []string
	if department != "" {
		tags = append(tags, department)
	}

	return &opportunity.Opportunity{
		ID:          opportunity.HashID("sr-"+company, link),
		Title:       title,
		Company:     company,
		Kind:        opportunity.ClassifyKind(title + " " + department),
		Location:    location,
		Source:      fmt.Sprintf("Company Careers (SmartRecruiters:%s)", company),
		SourceURL:   link,
		PublishedAt: parseTimestamp(published),
		Excerpt:     opportunity.SafeExcerpt(posting.JobAd, opportunity.ExcerptLimit),
		Tags:        tags,
	}
}
