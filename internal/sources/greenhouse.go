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

var greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// Greenhouse reads the public job board API of each configured board token.
// A failed board is skipped so one misconfigured token cannot blank the run.
type Greenhouse struct {
	boards []string
	client *http.Client
	logger *zap.Logger
}

func NewGreenhouse(boards []string, timeout time.Duration, logger *zap.Logger) *Greenhouse {
	return &Greenhouse{
		boards: cleanStrings(boards),
		client: newHTTPClient(timeout),
		logger: logger,
	}
}

func (s *Greenhouse) Name() string { return "greenhouse" }

type greenhouseJob struct {
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	Content     string `json:"content"`
	UpdatedAt   string `json:"updated_at"`
	CreatedAt   string `json:"created_at"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	Departments []struct {
		Name string `json:"name"`
	} `json:"departments"`
}

func (s *Greenhouse) Fetch(ctx context.Context, _ *opportunity.Profile) (*opportunity.List, error) {
	list := opportunity.NewList()
	for _, board := range s.boards {
		var payload struct {
			Jobs []greenhouseJob `json:"jobs"`
		}
		boardURL := fmt.Sprintf("%s/%s/jobs", greenhouseBaseURL, url.PathEscape(board))
		if err := getJSON(ctx, s.client, boardURL, url.Values{"content": {"true"}}, &payload); err != nil {
			s.logger.Warn("greenhouse board fetch failed", zap.String("board", board), zap.Error(err))
			continue
		}
		for _, job := range payload.Jobs {
			if op := greenhouseToOpportunity(board, job); op != nil {
				list.Items = append(list.Items, op)
			}
		}
	}
	return list, nil
}

func greenhouseToOpportunity(board string, job greenhouseJob) *opportunity.Opportunity {
	title := strings.TrimSpace(job.Title)
	link := strings.TrimSpace(job.AbsoluteURL)
	if title == "" || link == "" {
		return nil
	}

	var departments []string
	for _, d := range job.Departments {
		if name := strings.TrimSpace(d.Name); name != "" {
			departments = append(departments, name)
		}
	}

	published := job.UpdatedAt
	if published == "" {
		published = job.CreatedAt
	}

	return &opportunity.Opportunity{
		ID:          opportunity.HashID("gh-"+board, link),
		Title:       title,
		Company:     board,
		Kind:        opportunity.ClassifyKind(title + " " + strings.Join(departments, " ")),
		Location:    strings.TrimSpace(job.Location.Name),
		Source:      fmt.Sprintf("Company Careers (Greenhouse:%s)", board),
		SourceURL:   link,
		PublishedAt: parseTimestamp(published),
		Excerpt:     opportunity.SafeExcerpt(job.Content, opportunity.ExcerptLimit),
		Tags:        departments,
	}
}

func cleanStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
