package sources

import (
	"context"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/dates"
	"github.com/kec-hub/opportunities/internal/opportunity"
)

// RSS pulls curated job and event feeds. Entries that already announce their
// closure are dropped at the source so they never reach the filter chain.
type RSS struct {
	feedURLs []string
	parser   *gofeed.Parser
	logger   *zap.Logger
	now      func() time.Time
}

func NewRSS(feedURLs []string, timeout time.Duration, logger *zap.Logger) *RSS {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = newHTTPClient(timeout)

	return &RSS{
		feedURLs: cleanStrings(feedURLs),
		parser:   parser,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *RSS) Name() string { return "rss" }

func (s *RSS) Fetch(ctx context.Context, _ *opportunity.Profile) (*opportunity.List, error) {
	list := opportunity.NewList()
	for _, feedURL := range s.feedURLs {
		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			s.logger.Warn("rss feed fetch failed", zap.String("feed", feedURL), zap.Error(err))
			continue
		}
		for _, item := range feed.Items {
			op := s.itemToOpportunity(feedURL, item)
			if op == nil {
				continue
			}
			if opportunity.LooksClosed(op.Title + " " + op.Excerpt) {
				continue
			}
			list.Items = append(list.Items, op)
		}
	}
	return list, nil
}

func (s *RSS) itemToOpportunity(feedURL string, item *gofeed.Item) *opportunity.Opportunity {
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return nil
	}

	summary := item.Description
	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}

	return &opportunity.Opportunity{
		ID:          opportunity.HashID("rss", link),
		Title:       title,
		Kind:        opportunity.KindOther,
		Source:      "RSS:" + feedURL,
		SourceURL:   link,
		PublishedAt: published,
		Deadline:    dates.ParseDeadline(title+" "+summary, s.now()),
		Excerpt:     opportunity.SafeExcerpt(summary, opportunity.ExcerptLimit),
	}
}
