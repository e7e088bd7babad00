package filtering

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/dates"
	"github.com/kec-hub/opportunities/internal/opportunity"
)

type freshnessFilter struct {
	maxAgeDays int
}

// NewFreshness creates a filter that removes stale listings: a listing is
// kept while its deadline has not passed, or, without one, while its publish
// timestamp is within the freshness window.
func NewFreshness() Filter {
	return &freshnessFilter{}
}

func (f *freshnessFilter) Name() string { return "freshness" }

func (f *freshnessFilter) Disable(string) {}

func (f *freshnessFilter) IsEnabled() bool { return true }

func (f *freshnessFilter) Validate(cfg *Config) error {
	f.maxAgeDays = 0
	if cfg != nil {
		f.maxAgeDays = cfg.MaxAgeDays
	}
	return nil
}

func (f *freshnessFilter) Apply(_ context.Context, deps Deps, list *opportunity.List) (*opportunity.List, Step, error) {
	now := deps.now()
	var excluded []string
	next, step := keepWhere(list, func(op *opportunity.Opportunity) bool {
		if dates.IsActive(op.Deadline, op.PublishedAt, f.maxAgeDays, now) {
			return true
		}
		excluded = append(excluded, op.ID)
		return false
	})

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding stale listings",
			zap.Strings("excluded_listings", excluded),
			zap.Int("listings_left", next.Len()),
		)
	}

	return next, step, nil
}

func (f *freshnessFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Details: map[string]string{"max_age_days": strconv.Itoa(f.maxAgeDays)},
	}
}
