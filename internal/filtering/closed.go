package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/opportunity"
)

type closedFilter struct{}

// NewClosed creates a filter that removes listings announcing their own
// closure in the title or excerpt.
func NewClosed() Filter {
	return &closedFilter{}
}

func (f *closedFilter) Name() string { return "closed" }

func (f *closedFilter) Disable(string) {}

func (f *closedFilter) IsEnabled() bool { return true }

func (f *closedFilter) Validate(*Config) error { return nil }

func (f *closedFilter) Apply(_ context.Context, deps Deps, list *opportunity.List) (*opportunity.List, Step, error) {
	var excluded []string
	next, step := keepWhere(list, func(op *opportunity.Opportunity) bool {
		if opportunity.LooksClosed(op.Title + " " + op.Excerpt) {
			excluded = append(excluded, op.ID)
			return false
		}
		return true
	})

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding closed listings",
			zap.Strings("excluded_listings", excluded),
			zap.Int("listings_left", next.Len()),
		)
	}

	return next, step, nil
}
