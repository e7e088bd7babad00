package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/opportunity"
)

type seniorityFilter struct {
	disabled bool
	reason   string
}

// NewSeniority creates a filter that removes listings whose titles carry
// seniority markers.
func NewSeniority() Filter {
	return &seniorityFilter{}
}

func (f *seniorityFilter) Name() string { return "seniority" }

func (f *seniorityFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *seniorityFilter) IsEnabled() bool { return !f.disabled }

func (f *seniorityFilter) Validate(*Config) error { return nil }

func (f *seniorityFilter) Apply(_ context.Context, deps Deps, list *opportunity.List) (*opportunity.List, Step, error) {
	var excluded []string
	next, step := keepWhere(list, func(op *opportunity.Opportunity) bool {
		if opportunity.LooksSenior(op.Title) {
			excluded = append(excluded, op.ID)
			return false
		}
		return true
	})

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding senior-level listings",
			zap.Strings("excluded_listings", excluded),
			zap.Int("listings_left", next.Len()),
		)
	}

	return next, step, nil
}

func (f *seniorityFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
