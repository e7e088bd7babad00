package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/opportunity"
)

type remoteFilter struct {
	disabled bool
	reason   string
}

// NewRemote creates a filter that removes remote listings. It runs last so
// the exclusion holds even when the region filter is disabled.
func NewRemote() Filter {
	return &remoteFilter{}
}

func (f *remoteFilter) Name() string { return "remote" }

func (f *remoteFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *remoteFilter) IsEnabled() bool { return !f.disabled }

func (f *remoteFilter) Validate(*Config) error { return nil }

func (f *remoteFilter) Apply(_ context.Context, deps Deps, list *opportunity.List) (*opportunity.List, Step, error) {
	var excluded []string
	next, step := keepWhere(list, func(op *opportunity.Opportunity) bool {
		if isRemoteLocation(strings.ToLower(op.Location)) {
			excluded = append(excluded, op.ID)
			return false
		}
		return true
	})

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding remote listings",
			zap.Strings("excluded_listings", excluded),
			zap.Int("listings_left", next.Len()),
		)
	}

	return next, step, nil
}

func (f *remoteFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
