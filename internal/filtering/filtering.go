// Package filtering implements the relevance filter chain that runs between
// source aggregation and scoring.
package filtering

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/opportunity"
)

// Filter represents a single filtering step applied to collected listings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, list *opportunity.List) (*opportunity.List, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
	Now    func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	// Country restricts listings by location: "IN" keeps India-or-remote
	// listings, "ANY" disables the restriction.
	Country string
	// IncludeRemote keeps remote/work-from-home listings.
	IncludeRemote bool
	// ExcludeSenior drops listings whose titles carry seniority markers.
	ExcludeSenior bool
	// MaxAgeDays is the freshness window for listings without a deadline.
	MaxAgeDays int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// DefaultChain returns the filter chain in its canonical order.
func DefaultChain() []Filter {
	return []Filter{
		NewSeniority(),
		NewRegion(),
		NewClosed(),
		NewFreshness(),
		NewRemote(),
	}
}

// Run executes the supplied filters sequentially and returns the surviving
// listings.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, list *opportunity.List) (*opportunity.List, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, list)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		list = next
	}

	return list, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keepWhere retains the listings for which keep returns true and reports the
// step accounting.
func keepWhere(list *opportunity.List, keep func(*opportunity.Opportunity) bool) (*opportunity.List, Step) {
	initial := list.Len()
	kept := list.Items[:0]
	for _, op := range list.Items {
		if keep(op) {
			kept = append(kept, op)
		}
	}
	list.Items = kept
	return list, Step{Initial: initial, Dropped: initial - list.Len(), Left: list.Len()}
}
