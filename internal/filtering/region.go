package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/opportunity"
)

// indiaTokens matches Indian states and major cities plus remote markers.
// Substring matching against the lowercased location, so multi-word tokens
// work ("tamil nadu", "work from home").
var indiaTokens = []string{
	"india",
	"tamil nadu",
	"kerala",
	"karnataka",
	"telangana",
	"andhra",
	"maharashtra",
	"delhi",
	"chennai",
	"coimbatore",
	"erode",
	"salem",
	"bengaluru",
	"bangalore",
	"hyderabad",
	"pune",
	"mumbai",
	"noida",
	"gurgaon",
	"kolkata",
	"ahmedabad",
	"remote",
	"wfh",
	"work from home",
	"worldwide",
}

var remoteTokens = []string{"remote", "wfh", "work from home", "worldwide"}

type regionFilter struct {
	disabled      bool
	reason        string
	includeRemote bool
}

// NewRegion creates a filter that keeps India-or-remote listings. Listings
// without a location pass: sources that never report one would otherwise be
// wiped out.
func NewRegion() Filter {
	return &regionFilter{}
}

func (f *regionFilter) Name() string { return "region" }

func (f *regionFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *regionFilter) IsEnabled() bool { return !f.disabled }

func (f *regionFilter) Validate(cfg *Config) error {
	f.includeRemote = false
	if cfg != nil {
		f.includeRemote = cfg.IncludeRemote
	}
	return nil
}

func (f *regionFilter) Apply(_ context.Context, deps Deps, list *opportunity.List) (*opportunity.List, Step, error) {
	var excluded []string
	next, step := keepWhere(list, func(op *opportunity.Opportunity) bool {
		if locationOK(op.Location, f.includeRemote) {
			return true
		}
		excluded = append(excluded, op.ID)
		return false
	})

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding listings outside the region",
			zap.Strings("excluded_listings", excluded),
			zap.Int("listings_left", next.Len()),
		)
	}

	return next, step, nil
}

func (f *regionFilter) Status() Status {
	details := map[string]string{}
	if f.IsEnabled() {
		details["include_remote"] = boolString(f.includeRemote)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

func locationOK(location string, includeRemote bool) bool {
	loc := strings.ToLower(location)
	if strings.TrimSpace(loc) == "" {
		return true
	}

	for _, token := range indiaTokens {
		if strings.Contains(loc, token) {
			if isRemoteLocation(loc) && !includeRemote {
				return false
			}
			return true
		}
	}
	return false
}

func isRemoteLocation(loc string) bool {
	for _, token := range remoteTokens {
		if strings.Contains(loc, token) {
			return true
		}
	}
	return false
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
