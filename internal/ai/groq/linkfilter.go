package groq

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/ai"
	"github.com/kec-hub/opportunities/internal/opportunity"
)

const (
	linkFilterSystemPrompt = "You are a link filter for job opportunities. Return STRICT JSON only. No prose."

	// Hard cap on candidates sent per call, to keep the prompt small.
	maxLinkCandidates = 18
)

// LinkFilter asks the model which of the discovered web links are real job
// posting/apply pages worth keeping.
type LinkFilter struct {
	client jsonCompleter
	logger *zap.Logger
}

func NewLinkFilter(client *Client, logger *zap.Logger) *LinkFilter {
	return &LinkFilter{client: client, logger: logger}
}

// Keep returns the URLs the model selected. Callers must only intersect with
// the result, never treat it as additive.
func (f *LinkFilter) Keep(ctx context.Context, profile *opportunity.Profile, candidates []ai.LinkCandidate) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if len(candidates) > maxLinkCandidates {
		candidates = candidates[:maxLinkCandidates]
	}

	context_, err := json.Marshal(map[string]any{
		"location":   "India / Remote",
		"department": strings.TrimSpace(profile.Department),
		"skills":     capStrings(profile.Skills, 10),
		"interests":  capStrings(profile.Interests, 10),
	})
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(candidates)
	if err != nil {
		return nil, err
	}

	user := "Select only real job posting/apply links for internships or entry-level roles (India or Remote). " +
		"Prefer official company career pages and common ATS pages (Greenhouse/Lever/SmartRecruiters/Workday). " +
		"Avoid unrelated pages, blogs, salary pages, newsletters, and low-quality aggregators. " +
		`Return: {"keep": ["https://...", ...]}. ` +
		"Context: " + string(context_) + "\nCandidates: " + string(payload)

	raw, err := f.client.CompleteJSON(ctx, linkFilterSystemPrompt, user, 0.1)
	if err != nil {
		return nil, err
	}

	obj := ai.ExtractJSONObject(raw)
	if obj == nil {
		return nil, errors.New("groq link filter response is not a JSON object")
	}

	items, ok := ai.StringList(obj, "keep")
	if !ok {
		return nil, errors.New("groq link filter response has no keep list")
	}

	out := make([]string, 0, len(items))
	for _, u := range items {
		if u = strings.TrimSpace(u); strings.HasPrefix(u, "http") {
			out = append(out, u)
		}
	}
	return out, nil
}
