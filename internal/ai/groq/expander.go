package groq

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/ai"
	"github.com/kec-hub/opportunities/internal/logger"
	"github.com/kec-hub/opportunities/internal/opportunity"
)

const (
	expanderSystemPrompt = "You generate short search queries to find CURRENT open internships and entry-level jobs. " +
		"Return STRICT JSON only. No prose."

	defaultMaxQueries = 6
	maxQueriesCeiling = 12
)

// jsonCompleter is the slice of Client the expander and link filter need.
type jsonCompleter interface {
	CompleteJSON(ctx context.Context, system, user string, temperature float32) (string, error)
}

// Expander asks the model for short India-focused fresher/intern search
// queries derived from a profile.
type Expander struct {
	client     jsonCompleter
	maxQueries int
	logger     *zap.Logger
}

// NewExpander builds an expander. maxQueries defaults to 6 and is clamped to
// [1, 12].
func NewExpander(client *Client, maxQueries int, logger *zap.Logger) *Expander {
	if maxQueries <= 0 {
		maxQueries = defaultMaxQueries
	}
	if maxQueries > maxQueriesCeiling {
		maxQueries = maxQueriesCeiling
	}
	return &Expander{client: client, maxQueries: maxQueries, logger: logger}
}

// Expand returns up to maxQueries cleaned, deduplicated query strings.
func (e *Expander) Expand(ctx context.Context, profile *opportunity.Profile) ([]string, error) {
	payload := map[string]any{
		"location":   "India",
		"level":      "internship / fresher / entry-level",
		"department": strings.TrimSpace(profile.Department),
		"skills":     capStrings(profile.Skills, 8),
		"interests":  capStrings(profile.Interests, 8),
	}
	context_, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	user := `Create a JSON object: {"queries": [ ... ]}. ` +
		"Rules: 2-6 words per query; focus India; avoid senior roles; include 'intern' or 'internship' in most queries; " +
		"no markdown; no trailing comments. Context: " + string(context_)

	raw, err := e.client.CompleteJSON(ctx, expanderSystemPrompt, user, 0.2)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("groq query expansion response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, 200)),
	)

	obj := ai.ExtractJSONObject(raw)
	if obj == nil {
		return nil, errors.New("groq expansion response is not a JSON object")
	}

	items, ok := ai.StringList(obj, "queries")
	if !ok {
		return nil, errors.New("groq expansion response has no queries list")
	}

	cleaned := make([]string, 0, len(items))
	for _, q := range items {
		if q = ai.CleanQuery(q); q != "" {
			cleaned = append(cleaned, q)
		}
	}

	return ai.DedupeQueries(cleaned, e.maxQueries), nil
}

func capStrings(values []string, max int) []string {
	out := make([]string, 0, max)
	for _, v := range values {
		if v = strings.TrimSpace(v); v == "" {
			continue
		}
		out = append(out, v)
		if len(out) >= max {
			break
		}
	}
	return out
}
