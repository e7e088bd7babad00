package gemini

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

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Expander derives short fresher/intern search queries from a profile using
// Gemini. Gemini has no JSON response mode toggle here, so the prompt demands
// strict JSON and the response is parsed leniently.
type Expander struct {
	generator  contentGenerator
	maxQueries int
	logger     *zap.Logger
}

const (
	defaultMaxQueries = 6
	maxQueriesCeiling = 12
)

func NewExpander(generator contentGenerator, maxQueries int, logger *zap.Logger) *Expander {
	if maxQueries <= 0 {
		maxQueries = defaultMaxQueries
	}
	if maxQueries > maxQueriesCeiling {
		maxQueries = maxQueriesCeiling
	}
	return &Expander{generator: generator, maxQueries: maxQueries, logger: logger}
}

func (e *Expander) Expand(ctx context.Context, profile *opportunity.Profile) ([]string, error) {
	payload, err := json.Marshal(map[string]any{
		"location":   "India",
		"level":      "internship / fresher / entry-level",
		"department": strings.TrimSpace(profile.Department),
		"skills":     capStrings(profile.Skills, 8),
		"interests":  capStrings(profile.Interests, 8),
	})
	if err != nil {
		return nil, err
	}

	prompt := "You generate short search queries to find CURRENT open internships and entry-level jobs. " +
		`Respond with STRICT JSON only, shaped as {"queries": [ ... ]}. ` +
		"Rules: 2-6 words per query; focus India; avoid senior roles; include 'intern' or 'internship' in most queries; " +
		"no markdown; no prose. Context: " + string(payload)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini query expansion response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, 200)),
	)

	obj := ai.ExtractJSONObject(raw)
	if obj == nil {
		return nil, errors.New("gemini expansion response is not a JSON object")
	}

	items, ok := ai.StringList(obj, "queries")
	if !ok {
		return nil, errors.New("gemini expansion response has no queries list")
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
