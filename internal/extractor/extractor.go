// Package extractor orchestrates the extraction pipeline: sources, dedup,
// filter chain, scoring, truncation.
package extractor

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/filtering"
	"github.com/kec-hub/opportunities/internal/opportunity"
	"github.com/kec-hub/opportunities/internal/scoring"
	"github.com/kec-hub/opportunities/internal/sources"
)

// Meta carries per-run diagnostics alongside the results.
type Meta struct {
	Web sources.WebMeta `json:"web"`
}

// metaSource is implemented by sources that report diagnostics; currently
// only web search does.
type metaSource interface {
	FetchWithMeta(ctx context.Context, profile *opportunity.Profile) (*opportunity.List, sources.WebMeta)
}

// Config carries the pipeline-level settings.
type Config struct {
	// MaxResults bounds the final ranked list.
	MaxResults int
	// Filters configures the filter chain.
	Filters *filtering.Config
}

// Extractor runs the whole pipeline over a fixed set of sources. Sources run
// sequentially in registration order; that order decides who wins dedup ties.
type Extractor struct {
	cfg     Config
	sources []sources.Source
	chain   []filtering.Filter
	logger  *zap.Logger
	now     func() time.Time
}

func New(cfg Config, srcs []sources.Source, logger *zap.Logger) *Extractor {
	if cfg.MaxResults < 1 {
		cfg.MaxResults = 25
	}
	if cfg.Filters == nil {
		cfg.Filters = &filtering.Config{}
	}

	chain := filtering.DefaultChain()
	if !cfg.Filters.ExcludeSenior {
		filtering.DisableByName(chain, "seniority", "senior exclusion disabled in config")
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Filters.Country), "any") {
		filtering.DisableByName(chain, "region", "country restriction disabled in config")
	}
	if cfg.Filters.IncludeRemote {
		filtering.DisableByName(chain, "remote", "remote listings included in config")
	}

	return &Extractor{
		cfg:     cfg,
		sources: srcs,
		chain:   chain,
		logger:  logger,
		now:     time.Now,
	}
}

// Filters exposes the chain status for diagnostics output.
func (e *Extractor) Filters() []filtering.Status {
	return filtering.Describe(e.chain)
}

// Extract runs the pipeline and returns the ranked results.
func (e *Extractor) Extract(ctx context.Context, profile *opportunity.Profile) (*opportunity.List, error) {
	list, _, err := e.ExtractWithMeta(ctx, profile)
	return list, err
}

// ExtractWithMeta runs the pipeline and additionally reports run
// diagnostics. A failing source contributes nothing; only filter chain
// misconfiguration aborts the run.
func (e *Extractor) ExtractWithMeta(ctx context.Context, profile *opportunity.Profile) (*opportunity.List, Meta, error) {
	var meta Meta
	combined := opportunity.NewList()

	for _, src := range e.sources {
		var fetched *opportunity.List

		if ms, ok := src.(metaSource); ok {
			var webMeta sources.WebMeta
			fetched, webMeta = ms.FetchWithMeta(ctx, profile)
			meta.Web = webMeta
		} else {
			var err error
			fetched, err = src.Fetch(ctx, profile)
			if err != nil {
				e.logger.Warn("source fetch failed",
					zap.String("source", src.Name()),
					zap.Error(err),
				)
				continue
			}
		}

		if fetched == nil {
			continue
		}

		e.logger.Info("source fetched",
			zap.String("source", src.Name()),
			zap.Int("items", fetched.Len()),
		)
		combined.Items = append(combined.Items, fetched.Items...)
	}

	deduped := combined.Dedupe()

	filtered, err := filtering.Run(ctx, e.cfg.Filters, filtering.Deps{Logger: e.logger, Now: e.now}, e.chain, deduped)
	if err != nil {
		return nil, meta, err
	}

	scoring.Rank(filtered, profile)
	filtered.Truncate(e.cfg.MaxResults)

	e.logger.Info("extraction finished",
		zap.Int("collected", combined.Len()),
		zap.Int("returned", filtered.Len()),
	)

	return filtered, meta, nil
}
