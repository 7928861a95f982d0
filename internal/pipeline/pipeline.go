// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives extraction, resolution, and emission over one
// source document.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdiddy/cite-engine/internal/cache"
	"github.com/pdiddy/cite-engine/internal/emit"
	"github.com/pdiddy/cite-engine/internal/extract"
	"github.com/pdiddy/cite-engine/internal/library"
	"github.com/pdiddy/cite-engine/internal/lookup"
	"github.com/pdiddy/cite-engine/internal/resolver"
	"github.com/pdiddy/cite-engine/pkg/types"
)

const defaultWorkers = 4

// Resolver matches one occurrence. *resolver.Resolver satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, occ types.CitationOccurrence) types.ResolutionOutcome
}

// Pipeline resolves every occurrence of a document through a bounded
// worker pool and aggregates the results.
type Pipeline struct {
	res     Resolver
	workers int
	strict  bool
	log     zerolog.Logger
}

// Result is the aggregate of one run: per-occurrence outcomes in document
// order, deduplicated keyed records, and the failure report.
type Result struct {
	Outcomes []types.ResolutionOutcome
	Records  []types.BibliographicRecord
	Report   emit.Report
}

// New returns a Pipeline over res. Workers below one fall back to the
// default pool size.
func New(res Resolver, cfg types.PipelineConfig, log zerolog.Logger) *Pipeline {
	workers := cfg.Workers
	if workers < 1 {
		workers = defaultWorkers
	}
	return &Pipeline{res: res, workers: workers, strict: cfg.Strict, log: log}
}

// Build wires a full pipeline from configuration: cache store, lookup
// client, and resolver over lib. The returned closer releases the cache
// store. Configuration errors surface here, before any processing.
func Build(cfg types.PipelineConfig, lib *library.Snapshot, log zerolog.Logger) (*Pipeline, func() error, error) {
	store, err := cache.Open(cfg.Cache.Dir, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("opening lookup cache: %w", err)
	}

	ttl := cfg.Cache.TTL
	if ttl <= 0 {
		ttl = lookup.DefaultTTL
	}

	opts := []resolver.Option{
		resolver.WithTTL(ttl),
		resolver.WithLogger(log),
	}
	if !cfg.Offline {
		client := lookup.NewClient(cfg.Lookup,
			lookup.WithCache(store),
			lookup.WithLogger(log),
		)
		opts = append(opts, resolver.WithFetcher(client))
	}
	res := resolver.New(lib, cfg.Resolver, opts...)

	return New(res, cfg, log), store.Close, nil
}

// Run extracts occurrences from text and resolves them. See
// RunOccurrences for the aggregation and strict-mode contract.
func (p *Pipeline) Run(ctx context.Context, text string) (Result, error) {
	return p.RunOccurrences(ctx, extract.Occurrences(text))
}

// RunOccurrences resolves pre-extracted occurrences. A single failing
// occurrence never aborts the run; failures are aggregated into the
// report. In strict mode a nonzero failure count returns an error, but
// only after the full result has been assembled.
func (p *Pipeline) RunOccurrences(ctx context.Context, occs []types.CitationOccurrence) (Result, error) {
	outcomes := p.resolveAll(ctx, occs)

	result := Result{
		Outcomes: outcomes,
		Records:  emit.CollectRecords(outcomes),
		Report:   emit.BuildReport(outcomes),
	}

	p.log.Info().
		Int("occurrences", result.Report.Total).
		Int("resolved", result.Report.Resolved).
		Int("failed", result.Report.FailureCount()).
		Msg("resolution run complete")

	if p.strict && result.Report.FailureCount() > 0 {
		return result, fmt.Errorf("strict mode: %d of %d occurrences failed to resolve",
			result.Report.FailureCount(), result.Report.Total)
	}
	return result, nil
}

// job pairs an occurrence with its slice position so workers can slot
// outcomes without trusting caller-supplied index fields.
type job struct {
	slot int
	occ  types.CitationOccurrence
}

// resolveAll fans occurrences out to the worker pool. Each outcome lands
// in the slot of its input position and the slice is then ordered by
// source position, so the result order is the document order no matter
// which worker finishes first.
func (p *Pipeline) resolveAll(ctx context.Context, occs []types.CitationOccurrence) []types.ResolutionOutcome {
	outcomes := make([]types.ResolutionOutcome, len(occs))

	jobs := make(chan job)
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcomes[j.slot] = p.res.Resolve(ctx, j.occ)
			}
		}()
	}

	for i, occ := range occs {
		jobs <- job{slot: i, occ: occ}
	}
	close(jobs)
	wg.Wait()

	sort.SliceStable(outcomes, func(a, b int) bool {
		return outcomes[a].Occurrence.Position < outcomes[b].Occurrence.Position
	})
	return outcomes
}
