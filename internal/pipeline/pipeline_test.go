// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cite-engine/internal/library"
	"github.com/pdiddy/cite-engine/internal/resolver"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// slowResolver resolves even-indexed occurrences after a delay and fails
// odd-indexed ones immediately, so completion order differs from document
// order.
type slowResolver struct{}

func (slowResolver) Resolve(_ context.Context, occ types.CitationOccurrence) types.ResolutionOutcome {
	if occ.Index%2 == 1 {
		return types.ResolutionOutcome{Occurrence: occ, Failure: types.FailureNotFound}
	}
	time.Sleep(5 * time.Millisecond)
	rec := types.BibliographicRecord{
		Title: fmt.Sprintf("Work %d", occ.Index),
		Date:  time.Date(2000+occ.Index, 1, 1, 0, 0, 0, 0, time.UTC),
		Contributors: []types.Contributor{
			{Given: "A", Family: fmt.Sprintf("Author%d", occ.Index)},
		},
		Confidence: types.TierExact,
	}
	return types.ResolutionOutcome{Occurrence: occ, Record: &rec}
}

func occurrences(n int) []types.CitationOccurrence {
	occs := make([]types.CitationOccurrence, n)
	for i := range occs {
		occs[i] = types.CitationOccurrence{Index: i, Position: i * 10, RawText: fmt.Sprintf("cite %d", i)}
	}
	return occs
}

func TestRunOccurrencesPreservesDocumentOrder(t *testing.T) {
	p := New(slowResolver{}, types.PipelineConfig{Workers: 4}, zerolog.Nop())

	result, err := p.RunOccurrences(context.Background(), occurrences(8))
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 8)

	for i, out := range result.Outcomes {
		assert.Equal(t, i, out.Occurrence.Index)
	}
	// Records follow document order of their first occurrence.
	require.Len(t, result.Records, 4)
	assert.Equal(t, "Work 0", result.Records[0].Title)
	assert.Equal(t, "Work 6", result.Records[3].Title)
}

func TestRunOccurrencesDeterministic(t *testing.T) {
	p := New(slowResolver{}, types.PipelineConfig{Workers: 3}, zerolog.Nop())
	occs := occurrences(6)

	first, err := p.RunOccurrences(context.Background(), occs)
	require.NoError(t, err)
	second, err := p.RunOccurrences(context.Background(), occs)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunOccurrencesContinuesPastFailures(t *testing.T) {
	p := New(slowResolver{}, types.PipelineConfig{Workers: 2}, zerolog.Nop())

	result, err := p.RunOccurrences(context.Background(), occurrences(4))
	require.NoError(t, err)

	assert.Equal(t, 4, result.Report.Total)
	assert.Equal(t, 2, result.Report.Resolved)
	assert.Equal(t, 2, result.Report.Counts[types.FailureNotFound])
}

// Strict mode fails the run only after the full result and report exist.
func TestRunOccurrencesStrict(t *testing.T) {
	p := New(slowResolver{}, types.PipelineConfig{Workers: 2, Strict: true}, zerolog.Nop())

	result, err := p.RunOccurrences(context.Background(), occurrences(4))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 4")
	assert.Equal(t, 4, result.Report.Total)
	assert.Len(t, result.Records, 2)
}

// echoResolver resolves every occurrence to a record titled after its
// raw text, ignoring index fields entirely.
type echoResolver struct{}

func (echoResolver) Resolve(_ context.Context, occ types.CitationOccurrence) types.ResolutionOutcome {
	rec := types.BibliographicRecord{Title: occ.RawText, Confidence: types.TierExact}
	return types.ResolutionOutcome{Occurrence: occ, Record: &rec}
}

// Callers handing in occurrences from an external parser may not number
// them; only source position is trusted for ordering.
func TestRunOccurrencesIgnoresCallerIndexes(t *testing.T) {
	p := New(echoResolver{}, types.PipelineConfig{Workers: 4}, zerolog.Nop())

	occs := []types.CitationOccurrence{
		{Index: 0, Position: 30, RawText: "third"},
		{Index: 0, Position: 10, RawText: "first"},
		{Index: 7, Position: 20, RawText: "second"},
	}
	result, err := p.RunOccurrences(context.Background(), occs)
	require.NoError(t, err)

	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, "first", result.Outcomes[0].Record.Title)
	assert.Equal(t, "second", result.Outcomes[1].Record.Title)
	assert.Equal(t, "third", result.Outcomes[2].Record.Title)

	assert.Equal(t, 3, result.Report.Total)
	assert.Equal(t, 3, result.Report.Resolved)
}

func TestRunEndToEnd(t *testing.T) {
	lib := library.FromRecords([]types.BibliographicRecord{
		{
			Title:        "The Craft of Use: Post-Growth Fashion",
			Contributors: []types.Contributor{{Given: "Kate", Family: "Fletcher"}},
			Date:         time.Date(2016, 4, 1, 0, 0, 0, 0, time.UTC),
			Identifiers:  []types.Identifier{{Kind: types.KindDOI, Canonical: "doi:10.4324/9781315647371"}},
		},
	})
	res := resolver.New(lib, types.ResolverConfig{})
	p := New(res, types.PipelineConfig{}, zerolog.Nop())

	text := "See [the book](https://doi.org/10.4324/9781315647371) and also [Nonexistent, 1999]."
	result, err := p.Run(context.Background(), text)
	require.NoError(t, err)

	require.Len(t, result.Outcomes, 2)
	require.True(t, result.Outcomes[0].Resolved())
	assert.Equal(t, types.TierExact, result.Outcomes[0].Record.Confidence)
	assert.Equal(t, types.FailureNotFound, result.Outcomes[1].Failure)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "fletcher2016", result.Records[0].Key)
}

func TestRunEmptyDocument(t *testing.T) {
	p := New(slowResolver{}, types.PipelineConfig{Strict: true}, zerolog.Nop())

	result, err := p.Run(context.Background(), "no citations in this text")
	require.NoError(t, err)
	assert.Empty(t, result.Outcomes)
	assert.Empty(t, result.Records)
	assert.Equal(t, 0, result.Report.Total)
}