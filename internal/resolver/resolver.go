// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolver matches citation occurrences against a library snapshot
// through an ordered chain of matching strategies: exact identifier,
// normalized URL form, then fuzzy title/author similarity.
package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/pdiddy/cite-engine/internal/identifier"
	"github.com/pdiddy/cite-engine/internal/library"
	"github.com/pdiddy/cite-engine/internal/lookup"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// Fetcher augments occurrences that carry a bare identifier with external
// metadata. *lookup.Client satisfies it; tests substitute stubs.
type Fetcher interface {
	FetchByIdentifier(ctx context.Context, id types.Identifier, ttl time.Duration) (types.Payload, error)
}

// Resolver matches occurrences against one immutable library snapshot.
// Safe for concurrent use.
type Resolver struct {
	lib     *library.Snapshot
	fetcher Fetcher
	cfg     types.ResolverConfig
	ttl     time.Duration
	log     zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFetcher enables external lookup augmentation for occurrences whose
// only content is an identifier. Without a fetcher such occurrences can
// still match exactly, but never fuzzily.
func WithFetcher(f Fetcher) Option {
	return func(r *Resolver) { r.fetcher = f }
}

// WithTTL sets the freshness bound passed to the fetcher.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) { r.ttl = ttl }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// New returns a Resolver over lib with defaulted config.
func New(lib *library.Snapshot, cfg types.ResolverConfig, opts ...Option) *Resolver {
	r := &Resolver{
		lib: lib,
		cfg: cfg.Defaulted(),
		ttl: lookup.DefaultTTL,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// query is the parsed form of one occurrence, shared across strategies.
// The augmentation step mutates it in place.
type query struct {
	occ      types.CitationOccurrence
	ids      []types.Identifier // resolvable, in DOI > preprint > URL order
	fragment string             // searchable free text, possibly empty
	surnames []string           // lowercased author surnames from the raw text
	year     int                // nonzero when the span is an author-year citation

	augmented bool  // external lookup already attempted
	lookupErr error // recorded external failure, reported if nothing matches
}

// strategy attempts one matching tier. A nil outcome means "no decision,
// try the next tier"; a non-nil outcome is final, whether match or failure.
type strategy func(ctx context.Context, q *query) *types.ResolutionOutcome

// Resolve matches one occurrence. It never returns an error: every failure
// mode is a ResolutionOutcome with a FailureReason.
func (r *Resolver) Resolve(ctx context.Context, occ types.CitationOccurrence) types.ResolutionOutcome {
	q := parseOccurrence(occ)

	if len(q.ids) == 0 && q.fragment == "" {
		return types.ResolutionOutcome{
			Occurrence: occ,
			Failure:    types.FailureMalformed,
			Detail:     "no identifier or searchable fragment in occurrence text",
		}
	}

	for _, s := range []strategy{r.exactMatch, r.normalizedMatch, r.fuzzyMatch} {
		if out := s(ctx, q); out != nil {
			return *out
		}
	}

	if q.lookupErr != nil {
		return types.ResolutionOutcome{
			Occurrence: occ,
			Failure:    types.FailureExternal,
			Detail:     q.lookupErr.Error(),
		}
	}
	return types.ResolutionOutcome{
		Occurrence: occ,
		Failure:    types.FailureNotFound,
		Detail:     "no match at any tier",
	}
}

// exactMatch compares the occurrence's normalized identifiers against the
// library index, in identifier priority order.
func (r *Resolver) exactMatch(_ context.Context, q *query) *types.ResolutionOutcome {
	for _, id := range q.ids {
		if rec, ok := r.lib.ByIdentifier(id); ok {
			r.log.Debug().Int("index", q.occ.Index).Str("id", id.Canonical).Msg("exact identifier match")
			return matched(q.occ, rec, types.TierExact)
		}
	}
	return nil
}

// normalizedMatch maps DOI and preprint identifiers to their resolver-URL
// forms and back, so a library holding "https://doi.org/..." as a URL still
// matches an occurrence citing the bare DOI, and vice versa.
func (r *Resolver) normalizedMatch(_ context.Context, q *query) *types.ResolutionOutcome {
	for _, id := range q.ids {
		if alt := identifier.URLForm(id); alt.Resolvable() {
			if rec, ok := r.lib.ByIdentifier(alt); ok {
				r.log.Debug().Int("index", q.occ.Index).Str("id", alt.Canonical).Msg("normalized URL match")
				return matched(q.occ, rec, types.TierNormalized)
			}
		}
	}
	return nil
}

// fuzzyMatch scores every library record by title similarity and author
// surname overlap. An occurrence holding only a bare identifier is first
// augmented with fetched metadata. Ties above the threshold within the
// ambiguity margin are a terminal AMBIGUOUS failure, never a guess.
func (r *Resolver) fuzzyMatch(ctx context.Context, q *query) *types.ResolutionOutcome {
	if q.fragment == "" {
		r.augment(ctx, q)
		// Augmentation may have surfaced an identifier the library indexes.
		if out := r.exactMatch(ctx, q); out != nil {
			return out
		}
	}
	if q.fragment == "" {
		return nil
	}

	best, second := r.scoreAll(q)
	if best.score < r.cfg.FuzzyThreshold {
		return nil
	}
	if second.score >= r.cfg.FuzzyThreshold && best.score-second.score < r.cfg.AmbiguityMargin {
		r.log.Debug().Int("index", q.occ.Index).
			Float64("best", best.score).Float64("second", second.score).
			Msg("fuzzy match ambiguous")
		return &types.ResolutionOutcome{
			Occurrence: q.occ,
			Failure:    types.FailureAmbiguous,
			Detail: fmt.Sprintf("near-equal candidates: %q (%.2f) vs %q (%.2f)",
				best.rec.Title, best.score, second.rec.Title, second.score),
		}
	}

	r.log.Debug().Int("index", q.occ.Index).Float64("score", best.score).
		Str("title", best.rec.Title).Msg("fuzzy match accepted")
	return matched(q.occ, best.rec, types.TierFuzzy)
}

// augment fetches metadata for the occurrence's first resolvable
// identifier and folds the payload into the query. At most one attempt per
// occurrence; failures are recorded, not fatal here.
func (r *Resolver) augment(ctx context.Context, q *query) {
	if r.fetcher == nil || q.augmented || len(q.ids) == 0 {
		return
	}
	q.augmented = true

	payload, err := r.fetcher.FetchByIdentifier(ctx, q.ids[0], r.ttl)
	if err != nil {
		q.lookupErr = err
		r.log.Warn().Int("index", q.occ.Index).Str("id", q.ids[0].Canonical).
			Err(err).Msg("augmentation lookup failed")
		return
	}

	q.fragment = payload.Title
	for _, c := range payload.Contributors {
		if s := surnameOf(c); s != "" {
			q.surnames = append(q.surnames, s)
		}
	}
	for _, id := range payload.Identifiers {
		if id.Resolvable() && !containsID(q.ids, id) {
			q.ids = append(q.ids, id)
		}
	}
}

func matched(occ types.CitationOccurrence, rec types.BibliographicRecord, tier types.MatchTier) *types.ResolutionOutcome {
	rec.Confidence = tier
	return &types.ResolutionOutcome{Occurrence: occ, Record: &rec}
}

func containsID(ids []types.Identifier, id types.Identifier) bool {
	for _, have := range ids {
		if identifier.Equal(have, id) {
			return true
		}
	}
	return false
}

// Occurrence text parsing. The extractor guarantees InlineID when the
// occurrence carried one; parseOccurrence additionally digs identifiers
// and an author-year shape out of the raw span so programmatic callers
// need not pre-populate InlineID.

var (
	inlineDOIRe     = regexp.MustCompile(`(?:doi:)?10\.\d{1,9}/[^\s"'<>)\]]+`)
	inlineURLRe     = regexp.MustCompile(`https?://[^\s)\]>"']+`)
	inlinePrepRe    = regexp.MustCompile(`(?i)arxiv:\d{4}\.\d{4,5}(?:v\d+)?`)
	authorYearOccRe = regexp.MustCompile(`^\[?([A-Z][A-Za-z-]+)(?:\s+(?:et\s+al\.|and\s+([A-Z][A-Za-z-]+)))?,\s*(\d{4})\]?$`)
)

func parseOccurrence(occ types.CitationOccurrence) *query {
	q := &query{occ: occ}

	if occ.InlineID != "" {
		addIdentifier(q, identifier.Normalize(occ.InlineID))
	}
	for _, re := range []*regexp.Regexp{inlineDOIRe, inlinePrepRe, inlineURLRe} {
		for _, tok := range re.FindAllString(occ.RawText, -1) {
			addIdentifier(q, identifier.Normalize(tok))
		}
	}
	sortByKindPriority(q.ids)

	q.fragment, q.surnames, q.year = searchableFragment(occ.RawText)
	return q
}

func addIdentifier(q *query, id types.Identifier) {
	if id.Resolvable() && !containsID(q.ids, id) {
		q.ids = append(q.ids, id)
	}
}

// sortByKindPriority orders identifiers DOI first, then preprint, then
// URL. Insertion order breaks ties, keeping resolution deterministic.
func sortByKindPriority(ids []types.Identifier) {
	rank := func(k types.IdentifierKind) int {
		switch k {
		case types.KindDOI:
			return 0
		case types.KindPreprint:
			return 1
		default:
			return 2
		}
	}
	// Insertion sort keeps equal-rank identifiers in discovery order.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && rank(ids[j].Kind) < rank(ids[j-1].Kind); j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

// searchableFragment strips identifier tokens and citation punctuation
// from the raw span and returns what remains as free text. Author-year
// spans like "[Smith et al., 2020]" additionally yield the surnames and
// year, which the fuzzy tier scores instead of the text.
func searchableFragment(raw string) (string, []string, int) {
	s := raw
	if m := authorYearOccRe.FindStringSubmatch(strings.TrimSpace(s)); m != nil {
		surnames := []string{strings.ToLower(m[1])}
		if m[2] != "" {
			surnames = append(surnames, strings.ToLower(m[2]))
		}
		year, _ := strconv.Atoi(m[3])
		return strings.Trim(strings.TrimSpace(s), "[]"), surnames, year
	}

	for _, re := range []*regexp.Regexp{inlineURLRe, inlineDOIRe, inlinePrepRe} {
		s = re.ReplaceAllString(s, " ")
	}
	s = strings.Trim(strings.TrimSpace(s), "[]()")
	s = strings.Join(strings.Fields(s), " ")
	if !hasLetter(s) {
		return "", nil, 0
	}
	return s, nil, 0
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
