// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data model shared across pipeline stages.
package types

import "time"

// IdentifierKind classifies a canonical bibliographic identifier.
type IdentifierKind string

const (
	KindDOI      IdentifierKind = "doi"
	KindPreprint IdentifierKind = "preprint"
	KindURL      IdentifierKind = "url"
	KindNone     IdentifierKind = "none"
)

// Identifier is a tagged, canonicalized identifier. Two identifiers with
// equal Kind and Canonical refer to the same bibliographic target; preprint
// identifiers have trailing version suffixes stripped before comparison.
type Identifier struct {
	Kind      IdentifierKind `json:"kind" yaml:"kind"`
	Canonical string         `json:"canonical" yaml:"canonical"`
}

// IsZero reports whether the identifier is empty.
func (id Identifier) IsZero() bool {
	return id.Canonical == "" && id.Kind == ""
}

// Resolvable reports whether the identifier can be used for matching or
// external lookup (anything other than KindNone).
func (id Identifier) Resolvable() bool {
	return id.Kind == KindDOI || id.Kind == KindPreprint || id.Kind == KindURL
}

func (id Identifier) String() string {
	return id.Canonical
}

// CitationOccurrence is one located citation reference in source text.
// Occurrences are immutable after extraction.
type CitationOccurrence struct {
	// Index is the document-order position of the occurrence, assigned
	// sequentially during extraction.
	Index int `json:"index" yaml:"index"`

	// Position is the byte offset of the occurrence in the source text.
	Position int `json:"position" yaml:"position"`

	// RawText is the text span of the citation as it appears in the source.
	RawText string `json:"raw_text" yaml:"raw_text"`

	// InlineID is the inline identifier found with the occurrence (URL,
	// DOI-like token, or preprint ID), or empty if none was present.
	InlineID string `json:"inline_id,omitempty" yaml:"inline_id,omitempty"`
}

// Contributor is either a personal name (Given + Family) or an
// organizational name (Literal). Organizational contributors must never be
// emitted as a family-only personal name.
type Contributor struct {
	Given   string `json:"given,omitempty" yaml:"given,omitempty"`
	Family  string `json:"family,omitempty" yaml:"family,omitempty"`
	Literal string `json:"literal,omitempty" yaml:"literal,omitempty"`
}

// IsOrganization reports whether the contributor carries an organizational
// name rather than a personal one.
func (c Contributor) IsOrganization() bool {
	return c.Literal != ""
}

// DisplayName returns the contributor's name for logs and reports.
func (c Contributor) DisplayName() string {
	if c.Literal != "" {
		return c.Literal
	}
	if c.Given == "" {
		return c.Family
	}
	return c.Given + " " + c.Family
}

// MatchTier is the confidence level of a resolved record.
type MatchTier string

const (
	TierExact      MatchTier = "exact"
	TierNormalized MatchTier = "normalized"
	TierFuzzy      MatchTier = "fuzzy"
	TierUnresolved MatchTier = "unresolved"
)

// BibliographicRecord holds resolved metadata for one cited work. Records
// are owned by the resolver once created and read-only downstream.
type BibliographicRecord struct {
	// Key is the citation key, unique within an emission run. Assigned
	// during emission, empty before then.
	Key string `json:"key,omitempty" yaml:"key,omitempty"`

	Title        string        `json:"title" yaml:"title"`
	Contributors []Contributor `json:"contributors,omitempty" yaml:"contributors,omitempty"`

	// Container is the journal, venue, or site name.
	Container string    `json:"container,omitempty" yaml:"container,omitempty"`
	Date      time.Time `json:"date,omitempty" yaml:"date,omitempty"`

	Identifiers []Identifier `json:"identifiers,omitempty" yaml:"identifiers,omitempty"`

	// Confidence records the matching tier that produced this record.
	Confidence MatchTier `json:"confidence" yaml:"confidence"`
}

// FailureReason classifies why an occurrence could not be resolved.
type FailureReason string

const (
	// FailureNotFound means no match was found at any tier.
	FailureNotFound FailureReason = "not_found"

	// FailureAmbiguous means the fuzzy tier produced multiple near-equal
	// candidates and refused to guess.
	FailureAmbiguous FailureReason = "ambiguous"

	// FailureExternal means an external lookup failed, transiently or
	// permanently, after retries were exhausted.
	FailureExternal FailureReason = "external_error"

	// FailureMalformed means the occurrence text yields neither an
	// identifier nor a searchable fragment.
	FailureMalformed FailureReason = "malformed_input"
)

// ResolutionOutcome is the per-occurrence result: a record or a failure,
// never both, never neither.
type ResolutionOutcome struct {
	Occurrence CitationOccurrence   `json:"occurrence" yaml:"occurrence"`
	Record     *BibliographicRecord `json:"record,omitempty" yaml:"record,omitempty"`
	Failure    FailureReason        `json:"failure,omitempty" yaml:"failure,omitempty"`

	// Detail carries human-readable context for failures (candidate titles
	// for ambiguity, the lookup error for external failures).
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Resolved reports whether the outcome carries a record.
func (o ResolutionOutcome) Resolved() bool {
	return o.Record != nil
}

// Payload is the canonical shape produced by lookup-client adapters. The
// resolver only ever sees this one shape regardless of which backend
// answered.
type Payload struct {
	Title        string        `json:"title" yaml:"title"`
	Contributors []Contributor `json:"contributors,omitempty" yaml:"contributors,omitempty"`
	Container    string        `json:"container,omitempty" yaml:"container,omitempty"`
	Date         time.Time     `json:"date,omitempty" yaml:"date,omitempty"`
	Identifiers  []Identifier  `json:"identifiers,omitempty" yaml:"identifiers,omitempty"`

	// Source identifies the backend that produced the payload
	// (e.g. "crossref", "arxiv", "datacite", "cache").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}
