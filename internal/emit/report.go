// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// ReportEntry is one failed occurrence in the failure report.
type ReportEntry struct {
	Index    int                 `yaml:"index"`
	Position int                 `yaml:"position"`
	RawText  string              `yaml:"raw_text"`
	Reason   types.FailureReason `yaml:"reason"`
	Detail   string              `yaml:"detail,omitempty"`
}

// Report summarizes one resolution run: totals, per-reason counts, and
// one entry per failed occurrence in document order.
type Report struct {
	Total    int                         `yaml:"total"`
	Resolved int                         `yaml:"resolved"`
	Counts   map[types.FailureReason]int `yaml:"counts,omitempty"`
	Failures []ReportEntry               `yaml:"failures,omitempty"`
}

// BuildReport aggregates outcomes into a failure report. Outcomes must be
// in document order.
func BuildReport(outcomes []types.ResolutionOutcome) Report {
	r := Report{Total: len(outcomes)}
	for _, out := range outcomes {
		if out.Resolved() {
			r.Resolved++
			continue
		}
		if r.Counts == nil {
			r.Counts = make(map[types.FailureReason]int)
		}
		r.Counts[out.Failure]++
		r.Failures = append(r.Failures, ReportEntry{
			Index:    out.Occurrence.Index,
			Position: out.Occurrence.Position,
			RawText:  out.Occurrence.RawText,
			Reason:   out.Failure,
			Detail:   out.Detail,
		})
	}
	return r
}

// FailureCount returns the number of failed occurrences.
func (r Report) FailureCount() int {
	return r.Total - r.Resolved
}

// YAML renders the report as a YAML document.
func (r Report) YAML() ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshaling failure report: %w", err)
	}
	return data, nil
}
