// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library loads a reference-manager export into an immutable,
// identifier-indexed snapshot for the resolver.
package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// Snapshot is a read-only collection of bibliographic records fetched once
// per run. The resolver treats it as immutable for the run's duration.
type Snapshot struct {
	records []types.BibliographicRecord
	byID    map[types.Identifier]int
}

// Load reads a CSL export file. Files ending in .json parse as CSL-JSON;
// everything else parses as CSL-YAML.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading library snapshot: %w", err)
	}

	var items []CSLItem
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parsing library snapshot %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parsing library snapshot %s: %w", path, err)
		}
	}

	records := make([]types.BibliographicRecord, len(items))
	for i, item := range items {
		records[i] = item.Record()
	}
	return FromRecords(records), nil
}

// FromRecords builds an indexed snapshot from records. Every resolvable
// identifier of every record is indexed; on collision the later record
// wins, matching the export file's own ordering.
func FromRecords(records []types.BibliographicRecord) *Snapshot {
	s := &Snapshot{
		records: records,
		byID:    make(map[types.Identifier]int),
	}
	for i, rec := range records {
		for _, id := range rec.Identifiers {
			if id.Resolvable() {
				s.byID[id] = i
			}
		}
	}
	return s
}

// Len returns the number of records in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.records)
}

// Records returns the snapshot's records in export order. Callers must not
// modify them.
func (s *Snapshot) Records() []types.BibliographicRecord {
	return s.records
}

// ByIdentifier returns the record holding the given normalized identifier.
func (s *Snapshot) ByIdentifier(id types.Identifier) (types.BibliographicRecord, bool) {
	i, ok := s.byID[id]
	if !ok {
		return types.BibliographicRecord{}, false
	}
	return s.records[i], true
}
