// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cite-engine/internal/library"
	"github.com/pdiddy/cite-engine/internal/sanitize"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// CSLYAML renders records as a CSL-YAML document consumable by Pandoc and
// reference managers. CSL carries plain text, so no grammar escaping is
// applied, but contributor forms are still normalized so organizations
// land in the literal field.
func CSLYAML(recs []types.BibliographicRecord) ([]byte, error) {
	items := make([]library.CSLItem, len(recs))
	for i, rec := range recs {
		contributors := make([]types.Contributor, len(rec.Contributors))
		for j, c := range rec.Contributors {
			contributors[j] = sanitize.Organizationalize(c)
		}
		rec.Contributors = contributors
		items[i] = library.FromRecord(rec)
	}

	data, err := yaml.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshaling CSL records: %w", err)
	}
	return data, nil
}
