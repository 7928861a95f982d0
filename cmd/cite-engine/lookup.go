// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cite-engine/internal/cache"
	"github.com/pdiddy/cite-engine/internal/identifier"
	"github.com/pdiddy/cite-engine/internal/lookup"
	"github.com/pdiddy/cite-engine/pkg/types"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <identifier-or-query>",
	Short: "Fetch bibliographic metadata for one identifier or query",
	Long: `Lookup normalizes the argument and fetches metadata from the matching
backend: CrossRef for DOIs (with DataCite fallback), arXiv for preprint
IDs. Free text goes to CrossRef's bibliographic search. Responses are
cached; repeated lookups inside the TTL never hit the network.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	store, err := cache.Open(cfg.Cache.Dir, nil)
	if err != nil {
		return fmt.Errorf("opening lookup cache: %w", err)
	}
	defer store.Close()

	client := lookup.NewClient(cfg.Lookup,
		lookup.WithCache(store),
		lookup.WithLogger(logger),
	)

	raw := strings.Join(args, " ")
	id := identifier.Normalize(raw)

	var payload types.Payload
	switch id.Kind {
	case types.KindDOI, types.KindPreprint:
		payload, err = client.FetchByIdentifier(cmd.Context(), id, cfg.Cache.TTL)
	default:
		payload, err = client.FetchByQuery(cmd.Context(), raw, cfg.Cache.TTL)
	}
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}
