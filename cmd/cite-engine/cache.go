// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cite-engine/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and prune the lookup cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache entry count and oldest entry age",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache()
		if err != nil {
			return err
		}
		defer store.Close()

		count, oldest, err := store.Info()
		if err != nil {
			return err
		}
		fmt.Printf("entries: %d\n", count)
		if count > 0 {
			fmt.Printf("oldest: %s\n", oldest.Round(time.Second))
		}
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove cache entries older than the TTL",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache()
		if err != nil {
			return err
		}
		defer store.Close()

		olderThan, _ := cmd.Flags().GetDuration("older-than")
		if olderThan == 0 {
			olderThan = pipelineConfig().Cache.TTL
		}
		removed, err := store.Prune(olderThan)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d entries older than %s\n", removed, olderThan)
		return nil
	},
}

func init() {
	cachePruneCmd.Flags().Duration("older-than", 0, "age threshold (default: configured TTL)")

	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCache() (*cache.Store, error) {
	store, err := cache.Open(pipelineConfig().Cache.Dir, nil)
	if err != nil {
		return nil, fmt.Errorf("opening lookup cache: %w", err)
	}
	return store, nil
}
