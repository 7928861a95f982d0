// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cite-engine/internal/emit"
	"github.com/pdiddy/cite-engine/internal/library"
	"github.com/pdiddy/cite-engine/internal/pipeline"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [file]",
	Short: "Resolve citations in a document against a library snapshot",
	Long: `Resolve extracts citation occurrences from the given file (or stdin when
the argument is "-" or omitted), matches each against the library
snapshot, and emits the resolved bibliography. Occurrences that cannot be
resolved are collected into a YAML failure report.

With --strict a nonzero failure count fails the run, but only after the
bibliography and report have been written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("library", "", "library snapshot file (CSL-JSON or CSL-YAML, required)")
	resolveCmd.Flags().String("format", "bibtex", "output format: bibtex, latex, or csl")
	resolveCmd.Flags().String("output", "", "bibliography output file (default stdout)")
	resolveCmd.Flags().String("report", "", "failure report output file (default stderr)")
	resolveCmd.Flags().Bool("strict", false, "fail the run when any occurrence is unresolved")
	resolveCmd.Flags().Bool("offline", false, "skip external lookups, resolve from the library snapshot only")
	resolveCmd.Flags().Int("workers", 0, "resolution worker count (default from config)")
	_ = resolveCmd.MarkFlagRequired("library")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}

	libPath, _ := cmd.Flags().GetString("library")
	lib, err := library.Load(libPath)
	if err != nil {
		return err
	}
	logger.Info().Int("records", lib.Len()).Str("library", libPath).Msg("loaded library snapshot")

	cfg := pipelineConfig()
	cfg.Strict, _ = cmd.Flags().GetBool("strict")
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Workers = workers
	}
	cfg.Offline, _ = cmd.Flags().GetBool("offline")

	p, closeStore, err := pipeline.Build(cfg, lib, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	result, runErr := p.Run(cmd.Context(), text)

	format, _ := cmd.Flags().GetString("format")
	rendered, err := renderRecords(result, format)
	if err != nil {
		return err
	}
	outPath, _ := cmd.Flags().GetString("output")
	if err := writeOutput(outPath, rendered); err != nil {
		return err
	}

	reportYAML, err := result.Report.YAML()
	if err != nil {
		return err
	}
	reportPath, _ := cmd.Flags().GetString("report")
	if reportPath != "" {
		if err := os.WriteFile(reportPath, reportYAML, 0o644); err != nil {
			return fmt.Errorf("writing failure report: %w", err)
		}
	} else if result.Report.FailureCount() > 0 {
		fmt.Fprint(os.Stderr, string(reportYAML))
	}

	// runErr is the strict-mode failure; everything above ran first.
	return runErr
}

func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading input file: %w", err)
	}
	return string(data), nil
}

func renderRecords(result pipeline.Result, format string) ([]byte, error) {
	switch format {
	case "bibtex":
		return []byte(emit.BibTeXList(result.Records)), nil
	case "latex":
		return []byte(emit.LaTeXBibliography(result.Records)), nil
	case "csl":
		return emit.CSLYAML(result.Records)
	default:
		return nil, fmt.Errorf("unknown format %q: expected bibtex, latex, or csl", format)
	}
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing bibliography: %w", err)
	}
	return nil
}
