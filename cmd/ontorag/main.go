// Package main provides the ontorag binary entry point.
// OntoRAG is an ontology-governance pipeline: an LLM proposes ontology
// elements and instance facts, deterministic code decides what enters the
// canonical schema, and every fact keeps a provenance trail to its source.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "ontorag"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "ontorag",
		Short: "Ontology-governance pipeline",
		Long: `OntoRAG turns unstructured documents into a governed RDF knowledge graph.

The pipeline:
- ingest freezes documents into DTOs with replayable provenance
- extract-schema asks an LLM for ontology proposals, chunk by chunk
- build-schema-card deterministically merges proposals into the Schema Card
- extract-instances materializes instance facts with PROV mention nodes
- baselines (FOAF, PROV-O, ...) import from a registered catalog

The LLM proposes; deterministic code decides.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(logLevel)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		ingestCmd(&configPath),
		watchCmd(&configPath),
		extractSchemaCmd(&configPath),
		buildSchemaCardCmd(&configPath),
		exportSchemaTTLCmd(&configPath),
		extractInstancesCmd(&configPath),
		registerBaselineCmd(&configPath),
		importBaselineCmd(&configPath),
		publishCmd(&configPath),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

func configureLogging(logLevel string) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
