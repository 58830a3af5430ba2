package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/c360studio/ontorag/config"
	"github.com/c360studio/ontorag/metrics"
	"github.com/c360studio/ontorag/proposal"
	"github.com/c360studio/ontorag/schema"
)

// loadConfig resolves the effective configuration: the file named by
// --config when given, defaults otherwise.
func loadConfig(configPath *string) (*config.Config, error) {
	if configPath != nil && *configPath != "" {
		cfg, err := config.LoadFromFile(*configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return config.DefaultConfig(), nil
}

// loadCardOrNew loads a Schema Card from path, or starts an empty card in
// the given namespace when path is empty or missing.
func loadCardOrNew(path, namespace string) (*schema.Card, error) {
	if path == "" {
		return schema.NewCard(namespace), nil
	}
	card, err := schema.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("no prior schema card, starting fresh", "path", path)
			return schema.NewCard(namespace), nil
		}
		return nil, err
	}
	return card, nil
}

// readProposal reads an aggregated document proposal from a JSON file.
func readProposal(path string) (*proposal.DocumentProposal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read proposal %s: %w", path, err)
	}
	var prop proposal.DocumentProposal
	if err := json.Unmarshal(data, &prop); err != nil {
		return nil, fmt.Errorf("parse proposal %s: %w", path, err)
	}
	return &prop, nil
}

// writeJSON writes v as indented JSON, creating parent directories.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeFile writes text output, creating parent directories.
func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// printWarnings echoes pipeline warnings to stderr so stdout stays
// machine-readable, and counts them under the given stage.
func printWarnings(stage string, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "WARN %s\n", w)
	}
	if len(warnings) > 0 {
		metrics.Warnings.WithLabelValues(stage).Add(float64(len(warnings)))
	}
}
