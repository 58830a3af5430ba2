package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/c360studio/ontorag/extract"
	"github.com/c360studio/ontorag/instance"
	"github.com/c360studio/ontorag/llm"
	"github.com/c360studio/ontorag/storage"
)

// newLLMClient validates the OpenRouter config (the API key is only
// required here, at the call boundary) and builds a client.
func newLLMClient(cfg llm.Config) (*llm.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return llm.NewClient(cfg), nil
}

func loadTemplateFlag(path string, fallback *llm.PromptTemplate) (*llm.PromptTemplate, error) {
	if path == "" {
		return fallback, nil
	}
	return llm.LoadTemplate(path)
}

func extractSchemaCmd(configPath *string) *cobra.Command {
	var (
		chunksPath   string
		cardPath     string
		outPath      string
		workers      int
		templatePath string
	)

	cmd := &cobra.Command{
		Use:   "extract-schema",
		Short: "Propose ontology elements from ingested chunks",
		Long: `Extract-schema runs the schema pass: each chunk is sent to the LLM with
the current Schema Card as context, the per-chunk proposals are aggregated
deterministically, and the result is written as a document proposal JSON.

Chunks that fail to produce valid JSON after one retry are skipped with a
warning; the pass continues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if workers == 0 {
				workers = cfg.Pipeline.Workers
			}
			if templatePath == "" {
				templatePath = cfg.LLM.PromptTemplate
			}

			chunks, err := storage.NewChunkStore(chunksPath).ReadAll()
			if err != nil {
				return err
			}
			if len(chunks) == 0 {
				return fmt.Errorf("no chunks in %s", chunksPath)
			}

			card, err := loadCardOrNew(cardPath, cfg.Ontology.Namespace)
			if err != nil {
				return err
			}
			tmpl, err := loadTemplateFlag(templatePath, llm.DefaultSchemaTemplate())
			if err != nil {
				return err
			}
			client, err := newLLMClient(cfg.LLMClientConfig())
			if err != nil {
				return err
			}

			prop, err := extract.SchemaPass(cmd.Context(), chunks, card, client, extract.Options{
				Workers:  workers,
				Template: tmpl,
			})
			if err != nil {
				return err
			}

			printWarnings("extract", prop.Warnings)
			if err := writeJSON(outPath, prop); err != nil {
				return err
			}
			slog.Info("schema pass complete",
				"chunks", len(chunks),
				"classes", len(prop.ProposedAdditions.Classes),
				"datatype_properties", len(prop.ProposedAdditions.DatatypeProperties),
				"object_properties", len(prop.ProposedAdditions.ObjectProperties),
				"warnings", len(prop.Warnings))
			fmt.Printf("OK extract-schema: chunks=%d out=%s\n", len(chunks), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&chunksPath, "chunks", "", "Chunk JSONL file (required)")
	cmd.Flags().StringVar(&cardPath, "card", "", "Prior Schema Card JSON (optional)")
	cmd.Flags().StringVar(&outPath, "out", "proposal.json", "Output proposal JSON")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (default from config)")
	cmd.Flags().StringVar(&templatePath, "template", "", "Prompt template override")
	_ = cmd.MarkFlagRequired("chunks")
	return cmd
}

func extractInstancesCmd(configPath *string) *cobra.Command {
	var (
		chunksPath   string
		cardPath     string
		outPath      string
		workers      int
		templatePath string
	)

	cmd := &cobra.Command{
		Use:   "extract-instances",
		Short: "Materialize instance facts against a Schema Card",
		Long: `Extract-instances runs the instance pass: each chunk is sent to the LLM
with the Schema Card, the returned facts are validated against the card's
classes and properties, and the surviving facts are materialized as Turtle
with one PROV mention node per piece of evidence.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if workers == 0 {
				workers = cfg.Pipeline.Workers
			}

			chunks, err := storage.NewChunkStore(chunksPath).ReadAll()
			if err != nil {
				return err
			}
			if len(chunks) == 0 {
				return fmt.Errorf("no chunks in %s", chunksPath)
			}

			card, err := loadCardOrNew(cardPath, cfg.Ontology.Namespace)
			if err != nil {
				return err
			}
			tmpl, err := loadTemplateFlag(templatePath, llm.DefaultInstanceTemplate())
			if err != nil {
				return err
			}
			client, err := newLLMClient(cfg.LLMClientConfig())
			if err != nil {
				return err
			}

			perChunk, err := extract.InstancePass(cmd.Context(), chunks, card, client, extract.Options{
				Workers:  workers,
				Template: tmpl,
			})
			if err != nil {
				return err
			}

			result := instance.Materialize(perChunk, card)
			printWarnings("materialize", result.Warnings)
			if err := writeFile(outPath, result.Turtle); err != nil {
				return err
			}
			fmt.Printf("OK extract-instances: chunks=%d warnings=%d out=%s\n",
				len(chunks), len(result.Warnings), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&chunksPath, "chunks", "", "Chunk JSONL file (required)")
	cmd.Flags().StringVar(&cardPath, "card", "", "Schema Card JSON (required)")
	cmd.Flags().StringVar(&outPath, "out", "instances.ttl", "Output Turtle file")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (default from config)")
	cmd.Flags().StringVar(&templatePath, "template", "", "Prompt template override")
	_ = cmd.MarkFlagRequired("chunks")
	_ = cmd.MarkFlagRequired("card")
	return cmd
}
