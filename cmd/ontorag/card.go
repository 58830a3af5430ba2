package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/ontorag/schema"
	"github.com/c360studio/ontorag/ttl"
)

func buildSchemaCardCmd(configPath *string) *cobra.Command {
	var (
		previousPath string
		proposalPath string
		outPath      string
		namespace    string
	)

	cmd := &cobra.Command{
		Use:   "build-schema-card",
		Short: "Merge a document proposal into the canonical Schema Card",
		Long: `Build-schema-card is the deterministic governance step: it merges an
aggregated proposal into the prior card under fixed rules (longer
description wins, first origin wins, evidence unions, references to
unknown classes produce warnings) and advances the card version.

The merge is pure: the same prior card and proposal always produce the
same card.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if namespace == "" {
				namespace = cfg.Ontology.Namespace
			}

			prior, err := loadCardOrNew(previousPath, namespace)
			if err != nil {
				return err
			}
			prop, err := readProposal(proposalPath)
			if err != nil {
				return err
			}

			card := schema.Merge(prior, prop)
			printWarnings("merge", card.Warnings)
			if err := card.Save(outPath); err != nil {
				return err
			}
			fmt.Printf("OK build-schema-card: version=%s classes=%d datatype_properties=%d object_properties=%d out=%s\n",
				card.Version, len(card.Classes), len(card.DatatypeProperties), len(card.ObjectProperties), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&previousPath, "previous", "", "Prior Schema Card JSON (optional)")
	cmd.Flags().StringVar(&proposalPath, "proposal", "", "Document proposal JSON (required)")
	cmd.Flags().StringVar(&outPath, "out", "schema_card.json", "Output Schema Card JSON")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Ontology namespace for a fresh card (default from config)")
	_ = cmd.MarkFlagRequired("proposal")
	return cmd
}

func exportSchemaTTLCmd(configPath *string) *cobra.Command {
	var (
		cardPath string
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "export-schema-ttl",
		Short: "Export a Schema Card as OWL/RDFS Turtle",
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := schema.Load(cardPath)
			if err != nil {
				return err
			}
			if err := writeFile(outPath, ttl.Emit(card)); err != nil {
				return err
			}
			fmt.Printf("OK export-schema-ttl: version=%s out=%s\n", card.Version, outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&cardPath, "card", "", "Schema Card JSON (required)")
	cmd.Flags().StringVar(&outPath, "out", "ontology.ttl", "Output Turtle file")
	_ = cmd.MarkFlagRequired("card")
	return cmd
}
