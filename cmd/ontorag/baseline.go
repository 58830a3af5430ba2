package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/ontorag/catalog"
	"github.com/c360studio/ontorag/schema"
)

func registerBaselineCmd(configPath *string) *cobra.Command {
	var (
		label       string
		description string
		tags        []string
		namespace   string
	)

	cmd := &cobra.Command{
		Use:   "register-baseline <id> <ttl-file>",
		Short: "Register a baseline ontology in the catalog",
		Long: `Register-baseline parses a Turtle ontology (FOAF, PROV-O, a company
vocabulary), records it in the catalog manifest and copies the file into
the catalog directory. The dominant namespace is detected from the
ontology itself unless --namespace overrides it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cat, err := catalog.Open(cfg.Ontology.CatalogDir)
			if err != nil {
				return err
			}

			entry, err := cat.Register(args[0], args[1], label, description, tags, namespace)
			if err != nil {
				return err
			}
			fmt.Printf("OK register-baseline: id=%s namespace=%s path=%s\n",
				args[0], entry.Namespace, entry.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "Human-readable label")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Tags (comma-separated)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Namespace override (default: auto-detected)")
	return cmd
}

func importBaselineCmd(configPath *string) *cobra.Command {
	var (
		cardPath string
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "import-baseline <id>",
		Short: "Merge a registered baseline ontology into a Schema Card",
		Long: `Import-baseline converts a registered baseline into a proposal whose
elements carry the baseline's id as their origin, then merges it under
the same deterministic rules as LLM proposals. Origin is immutable, so a
term imported from a baseline keeps that origin even if the LLM later
proposes the same name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cat, err := catalog.Open(cfg.Ontology.CatalogDir)
			if err != nil {
				return err
			}
			frag, err := cat.Import(args[0])
			if err != nil {
				return err
			}
			printWarnings("import", frag.Warnings)

			prior, err := loadCardOrNew(cardPath, cfg.Ontology.Namespace)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = cardPath
			}

			card := schema.Merge(prior, frag.Proposal())
			printWarnings("merge", card.Warnings)
			if err := card.Save(outPath); err != nil {
				return err
			}
			fmt.Printf("OK import-baseline: id=%s classes=%d datatype_properties=%d object_properties=%d out=%s\n",
				args[0], len(frag.Classes), len(frag.DatatypeProperties), len(frag.ObjectProperties), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&cardPath, "card", "", "Schema Card to merge into (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output card path (default: overwrite --card)")
	_ = cmd.MarkFlagRequired("card")
	return cmd
}
