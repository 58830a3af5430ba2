package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/ontorag/graph"
)

func publishCmd(configPath *string) *cobra.Command {
	var (
		filePath string
		graphIRI string
		kind     string
		natsURL  string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a Turtle artifact to NATS for graph loading",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if natsURL == "" {
				natsURL = cfg.NATS.URL
			}

			var subject string
			switch kind {
			case "ontology":
				subject = graph.OntologyIngestSubject
			case "instances":
				subject = graph.InstanceIngestSubject
			default:
				return fmt.Errorf("unknown --subject %q (want ontology or instances)", kind)
			}

			data, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("read %s: %w", filePath, err)
			}

			pub, err := graph.Connect(natsURL, nil)
			if err != nil {
				return err
			}
			defer pub.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			if err := pub.PublishTurtle(ctx, subject, graphIRI, string(data)); err != nil {
				return err
			}
			fmt.Printf("OK publish: subject=%s graph=%s bytes=%d\n", subject, graphIRI, len(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "Turtle file to publish (required)")
	cmd.Flags().StringVar(&graphIRI, "graph", "", "Named graph IRI (required)")
	cmd.Flags().StringVar(&kind, "subject", "ontology", "Target subject: ontology or instances")
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "NATS server URL (default from config)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("graph")
	return cmd
}
