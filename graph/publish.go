// Package graph publishes materialized Turtle artifacts to NATS for
// downstream graph loaders.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects for graph ingestion.
const (
	OntologyIngestSubject = "ontorag.ingest.ontology"
	InstanceIngestSubject = "ontorag.ingest.instances"
)

// IngestMessage is the message format for graph ingestion. The payload is a
// complete Turtle document destined for one named graph.
type IngestMessage struct {
	// Graph is the named graph IRI the loader should target.
	Graph string `json:"graph"`

	// ContentType is the RDF serialization of Payload.
	ContentType string `json:"content_type"`

	// Payload is the serialized RDF.
	Payload string `json:"payload"`

	PublishedAt time.Time `json:"published_at"`
}

// Publisher publishes ingest messages over a NATS connection.
type Publisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// Connect dials NATS and returns a publisher. An empty URL selects the
// default local server.
func Connect(url string, logger *slog.Logger) (*Publisher, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	nc, err := nats.Connect(url,
		nats.Name("ontorag-publisher"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	return &Publisher{nc: nc, logger: logger}, nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			p.logger.Warn("drain nats connection", "error", err)
		}
	}
}

// PublishTurtle publishes one Turtle document to a subject, targeting the
// given named graph, and flushes so the caller knows the server has it.
func (p *Publisher) PublishTurtle(ctx context.Context, subject, graphIRI, turtle string) error {
	msg := IngestMessage{
		Graph:       graphIRI,
		ContentType: "text/turtle",
		Payload:     turtle,
		PublishedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal ingest message: %w", err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush to %s: %w", subject, err)
	}

	p.logger.Info("published turtle",
		"subject", subject,
		"graph", graphIRI,
		"bytes", len(data))
	return nil
}
