// Package extract orchestrates the two extraction passes: per-chunk LLM
// calls fanned out over a bounded worker pool, collected in chunk order so
// parallel runs aggregate to the same bytes as sequential runs.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/c360studio/ontorag/dto"
	"github.com/c360studio/ontorag/instance"
	"github.com/c360studio/ontorag/llm"
	"github.com/c360studio/ontorag/metrics"
	"github.com/c360studio/ontorag/proposal"
	"github.com/c360studio/ontorag/schema"
)

// SchemaProposer produces ontology proposals for one chunk.
type SchemaProposer interface {
	ProposeSchema(ctx context.Context, chunk *dto.ChunkDTO, card *schema.Card, tmpl *llm.PromptTemplate) (*proposal.ChunkProposal, error)
}

// InstanceProposer produces instance proposals for one chunk.
type InstanceProposer interface {
	ProposeInstances(ctx context.Context, chunk *dto.ChunkDTO, card *schema.Card, tmpl *llm.PromptTemplate) (*instance.ChunkInstances, error)
}

// Options configures an extraction pass.
type Options struct {
	// Workers bounds the worker pool. Zero or negative means sequential.
	Workers int

	// Template overrides the embedded prompt template.
	Template *llm.PromptTemplate

	Logger *slog.Logger
}

func (o Options) workers() int {
	if o.Workers < 1 {
		return 1
	}
	return o.Workers
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// SchemaPass runs schema extraction over the chunks and aggregates the
// results into one document proposal. A chunk whose response cannot be
// parsed, or whose call times out, contributes only a warning; any other
// failure aborts the pass.
func SchemaPass(ctx context.Context, chunks []dto.ChunkDTO, card *schema.Card, proposer SchemaProposer, opts Options) (*proposal.DocumentProposal, error) {
	log := opts.logger()
	results := make([]*proposal.ChunkProposal, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	for i := range chunks {
		g.Go(func() error {
			chunk := &chunks[i]
			p, err := proposer.ProposeSchema(gctx, chunk, card, opts.Template)
			if err != nil {
				warning, skip := classifyChunkError(chunk.ChunkID, err)
				if !skip {
					return fmt.Errorf("chunk %s: %w", chunk.ChunkID, err)
				}
				log.Warn("chunk skipped", "chunk_id", chunk.ChunkID, "error", err)
				metrics.ChunksProcessed.WithLabelValues("schema", "skipped").Inc()
				results[i] = &proposal.ChunkProposal{
					ChunkID:  chunk.ChunkID,
					Warnings: []string{warning},
				}
				return nil
			}
			metrics.ChunksProcessed.WithLabelValues("schema", "proposed").Inc()
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ordered := make([]proposal.ChunkProposal, 0, len(results))
	for _, p := range results {
		if p != nil {
			ordered = append(ordered, *p)
		}
	}
	return proposal.Aggregate(ordered), nil
}

// InstancePass runs instance extraction over the chunks, preserving chunk
// order. Skipped chunks contribute a warnings-only entry so the warning
// survives into the materialized graph.
func InstancePass(ctx context.Context, chunks []dto.ChunkDTO, card *schema.Card, proposer InstanceProposer, opts Options) ([]instance.ChunkInstances, error) {
	log := opts.logger()
	results := make([]*instance.ChunkInstances, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	for i := range chunks {
		g.Go(func() error {
			chunk := &chunks[i]
			ci, err := proposer.ProposeInstances(gctx, chunk, card, opts.Template)
			if err != nil {
				warning, skip := classifyChunkError(chunk.ChunkID, err)
				if !skip {
					return fmt.Errorf("chunk %s: %w", chunk.ChunkID, err)
				}
				log.Warn("chunk skipped", "chunk_id", chunk.ChunkID, "error", err)
				metrics.ChunksProcessed.WithLabelValues("instances", "skipped").Inc()
				results[i] = &instance.ChunkInstances{
					ChunkID:   chunk.ChunkID,
					Instances: []instance.Proposal{},
					Warnings:  []string{warning},
				}
				return nil
			}
			metrics.ChunksProcessed.WithLabelValues("instances", "proposed").Inc()
			results[i] = ci
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ordered := make([]instance.ChunkInstances, 0, len(results))
	for _, ci := range results {
		if ci != nil {
			ordered = append(ordered, *ci)
		}
	}
	return ordered, nil
}

// classifyChunkError decides whether a chunk failure is survivable. Parse
// failures and per-call timeouts drop the chunk with a warning; anything
// else aborts the pass.
func classifyChunkError(chunkID string, err error) (warning string, skip bool) {
	switch {
	case llm.IsParseError(err):
		return fmt.Sprintf("chunk %s skipped: %v", chunkID, err), true
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("chunk %s skipped: call timed out", chunkID), true
	default:
		return "", false
	}
}
