// Package metrics registers the pipeline's prometheus counters on the
// default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LLMCalls counts completion requests by outcome ("ok", "transient_error",
	// "fatal_error").
	LLMCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ontorag_llm_calls_total",
		Help: "LLM completion requests by outcome.",
	}, []string{"outcome"})

	// LLMRetries counts transport-level retries.
	LLMRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ontorag_llm_retries_total",
		Help: "Transport-level LLM request retries.",
	})

	// LLMTokens counts consumed tokens by kind ("prompt", "completion").
	LLMTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ontorag_llm_tokens_total",
		Help: "Tokens consumed by LLM calls.",
	}, []string{"kind"})

	// ChunksProcessed counts chunks by extraction pass and outcome
	// ("proposed", "skipped").
	ChunksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ontorag_chunks_processed_total",
		Help: "Chunks processed by extraction pass and outcome.",
	}, []string{"pass", "outcome"})

	// Warnings counts warnings raised by pipeline stage.
	Warnings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ontorag_warnings_total",
		Help: "Warnings raised by pipeline stage.",
	}, []string{"stage"})

	// DocumentsIngested counts ingested documents.
	DocumentsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ontorag_documents_ingested_total",
		Help: "Documents ingested into the DTO store.",
	})
)
