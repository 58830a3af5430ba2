package extract

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/ontorag/dto"
	"github.com/c360studio/ontorag/instance"
	"github.com/c360studio/ontorag/llm"
	"github.com/c360studio/ontorag/proposal"
	"github.com/c360studio/ontorag/schema"
)

type fakeProposer struct {
	calls atomic.Int32
	// err, keyed by chunk id, is returned instead of a proposal.
	err map[string]error
}

func (f *fakeProposer) ProposeSchema(ctx context.Context, chunk *dto.ChunkDTO, card *schema.Card, tmpl *llm.PromptTemplate) (*proposal.ChunkProposal, error) {
	f.calls.Add(1)
	if err, ok := f.err[chunk.ChunkID]; ok {
		return nil, err
	}
	return &proposal.ChunkProposal{
		ChunkID: chunk.ChunkID,
		ProposedAdditions: proposal.Additions{
			Classes: []proposal.Class{{
				Name:     "Person",
				Evidence: []dto.Evidence{{ChunkID: chunk.ChunkID, Quote: chunk.Text}},
			}},
		},
	}, nil
}

func (f *fakeProposer) ProposeInstances(ctx context.Context, chunk *dto.ChunkDTO, card *schema.Card, tmpl *llm.PromptTemplate) (*instance.ChunkInstances, error) {
	f.calls.Add(1)
	if err, ok := f.err[chunk.ChunkID]; ok {
		return nil, err
	}
	return &instance.ChunkInstances{
		ChunkID: chunk.ChunkID,
		Instances: []instance.Proposal{{
			Class:   "Person",
			LocalID: "p-" + chunk.ChunkID,
		}},
	}, nil
}

func makeChunks(n int) []dto.ChunkDTO {
	chunks := make([]dto.ChunkDTO, n)
	for i := range chunks {
		chunks[i] = dto.ChunkDTO{
			DocumentID: "d1",
			ChunkID:    fmt.Sprintf("c%d", i),
			ChunkIndex: i,
			Text:       fmt.Sprintf("text %d", i),
		}
	}
	return chunks
}

func TestSchemaPassAggregates(t *testing.T) {
	chunks := makeChunks(3)
	prop, err := SchemaPass(context.Background(), chunks, schema.NewCard(""), &fakeProposer{}, Options{})
	require.NoError(t, err)

	require.Len(t, prop.ProposedAdditions.Classes, 1)
	// Evidence from every chunk survives aggregation.
	assert.Len(t, prop.ProposedAdditions.Classes[0].Evidence, 3)
	assert.Empty(t, prop.Warnings)
}

func TestSchemaPassParallelMatchesSequential(t *testing.T) {
	chunks := makeChunks(8)

	seq, err := SchemaPass(context.Background(), chunks, schema.NewCard(""), &fakeProposer{}, Options{Workers: 1})
	require.NoError(t, err)
	par, err := SchemaPass(context.Background(), chunks, schema.NewCard(""), &fakeProposer{}, Options{Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, seq, par)
}

func TestSchemaPassSkipsParseErrors(t *testing.T) {
	chunks := makeChunks(3)
	proposer := &fakeProposer{err: map[string]error{
		"c1": llm.NewParseError("c1", 2, assert.AnError),
	}}

	prop, err := SchemaPass(context.Background(), chunks, schema.NewCard(""), proposer, Options{})
	require.NoError(t, err)

	// The two good chunks still contribute.
	require.Len(t, prop.ProposedAdditions.Classes, 1)
	assert.Len(t, prop.ProposedAdditions.Classes[0].Evidence, 2)
	require.Len(t, prop.Warnings, 1)
	assert.Contains(t, prop.Warnings[0], "chunk c1 skipped")
}

func TestSchemaPassSkipsTimeouts(t *testing.T) {
	chunks := makeChunks(2)
	proposer := &fakeProposer{err: map[string]error{
		"c0": fmt.Errorf("call: %w", context.DeadlineExceeded),
	}}

	prop, err := SchemaPass(context.Background(), chunks, schema.NewCard(""), proposer, Options{})
	require.NoError(t, err)
	assert.Contains(t, prop.Warnings, "chunk c0 skipped: call timed out")
}

func TestSchemaPassAbortsOnFatalError(t *testing.T) {
	chunks := makeChunks(2)
	proposer := &fakeProposer{err: map[string]error{
		"c0": llm.NewFatalError(fmt.Errorf("OPENROUTER_API_KEY is not set")),
	}}

	_, err := SchemaPass(context.Background(), chunks, schema.NewCard(""), proposer, Options{Workers: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk c0")
}

func TestInstancePassPreservesChunkOrder(t *testing.T) {
	chunks := makeChunks(5)
	out, err := InstancePass(context.Background(), chunks, schema.NewCard(""), &fakeProposer{}, Options{Workers: 4})
	require.NoError(t, err)

	require.Len(t, out, 5)
	for i, ci := range out {
		assert.Equal(t, fmt.Sprintf("c%d", i), ci.ChunkID)
	}
}

func TestInstancePassSkippedChunkKeepsWarning(t *testing.T) {
	chunks := makeChunks(2)
	proposer := &fakeProposer{err: map[string]error{
		"c1": llm.NewParseError("c1", 2, assert.AnError),
	}}

	out, err := InstancePass(context.Background(), chunks, schema.NewCard(""), proposer, Options{})
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Empty(t, out[1].Instances)
	require.Len(t, out[1].Warnings, 1)
	assert.Contains(t, out[1].Warnings[0], "chunk c1 skipped")
}

func TestClassifyChunkError(t *testing.T) {
	_, skip := classifyChunkError("c1", llm.NewParseError("c1", 2, assert.AnError))
	assert.True(t, skip)

	_, skip = classifyChunkError("c1", context.DeadlineExceeded)
	assert.True(t, skip)

	_, skip = classifyChunkError("c1", assert.AnError)
	assert.False(t, skip)
}
