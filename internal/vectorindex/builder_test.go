// File path: internal/vectorindex/builder_test.go
package vectorindex

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/november7/memberbot/internal/corpus"
)

// stubEmbedder returns one vector per input whose first component encodes the
// input length, keeping output order observable.
type stubEmbedder struct {
	dim     int
	batches int
	err     error
	ragged  bool
}

func (s *stubEmbedder) Embed(ctx context.Context, input []string) ([][]float32, error) {
	s.batches++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(input))
	for i, text := range input {
		dim := s.dim
		if s.ragged && i%2 == 1 {
			dim++
		}
		vec := make([]float32, dim)
		vec[0] = float32(len(text))
		out[i] = vec
	}
	return out, nil
}

func TestBuildFiltersAndAssignsOrdinals(t *testing.T) {
	messages := []corpus.Message{
		{Text: "Meetup on Friday at 5pm", UserName: "Alice"},
		{Text: "  ", UserName: "Bob"},
		{Text: "Pizza social next week", UserName: "Carol"},
	}
	index, kept, err := Build(context.Background(), messages, &stubEmbedder{dim: 4})
	require.NoError(t, err)
	require.Len(t, kept, 2)
	assert.Equal(t, "Alice", kept[0].UserName)
	assert.Equal(t, "Carol", kept[1].UserName)
	assert.Equal(t, 2, index.Len())
	assert.Equal(t, 4, index.Dim())
	// Vector at ordinal 0 must correspond to Alice's message.
	assert.Equal(t, float32(len("Meetup on Friday at 5pm")), index.Vectors()[0][0])
	assert.Equal(t, float32(len("Pizza social next week")), index.Vectors()[1][0])
}

func TestBuildEmptyCorpus(t *testing.T) {
	_, _, err := Build(context.Background(), nil, &stubEmbedder{dim: 4})
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, _, err = Build(context.Background(), []corpus.Message{{Text: "   "}}, &stubEmbedder{dim: 4})
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestBuildWrapsEmbedderError(t *testing.T) {
	cause := errors.New("model unavailable")
	_, _, err := Build(context.Background(), []corpus.Message{{Text: "hello"}}, &stubEmbedder{err: cause})
	var embErr *EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.ErrorIs(t, err, cause)
}

func TestBuildRejectsDimensionDrift(t *testing.T) {
	messages := []corpus.Message{{Text: "one"}, {Text: "two"}}
	_, _, err := Build(context.Background(), messages, &stubEmbedder{dim: 3, ragged: true})
	var embErr *EmbeddingError
	assert.ErrorAs(t, err, &embErr)
}

func TestBuildBatchesLargeCorpora(t *testing.T) {
	messages := make([]corpus.Message, 150)
	for i := range messages {
		messages[i] = corpus.Message{Text: "message", UserName: "u"}
	}
	embedder := &stubEmbedder{dim: 2}
	index, kept, err := Build(context.Background(), messages, embedder)
	require.NoError(t, err)
	assert.Equal(t, 150, index.Len())
	assert.Len(t, kept, 150)
	assert.Equal(t, 3, embedder.batches)
}
