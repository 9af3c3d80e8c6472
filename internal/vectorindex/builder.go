// File path: internal/vectorindex/builder.go
package vectorindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/november7/memberbot/internal/common"
	"github.com/november7/memberbot/internal/corpus"
)

// embedBatchSize bounds how many texts go into a single embedding request.
const embedBatchSize = 64

// ErrEmptyCorpus indicates that no messages survived filtering; an index is
// never built over zero vectors.
var ErrEmptyCorpus = errors.New("no valid messages to index")

// EmbeddingError wraps any embedding-model failure encountered during a
// build, including dimension disagreements between batches.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string { return "embedding failed: " + e.Err.Error() }

func (e *EmbeddingError) Unwrap() error { return e.Err }

// Embedder is the minimal embedding-model contract the builder needs: one
// fixed-length vector per input, in matching order.
type Embedder interface {
	Embed(ctx context.Context, input []string) ([][]float32, error)
}

// Build filters out messages with empty trimmed text, embeds the survivors
// in batches, and returns the immutable index together with the retained
// messages. The position of a message in the returned slice is its ordinal
// and the sole join key against the index.
func Build(ctx context.Context, messages []corpus.Message, embedder Embedder) (*FlatIndex, []corpus.Message, error) {
	logger := common.Logger()
	valid := corpus.FilterValid(messages)
	if len(valid) == 0 {
		return nil, nil, ErrEmptyCorpus
	}
	logger.Info("vectorindex: building index", "messages", len(messages), "valid", len(valid))

	texts := make([]string, len(valid))
	for i, msg := range valid {
		texts[i] = msg.Text
	}

	vectors := make([][]float32, 0, len(valid))
	dim := 0
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, nil, &EmbeddingError{Err: err}
		}
		if len(batch) != end-start {
			return nil, nil, &EmbeddingError{Err: fmt.Errorf("batch returned %d vectors, want %d", len(batch), end-start)}
		}
		for i, vec := range batch {
			if dim == 0 {
				dim = len(vec)
			}
			if len(vec) == 0 || len(vec) != dim {
				return nil, nil, &EmbeddingError{Err: fmt.Errorf("vector %d has dimension %d, want %d", start+i, len(vec), dim)}
			}
		}
		vectors = append(vectors, batch...)
	}

	index, err := NewFlatIndex(vectors)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("vectorindex: index built", "vectors", index.Len(), "dim", index.Dim())
	return index, valid, nil
}
