// File path: internal/retriever/retriever.go

// Package retriever serves nearest-neighbor retrieval over a loaded
// (index, metadata) snapshot. The snapshot is installed atomically and shared
// read-only across requests; rebuilds install a fresh snapshot while in-flight
// readers finish against the old one.
package retriever

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/november7/memberbot/internal/common"
	"github.com/november7/memberbot/internal/common/telemetry"
	"github.com/november7/memberbot/internal/corpus"
	"github.com/november7/memberbot/internal/llm"
	"github.com/november7/memberbot/internal/vectorindex"
)

// DefaultTopK is the number of results retrieved when the caller does not
// specify k.
const DefaultTopK = 5

// ContextItem is a search result resolved against message metadata, ready
// for context assembly.
type ContextItem struct {
	MessageText string  `json:"message"`
	UserName    string  `json:"user_name"`
	Timestamp   string  `json:"timestamp"`
	Distance    float64 `json:"distance"`
}

type snapshot struct {
	index    *vectorindex.FlatIndex
	messages []corpus.Message
}

// Retriever embeds questions and resolves nearest-neighbor matches against
// the loaded snapshot. Safe for concurrent use.
type Retriever struct {
	provider llm.Provider
	state    atomic.Pointer[snapshot]
}

func New(provider llm.Provider) *Retriever {
	return &Retriever{provider: provider}
}

// Install atomically swaps in a new (index, metadata) pair. The pair must be
// consistent; in-flight retrievals continue against the previous snapshot.
func (r *Retriever) Install(index *vectorindex.FlatIndex, messages []corpus.Message) error {
	if index == nil {
		return fmt.Errorf("index required")
	}
	if index.Len() != len(messages) {
		return fmt.Errorf("inconsistent snapshot: %d vectors, %d messages", index.Len(), len(messages))
	}
	r.state.Store(&snapshot{index: index, messages: messages})
	common.Logger().Info("retriever: snapshot installed", "messages", len(messages), "dim", index.Dim())
	return nil
}

// Loaded reports whether a snapshot has been installed.
func (r *Retriever) Loaded() bool {
	return r.state.Load() != nil
}

// Count returns the number of indexed messages, zero when not loaded.
func (r *Retriever) Count() int {
	snap := r.state.Load()
	if snap == nil {
		return 0
	}
	return snap.index.Len()
}

// Retrieve embeds the question and returns the k nearest messages with their
// distances, closest first. When no snapshot is loaded it degrades to an
// empty result rather than failing, so the caller can fall back gracefully.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]ContextItem, error) {
	snap := r.state.Load()
	if snap == nil {
		return nil, nil
	}
	if k < 1 {
		return nil, fmt.Errorf("retrieve: %w: got %d", vectorindex.ErrInvalidK, k)
	}
	logger := common.Logger()
	start := time.Now()
	vectors, err := r.provider.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed question: got %d vectors, want 1", len(vectors))
	}
	results, err := snap.index.Search(vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	items := make([]ContextItem, len(results))
	for i, res := range results {
		msg := snap.messages[res.Ordinal]
		items[i] = ContextItem{
			MessageText: msg.Text,
			UserName:    msg.UserName,
			Timestamp:   msg.Timestamp,
			Distance:    res.Distance,
		}
	}
	telemetry.RecordRetrieval(time.Since(start))
	logger.Debug("retriever: retrieval complete", "question_length", len(question), "k", k, "results", len(items))
	return items, nil
}
