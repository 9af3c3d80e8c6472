// File path: internal/qa/service.go
package qa

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/november7/memberbot/internal/common"
	"github.com/november7/memberbot/internal/common/telemetry"
	"github.com/november7/memberbot/internal/llm"
	"github.com/november7/memberbot/internal/retriever"
)

// Fixed user-facing answers for the degraded outcomes. The query path is
// total: every failure maps to one of these or to a descriptive error string,
// never to a propagated error.
const (
	IndexUnavailableAnswer = "Error: Embeddings not built. Run 'memberbot index' first."
	NoContextAnswer        = "I couldn't find any relevant information in the messages to answer your question."
)

// DefaultGenerationTimeout bounds a single answer-model call so the pipeline
// never blocks indefinitely.
const DefaultGenerationTimeout = 10 * time.Second

// ContextRetriever is the retrieval capability the orchestrator depends on.
type ContextRetriever interface {
	Loaded() bool
	Retrieve(ctx context.Context, question string, k int) ([]retriever.ContextItem, error)
}

// Options tune the orchestrator. Zero values fall back to defaults.
type Options struct {
	TopK              int
	GenerationTimeout time.Duration
}

// Service is the top-level question-answering pipeline: retrieve, assemble,
// generate, with graceful degradation at each step.
type Service struct {
	retriever  ContextRetriever
	provider   llm.Provider
	topK       int
	genTimeout time.Duration
}

func NewService(retr ContextRetriever, provider llm.Provider, opts Options) *Service {
	topK := opts.TopK
	if topK < 1 {
		topK = retriever.DefaultTopK
	}
	timeout := opts.GenerationTimeout
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	return &Service{retriever: retr, provider: provider, topK: topK, genTimeout: timeout}
}

// Answer runs the full pipeline for one question and always returns a
// string. No retries are made against the answer model; one failed call
// yields one error string.
func (s *Service) Answer(ctx context.Context, question string) string {
	logger := common.Logger()
	if !s.retriever.Loaded() {
		logger.Warn("qa: answer requested with no index loaded")
		telemetry.RecordAnswer(true)
		return IndexUnavailableAnswer
	}
	items, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		logger.Error("qa: retrieval failed", "error", err)
		telemetry.RecordAnswer(true)
		return describeFailure("embedding the question", err)
	}
	prompt, ok := AssemblePrompt(items, question)
	if !ok {
		logger.Info("qa: no relevant context found")
		telemetry.RecordAnswer(false)
		return NoContextAnswer
	}
	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()
	answer, err := s.provider.Chat(genCtx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		logger.Error("qa: generation failed", "error", err)
		telemetry.RecordAnswer(true)
		return describeFailure("generating the answer", err)
	}
	logger.Debug("qa: answer generated", "context_items", len(items))
	telemetry.RecordAnswer(false)
	return strings.TrimSpace(answer)
}

// describeFailure maps a provider error to a stable user-facing string that
// names the failure class without leaking a raised error to the caller.
func describeFailure(operation string, err error) string {
	kind, status := llm.ClassifyFailure(err)
	switch kind {
	case llm.FailureMissingCredential:
		return fmt.Sprintf("Error: no API key configured for %s.", operation)
	case llm.FailureTimeout:
		return fmt.Sprintf("Error: %s timed out.", operation)
	case llm.FailureStatus:
		return fmt.Sprintf("Error: %s failed with upstream status %d.", operation, status)
	default:
		return fmt.Sprintf("Error: %s failed: %v", operation, err)
	}
}
