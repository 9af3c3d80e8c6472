// File path: internal/qa/service_test.go
package qa

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/november7/memberbot/internal/llm"
	"github.com/november7/memberbot/internal/retriever"
)

// scriptedRetriever implements ContextRetriever with canned results.
type scriptedRetriever struct {
	loaded bool
	items  []retriever.ContextItem
	err    error
	calls  int
}

func (s *scriptedRetriever) Loaded() bool { return s.loaded }

func (s *scriptedRetriever) Retrieve(ctx context.Context, question string, k int) ([]retriever.ContextItem, error) {
	s.calls++
	return s.items, s.err
}

// scriptedProvider implements llm.Provider with a canned chat outcome.
type scriptedProvider struct {
	answer    string
	err       error
	block     bool
	chatCalls int
	lastChat  string
}

func (p *scriptedProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	p.chatCalls++
	p.lastChat = messages[len(messages)-1].Content
	if p.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return p.answer, p.err
}

func (p *scriptedProvider) Embed(ctx context.Context, input []string) ([][]float32, error) {
	return nil, errors.New("not used")
}

func (p *scriptedProvider) Name() string { return "scripted" }

var someContext = []retriever.ContextItem{
	{MessageText: "Meetup on Friday at 5pm", UserName: "Alice", Distance: 0.2},
}

func TestAnswerIndexUnavailable(t *testing.T) {
	retr := &scriptedRetriever{loaded: false}
	provider := &scriptedProvider{answer: "should not be called"}
	svc := NewService(retr, provider, Options{})

	answer := svc.Answer(context.Background(), "anything")

	assert.Equal(t, IndexUnavailableAnswer, answer)
	assert.Zero(t, retr.calls, "no retrieval when index unavailable")
	assert.Zero(t, provider.chatCalls, "no generation when index unavailable")
}

func TestAnswerNoContextFallback(t *testing.T) {
	retr := &scriptedRetriever{loaded: true, items: nil}
	provider := &scriptedProvider{answer: "should not be called"}
	svc := NewService(retr, provider, Options{})

	answer := svc.Answer(context.Background(), "anything")

	assert.Equal(t, NoContextAnswer, answer)
	assert.Zero(t, provider.chatCalls, "generator never invoked without context")
}

func TestAnswerSuccessTrimsGeneratedText(t *testing.T) {
	retr := &scriptedRetriever{loaded: true, items: someContext}
	provider := &scriptedProvider{answer: "  The meetup is Friday at 5pm.  \n"}
	svc := NewService(retr, provider, Options{})

	answer := svc.Answer(context.Background(), "when is the meetup")

	assert.Equal(t, "The meetup is Friday at 5pm.", answer)
	assert.Equal(t, 1, provider.chatCalls)
	assert.Contains(t, provider.lastChat, "- Alice: Meetup on Friday at 5pm")
	assert.Contains(t, provider.lastChat, "Question: when is the meetup")
}

func TestAnswerGeneratorTimeout(t *testing.T) {
	retr := &scriptedRetriever{loaded: true, items: someContext}
	provider := &scriptedProvider{block: true}
	svc := NewService(retr, provider, Options{GenerationTimeout: 20 * time.Millisecond})

	answer := svc.Answer(context.Background(), "q")

	assert.Equal(t, "Error: generating the answer timed out.", answer)
}

func TestAnswerGeneratorStatusFailure(t *testing.T) {
	retr := &scriptedRetriever{loaded: true, items: someContext}
	provider := &scriptedProvider{err: &openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable}}
	svc := NewService(retr, provider, Options{})

	answer := svc.Answer(context.Background(), "q")

	assert.Equal(t, "Error: generating the answer failed with upstream status 503.", answer)
}

func TestAnswerGeneratorMissingCredential(t *testing.T) {
	retr := &scriptedRetriever{loaded: true, items: someContext}
	provider := &scriptedProvider{err: fmt.Errorf("chat: %w", llm.ErrMissingAPIKey)}
	svc := NewService(retr, provider, Options{})

	answer := svc.Answer(context.Background(), "q")

	assert.Equal(t, "Error: no API key configured for generating the answer.", answer)
}

func TestAnswerEmbeddingFailure(t *testing.T) {
	retr := &scriptedRetriever{loaded: true, err: errors.New("embedding backend down")}
	provider := &scriptedProvider{answer: "unused"}
	svc := NewService(retr, provider, Options{})

	answer := svc.Answer(context.Background(), "q")

	assert.True(t, strings.HasPrefix(answer, "Error: embedding the question failed:"), answer)
	assert.Zero(t, provider.chatCalls)
}

func TestAnswerIsTotalForAwkwardInput(t *testing.T) {
	retr := &scriptedRetriever{loaded: true, items: someContext}
	provider := &scriptedProvider{answer: "ok"}
	svc := NewService(retr, provider, Options{})

	for _, question := range []string{"", strings.Repeat("x", 100_000), "какой сегодня день? 🍕"} {
		answer := svc.Answer(context.Background(), question)
		require.NotEmpty(t, answer)
	}
}
