// File path: internal/llm/llm_test.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderFallsBackToLocal(t *testing.T) {
	provider := NewProvider(Options{})
	assert.Equal(t, "local", provider.Name())
}

func TestNewProviderSelectsOpenAI(t *testing.T) {
	provider := NewProvider(Options{ChatAPIKey: "sk-test", ChatModel: "gpt-4o-mini"})
	assert.Equal(t, "openai", provider.Name())
}

func TestLocalEmbedDeterministic(t *testing.T) {
	provider := NewProvider(Options{})
	first, err := provider.Embed(context.Background(), []string{"meetup on friday", "pizza social"})
	require.NoError(t, err)
	second, err := provider.Embed(context.Background(), []string{"meetup on friday", "pizza social"})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Len(t, first[0], 64)
	assert.NotEqual(t, first[0], first[1])
}

func TestClassifyFailure(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		kind   FailureKind
		status int
	}{
		{name: "nil", err: nil, kind: FailureNone},
		{name: "missing key", err: fmt.Errorf("chat: %w", ErrMissingAPIKey), kind: FailureMissingCredential},
		{name: "deadline", err: context.DeadlineExceeded, kind: FailureTimeout},
		{name: "wrapped deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), kind: FailureTimeout},
		{name: "api status", err: &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}, kind: FailureStatus, status: 429},
		{name: "request status", err: &openai.RequestError{HTTPStatusCode: http.StatusBadGateway, Err: errors.New("bad gateway")}, kind: FailureStatus, status: 502},
		{name: "transport", err: errors.New("connection refused"), kind: FailureTransport},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, status := ClassifyFailure(tc.err)
			assert.Equal(t, tc.kind, kind)
			assert.Equal(t, tc.status, status)
		})
	}
}
