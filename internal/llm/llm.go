// File path: internal/llm/llm.go
package llm

import (
	"context"
	"errors"
	"net"

	openai "github.com/sashabaranov/go-openai"

	"github.com/november7/memberbot/internal/common"
	"github.com/november7/memberbot/internal/llm/providers"
)

type Message = providers.Message

type Provider = providers.Provider

type Options = providers.OpenAIOptions

// ErrMissingAPIKey is re-exported for callers classifying provider failures.
var ErrMissingAPIKey = providers.ErrMissingAPIKey

// NewProvider selects the OpenAI-compatible provider when at least one API
// key is configured, falling back to the deterministic local provider
// otherwise.
func NewProvider(opts Options) Provider {
	logger := common.Logger()
	if opts.ChatAPIKey == "" && opts.EmbedAPIKey == "" {
		logger.Warn("llm: no API keys configured; falling back to local provider")
		return providers.NewLocalProvider()
	}
	logger.Info("llm: openai provider selected")
	return providers.NewOpenAIProvider(opts)
}

// FailureKind buckets a provider error into the stable failure classes the
// query path reports to callers.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureMissingCredential
	FailureTimeout
	FailureStatus
	FailureTransport
)

// ClassifyFailure maps a provider error to its failure kind. For
// FailureStatus the returned int is the upstream HTTP status code.
func ClassifyFailure(err error) (FailureKind, int) {
	if err == nil {
		return FailureNone, 0
	}
	if errors.Is(err, ErrMissingAPIKey) {
		return FailureMissingCredential, 0
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout, 0
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout, 0
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return FailureStatus, apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return FailureStatus, reqErr.HTTPStatusCode
	}
	return FailureTransport, 0
}
