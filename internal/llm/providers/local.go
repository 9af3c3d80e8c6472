// File path: internal/llm/providers/local.go
package providers

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

type Message struct {
	Role    string
	Content string
}

type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Embed(ctx context.Context, input []string) ([][]float32, error)
	Name() string
}

// localDim is the embedding width produced by the local provider.
const localDim = 64

// LocalProvider is an offline fallback used when no API key is configured.
// Embeddings are deterministic token-hash vectors: the same text always maps
// to the same vector, and texts sharing tokens land closer together.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	last := messages[len(messages)-1].Content
	return "[local] " + strings.TrimSpace(last), nil
}

func (l *LocalProvider) Embed(ctx context.Context, input []string) ([][]float32, error) {
	vectors := make([][]float32, len(input))
	for i, text := range input {
		vectors[i] = hashEmbedding(text)
	}
	return vectors, nil
}

func (l *LocalProvider) Name() string {
	return "local"
}

func hashEmbedding(text string) []float32 {
	vec := make([]float32, localDim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%localDim]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}
