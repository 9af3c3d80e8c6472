// File path: internal/fetcher/fetcher.go

// Package fetcher downloads the member message snapshot from the upstream
// message source.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/november7/memberbot/internal/common"
	"github.com/november7/memberbot/internal/corpus"
)

const defaultTimeout = 30 * time.Second

// Client fetches message snapshots over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
}

func New(url string) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Fetch downloads and normalizes the full message collection. Both bare-array
// and {"items": [...]} response shapes are accepted.
func (c *Client) Fetch(ctx context.Context) ([]corpus.Message, error) {
	logger := common.Logger()
	logger.Info("fetcher: fetching messages", "url", c.url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch messages: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	messages, err := corpus.Decode(body)
	if err != nil {
		return nil, err
	}
	logger.Info("fetcher: messages fetched", "count", len(messages))
	return messages, nil
}

// FetchToFile downloads the message collection and writes it to path.
func (c *Client) FetchToFile(ctx context.Context, path string) (int, error) {
	messages, err := c.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	if err := corpus.WriteFile(path, messages); err != nil {
		return 0, err
	}
	return len(messages), nil
}
