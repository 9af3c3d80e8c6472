// File path: internal/corpus/corpus.go
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Message is a single chat message as supplied by the member message source.
// Unrecognized fields in the source payload are ignored.
type Message struct {
	Text      string `json:"message"`
	UserName  string `json:"user_name"`
	Timestamp string `json:"timestamp"`
}

// Valid reports whether the message carries any text after trimming
// whitespace. Invalid messages are excluded at index-build time.
func (m Message) Valid() bool {
	return strings.TrimSpace(m.Text) != ""
}

// envelope is the paginated response shape some message sources return.
type envelope struct {
	Items []Message `json:"items"`
}

// Decode parses a message payload that is either a bare JSON array of
// messages or an object wrapping the array as {"items": [...]}. Both shapes
// normalize to a flat slice.
func Decode(data []byte) ([]Message, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("empty message payload")
	}
	if strings.HasPrefix(trimmed, "{") {
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode message envelope: %w", err)
		}
		return env.Items, nil
	}
	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return messages, nil
}

// ReadFile loads and normalizes a message snapshot from disk.
func ReadFile(path string) ([]Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	return Decode(data)
}

// WriteFile persists a message snapshot as an indented JSON array.
func WriteFile(path string, messages []Message) error {
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write messages: %w", err)
	}
	return nil
}

// FilterValid drops messages whose trimmed text is empty, preserving the
// relative order of the rest. The position of a message in the returned slice
// is its ordinal once indexed.
func FilterValid(messages []Message) []Message {
	valid := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Valid() {
			valid = append(valid, msg)
		}
	}
	return valid
}
