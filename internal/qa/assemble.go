// File path: internal/qa/assemble.go

// Package qa assembles grounding context from retrieved messages and
// orchestrates the question-answering pipeline.
package qa

import (
	"fmt"
	"strings"

	"github.com/november7/memberbot/internal/retriever"
)

// ContextLimit caps how many retrieved messages enter the prompt. Retrieval
// may fetch more than this to leave room for re-ranking; assembly always
// truncates to the first ContextLimit items.
const ContextLimit = 5

const promptTemplate = `You are a helpful assistant that answers questions based solely on the provided member messages.

Member Messages:
%s

Question: %s

Instructions:
- Answer the question directly and concisely using ONLY information from the messages above
- If the answer is not in the messages, say "I couldn't find that information in the messages"
- Be specific - include names, dates, locations, or numbers when relevant
- Keep your answer brief (1-2 sentences)

Answer:`

// AssemblePrompt renders retrieved items into the grounding prompt for the
// answer model. It reports ok=false when there is no context to ground on;
// the orchestrator must not call the generator in that case.
func AssemblePrompt(items []retriever.ContextItem, question string) (string, bool) {
	if len(items) == 0 {
		return "", false
	}
	if len(items) > ContextLimit {
		items = items[:ContextLimit]
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("- %s: %s", item.UserName, item.MessageText)
	}
	return fmt.Sprintf(promptTemplate, strings.Join(lines, "\n"), question), true
}
