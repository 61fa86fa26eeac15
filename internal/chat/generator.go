// Package chat generates grounded answers from retrieved context.
package chat

import (
	"context"
	"fmt"
	"strings"
)

// NoContentAnswer is returned when retrieval found nothing relevant.
const NoContentAnswer = "I couldn't find relevant information in the uploaded documents."

// Generator produces free text from a prompt. One method contract;
// each backend is a distinct implementation, dispatched by interface
// call rather than runtime introspection.
type Generator interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the generation model.
	ModelName() string
}

// BuildPrompt constructs the grounded-answer prompt from a question and
// its retrieved context. An optional conversation memory is prepended.
func BuildPrompt(question, retrievedContext, memory string) string {
	var b strings.Builder
	if memory != "" {
		fmt.Fprintf(&b, "CONVERSATION HISTORY:\n%s\n\n", memory)
	}
	b.WriteString("You are a study assistant answering questions about uploaded documents.\n")
	b.WriteString("Use ONLY the provided context. If the context does not contain the answer, say so clearly.\n\n")
	fmt.Fprintf(&b, "CONTEXT:\n%s\n\n", retrievedContext)
	fmt.Fprintf(&b, "QUESTION:\n%s\n\n", question)
	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString("1) Be concise and educational.\n")
	b.WriteString("2) Use only context content.\n")
	b.WriteString("3) Include page numbers from the context labels when relevant.\n\n")
	b.WriteString("Answer:\n")
	return b.String()
}
