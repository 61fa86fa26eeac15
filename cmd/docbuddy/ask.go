package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docbuddy/docbuddy/internal/retrieval"
	"github.com/docbuddy/docbuddy/internal/session"
)

func init() {
	rootCmd.AddCommand(askCmd)
}

// AskResponse is the response for the ask command.
type AskResponse struct {
	Question string               `json:"question"`
	Answer   string               `json:"answer"`
	Sources  []retrieval.Citation `json:"sources"`
	Model    string               `json:"model"`
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question grounded in the indexed document",
	Long: `Retrieve the most relevant chunks for the question, assemble them
into a bounded context, and generate an answer grounded in it. Each
answer carries citations naming the document and page every piece of
context came from.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := strings.TrimSpace(args[0])
	if question == "" {
		exitWithError(ExitError, "question cannot be empty")
	}

	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)
	global := mustLoadGlobal(root)
	idx := mustLoadIndex(root, cfg)
	provider := mustEmbeddingProvider(global)
	generator := mustGenerator(global)

	s := session.New(cfg.Retrieval, provider, generator)
	s.UseIndex(idx)

	answer, citations, err := s.Ask(ctx, question)
	if err != nil {
		exitWithError(ExitError, "generating answer: %v", err)
	}

	if humanOutput {
		fmt.Println(answer)
		if len(citations) > 0 {
			fmt.Printf("\nSources:\n")
			for i, c := range citations {
				fmt.Printf("%d. %s, page %d (relevance %.2f)\n", i+1, c.Document, c.Page, c.RelevanceScore)
			}
		}
		return nil
	}

	return outputJSON(AskResponse{
		Question: question,
		Answer:   answer,
		Sources:  citations,
		Model:    generator.ModelName(),
	})
}
