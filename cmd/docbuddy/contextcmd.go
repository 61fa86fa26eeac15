package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docbuddy/docbuddy/internal/retrieval"
)

func init() {
	rootCmd.AddCommand(contextCmd)
}

// ContextResponse is the response for the context command.
type ContextResponse struct {
	Query   string               `json:"query"`
	Context string               `json:"context"`
	Sources []retrieval.Citation `json:"sources"`
}

var contextCmd = &cobra.Command{
	Use:   "context <query>",
	Short: "Show the assembled context and citations for a query",
	Long: `Retrieve the top chunks for a query and assemble them into the
bounded context string that would be passed to the answer generator,
without invoking generation. An empty context means no relevant
content was found.`,
	Args: cobra.ExactArgs(1),
	RunE: runContext,
}

func runContext(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := strings.TrimSpace(args[0])
	if query == "" {
		exitWithError(ExitError, "query cannot be empty")
	}

	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)
	global := mustLoadGlobal(root)
	idx := mustLoadIndex(root, cfg)
	provider := mustEmbeddingProvider(global)

	retriever := retrieval.NewRetriever(provider, idx, cfg.Retrieval.TopK, cfg.Retrieval.MaxContextLength)
	contextStr, citations, err := retriever.Context(ctx, query)
	if err != nil {
		exitWithError(ExitError, "retrieving context: %v", err)
	}

	if humanOutput {
		if contextStr == "" {
			fmt.Println("No relevant content found.")
			return nil
		}
		fmt.Println(contextStr)
		fmt.Printf("\nSources:\n")
		for i, c := range citations {
			fmt.Printf("%d. %s, page %d (relevance %.2f)\n", i+1, c.Document, c.Page, c.RelevanceScore)
		}
		return nil
	}

	return outputJSON(ContextResponse{Query: query, Context: contextStr, Sources: citations})
}
