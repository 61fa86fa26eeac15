package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchK int

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchK, "top", "k", 0, "Number of chunks to return (default from config)")
}

// ChunkResult is one ranked chunk in search output.
type ChunkResult struct {
	Document string  `json:"document"`
	Page     int     `json:"page"`
	Score    float32 `json:"score"`
	Text     string  `json:"text"`
}

// SearchResponse is the response for the search command.
type SearchResponse struct {
	Query   string        `json:"query"`
	Results []ChunkResult `json:"results"`
	Total   int           `json:"total"`
	Model   string        `json:"model"`
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed chunks by semantic similarity",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := strings.TrimSpace(args[0])
	if query == "" {
		exitWithError(ExitError, "search query cannot be empty")
	}

	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)
	global := mustLoadGlobal(root)
	idx := mustLoadIndex(root, cfg)
	provider := mustEmbeddingProvider(global)

	k := searchK
	if k <= 0 {
		k = cfg.Retrieval.TopK
	}

	results, err := idx.SearchText(ctx, query, k, provider)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	chunkResults := make([]ChunkResult, 0, len(results))
	for _, r := range results {
		chunkResults = append(chunkResults, ChunkResult{
			Document: r.Chunk.Document,
			Page:     r.Chunk.Page,
			Score:    r.Score,
			Text:     r.Chunk.Text,
		})
	}

	if humanOutput {
		fmt.Printf("Search: %q\n", query)
		fmt.Printf("Found %d chunks\n\n", len(chunkResults))
		for i, r := range chunkResults {
			fmt.Printf("%d. [%.2f] %s, page %d\n", i+1, r.Score, r.Document, r.Page)
			fmt.Printf("   %s\n\n", truncateString(r.Text, SnippetPreviewLen))
		}
		return nil
	}

	return outputJSON(SearchResponse{
		Query:   query,
		Results: chunkResults,
		Total:   len(chunkResults),
		Model:   idx.ModelName(),
	})
}
