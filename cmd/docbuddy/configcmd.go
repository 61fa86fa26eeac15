package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Get or set workspace configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the retrieval configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigGet,
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	if humanOutput {
		r := cfg.Retrieval
		fmt.Printf("chunk_size          %d\n", r.ChunkSize)
		fmt.Printf("chunk_overlap       %d\n", r.ChunkOverlap)
		fmt.Printf("top_k               %d\n", r.TopK)
		fmt.Printf("max_context_length  %d\n", r.MaxContextLength)
		fmt.Printf("cache_capacity      %d\n", r.CacheCapacity)
		fmt.Printf("history_size        %d\n", r.HistorySize)
		return nil
	}
	return outputJSON(cfg)
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a retrieval configuration value",
	Long: `Set one retrieval parameter and validate the result. Keys:
chunk_size, chunk_overlap, top_k, max_context_length, cache_capacity,
history_size. Changing chunking parameters requires re-ingesting.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	value, err := strconv.Atoi(args[1])
	if err != nil {
		exitWithError(ExitError, "value must be an integer, got %q", args[1])
	}

	switch args[0] {
	case "chunk_size":
		cfg.Retrieval.ChunkSize = value
	case "chunk_overlap":
		cfg.Retrieval.ChunkOverlap = value
	case "top_k":
		cfg.Retrieval.TopK = value
	case "max_context_length":
		cfg.Retrieval.MaxContextLength = value
	case "cache_capacity":
		cfg.Retrieval.CacheCapacity = value
	case "history_size":
		cfg.Retrieval.HistorySize = value
	default:
		exitWithError(ExitError, "unknown config key %q", args[0])
	}

	if err := cfg.Retrieval.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("%s = %d\n", args[0], value)
		return nil
	}
	return outputJSON(map[string]interface{}{args[0]: value})
}
