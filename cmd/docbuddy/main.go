// Package main provides the docbuddy CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docbuddy",
	Short: "Question answering over your documents",
	Long: `docbuddy ingests PDF and text documents, indexes them by embedding,
and answers questions grounded in the most relevant passages, with
per-page citations.

All commands output JSON by default for easy scripting; pass --human
for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}
