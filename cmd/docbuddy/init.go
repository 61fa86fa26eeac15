package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docbuddy/docbuddy/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a docbuddy workspace in the current directory",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if config.IsWorkspace(cwd) {
		exitWithError(ExitError, "already a docbuddy workspace: %s", cwd)
	}

	if err := os.MkdirAll(config.DocbuddyPath(cwd), 0755); err != nil {
		exitWithError(ExitError, "creating workspace: %v", err)
	}
	if err := config.DefaultConfig().Save(cwd); err != nil {
		exitWithError(ExitError, "writing config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized docbuddy workspace in %s\n", cwd)
	} else {
		outputJSON(map[string]string{"workspace": cwd})
	}
	return nil
}
