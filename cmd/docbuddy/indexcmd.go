package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/docbuddy/docbuddy/internal/config"
	"github.com/docbuddy/docbuddy/internal/index"
	"github.com/docbuddy/docbuddy/internal/storage"
)

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexStatusCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect the vector index",
}

// IndexStatusResponse is the response for the index status command.
type IndexStatusResponse struct {
	Built      bool                     `json:"built"`
	Chunks     int                      `json:"chunks"`
	Model      string                   `json:"model,omitempty"`
	Dimensions int                      `json:"dimensions,omitempty"`
	CreatedAt  *time.Time               `json:"created_at,omitempty"`
	Documents  []storage.DocumentRecord `json:"documents,omitempty"`
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index and ingested document status",
	Args:  cobra.NoArgs,
	RunE:  runIndexStatus,
}

func runIndexStatus(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	resp := IndexStatusResponse{}

	idx, err := index.Load(config.IndexPath(root), cfg.Retrieval.CacheCapacity)
	switch {
	case err == nil:
		created := idx.CreatedAt()
		resp.Built = idx.Built()
		resp.Chunks = idx.Len()
		resp.Model = idx.ModelName()
		resp.Dimensions = idx.Dimensions()
		resp.CreatedAt = &created
	case errors.Is(err, index.ErrIndexNotFound):
		// No index yet; report the unbuilt state.
	default:
		exitWithError(ExitError, "loading index: %v", err)
	}

	db := mustOpenDB(root)
	defer db.Close()
	docs, err := db.ListDocuments()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	resp.Documents = docs

	if humanOutput {
		if !resp.Built {
			fmt.Println("No index built. Run 'docbuddy ingest <file>'.")
		} else {
			fmt.Printf("Index: %d chunks, model %s (%d dims), built %s\n",
				resp.Chunks, resp.Model, resp.Dimensions, resp.CreatedAt.Format(time.RFC3339))
		}
		for _, d := range docs {
			fmt.Printf("  %s: %d pages, ingested %s\n",
				d.Name, d.Pages, time.Unix(d.IngestedAt, 0).Format(time.RFC3339))
		}
		return nil
	}

	return outputJSON(resp)
}
