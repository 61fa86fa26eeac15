package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docbuddy/docbuddy/internal/chunker"
	"github.com/docbuddy/docbuddy/internal/config"
	"github.com/docbuddy/docbuddy/internal/document"
	"github.com/docbuddy/docbuddy/internal/embedding"
	"github.com/docbuddy/docbuddy/internal/index"
	"github.com/docbuddy/docbuddy/internal/pdf"
	"github.com/docbuddy/docbuddy/internal/storage"
)

var ingestForce bool

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVarP(&ingestForce, "force", "f", false, "Re-ingest even if the document is unchanged")
}

// IngestResponse is the response for the ingest command.
type IngestResponse struct {
	Document string `json:"document"`
	Pages    int    `json:"pages"`
	Chunks   int    `json:"chunks"`
	Model    string `json:"model"`
	Skipped  bool   `json:"skipped,omitempty"`
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Ingest and index a PDF or text document",
	Long: `Ingest a document: extract per-page text, split it into overlapping
sentence-aware chunks, embed every chunk, and build the vector index.

Re-running on an unchanged document is a no-op unless --force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)
	global := mustLoadGlobal(root)

	doc, err := pdf.ReadDocument(args[0])
	if err != nil {
		exitWithError(ExitError, "reading document: %v", err)
	}

	text, pm, err := doc.Flatten()
	if err != nil {
		if errors.Is(err, document.ErrEmptyDocument) {
			exitWithError(ExitDataError, "no extractable text in %s", doc.Name)
		}
		exitWithError(ExitError, "%v", err)
	}

	db := mustOpenDB(root)
	defer db.Close()

	provider := mustEmbeddingProvider(global)

	fingerprint := storage.Fingerprint(doc.Pages)
	prev, err := db.GetDocument(doc.Name)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if !ingestForce && prev != nil && prev.Fingerprint == fingerprint {
		idx, err := index.Load(config.IndexPath(root), cfg.Retrieval.CacheCapacity)
		if err == nil && indexMatchesProvider(idx, provider) {
			meta, _ := db.GetEmbeddingMetadata(doc.Name)
			resp := IngestResponse{Document: doc.Name, Pages: len(doc.Pages), Skipped: true}
			if meta != nil {
				resp.Chunks = meta.ChunkCount
				resp.Model = meta.Model
			}
			return outputIngest(resp)
		}
	}

	ch, err := chunker.New(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	chunks := ch.Split(text, pm, doc.Name)

	idx := index.New(cfg.Retrieval.CacheCapacity)
	if err := idx.Build(ctx, chunks, provider); err != nil {
		if errors.Is(err, index.ErrEmptyCollection) {
			exitWithError(ExitDataError, "document %s produced no usable chunks", doc.Name)
		}
		exitWithError(ExitError, "building index: %v", err)
	}

	if err := idx.Save(config.IndexPath(root)); err != nil {
		exitWithError(ExitError, "saving index: %v", err)
	}

	if err := db.SaveDocument(storage.DocumentRecord{
		Name:        doc.Name,
		Fingerprint: fingerprint,
		Pages:       len(doc.Pages),
	}); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := db.ReplaceChunks(doc.Name, chunks); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := db.SaveEmbeddingMetadata(storage.EmbeddingMetadata{
		Document:   doc.Name,
		Model:      provider.ModelName(),
		Dimensions: provider.Dimensions(),
		ChunkCount: len(chunks),
	}); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	return outputIngest(IngestResponse{
		Document: doc.Name,
		Pages:    len(doc.Pages),
		Chunks:   len(chunks),
		Model:    provider.ModelName(),
	})
}

// indexMatchesProvider reports whether a persisted index was built with
// the configured embedding provider. A backend or model switch must
// force a rebuild even when the document is unchanged.
func indexMatchesProvider(idx *index.Index, provider embedding.Provider) bool {
	return idx.ModelName() == provider.ModelName() && idx.Dimensions() == provider.Dimensions()
}

func outputIngest(resp IngestResponse) error {
	if humanOutput {
		if resp.Skipped {
			fmt.Printf("%s unchanged, skipping (%d chunks indexed)\n", resp.Document, resp.Chunks)
			return nil
		}
		fmt.Printf("Indexed %s: %d pages, %d chunks (%s)\n", resp.Document, resp.Pages, resp.Chunks, resp.Model)
		return nil
	}
	return outputJSON(resp)
}
