// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// repoindex clones the target repository, splits its sources into chunks
// and embeds them into the persistent vector store. With -guide it indexes
// a PDF guide instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/lukashino/defcon-llm-analysis/internal/config"
	"github.com/lukashino/defcon-llm-analysis/internal/ingest"
	"github.com/lukashino/defcon-llm-analysis/internal/vecstore"
)

var (
	configPath   = flag.String("config", "", "Path to the configuration file")
	repoURL      = flag.String("repo-url", "", "Repository URL to clone and index")
	repoPath     = flag.String("repo-path", "", "Local checkout path")
	dbPath       = flag.String("db", "", "Vector database directory")
	collection   = flag.String("collection", "", "Collection name")
	guidePDF     = flag.String("guide", "", "Index a PDF guide instead of the repository")
	chunkSize    = flag.Int("chunk-size", 0, "Chunk size in characters")
	chunkOverlap = flag.Int("chunk-overlap", -1, "Overlap between consecutive chunks")
	logFile      = flag.String("log", "", "Log file path (logs disabled by default)")
	verbose      = flag.Bool("v", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	logger := initLogger(*verbose, *logFile)
	logger.Info().Msg("repoindex starting")

	if err := run(logger); err != nil {
		logger.Error().Err(err).Msg("indexing failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func initLogger(debug bool, logFilePath string) zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var output io.Writer = io.Discard
	if logFilePath != "" {
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		output = file
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func run(logger zerolog.Logger) error {
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	applyOverrides(cfg)
	for _, warning := range cfg.Validate() {
		logger.Warn().Str("field", warning.Field).Msg(warning.Message)
	}

	runID := uuid.NewString()
	logger = logger.With().Str("run_id", runID).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIURL != "" {
		clientConfig.BaseURL = cfg.APIURL
		clientConfig.HTTPClient = &http.Client{}
	}
	client := openai.NewClientWithConfig(clientConfig)

	store, err := vecstore.Open(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	embedder := vecstore.OpenAIEmbedder(client, cfg.EmbeddingModel)

	loader := ingest.Loader{Log: logger, Limits: cfg.ToolLimits}

	if *guidePDF != "" {
		return indexGuide(ctx, logger, store, embedder, loader, cfg, *guidePDF)
	}
	return indexRepo(ctx, logger, store, embedder, loader, cfg)
}

// applyOverrides lets flags win over config file values.
func applyOverrides(cfg *config.Config) {
	if *repoURL != "" {
		cfg.RepoURL = *repoURL
	}
	if *repoPath != "" {
		cfg.RepoPath = *repoPath
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *collection != "" {
		cfg.Collection = *collection
	}
	if *chunkSize > 0 {
		cfg.ChunkSize = *chunkSize
	}
	if *chunkOverlap >= 0 {
		cfg.ChunkOverlap = *chunkOverlap
	}
}

func indexRepo(ctx context.Context, logger zerolog.Logger, store *vecstore.Store, embedder vecstore.EmbeddingFunc, loader ingest.Loader, cfg *config.Config) error {
	cloned, head, err := ingest.Clone(ctx, cfg.RepoURL, cfg.RepoPath, os.Stdout)
	if err != nil {
		return err
	}
	if cloned {
		fmt.Printf("Repository cloned into: %s\n", cfg.RepoPath)
	} else {
		fmt.Println("Directory already contains a git repository.")
	}
	logger.Info().Str("head", head).Str("path", cfg.RepoPath).Msg("repository ready")

	col, err := store.Collection(cfg.Collection, embedder)
	if err != nil {
		return err
	}

	docs, err := loader.LoadRepo(cfg.RepoPath)
	if err != nil {
		return err
	}

	total := 0
	for _, doc := range docs {
		digest, err := ingest.Digest(ctx, doc.Path)
		if err != nil {
			logger.Debug().Str("file", doc.Path).Err(err).Msg("digest failed, skipping")
			continue
		}

		chunks := ingest.Split(doc.Content, cfg.ChunkSize, cfg.ChunkOverlap)
		entries := make([]vecstore.Entry, 0, len(chunks))
		for i, chunk := range chunks {
			entries = append(entries, vecstore.Entry{
				ID:      ingest.ChunkID(digest, i),
				Content: chunk,
				Path:    doc.Path,
				Chunk:   i,
			})
		}
		if err := col.Add(ctx, entries); err != nil {
			return err
		}
		total += len(entries)
		logger.Info().Str("file", doc.Path).Int("chunks", len(chunks)).Msg("indexed")
	}

	fmt.Printf("Indexed %d chunks from %d files into collection %q\n", total, len(docs), cfg.Collection)
	return nil
}

func indexGuide(ctx context.Context, logger zerolog.Logger, store *vecstore.Store, embedder vecstore.EmbeddingFunc, loader ingest.Loader, cfg *config.Config, pdfPath string) error {
	name := guideCollectionName(pdfPath)
	col, err := store.Collection(name, embedder)
	if err != nil {
		return err
	}

	digest, err := ingest.Digest(ctx, pdfPath)
	if err != nil {
		return err
	}

	docs, err := loader.LoadPDF(pdfPath)
	if err != nil {
		return err
	}

	total := 0
	for _, doc := range docs {
		chunks := ingest.Split(doc.Content, cfg.ChunkSize, cfg.ChunkOverlap)
		entries := make([]vecstore.Entry, 0, len(chunks))
		for i, chunk := range chunks {
			entries = append(entries, vecstore.Entry{
				ID:      ingest.ChunkID(digest, total+i),
				Content: chunk,
				Path:    doc.Path,
				Page:    doc.Page,
				Chunk:   i,
			})
		}
		if err := col.Add(ctx, entries); err != nil {
			return err
		}
		total += len(entries)
		logger.Info().Int("page", doc.Page).Int("chunks", len(chunks)).Msg("indexed")
	}

	fmt.Printf("Indexed %d chunks from %d pages into collection %q\n", total, len(docs), name)
	return nil
}

// guideCollectionName derives the collection name from the PDF file name.
func guideCollectionName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
