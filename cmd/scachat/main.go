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

// scachat is retrieval-augmented chat over the indexed repository: each
// question retrieves the closest code chunks and streams the answer.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/term"

	"github.com/lukashino/defcon-llm-analysis/internal/chat"
	"github.com/lukashino/defcon-llm-analysis/internal/config"
	"github.com/lukashino/defcon-llm-analysis/internal/vecstore"
	systemprompt "github.com/lukashino/defcon-llm-analysis/system_prompt"
)

var (
	configPath = flag.String("config", "", "Path to the configuration file")
	dbPath     = flag.String("db", "", "Vector database directory")
	collection = flag.String("collection", "", "Collection name")
	topKFlag   = flag.Int("top-k", 0, "Number of chunks to retrieve per question")
	question   = flag.String("q", "", "Answer a single question and exit (empty: default question)")
	logFile    = flag.String("log", "", "Log file path (logs disabled by default)")
	verbose    = flag.Bool("v", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	logger := initLogger(*verbose, *logFile)
	logger.Info().Msg("scachat starting")

	if err := run(logger); err != nil {
		logger.Error().Err(err).Msg("chat failed")
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
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *collection != "" {
		cfg.Collection = *collection
	}
	if *topKFlag > 0 {
		cfg.TopK = *topKFlag
	}
	for _, warning := range cfg.Validate() {
		logger.Warn().Str("field", warning.Field).Msg(warning.Message)
	}

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
	col, err := store.Collection(cfg.Collection, vecstore.OpenAIEmbedder(client, cfg.EmbeddingModel))
	if err != nil {
		return err
	}
	logger.Info().Str("collection", cfg.Collection).Int("chunks", col.Count()).Msg("collection open")

	sess := chat.NewSessionWithClient(cfg, client, "")
	sess.Temperature = cfg.RAGTemperature
	sess.Log = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	topK := cfg.TopK

	questionGiven := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "q" {
			questionGiven = true
		}
	})
	if questionGiven {
		q := strings.TrimSpace(*question)
		if q == "" {
			q = systemprompt.DefaultQuestion()
		}
		return answer(ctx, sess, col, q, topK)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return runBatch(ctx, sess, col, topK)
	}

	return runInteractive(ctx, cfg, sess, col, &topK)
}

// answer retrieves the context for one question, rebuilds the system
// prompt around it and streams the reply to stdout.
func answer(ctx context.Context, sess *chat.Session, col *vecstore.Collection, question string, topK int) error {
	results, err := col.Query(ctx, question, topK)
	if err != nil {
		return err
	}
	sess.SetSystemPrompt(systemprompt.RAGSystem(vecstore.FormatContext(results)))

	for event := range sess.StreamResponse(ctx, question) {
		switch event.Type {
		case chat.StreamEventContent:
			fmt.Print(event.Content)
		case chat.StreamEventError:
			fmt.Println()
			return event.Err
		case chat.StreamEventDone:
			fmt.Println()
		}
	}
	return nil
}

// runBatch reads one question per line from stdin.
func runBatch(ctx context.Context, sess *chat.Session, col *vecstore.Collection, topK int) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fmt.Printf("❯ %s\n", line)
		if err := answer(ctx, sess, col, line, topK); err != nil {
			return err
		}
	}
	return scanner.Err()
}
