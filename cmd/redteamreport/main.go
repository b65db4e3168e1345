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

// redteamreport runs the tool-using analysis agent against a cloned
// repository and writes its findings as a red team report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lukashino/defcon-llm-analysis/internal/chat"
	"github.com/lukashino/defcon-llm-analysis/internal/config"
	"github.com/lukashino/defcon-llm-analysis/internal/ingest"
	"github.com/lukashino/defcon-llm-analysis/internal/report"
	"github.com/lukashino/defcon-llm-analysis/internal/tools"
	systemprompt "github.com/lukashino/defcon-llm-analysis/system_prompt"
)

var (
	configPath = flag.String("config", "", "Path to the configuration file")
	task       = flag.String("task", "", "Analysis task for the agent (default: built-in task)")
	repoURL    = flag.String("repo-url", "", "Repository URL to clone and analyze")
	repoPath   = flag.String("repo-path", "", "Local checkout path")
	outFile    = flag.String("o", "", "Report output file")
	logFile    = flag.String("log", "", "Log file path (logs disabled by default)")
	verbose    = flag.Bool("v", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	logger := initLogger(*verbose, *logFile)
	logger.Info().Msg("redteamreport starting")

	if err := run(logger); err != nil {
		logger.Error().Err(err).Msg("analysis failed")
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
	if *repoURL != "" {
		cfg.RepoURL = *repoURL
	}
	if *repoPath != "" {
		cfg.RepoPath = *repoPath
	}
	if *outFile != "" {
		cfg.ReportFile = *outFile
	}
	for _, warning := range cfg.Validate() {
		logger.Warn().Str("field", warning.Field).Msg(warning.Message)
	}

	runID := uuid.NewString()
	logger = logger.With().Str("run_id", runID).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

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

	registry := tools.NewRegistry()
	if err := tools.RegisterInspectionTools(registry, cfg.ToolLimits); err != nil {
		return err
	}

	sess := chat.NewSession(cfg, systemprompt.AgentInstructions(cfg.RepoPath))
	sess.Temperature = cfg.AgentTemperature
	sess.ToolRegistry = registry
	sess.Log = logger

	analysisTask := *task
	if analysisTask == "" {
		analysisTask = systemprompt.DefaultTask()
	}
	logger.Info().Str("task", analysisTask).Str("model", cfg.Model).Msg("agent run starting")

	findings, err := sess.GetResponseWithContext(ctx, analysisTask)
	if err != nil {
		return err
	}

	rep := report.New(cfg.RepoURL, cfg.Model, findings)
	if err := rep.Write(cfg.ReportFile); err != nil {
		return err
	}
	logger.Info().Str("report_id", rep.ID).Str("file", cfg.ReportFile).Msg("report written")

	fmt.Println(rep.Render())
	fmt.Printf("Report written to %s\n", cfg.ReportFile)
	return nil
}
