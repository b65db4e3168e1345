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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/lukashino/defcon-llm-analysis/internal/chat"
	"github.com/lukashino/defcon-llm-analysis/internal/commands"
	"github.com/lukashino/defcon-llm-analysis/internal/config"
	"github.com/lukashino/defcon-llm-analysis/internal/vecstore"
)

func runInteractive(ctx context.Context, cfg *config.Config, sess *chat.Session, col *vecstore.Collection, topK *int) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "❯ ",
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("Retrieval-augmented chat over the indexed repository.")
	fmt.Println("Type /help for commands, /exit or Ctrl-D to quit.")
	fmt.Println("---")

	registry := commands.NewRegistry()
	quit := false
	env := &commands.Env{
		Session: sess,
		Out:     os.Stdout,
		TopK:    topK,
		Quit:    func() { quit = true },
	}

	for !quit {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}
		if registry.Execute(input, env) {
			continue
		}

		if err := answer(ctx, sess, col, input, *topK); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	fmt.Println("Goodbye!")
	return nil
}
