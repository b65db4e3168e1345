package commands

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/lukashino/defcon-llm-analysis/internal/chat"
)

// Env is what slash commands get to work with: the session, the terminal
// writer, the mutable retrieval depth and a way to end the loop.
type Env struct {
	Session *chat.Session
	Out     io.Writer
	TopK    *int
	Quit    func()
}

// Handler runs a command with its arguments (the text after the name).
type Handler func(env *Env, args string)

// Command represents an interactive slash command.
type Command struct {
	Name        string
	Description string
	Handler     Handler
}

// Registry holds all available commands.
type Registry struct {
	commands map[string]*Command
}

// NewRegistry creates a registry with the built-in commands.
func NewRegistry() *Registry {
	r := &Registry{commands: make(map[string]*Command)}

	r.Register("help", "Show available commands", r.handleHelp)
	r.Register("reset", "Drop the conversation history", handleReset)
	r.Register("topk", "Set the number of retrieved chunks, e.g. /topk 50", handleTopK)
	r.Register("history", "Display conversation history", handleHistory)
	r.Register("exit", "Exit the chat", handleExit)

	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(name, description string, handler Handler) {
	r.commands[name] = &Command{
		Name:        name,
		Description: description,
		Handler:     handler,
	}
}

// Execute runs the command named by input. Returns false when input is not
// a slash command at all, so the caller treats it as a chat message.
func (r *Registry) Execute(input string, env *Env) bool {
	if !strings.HasPrefix(input, "/") {
		return false
	}

	name, args, _ := strings.Cut(strings.TrimPrefix(input, "/"), " ")
	name = strings.ToLower(strings.TrimSpace(name))

	cmd, exists := r.commands[name]
	if !exists {
		fmt.Fprintf(env.Out, "Unknown command: /%s (type /help for available commands)\n", name)
		return true
	}

	cmd.Handler(env, strings.TrimSpace(args))
	return true
}

func (r *Registry) handleHelp(env *Env, _ string) {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(env.Out, "Available commands:")
	for _, name := range names {
		fmt.Fprintf(env.Out, "  /%-8s %s\n", name, r.commands[name].Description)
	}
}

func handleReset(env *Env, _ string) {
	env.Session.ClearHistory()
	fmt.Fprintln(env.Out, "Conversation history cleared")
}

func handleTopK(env *Env, args string) {
	if args == "" {
		fmt.Fprintf(env.Out, "Retrieving %d chunks per question (use /topk <n> to change)\n", *env.TopK)
		return
	}
	n, err := strconv.Atoi(args)
	if err != nil || n <= 0 {
		fmt.Fprintf(env.Out, "Invalid top-k value: %q\n", args)
		return
	}
	*env.TopK = n
	fmt.Fprintf(env.Out, "Now retrieving %d chunks per question\n", n)
}

func handleHistory(env *Env, _ string) {
	history := env.Session.History()
	if len(history) == 0 {
		fmt.Fprintln(env.Out, "No conversation history yet")
		return
	}
	fmt.Fprintln(env.Out, "--- Conversation History ---")
	for _, msg := range history {
		role := "Unknown"
		switch msg.Role {
		case "user":
			role = "User"
		case "assistant":
			role = "Assistant"
		case "tool":
			role = "Tool"
		}
		fmt.Fprintf(env.Out, "%s: %s\n", role, msg.Content)
	}
	fmt.Fprintln(env.Out, "--- End History ---")
}

func handleExit(env *Env, _ string) {
	if env.Quit != nil {
		env.Quit()
	}
}
