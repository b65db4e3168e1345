package systemprompt

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed agent_instructions.txt
var agentInstructions string

//go:embed rag_system.txt
var ragSystem string

//go:embed default_task.txt
var defaultTask string

//go:embed default_question.txt
var defaultQuestion string

// AgentInstructions returns the red team agent system prompt for a
// repository checked out at repoPath.
func AgentInstructions(repoPath string) string {
	return fmt.Sprintf(agentInstructions, repoPath)
}

// RAGSystem returns the retrieval-augmented system prompt with the
// retrieved code context interpolated.
func RAGSystem(context string) string {
	return fmt.Sprintf(ragSystem, context)
}

// DefaultTask is the autonomous analysis task used when none is given.
func DefaultTask() string {
	return strings.TrimSpace(defaultTask)
}

// DefaultQuestion asks for the highest criticality vulnerabilities, used
// when no question is given.
func DefaultQuestion() string {
	return strings.TrimSpace(defaultQuestion)
}
