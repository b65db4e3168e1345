package systemprompt

import (
	"strings"
	"testing"
)

func TestAgentInstructionsInterpolatesRepoPath(t *testing.T) {
	prompt := AgentInstructions("./repo/")
	if !strings.Contains(prompt, "The source code is located at ./repo/") {
		t.Fatalf("expected repo path in prompt, got:\n%s", prompt)
	}
	if strings.Contains(prompt, "%s") {
		t.Fatal("unfilled format slot left in prompt")
	}
	for _, section := range []string{"Analysis Process", "Reflection Questions", "Executive Summary", "ascii art"} {
		if !strings.Contains(prompt, section) {
			t.Errorf("expected %q in agent instructions", section)
		}
	}
}

func TestRAGSystemInterpolatesContext(t *testing.T) {
	prompt := RAGSystem("--- views.py ---\ndef index(request): ...")
	if !strings.Contains(prompt, "--- views.py ---") {
		t.Fatalf("expected retrieved context in prompt, got:\n%s", prompt)
	}
	if strings.Contains(prompt, "%s") {
		t.Fatal("unfilled format slot left in prompt")
	}
}

func TestDefaults(t *testing.T) {
	if !strings.Contains(DefaultTask(), "exploring the directory structure") {
		t.Fatalf("unexpected default task: %q", DefaultTask())
	}
	question := DefaultQuestion()
	if !strings.Contains(question, "highest criticality") || !strings.Contains(question, "CSRF") {
		t.Fatalf("unexpected default question: %q", question)
	}
	if strings.HasSuffix(question, "\n") {
		t.Fatal("defaults must be trimmed")
	}
}
