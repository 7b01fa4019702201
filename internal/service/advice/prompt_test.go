package advice

import (
	"strings"
	"testing"

	"advice-app/internal/service/llm"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Self PR", "I am diligent.", 0)

	if len(prompt.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(prompt.Messages))
	}
	if prompt.Messages[0].Role != llm.RoleSystem {
		t.Errorf("Expected first message to be system, got %q", prompt.Messages[0].Role)
	}
	if prompt.Messages[1].Role != llm.RoleUser {
		t.Errorf("Expected second message to be user, got %q", prompt.Messages[1].Role)
	}

	user := prompt.Messages[1].Content
	if !strings.Contains(user, "Self PR") {
		t.Error("Expected title embedded in prompt")
	}
	if !strings.Contains(user, "I am diligent.") {
		t.Error("Expected body embedded in prompt")
	}
	if !strings.Contains(user, "numbered list") {
		t.Error("Expected enumerated critique instruction")
	}
	if !strings.Contains(user, "```") {
		t.Error("Expected fenced rewrite instruction")
	}
	if strings.Contains(user, "characters") && strings.Contains(user, "stay within") {
		t.Error("Expected no length constraint when charLimit is zero")
	}
}

func TestBuildPrompt_CharLimit(t *testing.T) {
	prompt := BuildPrompt("Title", "Body", 400)

	user := prompt.Messages[1].Content
	if !strings.Contains(user, "within 400 characters") {
		t.Errorf("Expected char limit constraint in prompt, got:\n%s", user)
	}
}
