package advice

import (
	"fmt"
	"strings"

	"advice-app/internal/service/llm"
)

// systemInstruction frames the reviewer persona for every advice request.
const systemInstruction = "You are an experienced recruiter reviewing application documents. " +
	"You give direct, specific, actionable feedback."

// critiqueTemplate is the contract with the model: it requests an enumerated
// critique followed by a fenced rewritten example, which the frontend renders
// as two separate blocks. Changing its structure breaks that rendering.
const critiqueTemplate = `Review the following document section and respond in exactly two parts.

Part 1: A numbered list of concrete problems with the text, most important first.
Part 2: A rewritten version of the full text that fixes those problems, enclosed in a fenced code block (` + "```" + `).
%s
Section title: %s

Section text:
%s`

// BuildPrompt builds the immutable prompt for one critique request. charLimit
// of zero means no length constraint.
func BuildPrompt(title, body string, charLimit int) llm.Prompt {
	var constraint string
	if charLimit > 0 {
		constraint = fmt.Sprintf("The rewritten version must stay within %d characters.\n", charLimit)
	}

	user := fmt.Sprintf(critiqueTemplate, constraint, strings.TrimSpace(title), strings.TrimSpace(body))

	return llm.Prompt{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemInstruction},
			{Role: llm.RoleUser, Content: user},
		},
	}
}
