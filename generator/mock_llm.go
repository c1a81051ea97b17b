package generator

import (
	"context"
	"html"
	"strings"
)

// MockLLM is an offline stand-in for local runs; it never calls a provider.
// Content answers come back fenced like real model output so the sanitizer
// has something to do.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	if prompt.Phase == PhaseInstructions {
		return "Structure the text as HTML body content with <h2> subheadings and <p> paragraphs.", nil
	}

	text := prompt.User
	if i := strings.LastIndex(text, "\n\n"); i >= 0 {
		text = text[i+2:]
	}
	var sb strings.Builder
	sb.WriteString("```html\n")
	sb.WriteString("<section>\n")
	sb.WriteString("<p>")
	sb.WriteString(html.EscapeString(strings.TrimSpace(text)))
	sb.WriteString("</p>\n")
	sb.WriteString("</section>\n")
	sb.WriteString("```\n")
	return sb.String(), nil
}
