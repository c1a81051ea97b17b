package generator

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are a helpful assistant."

// Prompt is the two-message conversation sent to the model.
type Prompt struct {
	Phase  string
	System string
	User   string
}

// PromptOptions tunes the fixed instruction text.
type PromptOptions struct {
	// CaptionLanguage is the language of image alt text and figure captions.
	CaptionLanguage string
}

// BuildInstructionPrompt builds the phase-one prompt: structural and SEO
// rules followed by the whole source text.
func BuildInstructionPrompt(source string, opts PromptOptions) Prompt {
	lang := opts.CaptionLanguage
	if lang == "" {
		lang = "Polish"
	}

	var sb strings.Builder
	sb.WriteString("Process the following text and produce a well-structured HTML article that follows these rules.\n\n")

	sb.WriteString("1. HTML structure:\n")
	sb.WriteString("   - Output only the markup that belongs inside <body>.\n")
	sb.WriteString("   - Use exactly one <h1> for the main title.\n")
	sb.WriteString("   - Use <h2> and <h3> for subheadings in a logical hierarchy.\n")
	sb.WriteString("   - Use <p> for paragraphs.\n")
	sb.WriteString("   - Do not include links or anchor tags.\n\n")

	sb.WriteString("2. SEO:\n")
	sb.WriteString("   - Use semantic HTML.\n")
	sb.WriteString("   - Headings (<h1>, <h2>, <h3>) should carry keywords related to the topic without keyword stuffing.\n")
	sb.WriteString("   - Include a <meta> description of 150-160 characters summarising the article.\n\n")

	sb.WriteString("3. Images:\n")
	sb.WriteString("   - Mark places where an image belongs with <img src=\"image_placeholder.jpg\">.\n")
	sb.WriteString(fmt.Sprintf("   - Give every image a detailed alt attribute in %s describing exactly what it shows and its context in the article.\n", lang))
	sb.WriteString(fmt.Sprintf("   - Add a <figcaption> in %s below each image explaining why the image is relevant to the text.\n\n", lang))

	sb.WriteString("4. Content:\n")
	sb.WriteString("   - Keep the content well organised and readable.\n")
	sb.WriteString("   - Wrap important keywords and phrases in <strong>.\n")
	sb.WriteString("   - Put the last line in <em>.\n\n")

	sb.WriteString("Return only the HTML. No comments, explanations or extra text.\n\n")
	sb.WriteString("Here is the text to process:\n\n")
	sb.WriteString(source)

	return Prompt{Phase: PhaseInstructions, System: systemPrompt, User: sb.String()}
}

// BuildChunkPrompt builds a phase-two prompt: the instruction set verbatim,
// then one chunk.
func BuildChunkPrompt(instructions, chunk string) Prompt {
	user := fmt.Sprintf("%s\n\nHere is the text that needs to be structured into HTML:\n\n%s", instructions, chunk)
	return Prompt{Phase: PhaseContent, System: systemPrompt, User: user}
}
