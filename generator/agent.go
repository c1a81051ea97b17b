package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"seo_article_generator/apperr"
	"seo_article_generator/logging"
)

const (
	PhaseInstructions = "instructions"
	PhaseContent      = "content"
)

// Agent runs the two-phase generation: one call that turns the source into
// an instruction set, then one call per chunk that turns the chunk into an
// HTML fragment following those instructions.
type Agent struct {
	llm    LLMClient
	retry  RetryPolicy
	logger *logging.Logger
	opts   AgentOptions
}

type AgentOptions struct {
	// ChunkMaxTokens is the chunker's token budget; zero means DefaultMaxTokens.
	ChunkMaxTokens int
	Prompt         PromptOptions
	// MarkdownFallback renders tag-less fragments as Markdown instead of
	// leaving them for the sanitizer to drop.
	MarkdownFallback bool
}

func NewAgent(llm LLMClient, retry RetryPolicy, logger *logging.Logger, opts AgentOptions) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if retry.Logger == nil {
		retry.Logger = logger
	}
	if opts.ChunkMaxTokens == 0 {
		opts.ChunkMaxTokens = DefaultMaxTokens
	}
	return &Agent{llm: llm, retry: retry, logger: logger, opts: opts}, nil
}

// Generate returns the concatenated, unsanitized article for source. Any
// phase that fails after retries fails the whole call; fragments generated
// before the failure are discarded.
func (a *Agent) Generate(ctx context.Context, source string) (string, error) {
	chunks, err := SplitIntoChunks(source, a.opts.ChunkMaxTokens)
	if err != nil {
		return "", err
	}
	a.logger.Info("source chunked", "words", len(strings.Fields(source)), "chunks", len(chunks))

	instructions, err := a.complete(ctx, PhaseInstructions, BuildInstructionPrompt(source, a.opts.Prompt))
	if err != nil {
		return "", err
	}

	var article strings.Builder
	for i, chunk := range chunks {
		step := fmt.Sprintf("%s[%d/%d]", PhaseContent, i+1, len(chunks))
		fragment, err := a.complete(ctx, step, BuildChunkPrompt(instructions, chunk))
		if err != nil {
			return "", err
		}
		if a.opts.MarkdownFallback && fragment != "" && !hasTag(fragment) {
			rendered, err := markdownToHTML(fragment)
			if err != nil {
				return "", apperr.Wrap(apperr.KindUnexpected, step, err)
			}
			a.logger.Debug("fragment rendered from markdown", "step", step)
			fragment = rendered
		}
		article.WriteString(fragment)
	}
	return article.String(), nil
}

func (a *Agent) complete(ctx context.Context, step string, prompt Prompt) (string, error) {
	a.logger.Debug("sending prompt", "step", step, "prompt_chars", len(prompt.User))
	out, err := a.retry.Do(ctx, prompt.Phase, step, func(ctx context.Context) (string, error) {
		return a.llm.Complete(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
