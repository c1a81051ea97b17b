package generator

import (
	"fmt"
	"strings"

	"seo_article_generator/apperr"
)

// DefaultMaxTokens is the token budget used for chunking and for each completion.
const DefaultMaxTokens = 4096

// SplitIntoChunks splits text on whitespace into groups of maxTokens/2
// words. Halving leaves headroom for words that encode to several tokens.
func SplitIntoChunks(text string, maxTokens int) ([]string, error) {
	if maxTokens <= 1 {
		return nil, apperr.New(apperr.KindInvalidConfiguration, "generator.SplitIntoChunks",
			fmt.Sprintf("max tokens must be greater than 1, got %d", maxTokens))
	}
	words := strings.Fields(text)
	size := maxTokens / 2

	chunks := make([]string, 0, (len(words)+size-1)/size)
	for i := 0; i < len(words); i += size {
		end := min(i+size, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks, nil
}
