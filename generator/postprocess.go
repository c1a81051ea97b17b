package generator

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
)

var (
	fenceRe = regexp.MustCompile("```")
	tagRe   = regexp.MustCompile(`<.*?>`)
)

// StripNonHTMLLines keeps only the lines of text that contain a tag-like
// substring. Code fence markers (``` or ```html), blank lines and plain prose
// are dropped; surviving lines keep their relative order.
func StripNonHTMLLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if fenceRe.MatchString(line) {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if tagRe.MatchString(line) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func hasTag(s string) bool {
	return tagRe.MatchString(s)
}

// markdownToHTML renders a fragment the model answered in Markdown.
func markdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
