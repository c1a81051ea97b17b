package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripNonHTMLLines(t *testing.T) {
	t.Run("Should drop fences and prose around markup", func(t *testing.T) {
		assert.Equal(t, "<h1>T</h1>", StripNonHTMLLines("```html\n<h1>T</h1>\nSome prose\n```\n"))
	})

	t.Run("Should keep tagged lines in order", func(t *testing.T) {
		in := "<h1>Title</h1>\n\n   \nintro without tags\n<p>one</p>\n```\n<p>two <strong>x</strong></p>\n"
		assert.Equal(t, "<h1>Title</h1>\n<p>one</p>\n<p>two <strong>x</strong></p>", StripNonHTMLLines(in))
	})

	t.Run("Should drop a fence line even when it carries markup", func(t *testing.T) {
		assert.Equal(t, "<p>a</p>", StripNonHTMLLines("```html <div>\n<p>a</p>"))
	})

	t.Run("Should return empty text when nothing looks like HTML", func(t *testing.T) {
		assert.Equal(t, "", StripNonHTMLLines("just words\n\nmore words"))
	})

	t.Run("Should only emit non-blank tagged lines", func(t *testing.T) {
		in := "```html\n<h2>A</h2>\n\nplain\n<img src=\"image_placeholder.jpg\" alt=\"x\">\n<figcaption>c</figcaption>\n```\n  \n<em>end</em>"
		out := StripNonHTMLLines(in)
		for _, line := range strings.Split(out, "\n") {
			assert.NotEmpty(t, strings.TrimSpace(line))
			assert.NotContains(t, line, "```")
			assert.True(t, hasTag(line), line)
		}
		assert.Len(t, strings.Split(out, "\n"), 4)
	})
}

func TestMarkdownToHTML(t *testing.T) {
	t.Run("Should render headings and emphasis", func(t *testing.T) {
		out, err := markdownToHTML("## Section\n\nSome **bold** text")
		require.NoError(t, err)
		assert.Contains(t, out, "<h2>Section</h2>")
		assert.Contains(t, out, "<strong>bold</strong>")
	})
}
