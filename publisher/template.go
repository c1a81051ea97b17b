package publisher

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"seo_article_generator/apperr"
)

// InjectArticle replaces the first placeholder marker in tmpl with the
// article wrapped in <article>. Everything around the marker is untouched.
func InjectArticle(tmpl, marker, article string) (string, error) {
	idx, err := locateMarker(tmpl, marker)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(len(tmpl) + len(article) + len("<article></article>"))
	b.WriteString(tmpl[:idx])
	b.WriteString("<article>")
	b.WriteString(article)
	b.WriteString("</article>")
	b.WriteString(tmpl[idx+len(marker):])
	return b.String(), nil
}

// locateMarker returns the byte offset of the first usable marker. A marker
// written as an HTML comment only counts where the tokenizer sees a real
// comment, so the same text inside <script> or an attribute is skipped.
func locateMarker(tmpl, marker string) (int, error) {
	if marker == "" {
		return 0, apperr.New(apperr.KindConfiguration, "publisher.InjectArticle", "placeholder marker is empty")
	}
	if !isCommentMarker(marker) {
		if idx := strings.Index(tmpl, marker); idx >= 0 {
			return idx, nil
		}
		return 0, missingMarker(marker)
	}

	z := html.NewTokenizer(bytes.NewReader([]byte(tmpl)))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				return 0, missingMarker(marker)
			}
			return 0, apperr.Wrap(apperr.KindConfiguration, "publisher.InjectArticle", z.Err())
		}
		raw := z.Raw()
		if tt == html.CommentToken && string(raw) == marker {
			return offset, nil
		}
		offset += len(raw)
	}
}

func isCommentMarker(marker string) bool {
	return strings.HasPrefix(marker, "<!--") && strings.HasSuffix(marker, "-->")
}

func missingMarker(marker string) error {
	return apperr.New(apperr.KindConfiguration, "publisher.InjectArticle",
		fmt.Sprintf("template has no placeholder %q", marker))
}
