// Package markdown рендерит описания товаров из markdown в HTML.
package markdown

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	parser     goldmark.Markdown
	parserOnce sync.Once
)

// Сырой HTML в описаниях не выводится: goldmark пропускает его без WithUnsafe.
func getParser() goldmark.Markdown {
	parserOnce.Do(func() {
		parser = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return parser
}

// ToHTML превращает markdown в безопасный HTML для шаблонов.
func ToHTML(source string) (template.HTML, error) {
	const op = "markdown.ToHTML"
	var buf bytes.Buffer
	if err := getParser().Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return template.HTML(buf.String()), nil
}

var firstSentence = regexp.MustCompile(`^([^.]*\.)`)

// FirstSentence возвращает текст до первой точки включительно
// или весь текст, если точки нет.
func FirstSentence(text string) string {
	if m := firstSentence.FindString(text); m != "" {
		return m
	}
	return text
}
