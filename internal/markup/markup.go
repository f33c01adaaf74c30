// Package markup is the boundary to the text renderer. The engine treats
// rendering as a black box: whenever post or comment text is set, the
// renderer turns it into sanitized HTML that is stored alongside the raw
// text.
package markup

import (
	"html"
	"strings"
)

// Renderer turns raw post text into sanitized HTML.
type Renderer interface {
	Render(text string) string
}

// Plain is the fallback renderer: it escapes everything and wraps blocks
// separated by blank lines in paragraph tags. Real deployments plug in a
// richer renderer through the Renderer interface.
type Plain struct {
	// Inline suppresses paragraph wrapping, for single-line contexts
	// such as comments.
	Inline bool
}

// Render implements Renderer.
func (p Plain) Render(text string) string {
	if p.Inline {
		return html.EscapeString(strings.TrimSpace(text))
	}

	var b strings.Builder
	for _, paragraph := range splitParagraphs(text) {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(paragraph))
		b.WriteString("</p>")
	}
	return b.String()
}

// splitParagraphs splits text on runs of blank lines.
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var paragraphs []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			paragraphs = append(paragraphs, block)
		}
	}
	return paragraphs
}
