package richtext

import (
	"html/template"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Policy is the allow-list applied to stored markup before it reaches a page.
// It admits exactly what the toolbar and a browser's contenteditable produce.
func Policy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("b", "strong", "i", "em", "u", "ul", "ol", "li", "br", "div", "p", "span", "hr")
		p.AllowStyles("border", "border-top", "margin").
			Matching(regexp.MustCompile(`^[a-z0-9#.\s]+$`)).
			OnElements("hr")
		policy = p
	})
	return policy
}

// Sanitize strips everything outside the allow-list.
func Sanitize(markup string) string {
	return Policy().Sanitize(markup)
}

// Render returns stored markup ready for template injection.
func Render(markup string) template.HTML {
	return template.HTML(Sanitize(markup))
}

// RenderPlain escapes plain text and keeps its line breaks.
func RenderPlain(text string) template.HTML {
	escaped := template.HTMLEscapeString(text)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// Excerpt returns at most n characters of the text content of markup.
func Excerpt(markup string, n int) string {
	r := []rune(strings.TrimSpace(TextContent(Sanitize(markup))))
	if len(r) <= n {
		return string(r)
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
