// Package htmlsanitize cleans user-authored HTML before storage or display.
//
// Material descriptions and page bodies are edited by admins in a rich-text
// widget, so the markup is semi-trusted; sanitizing on every render keeps a
// compromised admin account from turning into stored XSS.
package htmlsanitize

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	// The editor emits tables and inline alignment styles.
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("style").OnElements("table", "tr", "td", "th")
	p.AllowStyles("width", "text-align").Globally()

	p.AllowElements("u", "s", "sub", "sup", "mark", "hr")
	return p
}

// Sanitize strips dangerous markup and returns the cleaned HTML string.
func Sanitize(html string) string {
	return policy.Sanitize(html)
}

// SanitizeToHTML sanitizes and wraps the result in template.HTML so templates
// render it unescaped.
func SanitizeToHTML(html string) template.HTML {
	return template.HTML(Sanitize(html))
}

// IsPlainText reports whether s contains no HTML tags.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// PlainTextToHTML escapes plain text and converts newlines to <br>, wrapping
// the whole thing in a paragraph.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(s)
	escaped = strings.ReplaceAll(escaped, "&#39;", "'")
	escaped = strings.ReplaceAll(escaped, "&#34;", "\"")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return "<p>" + escaped + "</p>"
}

// PrepareForDisplay renders stored content for a template: plain text gets
// paragraph/line-break treatment, HTML gets sanitized.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}
