package htmlsanitize_test

import (
	"html/template"
	"strings"
	"testing"

	"github.com/studypointin/studypoint/internal/app/system/htmlsanitize"
)

func TestSanitize_PlainTextUnchanged(t *testing.T) {
	if got := htmlsanitize.Sanitize("Hello, World!"); got != "Hello, World!" {
		t.Errorf("plain text should pass through, got %q", got)
	}
}

func TestSanitize_SafeHTMLPreserved(t *testing.T) {
	for _, input := range []string{
		"<p><strong>Bold</strong> and <em>italic</em></p>",
		"<ul><li>Item 1</li><li>Item 2</li></ul>",
		"<ol><li>First</li><li>Second</li></ol>",
		"<blockquote>A quote</blockquote>",
		"<h1>Heading 1</h1><h2>Heading 2</h2>",
		"<pre><code>f(x)</code></pre>",
		"<u>underline</u> <s>strike</s> <sub>sub</sub> <sup>sup</sup> <mark>mark</mark>",
	} {
		if got := htmlsanitize.Sanitize(input); got != input {
			t.Errorf("expected %q preserved, got %q", input, got)
		}
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	got := htmlsanitize.Sanitize("<p>Hello</p><script>alert('xss')</script>")
	if got != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestSanitize_RemovesEventHandlers(t *testing.T) {
	got := htmlsanitize.Sanitize(`<img src="x" onerror="alert('xss')">`)
	if strings.Contains(got, "onerror") {
		t.Errorf("expected onerror stripped, got %q", got)
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	input := `<a href="javascript:alert('xss')">Click</a>`
	if got := htmlsanitize.Sanitize(input); got == input {
		t.Error("expected javascript: href stripped")
	}
}

func TestSanitize_RemovesIframeAndForms(t *testing.T) {
	got := htmlsanitize.Sanitize(`<p>Content</p><iframe src="https://evil.com"></iframe>`)
	if strings.Contains(got, "iframe") || !strings.Contains(got, "Content") {
		t.Errorf("unexpected result %q", got)
	}
	got = htmlsanitize.Sanitize(`<form action="/x"><input name="a"></form>`)
	if strings.Contains(got, "<form") || strings.Contains(got, "<input") {
		t.Errorf("expected form elements removed, got %q", got)
	}
}

func TestSanitize_TableAttributes(t *testing.T) {
	got := htmlsanitize.Sanitize(`<table class="grid"><tr><td colspan="2" style="text-align:center">Cell</td></tr></table>`)
	for _, want := range []string{`class="grid"`, `colspan="2"`, "style="} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %s preserved, got %q", want, got)
		}
	}
}

func TestIsPlainText(t *testing.T) {
	cases := map[string]bool{
		"":              true,
		"Hello, World!": true,
		"5 < 10":        true,
		"5 > 3":         true,
		"<p>Hello</p>":  false,
	}
	for input, want := range cases {
		if got := htmlsanitize.IsPlainText(input); got != want {
			t.Errorf("IsPlainText(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestPlainTextToHTML(t *testing.T) {
	if got := htmlsanitize.PlainTextToHTML(""); got != "" {
		t.Errorf("empty in, empty out; got %q", got)
	}
	if got := htmlsanitize.PlainTextToHTML("Line 1\nLine 2"); got != "<p>Line 1<br>Line 2</p>" {
		t.Errorf("unexpected %q", got)
	}
	if got := htmlsanitize.PlainTextToHTML("A & B"); got != "<p>A &amp; B</p>" {
		t.Errorf("unexpected %q", got)
	}
	got := htmlsanitize.PlainTextToHTML("<script>alert('x')</script>")
	if strings.Contains(got, "<script>") {
		t.Errorf("expected tags escaped, got %q", got)
	}
}

func TestPrepareForDisplay(t *testing.T) {
	if got := htmlsanitize.PrepareForDisplay("Hello"); got != template.HTML("<p>Hello</p>") {
		t.Errorf("unexpected %q", got)
	}
	if got := htmlsanitize.PrepareForDisplay("<p>Hello</p><script>x()</script>"); got != template.HTML("<p>Hello</p>") {
		t.Errorf("unexpected %q", got)
	}
	if got := htmlsanitize.PrepareForDisplay(""); got != "" {
		t.Errorf("unexpected %q", got)
	}
}
