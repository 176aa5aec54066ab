package main

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(
		// Raw HTML is let through the parser and stripped by the sanitizer.
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// renderMarkdown converts post source to sanitized HTML. It is deterministic:
// the same source always produces the same output.
func renderMarkdown(source string) string {
	if source == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		// goldmark only fails on writer errors, which bytes.Buffer never returns.
		return sanitizer.Sanitize(source)
	}
	return sanitizer.Sanitize(buf.String())
}
