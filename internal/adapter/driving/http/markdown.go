package httphandler

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
)

func init() {
	// Hard wraps keep the line breaks the content transformer produced.
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
}

// RenderPreview converts reposted plain text to sanitized HTML.
// Returns empty string for empty input.
func RenderPreview(text string) string {
	if text == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(text), &buf); err != nil {
		return htmlSanitizer.Sanitize(text)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

// SanitizeHTML strips scripts, styles and unsafe attributes from status HTML
// received from remote instances.
func SanitizeHTML(content string) string {
	if content == "" {
		return ""
	}
	return htmlSanitizer.Sanitize(content)
}
