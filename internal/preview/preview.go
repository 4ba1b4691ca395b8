// SPDX-License-Identifier: Apache-2.0

// Package preview turns rendered Markdown into HTML for document previews.
package preview

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSanitize enables or disables HTML sanitization with the bluemonday
// UGC policy. Sanitization is on by default.
func WithSanitize(on bool) Option {
	return func(r *Renderer) {
		if on {
			r.policy = bluemonday.UGCPolicy()
		} else {
			r.policy = nil
		}
	}
}

// New creates a Renderer. Raw HTML in the Markdown (the <u> tags emitted
// for underlined runs) is passed through and then sanitized.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy: bluemonday.UGCPolicy(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sanitizing reports whether output is passed through the HTML policy.
func (r *Renderer) Sanitizing() bool {
	return r.policy != nil
}

// HTML converts a Markdown fragment to an HTML fragment.
func (r *Renderer) HTML(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	if r.policy == nil {
		return buf.Bytes(), nil
	}
	return r.policy.SanitizeBytes(buf.Bytes()), nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; line-height: 1.5; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.5rem; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Page wraps an HTML fragment produced by HTML in a standalone page. The
// title is escaped; the body is trusted.
func Page(title string, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body)})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}
