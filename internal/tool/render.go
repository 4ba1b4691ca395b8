// SPDX-License-Identifier: Apache-2.0

// Package tool exposes the renderers as MCP tools.
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docscope/officemd/internal/document"
	"github.com/docscope/officemd/internal/preview"
	"github.com/docscope/officemd/internal/render"
)

var documentProperty = map[string]interface{}{
	"type": "string",
	"description": "A parsed office document tree serialized as JSON: " +
		`{"type": "docx|xlsx|pptx|pdf|...", "metadata": {...}, "content": [nodes], "attachments": [...]}`,
}

// MetadataRenderOfficeText describes the render_office_text tool.
var MetadataRenderOfficeText = &mcp.Tool{
	Name: "render_office_text",
	Description: "Render a parsed office document tree as Markdown-flavored text. " +
		"Word documents become Markdown with headings, lists, tables and images; " +
		"spreadsheets are listed sheet by sheet and row by row; presentations are " +
		"grouped into numbered slides; PDFs are rendered page by page. " +
		"Other document types are flattened to plain text.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"document"},
		"properties": map[string]interface{}{
			"document": documentProperty,
			"delimiter": map[string]interface{}{
				"type":        "string",
				"description": "Line delimiter used between blocks. Defaults to a newline.",
			},
		},
	},
}

// InputRenderOfficeText is the input for the RenderOfficeText tool.
type InputRenderOfficeText struct {
	Document  string `json:"document"`
	Delimiter string `json:"delimiter,omitempty"`
}

// OutputRenderOfficeText is the output for the RenderOfficeText tool.
type OutputRenderOfficeText struct {
	// Text is the rendered document.
	Text string `json:"text"`
	// Renderer is the name of the renderer that was selected.
	Renderer string `json:"renderer"`
	// DocType is the document type read from the input.
	DocType string `json:"doc_type"`
}

// MetadataRenderOfficeJSON describes the render_office_json tool.
var MetadataRenderOfficeJSON = &mcp.Tool{
	Name: "render_office_json",
	Description: "Project a parsed office document tree to a structured JSON form. " +
		"Spreadsheets become sheets of fixed-width rows with dates resolved, " +
		"presentations become slides of typed elements, and every other type " +
		"becomes a list of top-level text blocks.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"document"},
		"properties": map[string]interface{}{
			"document": documentProperty,
		},
	},
}

// InputRenderOfficeJSON is the input for the RenderOfficeJSON tool.
type InputRenderOfficeJSON struct {
	Document string `json:"document"`
}

// OutputRenderOfficeJSON is the output for the RenderOfficeJSON tool.
type OutputRenderOfficeJSON struct {
	// JSON is the structured projection of the document.
	JSON any `json:"json"`
	// Renderer is the name of the renderer that was selected.
	Renderer string `json:"renderer"`
}

// MetadataPreviewOfficeHTML describes the preview_office_html tool.
var MetadataPreviewOfficeHTML = &mcp.Tool{
	Name:        "preview_office_html",
	Description: "Render a parsed office document tree to an HTML fragment suitable for previews.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"document"},
		"properties": map[string]interface{}{
			"document": documentProperty,
			"sanitize": map[string]interface{}{
				"type":        "boolean",
				"description": "Strip unsafe HTML from the output. Defaults to true.",
			},
		},
	},
}

// InputPreviewOfficeHTML is the input for the PreviewOfficeHTML tool.
type InputPreviewOfficeHTML struct {
	Document string `json:"document"`
	Sanitize *bool  `json:"sanitize,omitempty"`
}

// OutputPreviewOfficeHTML is the output for the PreviewOfficeHTML tool.
type OutputPreviewOfficeHTML struct {
	HTML string `json:"html"`
}

var dispatcher = render.NewDispatcher()

// RegisterAll adds every rendering tool to srv.
func RegisterAll(srv *mcp.Server) {
	mcp.AddTool(srv, MetadataRenderOfficeText, RenderOfficeText)
	mcp.AddTool(srv, MetadataRenderOfficeJSON, RenderOfficeJSON)
	mcp.AddTool(srv, MetadataPreviewOfficeHTML, PreviewOfficeHTML)
}

// RenderOfficeText renders the provided document to text.
func RenderOfficeText(_ context.Context, _ *mcp.CallToolRequest, input InputRenderOfficeText) (*mcp.CallToolResult, OutputRenderOfficeText, error) {
	doc, err := decodeDocument(input.Document)
	if err != nil {
		return nil, OutputRenderOfficeText{}, err
	}
	return nil, OutputRenderOfficeText{
		Text:     dispatcher.RenderToText(doc, input.Delimiter),
		Renderer: dispatcher.Select(doc.Type).Name(),
		DocType:  string(doc.Type),
	}, nil
}

// RenderOfficeJSON returns the structured projection of the provided document.
func RenderOfficeJSON(_ context.Context, _ *mcp.CallToolRequest, input InputRenderOfficeJSON) (*mcp.CallToolResult, OutputRenderOfficeJSON, error) {
	doc, err := decodeDocument(input.Document)
	if err != nil {
		return nil, OutputRenderOfficeJSON{}, err
	}
	return nil, OutputRenderOfficeJSON{
		JSON:     dispatcher.RenderToJSON(doc),
		Renderer: dispatcher.Select(doc.Type).Name(),
	}, nil
}

// PreviewOfficeHTML renders the provided document to an HTML fragment.
func PreviewOfficeHTML(_ context.Context, _ *mcp.CallToolRequest, input InputPreviewOfficeHTML) (*mcp.CallToolResult, OutputPreviewOfficeHTML, error) {
	doc, err := decodeDocument(input.Document)
	if err != nil {
		return nil, OutputPreviewOfficeHTML{}, err
	}
	sanitize := input.Sanitize == nil || *input.Sanitize
	out, err := preview.New(preview.WithSanitize(sanitize)).HTML(dispatcher.RenderToText(doc, render.DefaultDelimiter))
	if err != nil {
		return nil, OutputPreviewOfficeHTML{}, err
	}
	return nil, OutputPreviewOfficeHTML{HTML: string(out)}, nil
}

// decodeDocument validates and decodes a JSON document argument.
func decodeDocument(raw string) (*document.ParsedDocument, error) {
	if raw == "" {
		return nil, fmt.Errorf("document is required")
	}
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("document must be a JSON object")
	}
	if err := document.Validate([]byte(raw)); err != nil {
		return nil, err
	}
	return document.Decode([]byte(raw))
}
