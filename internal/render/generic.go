// SPDX-License-Identifier: Apache-2.0

package render

import (
	"strings"

	"github.com/docscope/officemd/internal/document"
)

// GenericRenderer extracts flat text from any document type. It is the
// default arm of the Dispatcher and treats every node type alike.
type GenericRenderer struct {
	maxDepth int
}

// NewGenericRenderer creates a GenericRenderer. A non-positive maxDepth
// means DefaultMaxDepth.
func NewGenericRenderer(maxDepth int) *GenericRenderer {
	return &GenericRenderer{maxDepth: limitOrDefault(maxDepth)}
}

func (g *GenericRenderer) Name() string {
	return "generic"
}

// CanHandle accepts every type.
func (g *GenericRenderer) CanHandle(document.DocType) bool {
	return true
}

// RenderText joins the text of each top-level node with delimiter.
func (g *GenericRenderer) RenderText(doc *document.ParsedDocument, delimiter string) string {
	return strings.Join(g.topLevelText(doc, delimiter), delimiter)
}

// GenericJSON is the projection used for every type without a specialized
// one. Content holds one entry per non-empty top-level node.
type GenericJSON struct {
	Type        document.DocType      `json:"type"`
	Metadata    map[string]any        `json:"metadata"`
	Content     []string              `json:"content"`
	Attachments []document.Attachment `json:"attachments"`
}

func (g *GenericRenderer) RenderJSON(doc *document.ParsedDocument) any {
	return GenericJSON{
		Type:        doc.Type,
		Metadata:    metadataOrEmpty(doc.Metadata),
		Content:     g.topLevelText(doc, DefaultDelimiter),
		Attachments: attachmentsOrEmpty(doc.Attachments),
	}
}

func (g *GenericRenderer) topLevelText(doc *document.ParsedDocument, delimiter string) []string {
	parts := make([]string, 0, len(doc.Content))
	for _, n := range doc.Content {
		if s := g.node(n, delimiter, 1); s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

func (g *GenericRenderer) node(n *document.ContentNode, delimiter string, depth int) string {
	if n == nil || depth > g.maxDepth {
		return ""
	}
	if !n.IsContainer() {
		return n.Text
	}
	return joinChildren(n, delimiter, func(c *document.ContentNode) string {
		return g.node(c, delimiter, depth+1)
	})
}

// joinChildren renders the children of n and joins the non-empty results.
// Sub-blocks (first child is itself a container) are joined with
// delimiter; runs of leaves are concatenated with no separator.
func joinChildren(n *document.ContentNode, delimiter string, render func(*document.ContentNode) string) string {
	sep := ""
	if n.Children[0].IsContainer() {
		sep = delimiter
	}
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		if s := render(c); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}
