// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"strings"

	"github.com/docscope/officemd/internal/document"
)

// PDFRenderer renders page-structured trees to Markdown. Every level of
// nesting indents block output by two spaces.
type PDFRenderer struct {
	maxDepth int
}

// NewPDFRenderer creates a PDFRenderer. A non-positive maxDepth means
// DefaultMaxDepth.
func NewPDFRenderer(maxDepth int) *PDFRenderer {
	return &PDFRenderer{maxDepth: limitOrDefault(maxDepth)}
}

func (r *PDFRenderer) Name() string {
	return "pdf"
}

func (r *PDFRenderer) CanHandle(t document.DocType) bool {
	return t == document.TypePDF
}

func (r *PDFRenderer) RenderText(doc *document.ParsedDocument, delimiter string) string {
	w := &pdfWriter{markdownWriter: newMarkdownWriter(doc, delimiter, r.maxDepth)}
	for _, n := range doc.Content {
		w.block(n, 0)
	}
	w.writeAttachments()
	return w.result()
}

type pdfWriter struct {
	*markdownWriter

	pageCounter int
}

// block renders n at the given nesting level, which is also its indent.
func (w *pdfWriter) block(n *document.ContentNode, level int) {
	if n == nil || level >= w.maxDepth {
		return
	}
	indent := strings.Repeat("  ", level)

	switch n.Type {
	case document.NodePage:
		w.pageCounter++
		w.line(indent + fmt.Sprintf("## 第 %d 页", w.pageCounter))
		w.blank()
		for _, c := range n.Children {
			w.block(c, level+1)
		}
		w.blank()
	case document.NodeHeading:
		// The page header already sits at level 2, so headings move down
		// one level. Children carry the heading's own text and are skipped.
		text := strings.TrimSpace(document.PlainTextWithin(n, w.maxDepth-level-1))
		if text == "" {
			return
		}
		w.line(indent + strings.Repeat("#", min(max(n.Level(), 1)+1, 6)) + " " + text)
		w.blank()
	case document.NodeParagraph:
		w.paragraph(indent, w.inline(n, level+1, w.delim))
	case document.NodeImage:
		w.writeImage(n, indent)
	case document.NodeTable:
		w.writeTable(n, level+1, indent)
	case document.NodeList:
		w.listItem(n, level, indent)
	default:
		if n.IsContainer() {
			for _, c := range n.Children {
				w.block(c, level+1)
			}
			return
		}
		w.paragraph(indent, formatRun(n))
	}
}

func (w *pdfWriter) paragraph(indent, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	w.line(indent + text)
	w.blank()
}

// listItem renders a list item on its own line. PDF lists carry no run
// state, so consecutive items are never separated.
func (w *pdfWriter) listItem(n *document.ContentNode, level int, indent string) {
	text := strings.TrimSpace(w.inline(n, level+1, " "))
	if text == "" {
		return
	}
	prefix := "-"
	if m := n.Metadata; m != nil && m.ListType == document.ListOrdered {
		prefix = fmt.Sprintf("%d.", m.ItemIndex+1)
	}
	w.line(indent + prefix + " " + text)
}
