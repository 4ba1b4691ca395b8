// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"strings"

	"github.com/docscope/officemd/internal/document"
)

// defaultImageAlt is used when neither the node nor its attachment
// carries alternative text.
const defaultImageAlt = "图片"

// markdownWriter holds what the Word and PDF renderers share: the output
// buffer, the block delimiter and the inline formatting rules.
type markdownWriter struct {
	doc      *document.ParsedDocument
	delim    string
	maxDepth int
	sb       strings.Builder
}

func newMarkdownWriter(doc *document.ParsedDocument, delimiter string, maxDepth int) *markdownWriter {
	return &markdownWriter{doc: doc, delim: delimiter, maxDepth: maxDepth}
}

func (w *markdownWriter) line(s string) {
	w.sb.WriteString(s)
	w.sb.WriteString(w.delim)
}

func (w *markdownWriter) blank() {
	w.sb.WriteString(w.delim)
}

// inline renders n as a single run of Markdown. Leaves are formatted;
// containers join their children by the joinChildren rule, using sep
// between sub-blocks.
func (w *markdownWriter) inline(n *document.ContentNode, depth int, sep string) string {
	if n == nil || depth > w.maxDepth {
		return ""
	}
	if !n.IsContainer() {
		if n.Type == document.NodeImage {
			img, _ := w.image(n)
			return img
		}
		return formatRun(n)
	}
	return joinChildren(n, sep, func(c *document.ContentNode) string {
		return w.inline(c, depth+1, sep)
	})
}

// formatRun applies bold, italic, underline and strikethrough, in that
// nesting order, then wraps the result in a link when one is set.
// Whitespace-only runs are returned untouched.
func formatRun(n *document.ContentNode) string {
	text := n.Text
	if strings.TrimSpace(text) == "" {
		return text
	}
	if f := n.Formatting; f != nil {
		if f.Bold {
			text = "**" + text + "**"
		}
		if f.Italic {
			text = "*" + text + "*"
		}
		if f.Underline {
			text = "<u>" + text + "</u>"
		}
		if f.Strikethrough {
			text = "~~" + text + "~~"
		}
	}
	if link := n.Link(); link != "" {
		text = "[" + text + "](" + link + ")"
	}
	return text
}

// image returns the Markdown image reference for n and its caption, which
// is the node's own text.
func (w *markdownWriter) image(n *document.ContentNode) (string, string) {
	var name, alt string
	if n.Metadata != nil {
		name = n.Metadata.AttachmentName
		alt = n.Metadata.AltText
	}
	if alt == "" {
		if a, ok := w.doc.FindAttachment(name); ok {
			alt = a.AltText
		}
	}
	if alt == "" {
		alt = defaultImageAlt
	}
	caption := ""
	if !n.IsContainer() {
		caption = strings.TrimSpace(n.Text)
	}
	return fmt.Sprintf("![%s](%s)", alt, name), caption
}

// writeImage emits an image block: reference, optional italic caption,
// blank line.
func (w *markdownWriter) writeImage(n *document.ContentNode, indent string) {
	img, caption := w.image(n)
	w.line(indent + img)
	if caption != "" {
		w.line(indent + "*" + caption + "*")
	}
	w.blank()
}

// tableRows extracts the cell text of every row of a table node.
func (w *markdownWriter) tableRows(table *document.ContentNode, depth int) [][]string {
	rows := make([][]string, 0, len(table.Children))
	for _, row := range table.Children {
		if row == nil || depth+1 > w.maxDepth {
			continue
		}
		cells := make([]string, 0, len(row.Children))
		for _, cell := range row.Children {
			cells = append(cells, w.cellText(cell, depth+2))
		}
		rows = append(rows, cells)
	}
	return rows
}

// cellText renders a cell on one line. Paragraphs inside the cell are
// separated by a space and pipes are escaped so the row stays well formed.
func (w *markdownWriter) cellText(cell *document.ContentNode, depth int) string {
	text := w.inline(cell, depth, " ")
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "|", `\|`)
	return strings.TrimSpace(text)
}

// writeTable emits a GitHub-flavored table: header row, one separator
// group per header cell, then the remaining rows, then a blank line.
func (w *markdownWriter) writeTable(table *document.ContentNode, depth int, indent string) {
	rows := w.tableRows(table, depth)
	if len(rows) == 0 {
		return
	}
	w.line(indent + tableLine(rows[0]))
	sep := make([]string, len(rows[0]))
	for i := range sep {
		sep[i] = "---"
	}
	w.line(indent + tableLine(sep))
	for _, r := range rows[1:] {
		w.line(indent + tableLine(r))
	}
	w.blank()
}

func tableLine(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}

// writeAttachments appends the attachment index shared by the Word and
// PDF renderers.
func (w *markdownWriter) writeAttachments() {
	if len(w.doc.Attachments) == 0 {
		return
	}
	w.line("# 附件")
	w.blank()
	for i, a := range w.doc.Attachments {
		entry := fmt.Sprintf("%d. **%s**", i+1, a.Name)
		if a.MimeType != "" {
			entry += " (" + a.MimeType + ")"
		}
		w.line(entry)
		if ocr := strings.Join(strings.Fields(a.OCRText), " "); ocr != "" {
			w.line("   *OCR: " + ocr + "*")
		}
	}
}

// result returns the buffered output without leading or trailing
// whitespace.
func (w *markdownWriter) result() string {
	return strings.TrimSpace(w.sb.String())
}

func clampLevel(level int) int {
	return min(max(level, 1), 6)
}
