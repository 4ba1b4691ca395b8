// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/docscope/officemd/internal/document"
)

// headingKeywords matches short paragraphs that read like section titles
// in Chinese documents ("第三章", "示例", "1.").
var headingKeywords = regexp.MustCompile(`^(示例|标题|章节|第[一二三四五六七八九十]+[章节条页]|\d+\.)`)

const (
	// headingMinSize is the font size, in points, from which an all-bold
	// paragraph is promoted to a heading.
	headingMinSize = 14
	// headingMaxRunes bounds the keyword rule to short paragraphs.
	headingMaxRunes = 20
	// inferredHeadingLevel is the level of headings found by formatting.
	inferredHeadingLevel = 2
)

// WordRenderer renders docx trees to Markdown.
type WordRenderer struct {
	maxDepth int
}

// NewWordRenderer creates a WordRenderer. A non-positive maxDepth means
// DefaultMaxDepth.
func NewWordRenderer(maxDepth int) *WordRenderer {
	return &WordRenderer{maxDepth: limitOrDefault(maxDepth)}
}

func (r *WordRenderer) Name() string {
	return "word"
}

func (r *WordRenderer) CanHandle(t document.DocType) bool {
	return t == document.TypeDocx
}

func (r *WordRenderer) RenderText(doc *document.ParsedDocument, delimiter string) string {
	w := &wordWriter{markdownWriter: newMarkdownWriter(doc, delimiter, r.maxDepth)}
	for _, n := range doc.Content {
		w.block(n, 1)
	}
	w.endList()
	w.writeAttachments()
	return w.result()
}

// wordWriter tracks the list run in progress so that a change of level or
// type, or the end of the run, is separated by a blank line.
type wordWriter struct {
	*markdownWriter

	inList    bool
	listLevel int
	listType  document.ListType
}

func (w *wordWriter) endList() {
	if w.inList {
		w.blank()
	}
	w.inList = false
}

func (w *wordWriter) block(n *document.ContentNode, depth int) {
	if n == nil || depth > w.maxDepth {
		return
	}
	switch n.Type {
	case document.NodeHeading:
		w.endList()
		w.heading(clampLevel(n.Level()), document.PlainTextWithin(n, w.maxDepth-depth))
	case document.NodeParagraph:
		w.endList()
		if IsHeadingByFormatting(n) {
			w.heading(inferredHeadingLevel, document.PlainTextWithin(n, w.maxDepth-depth))
			return
		}
		w.paragraph(w.inline(n, depth, w.delim))
	case document.NodeList:
		w.listItem(n, depth)
	case document.NodeTable:
		w.endList()
		w.writeTable(n, depth, "")
	case document.NodeImage:
		w.endList()
		w.writeImage(n, "")
	default:
		if n.IsContainer() {
			for _, c := range n.Children {
				w.block(c, depth+1)
			}
			return
		}
		w.endList()
		w.paragraph(formatRun(n))
	}
}

func (w *wordWriter) heading(level int, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	w.line(strings.Repeat("#", level) + " " + text)
	w.blank()
}

func (w *wordWriter) paragraph(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	w.line(text)
	w.blank()
}

func (w *wordWriter) listItem(n *document.ContentNode, depth int) {
	level, listType, index := 0, document.ListUnordered, 0
	if m := n.Metadata; m != nil {
		level = max(m.Indentation, 0)
		index = m.ItemIndex
		if m.ListType == document.ListOrdered {
			listType = document.ListOrdered
		}
	}

	if w.inList && (level != w.listLevel || listType != w.listType) {
		w.blank()
	}
	w.inList, w.listLevel, w.listType = true, level, listType

	prefix := "-"
	if listType == document.ListOrdered {
		prefix = fmt.Sprintf("%d.", index+1)
	}
	text := strings.TrimSpace(w.inline(n, depth, " "))
	w.line(strings.Repeat("  ", level) + prefix + " " + text)
}

// IsHeadingByFormatting reports whether a Word paragraph should be
// rendered as a heading even though it has no heading style. The checks
// run in a fixed order and the first match wins:
//
//  1. empty text is never a heading;
//  2. style ID "2" or "3" is a heading;
//  3. all runs bold and some run at least 14pt is a heading;
//  4. all runs bold, shorter than 20 characters and starting with a
//     section keyword is a heading.
func IsHeadingByFormatting(n *document.ContentNode) bool {
	if n == nil {
		return false
	}
	text := strings.TrimSpace(document.PlainText(n))
	if text == "" {
		return false
	}
	if s := n.Style(); s == "2" || s == "3" {
		return true
	}
	bold := allRunsBold(n)
	if bold && maxFontSize(n) >= headingMinSize {
		return true
	}
	length := utf8.RuneCountInString(text)
	return bold && length > 0 && length < headingMaxRunes && headingKeywords.MatchString(text)
}

// allRunsBold reports whether every non-blank leaf under n is bold, either
// itself or through an ancestor up to n.
func allRunsBold(n *document.ContentNode) bool {
	type frame struct {
		node *document.ContentNode
		bold bool
	}
	stack := []frame{{node: n}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node == nil {
			continue
		}
		bold := f.bold || f.node.Bold()
		if !f.node.IsContainer() {
			if strings.TrimSpace(f.node.Text) != "" && !bold {
				return false
			}
			continue
		}
		for _, c := range f.node.Children {
			stack = append(stack, frame{node: c, bold: bold})
		}
	}
	return true
}

// maxFontSize returns the largest font size, in points, set on n or any
// of its descendants.
func maxFontSize(n *document.ContentNode) float64 {
	largest := 0.0
	stack := []*document.ContentNode{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == nil {
			continue
		}
		largest = max(largest, cur.Formatting.SizePoints())
		stack = append(stack, cur.Children...)
	}
	return largest
}
