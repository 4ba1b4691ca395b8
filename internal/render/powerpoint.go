// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"strings"

	"github.com/docscope/officemd/internal/document"
)

// ElementType classifies the elements of a slide.
type ElementType string

const (
	ElementTitle     ElementType = "title"
	ElementTable     ElementType = "table"
	ElementParagraph ElementType = "paragraph"
	ElementList      ElementType = "list"
	ElementImage     ElementType = "image"
)

// PowerPointRenderer renders pptx trees slide by slide.
type PowerPointRenderer struct {
	maxDepth int
}

// NewPowerPointRenderer creates a PowerPointRenderer. A non-positive
// maxDepth means DefaultMaxDepth.
func NewPowerPointRenderer(maxDepth int) *PowerPointRenderer {
	return &PowerPointRenderer{maxDepth: limitOrDefault(maxDepth)}
}

func (r *PowerPointRenderer) Name() string {
	return "powerpoint"
}

func (r *PowerPointRenderer) CanHandle(t document.DocType) bool {
	return t == document.TypePptx
}

// PowerPointJSON is the JSON projection of a presentation.
type PowerPointJSON struct {
	Type        document.DocType      `json:"type"`
	Metadata    map[string]any        `json:"metadata"`
	Slides      []Slide               `json:"slides"`
	Attachments []document.Attachment `json:"attachments"`
}

// Slide holds the elements of one slide in document order.
type Slide struct {
	Elements []SlideElement `json:"elements"`
}

// SlideElement is one title, paragraph, list, table or image. Content is
// a string, except for tables where it is a [][]string.
type SlideElement struct {
	Type     ElementType `json:"type"`
	Content  any         `json:"content"`
	Metadata any         `json:"metadata,omitempty"`
}

// TableMetadata records the shape of a table element.
type TableMetadata struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

func (r *PowerPointRenderer) RenderJSON(doc *document.ParsedDocument) any {
	c := &slideCollector{maxDepth: r.maxDepth}
	for _, n := range doc.Content {
		c.node(n, 1)
	}
	return PowerPointJSON{
		Type:        doc.Type,
		Metadata:    metadataOrEmpty(doc.Metadata),
		Slides:      c.finish(),
		Attachments: attachmentsOrEmpty(doc.Attachments),
	}
}

// slideCollector groups elements into slides. A page node opens a slide;
// a level-1 heading opens one unless the current slide is a freshly opened
// page that has no title yet.
type slideCollector struct {
	maxDepth int
	slides   []*slideState
}

type slideState struct {
	slide    Slide
	fromPage bool
	hasTitle bool
}

func (c *slideCollector) current() *slideState {
	if len(c.slides) == 0 {
		c.slides = append(c.slides, &slideState{})
	}
	return c.slides[len(c.slides)-1]
}

func (c *slideCollector) open(fromPage bool) {
	if cur := c.current(); len(cur.slide.Elements) == 0 && !cur.fromPage {
		cur.fromPage = fromPage
		return
	}
	c.slides = append(c.slides, &slideState{fromPage: fromPage})
}

func (c *slideCollector) add(e SlideElement) {
	cur := c.current()
	cur.slide.Elements = append(cur.slide.Elements, e)
}

func (c *slideCollector) node(n *document.ContentNode, depth int) {
	if n == nil || depth > c.maxDepth {
		return
	}
	switch n.Type {
	case document.NodePage:
		c.open(true)
		for _, child := range n.Children {
			c.node(child, depth+1)
		}
	case document.NodeHeading:
		if slideTitleLevel(n) {
			if cur := c.current(); len(cur.slide.Elements) > 0 && !(cur.fromPage && !cur.hasTitle) {
				c.open(false)
			}
		}
		c.add(SlideElement{Type: ElementTitle, Content: headingText(n, c.maxDepth-depth)})
		c.current().hasTitle = true
	case document.NodeTable:
		rows := slideTableRows(n, c.maxDepth-depth)
		cols := 0
		for _, row := range rows {
			cols = max(cols, len(row))
		}
		c.add(SlideElement{
			Type:     ElementTable,
			Content:  rows,
			Metadata: TableMetadata{Rows: len(rows), Columns: cols},
		})
	case document.NodeParagraph:
		if text := strings.TrimSpace(document.PlainTextWithin(n, c.maxDepth-depth)); text != "" {
			c.add(SlideElement{Type: ElementParagraph, Content: text})
		}
	case document.NodeList:
		if items := listItems(n, c.maxDepth-depth); len(items) > 0 {
			c.add(SlideElement{Type: ElementList, Content: strings.Join(items, "\n")})
		}
	case document.NodeImage:
		content := strings.TrimSpace(n.Text)
		if content == "" {
			content = defaultImageAlt
		}
		e := SlideElement{Type: ElementImage, Content: content}
		if n.Metadata != nil {
			e.Metadata = n.Metadata
		}
		c.add(e)
	default:
		for _, child := range n.Children {
			c.node(child, depth+1)
		}
	}
}

// finish drops the implicit leading slide when nothing landed in it.
func (c *slideCollector) finish() []Slide {
	slides := make([]Slide, 0, len(c.slides))
	for _, s := range c.slides {
		if len(s.slide.Elements) == 0 && !s.fromPage {
			continue
		}
		if s.slide.Elements == nil {
			s.slide.Elements = []SlideElement{}
		}
		slides = append(slides, s.slide)
	}
	return slides
}

// slideTitleLevel reports whether a heading starts a slide. Headings
// without a level count as level 1.
func slideTitleLevel(n *document.ContentNode) bool {
	return n.Level() <= 1
}

// headingText is the heading's own text, or the text of its runs when the
// parser split it into children. Runs more than levels below n are left out.
func headingText(n *document.ContentNode, levels int) string {
	if n.Text != "" {
		return strings.TrimSpace(n.Text)
	}
	return strings.TrimSpace(document.PlainTextWithin(n, levels))
}

// slideTableRows extracts a table as rows of cell strings. A cell's text is
// the text of each of its children, space-joined. levels is how far below
// the table the tree may be read.
func slideTableRows(table *document.ContentNode, levels int) [][]string {
	rows := make([][]string, 0, len(table.Children))
	if levels < 1 {
		return rows
	}
	for _, row := range table.Children {
		if row == nil {
			continue
		}
		cells := make([]string, 0, len(row.Children))
		for _, cell := range row.Children {
			if levels < 2 {
				break
			}
			cells = append(cells, slideCellText(cell, levels-2))
		}
		rows = append(rows, cells)
	}
	return rows
}

func slideCellText(cell *document.ContentNode, levels int) string {
	if cell == nil || levels < 0 {
		return ""
	}
	if !cell.IsContainer() {
		return strings.TrimSpace(cell.Text)
	}
	parts := make([]string, 0, len(cell.Children))
	for _, c := range cell.Children {
		if t := strings.TrimSpace(document.PlainTextWithin(c, levels-1)); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// listItems returns the non-blank paragraph texts of a list node. A list
// that is itself a leaf is a single item.
func listItems(n *document.ContentNode, levels int) []string {
	if !n.IsContainer() {
		if t := strings.TrimSpace(n.Text); t != "" {
			return []string{t}
		}
		return nil
	}
	var items []string
	for _, c := range n.Children {
		if c == nil || c.Type != document.NodeParagraph {
			continue
		}
		if t := strings.TrimSpace(document.PlainTextWithin(c, levels-1)); t != "" {
			items = append(items, t)
		}
	}
	return items
}

// RenderText renders slide titles as "## 幻灯片 N: title" with a running
// counter, tables as "### 表格" blocks, and everything else with the
// generic children rule.
func (r *PowerPointRenderer) RenderText(doc *document.ParsedDocument, delimiter string) string {
	t := &slideText{delim: delimiter, maxDepth: r.maxDepth}
	parts := make([]string, 0, len(doc.Content))
	for _, n := range doc.Content {
		if s := t.node(n, 1); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, delimiter)
}

type slideText struct {
	delim        string
	maxDepth     int
	slideCounter int
}

func (t *slideText) node(n *document.ContentNode, depth int) string {
	if n == nil || depth > t.maxDepth {
		return ""
	}
	switch {
	case n.Type == document.NodeHeading && slideTitleLevel(n):
		t.slideCounter++
		return fmt.Sprintf("## 幻灯片 %d: %s", t.slideCounter, headingText(n, t.maxDepth-depth))
	case n.Type == document.NodeTable:
		lines := []string{"### 表格"}
		for i, row := range slideTableRows(n, t.maxDepth-depth) {
			lines = append(lines, fmt.Sprintf("行 %d: [%s]", i+1, strings.Join(row, ", ")))
		}
		return strings.Join(lines, t.delim) + t.delim
	case !n.IsContainer():
		return n.Text
	}
	return joinChildren(n, t.delim, func(c *document.ContentNode) string {
		return t.node(c, depth+1)
	})
}
