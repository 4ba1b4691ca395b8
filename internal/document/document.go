// SPDX-License-Identifier: Apache-2.0

// Package document defines the parsed office document tree consumed by the
// renderers, plus decoding and validation of serialized trees.
package document

import (
	"strconv"
	"strings"
)

// DocType identifies the source format of a ParsedDocument. Values outside
// the known set are legal and are rendered generically.
type DocType string

const (
	TypeDocx  DocType = "docx"
	TypeXlsx  DocType = "xlsx"
	TypePptx  DocType = "pptx"
	TypePDF   DocType = "pdf"
	TypeODT   DocType = "odt"
	TypeODS   DocType = "ods"
	TypeODP   DocType = "odp"
	TypeRTF   DocType = "rtf"
	TypeOther DocType = "other"
)

// Known reports whether t is one of the document types the parser emits.
func (t DocType) Known() bool {
	switch t {
	case TypeDocx, TypeXlsx, TypePptx, TypePDF, TypeODT, TypeODS, TypeODP, TypeRTF, TypeOther:
		return true
	}
	return false
}

// NodeType identifies the kind of a ContentNode.
type NodeType string

const (
	NodePage      NodeType = "page"
	NodeHeading   NodeType = "heading"
	NodeParagraph NodeType = "paragraph"
	NodeList      NodeType = "list"
	NodeTable     NodeType = "table"
	NodeRow       NodeType = "row"
	NodeCell      NodeType = "cell"
	NodeSheet     NodeType = "sheet"
	NodeText      NodeType = "text"
	NodeImage     NodeType = "image"
)

// ListType distinguishes numbered from bulleted list items.
type ListType string

const (
	ListOrdered   ListType = "ordered"
	ListUnordered ListType = "unordered"
)

// ParsedDocument is the output of the external office parser.
type ParsedDocument struct {
	Type        DocType        `json:"type" yaml:"type"`
	Metadata    map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Content     []*ContentNode `json:"content" yaml:"content"`
	Attachments []Attachment   `json:"attachments,omitempty" yaml:"attachments,omitempty"`
}

// ContentNode is one node of the document tree. A node with children is a
// container and its Text is ignored; a node without children is a leaf.
type ContentNode struct {
	Type       NodeType       `json:"type" yaml:"type"`
	Text       string         `json:"text,omitempty" yaml:"text,omitempty"`
	Children   []*ContentNode `json:"children,omitempty" yaml:"children,omitempty"`
	Formatting *Formatting    `json:"formatting,omitempty" yaml:"formatting,omitempty"`
	Metadata   *NodeMetadata  `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	RawContent string         `json:"rawContent,omitempty" yaml:"rawContent,omitempty"`
}

// Formatting holds run-level typography.
type Formatting struct {
	Bold          bool   `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline     bool   `json:"underline,omitempty" yaml:"underline,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty" yaml:"strikethrough,omitempty"`
	Size          string `json:"size,omitempty" yaml:"size,omitempty"`
}

// SizePoints parses Size ("14pt", "10.5", "12 pt") into points.
// It returns 0 when the size is missing or unparseable.
func (f *Formatting) SizePoints() float64 {
	if f == nil {
		return 0
	}
	s := strings.TrimSpace(strings.ToLower(f.Size))
	s = strings.TrimSpace(strings.TrimSuffix(s, "pt"))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// NodeMetadata carries the node-specific attributes the parser attaches.
// Which fields are set depends on the node type.
type NodeMetadata struct {
	Level          int      `json:"level,omitempty" yaml:"level,omitempty"`
	ListType       ListType `json:"listType,omitempty" yaml:"listType,omitempty"`
	Indentation    int      `json:"indentation,omitempty" yaml:"indentation,omitempty"`
	ItemIndex      int      `json:"itemIndex,omitempty" yaml:"itemIndex,omitempty"`
	Col            *int     `json:"col,omitempty" yaml:"col,omitempty"`
	SheetName      string   `json:"sheetName,omitempty" yaml:"sheetName,omitempty"`
	Link           string   `json:"link,omitempty" yaml:"link,omitempty"`
	AttachmentName string   `json:"attachmentName,omitempty" yaml:"attachmentName,omitempty"`
	AltText        string   `json:"altText,omitempty" yaml:"altText,omitempty"`
	Style          string   `json:"style,omitempty" yaml:"style,omitempty"`
}

// Attachment is an image or embedded object extracted alongside the tree.
type Attachment struct {
	Name      string `json:"name" yaml:"name"`
	MimeType  string `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	OCRText   string `json:"ocrText,omitempty" yaml:"ocrText,omitempty"`
	AltText   string `json:"altText,omitempty" yaml:"altText,omitempty"`
	ChartData any    `json:"chartData,omitempty" yaml:"chartData,omitempty"`
}

// IsContainer reports whether n has at least one child.
func (n *ContentNode) IsContainer() bool {
	return n != nil && len(n.Children) > 0
}

// Level returns the heading level, or 0 when absent.
func (n *ContentNode) Level() int {
	if n == nil || n.Metadata == nil {
		return 0
	}
	return n.Metadata.Level
}

// Col returns the zero-based column index of a cell and whether it was set.
func (n *ContentNode) Col() (int, bool) {
	if n == nil || n.Metadata == nil || n.Metadata.Col == nil {
		return 0, false
	}
	return *n.Metadata.Col, true
}

// Link returns the hyperlink target of a text run, if any.
func (n *ContentNode) Link() string {
	if n == nil || n.Metadata == nil {
		return ""
	}
	return n.Metadata.Link
}

// Style returns the Word paragraph style ID, if any.
func (n *ContentNode) Style() string {
	if n == nil || n.Metadata == nil {
		return ""
	}
	return n.Metadata.Style
}

// SheetName returns the worksheet name of a sheet node, if any.
func (n *ContentNode) SheetName() string {
	if n == nil || n.Metadata == nil {
		return ""
	}
	return n.Metadata.SheetName
}

// Bold reports whether the node itself is formatted bold.
func (n *ContentNode) Bold() bool {
	return n != nil && n.Formatting != nil && n.Formatting.Bold
}

// FindAttachment returns the attachment with the given name.
func (d *ParsedDocument) FindAttachment(name string) (Attachment, bool) {
	if d == nil || name == "" {
		return Attachment{}, false
	}
	for _, a := range d.Attachments {
		if a.Name == name {
			return a, true
		}
	}
	return Attachment{}, false
}

// IntPtr returns a pointer to v. It is a convenience for building cells.
func IntPtr(v int) *int {
	return &v
}
