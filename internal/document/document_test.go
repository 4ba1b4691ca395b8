// SPDX-License-Identifier: Apache-2.0

package document_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docscope/officemd/internal/document"
)

const jsonDoc = `{
  "type": "xlsx",
  "metadata": {"sheetCount": 1},
  "content": [
    {
      "type": "sheet",
      "metadata": {"sheetName": "Q1"},
      "rawContent": "<dimension ref=\"A1:B2\"/>",
      "children": [
        {"type": "row", "children": [
          {"type": "cell", "metadata": {"col": 0}, "children": [{"type": "text", "text": "Name"}]},
          {"type": "cell", "metadata": {"col": 1}, "children": [{"type": "text", "text": "Age", "formatting": {"bold": true, "size": "14pt"}}]}
        ]}
      ]
    }
  ],
  "attachments": [{"name": "image1.png", "mimeType": "image/png", "ocrText": "hello"}]
}`

const yamlDoc = `
type: docx
content:
  - type: heading
    metadata:
      level: 2
    children:
      - type: text
        text: Overview
  - type: paragraph
    children:
      - type: text
        text: See
      - type: text
        text: docs
        metadata:
          link: https://example.com
`

// --- Decode ---

func TestDecode_JSON(t *testing.T) {
	doc, err := document.Decode([]byte(jsonDoc))
	require.NoError(t, err)

	assert.Equal(t, document.TypeXlsx, doc.Type)
	require.Len(t, doc.Content, 1)
	sheet := doc.Content[0]
	assert.Equal(t, document.NodeSheet, sheet.Type)
	assert.Equal(t, "Q1", sheet.SheetName())
	assert.Equal(t, `<dimension ref="A1:B2"/>`, sheet.RawContent)

	require.Len(t, sheet.Children, 1)
	cells := sheet.Children[0].Children
	require.Len(t, cells, 2)
	col, ok := cells[1].Col()
	assert.True(t, ok)
	assert.Equal(t, 1, col)

	run := cells[1].Children[0]
	assert.True(t, run.Bold())
	assert.InDelta(t, 14.0, run.Formatting.SizePoints(), 0.001)

	require.Len(t, doc.Attachments, 1)
	assert.Equal(t, "hello", doc.Attachments[0].OCRText)
}

func TestDecode_YAML(t *testing.T) {
	doc, err := document.Decode([]byte(yamlDoc))
	require.NoError(t, err)

	assert.Equal(t, document.TypeDocx, doc.Type)
	require.Len(t, doc.Content, 2)
	assert.Equal(t, 2, doc.Content[0].Level())
	assert.Equal(t, "Overview", document.PlainText(doc.Content[0]))
	assert.Equal(t, "https://example.com", doc.Content[1].Children[1].Link())
}

func TestDecode_Errors(t *testing.T) {
	_, err := document.Decode(nil)
	assert.ErrorIs(t, err, document.ErrEmptyInput)

	_, err = document.Decode([]byte("  \n\t"))
	assert.ErrorIs(t, err, document.ErrEmptyInput)

	_, err = document.Decode([]byte("{not valid"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal document")
}

// --- Validate ---

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "json document", input: jsonDoc},
		{name: "yaml document", input: yamlDoc},
		{name: "unknown fields allowed", input: `{"type":"rtf","content":[],"parserVersion":"2"}`},
		{name: "null children", input: `{"type":"pdf","content":[{"type":"page","children":null}]}`},
		{name: "missing type", input: `{"content":[]}`, wantErr: "invalid document"},
		{name: "missing content", input: `{"type":"docx"}`, wantErr: "invalid document"},
		{name: "empty node type", input: `{"type":"docx","content":[{"type":""}]}`, wantErr: "invalid document"},
		{name: "nested node without type", input: `{"type":"docx","content":[{"type":"paragraph","children":[{"text":"x"}]}]}`, wantErr: "invalid document"},
		{name: "attachment without name", input: `{"type":"docx","content":[],"attachments":[{"mimeType":"image/png"}]}`, wantErr: "invalid document"},
		{name: "top level list", input: `[1, 2]`, wantErr: "top level must be an object"},
		{name: "malformed", input: `{"type":`, wantErr: "failed to unmarshal document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := document.Validate([]byte(tt.input))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// chainedAliases builds a document where every group holds two aliases of
// the previous one, so expanding it doubles at each level.
func chainedAliases(levels int) string {
	var sb strings.Builder
	sb.WriteString("type: other\nnodes:\n  a0: &a0 {type: text, text: x}\n")
	for i := 1; i <= levels; i++ {
		fmt.Fprintf(&sb, "  a%d: &a%d {type: group, children: [*a%d, *a%d]}\n", i, i, i-1, i-1)
	}
	fmt.Fprintf(&sb, "content:\n  - *a%d\n", levels)
	return sb.String()
}

func TestAliasesRejected(t *testing.T) {
	data := []byte(chainedAliases(24))

	err := document.Validate(data)
	assert.ErrorIs(t, err, document.ErrAliasNotAllowed)

	_, err = document.Decode(data)
	assert.ErrorIs(t, err, document.ErrAliasNotAllowed)

	path := filepath.Join(t.TempDir(), "bomb.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	_, err = document.LoadFile(path)
	assert.ErrorIs(t, err, document.ErrAliasNotAllowed)
}

func TestAnchorWithoutAliasAccepted(t *testing.T) {
	data := []byte("type: docx\ncontent:\n  - &intro {type: text, text: hello}\n")
	require.NoError(t, document.Validate(data))
	doc, err := document.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "hello", document.PlainText(doc.Content[0]))
}

func TestValidate_EmptyInput(t *testing.T) {
	assert.ErrorIs(t, document.Validate([]byte("")), document.ErrEmptyInput)
}

// --- LoadFile ---

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(jsonDoc), 0o600))
	doc, err := document.LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, document.TypeXlsx, doc.Type)

	yamlPath := filepath.Join(dir, "memo.YML")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlDoc), 0o600))
	doc, err = document.LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, document.TypeDocx, doc.Type)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := document.LoadFile(filepath.Join(dir, "slides.pptx"))
	assert.ErrorIs(t, err, document.ErrUnsupportedEncoding)

	_, err = document.LoadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"content":[]}`), 0o600))
	_, err = document.LoadFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
	assert.Contains(t, err.Error(), "invalid document")
}

// --- Tree helpers ---

func TestPlainText(t *testing.T) {
	n := &document.ContentNode{
		Type: document.NodeParagraph,
		Text: "ignored",
		Children: []*document.ContentNode{
			{Type: document.NodeText, Text: "a"},
			nil,
			{Type: "group", Children: []*document.ContentNode{
				{Type: document.NodeText, Text: "b"},
				{Type: document.NodeText, Text: "c"},
			}},
			{Type: document.NodeText, Text: "d"},
		},
	}
	assert.Equal(t, "abcd", document.PlainText(n))
	assert.Equal(t, "", document.PlainText(nil))
	assert.Equal(t, "leaf", document.PlainText(&document.ContentNode{Text: "leaf"}))
}

func TestDepth(t *testing.T) {
	assert.Equal(t, 0, document.Depth(nil))
	assert.Equal(t, 0, document.Depth(&document.ParsedDocument{Type: document.TypePDF}))

	doc := &document.ParsedDocument{
		Type: document.TypePDF,
		Content: []*document.ContentNode{
			{Type: document.NodeText, Text: "flat"},
			{Type: document.NodePage, Children: []*document.ContentNode{
				{Type: document.NodeParagraph, Children: []*document.ContentNode{
					{Type: document.NodeText, Text: "deep"},
				}},
			}},
		},
	}
	assert.Equal(t, 3, document.Depth(doc))
}

func TestCheckDepth(t *testing.T) {
	root := &document.ContentNode{Type: "group"}
	cur := root
	for i := 0; i < 9; i++ {
		next := &document.ContentNode{Type: "group"}
		cur.Children = []*document.ContentNode{next}
		cur = next
	}
	doc := &document.ParsedDocument{Type: document.TypeOther, Content: []*document.ContentNode{root}}

	assert.NoError(t, document.CheckDepth(doc, 10))
	assert.NoError(t, document.CheckDepth(doc, 0))

	err := document.CheckDepth(doc, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrTooDeep)

	var depthErr *document.DepthError
	require.ErrorAs(t, err, &depthErr)
	assert.Equal(t, 10, depthErr.Depth)
	assert.Equal(t, 5, depthErr.Limit)
}

// --- Accessors ---

func TestFormatting_SizePoints(t *testing.T) {
	tests := map[string]float64{
		"14pt":  14,
		"10.5":  10.5,
		"12 pt": 12,
		"16PT":  16,
		"":      0,
		"large": 0,
	}
	for in, want := range tests {
		f := &document.Formatting{Size: in}
		assert.InDelta(t, want, f.SizePoints(), 0.001, in)
	}

	var nilFormatting *document.Formatting
	assert.Zero(t, nilFormatting.SizePoints())
}

func TestNilSafeAccessors(t *testing.T) {
	var n *document.ContentNode
	assert.False(t, n.IsContainer())
	assert.Zero(t, n.Level())
	assert.Empty(t, n.Link())
	assert.Empty(t, n.Style())
	assert.Empty(t, n.SheetName())
	assert.False(t, n.Bold())
	_, ok := n.Col()
	assert.False(t, ok)

	empty := &document.ContentNode{Type: document.NodeParagraph, Children: []*document.ContentNode{}}
	assert.False(t, empty.IsContainer(), "an empty children slice is a leaf")
}

func TestFindAttachment(t *testing.T) {
	doc := &document.ParsedDocument{Attachments: []document.Attachment{
		{Name: "a.png", AltText: "first"},
		{Name: "b.png"},
	}}
	a, ok := doc.FindAttachment("a.png")
	assert.True(t, ok)
	assert.Equal(t, "first", a.AltText)

	_, ok = doc.FindAttachment("missing.png")
	assert.False(t, ok)
	_, ok = doc.FindAttachment("")
	assert.False(t, ok)
}

func TestDocType_Known(t *testing.T) {
	assert.True(t, document.TypeDocx.Known())
	assert.True(t, document.TypeOther.Known())
	assert.False(t, document.DocType("keynote").Known())
}
