// SPDX-License-Identifier: Apache-2.0

// Package render turns a parsed office document tree into Markdown-flavored
// text or a simplified JSON projection. Rendering is a pure, read-only
// traversal: renderers keep no state between calls and are safe for
// concurrent use.
package render

import (
	"github.com/docscope/officemd/internal/document"
)

const (
	// DefaultDelimiter joins block-level output when the caller passes "".
	DefaultDelimiter = "\n"

	// DefaultMaxDepth bounds the recursion of every renderer. Nodes nested
	// deeper than this are left out of the output.
	DefaultMaxDepth = 256
)

// Renderer converts one family of documents to text.
type Renderer interface {
	// Name identifies the renderer in logs and tool output.
	Name() string
	// CanHandle reports whether the renderer specializes in t.
	CanHandle(t document.DocType) bool
	// RenderText renders doc, joining block-level output with delimiter.
	RenderText(doc *document.ParsedDocument, delimiter string) string
}

// JSONRenderer is implemented by renderers with a specialized JSON
// projection. Renderers without one fall back to the generic projection.
type JSONRenderer interface {
	Renderer
	RenderJSON(doc *document.ParsedDocument) any
}

// Dispatcher routes documents to the renderer registered for their type.
type Dispatcher struct {
	renderers []Renderer
	fallback  *GenericRenderer
	maxDepth  int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMaxDepth sets the recursion limit passed to the built-in renderers.
func WithMaxDepth(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxDepth = n
		}
	}
}

// WithRenderers replaces the built-in specialized renderers. Order matters:
// the first renderer whose CanHandle accepts the type wins.
func WithRenderers(renderers ...Renderer) Option {
	return func(d *Dispatcher) {
		d.renderers = renderers
	}
}

// NewDispatcher creates a Dispatcher with the Excel, PowerPoint, Word and
// PDF renderers registered and the generic renderer as the default arm.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{maxDepth: DefaultMaxDepth}
	for _, o := range opts {
		o(d)
	}
	if d.renderers == nil {
		d.renderers = []Renderer{
			NewExcelRenderer(d.maxDepth),
			NewPowerPointRenderer(d.maxDepth),
			NewWordRenderer(d.maxDepth),
			NewPDFRenderer(d.maxDepth),
		}
	}
	d.fallback = NewGenericRenderer(d.maxDepth)
	return d
}

// Select returns the renderer for t. Unknown and unspecialized types get
// the generic renderer; Select never fails.
func (d *Dispatcher) Select(t document.DocType) Renderer {
	for _, r := range d.renderers {
		if r.CanHandle(t) {
			return r
		}
	}
	return d.fallback
}

// RenderToText renders doc as Markdown-flavored text. An empty delimiter
// means DefaultDelimiter; use RenderToTextExact to join with nothing.
func (d *Dispatcher) RenderToText(doc *document.ParsedDocument, delimiter string) string {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return d.RenderToTextExact(doc, delimiter)
}

// RenderToTextExact is RenderToText with delimiter used verbatim, even
// when it is empty.
func (d *Dispatcher) RenderToTextExact(doc *document.ParsedDocument, delimiter string) string {
	if doc == nil {
		return ""
	}
	return d.Select(doc.Type).RenderText(doc, delimiter)
}

// RenderToJSON returns a plain, serializable projection of doc. Only Excel
// and PowerPoint documents have specialized shapes; everything else gets
// the generic {type, metadata, content, attachments} form.
func (d *Dispatcher) RenderToJSON(doc *document.ParsedDocument) any {
	if doc == nil {
		return nil
	}
	if jr, ok := d.Select(doc.Type).(JSONRenderer); ok {
		return jr.RenderJSON(doc)
	}
	return d.fallback.RenderJSON(doc)
}

// RegisteredRenderers returns the names of the specialized renderers in
// selection order.
func (d *Dispatcher) RegisteredRenderers() []string {
	names := make([]string, len(d.renderers))
	for i, r := range d.renderers {
		names[i] = r.Name()
	}
	return names
}

var defaultDispatcher = NewDispatcher()

// RenderToText renders doc with the default dispatcher.
func RenderToText(doc *document.ParsedDocument, delimiter string) string {
	return defaultDispatcher.RenderToText(doc, delimiter)
}

// RenderToTextExact renders doc with the default dispatcher and delimiter
// used verbatim.
func RenderToTextExact(doc *document.ParsedDocument, delimiter string) string {
	return defaultDispatcher.RenderToTextExact(doc, delimiter)
}

// RenderToJSON projects doc with the default dispatcher.
func RenderToJSON(doc *document.ParsedDocument) any {
	return defaultDispatcher.RenderToJSON(doc)
}

func limitOrDefault(maxDepth int) int {
	if maxDepth <= 0 {
		return DefaultMaxDepth
	}
	return maxDepth
}

func metadataOrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func attachmentsOrEmpty(a []document.Attachment) []document.Attachment {
	if a == nil {
		return []document.Attachment{}
	}
	return a
}
