// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/docscope/officemd/internal/document"
)

var (
	// dimensionPattern reads the used range of a worksheet, e.g.
	// <dimension ref="A1:D20"/>; the submatch is the end column.
	dimensionPattern = regexp.MustCompile(`dimension ref="[A-Z]+\d+:([A-Z]+)\d+"`)
	// spansPattern reads the column span of a row, e.g. spans="1:4".
	spansPattern = regexp.MustCompile(`spans="(\d+):(\d+)"`)
	// stylePattern reads a cell style index, quoted or not: s="1" or s=1.
	stylePattern = regexp.MustCompile(`\bs="?(\d+)"?`)
)

// dateStyles lists the cell style indices treated as dates. Style indices
// are workbook specific, so this misses dates formatted through any other
// style slot.
var dateStyles = map[int]bool{1: true, 3: true}

// excelEpoch is day zero of the 1900 date system as Excel counts it.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxColumns is the widest sheet Excel supports (column XFD).
const maxColumns = 16384

// maxSerialDays keeps date conversion inside the range time.Time formats
// as a four-digit year.
const maxSerialDays = 2958465

// ExcelRenderer renders xlsx trees sheet by sheet. Its text output is
// derived from its JSON projection.
type ExcelRenderer struct {
	maxDepth int
}

// NewExcelRenderer creates an ExcelRenderer. A non-positive maxDepth means
// DefaultMaxDepth.
func NewExcelRenderer(maxDepth int) *ExcelRenderer {
	return &ExcelRenderer{maxDepth: limitOrDefault(maxDepth)}
}

func (r *ExcelRenderer) Name() string {
	return "excel"
}

func (r *ExcelRenderer) CanHandle(t document.DocType) bool {
	return t == document.TypeXlsx
}

// ExcelJSON is the JSON projection of a workbook.
type ExcelJSON struct {
	Type        document.DocType      `json:"type"`
	Metadata    map[string]any        `json:"metadata"`
	Sheets      []Sheet               `json:"sheets"`
	Attachments []document.Attachment `json:"attachments"`
}

// Sheet is one worksheet with its rows materialized as fixed-width arrays.
type Sheet struct {
	Name         string                 `json:"name"`
	Metadata     *document.NodeMetadata `json:"metadata,omitempty"`
	Rows         [][]string             `json:"rows"`
	TotalColumns int                    `json:"totalColumns"`
}

func (r *ExcelRenderer) RenderJSON(doc *document.ParsedDocument) any {
	return r.workbook(doc)
}

func (r *ExcelRenderer) workbook(doc *document.ParsedDocument) ExcelJSON {
	sheets := make([]Sheet, 0, len(doc.Content))
	for _, n := range doc.Content {
		if n == nil || n.Type != document.NodeSheet {
			continue
		}
		sheets = append(sheets, r.sheet(n, len(sheets)))
	}
	return ExcelJSON{
		Type:        doc.Type,
		Metadata:    metadataOrEmpty(doc.Metadata),
		Sheets:      sheets,
		Attachments: attachmentsOrEmpty(doc.Attachments),
	}
}

func (r *ExcelRenderer) sheet(n *document.ContentNode, index int) Sheet {
	name := n.SheetName()
	if name == "" {
		name = fmt.Sprintf("Sheet%d", index+1)
	}
	total := dimensionColumns(n.RawContent)
	rows := make([][]string, 0, len(n.Children))
	if r.maxDepth >= 2 {
		for _, row := range n.Children {
			if row == nil || row.Type != document.NodeRow {
				continue
			}
			rows = append(rows, r.row(row, total))
		}
	}
	return Sheet{
		Name:         name,
		Metadata:     n.Metadata,
		Rows:         rows,
		TotalColumns: total,
	}
}

// row materializes one row at the width given by the row's spans, or by
// the sheet dimension when the row has none. The width never grows to fit
// the cells: cells outside it, or without a column, are dropped.
func (r *ExcelRenderer) row(row *document.ContentNode, sheetColumns int) []string {
	width, ok := spanColumns(row.RawContent)
	if !ok {
		width = sheetColumns
	}

	values := make([]string, min(max(width, 0), maxColumns))
	if r.maxDepth < 3 {
		return values
	}
	for _, cell := range row.Children {
		if cell == nil || cell.Type != document.NodeCell {
			continue
		}
		col, ok := cell.Col()
		if !ok || col < 0 || col >= len(values) {
			continue
		}
		values[col] = cellValue(cell, r.maxDepth-3)
	}
	return values
}

// cellValue returns the text of a cell, down to levels below it,
// reformatting numeric values stored with a date style as YYYY-MM-DD.
func cellValue(cell *document.ContentNode, levels int) string {
	text := document.PlainTextWithin(cell, levels)
	serial, ok := parseFinite(text)
	if !ok {
		return text
	}
	style, ok := styleIndex(cell.RawContent)
	if !ok || !dateStyles[style] {
		return text
	}
	if date, ok := serialToDate(serial); ok {
		return date
	}
	return text
}

func parseFinite(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// serialToDate converts an Excel date serial (days since 1899-12-30 UTC,
// fraction is time of day) to YYYY-MM-DD.
func serialToDate(serial float64) (string, bool) {
	days := math.Floor(serial)
	if days < -maxSerialDays || days > maxSerialDays {
		return "", false
	}
	frac := time.Duration(math.Round((serial - days) * float64(24*time.Hour)))
	t := excelEpoch.AddDate(0, 0, int(days)).Add(frac)
	return t.Format("2006-01-02"), true
}

func styleIndex(raw string) (int, bool) {
	m := stylePattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

// dimensionColumns returns the 1-based end column of the sheet's used
// range, or 0 when the raw XML does not carry one.
func dimensionColumns(raw string) int {
	m := dimensionPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0
	}
	return columnNumber(m[1])
}

// spanColumns returns the end of a row's spans attribute.
func spanColumns(raw string) (int, bool) {
	m := spansPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	end, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return end, true
}

// columnNumber converts a column name to its 1-based index: A=1, Z=26,
// AA=27. Names past XFD saturate at maxColumns.
func columnNumber(letters string) int {
	n := 0
	for _, c := range letters {
		if c < 'A' || c > 'Z' {
			return 0
		}
		n = n*26 + int(c-'A') + 1
		if n > maxColumns {
			return maxColumns
		}
	}
	return n
}

// RenderText formats the JSON projection: a "## name" header per sheet, a
// "### 行 N" header and a bracketed cell list per row, and a blank line
// after each sheet.
func (r *ExcelRenderer) RenderText(doc *document.ParsedDocument, delimiter string) string {
	var sb strings.Builder
	for _, s := range r.workbook(doc).Sheets {
		sb.WriteString("## " + s.Name + delimiter)
		for i, row := range s.Rows {
			sb.WriteString(fmt.Sprintf("### 行 %d", i+1) + delimiter)
			sb.WriteString("[" + strings.Join(row, ", ") + "]" + delimiter)
		}
		sb.WriteString(delimiter)
	}
	return sb.String()
}
