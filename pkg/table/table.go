// Package table renders column aligned text tables with lipgloss.
package table

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Style defines the visual styling for tables
type Style struct {
	Header    lipgloss.Style
	Cell      lipgloss.Style
	Separator string
}

// PlainStyle returns a table style with no colors
func PlainStyle() Style {
	return Style{
		Header:    lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1),
		Cell:      lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1),
		Separator: "|",
	}
}

// StyledStyle returns a colorful table style
func StyledStyle() Style {
	s := PlainStyle()
	s.Header = s.Header.
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4"))
	return s
}

// Table is a simple table renderer
type Table struct {
	headers   []string
	rows      [][]string
	style     Style
	alignment []lipgloss.Position
}

// New creates a table with the given headers and plain styling
func New(headers ...string) *Table {
	t := &Table{headers: headers, style: PlainStyle()}
	t.alignment = make([]lipgloss.Position, len(headers))
	for i := range t.alignment {
		t.alignment[i] = lipgloss.Left
	}
	return t
}

// SetStyle changes the table style
func (t *Table) SetStyle(style Style) {
	t.style = style
}

// AlignRight right aligns the given column
func (t *Table) AlignRight(col int) {
	if col >= 0 && col < len(t.alignment) {
		t.alignment[col] = lipgloss.Right
	}
}

// AppendRow adds a single row to the table. Missing cells are left blank.
func (t *Table) AppendRow(row ...string) {
	cells := make([]string, len(t.headers))
	copy(cells, row)
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = lipgloss.Width(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		widths[i] += 2 // padding
	}
	return widths
}

func (t *Table) renderRow(row []string, widths []int, style lipgloss.Style) string {
	cells := make([]string, len(row))
	for i, cell := range row {
		cells[i] = style.Width(widths[i]).Align(t.alignment[i]).Render(cell)
	}
	return strings.Join(cells, t.style.Separator)
}

// Render generates the complete table as a string
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}
	widths := t.columnWidths()

	var out strings.Builder
	out.WriteString(t.renderRow(t.headers, widths, t.style.Header))
	out.WriteString("\n")
	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	out.WriteString(strings.Join(seps, "+"))
	for _, row := range t.rows {
		out.WriteString("\n")
		out.WriteString(t.renderRow(row, widths, t.style.Cell))
	}
	return out.String()
}

// WriteTo writes the rendered table followed by a newline.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, t.Render()+"\n")
	return int64(n), err
}
