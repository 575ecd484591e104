package ux

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Table is a titled grid of cells with an optional footer line.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Footer  string
	// Empty is printed instead of the grid when there are no rows.
	Empty string
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow appends a row. Short rows are padded with empty cells.
func (t *Table) AddRow(cells ...string) *Table {
	for len(cells) < len(t.Headers) {
		cells = append(cells, "")
	}
	t.Rows = append(t.Rows, cells)
	return t
}

// Table lets a *Table be passed where a Tabular is expected.
func (t *Table) Table() *Table {
	return t
}

// Render draws the table with a rounded border.
func (t *Table) Render(noColor bool) string {
	var b strings.Builder
	if t.Title != "" {
		b.WriteString(t.Title)
		b.WriteString("\n")
	}

	if len(t.Rows) == 0 && t.Empty != "" {
		b.WriteString(t.Empty)
	} else {
		grid := table.New().
			Border(lipgloss.RoundedBorder()).
			Headers(t.Headers...).
			Rows(t.Rows...)
		if noColor {
			grid = grid.StyleFunc(func(row, col int) lipgloss.Style { return cellStyle })
		} else {
			grid = grid.
				BorderStyle(borderStyle).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerStyle
					}
					return cellStyle
				})
		}
		b.WriteString(grid.Render())
	}

	if t.Footer != "" {
		b.WriteString("\n")
		if noColor {
			b.WriteString(t.Footer)
		} else {
			b.WriteString(footerStyle.Render(t.Footer))
		}
	}
	return b.String()
}
