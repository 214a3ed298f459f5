package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn is a column title and its width in cells.
type TableColumn struct {
	Title string
	Width int
}

var (
	tableHeaderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(ColorMuted).
				BorderBottom(true).
				Bold(true).
				Foreground(ColorPrimary).
				Padding(0, 1)
	tableCellStyle = lipgloss.NewStyle().Foreground(ColorPrimary).Padding(0, 1)
)

// FitColumns sizes one column per title to its widest cell, capped at
// maxWidth cells when maxWidth > 0.
func FitColumns(titles []string, rows [][]string, maxWidth int) []TableColumn {
	cols := make([]TableColumn, len(titles))
	for i, title := range titles {
		w := lipgloss.Width(title)
		for _, row := range rows {
			if i < len(row) {
				w = max(w, lipgloss.Width(row[i]))
			}
		}
		if maxWidth > 0 {
			w = min(w, maxWidth)
		}
		cols[i] = TableColumn{Title: title, Width: w}
	}
	return cols
}

// NewTable builds an unfocused bubbles table showing at most visible rows,
// or every row when visible <= 0. No row is highlighted until the table is
// focused.
func NewTable(columns []TableColumn, rows [][]string, visible int) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	tableRows := make([]table.Row, len(rows))
	for i, r := range rows {
		tableRows[i] = table.Row(r)
	}

	height := len(rows)
	if visible > 0 {
		height = min(height, visible)
	}

	// WithHeight subtracts the unstyled one-line header.
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(tableRows),
		table.WithFocused(false),
		table.WithHeight(height+1),
	)
	t.SetStyles(table.Styles{
		Header:   tableHeaderStyle,
		Cell:     tableCellStyle,
		Selected: lipgloss.NewStyle(),
	})
	return t
}

// RenderTable renders every row as a static table for CLI output.
func RenderTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	return NewTable(columns, rows, 0).View()
}

// DoctorCheckRow is one line of the doctor report.
type DoctorCheckRow struct {
	Status     string // "pass", "warn", "fail"
	Category   string
	Message    string
	Suggestion string
}

// RenderDoctorTable renders check results grouped by category, in the
// order categories first appear.
func RenderDoctorTable(rows []DoctorCheckRow) string {
	if len(rows) == 0 {
		return "No checks to display"
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	var order []string
	byCategory := make(map[string][]DoctorCheckRow)
	for _, row := range rows {
		if _, ok := byCategory[row.Category]; !ok {
			order = append(order, row.Category)
		}
		byCategory[row.Category] = append(byCategory[row.Category], row)
	}

	var out string
	for _, cat := range order {
		out += headerStyle.Render(cat) + "\n"
		for _, row := range byCategory[cat] {
			out += "  " + statusIcon(row.Status) + " " + row.Message + "\n"
			if row.Suggestion != "" && row.Status != "pass" {
				out += "    " + MutedStyle().Render(row.Suggestion) + "\n"
			}
		}
		out += "\n"
	}
	return out
}

func statusIcon(status string) string {
	switch status {
	case "pass":
		return SuccessStyle().Render(SymbolComplete)
	case "warn":
		return WarningStyle().Render(SymbolWarning)
	case "fail":
		return ErrorStyle().Render(SymbolFail)
	default:
		return MutedStyle().Render(SymbolPending)
	}
}
