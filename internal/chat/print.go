package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/storelens/internal/ui"
	"github.com/rileyhilliard/storelens/internal/viewmodel"
)

var (
	productCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#444444")).
				Padding(0, 1)
	productNameStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	productPriceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F"))
)

// RenderProductCards renders each product as a bordered card: name, price,
// store and description.
func RenderProductCards(products []Product, f viewmodel.Formatter, width int) string {
	if width < 24 {
		width = 24
	}
	inner := width - 4

	var sb strings.Builder
	for _, p := range products {
		lines := []string{
			productNameStyle.Render(p.Name),
			productPriceStyle.Render("Price: " + f.Price(p.Price)),
			mutedStyle.Render("Store: " + p.StoreID),
		}
		if p.Description != "" {
			lines = append(lines, lipgloss.NewStyle().Width(inner).Render(p.Description))
		}
		sb.WriteString(productCardStyle.Width(inner).Render(strings.Join(lines, "\n")))
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderReply renders a reply as plain lines for non-interactive output.
func RenderReply(r Reply, f viewmodel.Formatter) string {
	var sb strings.Builder
	if r.Text != "" {
		sb.WriteString(r.Text)
		sb.WriteString("\n")
	}
	for _, p := range r.Products {
		sb.WriteString("\n")
		sb.WriteString(ui.SymbolComplete + " " + p.Name + "\n")
		sb.WriteString("  Price: " + f.Price(p.Price) + "\n")
		sb.WriteString("  Store: " + p.StoreID + "\n")
		if p.Description != "" {
			sb.WriteString("  " + p.Description + "\n")
		}
	}
	return sb.String()
}

// RenderProductTable renders search results as a table.
func RenderProductTable(products []Product, f viewmodel.Formatter) string {
	if len(products) == 0 {
		return "No products found"
	}

	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{p.Name, f.Price(p.Price), p.StoreID, p.Description})
	}
	columns := ui.FitColumns([]string{"NAME", "PRICE", "STORE", "DESCRIPTION"}, rows, 40)
	return ui.RenderTable(columns, rows)
}
