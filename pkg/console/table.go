package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	tableTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B")).
			MarginBottom(1)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#BD93F9")).
				Background(lipgloss.Color("#44475A"))

	tableCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8F8F2"))

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6272A4"))

	tableSeparatorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#44475A"))
)

// TableConfig describes a table to render
type TableConfig struct {
	Headers []string
	Rows    [][]string
	Title   string
	// TotalRow is rendered below a separator when not empty
	TotalRow []string
}

// RenderTable renders a column aligned table
func RenderTable(config TableConfig) string {
	if len(config.Headers) == 0 {
		return ""
	}

	var output strings.Builder
	if config.Title != "" {
		output.WriteString(applyStyle(tableTitleStyle, config.Title))
		output.WriteString("\n")
	}

	colWidths := make([]int, len(config.Headers))
	for i, header := range config.Headers {
		colWidths[i] = len(header)
	}
	allRows := config.Rows
	if len(config.TotalRow) > 0 {
		allRows = append(allRows[:len(allRows):len(allRows)], config.TotalRow)
	}
	for _, row := range allRows {
		for i, cell := range row {
			if i < len(colWidths) && len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	separator := make([]string, len(config.Headers))
	for i, width := range colWidths {
		separator[i] = strings.Repeat("-", width)
	}

	output.WriteString(renderTableRow(config.Headers, colWidths, tableHeaderStyle))
	output.WriteString("\n")
	output.WriteString(renderTableRow(separator, colWidths, tableSeparatorStyle))
	output.WriteString("\n")
	for _, row := range config.Rows {
		output.WriteString(renderTableRow(row, colWidths, tableCellStyle))
		output.WriteString("\n")
	}
	if len(config.TotalRow) > 0 {
		output.WriteString(renderTableRow(separator, colWidths, tableSeparatorStyle))
		output.WriteString("\n")
		output.WriteString(renderTableRow(config.TotalRow, colWidths, successStyle))
		output.WriteString("\n")
	}
	return output.String()
}

// renderTableRow pads each cell to its column width
func renderTableRow(cells []string, colWidths []int, style lipgloss.Style) string {
	var row strings.Builder
	for i, cell := range cells {
		if i >= len(colWidths) {
			break
		}
		row.WriteString(applyStyle(style, fmt.Sprintf("%-*s", colWidths[i], cell)))
		if i < len(cells)-1 && i < len(colWidths)-1 {
			row.WriteString(applyStyle(tableBorderStyle, " | "))
		}
	}
	return row.String()
}
