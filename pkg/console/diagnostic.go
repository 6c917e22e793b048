package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/swaggitor/swaggitor/pkg/diagnostics"
)

var (
	lineNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	contextLineStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F8F8F2"))

	highlightStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#FF5555")).
			Foreground(lipgloss.Color("#282A36"))
)

// contextRadius is the number of source lines shown on each side of a diagnostic
const contextRadius = 1

// FormatDiagnostic renders a diagnostic for the terminal in the IDE parseable
// form "file:line:column: severity: message", followed by the surrounding
// source lines when source is not empty. Lines and columns are shown 1-based.
func FormatDiagnostic(file, source string, d diagnostics.Diagnostic) string {
	var output strings.Builder

	line := d.Range.Start.Line + 1
	column := d.Range.Start.Character + 1
	if file != "" {
		location := fmt.Sprintf("%s:%d:%d:", ToRelativePath(file), line, column)
		output.WriteString(applyStyle(filePathStyle, location))
		output.WriteString(" ")
	}

	severityStyle := warningStyle
	if d.Severity == diagnostics.SeverityError {
		severityStyle = errorStyle
	}
	output.WriteString(applyStyle(severityStyle, d.Severity.String()+":"))
	output.WriteString(" ")
	output.WriteString(d.Message)
	output.WriteString("\n")

	if source != "" {
		output.WriteString(renderContext(strings.Split(source, "\n"), line, column))
	}
	return output.String()
}

// renderContext renders the lines around line with line numbers and a caret under column
func renderContext(lines []string, line, column int) string {
	if line < 1 || line > len(lines) {
		return ""
	}

	first := max(1, line-contextRadius)
	last := min(len(lines), line+contextRadius)
	lineNumWidth := len(fmt.Sprintf("%d", last))

	var output strings.Builder
	for n := first; n <= last; n++ {
		text := strings.TrimRight(lines[n-1], "\r")
		output.WriteString(applyStyle(lineNumberStyle, fmt.Sprintf("%*d", lineNumWidth, n)))
		output.WriteString(" | ")

		if n != line {
			output.WriteString(applyStyle(contextLineStyle, text))
			output.WriteString("\n")
			continue
		}

		if column >= 1 && column <= len(text) {
			output.WriteString(applyStyle(contextLineStyle, text[:column-1]))
			output.WriteString(applyStyle(highlightStyle, text[column-1:column]))
			output.WriteString(applyStyle(contextLineStyle, text[column:]))
		} else {
			output.WriteString(applyStyle(highlightStyle, text))
		}
		output.WriteString("\n")

		if column >= 1 {
			output.WriteString(strings.Repeat(" ", lineNumWidth+3+column-1))
			output.WriteString(applyStyle(errorStyle, "^"))
			output.WriteString("\n")
		}
	}
	return output.String()
}
