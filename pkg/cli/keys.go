package cli

import (
	"github.com/swaggitor/swaggitor/pkg/completion"
	"github.com/swaggitor/swaggitor/pkg/console"
)

// kindNames maps completion kinds to their display names
var kindNames = map[completion.Kind]string{
	completion.KindText:  "text",
	completion.KindField: "field",
}

// RenderCompletionKeys renders the completion catalog as a table
func RenderCompletionKeys() string {
	var rows [][]string
	for _, entry := range completion.List(completion.Position{}) {
		rows = append(rows, []string{entry.Label, kindNames[entry.Kind], entry.Detail})
	}
	return console.RenderTable(console.TableConfig{
		Title:   "Completion keys",
		Headers: []string{"Label", "Kind", "Detail"},
		Rows:    rows,
	})
}
