// Package completion serves the static completion items for top-level
// Swagger keys.
package completion

import "github.com/swaggitor/swaggitor/pkg/constants"

// Kind mirrors the LSP CompletionItemKind values used by the catalog
type Kind int

const (
	KindText  Kind = 1
	KindField Kind = 5
)

// Entry is a completion item as sent to the editor
type Entry struct {
	Label         string `json:"label"`
	Kind          Kind   `json:"kind"`
	Detail        string `json:"detail"`
	Documentation string `json:"documentation"`
}

// Position is accepted by List for protocol symmetry; the catalog ignores it
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

var entries = [...]Entry{
	{
		Label:         constants.VersionMarker,
		Kind:          KindField,
		Detail:        "Swagger version",
		Documentation: "Required. Specifies the Swagger Specification version being used. It can be used by the Swagger UI and other clients to interpret the API listing. The value MUST be \"2.0\".",
	},
	{
		Label:         constants.InfoKey,
		Kind:          KindText,
		Detail:        "Info object",
		Documentation: "The object provides metadata about the API. The metadata can be used by the clients if needed, and can be presented in the Swagger-UI for convenience.",
	},
}

// List returns the catalog in its fixed order. The position is ignored.
// Each call returns a fresh slice so callers cannot alter the table.
func List(_ Position) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries[:])
	return out
}

// Resolve returns the entry unchanged
func Resolve(entry Entry) Entry {
	return entry
}
