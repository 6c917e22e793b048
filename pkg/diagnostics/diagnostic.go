package diagnostics

import "github.com/swaggitor/swaggitor/pkg/constants"

// Severity mirrors the LSP DiagnosticSeverity values
type Severity int

const (
	SeverityError   Severity = 1
	SeverityWarning Severity = 2
)

// String returns the console label for the severity
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	default:
		return "warning"
	}
}

// Position is a zero-based line/character pair
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a start/end pair of positions
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Diagnostic is the record published to the editor for one problem
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     int      `json:"code"`
	Message  string   `json:"message"`
	Range    Range    `json:"range"`
	Source   string   `json:"source"`
}

// PlaceholderPosition is used whenever no source coordinates are known
var PlaceholderPosition = Position{Line: 0, Character: 1}

// Hint is a partial source position reported by a parser or locator.
// Line is zero-based; Character is only meaningful when HasCharacter is set.
type Hint struct {
	Line         int
	Character    int
	HasCharacter bool
}

// Resolve turns an optional hint into a concrete position.
// A missing hint yields the placeholder; a line-only hint keeps the placeholder column.
func (h *Hint) Resolve() Position {
	if h == nil || h.Line < 0 {
		return PlaceholderPosition
	}
	pos := Position{Line: h.Line, Character: PlaceholderPosition.Character}
	if h.HasCharacter && h.Character >= 0 {
		pos.Character = h.Character
	}
	return pos
}

// newDiagnostic builds a zero-width warning at the given position
func newDiagnostic(message string, hint *Hint) Diagnostic {
	pos := hint.Resolve()
	return Diagnostic{
		Severity: SeverityWarning,
		Code:     0,
		Message:  message,
		Range:    Range{Start: pos, End: pos},
		Source:   constants.DiagnosticSource,
	}
}
