package parser

import (
	"fmt"

	"github.com/swaggitor/swaggitor/pkg/diagnostics"
)

// PanicError wraps a value recovered from a panicking parser
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("parser panic: %v", e.Value)
}

// SyntaxResult is the outcome of the syntax stage.
// Exactly one of Object and Failure is set, or neither when the document
// turned out not to be a Swagger document.
type SyntaxResult struct {
	Object  map[string]any
	Failure *diagnostics.SyntaxFailure
}

// NotApplicable reports whether the parsed document is not a Swagger document
func (r SyntaxResult) NotApplicable() bool {
	return r.Object == nil && r.Failure == nil
}

// ParseSyntax parses the raw document text according to its declared format.
// Parser errors never escape: they become a single SyntaxFailure carrying the
// parser's raw message and, when the parser exposes one, a position hint.
func ParseSyntax(doc Document) SyntaxResult {
	if doc.Format == FormatUnknown {
		return SyntaxResult{}
	}

	value, err := decodeSafely(doc.Format, doc.Text)
	if err != nil {
		return SyntaxResult{Failure: &diagnostics.SyntaxFailure{
			Message: err.Error(),
			Hint:    ExtractErrorHint(doc.Format, doc.Text, err),
		}}
	}

	object, ok := asSwaggerObject(value)
	if !ok {
		return SyntaxResult{}
	}
	return SyntaxResult{Object: object}
}

// ExtractErrorHint returns a zero-based position hint for a parse error, or nil
func ExtractErrorHint(format Format, text string, err error) *diagnostics.Hint {
	switch {
	case format == FormatJSON:
		return ExtractJSONError(text, err)
	case format.IsYAML():
		line, column, ok := ExtractYAMLError(err)
		if !ok {
			return nil
		}
		hint := &diagnostics.Hint{Line: line - 1}
		if column > 0 {
			hint.Character = column - 1
			hint.HasCharacter = true
		}
		return hint
	default:
		return nil
	}
}
