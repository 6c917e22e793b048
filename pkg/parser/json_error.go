package parser

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf16"

	"github.com/swaggitor/swaggitor/pkg/diagnostics"
)

// ExtractJSONError converts the byte offset reported by encoding/json into a
// zero-based line/character hint. Characters are counted in UTF-16 code units
// as editors expect.
func ExtractJSONError(text string, err error) *diagnostics.Hint {
	var offset int64 = -1

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	}
	if offset < 0 {
		return nil
	}

	// The offset points just past the offending byte
	pos := int(offset) - 1
	if pos < 0 {
		pos = 0
	}
	if pos > len(text) {
		pos = len(text)
	}

	before := text[:pos]
	line := strings.Count(before, "\n")
	lineStart := strings.LastIndex(before, "\n") + 1

	return &diagnostics.Hint{
		Line:         line,
		Character:    len(utf16.Encode([]rune(before[lineStart:]))),
		HasCharacter: true,
	}
}
