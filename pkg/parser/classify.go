package parser

import (
	"strings"

	"github.com/swaggitor/swaggitor/pkg/constants"
)

const versionMarker = constants.VersionMarker

// IsSwaggerDocument decides whether a document is written in the Swagger dialect.
//
// A document that parses must be a mapping with a top-level "swagger" key.
// A document that fails to parse is still treated as Swagger when its text
// contains the marker keyword (case-insensitive), so that a document broken
// mid-edit keeps receiving diagnostics. Unknown formats never match.
func IsSwaggerDocument(doc Document) bool {
	if doc.Format == FormatUnknown {
		return false
	}

	value, err := decodeSafely(doc.Format, doc.Text)
	if err != nil {
		return strings.Contains(strings.ToLower(doc.Text), versionMarker)
	}

	_, ok := asSwaggerObject(value)
	return ok
}

// decodeSafely runs Decode and turns a parser panic into an error
func decodeSafely(format Format, text string) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = &PanicError{Value: r}
		}
	}()
	return Decode(format, text)
}
