package parser

import (
	"path/filepath"
	"strings"
)

// Format is the declared structured-text format of a document
type Format int

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatYAML
	FormatYML
)

// String returns the editor language identifier for the format
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatYML:
		return "yml"
	default:
		return "unknown"
	}
}

// IsYAML reports whether the format is decoded by the YAML parser
func (f Format) IsYAML() bool {
	return f == FormatYAML || f == FormatYML
}

// FormatFromLanguageID maps an editor language identifier to a Format
func FormatFromLanguageID(languageID string) Format {
	switch strings.ToLower(strings.TrimSpace(languageID)) {
	case "json":
		return FormatJSON
	case "yaml":
		return FormatYAML
	case "yml":
		return FormatYML
	default:
		return FormatUnknown
	}
}

// FormatFromPath derives a Format from a file extension
func FormatFromPath(path string) Format {
	return FormatFromLanguageID(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Document is an immutable snapshot of an editor document
type Document struct {
	URI    string
	Format Format
	Text   string
}

// NewDocument creates a document snapshot
func NewDocument(uri string, format Format, text string) Document {
	return Document{URI: uri, Format: format, Text: text}
}
