package validator

import (
	"fmt"
	"strings"
)

// Detail is one violation reported by the validator
type Detail struct {
	Message string
	// Path is the JSON pointer of the offending value ("" for the document root)
	Path string
	// Keyword is the failing schema keyword or check name, e.g. "required" or "$ref"
	Keyword string
	// Property names the missing or unexpected property when the keyword has one
	Property string
}

// ValidationError is returned when a document fails validation.
// Details keeps the order in which the problems were found.
type ValidationError struct {
	Message string
	Reason  string
	Details []Detail
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	for _, d := range e.Details {
		b.WriteString("\n- ")
		b.WriteString(d.Message)
	}
	return b.String()
}

// pointer formats instance location segments as an RFC 6901 pointer
func pointer(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		s = strings.ReplaceAll(s, "~", "~0")
		s = strings.ReplaceAll(s, "/", "~1")
		b.WriteString(s)
	}
	return b.String()
}

// atPath prefixes a message with its location the way jsonschema reports causes
func atPath(path, message string) string {
	if path == "" {
		return message
	}
	return fmt.Sprintf("at '%s': %s", path, message)
}
