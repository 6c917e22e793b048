package parser

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ExtractYAMLError extracts 1-based line and column information from a YAML
// parsing error. Column is 0 when the parser only reports a line.
func ExtractYAMLError(err error) (line int, column int, ok bool) {
	if err == nil {
		return 0, 0, false
	}

	// Type errors carry one entry per problem; use the first one
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
		if line, ok = parseLinePrefix(strings.TrimSpace(typeErr.Errors[0])); ok {
			return line, 0, true
		}
	}

	errStr := err.Error()

	// "yaml: line X: column Y: message" (parsers that report a column)
	if idx := strings.Index(errStr, "yaml: line "); idx >= 0 {
		rest := errStr[idx+len("yaml: "):]
		if line, ok = parseLinePrefix(rest); ok {
			if colIdx := strings.Index(rest, "column "); colIdx >= 0 {
				if _, scanErr := fmt.Sscanf(rest[colIdx:], "column %d", &column); scanErr != nil {
					column = 0
				}
			}
			return line, column, true
		}
	}

	// "yaml: unmarshal errors:\n  line X: message"
	if strings.Contains(errStr, "yaml: unmarshal errors:") {
		for _, errorLine := range strings.Split(errStr, "\n") {
			if line, ok = parseLinePrefix(strings.TrimSpace(errorLine)); ok {
				return line, 0, true
			}
		}
	}

	return 0, 0, false
}

// parseLinePrefix parses "line N: ..." and returns N
func parseLinePrefix(s string) (int, bool) {
	if !strings.HasPrefix(s, "line ") {
		return 0, false
	}
	var line int
	if _, err := fmt.Sscanf(s, "line %d", &line); err != nil || line <= 0 {
		return 0, false
	}
	return line, true
}
