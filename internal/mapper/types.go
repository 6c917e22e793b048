package mapper

// Target identifies the value a violation is reported on
type Target struct {
	// Pointer is the JSON pointer of the offending value
	Pointer string
	// Keyword is the failing schema keyword or check, e.g. "required" or "$ref"
	Keyword string
	// Property names the missing or unexpected property, when there is one
	Property string
}

// Span is a zero-based source range, the same convention as diagnostic positions
type Span struct {
	Line         int
	Character    int
	EndLine      int
	EndCharacter int
	// Confidence ranges from 0 to 1
	Confidence float64
	Reason     string
}
