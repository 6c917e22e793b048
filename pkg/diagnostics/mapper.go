package diagnostics

import "strings"

// GenericMessage is used when a failure carries no usable message at all
const GenericMessage = "Swagger validation failed"

// Failure is the outcome of one validation attempt.
// It is a closed set: Valid, SyntaxFailure, ViolationList and GenericFailure.
type Failure interface {
	failure()
}

// Valid means the document passed every stage
type Valid struct{}

// SyntaxFailure is a parse error of the raw document text
type SyntaxFailure struct {
	Message string
	Hint    *Hint
}

// Violation is one semantic problem reported by the schema stage
type Violation struct {
	Message string
	// Path is the JSON pointer of the offending value, when known
	Path string
	// Kind is the failing keyword or check, e.g. "required" or "additionalProperties"
	Kind string
	// Property is the property the violation is about, when there is one
	Property string
	Hint     *Hint
}

// ViolationList is a semantic failure with its ordered violations.
// Message is the validator's top-level message and Reason its optional cause.
type ViolationList struct {
	Message    string
	Reason     string
	Violations []Violation
}

// GenericFailure is an unexpected validator failure with no structured details
type GenericFailure struct {
	Message string
}

func (Valid) failure()          {}
func (SyntaxFailure) failure()  {}
func (ViolationList) failure()  {}
func (GenericFailure) failure() {}

// ToDiagnostics maps a validation outcome to the replacement set of diagnostics
// for a document. Valid maps to an empty, non-nil slice so that publishing it
// clears whatever was reported before.
func ToDiagnostics(f Failure) []Diagnostic {
	switch f := f.(type) {
	case nil, Valid, *Valid:
		return []Diagnostic{}
	case SyntaxFailure:
		return []Diagnostic{newDiagnostic(messageOrGeneric(f.Message), f.Hint)}
	case *SyntaxFailure:
		return ToDiagnostics(*f)
	case ViolationList:
		if len(f.Violations) == 0 {
			return []Diagnostic{newDiagnostic(messageOrGeneric(f.Message, f.Reason), nil)}
		}
		out := make([]Diagnostic, 0, len(f.Violations))
		for _, v := range f.Violations {
			out = append(out, newDiagnostic(messageOrGeneric(v.Message, f.Message, f.Reason), v.Hint))
		}
		return out
	case *ViolationList:
		return ToDiagnostics(*f)
	case GenericFailure:
		return []Diagnostic{newDiagnostic(messageOrGeneric(f.Message), nil)}
	case *GenericFailure:
		return ToDiagnostics(*f)
	default:
		return []Diagnostic{newDiagnostic(GenericMessage, nil)}
	}
}

// messageOrGeneric returns the first non-blank candidate or the generic message
func messageOrGeneric(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return GenericMessage
}

// FailureReport is the payload of the "validated" notification on failure
type FailureReport struct {
	Message string         `json:"message"`
	Reason  string         `json:"reason,omitempty"`
	Details []DetailReport `json:"details,omitempty"`
}

// DetailReport is one entry of FailureReport.Details
type DetailReport struct {
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// Report builds the notification payload for an outcome.
// It returns nil for Valid, which is sent as a JSON null.
func Report(f Failure) *FailureReport {
	switch f := f.(type) {
	case nil, Valid, *Valid:
		return nil
	case SyntaxFailure:
		return &FailureReport{Message: messageOrGeneric(f.Message)}
	case *SyntaxFailure:
		return Report(*f)
	case ViolationList:
		report := &FailureReport{Message: messageOrGeneric(f.Message, f.Reason), Reason: f.Reason}
		for _, v := range f.Violations {
			report.Details = append(report.Details, DetailReport{Message: v.Message, Path: v.Path})
		}
		return report
	case *ViolationList:
		return Report(*f)
	case GenericFailure:
		return &FailureReport{Message: messageOrGeneric(f.Message)}
	case *GenericFailure:
		return Report(*f)
	default:
		return &FailureReport{Message: GenericMessage}
	}
}
