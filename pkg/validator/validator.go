// Package validator implements the semantic validation of parsed Swagger 2.0
// documents: reference resolution, JSON schema validation and structural
// cross-checks. Stage adapts any Validator into the diagnostics outcome model.
package validator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/swaggitor/swaggitor/pkg/diagnostics"
	"github.com/swaggitor/swaggitor/pkg/parser"
)

// Input is a successfully parsed document handed to a Validator
type Input struct {
	// Object is the parsed document; it is never mutated
	Object map[string]any
	// URI identifies the document and anchors relative references
	URI string
}

// Validator validates a parsed document.
// It returns nil when the document is valid and preferably a *ValidationError
// describing the violations otherwise.
type Validator interface {
	Validate(ctx context.Context, input Input) error
}

// ValidatorFunc adapts a function to the Validator interface
type ValidatorFunc func(ctx context.Context, input Input) error

// Validate calls f(ctx, input)
func (f ValidatorFunc) Validate(ctx context.Context, input Input) error {
	return f(ctx, input)
}

// SwaggerValidator is the default Validator for Swagger 2.0 documents
type SwaggerValidator struct {
	// SkipSemanticChecks disables the checks that go beyond the JSON schema
	SkipSemanticChecks bool
}

// NewSwaggerValidator creates the default validator
func NewSwaggerValidator() *SwaggerValidator {
	return &SwaggerValidator{}
}

// Validate resolves references, validates against the Swagger 2.0 schema and
// runs the structural checks. Violations from all three phases are reported
// together, in that order.
func (v *SwaggerValidator) Validate(ctx context.Context, input Input) error {
	resolver := newRefResolver(input.Object, baseDirFromURI(input.URI))
	refDetails, err := resolver.resolveAll(ctx)
	if err != nil {
		return fmt.Errorf("reference resolution interrupted: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	schemaDetails, err := validateAgainstSchema(input.Object)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	var semanticDetails []Detail
	if !v.SkipSemanticChecks {
		semanticDetails = checkSemantics(input.Object)
	}

	details := make([]Detail, 0, len(refDetails)+len(schemaDetails)+len(semanticDetails))
	details = append(details, refDetails...)
	details = append(details, schemaDetails...)
	details = append(details, semanticDetails...)
	if len(details) == 0 {
		return nil
	}

	validationErr := &ValidationError{Message: "Swagger schema validation failed.", Details: details}
	if len(refDetails) > 0 {
		validationErr.Reason = fmt.Sprintf("%d unresolved reference(s)", len(refDetails))
	}
	return validationErr
}

// baseDirFromURI returns the directory of a file URI or path, or "" for other schemes
func baseDirFromURI(uri string) string {
	path := parser.URIToPath(uri)
	if path == "" {
		return ""
	}
	return filepath.Dir(path)
}

// Stage runs a Validator and converts whatever it returns into an outcome.
// It never panics and never returns an error: unexpected failures degrade to
// a single generic failure.
func Stage(ctx context.Context, v Validator, input Input) (outcome diagnostics.Failure) {
	defer func() {
		if r := recover(); r != nil {
			outcome = diagnostics.GenericFailure{Message: fmt.Sprintf("validator crashed: %v", r)}
		}
	}()

	err := v.Validate(ctx, input)
	if err == nil {
		return diagnostics.Valid{}
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		list := diagnostics.ViolationList{Message: validationErr.Message, Reason: validationErr.Reason}
		for _, d := range validationErr.Details {
			list.Violations = append(list.Violations, diagnostics.Violation{
				Message:  d.Message,
				Path:     d.Path,
				Kind:     d.Keyword,
				Property: d.Property,
			})
		}
		if list.Message == "" && len(list.Violations) == 0 {
			// Neither details nor a usable message
			return diagnostics.GenericFailure{Message: validationErr.Reason}
		}
		return list
	}

	return diagnostics.GenericFailure{Message: err.Error()}
}
