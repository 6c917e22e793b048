package validator

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schemas/swagger_2_0_schema.json
var swaggerSchema string

const swaggerSchemaURL = "https://swaggitor.dev/schemas/swagger-2.0.json"

var (
	compiledSchemaOnce sync.Once
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
)

// swaggerSchemaValidator returns the compiled Swagger 2.0 schema, compiling it on first use
func swaggerSchemaValidator() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		compiledSchema, compiledSchemaErr = compileSchema(swaggerSchema, swaggerSchemaURL)
	})
	return compiledSchema, compiledSchemaErr
}

// compileSchema compiles a JSON schema document registered under url
func compileSchema(schemaJSON, url string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	if err := compiler.AddResource(url, schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return schema, nil
}

// validateAgainstSchema validates a parsed document against the Swagger 2.0
// schema and returns one Detail per failing leaf keyword.
func validateAgainstSchema(document map[string]any) ([]Detail, error) {
	schema, err := swaggerSchemaValidator()
	if err != nil {
		return nil, err
	}

	// Round-trip through JSON so that YAML scalars are validated as their JSON equivalents
	instance, err := normalizeInstance(document)
	if err != nil {
		return nil, err
	}

	err = schema.Validate(instance)
	if err == nil {
		return nil, nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return nil, err
	}

	printer := message.NewPrinter(language.English)
	var details []Detail
	collectSchemaLeaves(validationErr, printer, &details)

	// Cause order depends on map iteration inside the schema engine
	sort.SliceStable(details, func(i, j int) bool {
		if details[i].Path != details[j].Path {
			return details[i].Path < details[j].Path
		}
		return details[i].Message < details[j].Message
	})

	if len(details) == 0 {
		details = append(details, Detail{Message: cleanJSONSchemaErrorMessage(err.Error()), Keyword: "schema"})
	}
	return details, nil
}

// normalizeInstance converts a decoded document into the value model the schema engine expects
func normalizeInstance(document map[string]any) (any, error) {
	if document == nil {
		document = make(map[string]any)
	}
	data, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	instance, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return instance, nil
}

// collectSchemaLeaves flattens the cause tree into leaf details.
// anyOf/oneOf failures are reported once instead of once per branch.
func collectSchemaLeaves(validationErr *jsonschema.ValidationError, printer *message.Printer, out *[]Detail) {
	keyword := lastKeyword(validationErr.ErrorKind)
	if len(validationErr.Causes) == 0 || keyword == "anyOf" || keyword == "oneOf" {
		path := pointer(validationErr.InstanceLocation)
		*out = append(*out, Detail{
			Message:  atPath(path, validationErr.ErrorKind.LocalizedString(printer)),
			Path:     path,
			Keyword:  keyword,
			Property: propertyOf(validationErr.ErrorKind),
		})
		return
	}
	for _, cause := range validationErr.Causes {
		collectSchemaLeaves(cause, printer, out)
	}
}

// lastKeyword returns the schema keyword that produced an error kind
func lastKeyword(errorKind jsonschema.ErrorKind) string {
	path := errorKind.KeywordPath()
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}

// propertyOf returns the property an error kind is about, if any
func propertyOf(errorKind jsonschema.ErrorKind) string {
	switch k := errorKind.(type) {
	case *kind.Required:
		if len(k.Missing) > 0 {
			return k.Missing[0]
		}
	case *kind.AdditionalProperties:
		if len(k.Properties) > 0 {
			return k.Properties[0]
		}
	}
	return ""
}

// cleanJSONSchemaErrorMessage removes unhelpful prefixes from jsonschema validation errors
func cleanJSONSchemaErrorMessage(errorMsg string) string {
	lines := strings.Split(errorMsg, "\n")

	var cleanedLines []string
	for _, line := range lines {
		line = strings.TrimSpace(line)

		// Skip the "jsonschema validation failed" line entirely
		if strings.HasPrefix(line, "jsonschema validation failed") {
			continue
		}

		line = strings.TrimPrefix(line, "- at '': ")
		line = strings.TrimPrefix(line, "- ")

		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	result := strings.Join(cleanedLines, "\n")
	if strings.TrimSpace(result) == "" {
		return "schema validation failed"
	}
	return result
}
