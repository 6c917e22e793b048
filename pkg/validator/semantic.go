package validator

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var operationMethods = []string{"get", "put", "post", "delete", "options", "head", "patch"}

var pathTemplatePattern = regexp.MustCompile(`\{([^{}]+)\}`)

// parameterRef identifies a parameter by name and location
type parameterRef struct {
	name     string
	in       string
	required bool
	index    int
}

// checkSemantics runs the structural cross-checks a JSON schema cannot express
func checkSemantics(document map[string]any) []Detail {
	var details []Detail

	paths, _ := document["paths"].(map[string]any)
	pathKeys := sortedKeys(paths)

	operationIDs := make(map[string]string)
	for _, pathKey := range pathKeys {
		if !strings.HasPrefix(pathKey, "/") {
			continue
		}
		pathItem, ok := paths[pathKey].(map[string]any)
		if !ok {
			continue
		}
		pathPointer := pointer([]string{"paths", pathKey})
		pathParams := collectParameters(document, pathItem["parameters"])

		for _, method := range operationMethods {
			operation, ok := pathItem[method].(map[string]any)
			if !ok {
				continue
			}
			opPointer := pointer([]string{"paths", pathKey, method})

			if id, ok := operation["operationId"].(string); ok && id != "" {
				if previous, seen := operationIDs[id]; seen {
					details = append(details, Detail{
						Message: atPath(opPointer+"/operationId", fmt.Sprintf("Validation failed. Duplicate operation id '%s' (first declared at '%s')", id, previous)),
						Path:    opPointer + "/operationId",
						Keyword: "operationId",
					})
				} else {
					operationIDs[id] = opPointer
				}
			}

			opParams := collectParameters(document, operation["parameters"])
			details = append(details, checkDuplicateParameters(opPointer, opParams)...)
			details = append(details, checkBodyParameters(opPointer, opParams)...)

			effective := mergeParameters(pathParams, opParams)
			details = append(details, checkPathParameters(pathKey, opPointer, effective)...)
		}

		details = append(details, checkDuplicateParameters(pathPointer, pathParams)...)
	}

	return details
}

// collectParameters reads a parameters list, following local references
func collectParameters(document map[string]any, raw any) []parameterRef {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	var params []parameterRef
	for i, item := range list {
		param, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if ref, ok := param["$ref"].(string); ok && strings.HasPrefix(ref, "#") {
			resolved, err := lookupPointer(document, strings.TrimPrefix(ref, "#"))
			if err != nil {
				continue
			}
			if param, ok = resolved.(map[string]any); !ok {
				continue
			}
		}
		name, _ := param["name"].(string)
		in, _ := param["in"].(string)
		if name == "" || in == "" {
			continue
		}
		required, _ := param["required"].(bool)
		params = append(params, parameterRef{name: name, in: in, required: required, index: i})
	}
	return params
}

// mergeParameters lets operation parameters override path-level ones with the same name and location
func mergeParameters(pathParams, opParams []parameterRef) []parameterRef {
	merged := append([]parameterRef{}, opParams...)
	for _, p := range pathParams {
		overridden := false
		for _, o := range opParams {
			if o.name == p.name && o.in == p.in {
				overridden = true
				break
			}
		}
		if !overridden {
			merged = append(merged, p)
		}
	}
	return merged
}

func checkDuplicateParameters(base string, params []parameterRef) []Detail {
	var details []Detail
	seen := make(map[string]bool)
	for _, p := range params {
		key := p.in + ":" + p.name
		if seen[key] {
			path := base + "/parameters/" + strconv.Itoa(p.index)
			details = append(details, Detail{
				Message: atPath(path, fmt.Sprintf("Validation failed. Found multiple parameters named '%s' in %s", p.name, p.in)),
				Path:    path,
				Keyword: "parameters",
			})
		}
		seen[key] = true
	}
	return details
}

func checkBodyParameters(opPointer string, params []parameterRef) []Detail {
	var details []Detail
	bodies := 0
	for _, p := range params {
		if p.in != "body" {
			continue
		}
		bodies++
		if bodies > 1 {
			path := opPointer + "/parameters/" + strconv.Itoa(p.index)
			details = append(details, Detail{
				Message: atPath(path, "Validation failed. Operation has multiple body parameters"),
				Path:    path,
				Keyword: "parameters",
			})
		}
	}
	return details
}

// checkPathParameters verifies that path templates and "in: path" parameters agree
func checkPathParameters(pathKey, opPointer string, params []parameterRef) []Detail {
	var details []Detail

	declared := make(map[string]parameterRef)
	for _, p := range params {
		if p.in == "path" {
			declared[p.name] = p
		}
	}

	templated := make(map[string]bool)
	for _, match := range pathTemplatePattern.FindAllStringSubmatch(pathKey, -1) {
		name := match[1]
		templated[name] = true
		if _, ok := declared[name]; !ok {
			details = append(details, Detail{
				Message:  atPath(opPointer, fmt.Sprintf("Validation failed. Path parameter '%s' is not defined", name)),
				Path:     opPointer,
				Keyword:  "pathParameter",
				Property: name,
			})
		}
	}

	for _, name := range sortedKeys(declared) {
		p := declared[name]
		if !templated[name] {
			details = append(details, Detail{
				Message: atPath(opPointer, fmt.Sprintf("Validation failed. Path parameter '%s' does not appear in the path '%s'", name, pathKey)),
				Path:    opPointer,
				Keyword: "pathParameter",
			})
		}
		if !p.required {
			details = append(details, Detail{
				Message: atPath(opPointer, fmt.Sprintf("Validation failed. Path parameter '%s' must be required", name)),
				Path:    opPointer,
				Keyword: "pathParameter",
			})
		}
	}

	return details
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
