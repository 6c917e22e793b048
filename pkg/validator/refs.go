package validator

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/swaggitor/swaggitor/pkg/parser"
)

// refResolver checks that every $ref in a document points at an existing value.
// External files are loaded at most once per validation.
type refResolver struct {
	root    map[string]any
	baseDir string
	files   map[string]fileEntry
}

type fileEntry struct {
	value any
	err   error
}

func newRefResolver(root map[string]any, baseDir string) *refResolver {
	return &refResolver{
		root:    root,
		baseDir: baseDir,
		files:   make(map[string]fileEntry),
	}
}

// resolveAll walks the document in a stable order and returns one Detail per
// reference that cannot be resolved.
func (r *refResolver) resolveAll(ctx context.Context) ([]Detail, error) {
	var details []Detail
	var walk func(value any, segments []string) error
	walk = func(value any, segments []string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch v := value.(type) {
		case map[string]any:
			if ref, ok := v["$ref"].(string); ok {
				if err := r.resolve(ref); err != nil {
					refPath := pointer(append(append([]string{}, segments...), "$ref"))
					details = append(details, Detail{
						Message: atPath(refPath, fmt.Sprintf("Error resolving $ref pointer %q: %v", ref, err)),
						Path:    refPath,
						Keyword: "$ref",
					})
				}
			}
			keys := make([]string, 0, len(v))
			for key := range v {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				if err := walk(v[key], append(segments, key)); err != nil {
					return err
				}
			}
		case []any:
			for i, item := range v {
				if err := walk(item, append(segments, strconv.Itoa(i))); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(r.root, nil); err != nil {
		return nil, err
	}
	return details, nil
}

// resolve checks a single reference
func (r *refResolver) resolve(ref string) error {
	location, fragment, _ := strings.Cut(ref, "#")

	var target any = r.root
	if location != "" {
		value, err := r.loadExternal(location)
		if err != nil {
			return err
		}
		target = value
	}

	_, err := lookupPointer(target, fragment)
	return err
}

// loadExternal loads a document referenced by a relative file path
func (r *refResolver) loadExternal(location string) (any, error) {
	parsed, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid reference location: %w", err)
	}
	if parsed.Scheme == "http" || parsed.Scheme == "https" {
		return nil, fmt.Errorf("remote references are not supported")
	}

	path := location
	if parsed.Scheme == "file" {
		path = parsed.Path
	}
	if !filepath.IsAbs(path) {
		if r.baseDir == "" {
			return nil, fmt.Errorf("relative reference %q cannot be resolved for an unsaved document", location)
		}
		path = filepath.Join(r.baseDir, filepath.FromSlash(path))
	}

	if entry, ok := r.files[path]; ok {
		return entry.value, entry.err
	}

	value, err := loadReferencedFile(path)
	r.files[path] = fileEntry{value: value, err: err}
	return value, err
}

// loadReferencedFile reads and decodes a referenced JSON or YAML file
func loadReferencedFile(path string) (any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	format := parser.FormatFromPath(path)
	if format == parser.FormatUnknown {
		// Referenced files without a known extension are tried as YAML, a superset of JSON
		format = parser.FormatYAML
	}
	value, err := parser.Decode(format, string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return value, nil
}

// lookupPointer resolves a URI fragment JSON pointer ("/definitions/Pet") inside value
func lookupPointer(value any, fragment string) (any, error) {
	if fragment == "" || fragment == "/" {
		return value, nil
	}
	if !strings.HasPrefix(fragment, "/") {
		return nil, fmt.Errorf("invalid JSON pointer %q", fragment)
	}

	current := value
	for _, token := range strings.Split(fragment[1:], "/") {
		if unescaped, err := url.PathUnescape(token); err == nil {
			token = unescaped
		}
		token = strings.ReplaceAll(token, "~1", "/")
		token = strings.ReplaceAll(token, "~0", "~")

		switch node := current.(type) {
		case map[string]any:
			next, ok := node[token]
			if !ok {
				return nil, fmt.Errorf("token %q does not exist", token)
			}
			current = next
		case []any:
			index, err := strconv.Atoi(token)
			if err != nil || index < 0 || index >= len(node) {
				return nil, fmt.Errorf("token %q does not exist", token)
			}
			current = node[index]
		default:
			return nil, fmt.Errorf("token %q does not exist", token)
		}
	}
	return current, nil
}
