package mapper

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

// Locator maps JSON pointers of a single document to source spans.
// The document is parsed once; JSON sources are parsed as YAML flow style.
type Locator struct {
	source []byte
	root   ast.Node
	err    error
}

// NewLocator parses source with goccy/go-yaml to get an AST with positions.
func NewLocator(source []byte) *Locator {
	l := &Locator{source: source}
	file, err := parser.ParseBytes(source, 0)
	switch {
	case err != nil:
		l.err = fmt.Errorf("yaml parse error: %w", err)
	case file == nil || len(file.Docs) == 0 || file.Docs[0].Body == nil:
		l.err = fmt.Errorf("no YAML documents found")
	default:
		l.root = file.Docs[0].Body
	}
	return l
}

// Locate maps a violation target in source to candidate spans, best first.
func Locate(source []byte, target Target) ([]Span, error) {
	return NewLocator(source).Spans(target)
}

// Spans returns candidate spans for a violation target, best first
func (l *Locator) Spans(target Target) ([]Span, error) {
	segments, err := splitPointer(target.Pointer)
	if err != nil {
		return nil, err
	}
	if l.err != nil {
		return []Span{documentFallbackSpan()}, nil
	}

	node, key := traverseBySegments(l.root, segments)
	if node != nil {
		switch target.Keyword {
		case "additionalProperties":
			if target.Property != "" {
				if keyNode := findKeyInMapping(node, target.Property); keyNode != nil {
					return []Span{nodeSpan(keyNode, 0.98, "additional property key")}, nil
				}
			}
			return []Span{keyOrNodeSpan(key, node, 0.6, "additionalProperties fallback")}, nil

		case "required", "pathParameter":
			// The violation is reported on the object missing the property
			return []Span{keyOrNodeSpan(key, node, 0.8, fmt.Sprintf("object missing property '%s'", target.Property))}, nil

		case "$ref":
			return []Span{nodeSpan(node, 0.95, "unresolved reference")}, nil

		case "type", "const", "enum", "pattern":
			return []Span{nodeSpan(node, 0.95, "value mismatch: highlighting value")}, nil

		default:
			return []Span{keyOrNodeSpan(key, node, 0.8, "generic mapping")}, nil
		}
	}

	// Fall back to the closest ancestor that exists
	for i := len(segments) - 1; i > 0; i-- {
		if parentNode, parentKey := traverseBySegments(l.root, segments[:i]); parentNode != nil {
			return []Span{keyOrNodeSpan(parentKey, parentNode, 0.4, fmt.Sprintf("parent context for missing segments at depth %d", i))}, nil
		}
	}

	return []Span{documentFallbackSpan()}, nil
}

// traverseBySegments walks the AST using segments and returns the value node
// for the final segment and, for mapping entries, its key node.
func traverseBySegments(root ast.Node, segments []string) (ast.Node, ast.Node) {
	current := unwrap(root)
	var key ast.Node

	for _, segment := range segments {
		key = nil
		switch node := current.(type) {
		case *ast.MappingNode:
			value, k := lookupMappingValue(node.Values, segment)
			if value == nil {
				return nil, nil
			}
			current, key = unwrap(value.Value), k

		case *ast.MappingValueNode:
			value, k := lookupMappingValue([]*ast.MappingValueNode{node}, segment)
			if value == nil {
				return nil, nil
			}
			current, key = unwrap(value.Value), k

		case *ast.SequenceNode:
			idx, ok := arrayIndex(segment)
			if !ok || idx >= len(node.Values) {
				return nil, nil
			}
			current = unwrap(node.Values[idx])

		default:
			return nil, nil
		}
	}

	return current, key
}

// lookupMappingValue finds the mapping entry whose key matches segment
func lookupMappingValue(values []*ast.MappingValueNode, segment string) (*ast.MappingValueNode, ast.Node) {
	for _, value := range values {
		if value == nil || value.Key == nil {
			continue
		}
		if keyMatches(value.Key, segment) {
			return value, value.Key
		}
	}
	return nil, nil
}

// unwrap skips anchor and tag wrappers
func unwrap(node ast.Node) ast.Node {
	for {
		switch n := node.(type) {
		case *ast.AnchorNode:
			node = n.Value
		case *ast.TagNode:
			node = n.Value
		default:
			return node
		}
	}
}

// keyMatches checks if a mapping key node matches the expected segment string
func keyMatches(keyNode ast.MapKeyNode, segment string) bool {
	switch key := keyNode.(type) {
	case *ast.StringNode:
		return key.Value == segment
	case *ast.MappingKeyNode:
		if key.Value == nil || key.Value.GetToken() == nil {
			return false
		}
		return key.Value.GetToken().Value == segment
	default:
		if tok := key.GetToken(); tok != nil {
			return strings.Trim(tok.Value, `"'`) == segment
		}
		return false
	}
}

// findKeyInMapping searches mapping children for key and returns the key node
func findKeyInMapping(parent ast.Node, key string) ast.Node {
	switch mapping := parent.(type) {
	case *ast.MappingNode:
		if _, k := lookupMappingValue(mapping.Values, key); k != nil {
			return k
		}
	case *ast.MappingValueNode:
		if _, k := lookupMappingValue([]*ast.MappingValueNode{mapping}, key); k != nil {
			return k
		}
	}
	return nil
}

// keyOrNodeSpan prefers the key naming a value over the value itself
func keyOrNodeSpan(key, node ast.Node, conf float64, reason string) Span {
	if key != nil {
		return nodeSpan(key, conf, reason)
	}
	return nodeSpan(node, conf*0.9, reason)
}

// nodeSpan builds a Span from AST node positions with confidence and reason.
func nodeSpan(node ast.Node, conf float64, reason string) Span {
	if tok := node.GetToken(); tok != nil {
		return tokenToSpan(tok, conf, reason)
	}
	return Span{Confidence: conf * 0.5, Reason: reason + " (no position)"}
}

// tokenToSpan converts a token's one-based position to a zero-based Span
func tokenToSpan(tok *token.Token, confidence float64, reason string) Span {
	line, character := tok.Position.Line-1, tok.Position.Column-1
	return Span{
		Line:         line,
		Character:    character,
		EndLine:      line,
		EndCharacter: character + len(tok.Value),
		Confidence:   confidence,
		Reason:       reason,
	}
}

// documentFallbackSpan returns a low-confidence span at the start of the document
func documentFallbackSpan() Span {
	return Span{Confidence: 0.2, Reason: "document-level fallback"}
}
