package mapper

import (
	"fmt"
	"strconv"
	"strings"
)

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// splitPointer splits a JSON pointer such as "/paths/~1pets/get" into its
// unescaped segments. The document root is "" or "/".
func splitPointer(pointer string) ([]string, error) {
	if pointer == "" || pointer == "/" {
		return nil, nil
	}
	rest, ok := strings.CutPrefix(pointer, "/")
	if !ok {
		return nil, fmt.Errorf("invalid JSON pointer %q: must start with '/'", pointer)
	}
	segments := strings.Split(rest, "/")
	for i, segment := range segments {
		segments[i] = pointerUnescaper.Replace(segment)
	}
	return segments, nil
}

// arrayIndex parses a segment addressing an array element
func arrayIndex(segment string) (int, bool) {
	if segment == "" || segment[0] == '-' || segment[0] == '+' {
		return 0, false
	}
	idx, err := strconv.Atoi(segment)
	if err != nil {
		return 0, false
	}
	return idx, true
}
