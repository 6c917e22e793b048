package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/swaggitor/swaggitor/pkg/constants"
	"github.com/swaggitor/swaggitor/pkg/parser"
)

// isSupportedFile reports whether path has a JSON or YAML extension
func isSupportedFile(path string) bool {
	return slices.Contains(constants.SupportedExtensions, strings.ToLower(filepath.Ext(path)))
}

// expandPaths resolves files and directories into the sorted list of
// supported files they contain. Directories are walked recursively, hidden
// directories excluded.
func expandPaths(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != path && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if isSupportedFile(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", path, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// loadDocument reads a file into a document snapshot keyed by its file URI
func loadDocument(path string) (parser.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return parser.Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parser.NewDocument(parser.PathToURI(path), parser.FormatFromPath(path), string(content)), nil
}
