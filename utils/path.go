package utils

import (
	"path/filepath"
	"strings"
)

// HasPathPrefix reports whether path is root itself or lies beneath it.
// The comparison is lexical; neither path is resolved on disk.
func HasPathPrefix(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if path == root {
		return true
	}
	if root == string(filepath.Separator) {
		return strings.HasPrefix(path, root)
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// Ancestors returns path followed by each of its parents, stopping at root.
// A path outside root yields only the path itself.
func Ancestors(path, root string) []string {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	out := []string{path}
	if !HasPathPrefix(path, root) {
		return out
	}
	for path != root {
		parent := filepath.Dir(path)
		if parent == path {
			break
		}
		path = parent
		out = append(out, path)
	}
	return out
}
