package dirhash

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NormalizeAbsolute returns the lexical absolute form of path.
// Relative paths are joined to the working directory; symlinks are never resolved.
func NormalizeAbsolute(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(cwd, path), nil
}

// assertFilePath panics unless path is absolute without a trailing slash
func assertFilePath(path string) {
	if !filepath.IsAbs(path) {
		panic(fmt.Sprintf("path %q is not absolute", path))
	}
	if path != "/" && strings.HasSuffix(path, "/") {
		panic(fmt.Sprintf("path %q has a trailing slash", path))
	}
}

// TrimPrefix strips root and the following slash from path.
// path is returned unchanged when it does not live under root.
func TrimPrefix(path, root string) string {
	prefix := root + "/"
	if root == "/" {
		prefix = "/"
	}
	if strings.HasPrefix(path, prefix) {
		return path[len(prefix):]
	}
	return path
}

// RealPath computes the path shown to the user for an entry
func RealPath(path, root string, abs bool) string {
	switch {
	case abs:
		return path
	case path == root:
		return "."
	case root == "/":
		return strings.TrimPrefix(path, "/")
	default:
		return TrimPrefix(path, root)
	}
}

// Dirpath returns the lexical parent of an absolute path
func Dirpath(path string) string {
	assertFilePath(path)
	return filepath.Dir(path)
}

// Basename returns the final segment of an absolute path
func Basename(path string) string {
	assertFilePath(path)
	return filepath.Base(path)
}
