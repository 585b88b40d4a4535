package dirhash

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"
)

// ErrInvalidPattern is returned for exclude patterns or ignore files that cannot be used
var ErrInvalidPattern = errors.New("invalid ignore pattern")

// IgnoreDotFile reports whether the basename of path starts with a dot
func IgnoreDotFile(path string) bool {
	return strings.HasPrefix(Basename(path), ".")
}

// IgnoreDotDir reports whether path sits below a dotted directory
// while its own basename is not dotted
func IgnoreDotDir(path string) bool {
	return !IgnoreDotFile(path) && strings.Contains(path, "/.")
}

// IgnoreDot reports whether either dot predicate holds
func IgnoreDot(path string) bool {
	return IgnoreDotFile(path) || IgnoreDotDir(path)
}

// IgnoreManager decides which walk entries are skipped.
// Dot rules only ever apply to non-directories; exclude patterns
// and the ignore file apply to every entry type.
type IgnoreManager struct {
	ignoreDot     bool
	ignoreDotDir  bool
	ignoreDotFile bool
	patterns      []*regexp.Regexp
	ignoreFile    string
	ignoreData    []byte
	matcher       gitignore.IgnoreMatcher
	prefix        string
}

// NewIgnoreManager compiles the exclude patterns and reads the ignore file named in opts
func NewIgnoreManager(opts Options) (*IgnoreManager, error) {
	im := &IgnoreManager{
		ignoreDot:     opts.IgnoreDot,
		ignoreDotDir:  opts.IgnoreDotDir,
		ignoreDotFile: opts.IgnoreDotFile,
		patterns:      make([]*regexp.Regexp, 0, len(opts.Exclude)),
		ignoreFile:    opts.IgnoreFile,
	}

	for _, patternStr := range opts.Exclude {
		if err := im.AddPattern(patternStr); err != nil {
			return nil, err
		}
	}

	if im.ignoreFile != "" {
		data, err := os.ReadFile(im.ignoreFile)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read ignore file %s: %v", ErrInvalidPattern, im.ignoreFile, err)
		}
		im.ignoreData = data
	}

	return im, nil
}

// AddPattern adds a new exclude pattern
func (im *IgnoreManager) AddPattern(patternStr string) error {
	pattern, err := regexp.Compile(patternStr)
	if err != nil {
		return fmt.Errorf("%w: %s - %v", ErrInvalidPattern, patternStr, err)
	}

	im.patterns = append(im.patterns, pattern)
	return nil
}

// SetPrefix rebases relative matching onto a new input prefix
func (im *IgnoreManager) SetPrefix(prefix string) {
	im.prefix = prefix
	im.matcher = nil
	if im.ignoreData != nil {
		im.matcher = gitignore.NewGitIgnoreFromReader(prefix, bytes.NewReader(im.ignoreData))
	}
}

// HasPatterns returns true if any exclude pattern or ignore file is in use
func (im *IgnoreManager) HasPatterns() bool {
	return len(im.patterns) > 0 || im.ignoreData != nil
}

// ShouldIgnoreDot applies the configured dot rules to a non-directory path
func (im *IgnoreManager) ShouldIgnoreDot(path string) bool {
	switch {
	case im.ignoreDot:
		return IgnoreDot(path)
	case im.ignoreDotDir && im.ignoreDotFile:
		return IgnoreDot(path)
	case im.ignoreDotDir:
		return IgnoreDotDir(path)
	case im.ignoreDotFile:
		return IgnoreDotFile(path)
	}
	return false
}

// ShouldExclude checks path against the exclude patterns and the ignore file.
// The input prefix itself is never excluded.
func (im *IgnoreManager) ShouldExclude(path string, isDir bool) bool {
	if path == im.prefix {
		return false
	}

	relativePath := TrimPrefix(path, im.prefix)
	for _, pattern := range im.patterns {
		if pattern.MatchString(relativePath) {
			return true
		}
	}

	if im.matcher != nil && im.matcher.Match(path, isDir) {
		return true
	}
	return false
}

// ShouldIgnore combines the dot rules and the exclude rules for one entry
func (im *IgnoreManager) ShouldIgnore(path string, raw EntryType) bool {
	isDir := raw == TypeDirectory
	if !isDir && im.ShouldIgnoreDot(path) {
		return true
	}
	return im.ShouldExclude(path, isDir)
}
