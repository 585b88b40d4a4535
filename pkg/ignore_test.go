package dirhash

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDotPredicates(t *testing.T) {
	testCases := []struct {
		path    string
		dotFile bool
		dotDir  bool
	}{
		{"/a/b", false, false},
		{"/a/.b", true, false},
		{"/.a/b", false, true},
		{"/.a/.b", true, false},
		{"/x/.git/config", false, true},
		{"/x/.env", true, false},
		{"/x/a.b/c", false, false},
	}

	for _, tc := range testCases {
		if got := IgnoreDotFile(tc.path); got != tc.dotFile {
			t.Errorf("IgnoreDotFile(%q) got %v, expected %v", tc.path, got, tc.dotFile)
		}
		if got := IgnoreDotDir(tc.path); got != tc.dotDir {
			t.Errorf("IgnoreDotDir(%q) got %v, expected %v", tc.path, got, tc.dotDir)
		}
		if got := IgnoreDot(tc.path); got != (tc.dotFile || tc.dotDir) {
			t.Errorf("IgnoreDot(%q) got %v, expected %v", tc.path, got, tc.dotFile || tc.dotDir)
		}
	}
}

func TestDotFileOnlyAffectsDottedNames(t *testing.T) {
	paths := []string{"/a/b", "/.a/b", "/x/.git/config", "/x/y/z"}

	for _, path := range paths {
		without, err := NewIgnoreManager(Options{IgnoreDotDir: true})
		if err != nil {
			t.Fatal(err)
		}
		with, err := NewIgnoreManager(Options{IgnoreDotDir: true, IgnoreDotFile: true})
		if err != nil {
			t.Fatal(err)
		}
		if without.ShouldIgnoreDot(path) != with.ShouldIgnoreDot(path) {
			t.Errorf("ignore_dot_file changed the outcome for %q", path)
		}
	}
}

func TestShouldIgnoreDirectoriesSkipDotRules(t *testing.T) {
	im, err := NewIgnoreManager(Options{IgnoreDot: true})
	if err != nil {
		t.Fatal(err)
	}
	im.SetPrefix("/x")

	if im.ShouldIgnore("/x/.git", TypeDirectory) {
		t.Error("dot rules must not apply to directories")
	}
	if !im.ShouldIgnore("/x/.git/config", TypeRegular) {
		t.Error("file below a dotted directory should be ignored")
	}
	if !im.ShouldIgnore("/x/.env", TypeSymlink) {
		t.Error("dotted symlink should be ignored")
	}
}

func TestExcludePatterns(t *testing.T) {
	im, err := NewIgnoreManager(Options{Exclude: []string{`\.o$`, `^build$`}})
	if err != nil {
		t.Fatal(err)
	}
	im.SetPrefix("/src")

	testCases := []struct {
		path     string
		isDir    bool
		expected bool
	}{
		{"/src/main.o", false, true},
		{"/src/sub/util.o", false, true},
		{"/src/main.c", false, false},
		{"/src/build", true, true},
		{"/src/sub/build", true, false},
		{"/src", true, false},
	}

	for _, tc := range testCases {
		if got := im.ShouldExclude(tc.path, tc.isDir); got != tc.expected {
			t.Errorf("ShouldExclude(%q) got %v, expected %v", tc.path, got, tc.expected)
		}
	}

	if len(im.patterns) != 2 || !im.HasPatterns() {
		t.Errorf("expected 2 patterns, got %d", len(im.patterns))
	}
}

func TestExcludePatternInvalid(t *testing.T) {
	_, err := NewIgnoreManager(Options{Exclude: []string{"("}})
	if !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
}

func TestIgnoreFile(t *testing.T) {
	tempDir := t.TempDir()
	ignorePath := filepath.Join(tempDir, "ignore")
	content := "# comment\n*.log\nvendor/\n!keep.log\n"
	if err := os.WriteFile(ignorePath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	im, err := NewIgnoreManager(Options{IgnoreFile: ignorePath})
	if err != nil {
		t.Fatal(err)
	}
	im.SetPrefix("/proj")

	testCases := []struct {
		path     string
		isDir    bool
		expected bool
	}{
		{"/proj/a.log", false, true},
		{"/proj/deep/b.log", false, true},
		{"/proj/keep.log", false, false},
		{"/proj/vendor", true, true},
		{"/proj/vendor", false, false},
		{"/proj/main.go", false, false},
	}

	for _, tc := range testCases {
		if got := im.ShouldExclude(tc.path, tc.isDir); got != tc.expected {
			t.Errorf("ShouldExclude(%q, %v) got %v, expected %v", tc.path, tc.isDir, got, tc.expected)
		}
	}
}

func TestIgnoreFileMissing(t *testing.T) {
	_, err := NewIgnoreManager(Options{IgnoreFile: filepath.Join(t.TempDir(), "nope")})
	if !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
}
