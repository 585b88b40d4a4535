package dirhash

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "dirhash.ini")

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	opts, err := config.Options()
	if err != nil {
		t.Fatalf("Failed to build options: %v", err)
	}

	defaults := DefaultOptions()
	if opts.HashAlgo != defaults.HashAlgo || opts.SquashVersion != defaults.SquashVersion || opts.HashBuffer != defaults.HashBuffer {
		t.Errorf("Expected defaults %+v, got %+v", defaults, opts)
	}
	if opts.Squash || opts.Sort || opts.Verbose != 0 || len(opts.Exclude) != 0 {
		t.Errorf("Expected zero values for flags, got %+v", opts)
	}

	// Loading must not create the file
	if _, err := os.Stat(configPath); !os.IsNotExist(err) {
		t.Error("Config file should not be created by LoadConfig")
	}
}

func TestConfigEmptyPath(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if config.GetHashConfig().Algo != DefaultHashAlgorithm {
		t.Errorf("Expected default algorithm, got %s", config.GetHashConfig().Algo)
	}
	if err := config.Save(); err == nil {
		t.Error("Save without a path should fail")
	}
}

func TestConfigLoadFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "dirhash.ini")
	content := `[hash]
algo = sha1
buffer = 2M

[squash]
enabled = true
version = 2

[walk]
sort = yes
follow_symlink = true
exclude = \.o$
exclude = ^build$

[output]
swap = true

[verbose]
level = 1
debug = walk
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	opts, err := config.Options()
	if err != nil {
		t.Fatalf("Failed to build options: %v", err)
	}

	if opts.HashAlgo != "sha1" {
		t.Errorf("Expected algo sha1, got %s", opts.HashAlgo)
	}
	if opts.HashBuffer != 2*1024*1024 {
		t.Errorf("Expected 2M buffer, got %d", opts.HashBuffer)
	}
	if !opts.Squash || opts.SquashVersion != 2 {
		t.Errorf("Expected squash v2, got %v v%d", opts.Squash, opts.SquashVersion)
	}
	if !opts.Sort || !opts.FollowSymlink || !opts.Swap {
		t.Errorf("Expected sort, follow_symlink and swap, got %+v", opts)
	}
	if strings.Join(opts.Exclude, " ") != `\.o$ ^build$` {
		t.Errorf("Expected two exclude patterns, got %v", opts.Exclude)
	}
	if opts.Verbose != 1 || opts.Debug != "walk" {
		t.Errorf("Expected verbose 1 debug walk, got %d %s", opts.Verbose, opts.Debug)
	}
}

func TestConfigOverrides(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	err = config.ApplyOverrides([]string{
		"algo:blake2b_256",
		"version:2",
		"squash:true",
		"level:2",
		"debug:walk,hash",
		"exclude:a:b",
		"exclude:\\.tmp$",
		"hash_only:true",
		"buffer:128K",
	})
	if err != nil {
		t.Fatalf("Failed to apply overrides: %v", err)
	}

	opts, err := config.Options()
	if err != nil {
		t.Fatalf("Failed to build options: %v", err)
	}

	if opts.HashAlgo != "blake2b_256" {
		t.Errorf("Expected algo blake2b_256 after override, got '%s'", opts.HashAlgo)
	}
	if !opts.Squash || opts.SquashVersion != 2 {
		t.Errorf("Expected squash v2 after override, got %v v%d", opts.Squash, opts.SquashVersion)
	}
	if opts.Verbose != 2 || opts.Debug != "walk,hash" {
		t.Errorf("Expected verbose 2 debug 'walk,hash', got %d '%s'", opts.Verbose, opts.Debug)
	}
	if strings.Join(opts.Exclude, " ") != `a:b \.tmp$` {
		t.Errorf("Expected accumulated exclude patterns, got %v", opts.Exclude)
	}
	if !opts.HashOnly || opts.HashBuffer != 128*1024 {
		t.Errorf("Expected hash_only and 128K buffer, got %+v", opts)
	}
}

func TestConfigOverrideErrors(t *testing.T) {
	config, _ := LoadConfig("")

	testCases := []string{"noseparator", "bogus:1"}
	for _, override := range testCases {
		err := config.ApplyOverrides([]string{override})
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("ApplyOverrides(%q) expected ErrInvalidConfig, got %v", override, err)
		}
	}
}

func TestConfigInvalidValues(t *testing.T) {
	testCases := []struct {
		override string
		target   error
	}{
		{"algo:crc32", ErrUnsupportedAlgorithm},
		{"verify:nothex", ErrInvalidVerify},
		{"version:3", ErrUnsupportedSquash},
		{"level:9", ErrInvalidConfig},
		{"level:abc", ErrInvalidConfig},
		{"sort:maybe", ErrInvalidConfig},
		{"buffer:12X", ErrInvalidConfig},
	}

	for _, tc := range testCases {
		config, _ := LoadConfig("")
		if err := config.ApplyOverrides([]string{tc.override}); err != nil {
			t.Fatalf("ApplyOverrides(%q) failed: %v", tc.override, err)
		}
		if _, err := config.Options(); !errors.Is(err, tc.target) {
			t.Errorf("%s: expected %v, got %v", tc.override, tc.target, err)
		}
	}
}

func TestConfigSaveRoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "dirhash.ini")
	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := config.ApplyOverrides([]string{"algo:sha512", "exclude:x", "exclude:y"}); err != nil {
		t.Fatal(err)
	}
	if err := config.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	opts, err := reloaded.Options()
	if err != nil {
		t.Fatal(err)
	}
	if opts.HashAlgo != "sha512" || strings.Join(opts.Exclude, ",") != "x,y" {
		t.Errorf("round trip got %+v", opts)
	}
}

func TestOptionsValidate(t *testing.T) {
	opts := DefaultOptions()
	if err := opts.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	opts.HashVerify = "0x" + strings.Repeat("a", 32)
	if err := opts.Validate(); err != nil {
		t.Errorf("valid verify string rejected: %v", err)
	}

	opts.HashBuffer = 0
	if err := opts.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero buffer, got %v", err)
	}
}

func TestConfigOverrideWhitespace(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	err = config.ApplyOverrides([]string{
		" algo : sha1 ",
		"exclude: spaced name$",
		"exclude:^lead ",
		"ignore_file:/tmp/my ignores ",
	})
	if err != nil {
		t.Fatalf("Failed to apply overrides: %v", err)
	}

	opts, err := config.Options()
	if err != nil {
		t.Fatalf("Failed to build options: %v", err)
	}

	if opts.HashAlgo != "sha1" {
		t.Errorf("Expected trimmed algo sha1, got %q", opts.HashAlgo)
	}
	expected := []string{" spaced name$", "^lead "}
	if len(opts.Exclude) != len(expected) {
		t.Fatalf("got %q, expected %q", opts.Exclude, expected)
	}
	for i := range expected {
		if opts.Exclude[i] != expected[i] {
			t.Errorf("exclude %d got %q, expected %q", i, opts.Exclude[i], expected[i])
		}
	}
	if opts.IgnoreFile != "/tmp/my ignores " {
		t.Errorf("got ignore file %q, expected %q", opts.IgnoreFile, "/tmp/my ignores ")
	}
}
