package dirhash

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-ini/ini"
)

// ErrInvalidConfig is returned for config values that cannot be parsed
var ErrInvalidConfig = errors.New("invalid configuration")

// Options is the immutable configuration of one dirhash run
type Options struct {
	HashAlgo      string
	HashVerify    string
	HashOnly      bool
	IgnoreDot     bool
	IgnoreDotDir  bool
	IgnoreDotFile bool
	IgnoreSymlink bool
	FollowSymlink bool
	Abs           bool
	Swap          bool
	Sort          bool
	Squash        bool
	SquashVersion int
	Verbose       int
	Debug         string
	HashBuffer    int
	Exclude       []string
	IgnoreFile    string
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		HashAlgo:      DefaultHashAlgorithm,
		SquashVersion: DefaultSquashVersion,
		HashBuffer:    DefaultHashBuffer,
	}
}

// Validate checks every option that can be rejected before a walk starts
func (o Options) Validate() error {
	if _, err := GetHashAlgorithm(o.HashAlgo); err != nil {
		return err
	}
	if o.HashVerify != "" {
		if _, ok := ValidHexSum(o.HashVerify); !ok {
			return fmt.Errorf("%w %s", ErrInvalidVerify, o.HashVerify)
		}
	}
	if err := ValidateSquashVersion(o.SquashVersion); err != nil {
		return err
	}
	if err := ValidateVerboseLevel(o.Verbose); err != nil {
		return err
	}
	if o.HashBuffer <= 0 {
		return fmt.Errorf("%w: hash buffer must be positive, got %d", ErrInvalidConfig, o.HashBuffer)
	}
	return nil
}

// Config is the ini-backed configuration file
type Config struct {
	configPath string
	ini        *ini.File
}

// HashConfig represents the [hash] section
type HashConfig struct {
	Algo   string // Hash algorithm name
	Verify string // Only print digests matching this hex string
	Buffer string // Read buffer size, human readable
}

// SquashConfig represents the [squash] section
type SquashConfig struct {
	Enabled bool
	Version int
}

// WalkConfig represents the [walk] section
type WalkConfig struct {
	IgnoreDot     bool
	IgnoreDotDir  bool
	IgnoreDotFile bool
	IgnoreSymlink bool
	FollowSymlink bool
	Sort          bool
	Exclude       []string // one regular expression per exclude key
	IgnoreFile    string
}

// OutputConfig represents the [output] section
type OutputConfig struct {
	HashOnly bool
	Abs      bool
	Swap     bool
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // Default verbose level (0=quiet, 1=summary, 2=per entry, 3=trace)
	Debug string // Default debug flags (comma-separated)
}

// LoadConfig loads configuration from path.
// An empty path or a missing file yields the defaults without touching disk.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{
		configPath: configPath,
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			iniFile, err := ini.ShadowLoad(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
			cfg.ini = iniFile
			return cfg, nil
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	cfg.ini = ini.Empty(ini.LoadOptions{AllowShadows: true})
	if err := cfg.setDefaults(); err != nil {
		return nil, fmt.Errorf("failed to set default config: %w", err)
	}
	return cfg, nil
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() error {
	defaults := DefaultOptions()
	sections := []struct {
		name string
		keys [][2]string
	}{
		{"hash", [][2]string{
			{"algo", defaults.HashAlgo},
			{"verify", ""},
			{"buffer", FormatHumanSize(defaults.HashBuffer)},
		}},
		{"squash", [][2]string{
			{"enabled", "false"},
			{"version", strconv.Itoa(defaults.SquashVersion)},
		}},
		{"walk", [][2]string{
			{"ignore_dot", "false"},
			{"ignore_dot_dir", "false"},
			{"ignore_dot_file", "false"},
			{"ignore_symlink", "false"},
			{"follow_symlink", "false"},
			{"sort", "false"},
			{"ignore_file", ""},
		}},
		{"output", [][2]string{
			{"hash_only", "false"},
			{"abs", "false"},
			{"swap", "false"},
		}},
		{"verbose", [][2]string{
			{"level", "0"},
			{"debug", ""},
		}},
	}

	for _, s := range sections {
		section, err := c.ini.NewSection(s.name)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", s.name, err)
		}
		for _, kv := range s.keys {
			if _, err := section.NewKey(kv[0], kv[1]); err != nil {
				return fmt.Errorf("failed to set default %s.%s: %w", s.name, kv[0], err)
			}
		}
	}
	return nil
}

func (c *Config) key(section, name string) (*ini.Key, bool) {
	if !c.ini.HasSection(section) {
		return nil, false
	}
	s := c.ini.Section(section)
	if !s.HasKey(name) {
		return nil, false
	}
	return s.Key(name), true
}

func (c *Config) boolValue(section, name string, fallback bool) (bool, error) {
	k, ok := c.key(section, name)
	if !ok || k.String() == "" {
		return fallback, nil
	}
	v, err := k.Bool()
	if err != nil {
		return fallback, fmt.Errorf("%w: %s.%s=%q is not a boolean", ErrInvalidConfig, section, name, k.String())
	}
	return v, nil
}

func (c *Config) intValue(section, name string, fallback int) (int, error) {
	k, ok := c.key(section, name)
	if !ok || k.String() == "" {
		return fallback, nil
	}
	v, err := k.Int()
	if err != nil {
		return fallback, fmt.Errorf("%w: %s.%s=%q is not an integer", ErrInvalidConfig, section, name, k.String())
	}
	return v, nil
}

func (c *Config) stringValue(section, name, fallback string) string {
	k, ok := c.key(section, name)
	if !ok {
		return fallback
	}
	return k.String()
}

// GetHashConfig returns the hash configuration
func (c *Config) GetHashConfig() *HashConfig {
	return &HashConfig{
		Algo:   c.stringValue("hash", "algo", DefaultHashAlgorithm),
		Verify: c.stringValue("hash", "verify", ""),
		Buffer: c.stringValue("hash", "buffer", FormatHumanSize(DefaultHashBuffer)),
	}
}

// GetSquashConfig returns the squash configuration
func (c *Config) GetSquashConfig() (*SquashConfig, error) {
	enabled, err := c.boolValue("squash", "enabled", false)
	if err != nil {
		return nil, err
	}
	version, err := c.intValue("squash", "version", DefaultSquashVersion)
	if err != nil {
		return nil, err
	}
	return &SquashConfig{Enabled: enabled, Version: version}, nil
}

// GetWalkConfig returns the walk configuration
func (c *Config) GetWalkConfig() (*WalkConfig, error) {
	walkConfig := &WalkConfig{
		IgnoreFile: c.stringValue("walk", "ignore_file", ""),
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"ignore_dot", &walkConfig.IgnoreDot},
		{"ignore_dot_dir", &walkConfig.IgnoreDotDir},
		{"ignore_dot_file", &walkConfig.IgnoreDotFile},
		{"ignore_symlink", &walkConfig.IgnoreSymlink},
		{"follow_symlink", &walkConfig.FollowSymlink},
		{"sort", &walkConfig.Sort},
	}
	for _, f := range flags {
		v, err := c.boolValue("walk", f.name, false)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	if k, ok := c.key("walk", "exclude"); ok {
		walkConfig.Exclude = k.ValueWithShadows()
	}
	return walkConfig, nil
}

// GetOutputConfig returns the output configuration
func (c *Config) GetOutputConfig() (*OutputConfig, error) {
	outputConfig := &OutputConfig{}
	flags := []struct {
		name string
		dst  *bool
	}{
		{"hash_only", &outputConfig.HashOnly},
		{"abs", &outputConfig.Abs},
		{"swap", &outputConfig.Swap},
	}
	for _, f := range flags {
		v, err := c.boolValue("output", f.name, false)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	return outputConfig, nil
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() (*VerboseConfig, error) {
	level, err := c.intValue("verbose", "level", 0)
	if err != nil {
		return nil, err
	}
	return &VerboseConfig{
		Level: level,
		Debug: c.stringValue("verbose", "debug", ""),
	}, nil
}

// Options converts the configuration into validated run options
func (c *Config) Options() (Options, error) {
	opts := DefaultOptions()

	hashConfig := c.GetHashConfig()
	opts.HashAlgo = hashConfig.Algo
	opts.HashVerify = hashConfig.Verify
	if hashConfig.Buffer != "" {
		size, err := ParseHumanSize(hashConfig.Buffer)
		if err != nil {
			return opts, fmt.Errorf("%w: hash.buffer: %v", ErrInvalidConfig, err)
		}
		opts.HashBuffer = size
	}

	squashConfig, err := c.GetSquashConfig()
	if err != nil {
		return opts, err
	}
	opts.Squash = squashConfig.Enabled
	opts.SquashVersion = squashConfig.Version

	walkConfig, err := c.GetWalkConfig()
	if err != nil {
		return opts, err
	}
	opts.IgnoreDot = walkConfig.IgnoreDot
	opts.IgnoreDotDir = walkConfig.IgnoreDotDir
	opts.IgnoreDotFile = walkConfig.IgnoreDotFile
	opts.IgnoreSymlink = walkConfig.IgnoreSymlink
	opts.FollowSymlink = walkConfig.FollowSymlink
	opts.Sort = walkConfig.Sort
	opts.Exclude = walkConfig.Exclude
	opts.IgnoreFile = walkConfig.IgnoreFile

	outputConfig, err := c.GetOutputConfig()
	if err != nil {
		return opts, err
	}
	opts.HashOnly = outputConfig.HashOnly
	opts.Abs = outputConfig.Abs
	opts.Swap = outputConfig.Swap

	verboseConfig, err := c.GetVerboseConfig()
	if err != nil {
		return opts, err
	}
	opts.Verbose = verboseConfig.Level
	opts.Debug = verboseConfig.Debug

	return opts, opts.Validate()
}

// Path returns the file the configuration is loaded from and saved to
func (c *Config) Path() string {
	return c.configPath
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config file path set")
	}
	return c.ini.SaveTo(c.configPath)
}

// overrideKeys maps override keys onto their ini section
var overrideKeys = map[string]string{
	"algo":            "hash",
	"verify":          "hash",
	"buffer":          "hash",
	"squash":          "squash",
	"version":         "squash",
	"ignore_dot":      "walk",
	"ignore_dot_dir":  "walk",
	"ignore_dot_file": "walk",
	"ignore_symlink":  "walk",
	"follow_symlink":  "walk",
	"sort":            "walk",
	"exclude":         "walk",
	"ignore_file":     "walk",
	"hash_only":       "output",
	"abs":             "output",
	"swap":            "output",
	"level":           "verbose",
	"debug":           "verbose",
}

// ApplyOverrides applies command-line overrides to the configuration
// Accepts strings like "algo:sha1", "version:2", "level:1", "exclude:\.o$"
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, override := range overrides {
		parts := strings.SplitN(override, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("%w: invalid override format '%s', expected 'key:value'", ErrInvalidConfig, override)
		}

		key := strings.TrimSpace(parts[0])
		value := parts[1]
		if key != "exclude" && key != "ignore_file" {
			value = strings.TrimSpace(value)
		}

		sectionName, ok := overrideKeys[key]
		if !ok {
			supported := make([]string, 0, len(overrideKeys))
			for k := range overrideKeys {
				supported = append(supported, k)
			}
			sort.Strings(supported)
			return fmt.Errorf("%w: unsupported override key '%s' (supported: %s)",
				ErrInvalidConfig, key, strings.Join(supported, ", "))
		}

		name := key
		if key == "squash" {
			name = "enabled"
		}

		section := c.ini.Section(sectionName)
		if key == "exclude" {
			// exclude accumulates
			if _, err := section.NewKey(name, value); err != nil {
				return fmt.Errorf("failed to add exclude pattern: %w", err)
			}
			continue
		}
		section.Key(name).SetValue(value)
	}

	return nil
}

// ValidateSquashVersion validates that a squash version is supported
func ValidateSquashVersion(version int) error {
	switch version {
	case SquashVersion1, SquashVersion2:
		return nil
	default:
		return fmt.Errorf("%w: %d (supported: %d, %d)", ErrUnsupportedSquash, version, SquashVersion1, SquashVersion2)
	}
}

// ValidateVerboseLevel validates that a verbose level is valid
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("%w: invalid verbose level: %d (supported: 0-3)", ErrInvalidConfig, level)
	}
	return nil
}
