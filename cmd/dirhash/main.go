package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	dirhash "github.com/mattkeenan/dirhash/pkg"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var errUsage = errors.New("no input path given")

// cliFlags holds values of flags that do not map onto a config key
type cliFlags struct {
	configPath  string
	overrides   []string
	writeConfig bool
	listAlgo    bool
}

// flagOverrides maps boolean and string flags onto config override keys
var flagOverrides = []struct {
	flag string
	key  string
}{
	{"hash_algo", "algo"},
	{"hash_verify", "verify"},
	{"hash_buffer", "buffer"},
	{"hash_only", "hash_only"},
	{"ignore_dot", "ignore_dot"},
	{"ignore_dot_dir", "ignore_dot_dir"},
	{"ignore_dot_file", "ignore_dot_file"},
	{"ignore_symlink", "ignore_symlink"},
	{"follow_symlink", "follow_symlink"},
	{"abs", "abs"},
	{"swap", "swap"},
	{"sort", "sort"},
	{"squash", "squash"},
	{"squash_version", "version"},
	{"ignore_file", "ignore_file"},
	{"debug", "debug"},
}

func main() {
	cmd := newRootCommand(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dirhash: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	cli := &cliFlags{}

	cmd := &cobra.Command{
		Use:   "dirhash [options] <paths...>",
		Short: "Print message digests of files in directory trees",
		Long: `dirhash walks each given path and prints a message digest for every
regular file, device and symlink found. With --squash the digests of a
whole tree are folded into a single line tagged [squash][vN].`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cli, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("dirhash {{.Version}}\n")

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.String("hash_algo", dirhash.DefaultHashAlgorithm, "Hash algorithm to use (see --list_algo)")
	flags.String("hash_verify", "", "Only print entries whose digest matches this hex string")
	flags.Bool("hash_only", false, "Do not print file paths")
	flags.Bool("ignore_dot", false, "Ignore entries whose name or parent directory starts with \".\"")
	flags.Bool("ignore_dot_dir", false, "Ignore entries below a directory starting with \".\"")
	flags.Bool("ignore_dot_file", false, "Ignore entries whose name starts with \".\"")
	flags.Bool("ignore_symlink", false, "Ignore symbolic links")
	flags.Bool("follow_symlink", false, "Hash symlink targets instead of link names")
	flags.Bool("abs", false, "Print absolute paths")
	flags.Bool("swap", false, "Print the path before the digest")
	flags.Bool("sort", false, "Walk entries in lexical order")
	flags.Bool("squash", false, "Print one squashed digest per input instead of one per file")
	flags.Int("squash_version", dirhash.DefaultSquashVersion, "Squash algorithm version (1: order independent, 2: order dependent)")
	flags.String("hash_buffer", dirhash.FormatHumanSize(dirhash.DefaultHashBuffer), "Read buffer size (e.g. 64K, 2M)")
	flags.StringArray("exclude", nil, "Skip entries whose relative path matches this regular expression (repeatable)")
	flags.String("ignore_file", "", "Skip entries matching patterns in this gitignore-style file")
	flags.Count("verbose", "Print summaries; repeat for per-entry logging on stderr")
	flags.String("debug", "", "Debug flags for stderr tracing: walk,hash,squash,resolve (bare --debug enables all)")
	flags.Lookup("debug").NoOptDefVal = "all"

	flags.StringVar(&cli.configPath, "config", "", "Read defaults from this ini file")
	flags.StringArrayVar(&cli.overrides, "override", nil, "Override a config value, as key:value (repeatable)")
	flags.BoolVar(&cli.writeConfig, "write_config", false, "Write the effective configuration to --config and exit")
	flags.BoolVar(&cli.listAlgo, "list_algo", false, "List available hash algorithms and exit")

	return cmd
}

// collectOverrides turns explicitly set flags into config overrides so they win over the file
func collectOverrides(flags *pflag.FlagSet, cli *cliFlags) ([]string, error) {
	overrides := append([]string{}, cli.overrides...)

	for _, fo := range flagOverrides {
		if !flags.Changed(fo.flag) {
			continue
		}
		value := flags.Lookup(fo.flag).Value.String()
		overrides = append(overrides, fo.key+":"+value)
	}

	if flags.Changed("exclude") {
		patterns, err := flags.GetStringArray("exclude")
		if err != nil {
			return nil, err
		}
		for _, p := range patterns {
			overrides = append(overrides, "exclude:"+p)
		}
	}

	if flags.Changed("verbose") {
		level, err := flags.GetCount("verbose")
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, "level:"+strconv.Itoa(level))
	}
	return overrides, nil
}

func run(cmd *cobra.Command, cli *cliFlags, args []string, stdout, stderr io.Writer) error {
	if cli.listAlgo {
		for _, name := range dirhash.AvailableAlgorithms() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}

	cfg, err := dirhash.LoadConfig(cli.configPath)
	if err != nil {
		return err
	}

	overrides, err := collectOverrides(cmd.Flags(), cli)
	if err != nil {
		return err
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		return err
	}

	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	if cli.writeConfig {
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintf(stdout, "wrote %s\n", cfg.Path())
		return nil
	}

	if len(args) == 0 {
		cmd.Usage()
		return errUsage
	}

	log := dirhash.NewLogger(stderr, opts.Verbose, opts.Debug)
	walker, err := dirhash.NewWalker(opts, stdout, log)
	if err != nil {
		return err
	}
	return walker.Run(args)
}
