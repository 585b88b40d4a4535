package dirhash

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	// ErrNoSuchPath is returned when an input does not exist
	ErrNoSuchPath = errors.New("no such path")
	// ErrInvalidInput is returned for inputs that are neither directory, file, device nor symlink
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedPlatform is returned when paths are not slash separated
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// Walker hashes file trees according to a fixed set of options
type Walker struct {
	opts      Options
	algorithm *HashAlgorithm
	verify    string
	ignore    *IgnoreManager
	printer   *Printer
	log       *Logger
}

// Result summarises one hashed input
type Result struct {
	Input       string // absolute input path
	Prefix      string // directory output paths are relative to
	Stats       *StatCollector
	SquashSum   string // hex digest of the squash buffer, empty unless squashing
	SquashBytes int    // size of the finalized squash buffer
}

// walkState is the per-input mutable state
type walkState struct {
	prefix string
	squash Squasher
	stats  *StatCollector
}

// NewWalker validates opts and returns a walker printing to out.
// A nil log writes verbose output to stderr.
func NewWalker(opts Options, out io.Writer, log *Logger) (*Walker, error) {
	if os.PathSeparator != '/' {
		return nil, fmt.Errorf("%w: invalid path separator %c", ErrUnsupportedPlatform, os.PathSeparator)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	algorithm, err := GetHashAlgorithm(opts.HashAlgo)
	if err != nil {
		return nil, err
	}

	verify := ""
	if opts.HashVerify != "" {
		verify, _ = ValidHexSum(opts.HashVerify)
	}

	ignore, err := NewIgnoreManager(opts)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = NewLogger(os.Stderr, opts.Verbose, opts.Debug)
	}
	if ignore.HasPatterns() {
		log.VerboseLog(2, "exclude patterns: %d, ignore file: %q", len(opts.Exclude), opts.IgnoreFile)
	}

	return &Walker{
		opts:      opts,
		algorithm: algorithm,
		verify:    verify,
		ignore:    ignore,
		printer:   NewPrinter(out),
		log:       log,
	}, nil
}

// Algorithm returns the primary hash algorithm
func (w *Walker) Algorithm() *HashAlgorithm {
	return w.algorithm
}

// Run hashes every input in turn, stopping at the first fatal error
func (w *Walker) Run(inputs []string) error {
	defer w.log.Enter()()

	if w.opts.Verbose > 0 {
		if err := w.printer.Println(w.algorithm.Name); err != nil {
			return err
		}
	}

	for i, input := range inputs {
		if _, err := w.HashPath(input); err != nil {
			w.printer.Flush()
			return err
		}
		if w.opts.Verbose > 0 && i != len(inputs)-1 {
			if err := w.printer.Println(""); err != nil {
				return err
			}
		}
	}
	return w.printer.Flush()
}

// HashPath hashes one input and prints its digests, listings and squash line
func (w *Walker) HashPath(input string) (*Result, error) {
	defer w.log.Enter()()

	f, err := NormalizeAbsolute(input)
	if err != nil {
		return nil, err
	}
	if !PathExists(f) {
		return nil, fmt.Errorf("%w %s", ErrNoSuchPath, f)
	}
	assertFilePath(f)

	var prefix string
	canWalk := true
	switch raw := RawType(f); raw {
	case TypeDirectory:
		prefix = f
	case TypeRegular, TypeDevice, TypeSymlink:
		prefix = Dirpath(f)
		canWalk = false
	default:
		return nil, fmt.Errorf("%w %s (%s)", ErrInvalidInput, f, raw)
	}
	if t := ResolvedType(prefix); t != TypeDirectory {
		panic(fmt.Sprintf("input prefix %s is a %s", prefix, t))
	}

	squash, err := NewSquasher(w.opts.SquashVersion)
	if err != nil {
		return nil, err
	}
	st := &walkState{
		prefix: prefix,
		squash: squash,
		stats:  NewStatCollector(),
	}
	w.ignore.SetPrefix(prefix)
	w.log.VerboseLog(1, "hashing %s (prefix %s)", f, prefix)

	if canWalk {
		if w.opts.Sort {
			err = w.walkSorted(f, st)
		} else {
			err = w.walkDir(f, st, true)
		}
		if err != nil {
			return nil, err
		}
	} else {
		w.visit(f, st)
	}

	result := &Result{Input: f, Prefix: prefix, Stats: st.stats}

	if w.opts.Verbose > 0 {
		if err := st.stats.PrintVerbose(w.printer, prefix, w.opts.Abs); err != nil {
			return nil, err
		}
	}
	if err := st.stats.PrintProblems(w.printer, prefix, w.opts.Abs); err != nil {
		return nil, err
	}

	if w.opts.Squash {
		buf := st.squash.Finalize()
		result.SquashBytes = len(buf)
		if w.opts.Verbose > 0 {
			if err := w.printer.Println(FormatNum(uint64(len(buf)), "squashed byte")); err != nil {
				return nil, err
			}
		}
		sum, err := w.printSquash(f, buf, st)
		if err != nil {
			return nil, err
		}
		result.SquashSum = sum
	}

	return result, w.printer.Flush()
}

// readDir lists dir in the order the OS returns entries
func readDir(dir string) ([]os.DirEntry, error) {
	file, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return file.ReadDir(-1)
}

// dirReadable reports whether dir can be opened for listing
func dirReadable(dir string) bool {
	file, err := os.Open(dir)
	if err != nil {
		return false
	}
	file.Close()
	return true
}

// walkDir visits the children of dir depth first in enumeration order.
// Failing to list the input directory itself is fatal.
func (w *Walker) walkDir(dir string, st *walkState, isRoot bool) error {
	entries, err := readDir(dir)
	if err != nil {
		if isRoot {
			return fmt.Errorf("failed to read directory %s: %w", dir, err)
		}
		w.log.VerboseLog(1, "failed to read directory %s: %v", dir, err)
		w.recordInvalid(dir, st)
		return nil
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if w.visit(path, st) {
			if err := w.walkDir(path, st, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// walkSorted buffers the whole subtree of root and visits it in lexical path order
func (w *Walker) walkSorted(root string, st *walkState) error {
	list := newPathSkiplist(24)
	if err := w.enumerate(root, st, list, true); err != nil {
		return err
	}
	w.log.VerboseLog(2, "sorted %d entries under %s", list.Length(), root)

	list.ForEach(func(path, relative string) bool {
		w.log.Debugf(DebugWalk, "### sorted %s", relative)
		w.visit(path, st)
		return true
	})
	return nil
}

func (w *Walker) enumerate(dir string, st *walkState, list *pathSkiplist, isRoot bool) error {
	entries, err := readDir(dir)
	if err != nil {
		if isRoot {
			return fmt.Errorf("failed to read directory %s: %w", dir, err)
		}
		// dir itself is in the list and gets recorded when visited
		w.log.VerboseLog(1, "failed to read directory %s: %v", dir, err)
		return nil
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		list.Insert(path, TrimPrefix(path, st.prefix))
		if RawType(path) == TypeDirectory && !w.ignore.ShouldExclude(path, true) {
			if err := w.enumerate(path, st, list, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// visit processes one entry and reports whether it is a real directory to descend into
func (w *Walker) visit(path string, st *walkState) bool {
	assertFilePath(path)

	raw := RawType(path)
	if w.ignore.ShouldIgnore(path, raw) {
		w.recordIgnored(path, raw, st)
		return false
	}

	target, link, t := path, "", raw
	if raw == TypeSymlink {
		if w.opts.IgnoreSymlink {
			w.recordIgnored(path, raw, st)
			return false
		}
		if !w.opts.FollowSymlink {
			w.hashSymlink(path, st)
			return false
		}
		res := Resolve(path)
		if res.Outcome != Resolved {
			w.log.VerboseLog(2, "%s symlink %s: %v", res.Outcome, path, res.Err)
			w.recordInvalid(path, st)
			return false
		}
		w.log.Debugf(DebugResolve, "### %s -> %s %s", path, res.Target, res.Type)
		target, link, t = res.Target, path, res.Type.EntryType()
	}

	switch t {
	case TypeDirectory:
		if link == "" && !dirReadable(target) {
			w.log.VerboseLog(1, "failed to open directory %s", target)
			w.recordInvalid(target, st)
			return false
		}
		w.hashDirectory(target, link, st)
		return link == ""
	case TypeRegular, TypeDevice:
		w.hashFile(target, link, t, st)
	case TypeUnsupported:
		w.debugEntry(target, t)
		st.stats.Add(TypeUnsupported, target, t, t)
	case TypeInvalid:
		w.recordInvalid(target, st)
	default:
		panic(fmt.Sprintf("%s has unexpected type %s after resolution", target, t))
	}
	return false
}

func (w *Walker) debugEntry(path string, t EntryType) {
	w.log.Debugf(DebugWalk, "### %s %s", path, t)
}

func (w *Walker) recordIgnored(path string, raw EntryType, st *walkState) {
	w.log.VerboseLog(2, "ignoring %s", path)
	st.stats.AddIgnored(path, raw, ResolvedType(path))
}

func (w *Walker) recordInvalid(path string, st *walkState) {
	w.debugEntry(path, TypeInvalid)
	st.stats.Add(TypeInvalid, path, RawType(path), ResolvedType(path))
}

// display is the output path of an entry, "link -> target" when reached through a symlink
func (w *Walker) display(target, link string, st *walkState) string {
	realf := RealPath(target, st.prefix, w.opts.Abs)
	if link == "" {
		return realf
	}
	assertFilePath(link)
	ll := link
	if !w.opts.Abs {
		ll = TrimPrefix(link, st.prefix)
	}
	return ll + " -> " + realf
}

// hashDirectory feeds a directory's path identity to the squash buffer.
// Directories only contribute when squashing and never for the input prefix.
func (w *Walker) hashDirectory(path, link string, st *walkState) {
	assertFilePath(path)
	if path == st.prefix || !w.opts.Squash {
		return
	}
	w.debugEntry(path, TypeDirectory)

	sum, written := HashString(TrimPrefix(path, st.prefix), w.algorithm)
	st.stats.Add(TypeDirectory, path, TypeDirectory, TypeDirectory)
	st.stats.AddWritten(TypeDirectory, written)

	if w.opts.HashOnly {
		st.squash.Update(sum)
		return
	}
	st.squash.Update(squashRecord(w.display(path, link, st), sum))
}

func (w *Walker) hashFile(path, link string, t EntryType, st *walkState) {
	assertFilePath(path)
	w.debugEntry(path, t)

	sum, written, err := HashFile(path, w.algorithm, w.opts.HashBuffer)
	if err != nil {
		w.log.VerboseLog(1, "%v", err)
		st.stats.Add(TypeInvalid, path, t, t)
		return
	}
	st.stats.Add(t, path, t, t)
	st.stats.AddWritten(t, written)
	w.log.VerboseLog(2, "hashed %s (%d bytes)", path, written)
	w.log.Debugf(DebugHash, "### %s %s", HexSum(sum), path)

	w.emit(sum, w.display(path, link, st), st)
}

// hashSymlink hashes the link's own name, not what it points to
func (w *Walker) hashSymlink(path string, st *walkState) {
	assertFilePath(path)
	w.debugEntry(path, TypeSymlink)

	sum, written := HashString(Basename(path), w.algorithm)
	st.stats.Add(TypeSymlink, path, TypeSymlink, ResolvedType(path))
	st.stats.AddWritten(TypeSymlink, written)

	w.emit(sum, RealPath(path, st.prefix, w.opts.Abs), st)
}

// emit prints a digest line or feeds the squash buffer
func (w *Walker) emit(sum []byte, display string, st *walkState) {
	hexSum := HexSum(sum)
	if w.verify != "" && w.verify != hexSum {
		return
	}

	switch {
	case w.opts.HashOnly && w.opts.Squash:
		st.squash.Update(sum)
	case w.opts.HashOnly:
		w.println(hexSum)
	case w.opts.Squash:
		st.squash.Update(squashRecord(display, sum))
	default:
		w.println(FormatSum(display, hexSum, w.opts.Swap))
	}
}

func (w *Walker) println(line string) {
	if err := w.printer.Println(line); err != nil {
		w.log.VerboseLog(1, "%v", err)
	}
}

// printSquash hashes the finalized squash buffer and prints the squash line
func (w *Walker) printSquash(f string, buf []byte, st *walkState) (string, error) {
	assertFilePath(f)

	sum, _ := HashBytes(buf, w.algorithm)
	hexSum := HexSum(sum)
	w.log.Debugf(DebugSquash, "### squash v%d %d bytes %s", st.squash.Version(), len(buf), hexSum)

	if w.verify != "" && w.verify != hexSum {
		return hexSum, nil
	}

	if w.opts.HashOnly {
		return hexSum, w.printer.Println(hexSum)
	}

	tag := SquashTag(st.squash)
	realf := RealPath(f, st.prefix, w.opts.Abs)
	if realf == "." {
		return hexSum, w.printer.Println(hexSum + tag)
	}
	return hexSum, w.printer.Println(FormatSum(realf, hexSum, w.opts.Swap) + tag)
}

// squashRecord is the byte string an entry contributes: its display path followed by the raw digest
func squashRecord(display string, sum []byte) []byte {
	record := make([]byte, 0, len(display)+len(sum))
	record = append(record, display...)
	return append(record, sum...)
}
