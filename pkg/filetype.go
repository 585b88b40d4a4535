package dirhash

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// EntryType classifies a filesystem entry
type EntryType int

const (
	TypeInvalid EntryType = iota
	TypeDirectory
	TypeRegular
	TypeDevice
	TypeSymlink
	TypeUnsupported
)

// String returns the display name used in listings
func (t EntryType) String() string {
	switch t {
	case TypeDirectory:
		return "directory"
	case TypeRegular:
		return "regular file"
	case TypeDevice:
		return "device"
	case TypeSymlink:
		return "symlink"
	case TypeUnsupported:
		return "unsupported file"
	default:
		return "invalid file"
	}
}

// TargetType is the type of a resolved symlink target.
// It has no symlink or invalid member.
type TargetType int

const (
	TargetDirectory TargetType = iota
	TargetRegular
	TargetDevice
	TargetUnsupported
)

// EntryType widens a target type back to an EntryType
func (t TargetType) EntryType() EntryType {
	switch t {
	case TargetDirectory:
		return TypeDirectory
	case TargetRegular:
		return TypeRegular
	case TargetDevice:
		return TypeDevice
	default:
		return TypeUnsupported
	}
}

func (t TargetType) String() string {
	return t.EntryType().String()
}

// ResolveOutcome tags the result of Resolve
type ResolveOutcome int

const (
	Resolved ResolveOutcome = iota
	Broken
	Failed
)

func (o ResolveOutcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case Broken:
		return "broken"
	default:
		return "failed"
	}
}

// Resolution is the result of following a symlink chain.
// Target and Type are only meaningful when Outcome is Resolved.
type Resolution struct {
	Outcome ResolveOutcome
	Target  string
	Type    TargetType
	Err     error
}

// typeFromMode maps stat mode bits onto an EntryType
func typeFromMode(mode uint32) EntryType {
	switch mode & unix.S_IFMT {
	case unix.S_IFDIR:
		return TypeDirectory
	case unix.S_IFREG:
		return TypeRegular
	case unix.S_IFBLK, unix.S_IFCHR:
		return TypeDevice
	case unix.S_IFLNK:
		return TypeSymlink
	default:
		return TypeUnsupported
	}
}

// RawType classifies path without following a final symlink
func RawType(path string) EntryType {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return TypeInvalid
	}
	return typeFromMode(uint32(st.Mode))
}

// ResolvedType classifies path after the kernel follows every symlink
func ResolvedType(path string) EntryType {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return TypeInvalid
	}
	t := typeFromMode(uint32(st.Mode))
	if t == TypeSymlink {
		panic(fmt.Sprintf("stat returned a symlink for %s", path))
	}
	return t
}

// PathExists reports whether lstat succeeds on path
func PathExists(path string) bool {
	var st unix.Stat_t
	return unix.Lstat(path, &st) == nil
}

// Resolve follows the symlink chain starting at path one hop at a time.
// Relative link text is taken relative to the directory holding the link.
func Resolve(path string) Resolution {
	current := path
	for hop := 0; hop <= maxSymlinkHops; hop++ {
		var st unix.Stat_t
		if err := unix.Lstat(current, &st); err != nil {
			if errors.Is(err, unix.ENOENT) || errors.Is(err, unix.ENOTDIR) {
				return Resolution{Outcome: Broken, Err: fmt.Errorf("broken symlink %s -> %s: %w", path, current, err)}
			}
			return Resolution{Outcome: Failed, Err: fmt.Errorf("failed to resolve %s: %w", path, err)}
		}

		switch typeFromMode(uint32(st.Mode)) {
		case TypeSymlink:
			// fall through to readlink below
		case TypeDirectory:
			return Resolution{Outcome: Resolved, Target: current, Type: TargetDirectory}
		case TypeRegular:
			return Resolution{Outcome: Resolved, Target: current, Type: TargetRegular}
		case TypeDevice:
			return Resolution{Outcome: Resolved, Target: current, Type: TargetDevice}
		default:
			return Resolution{Outcome: Resolved, Target: current, Type: TargetUnsupported}
		}

		link, err := readlink(current)
		if err != nil {
			return Resolution{Outcome: Failed, Err: fmt.Errorf("failed to read link %s: %w", current, err)}
		}
		next, err := nextHop(Dirpath(current), link)
		if err != nil {
			if errors.Is(err, unix.ENOENT) || errors.Is(err, unix.ENOTDIR) {
				return Resolution{Outcome: Broken, Err: fmt.Errorf("broken symlink %s -> %s: %w", path, link, err)}
			}
			return Resolution{Outcome: Failed, Err: fmt.Errorf("failed to resolve %s: %w", path, err)}
		}
		current = next
	}
	return Resolution{Outcome: Failed, Err: fmt.Errorf("failed to resolve %s: %w", path, unix.ELOOP)}
}

// nextHop returns the path that link text found in dir refers to.
// ".." elements are applied to the physical parent, as the kernel does.
func nextHop(dir, link string) (string, error) {
	raw := link
	if !filepath.IsAbs(link) {
		raw = dir + "/" + link
	}
	if !hasDotDot(link) {
		return filepath.Clean(raw), nil
	}

	trimmed := strings.TrimRight(raw, "/")
	if trimmed == "" {
		return "/", nil
	}
	idx := strings.LastIndex(trimmed, "/")
	parent, name := trimmed[:idx], trimmed[idx+1:]
	if parent == "" {
		parent = "/"
	}
	if name == "." || name == ".." {
		return filepath.EvalSymlinks(trimmed)
	}
	resolved, err := filepath.EvalSymlinks(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolved, name), nil
}

func hasDotDot(link string) bool {
	for _, element := range strings.Split(link, "/") {
		if element == ".." {
			return true
		}
	}
	return false
}

func readlink(path string) (string, error) {
	for size := 256; ; size *= 2 {
		buf := make([]byte, size)
		n, err := unix.Readlink(path, buf)
		if err != nil {
			return "", err
		}
		if n < size {
			return string(buf[:n]), nil
		}
	}
}
