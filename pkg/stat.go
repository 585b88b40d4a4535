package dirhash

import "fmt"

// StatEntry is one recorded path with the types seen when it was recorded
type StatEntry struct {
	Path     string
	Raw      EntryType
	Resolved EntryType
}

// StatCollector records every processed or skipped entry of one input
type StatCollector struct {
	directory   []StatEntry
	regular     []StatEntry
	device      []StatEntry
	symlink     []StatEntry
	unsupported []StatEntry
	invalid     []StatEntry
	ignored     []StatEntry

	writtenDirectory uint64
	writtenRegular   uint64
	writtenDevice    uint64
	writtenSymlink   uint64
}

// NewStatCollector returns an empty collector
func NewStatCollector() *StatCollector {
	return &StatCollector{}
}

// Reset clears all lists and counters
func (s *StatCollector) Reset() {
	*s = StatCollector{}
}

// Add records path under category; raw and resolved are kept for listing
func (s *StatCollector) Add(category EntryType, path string, raw, resolved EntryType) {
	e := StatEntry{Path: path, Raw: raw, Resolved: resolved}
	switch category {
	case TypeDirectory:
		s.directory = append(s.directory, e)
	case TypeRegular:
		s.regular = append(s.regular, e)
	case TypeDevice:
		s.device = append(s.device, e)
	case TypeSymlink:
		s.symlink = append(s.symlink, e)
	case TypeUnsupported:
		s.unsupported = append(s.unsupported, e)
	default:
		s.invalid = append(s.invalid, e)
	}
}

// AddIgnored records a skipped path
func (s *StatCollector) AddIgnored(path string, raw, resolved EntryType) {
	s.ignored = append(s.ignored, StatEntry{Path: path, Raw: raw, Resolved: resolved})
}

// AddWritten adds n hashed bytes to the counter for category
func (s *StatCollector) AddWritten(category EntryType, n uint64) {
	switch category {
	case TypeDirectory:
		s.writtenDirectory += n
	case TypeRegular:
		s.writtenRegular += n
	case TypeDevice:
		s.writtenDevice += n
	case TypeSymlink:
		s.writtenSymlink += n
	default:
		panic("bytes recorded for unhashable type " + category.String())
	}
}

// Entries returns the list recorded for category
func (s *StatCollector) Entries(category EntryType) []StatEntry {
	switch category {
	case TypeDirectory:
		return s.directory
	case TypeRegular:
		return s.regular
	case TypeDevice:
		return s.device
	case TypeSymlink:
		return s.symlink
	case TypeUnsupported:
		return s.unsupported
	default:
		return s.invalid
	}
}

// Ignored returns the skipped paths
func (s *StatCollector) Ignored() []StatEntry {
	return s.ignored
}

// NumTotal is the number of hashed entries
func (s *StatCollector) NumTotal() int {
	return len(s.directory) + len(s.regular) + len(s.device) + len(s.symlink)
}

// Written returns the hashed byte count for category
func (s *StatCollector) Written(category EntryType) uint64 {
	switch category {
	case TypeDirectory:
		return s.writtenDirectory
	case TypeRegular:
		return s.writtenRegular
	case TypeDevice:
		return s.writtenDevice
	case TypeSymlink:
		return s.writtenSymlink
	}
	return 0
}

// WrittenTotal is the number of hashed bytes over all categories
func (s *StatCollector) WrittenTotal() uint64 {
	return s.writtenDirectory + s.writtenRegular + s.writtenDevice + s.writtenSymlink
}

// FormatNum renders "N msg" with a plural suffix when n > 1
func FormatNum(n uint64, msg string) string {
	if msg == "" {
		return "???"
	}
	s := fmt.Sprintf("%d %s", n, msg)
	if n > 1 {
		if msg == TypeDirectory.String() {
			s = s[:len(s)-1] + "ies"
		} else {
			s += "s"
		}
	}
	return s
}

var hashedCategories = []EntryType{TypeDirectory, TypeRegular, TypeDevice, TypeSymlink}

// PrintList writes the "N <msg>" heading and one "path (type)" line per entry.
// Nothing is written for an empty list.
func PrintList(p *Printer, entries []StatEntry, msg, prefix string, abs bool) error {
	if len(entries) == 0 {
		return nil
	}
	if err := p.Println(FormatNum(uint64(len(entries)), msg)); err != nil {
		return err
	}
	for _, e := range entries {
		path := RealPath(e.Path, prefix, abs)
		var line string
		if e.Raw == TypeSymlink {
			if e.Resolved == TypeSymlink {
				panic(fmt.Sprintf("symlink %s listed with unresolved type", e.Path))
			}
			line = fmt.Sprintf("%s (%s -> %s)", path, e.Raw, e.Resolved)
		} else {
			line = fmt.Sprintf("%s (%s)", path, e.Raw)
		}
		if err := p.Println(line); err != nil {
			return err
		}
	}
	return nil
}

// PrintVerbose writes the per-category counts, byte totals and the ignored list
func (s *StatCollector) PrintVerbose(p *Printer, prefix string, abs bool) error {
	const indent = " "

	if err := p.Println(FormatNum(uint64(s.NumTotal()), "file")); err != nil {
		return err
	}
	for _, t := range hashedCategories {
		if n := len(s.Entries(t)); n > 0 {
			if err := p.Println(indent + FormatNum(uint64(n), t.String())); err != nil {
				return err
			}
		}
	}

	if err := p.Println(FormatNum(s.WrittenTotal(), "byte")); err != nil {
		return err
	}
	for _, t := range hashedCategories {
		if n := s.Written(t); n > 0 {
			if err := p.Println(indent + FormatNum(n, t.String()+" byte")); err != nil {
				return err
			}
		}
	}

	return PrintList(p, s.ignored, "ignored file", prefix, abs)
}

// PrintProblems writes the unsupported and invalid lists
func (s *StatCollector) PrintProblems(p *Printer, prefix string, abs bool) error {
	if err := PrintList(p, s.unsupported, TypeUnsupported.String(), prefix, abs); err != nil {
		return err
	}
	return PrintList(p, s.invalid, TypeInvalid.String(), prefix, abs)
}
