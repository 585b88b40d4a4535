package dirhash

import (
	"crypto/md5"
	"crypto/sha1"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnsupportedSquash is returned for an unknown squash version
var ErrUnsupportedSquash = errors.New("unsupported squash version")

// Squasher folds many digests into a single buffer that is hashed once at the end
type Squasher interface {
	Reset()
	Update(data []byte)
	Finalize() []byte
	Version() int
	Label() string
}

// NewSquasher returns the squash implementation for version
func NewSquasher(version int) (Squasher, error) {
	switch version {
	case SquashVersion1:
		return &squashV1{}, nil
	case SquashVersion2:
		return &squashV2{}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedSquash, version)
}

// SquashTag formats the "[squash][vN]" suffix for s
func SquashTag(s Squasher) string {
	return fmt.Sprintf("[%s][v%d]", s.Label(), s.Version())
}

// squashV1 is independent of update order: each update contributes the md5
// hex of its bytes and Finalize sorts the contributions.
type squashV1 struct {
	sums []string
}

func (s *squashV1) Reset() {
	s.sums = s.sums[:0]
}

func (s *squashV1) Update(data []byte) {
	sum := md5.Sum(data)
	s.sums = append(s.sums, HexSum(sum[:]))
}

func (s *squashV1) Finalize() []byte {
	sorted := make([]string, len(s.sums))
	copy(sorted, s.sums)
	sort.Strings(sorted)
	return []byte(strings.Join(sorted, ""))
}

func (s *squashV1) Version() int  { return SquashVersion1 }
func (s *squashV1) Label() string { return SquashLabel }

// squashV2 chains sha1 over the previous state, so update order matters
type squashV2 struct {
	buf []byte
}

func (s *squashV2) Reset() {
	s.buf = nil
}

func (s *squashV2) Update(data []byte) {
	h := sha1.New()
	h.Write(s.buf)
	h.Write(data)
	s.buf = h.Sum(nil)
}

func (s *squashV2) Finalize() []byte {
	out := make([]byte, len(s.buf))
	copy(out, s.buf)
	return out
}

func (s *squashV2) Version() int  { return SquashVersion2 }
func (s *squashV2) Label() string { return SquashLabel }
