package dirhash

import (
	"strings"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// pathItem is one buffered walk entry
type pathItem struct {
	Path string
}

// pathSkiplist keeps walk entries ordered by absolute path.
// The context of each node is the entry's path relative to the input prefix.
type pathSkiplist struct {
	skiplist *zcsl.ZeroCopySkiplist[pathItem, string, string]
}

// newPathSkiplist creates an empty sorted path buffer
func newPathSkiplist(maxLevels int) *pathSkiplist {
	if maxLevels < 8 {
		maxLevels = 16 // reasonable default
	}

	getKeyFromItem := func(item *pathItem) string {
		return item.Path
	}

	getItemSize := func(item *pathItem) int {
		return len(item.Path)
	}

	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	return &pathSkiplist{
		skiplist: zcsl.MakeZeroCopySkiplist[pathItem, string, string](
			maxLevels,
			getKeyFromItem,
			getItemSize,
			cmpKey,
		),
	}
}

// Insert adds path; false when it is already present
func (ps *pathSkiplist) Insert(path, relative string) bool {
	item := pathItem{Path: path}
	return ps.skiplist.Insert(&item, relative)
}

// ForEach visits entries in lexical path order until callback returns false
func (ps *pathSkiplist) ForEach(callback func(path, relative string) bool) {
	for current := ps.skiplist.First(); current != nil; current = current.Next() {
		if !callback(current.Item().Path, current.Context()) {
			break
		}
	}
}

// Length returns the number of buffered entries
func (ps *pathSkiplist) Length() int {
	return ps.skiplist.Length()
}
