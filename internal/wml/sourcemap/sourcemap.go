// Package sourcemap tracks the correspondence between lines in a
// preprocessor's output stream and the original WML source they came
// from, so every later stage (tokenizer, parser, diagnostics) can report
// errors against the file the author actually edited instead of the
// flattened output the preprocessor produced.
package sourcemap

import (
	"sort"

	"github.com/battle-for-wesnoth/wmlc/internal/types"
)

// Entry is one append-only record: everything at or after OutputLine,
// up to the next Entry, came from (File, SourceLine + delta).
type Entry struct {
	OutputLine int
	File       string
	SourceLine int
}

// SourceMap is an append-only, monotonically increasing sequence of
// Entry records. It is built once per preprocessing run and queried
// many times afterward, so Lookup is optimized for read traffic
// (binary search) rather than insertion.
type SourceMap struct {
	entries []Entry
}

// New returns an empty SourceMap.
func New() *SourceMap {
	return &SourceMap{}
}

// Add appends a record. OutputLine must be greater than or equal to the
// OutputLine of the previously added record; the preprocessor only ever
// moves forward through its own output.
func (m *SourceMap) Add(outputLine int, file string, sourceLine int) {
	m.entries = append(m.entries, Entry{
		OutputLine: outputLine,
		File:       file,
		SourceLine: sourceLine,
	})
}

// Len reports how many records have been recorded.
func (m *SourceMap) Len() int {
	return len(m.entries)
}

// Lookup resolves an output line to a source location: the record with
// the greatest OutputLine less than or equal to target, with SourceLine
// advanced by the distance between the record's OutputLine and target.
func (m *SourceMap) Lookup(target int) types.SourceLocation {
	if len(m.entries) == 0 {
		return types.SourceLocation{}
	}

	i := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].OutputLine > target
	})
	if i == 0 {
		return types.SourceLocation{}
	}
	e := m.entries[i-1]
	return types.SourceLocation{
		File: e.File,
		Line: e.SourceLine + (target - e.OutputLine),
	}
}
