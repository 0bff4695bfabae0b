// Package types holds the small value types shared across the wmlc
// pipeline (sourcemap, preprocessor, parser, tree, codecs) so that no
// package needs to import another purely to borrow a struct.
package types

import (
	"fmt"

	"github.com/battle-for-wesnoth/wmlc/internal/encoding"
)

// SourceLocation names a single point in the original WML source tree,
// as resolved through a SourceMap lookup or carried directly by a token.
type SourceLocation struct {
	File string
	Line int
}

func (l SourceLocation) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// IsZero reports whether the location carries no information.
func (l SourceLocation) IsZero() bool {
	return l.File == "" && l.Line == 0
}

// Frame is one entry in a MacroDefinition's defining-location chain: the
// original C++ preprocessor stores this as a space-joined "linenum file"
// stack so a macro expanded from inside an included file can report the
// full include chain it was defined under, not just its innermost frame.
type Frame struct {
	File string
	Line int
}

func (f Frame) String() string {
	return fmt.Sprintf("%d %s", f.Line, f.File)
}

// TextDomain names the translation catalog attribute runs and macro
// definitions are bound to. The empty TextDomain means "untranslated".
type TextDomain string

// NodeID is an opaque, process-local reference to a ConfigTree node,
// handed out by the MCP layer so a tool call can point at a node
// without serializing the whole subtree back and forth. It carries no
// meaning outside the process that minted it.
type NodeID uint64

// String renders the ID in the compact base-63 form used in MCP tool
// responses (see internal/idcodec).
func (n NodeID) String() string {
	return encoding.Base63Encode(uint64(n))
}
