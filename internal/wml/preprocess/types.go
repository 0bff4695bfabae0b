package preprocess

import "github.com/battle-for-wesnoth/wmlc/internal/types"

// MacroDefinition is an installed `#define`: its formal argument names
// (possibly none), its unexpanded body text, and where it was defined.
//
// LocationChain additionally carries the full include/macro-expansion
// stack active when the macro was defined (outermost first), mirroring
// preprocessor.cpp's `val.location` frame stack, so a macro defined
// inside an included file and invoked from a third file can report the
// complete provenance chain, not just its innermost frame.
type MacroDefinition struct {
	Name          string
	Args          []string
	Body          string
	Origin        types.SourceLocation
	Domain        types.TextDomain
	LocationChain []types.Frame
}

// MacroTable maps macro name to definition.
type MacroTable map[string]*MacroDefinition

// Clone returns a shallow copy of the table (definitions themselves are
// not duplicated, since a MacroDefinition is treated as immutable once
// installed).
func (t MacroTable) Clone() MacroTable {
	c := make(MacroTable, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// Context is the mutable state threaded through one preprocessing run:
// the macro table, the current textdomain (with a save/restore stack
// so a `#textdomain` set inside an included file doesn't leak into the
// includer), and the inclusion-depth stack used to enforce the
// recursion limit.
type Context struct {
	Macros       MacroTable
	domain       types.TextDomain
	domainStack  []types.TextDomain
	depthStack   []types.Frame
	DepthLimit   int
	OutputLine   int
}

// NewContext returns a Context seeded with the given macro table and
// initial textdomain. A depthLimit of 0 or less falls back to
// DefaultDepthLimit.
func NewContext(macros MacroTable, initialDomain types.TextDomain, depthLimit int) *Context {
	if macros == nil {
		macros = make(MacroTable)
	}
	if depthLimit <= 0 {
		depthLimit = DefaultDepthLimit
	}
	return &Context{
		Macros:     macros,
		domain:     initialDomain,
		DepthLimit: depthLimit,
		OutputLine: 1,
	}
}

// Domain returns the current textdomain.
func (c *Context) Domain() types.TextDomain {
	return c.domain
}

// pushDomain saves the current textdomain, leaving it in effect;
// popDomain restores the saved one. Every file/macro entry brackets its body with these so
// a nested `#textdomain` only affects that body.
func (c *Context) pushDomain() {
	c.domainStack = append(c.domainStack, c.domain)
}

func (c *Context) popDomain() {
	n := len(c.domainStack)
	c.domain = c.domainStack[n-1]
	c.domainStack = c.domainStack[:n-1]
}

func (c *Context) setDomain(d types.TextDomain) {
	c.domain = d
}

// depth returns the current inclusion/expansion nesting depth.
func (c *Context) depth() int {
	return len(c.depthStack)
}

func (c *Context) pushFrame(f types.Frame) {
	c.depthStack = append(c.depthStack, f)
}

func (c *Context) popFrame() {
	c.depthStack = c.depthStack[:len(c.depthStack)-1]
}

// DefaultDepthLimit is the maximum inclusion/macro-expansion nesting
// depth before preprocessing fails with PreprocDepthExceeded.
const DefaultDepthLimit = 40
