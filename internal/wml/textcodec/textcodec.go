// Package textcodec implements §4.5's WML text writer and, by
// delegating to internal/wml/parse, its reader: the on-disk form used
// for campaign/scenario .cfg files and for round-tripping a ConfigTree
// back to text after an edit.
//
// Grounded on original_source/src/serialization/parser.cpp's
// write_internal/write functions.
package textcodec

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/battle-for-wesnoth/wmlc/internal/types"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/parse"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/preprocess"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/sourcemap"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/tree"
)

// indentUnit is the two-space-per-level child indentation used for
// nested WML blocks; the original Wesnoth writer used a tab per level,
// but two spaces reads better in a text editor without tab-width
// surprises.
const indentUnit = "  "

// Write serializes node as WML text into w. initialDomain is the
// textdomain assumed already in effect, so the first translatable run
// only emits a leading "#textdomain" directive when it actually
// differs from it — the same convention Read's initial textdomain
// must be given for a write-then-read round trip to reproduce it.
func Write(w io.Writer, node *tree.Node, initialDomain types.TextDomain) error {
	e := &encoder{w: w, domain: initialDomain}
	e.writeNode(node, 0)
	return e.err
}

// Read parses WML text into a tree.Node. initialDomain must match the
// textdomain Write was given for the result to carry the same
// translation bindings the original tree had. src is first run through
// the single-file preprocessor so its literal "#textdomain NAME" lines
// become the sentinel the parser understands — text handed to the
// parser without that step would see "#textdomain" as three ordinary
// tokens, not a directive. The returned SourceMap lets a caller resolve
// any parse error to the line of src that produced it.
func Read(src []byte, file string, initialDomain types.TextDomain) (*tree.Node, *sourcemap.SourceMap, error) {
	result, err := preprocess.Run(file, singleFileProvider{file: file, data: src}, nil, initialDomain, 0)
	if err != nil {
		return nil, nil, err
	}
	node, err := parse.Parse(result.Output, file, initialDomain, result.Map)
	return node, result.Map, err
}

// singleFileProvider is a preprocess.FileProvider over exactly one
// in-memory file, used so Read never touches a real filesystem.
type singleFileProvider struct {
	file string
	data []byte
}

func (p singleFileProvider) ReadFile(path string) ([]byte, error) {
	if path != p.file {
		return nil, fmt.Errorf("textcodec: no such file %q", path)
	}
	return p.data, nil
}

func (p singleFileProvider) Stat(path string) (bool, error) {
	if path != p.file {
		return false, fmt.Errorf("textcodec: no such file %q", path)
	}
	return false, nil
}

func (p singleFileProvider) ReadDir(path string) ([]string, error) {
	return nil, fmt.Errorf("textcodec: %q is not a directory", path)
}

type encoder struct {
	w      io.Writer
	domain types.TextDomain
	err    error
}

func (e *encoder) writeString(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

// writeNode emits node's attributes (in canonical sorted-name order —
// attribute order is explicitly insignificant, §4.4) followed by its
// children in global insertion order, each indented one level deeper.
func (e *encoder) writeNode(node *tree.Node, depth int) {
	indent := strings.Repeat(indentUnit, depth)

	names := node.AttrNames()
	sort.Strings(names)
	for _, name := range names {
		v := node.Attr(name)
		if v.Empty() {
			continue
		}
		e.writeAttribute(indent, name, v)
		if e.err != nil {
			return
		}
	}

	for _, child := range node.AllChildrenOrdered() {
		e.writeString(indent + "[" + child.Tag + "]\n")
		e.writeNode(child.Node, depth+1)
		e.writeString(indent + "[/" + child.Tag + "]\n")
		if e.err != nil {
			return
		}
	}
}

// writeAttribute emits one `key=` line, one quoted segment per run
// (each `_`-prefixed when translatable), joined by ` + \n` soft wraps
// when an attribute has more than one run.
func (e *encoder) writeAttribute(indent, name string, v tree.AttributeValue) {
	wroteName := false
	for i, run := range v.Runs {
		if run.Domain != "" && run.Domain != e.domain {
			e.writeString(indent + "#textdomain " + string(run.Domain) + "\n")
			e.domain = run.Domain
		}
		if !wroteName {
			e.writeString(indent + name + "=")
			wroteName = true
		}
		if run.Domain != "" {
			e.writeString("_ \"" + escape(run.Text) + "\"")
		} else {
			e.writeString("\"" + escape(run.Text) + "\"")
		}
		if i == len(v.Runs)-1 {
			e.writeString("\n")
		} else {
			e.writeString(" + \n" + indent + indentUnit)
		}
	}
}

// escape doubles interior quotes, the `""` literal-quote convention
// §4.1/§4.3 both use.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "\"\"")
}
