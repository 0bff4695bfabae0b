// Package preprocess implements the WML macro preprocessor: directory
// traversal, `#define`/`#enddef`, `#ifdef`/`#else`/`#endif`,
// `#textdomain`, and `{...}` macro/file inclusion, producing a flat
// byte stream plus a SourceMap the tokenizer and parser consume next.
//
// Grounded on original_source/src/serialization/preprocessor.cpp.
package preprocess

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	wmlerrors "github.com/battle-for-wesnoth/wmlc/internal/errors"
	"github.com/battle-for-wesnoth/wmlc/internal/types"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/sourcemap"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/suggest"
)

// Result is the output of a full preprocessing run.
type Result struct {
	Output []byte
	Map    *sourcemap.SourceMap
}

// Run preprocesses root (a file or a directory) against fp, starting
// from the given macro table and initial textdomain, and returns the
// flattened output and its SourceMap. depthLimit caps inclusion/macro
// nesting; 0 or less falls back to DefaultDepthLimit.
func Run(root string, fp FileProvider, macros MacroTable, initialDomain types.TextDomain, depthLimit int) (*Result, error) {
	e := &engine{
		fp:  fp,
		ctx: NewContext(macros, initialDomain, depthLimit),
		out: &bytes.Buffer{},
		sm:  sourcemap.New(),
	}
	if err := e.processPath(root); err != nil {
		return nil, err
	}
	return &Result{Output: e.out.Bytes(), Map: e.sm}, nil
}

type engine struct {
	fp  FileProvider
	ctx *Context
	out *bytes.Buffer
	sm  *sourcemap.SourceMap
}

func (e *engine) processPath(path string) error {
	isDir, err := e.fp.Stat(path)
	if err != nil {
		return wmlerrors.NewIoMissing("preprocess", path)
	}
	if isDir {
		return e.processDir(path)
	}
	return e.processFile(path)
}

func (e *engine) processDir(path string) error {
	children, err := e.fp.ReadDir(path)
	if err != nil {
		return wmlerrors.NewIoRead("preprocess", path, err)
	}
	for _, child := range children {
		isDir, err := e.fp.Stat(child)
		if err != nil {
			return wmlerrors.NewIoMissing("preprocess", child)
		}
		if isDir {
			if err := e.processDir(child); err != nil {
				return err
			}
			continue
		}
		if strings.HasSuffix(child, Extension) {
			if err := e.processFile(child); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *engine) processFile(path string) error {
	content, err := e.fp.ReadFile(path)
	if err != nil {
		return wmlerrors.NewIoRead("preprocess", path, err)
	}

	loc := types.SourceLocation{File: path, Line: 1}
	if e.ctx.depth() >= e.ctx.DepthLimit {
		return wmlerrors.NewPreprocDepthExceeded(loc, e.ctx.DepthLimit)
	}
	e.ctx.pushFrame(types.Frame{File: path, Line: 1})
	e.ctx.pushDomain()
	defer e.ctx.popFrame()
	defer e.ctx.popDomain()

	return e.processSource(content, path)
}

func (e *engine) emitByte(b byte) {
	e.out.WriteByte(b)
	if b == '\n' {
		e.ctx.OutputLine++
	}
}

func (e *engine) emitString(s string) {
	for i := 0; i < len(s); i++ {
		e.emitByte(s[i])
	}
}

// processSource scans one file's (or one macro expansion's) text,
// handling directives and brace inclusions and copying everything
// else straight to output.
func (e *engine) processSource(content []byte, file string) error {
	sourceLine := 1
	pos := 0
	atLineStart := true
	inQuote := false

	e.sm.Add(e.ctx.OutputLine, file, sourceLine)

	for pos < len(content) {
		c := content[pos]
		loc := types.SourceLocation{File: file, Line: sourceLine}

		if inQuote {
			if c == '"' {
				if pos+1 < len(content) && content[pos+1] == '"' {
					e.emitByte('"')
					pos += 2
					continue
				}
				inQuote = false
				e.emitByte(c)
				pos++
				continue
			}
			if c == '\n' {
				sourceLine++
			}
			e.emitByte(c)
			pos++
			continue
		}

		if c == '"' {
			inQuote = true
			e.emitByte(c)
			pos++
			atLineStart = false
			continue
		}

		if atLineStart && c == '#' {
			consumed, newPos, newSourceLine, err := e.handleDirective(content, pos, file, sourceLine)
			if err != nil {
				return err
			}
			if consumed {
				pos = newPos
				sourceLine = newSourceLine
				atLineStart = true
				e.sm.Add(e.ctx.OutputLine, file, sourceLine)
				continue
			}
		}

		if c == '{' {
			inner, newPos, newlines, err := extractBraces(content, pos, loc)
			if err != nil {
				return err
			}
			if err := e.expandBrace(inner, file, loc); err != nil {
				return err
			}
			pos = newPos
			sourceLine += newlines
			atLineStart = false
			e.sm.Add(e.ctx.OutputLine, file, sourceLine)
			continue
		}

		if c == '\n' {
			e.emitByte(c)
			sourceLine++
			pos++
			atLineStart = true
			e.sm.Add(e.ctx.OutputLine, file, sourceLine)
			continue
		}

		e.emitByte(c)
		pos++
		if c != ' ' && c != '\t' && c != '\r' {
			atLineStart = false
		}
	}
	return nil
}

// handleDirective dispatches a `#...` construct starting at pos. An
// ordinary "# comment" line is dropped together with its trailing
// newline. consumed is false only when err is non-nil.
func (e *engine) handleDirective(content []byte, pos int, file string, sourceLine int) (consumed bool, newPos int, newSourceLine int, err error) {
	rest := string(content[pos:])
	loc := types.SourceLocation{File: file, Line: sourceLine}

	switch {
	case hasDirective(rest, "#define"):
		return e.handleDefine(content, pos, file, sourceLine)
	case hasDirective(rest, "#ifdef"):
		return e.handleIf(content, pos, file, sourceLine, true)
	case hasDirective(rest, "#ifndef"):
		return e.handleIf(content, pos, file, sourceLine, false)
	case hasDirective(rest, "#else"):
		return false, 0, 0, wmlerrors.NewPreprocStrayElse(loc)
	case hasDirective(rest, "#enddef"):
		return false, 0, 0, wmlerrors.NewPreprocStrayEnddef(loc)
	case hasDirective(rest, "#textdomain"):
		line, after := readRestOfLine(content, pos)
		name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "#textdomain"))
		e.ctx.setDomain(types.TextDomain(name))
		e.emitString("\xFEtextdomain " + name + "\n")
		return true, after, sourceLine + 1, nil
	default:
		// Ordinary line comment: drop the text and its trailing newline.
		_, after := readRestOfLine(content, pos)
		return true, after, sourceLine + 1, nil
	}
}

func hasDirective(rest, name string) bool {
	if !strings.HasPrefix(rest, name) {
		return false
	}
	if len(rest) == len(name) {
		return true
	}
	next := rest[len(name)]
	return next == ' ' || next == '\t' || next == '\n' || next == '\r'
}

// handleDefine consumes `#define NAME ARG1 ARG2 ...` up to and
// including its matching `#enddef`, installing the macro in the
// context's macro table.
func (e *engine) handleDefine(content []byte, pos int, file string, sourceLine int) (bool, int, int, error) {
	header, afterHeader := readRestOfLine(content, pos)
	fields := strings.Fields(header)
	if len(fields) < 2 {
		loc := types.SourceLocation{File: file, Line: sourceLine}
		return false, 0, 0, wmlerrors.NewPreprocUnterminatedDefine(loc, "")
	}
	name := fields[1]
	args := fields[2:]

	line := sourceLine + countNewlines(header) + 1
	bodyStart := afterHeader
	i := afterHeader
	for i < len(content) {
		lineText, next := readRestOfLine(content, i)
		if strings.TrimSpace(lineText) == "#enddef" {
			body := string(content[bodyStart:i])
			loc := types.SourceLocation{File: file, Line: sourceLine}
			e.ctx.Macros[name] = &MacroDefinition{
				Name:   name,
				Args:   args,
				Body:   body,
				Origin: loc,
				Domain: e.ctx.Domain(),
				LocationChain: append(append([]types.Frame{}, e.ctx.depthStack...), types.Frame{File: file, Line: sourceLine}),
			}
			newSourceLine := line + 1
			return true, next, newSourceLine, nil
		}
		line += countNewlines(lineText) + 1
		i = next
	}
	loc := types.SourceLocation{File: file, Line: sourceLine}
	return false, 0, 0, wmlerrors.NewPreprocUnterminatedDefine(loc, name)
}

// handleIf consumes `#ifdef NAME`/`#ifndef NAME` through its matching
// `#else`/`#endif`, keeping only the branch selected by whether NAME is
// defined, and recursively processing the kept branch's text.
func (e *engine) handleIf(content []byte, pos int, file string, sourceLine int, wantDefined bool) (bool, int, int, error) {
	header, afterHeader := readRestOfLine(content, pos)
	fields := strings.Fields(header)
	loc := types.SourceLocation{File: file, Line: sourceLine}
	if len(fields) < 2 {
		return false, 0, 0, wmlerrors.NewPreprocUnterminatedIf(loc)
	}
	name := fields[1]
	_, defined := e.ctx.Macros[name]
	takeThen := defined == wantDefined

	thenStart := afterHeader
	thenEnd := -1   // position where the "#else" line begins, ending the then-branch
	elseStart := -1 // position right after the "#else" line, where the else-branch begins
	i := afterHeader
	depth := 0
	for i < len(content) {
		lineStart := i
		lineText, next := readRestOfLine(content, i)
		trimmed := strings.TrimSpace(lineText)
		switch {
		case strings.HasPrefix(trimmed, "#ifdef"), strings.HasPrefix(trimmed, "#ifndef"):
			depth++
		case trimmed == "#endif":
			if depth == 0 {
				var chosen []byte
				switch {
				case takeThen && thenEnd >= 0:
					chosen = content[thenStart:thenEnd]
				case takeThen:
					chosen = content[thenStart:lineStart]
				case elseStart >= 0:
					chosen = content[elseStart:lineStart]
				}
				if len(chosen) > 0 {
					if err := e.processSource(chosen, file); err != nil {
						return false, 0, 0, err
					}
				}
				newSourceLine := sourceLine + countNewlines(string(content[pos:next]))
				return true, next, newSourceLine, nil
			}
			depth--
		case trimmed == "#else" && depth == 0:
			thenEnd = lineStart
			elseStart = next
		}
		i = next
	}
	return false, 0, 0, wmlerrors.NewPreprocUnterminatedIf(loc)
}

// expandBrace resolves a `{key arg1 arg2 ...}` inclusion: key is
// either a macro name (textually substituted and re-entered into the
// preprocessor) or a file path (read and inlined).
func (e *engine) expandBrace(inner, file string, loc types.SourceLocation) error {
	words := splitBraceWords(inner)
	defer braceWordPool.Put(words)
	if len(words) == 0 {
		return nil
	}
	key := words[0]
	args := words[1:]

	if macro, ok := e.ctx.Macros[key]; ok {
		if len(args) != len(macro.Args) {
			return wmlerrors.NewPreprocMacroArity(loc, key, len(macro.Args), len(args))
		}
		if e.ctx.depth() >= e.ctx.DepthLimit {
			return wmlerrors.NewPreprocDepthExceeded(loc, e.ctx.DepthLimit)
		}
		body := macro.Body
		for i, formal := range macro.Args {
			body = strings.ReplaceAll(body, "{"+formal+"}", args[i])
		}
		e.ctx.pushFrame(types.Frame{File: file, Line: loc.Line})
		e.ctx.pushDomain()
		e.ctx.setDomain(macro.Domain)
		err := e.processSource([]byte(body), file)
		e.ctx.popDomain()
		e.ctx.popFrame()
		return err
	}

	candidate := resolvePath(key, file)
	isDir, statErr := e.fp.Stat(candidate)
	if statErr != nil {
		return e.missingKeyError(loc, key)
	}
	if isDir {
		if e.ctx.depth() >= e.ctx.DepthLimit {
			return wmlerrors.NewPreprocDepthExceeded(loc, e.ctx.DepthLimit)
		}
		e.ctx.pushFrame(types.Frame{File: candidate, Line: 1})
		err := e.processDir(candidate)
		e.ctx.popFrame()
		return err
	}
	return e.processFile(candidate)
}

// missingKeyError builds an IoMissing error, enriched with a
// "did you mean" suggestion when a similarly-named macro is defined.
func (e *engine) missingKeyError(loc types.SourceLocation, key string) error {
	candidates := make([]string, 0, len(e.ctx.Macros))
	for name := range e.ctx.Macros {
		candidates = append(candidates, name)
	}
	base := wmlerrors.NewIoMissing("preprocess", key)
	if near, ok := suggest.Nearest(key, candidates); ok {
		base.Underlying = fmt.Errorf("did you mean macro %q?", near)
	}
	return base
}

// resolvePath resolves a brace-inclusion key to a filesystem path: a
// leading "./" is resolved against the including file's directory,
// anything else is resolved against the data root (here, simply the
// including file's directory as well, since FileProvider has no
// separate notion of a project root beyond the traversal root it was
// opened with).
func resolvePath(key, includingFile string) string {
	if strings.HasPrefix(key, "./") {
		return filepath.Join(filepath.Dir(includingFile), key[2:])
	}
	return filepath.Join(filepath.Dir(includingFile), key)
}
