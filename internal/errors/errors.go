// Package errors implements wmlc's typed error taxonomy: every pipeline
// stage (io, preprocessor, tokenizer, parser, diff/patch, binary codec)
// returns one of the Kind variants below instead of an opaque error, so
// callers can branch on failure mode with errors.Is/errors.As and always
// recover the source location the failure happened at.
package errors

import (
	"errors"
	"fmt"
	"time"

	"github.com/battle-for-wesnoth/wmlc/internal/types"
)

// Kind identifies which pipeline stage and failure mode produced an error.
type Kind string

const (
	// Filesystem
	KindIoMissing Kind = "io_missing"
	KindIoRead    Kind = "io_read"

	// Preprocessor
	KindPreprocUnterminatedDefine Kind = "preproc_unterminated_define"
	KindPreprocUnterminatedIf    Kind = "preproc_unterminated_if"
	KindPreprocStrayElse         Kind = "preproc_stray_else"
	KindPreprocStrayEnddef       Kind = "preproc_stray_enddef"
	KindPreprocMacroArity        Kind = "preproc_macro_arity"
	KindPreprocDepthExceeded     Kind = "preproc_depth_exceeded"

	// Tokenizer
	KindLexUnterminatedString Kind = "lex_unterminated_string"

	// Parser
	KindParserTagMismatch        Kind = "parser_tag_mismatch"
	KindParserUnexpectedCloseTag Kind = "parser_unexpected_close_tag"
	KindParserBadToken           Kind = "parser_bad_token"
	KindParserUnterminatedElement Kind = "parser_unterminated_element"

	// Diff/patch
	KindDiffIndexOutOfRange Kind = "diff_index_out_of_range"
	KindDiffMissingChild    Kind = "diff_missing_child"

	// Binary codec
	KindBinaryCodecCorrupt                  Kind = "binary_codec_corrupt"
	KindBinaryCodecSchemaOverflowRecoverable Kind = "binary_codec_schema_overflow_recoverable"

	// Config
	KindConfigInvalid Kind = "config_invalid"
)

// nonFatalKinds is the set of Kind values that do not abort the current
// operation. Per spec, only a binary schema overflow is recoverable: the
// encoder falls back to a literal word and keeps going.
var nonFatalKinds = map[Kind]bool{
	KindBinaryCodecSchemaOverflowRecoverable: true,
}

// WMLError is the single error type every wmlc pipeline stage returns.
// Operation names the call that failed (e.g. "preprocess", "parse",
// "apply_diff"); Location is resolved through a SourceMap when one
// exists; Underlying is the lower-level cause, if any.
type WMLError struct {
	Kind       Kind
	Operation  string
	Location   types.SourceLocation
	Underlying error
	Timestamp  time.Time
}

func newError(kind Kind, op string, loc types.SourceLocation, underlying error) *WMLError {
	return &WMLError{
		Kind:       kind,
		Operation:  op,
		Location:   loc,
		Underlying: underlying,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface.
func (e *WMLError) Error() string {
	if e.Location.IsZero() {
		if e.Underlying != nil {
			return fmt.Sprintf("%s: %s: %v", e.Kind, e.Operation, e.Underlying)
		}
		return fmt.Sprintf("%s: %s", e.Kind, e.Operation)
	}
	if e.Underlying != nil {
		return fmt.Sprintf("%s at %s: %s: %v", e.Kind, e.Location, e.Operation, e.Underlying)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Location, e.Operation)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *WMLError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target is a *WMLError with the same Kind, so
// callers can write errors.Is(err, errors.NewParserTagMismatch(...))
// or, more commonly, errors.Is(err, errors.Sentinel(KindParserTagMismatch)).
func (e *WMLError) Is(target error) bool {
	var we *WMLError
	if errors.As(target, &we) {
		return e.Kind == we.Kind
	}
	return false
}

// IsFatal reports whether the error aborts the current operation. Every
// variant is fatal except KindBinaryCodecSchemaOverflowRecoverable.
func (e *WMLError) IsFatal() bool {
	return !nonFatalKinds[e.Kind]
}

// Sentinel returns a zero-value *WMLError of the given Kind, suitable
// only for errors.Is comparisons (it carries no location or cause).
func Sentinel(kind Kind) *WMLError {
	return &WMLError{Kind: kind}
}

// --- Filesystem ---

func NewIoMissing(op, path string) *WMLError {
	return newError(KindIoMissing, op, types.SourceLocation{File: path}, nil)
}

func NewIoRead(op, path string, underlying error) *WMLError {
	return newError(KindIoRead, op, types.SourceLocation{File: path}, underlying)
}

// --- Preprocessor ---

func NewPreprocUnterminatedDefine(loc types.SourceLocation, macroName string) *WMLError {
	return newError(KindPreprocUnterminatedDefine, "preprocess", loc, fmt.Errorf("macro %q never closed with #enddef", macroName))
}

func NewPreprocUnterminatedIf(loc types.SourceLocation) *WMLError {
	return newError(KindPreprocUnterminatedIf, "preprocess", loc, errors.New("#ifdef/#ifndef never closed with #endif"))
}

func NewPreprocStrayElse(loc types.SourceLocation) *WMLError {
	return newError(KindPreprocStrayElse, "preprocess", loc, errors.New("#else with no matching #ifdef/#ifndef"))
}

func NewPreprocStrayEnddef(loc types.SourceLocation) *WMLError {
	return newError(KindPreprocStrayEnddef, "preprocess", loc, errors.New("#enddef with no matching #define"))
}

func NewPreprocMacroArity(loc types.SourceLocation, macroName string, want, got int) *WMLError {
	return newError(KindPreprocMacroArity, "preprocess", loc,
		fmt.Errorf("macro %q expects %d argument(s), got %d", macroName, want, got))
}

func NewPreprocDepthExceeded(loc types.SourceLocation, limit int) *WMLError {
	return newError(KindPreprocDepthExceeded, "preprocess", loc,
		fmt.Errorf("inclusion/macro expansion nesting exceeded limit of %d", limit))
}

// --- Tokenizer ---

func NewLexUnterminatedString(loc types.SourceLocation) *WMLError {
	return newError(KindLexUnterminatedString, "tokenize", loc, errors.New("unterminated quoted string"))
}

// --- Parser ---

func NewParserTagMismatch(loc types.SourceLocation, opened, closed string) *WMLError {
	return newError(KindParserTagMismatch, "parse", loc,
		fmt.Errorf("[/%s] does not match open tag [%s]", closed, opened))
}

func NewParserUnexpectedCloseTag(loc types.SourceLocation, closed string) *WMLError {
	return newError(KindParserUnexpectedCloseTag, "parse", loc,
		fmt.Errorf("[/%s] with no matching open tag", closed))
}

func NewParserBadToken(loc types.SourceLocation, token string) *WMLError {
	return newError(KindParserBadToken, "parse", loc, fmt.Errorf("unexpected token %q", token))
}

func NewParserUnterminatedElement(loc types.SourceLocation, tag string) *WMLError {
	return newError(KindParserUnterminatedElement, "parse", loc,
		fmt.Errorf("[%s] never closed", tag))
}

// --- Diff/patch ---

func NewDiffIndexOutOfRange(op string, index, length int) *WMLError {
	return newError(KindDiffIndexOutOfRange, op, types.SourceLocation{},
		fmt.Errorf("index %d out of range for length %d", index, length))
}

func NewDiffMissingChild(op, tag string, index int) *WMLError {
	return newError(KindDiffMissingChild, op, types.SourceLocation{},
		fmt.Errorf("expected child %q at index %d, not found", tag, index))
}

// --- Binary codec ---

func NewBinaryCodecCorrupt(op string, detail string) *WMLError {
	return newError(KindBinaryCodecCorrupt, op, types.SourceLocation{}, errors.New(detail))
}

func NewBinaryCodecSchemaOverflowRecoverable(op, word string) *WMLError {
	return newError(KindBinaryCodecSchemaOverflowRecoverable, op, types.SourceLocation{},
		fmt.Errorf("schema full, word %q written as literal", word))
}

// --- Config ---

func NewConfigInvalid(field string, detail error) *WMLError {
	return newError(KindConfigInvalid, "load_config", types.SourceLocation{File: field}, detail)
}
