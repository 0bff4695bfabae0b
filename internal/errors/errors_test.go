package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/battle-for-wesnoth/wmlc/internal/types"
)

func TestWMLErrorUnwrap(t *testing.T) {
	underlying := errors.New("file is a directory")
	err := NewIoRead("preprocess", "/campaign/_main.cfg", underlying)

	assert.True(t, errors.Is(err, underlying))
	assert.Equal(t, KindIoRead, err.Kind)
}

func TestWMLErrorIs(t *testing.T) {
	err := NewParserTagMismatch(types.SourceLocation{File: "a.cfg", Line: 4}, "unit", "side")

	assert.True(t, errors.Is(err, Sentinel(KindParserTagMismatch)))
	assert.False(t, errors.Is(err, Sentinel(KindParserBadToken)))
}

func TestWMLErrorLocationInMessage(t *testing.T) {
	err := NewPreprocUnterminatedDefine(types.SourceLocation{File: "macros.cfg", Line: 10}, "FOO")

	assert.True(t, strings.Contains(err.Error(), "macros.cfg:10"))
}

func TestIsFatal(t *testing.T) {
	fatal := NewBinaryCodecCorrupt("decode", "bad control byte")
	assert.True(t, fatal.IsFatal())

	recoverable := NewBinaryCodecSchemaOverflowRecoverable("encode", "unit_female")
	assert.False(t, recoverable.IsFatal())
}

func TestDiffErrorsCarryNoLocation(t *testing.T) {
	err := NewDiffIndexOutOfRange("apply_diff", 5, 3)
	assert.True(t, err.Location.IsZero())
}
