package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battle-for-wesnoth/wmlc/internal/types"
)

// memFS is a minimal in-memory FileProvider for tests: files map a
// full path to content, dirs map a directory path to its (already
// sorted) immediate children as full paths.
type memFS struct {
	files map[string][]byte
	dirs  map[string][]string
}

func (m *memFS) ReadFile(path string) ([]byte, error) {
	b, ok := m.files[path]
	if !ok {
		return nil, assertErr(path)
	}
	return b, nil
}

func (m *memFS) Stat(path string) (bool, error) {
	if _, ok := m.dirs[path]; ok {
		return true, nil
	}
	if _, ok := m.files[path]; ok {
		return false, nil
	}
	return false, assertErr(path)
}

func (m *memFS) ReadDir(path string) ([]string, error) {
	children, ok := m.dirs[path]
	if !ok {
		return nil, assertErr(path)
	}
	return children, nil
}

type notFoundErr string

func (e notFoundErr) Error() string { return "not found: " + string(e) }

func assertErr(path string) error { return notFoundErr(path) }

func TestRunPlainFile(t *testing.T) {
	fs := &memFS{files: map[string][]byte{
		"a.cfg": []byte("[unit]\nid=a\n[/unit]\n"),
	}}

	result, err := Run("a.cfg", fs, nil, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "[unit]\nid=a\n[/unit]\n", string(result.Output))
}

func TestRunMacroExpansion(t *testing.T) {
	fs := &memFS{files: map[string][]byte{
		"a.cfg": []byte("#define GREET NAME\nhello={NAME}\n#enddef\n{GREET world}\n"),
	}}

	result, err := Run("a.cfg", fs, nil, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "hello=world\n\n", string(result.Output))
}

func TestRunMacroArityMismatch(t *testing.T) {
	fs := &memFS{files: map[string][]byte{
		"a.cfg": []byte("#define GREET NAME\nhello={NAME}\n#enddef\n{GREET}\n"),
	}}

	_, err := Run("a.cfg", fs, nil, "", 0)
	require.Error(t, err)
}

func TestRunIfdefDefinedBranch(t *testing.T) {
	fs := &memFS{files: map[string][]byte{
		"a.cfg": []byte("#define FOO\nbody\n#enddef\n{FOO}\n#ifdef FOO\nyes\n#else\nno\n#endif\n"),
	}}

	result, err := Run("a.cfg", fs, nil, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "body\n\nyes\n", string(result.Output))
}

func TestRunIfdefUndefinedBranch(t *testing.T) {
	fs := &memFS{files: map[string][]byte{
		"a.cfg": []byte("#ifdef FOO\nyes\n#else\nno\n#endif\n"),
	}}

	result, err := Run("a.cfg", fs, nil, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "no\n", string(result.Output))
}

func TestRunUnterminatedDefineFails(t *testing.T) {
	fs := &memFS{files: map[string][]byte{
		"a.cfg": []byte("#define FOO\nbody\n"),
	}}

	_, err := Run("a.cfg", fs, nil, "", 0)
	require.Error(t, err)
}

func TestRunUnterminatedIfFails(t *testing.T) {
	fs := &memFS{files: map[string][]byte{
		"a.cfg": []byte("#ifdef FOO\nbody\n"),
	}}

	_, err := Run("a.cfg", fs, nil, "", 0)
	require.Error(t, err)
}

func TestRunDirectoryTraversalSortedAndExtensionFiltered(t *testing.T) {
	fs := &memFS{
		dirs: map[string][]string{
			"campaign": {"campaign/01.cfg", "campaign/02.cfg", "campaign/readme.txt"},
		},
		files: map[string][]byte{
			"campaign/01.cfg":     []byte("one\n"),
			"campaign/02.cfg":     []byte("two\n"),
			"campaign/readme.txt": []byte("ignored\n"),
		},
	}

	result, err := Run("campaign", fs, nil, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(result.Output))
}

func TestRunTextdomainEmitsSentinel(t *testing.T) {
	fs := &memFS{files: map[string][]byte{
		"a.cfg": []byte("#textdomain wesnoth-test\nname=\"x\"\n"),
	}}

	result, err := Run("a.cfg", fs, nil, "", 0)
	require.NoError(t, err)
	assert.Contains(t, string(result.Output), "\xFEtextdomain wesnoth-test\n")
}

func TestRunFileIncludeInlinesContent(t *testing.T) {
	fs := &memFS{files: map[string][]byte{
		"a.cfg":      []byte("{./included.cfg}\n"),
		"included.cfg": []byte("value=1\n"),
	}}

	result, err := Run("a.cfg", fs, nil, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "value=1\n\n", string(result.Output))
}

func TestSourceMapResolvesAcrossInclude(t *testing.T) {
	fs := &memFS{files: map[string][]byte{
		"a.cfg":        []byte("first\n{./included.cfg}\nlast\n"),
		"included.cfg": []byte("middle\n"),
	}}

	result, err := Run("a.cfg", fs, nil, "", 0)
	require.NoError(t, err)

	includedLoc := result.Map.Lookup(2)
	assert.Equal(t, types.SourceLocation{File: "included.cfg", Line: 1}, includedLoc)

	lastLineLoc := result.Map.Lookup(4)
	assert.Equal(t, types.SourceLocation{File: "a.cfg", Line: 3}, lastLineLoc)
}
