package preprocess

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Extension is the WML source file extension recognized when
// descending into a directory.
const Extension = ".cfg"

// FileProvider abstracts the filesystem the preprocessor reads from,
// so tests can preprocess an in-memory tree without touching disk and
// the CLI can point the same engine at a real campaign directory.
type FileProvider interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (isDir bool, err error)
	// ReadDir returns the immediate children of path as full paths,
	// sorted lexicographically by base name.
	ReadDir(path string) ([]string, error)
}

// OSFileProvider reads from the real filesystem, optionally narrowing
// which files/directories are descended into with include/exclude
// glob patterns evaluated relative to Root.
type OSFileProvider struct {
	Root    string
	Include []string
	Exclude []string
}

func (p *OSFileProvider) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (p *OSFileProvider) Stat(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

func (p *OSFileProvider) ReadDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		full := filepath.Join(path, name)
		if !p.allowed(full) {
			continue
		}
		out = append(out, full)
	}
	return out, nil
}

// allowed reports whether full passes the configured include/exclude
// filters. With no patterns configured every path is allowed, matching
// the unfiltered "every immediate child ending in the WML extension"
// rule exactly. Include patterns apply to files only: a directory that
// passes Exclude is always descended into.
func (p *OSFileProvider) allowed(full string) bool {
	rel := full
	if p.Root != "" {
		if r, err := filepath.Rel(p.Root, full); err == nil {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range p.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	if len(p.Include) == 0 {
		return true
	}
	if info, err := os.Stat(full); err == nil && info.IsDir() {
		return true
	}
	for _, pattern := range p.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
