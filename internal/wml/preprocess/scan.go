package preprocess

import (
	"strings"

	"github.com/battle-for-wesnoth/wmlc/internal/alloc"
	wmlerrors "github.com/battle-for-wesnoth/wmlc/internal/errors"
	"github.com/battle-for-wesnoth/wmlc/internal/types"
)

// readRestOfLine returns the text from pos to (excluding) the next
// newline, and the position immediately after that newline (or at EOF
// if there is none).
func readRestOfLine(content []byte, pos int) (string, int) {
	start := pos
	for pos < len(content) && content[pos] != '\n' {
		pos++
	}
	text := string(content[start:pos])
	if pos < len(content) {
		pos++ // consume the newline
	}
	return text, pos
}

// countNewlines reports how many '\n' bytes appear in s.
func countNewlines(s string) int {
	return strings.Count(s, "\n")
}

// extractBraces extracts the content of a `{...}` inclusion starting
// at content[pos] (which must be '{'), honoring nested braces and
// quoted strings (braces inside quotes are inert, matching the
// preprocessor's own quoting rule). It returns the inner text, the
// position just after the matching '}', and the number of newlines
// consumed.
func extractBraces(content []byte, pos int, loc types.SourceLocation) (inner string, newPos int, newlines int, err error) {
	start := pos + 1
	depth := 1
	inQuote := false
	i := start
	for i < len(content) {
		c := content[i]
		if inQuote {
			if c == '"' {
				if i+1 < len(content) && content[i+1] == '"' {
					i += 2
					continue
				}
				inQuote = false
				i++
				continue
			}
			if c == '\n' {
				newlines++
			}
			i++
			continue
		}
		switch c {
		case '"':
			inQuote = true
			i++
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
			if depth == 0 {
				return string(content[start : i-1]), i, newlines, nil
			}
		case '\n':
			newlines++
			i++
		default:
			i++
		}
	}
	return "", 0, 0, wmlerrors.NewPreprocUnterminatedDefine(loc, "{...}")
}

// braceWordTiers sizes the slab allocator splitBraceWords draws its
// scratch slices from: a `{MACRO ...}` call rarely carries more than a
// handful of positional arguments.
var braceWordTiers = []alloc.SlabTierConfig{
	{Capacity: 4, Weight: 0.6},
	{Capacity: 8, Weight: 0.3},
	{Capacity: 16, Weight: 0.1},
}

// braceWordPool is shared across every expandBrace call within a
// process: each call borrows a []string, fills it, and returns it once
// the words have been copied out as macro key/args.
var braceWordPool = alloc.NewSlabAllocator[string](braceWordTiers)

// splitBraceWords splits the inner text of a `{...}` inclusion into its
// whitespace-separated words at brace/quote depth 0: the first word is
// the macro name or include path, the rest are positional actual
// arguments. A quoted argument keeps its interior whitespace. The
// returned slice was drawn from braceWordPool; callers should return it
// with braceWordPool.Put once they're done reading it.
func splitBraceWords(inner string) []string {
	words := braceWordPool.Get(4)
	var cur strings.Builder
	depth := 0
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(inner)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case inQuote:
			if c == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					cur.WriteRune('"')
					i++
					continue
				}
				inQuote = false
				continue
			}
			cur.WriteRune(c)
		case c == '"':
			inQuote = true
		case c == '{':
			depth++
			cur.WriteRune(c)
		case c == '}':
			depth--
			cur.WriteRune(c)
		case depth == 0 && (c == ' ' || c == '\t' || c == '\n' || c == '\r'):
			flush()
		default:
			cur.WriteRune(c)
		}
	}
	flush()
	return words
}
