package tree

import "github.com/battle-for-wesnoth/wmlc/internal/types"

// Run is one contiguous span of an attribute's text, either plain or
// bound to a textdomain for translation.
type Run struct {
	Text   string
	Domain types.TextDomain // "" means untranslated
}

// AttributeValue is an attribute's value: a concatenation of Runs.
// Concatenation of two AttributeValues is append of their Runs.
type AttributeValue struct {
	Runs []Run
}

// Plain builds an untranslated AttributeValue from a single string.
func Plain(s string) AttributeValue {
	if s == "" {
		return AttributeValue{}
	}
	return AttributeValue{Runs: []Run{{Text: s}}}
}

// Translated builds a single-run AttributeValue bound to domain.
func Translated(s string, domain types.TextDomain) AttributeValue {
	return AttributeValue{Runs: []Run{{Text: s, Domain: domain}}}
}

// Append concatenates other's runs onto a copy of this value.
func (v AttributeValue) Append(other AttributeValue) AttributeValue {
	runs := make([]Run, 0, len(v.Runs)+len(other.Runs))
	runs = append(runs, v.Runs...)
	runs = append(runs, other.Runs...)
	return AttributeValue{Runs: runs}
}

// Raw returns the untranslated concatenated text, used for structural
// comparisons and for resolving `$variable` references.
func (v AttributeValue) Raw() string {
	if len(v.Runs) == 0 {
		return ""
	}
	if len(v.Runs) == 1 {
		return v.Runs[0].Text
	}
	n := 0
	for _, r := range v.Runs {
		n += len(r.Text)
	}
	buf := make([]byte, 0, n)
	for _, r := range v.Runs {
		buf = append(buf, r.Text...)
	}
	return string(buf)
}

// Empty reports whether the value carries no text; an empty attribute
// is considered absent for both comparison and serialization.
func (v AttributeValue) Empty() bool {
	return v.Raw() == ""
}

// Equal compares two values by their untranslated bytes, the
// structural-equality rule ConfigTree nodes use for diff and for
// `==`.
func (v AttributeValue) Equal(other AttributeValue) bool {
	return v.Raw() == other.Raw()
}

// FullEqual compares two values run-for-run, including textdomain
// bindings, the rule TextCodec round-trip tests use.
func (v AttributeValue) FullEqual(other AttributeValue) bool {
	if len(v.Runs) != len(other.Runs) {
		return false
	}
	for i := range v.Runs {
		if v.Runs[i] != other.Runs[i] {
			return false
		}
	}
	return true
}
