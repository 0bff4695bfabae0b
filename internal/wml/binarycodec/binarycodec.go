// Package binarycodec implements §4.6's BinaryCodec: a compact,
// schema-dictionary-coded byte stream for repeated ConfigTree transfer
// between two endpoints that grow a shared word schema over time.
//
// Grounded on
// original_source/src/serialization/binary_wml.hpp's compression_schema
// (char_to_word/word_to_char maps); the byte layout is followed to the
// letter since two independent endpoints must interoperate on it.
package binarycodec

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	wmlerrors "github.com/battle-for-wesnoth/wmlc/internal/errors"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/tree"
)

const (
	ctrlOpenElement  byte = 0x00
	ctrlCloseElement byte = 0x01
	ctrlSchemaItem   byte = 0x02
	ctrlLiteralWord  byte = 0x03
	firstWordCode    byte = 0x04
	lastWordCode     byte = 0xFF
	maxSchemaSize         = int(lastWordCode) - int(firstWordCode) + 1
)

// Schema is the growing code<->word dictionary two endpoints keep in
// step as they exchange wire-encoded trees. The zero value is not
// ready to use; construct with NewSchema.
type Schema struct {
	wordToCode map[string]byte
	codeToWord map[byte]string
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{wordToCode: map[string]byte{}, codeToWord: map[byte]string{}}
}

// Len reports how many words the schema has assigned a code to.
func (s *Schema) Len() int {
	return len(s.codeToWord)
}

func (s *Schema) nextCode() (byte, bool) {
	n := len(s.codeToWord)
	if n >= maxSchemaSize {
		return 0, false
	}
	return firstWordCode + byte(n), true
}

// encodeName writes name's encoding per §4.6: its existing code if the
// schema already has one, a schema-item assigning the next free code,
// or (schema full) a literal-word. The last case is the only non-fatal
// failure in the whole taxonomy: encoding continues, the caller just
// learns the schema can't grow further.
func (s *Schema) encodeName(buf *bytes.Buffer, name string) *wmlerrors.WMLError {
	if code, ok := s.wordToCode[name]; ok {
		buf.WriteByte(code)
		return nil
	}
	if code, ok := s.nextCode(); ok {
		buf.WriteByte(ctrlSchemaItem)
		buf.WriteString(name)
		buf.WriteByte(0)
		s.wordToCode[name] = code
		s.codeToWord[code] = name
		return nil
	}
	buf.WriteByte(ctrlLiteralWord)
	buf.WriteString(name)
	buf.WriteByte(0)
	return wmlerrors.NewBinaryCodecSchemaOverflowRecoverable("encode_binary", name)
}

// Encode writes node's wire encoding against schema, which is mutated
// in place as new words are learned. Warnings holds one
// BinaryCodecSchemaOverflowRecoverable per name that had to fall back
// to a literal once the schema filled up; encoding itself never aborts
// because of it.
func Encode(node *tree.Node, schema *Schema) (data []byte, warnings []*wmlerrors.WMLError, err error) {
	var buf bytes.Buffer
	if err := encodeNode(&buf, node, schema, &warnings); err != nil {
		return nil, warnings, err
	}
	return buf.Bytes(), warnings, nil
}

func encodeNode(buf *bytes.Buffer, node *tree.Node, schema *Schema, warnings *[]*wmlerrors.WMLError) error {
	names := node.AttrNames()
	sort.Strings(names) // deterministic wire output across runs

	for _, name := range names {
		v := node.Attr(name)
		if v.Empty() {
			continue
		}
		if w := schema.encodeName(buf, name); w != nil {
			*warnings = append(*warnings, w)
		}
		buf.WriteString(v.Raw())
		buf.WriteByte(0)
	}

	for _, child := range node.AllChildrenOrdered() {
		buf.WriteByte(ctrlOpenElement)
		if w := schema.encodeName(buf, child.Tag); w != nil {
			*warnings = append(*warnings, w)
		}
		if err := encodeNode(buf, child.Node, schema, warnings); err != nil {
			return err
		}
		buf.WriteByte(ctrlCloseElement)
	}
	return nil
}

// Decode is the dual state machine: it reads data against schema
// (mutated in place by any schema-item it encounters) and reconstructs
// the tree Encode produced. Translation-run metadata does not survive
// the round trip: §4.6 has no byte in its vocabulary to carry a
// textdomain binding, so every decoded attribute comes back as a plain
// (untranslated) value.
func Decode(data []byte, schema *Schema) (*tree.Node, error) {
	d := &decoder{data: data, schema: schema}
	root := tree.New()
	if err := d.decodeNode(root); err != nil {
		return nil, err
	}
	return root, nil
}

type decoder struct {
	data   []byte
	pos    int
	schema *Schema
}

func (d *decoder) readByte() (byte, bool) {
	if d.pos >= len(d.data) {
		return 0, false
	}
	b := d.data[d.pos]
	d.pos++
	return b, true
}

func (d *decoder) readLiteral() (string, error) {
	start := d.pos
	for d.pos < len(d.data) && d.data[d.pos] != 0 {
		d.pos++
	}
	if d.pos >= len(d.data) {
		return "", wmlerrors.NewBinaryCodecCorrupt("decode_binary", "unterminated literal")
	}
	s := string(d.data[start:d.pos])
	d.pos++ // consume the NUL
	return s, nil
}

// resolveName consumes one name encoding (schema-item, literal-word,
// or word-code) starting at the current position.
func (d *decoder) resolveName() (string, error) {
	b, ok := d.readByte()
	if !ok {
		return "", wmlerrors.NewBinaryCodecCorrupt("decode_binary", "truncated stream")
	}
	switch {
	case b == ctrlSchemaItem:
		lit, err := d.readLiteral()
		if err != nil {
			return "", err
		}
		code, ok := d.schema.nextCode()
		if !ok {
			return "", wmlerrors.NewBinaryCodecCorrupt("decode_binary", "schema-item with schema already full")
		}
		d.schema.wordToCode[lit] = code
		d.schema.codeToWord[code] = lit
		return lit, nil
	case b == ctrlLiteralWord:
		return d.readLiteral()
	case b >= firstWordCode:
		word, ok := d.schema.codeToWord[b]
		if !ok {
			return "", wmlerrors.NewBinaryCodecCorrupt("decode_binary", fmt.Sprintf("unknown word code 0x%02x", b))
		}
		return word, nil
	default:
		return "", wmlerrors.NewBinaryCodecCorrupt("decode_binary", fmt.Sprintf("unexpected control byte 0x%02x where a name was expected", b))
	}
}

// decodeNode consumes node's attributes and children until it meets a
// close-element for it (or, at the document root, end of input).
func (d *decoder) decodeNode(node *tree.Node) error {
	for {
		if d.pos >= len(d.data) {
			return nil
		}
		switch d.data[d.pos] {
		case ctrlCloseElement:
			d.pos++
			return nil
		case ctrlOpenElement:
			d.pos++
			tag, err := d.resolveName()
			if err != nil {
				return err
			}
			child := node.AddChild(tag)
			if err := d.decodeNode(child); err != nil {
				return err
			}
		default:
			name, err := d.resolveName()
			if err != nil {
				return err
			}
			value, err := d.readLiteral()
			if err != nil {
				return err
			}
			node.SetAttr(name, tree.Plain(value))
		}
	}
}

// schemaDoc is the TOML-on-disk shape of a Schema, letting two
// independent wmlc invocations share a grown schema without
// re-transmitting it inside the wire format itself.
type schemaDoc struct {
	Entries []schemaEntry `toml:"entries"`
}

type schemaEntry struct {
	Code uint8  `toml:"code"`
	Word string `toml:"word"`
}

// SaveTOML writes schema to path as TOML.
func (s *Schema) SaveTOML(path string) error {
	codes := make([]byte, 0, len(s.codeToWord))
	for c := range s.codeToWord {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	doc := schemaDoc{Entries: make([]schemaEntry, 0, len(codes))}
	for _, c := range codes {
		doc.Entries = append(doc.Entries, schemaEntry{Code: uint8(c), Word: s.codeToWord[c]})
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadSchemaTOML reads a schema previously written by SaveTOML.
func LoadSchemaTOML(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc schemaDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	s := NewSchema()
	for _, e := range doc.Entries {
		s.wordToCode[e.Word] = e.Code
		s.codeToWord[e.Code] = e.Word
	}
	return s, nil
}
