// Package security guards wmlc's file-reading paths against malicious
// or merely misnamed input: a large ".cfg" file is validated by its
// header before being read in full, so a disguised binary never gets
// slurped and misparsed as WML text.
package security

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileValidator validates large files before loading them fully,
// preventing memory bloat and silent misparsing from a file that
// merely carries a ".cfg" extension without being WML.
type FileValidator struct {
	ValidationThreshold int64 // Files larger than this are validated first
	HeaderSize          int64 // Size of header to read for validation
}

func NewFileValidator(thresholdKB int64) *FileValidator {
	return &FileValidator{
		ValidationThreshold: thresholdKB * 1024,
		HeaderSize:          64 * 1024,
	}
}

// ValidateLargeFile reads only the header and validates the file is
// legitimate WML source. Returns an error if the file looks like
// something else (an image, archive, or executable saved with a
// ".cfg" extension, or raw binary data).
func (fv *FileValidator) ValidateLargeFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if info.Size() <= fv.ValidationThreshold {
		return nil
	}

	header := make([]byte, fv.HeaderSize)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed to read header: %w", err)
	}
	header = header[:n]

	if err := fv.checkMagicBytes(path, header); err != nil {
		return err
	}

	if fv.isBinaryData(header) {
		return errors.New("file appears to be binary (.cfg extension on binary file)")
	}

	if strings.EqualFold(filepath.Ext(path), ".cfg") {
		return fv.validateWML(header)
	}

	return nil
}

// checkMagicBytes verifies that a file whose extension has a known
// signature (.png, .jpg, .gif, .pdf, .zip, .exe, .dll) starts with it.
// Files with any other extension, ".cfg" included, are not checked here.
func (fv *FileValidator) checkMagicBytes(path string, header []byte) error {
	ext := strings.ToLower(filepath.Ext(path))

	magicBytes := map[string][]byte{
		".png": {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
		".jpg": {0xFF, 0xD8, 0xFF},
		".gif": {0x47, 0x49, 0x46, 0x38, 0x39, 0x61},
		".pdf": {0x25, 0x50, 0x44, 0x46, 0x2D},
		".zip": {0x50, 0x4B, 0x03, 0x04},
		".exe": {0x4D, 0x5A},
		".dll": {0x4D, 0x5A},
	}

	if magic, exists := magicBytes[ext]; exists {
		if !bytes.HasPrefix(header, magic) {
			return fmt.Errorf("magic bytes don't match %s extension (file may be disguised)", ext)
		}
	}

	return nil
}

// isBinaryData checks if data is mostly non-printable bytes.
func (fv *FileValidator) isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	nonPrintable := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}

	ratio := float64(nonPrintable) / float64(len(data))
	return ratio > 0.3
}

// wmlPatterns are substrings that should appear somewhere in any real
// WML source file: an element close tag, an attribute assignment, or a
// preprocessor directive.
var wmlPatterns = [][]byte{
	[]byte("[/"),
	[]byte("#define"),
	[]byte("#ifdef"),
	[]byte("#textdomain"),
	[]byte("="),
}

// validateWML checks that header contains at least one pattern every
// real WML file carries, catching the case where a text file of some
// other format was merely renamed to ".cfg".
func (fv *FileValidator) validateWML(header []byte) error {
	for _, pattern := range wmlPatterns {
		if bytes.Contains(header, pattern) {
			return nil
		}
	}
	return errors.New("no WML patterns found ([/tag], attribute assignment, or preprocessor directive)")
}
