// Package source reads markdown input and normalises its encoding to UTF-8.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

const (
	sniffSize = 4096
	// Inputs with at least this share of control bytes are treated as binary.
	controlPercent = 30
)

// ErrBinary is returned for input that does not look like text.
var ErrBinary = errors.New("source: input looks binary")

type bom int

const (
	bomNone bom = iota
	bomUTF8
	bomUTF16LE
	bomUTF16BE
)

// ReadFile reads path and decodes it.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// Read reads r to the end and decodes it.
func Read(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode strips a UTF-8 byte order mark and converts UTF-16 input with a
// byte order mark to UTF-8. Other input is returned unchanged unless it looks
// binary. Invalid UTF-8 is left for the parser to replace.
func Decode(data []byte) ([]byte, error) {
	switch detectBOM(data) {
	case bomUTF8:
		return data[3:], nil
	case bomUTF16LE:
		return decodeUTF16(data, unicode.LittleEndian)
	case bomUTF16BE:
		return decodeUTF16(data, unicode.BigEndian)
	}
	if !looksText(data) {
		return nil, ErrBinary
	}
	return data, nil
}

func detectBOM(b []byte) bom {
	switch {
	case bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}):
		return bomUTF8
	case bytes.HasPrefix(b, []byte{0xFF, 0xFE}):
		return bomUTF16LE
	case bytes.HasPrefix(b, []byte{0xFE, 0xFF}):
		return bomUTF16BE
	}
	return bomNone
}

func decodeUTF16(data []byte, endian unicode.Endianness) ([]byte, error) {
	out, err := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("source: decode utf-16: %w", err)
	}
	return out, nil
}

func looksText(data []byte) bool {
	sample := data
	if len(sample) > sniffSize {
		sample = sample[:sniffSize]
	}
	if len(sample) == 0 {
		return true
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}
	if utf8.Valid(sample) {
		return true
	}
	control := 0
	for _, b := range sample {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' && b != 0x1b {
			control++
		}
	}
	return control*100/len(sample) < controlPercent
}
