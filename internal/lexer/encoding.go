package lexer

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeSource converts raw source bytes to a UTF-8 string for New,
// honoring cmd/stc's --encoding flag. BOM-sniffed UTF-8/UTF-16
// auto-detection is the default, generalized here to also accept an
// explicit encoding name (any name golang.org/x/text/encoding/
// htmlindex recognizes — "utf-8", "utf-16", "windows-1252", ...) for
// sources a BOM can't identify on its own.
//
// name == "" (or "auto") keeps the BOM-or-UTF-8 auto-detect behavior.
func DecodeSource(data []byte, name string) (string, error) {
	if name == "" || name == "auto" {
		return decodeAuto(data)
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return "", fmt.Errorf("unknown source encoding %q: %w", name, err)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding source as %s: %w", name, err)
	}
	return string(out), nil
}

func decodeAuto(data []byte) (string, error) {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return string(data[3:]), nil
	}
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
		return decodeUTF16(data, unicode.LittleEndian)
	}
	if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		return decodeUTF16(data, unicode.BigEndian)
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes), nil
}

func decodeUTF16(data []byte, endianness unicode.Endianness) (string, error) {
	decoder := unicode.UTF16(endianness, unicode.UseBOM).NewDecoder()
	utf8Data, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("failed to decode UTF-16: %w", err)
	}
	result := bytes.TrimPrefix(utf8Data, []byte{0xEF, 0xBB, 0xBF})
	result = bytes.TrimPrefix(result, []byte("\uFEFF"))
	return string(result), nil
}
