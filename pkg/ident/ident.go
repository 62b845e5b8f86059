// Package ident provides case-insensitive identifier normalization
// and a case-insensitive ordered map, used throughout the Index and
// the annotator's scope stack since IEC 61131-3 identifiers are
// case-insensitive (TCounter and tcounter name the same symbol).
package ident

import "strings"

// Normalize returns the canonical lowercase form of an identifier,
// used as the key for every case-insensitive lookup in the compiler.
func Normalize(name string) string {
	return strings.ToLower(name)
}

// Equal reports whether two identifiers name the same symbol,
// ignoring case.
func Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Compare orders two identifiers case-insensitively while leaving
// their original casing untouched, for stable, locale-independent
// sorting of symbol names in dumps and diagnostics.
func Compare(a, b string) int {
	return strings.Compare(Normalize(a), Normalize(b))
}

// Contains reports whether name appears in list, ignoring case.
func Contains(list []string, name string) bool {
	return Index(list, name) >= 0
}

// Index returns the position of name within list, ignoring case, or
// -1 if not present.
func Index(list []string, name string) int {
	for i, v := range list {
		if Equal(v, name) {
			return i
		}
	}
	return -1
}

// IsKeyword reports whether name matches one of the given keywords,
// ignoring case (IEC 61131-3 keywords are case-insensitive).
func IsKeyword(name string, keywords ...string) bool {
	return Contains(keywords, name)
}
