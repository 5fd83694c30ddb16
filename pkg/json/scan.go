package json

import "unicode/utf8"

// ScanString locates the end of a string literal. start must point at the
// first byte after the opening quote. It returns the index of the closing
// quote (the escaped content is src[start:end]) and whether any backslash
// occurs before it. end is -1 when no unescaped closing quote exists in src.
func ScanString(src []byte, start int) (end int, hasEscape bool) {
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '\\':
			hasEscape = true
			i++ // the escaped byte cannot close the literal
		case '"':
			return i, hasEscape
		}
	}
	return -1, hasEscape
}

// NextChar advances by one logical character, returning the index of the
// following character and the character itself. Input is treated as UTF-8;
// an invalid byte advances by one and yields utf8.RuneError.
func NextChar(src []byte, i int) (next int, r rune) {
	r, n := utf8.DecodeRune(src[i:])
	return i + n, r
}
