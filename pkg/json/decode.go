// Package json implements byte-level scanning and decoding of JSON string
// literals plus a streaming lexer that splits a continuous byte stream into
// individual JSON values. The decoder works directly on offsets into the
// source buffer: literals without escape sequences are returned as zero-copy
// views, and only literals containing a backslash pay for an allocation.
package json

// Text is the decoded form of a string literal: either a view borrowed from
// the source buffer (escape-free fast path) or an owned buffer built by the
// slow path. Callers must not assume which variant they hold; a borrowed
// view is only valid as long as the source buffer is.
type Text struct {
	b     []byte
	owned bool
}

// Bytes returns the decoded bytes. The result is read-only.
func (t Text) Bytes() []byte { return t.b }

// String returns the decoded text as a Go string.
func (t Text) String() string { return string(t.b) }

// Len returns the decoded length in bytes.
func (t Text) Len() int { return len(t.b) }

// Owned reports whether the Text carries its own storage rather than a view
// into the source buffer.
func (t Text) Owned() bool { return t.owned }

// UTF-16 surrogate code unit ranges, as carried by \uXXXX escapes.
const (
	surrHighStart = 0xD800
	surrHighEnd   = 0xDBFF
	surrLowStart  = 0xDC00
	surrLowEnd    = 0xDFFF

	// surrBias folds the 0x10000 supplementary-plane offset into the high
	// surrogate: ((hi - surrBias) << 10) + lo is the combined code point.
	surrBias = 0xD7F7
)

// decodeHex4 reads the 4 hex digits of a \u escape starting at i and returns
// the 16-bit code unit plus the index past the digits. The caller must have
// verified that 4 bytes remain. Bytes that are not hex digits contribute 0
// through the table sentinel.
func decodeHex4(src []byte, i int) (uint16, int) {
	c := hexDigit4096[src[i]] + hexDigit256[src[i+1]] + hexDigit16[src[i+2]] + hexDigit[src[i+3]]
	return c, i + 4
}

// encodeRune writes the UTF-8 encoding of r at dst[pos:] and returns the
// number of bytes written. Unlike utf8.EncodeRune it encodes surrogate code
// points as raw 3-byte sequences instead of substituting U+FFFD; the
// lone-surrogate pass-through policy depends on that.
func encodeRune(dst []byte, pos int, r rune) int {
	switch {
	case r < 0x80:
		dst[pos] = byte(r)
		return 1
	case r < 0x800:
		dst[pos] = 0xC0 | byte(r>>6)
		dst[pos+1] = 0x80 | byte(r)&0x3F
		return 2
	case r < 0x10000:
		dst[pos] = 0xE0 | byte(r>>12)
		dst[pos+1] = 0x80 | byte(r>>6)&0x3F
		dst[pos+2] = 0x80 | byte(r)&0x3F
		return 3
	default:
		dst[pos] = 0xF0 | byte(r>>18)
		dst[pos+1] = 0x80 | byte(r>>12)&0x3F
		dst[pos+2] = 0x80 | byte(r>>6)&0x3F
		dst[pos+3] = 0x80 | byte(r)&0x3F
		return 4
	}
}

// Decode decodes the string literal whose escaped content begins at start,
// the byte right after the opening quote. An unterminated literal decodes
// through the end of src.
func Decode(src []byte, start int) Text {
	end, hasEscape := ScanString(src, start)
	if end < 0 {
		end = len(src)
	}
	return Unescape(src, start, end, hasEscape)
}

// Unescape decodes src[start:end], the content of one string literal between
// its quotes. hasEscape must be the prescan's report; when false the span is
// guaranteed backslash-free and the result aliases src with no allocation.
//
// Decoding never fails. Truncated and unrecognized escapes emit the
// backslash literally, and unpaired surrogates pass through as raw 3-byte
// sequences.
func Unescape(src []byte, start, end int, hasEscape bool) Text {
	if !hasEscape {
		return Text{b: src[start:end]}
	}

	// Decoded output is never longer than its escaped form; the one spare
	// byte holds a defensive NUL terminator.
	out := make([]byte, end-start+1)
	w := 0

	// High surrogate awaiting its low half. pendPos records where its
	// placeholder encoding was written so a low surrogate arriving right
	// behind it can rewrite those bytes with the combined code point.
	var pendHigh uint16
	pendPos := -1

	for i := start; i < end; {
		c := src[i]
		if c != '\\' || i+1 >= end {
			// Ordinary character, or a backslash with nothing after it:
			// pass through unchanged.
			if c < 0x80 {
				out[w] = c
				w++
				i++
			} else {
				next, _ := NextChar(src, i)
				if next > end {
					next = end
				}
				w += copy(out[w:], src[i:next])
				i = next
			}
			continue
		}

		e := src[i+1]
		if lit := unescapeChar[e]; lit != 0 {
			out[w] = lit
			w++
			i += 2
			continue
		}
		if e != 'u' || end-(i+2) < 4 {
			// Unrecognized or truncated escape: keep the backslash and
			// rescan the next byte as ordinary input.
			out[w] = '\\'
			w++
			i++
			continue
		}

		c16, next := decodeHex4(src, i+2)
		i = next
		switch {
		case pendPos >= 0:
			if c16 >= surrLowStart && c16 <= surrLowEnd && w == pendPos+3 {
				// The low half arrived right behind the placeholder:
				// rewrite it with the combined code point. The placeholder
				// is always 3 bytes and the combined encoding always 4.
				r := ((rune(pendHigh) - surrBias) << 10) + rune(c16)
				w = pendPos + encodeRune(out, pendPos, r)
			} else {
				w += encodeRune(out, w, rune(c16))
			}
			pendPos = -1
		case c16 >= surrHighStart && c16 <= surrHighEnd:
			pendHigh = c16
			pendPos = w
			w += encodeRune(out, w, rune(c16))
		default:
			w += encodeRune(out, w, rune(c16))
		}
	}

	out[w] = 0
	return Text{b: out[:w], owned: true}
}
