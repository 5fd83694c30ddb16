package json

// Byte classification for the scanner, indexed by every possible byte value
// so lookups are branch-free.
var isWhitespace [256]bool

// hexDigit maps a hex character to its numeric value and every other byte to
// 0. The zero sentinel is indistinguishable from the digit '0', so callers
// must only consult these tables on bytes already confirmed to be hex digits.
// The three scaled tables hold the same values pre-multiplied by their place
// in a 4-digit escape, so decoding \uXXXX is four lookups and three
// additions with no shifts in the hot loop.
var (
	hexDigit     [256]uint16
	hexDigit16   [256]uint16 // hexDigit * 0x10
	hexDigit256  [256]uint16 // hexDigit * 0x100
	hexDigit4096 [256]uint16 // hexDigit * 0x1000
)

// unescapeChar maps the byte following a backslash to the literal byte it
// stands for. Zero means the byte is not a recognized single-character
// escape; 'u' introduces a unicode escape and is handled separately by the
// decode loop.
var unescapeChar = [256]byte{
	'"':  '"',
	'\\': '\\',
	'/':  '/',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

func init() {
	for _, c := range []byte{' ', '\t', '\n', '\r'} {
		isWhitespace[c] = true
	}

	for c := byte('0'); c <= '9'; c++ {
		hexDigit[c] = uint16(c - '0')
	}
	for c := byte('a'); c <= 'f'; c++ {
		hexDigit[c] = uint16(c-'a') + 10
	}
	for c := byte('A'); c <= 'F'; c++ {
		hexDigit[c] = uint16(c-'A') + 10
	}
	for i := range hexDigit {
		hexDigit16[i] = hexDigit[i] << 4
		hexDigit256[i] = hexDigit[i] << 8
		hexDigit4096[i] = hexDigit[i] << 12
	}
}
