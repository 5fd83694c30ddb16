package json

import "fmt"

// EachString walks one JSON value and calls cb with the decoded form of
// every string literal in document order, object keys included. Literals
// without escapes are delivered as zero-copy views into data, so callers
// that retain a Text past the callback must copy it or check Owned.
func EachString(data []byte, cb func(Text)) error {
	for i := 0; i < len(data); i++ {
		if data[i] != '"' {
			continue
		}
		end, hasEscape := ScanString(data, i+1)
		if end < 0 {
			return fmt.Errorf("unterminated string literal at position %d", i)
		}
		cb(Unescape(data, i+1, end, hasEscape))
		i = end
	}
	return nil
}
