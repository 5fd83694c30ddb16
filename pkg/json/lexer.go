package json

import (
	"context"
	"fmt"
	"io"
)

// StreamLexer splits a continuous byte stream into individual top-level JSON
// values, like a JSONL file or a JSON-RPC connection carries. It is not a
// full parser: it only tracks bracket depth and string boundaries to find
// where one value ends and the next begins, leaving the contained string
// literals to Unescape and EachString.
type StreamLexer struct {
	reader  io.Reader
	maxRead int

	buffer []byte
	cursor int // beginning of the next value
	length int // bytes used in buffer

	// Parsing policy
	maxDepth        int
	maxStringLength int
}

// NewStreamLexer creates a StreamLexer with the given reader and buffer
// sizing. bufferSize is the initial buffer capacity; maxRead bounds a single
// read from the underlying reader.
func NewStreamLexer(reader io.Reader, bufferSize, maxRead int) *StreamLexer {
	return &StreamLexer{
		reader:  reader,
		maxRead: maxRead,
		buffer:  make([]byte, 0, bufferSize),

		maxDepth:        20,
		maxStringLength: 9999,
	}
}

// Read pulls up to maxRead more bytes from the reader into the buffer,
// growing it when needed.
func (l *StreamLexer) Read() (int, error) {
	if cap(l.buffer)-l.length < l.maxRead {
		newCap := cap(l.buffer) * 2
		if newCap < l.length+l.maxRead {
			newCap = l.length + l.maxRead
		}
		grown := make([]byte, l.length, newCap)
		copy(grown, l.buffer[:l.length])
		l.buffer = grown
	}

	// Account for n before looking at err: a reader may return data
	// together with io.EOF, and those final bytes still belong to the
	// stream.
	n, err := l.reader.Read(l.buffer[l.length : l.length+l.maxRead])
	l.length += n
	l.buffer = l.buffer[:l.length]

	return n, err
}

// DecodeAll reads the stream to completion, calling cb with the raw bytes of
// each complete top-level value and errCb for read or framing errors. It
// returns when the stream ends, an error occurs or ctx is canceled.
func (l *StreamLexer) DecodeAll(ctx context.Context, cb func([]byte), errCb func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			n, err := l.Read()

			if err == io.EOF {
				l.processBuffer(cb, errCb)
				return
			}

			if err != nil && err != io.ErrUnexpectedEOF {
				errCb(err)
				return
			}

			if n == 0 && err == io.ErrUnexpectedEOF {
				continue // try reading again, we need more data
			}

			if stop := l.processBuffer(cb, errCb); stop {
				return
			}
		}
	}
}

// NextValue locates the next complete top-level object or array in the
// buffer. end is -1 when the value is not yet complete.
func (l *StreamLexer) NextValue() (start, end int, err error) {
	// Find start of object/array
	for start = l.cursor; start < l.length; start++ {
		c := l.buffer[start]
		if c == '{' || c == '[' {
			break
		}
		if c == '}' || c == ']' {
			return 0, 0, fmt.Errorf("invalid JSON: unmatched closing bracket at position %d", start)
		}
		if !isWhitespace[c] && c != 0 {
			return 0, 0, fmt.Errorf(
				"invalid JSON: unexpected character '%c' at position %d",
				c,
				start,
			)
		}
	}

	objectDepth := 0
	arrayDepth := 0

	for i := start; i < l.length; i++ {
		switch l.buffer[i] {
		case '"':
			strEnd, _ := ScanString(l.buffer[:l.length], i+1)
			if strEnd < 0 {
				return start, -1, nil // literal runs past buffered data
			}
			if strEnd-(i+1) > l.maxStringLength {
				return 0, 0, fmt.Errorf("string exceeds maximum length of %d", l.maxStringLength)
			}
			i = strEnd
		case '{':
			objectDepth++
			if objectDepth > l.maxDepth {
				return 0, 0, fmt.Errorf("object exceeds maximum depth of %d", l.maxDepth)
			}
		case '[':
			arrayDepth++
			if arrayDepth > l.maxDepth {
				return 0, 0, fmt.Errorf("array exceeds maximum depth of %d", l.maxDepth)
			}
		case '}':
			objectDepth--
			if objectDepth < 0 {
				return 0, 0, fmt.Errorf("invalid JSON: unmatched closing bracket at position %d", i)
			}
			if objectDepth == 0 && arrayDepth == 0 {
				return start, i, nil
			}
		case ']':
			arrayDepth--
			if arrayDepth < 0 {
				return 0, 0, fmt.Errorf("invalid JSON: unmatched closing bracket at position %d", i)
			}
			if objectDepth == 0 && arrayDepth == 0 {
				return start, i, nil
			}
		}
	}

	// Value is not complete
	return start, -1, nil
}

// processBuffer hands complete values in the buffer to the callback and
// compacts the buffer behind them. It reports whether the read loop should
// stop; a drained buffer is not a reason to stop, more data may follow.
func (l *StreamLexer) processBuffer(cb func([]byte), errCb func(err error)) (stop bool) {
	for l.length > 0 {
		start, end, err := l.NextValue()
		if err != nil {
			errCb(err)
			return true // exit on framing errors
		}
		if end == -1 {
			return false // need more data
		}

		cb(l.buffer[start : end+1])
		l.cursor = end + 1

		if l.cursor > 0 {
			copy(l.buffer, l.buffer[l.cursor:l.length])
			l.length -= l.cursor
			l.buffer = l.buffer[:l.length]
			l.cursor = 0
		}
	}
	return false
}

// BufferLength returns the number of buffered bytes.
func (l *StreamLexer) BufferLength() int { return l.length }

// Cursor returns the offset of the next value in the buffer.
func (l *StreamLexer) Cursor() int { return l.cursor }

// Buffer returns the internal buffer. Debugging only.
func (l *StreamLexer) Buffer() []byte { return l.buffer }

// BufferContent returns a short preview of the buffered bytes for debug
// logging.
func (l *StreamLexer) BufferContent() string {
	const previewLen = 256
	if l.length <= previewLen {
		return string(l.buffer[:l.length])
	}
	return string(l.buffer[:previewLen]) + "..."
}
