package json

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestNextValue(t *testing.T) {
	testCases := []struct {
		name  string
		input string

		startExpect int
		endExpect   int
	}{
		{
			name:        "two objects",
			input:       `{"key1": "value1"}{"key2": "value2"}`,
			startExpect: 0,
			endExpect:   17,
		},
		{
			name:        "one object",
			input:       `{"key": "value"}`,
			startExpect: 0,
			endExpect:   15,
		},
		{
			name:        "white spaces + one object",
			input:       `   {"key": "value"}`,
			startExpect: 3,
			endExpect:   18,
		},
		{
			name:        "unfinished object",
			input:       `{"unfinished": "object"`,
			startExpect: 0,
			endExpect:   -1,
		},
		{
			name:        "unfinished array",
			input:       `[1,2,3`,
			startExpect: 0,
			endExpect:   -1,
		},
		{
			name:        "complete array with mixed types",
			input:       `[1, "string", true, {"key": "value"}, [2,3]]`,
			startExpect: 0,
			endExpect:   43,
		},
		{
			name:        "escaped quote does not end the string",
			input:       `{"key": "va\"}lue"}`,
			startExpect: 0,
			endExpect:   18,
		},
		{
			name:        "escaped backslash before closing quote",
			input:       `{"key": "value\\"}`,
			startExpect: 0,
			endExpect:   17,
		},
		{
			name:        "brackets inside strings are ignored",
			input:       `{"key": "}]"}`,
			startExpect: 0,
			endExpect:   12,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reader := bytes.NewReader([]byte(tc.input))
			lexer := NewStreamLexer(reader, 16384, 4096)
			_, _ = lexer.Read()

			start, end, err := lexer.NextValue()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if start != tc.startExpect {
				t.Errorf("expected start to be %d, got %d", tc.startExpect, start)
			}

			if end != tc.endExpect {
				t.Errorf("expected end to be %d, got %d", tc.endExpect, end)
			}
		})
	}
}

func TestNextValueErrors(t *testing.T) {
	testCases := []struct {
		name            string
		input           string
		maxDepth        int
		maxStringLength int
		wantErr         string
	}{
		{
			name:     "unmatched closing brace",
			input:    "}",
			maxDepth: 10,
			wantErr:  "invalid JSON: unmatched closing bracket at position 0",
		},
		{
			name:     "unmatched closing array",
			input:    `{"foo": [1,2]]}`,
			maxDepth: 10,
			wantErr:  "invalid JSON: unmatched closing bracket at position 13",
		},
		{
			name:     "exceeds max depth - nested objects",
			input:    `{"a": {"b": {"c": {"d": 1}}}}`,
			maxDepth: 2,
			wantErr:  "object exceeds maximum depth of 2",
		},
		{
			name:     "exceeds max depth - nested arrays",
			input:    `[[[["too deep"]]]]`,
			maxDepth: 2,
			wantErr:  "array exceeds maximum depth of 2",
		},
		{
			name:     "invalid character before object",
			input:    `x{"foo": "bar"}`,
			maxDepth: 10,
			wantErr:  "invalid JSON: unexpected character 'x' at position 0",
		},
		{
			name:            "string too long",
			input:           `{"foo": "0123456789"}`,
			maxDepth:        10,
			maxStringLength: 5,
			wantErr:         "string exceeds maximum length of 5",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reader := bytes.NewReader([]byte(tc.input))
			lexer := NewStreamLexer(reader, 16384, 4096)
			lexer.maxDepth = tc.maxDepth
			if tc.maxStringLength > 0 {
				lexer.maxStringLength = tc.maxStringLength
			}
			_, _ = lexer.Read()

			_, _, err := lexer.NextValue()
			if err == nil {
				t.Fatal("expected an error but got nil")
			}

			if err.Error() != tc.wantErr {
				t.Errorf("expected error %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestDecodeAll(t *testing.T) {
	expected := []string{
		`{"key1": "value1"}`,
		`{"key2": "value2"}`,
		`{"key3": "value3"}`,
	}
	input := expected[0] + expected[1] + expected[2]
	reader := bytes.NewReader([]byte(input))
	lexer := NewStreamLexer(reader, 16384, 4096)

	count := 0
	lexer.DecodeAll(context.Background(), func(b []byte) {
		if string(b) != expected[count] {
			t.Errorf("object %d: expected %q, got %q", count+1, expected[count], string(b))
		}
		count++
	}, func(err error) {
		t.Fatalf("unexpected error: %v", err)
	})

	if count != len(expected) {
		t.Fatalf("expected %d objects, got %d", len(expected), count)
	}
}

func TestDecodeAllGrowsBuffer(t *testing.T) {
	// A value larger than the initial buffer forces growth and compaction.
	var builder strings.Builder
	builder.WriteString(`{"root": {`)
	for i := 0; i < 100; i++ {
		if i > 0 {
			builder.WriteString(",")
		}
		fmt.Fprintf(&builder, `"key%d": {"name": "%s", "value": "%s"}`,
			i,
			strings.Repeat("very long name ", 10),
			strings.Repeat("very long value ", 20),
		)
	}
	builder.WriteString("}}")

	input := builder.String()
	if len(input) < 4096*2 {
		t.Fatalf("test input too small: %d bytes", len(input))
	}

	reader := bytes.NewReader([]byte(input))
	lexer := NewStreamLexer(reader, 512, 256)
	lexer.maxStringLength = len(input)

	var got []byte
	lexer.DecodeAll(context.Background(), func(b []byte) {
		got = append(got, b...)
	}, func(err error) {
		t.Fatalf("unexpected error: %v", err)
	})

	if string(got) != input {
		t.Fatalf("reassembled value does not match input (%d vs %d bytes)", len(got), len(input))
	}
}

// eofReader hands out its whole payload together with io.EOF in a single
// Read call, as a closing socket may.
type eofReader struct {
	data []byte
	done bool
}

func (r *eofReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	if len(r.data) == 0 {
		r.done = true
		return n, io.EOF
	}
	return n, nil
}

func TestDecodeAllFinalReadWithEOF(t *testing.T) {
	input := `{"key": "value"}`
	lexer := NewStreamLexer(&eofReader{data: []byte(input)}, 16384, 4096)

	var got []string
	lexer.DecodeAll(context.Background(), func(b []byte) {
		got = append(got, string(b))
	}, func(err error) {
		t.Fatalf("unexpected error: %v", err)
	})

	if len(got) != 1 || got[0] != input {
		t.Fatalf("expected %q, got %q", input, got)
	}
}

func TestDecodeAllCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := bytes.NewReader([]byte(`{"key": "value"}`))
	lexer := NewStreamLexer(reader, 16384, 4096)

	lexer.DecodeAll(ctx, func(b []byte) {
		t.Error("callback invoked after cancellation")
	}, func(err error) {
		t.Errorf("unexpected error: %v", err)
	})
}

func BenchmarkDecodeAll(b *testing.B) {
	var builder strings.Builder
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&builder, `{"id":%d,"value":"test-%d","note":"esc\nape A"}`, i, i)
	}
	input := builder.String()

	b.SetBytes(int64(len(input)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		reader := bytes.NewReader([]byte(input))
		b.StartTimer()

		lexer := NewStreamLexer(reader, 32768, 16384)

		var totalBytes int
		lexer.DecodeAll(context.Background(), func(data []byte) {
			totalBytes += len(data)
		}, func(err error) {
			b.Fatalf("unexpected error: %v", err)
		})
		if totalBytes != len(input) {
			b.Fatalf("not all data was processed: expected %d bytes, got %d bytes",
				len(input), totalBytes)
		}
	}
}
