package json

import "testing"

func TestEachString(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []string
	}{
		{
			name:   "object keys and values",
			input:  `{"key": "value", "other": 42}`,
			expect: []string{"key", "value", "other"},
		},
		{
			name:   "nested structures",
			input:  `{"a": ["x", {"b": "y"}], "c": null}`,
			expect: []string{"a", "x", "b", "y", "c"},
		},
		{
			name:   "escapes decoded",
			input:  `{"msg": "line\nbreak", "smile": "\ud83d\ude00"}`,
			expect: []string{"msg", "line\nbreak", "smile", "\U0001f600"},
		},
		{
			name:   "no strings",
			input:  `[1, 2, true, null]`,
			expect: nil,
		},
		{
			name:   "empty string",
			input:  `[""]`,
			expect: []string{""},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			err := EachString([]byte(tc.input), func(text Text) {
				got = append(got, text.String())
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(got) != len(tc.expect) {
				t.Fatalf("expected %d strings, got %d (%q)", len(tc.expect), len(got), got)
			}
			for i := range got {
				if got[i] != tc.expect[i] {
					t.Errorf("string %d: expected %q, got %q", i, tc.expect[i], got[i])
				}
			}
		})
	}
}

func TestEachStringUnterminated(t *testing.T) {
	err := EachString([]byte(`{"key": "value`), func(Text) {})
	if err == nil {
		t.Fatal("expected an error for an unterminated literal")
	}
}

func TestEachStringZeroCopy(t *testing.T) {
	data := []byte(`{"plain": "escaped\n"}`)

	var texts []Text
	err := EachString(data, func(text Text) {
		texts = append(texts, text)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(texts) != 2 {
		t.Fatalf("expected 2 strings, got %d", len(texts))
	}
	if texts[0].Owned() {
		t.Error("escape-free literal should be a borrowed view")
	}
	if !texts[1].Owned() {
		t.Error("escaped literal should be an owned buffer")
	}
}
