package query

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitize_SizeLimit(t *testing.T) {
	limit := 64

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Repeat("a", tt.inputSize)
			_, err := Sanitize(input, limit)
			if tt.wantErr {
				if !errors.Is(err, ErrQueryTooLarge) {
					t.Errorf("Sanitize() expected ErrQueryTooLarge for size %d, got %v", tt.inputSize, err)
				}
			} else if err != nil {
				t.Errorf("Sanitize() unexpected error: %v", err)
			}
		})
	}
}

func TestSanitize_DefaultLimit(t *testing.T) {
	if _, err := Sanitize(strings.Repeat("a", DefaultMaxSize), 0); err != nil {
		t.Errorf("unexpected error at default limit: %v", err)
	}
	if _, err := Sanitize(strings.Repeat("a", DefaultMaxSize+1), 0); err == nil {
		t.Error("expected error above default limit")
	}
}

func TestSanitize_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", `key: "value"`, `key: "value"`},
		{"Safe Controls", "a AND\n\tb", "a AND\n\tb"},
		{"ANSI Code", "\x1b[31mkey", "[31mkey"}, // ESC removed
		{"Null Byte", "ke\x00y", "key"},         // NULL removed
		{"Bell", "key\x07", "key"},              // BEL removed
		{"Between Tokens", "a\x00 AND b: \"x\"", `a AND b: "x"`},
		{"After Escaped Quote", "k: \"a\\\"b\"\x07", `k: "a\"b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(tt.input, 0)
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSanitize_InvalidUTF8(t *testing.T) {
	if _, err := Sanitize("key\xff", 0); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestSanitize_ControlCharsInLiteral(t *testing.T) {
	inputs := []string{
		"k: \"ab\x00c\"",
		"k: ^\"\x1b[31m\"",
		"k: \"a\\\"\x07\"",
	}
	for _, input := range inputs {
		if _, err := Sanitize(input, 0); !errors.Is(err, ErrControlInLiteral) {
			t.Errorf("Sanitize(%q) expected ErrControlInLiteral, got %v", input, err)
		}
	}
}
