package outfmt

import (
	"bytes"
	"context"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input       string
		expected    Mode
		expectError bool
	}{
		{"text", Text, false},
		{"", Text, false},
		{"json", JSON, false},
		{"jsonl", JSONL, false},
		{"ndjson", JSONL, false},
		{"agent", Text, true},
		{"JSON", Text, true}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := Parse(tt.input)
			if tt.expectError && err == nil {
				t.Error("Expected error but got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if !tt.expectError && mode != tt.expected {
				t.Errorf("Expected mode %v, got %v", tt.expected, mode)
			}
		})
	}
}

func TestModeContext(t *testing.T) {
	ctx := context.Background()
	if ModeFromContext(ctx) != Text {
		t.Error("Expected default mode to be Text")
	}
	if IsJSON(ctx) {
		t.Error("Expected IsJSON to be false for default context")
	}

	if !IsJSON(WithMode(ctx, JSON)) {
		t.Error("Expected IsJSON to be true")
	}
	jsonl := WithMode(ctx, JSONL)
	if !IsJSON(jsonl) || !IsJSONL(jsonl) {
		t.Error("Expected JSONL to count as JSON")
	}
}

func TestModeString(t *testing.T) {
	for mode, want := range map[Mode]string{Text: "text", JSON: "json", JSONL: "jsonl"} {
		if mode.String() != want {
			t.Errorf("Expected %q, got %q", want, mode.String())
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]string{"key": "value"}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	expected := "{\n  \"key\": \"value\"\n}\n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
}

func TestWriteJSON_NoHTMLEscaping(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONMaybeCompact(&buf, map[string]string{"url": "a?b=1&c=<2>"}, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if buf.String() != "{\"url\":\"a?b=1&c=<2>\"}\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestWriteJSONLines(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONLines(&buf, []map[string]int{{"a": 1}, {"a": 2}}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if buf.String() != "{\"a\":1}\n{\"a\":2}\n" {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	if err := WriteJSONLines(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if buf.String() != "{\"a\":1}\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}
