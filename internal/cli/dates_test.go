package cli

import (
	"testing"
	"time"
)

func TestParsePastTime(t *testing.T) {
	now := time.Date(2026, 1, 28, 15, 4, 5, 0, time.UTC) // Wednesday

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"unix", "1700000000", time.Unix(1700000000, 0)},
		{"zero unix", "0", time.Unix(0, 0)},
		{"now", "now", now},
		{"today", "Today", time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)},
		{"yesterday", "yesterday", time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC)},
		{"hours ago", "2h ago", now.Add(-2 * time.Hour)},
		{"bare hours", "2h", now.Add(-2 * time.Hour)},
		{"minutes", "90m", now.Add(-90 * time.Minute)},
		{"days", "3d", now.Add(-72 * time.Hour)},
		{"weeks ago", "2w ago", time.Date(2026, 1, 14, 15, 4, 5, 0, time.UTC)},
		{"months", "1mo", time.Date(2025, 12, 28, 15, 4, 5, 0, time.UTC)},
		{"go duration", "1h30m", now.Add(-90 * time.Minute)},
		{"weekday", "monday", time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)},
		{"same weekday", "wed", time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)},
		{"last weekday", "last wed", time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)},
		{"thursday", "thursday", time.Date(2026, 1, 22, 0, 0, 0, 0, time.UTC)},
		{"date", "2026-01-15", time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2026-01-15T10:00:00+02:00", time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePastTime(tt.input, now)
			if err != nil {
				t.Fatalf("ParsePastTime(%q) error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("ParsePastTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePastTime_Invalid(t *testing.T) {
	now := time.Date(2026, 1, 28, 15, 4, 5, 0, time.UTC)
	for _, input := range []string{"", "  ", "-5", "-1h", "soon", "next monday", "2026-13-01", "5y"} {
		if _, err := ParsePastTime(input, now); err == nil {
			t.Errorf("ParsePastTime(%q) expected error", input)
		}
	}
}
