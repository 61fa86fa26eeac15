package main

import "testing"

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"shorter than limit", "short", 10, "short"},
		{"exactly at limit", "exact", 5, "exact"},
		{"truncated with ellipsis", "a longer string", 10, "a longe..."},
		{"tiny limit", "abcdef", 3, "abc"},
		{"cut lands mid-rune", "ééééé", 6, "é..."},
		{"tiny limit mid-rune", "ééééé", 3, "é"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
