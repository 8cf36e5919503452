package utils

import (
	"testing"
	"time"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		reference string
		expected  string
	}{
		{"two and a half hours", "08:00:00", "10:30:00", "2h 30m"},
		{"full workday", "08:00:00", "17:00:00", "9h 0m"},
		{"under an hour", "08:30:00", "08:59:00", "0h 29m"},
		{"zero gap", "09:00:00", "09:00:00", "0h 0m"},
		{"reference before start", "17:00:00", "08:00:00", "0h 0m"},
		{"malformed start", "8am", "10:30:00", "0h 0m"},
		{"malformed reference", "08:00:00", "later", "0h 0m"},
		{"both empty", "", "", "0h 0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatElapsed(tt.start, tt.reference); got != tt.expected {
				t.Errorf("FormatElapsed(%q, %q) = %q, want %q", tt.start, tt.reference, got, tt.expected)
			}
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	got, err := ParseTimeOfDay("08:15:00", date)
	if err != nil {
		t.Fatalf("ParseTimeOfDay returned error: %v", err)
	}
	want := time.Date(2026, 3, 9, 8, 15, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseTimeOfDay = %v, want %v", got, want)
	}

	if _, err := ParseTimeOfDay("25:99:00", date); err == nil {
		t.Error("expected error for out-of-range time")
	}

	got, err = ParseTimeOfDay("", date)
	if err != nil || !got.Equal(date) {
		t.Errorf("empty input should return the date unchanged, got %v, err %v", got, err)
	}
}

func TestFirstName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"two part name", "Grace Wanjiru", "Grace"},
		{"single name", "Otieno", "Otieno"},
		{"three part name", "John Paul Kamau", "John"},
		{"empty", "", ""},
		{"leading spaces", "  Amina Yusuf", "Amina"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstName(tt.input); got != tt.expected {
				t.Errorf("FirstName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
