package timeutil

import (
	"testing"
	"time"
)

func TestNow_AlwaysUTC(t *testing.T) {
	now := Now()

	if now.Location() != time.UTC {
		t.Errorf("Now() returned non-UTC timezone: %v", now.Location())
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2006-01-02", "2026-09-15")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	want := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate = %v, want %v", got, want)
	}

	if _, err := ParseDate("2006-01-02", "15/09/2026"); err == nil {
		t.Error("ParseDate accepted a value that does not match the layout")
	}
}

func TestStartOfDay(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{
			name:     "midnight stays put",
			input:    time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
			expected: "2026-08-29 00:00:00 +0000 UTC",
		},
		{
			name:     "afternoon truncates",
			input:    time.Date(2026, 8, 29, 15, 30, 45, 123, time.UTC),
			expected: "2026-08-29 00:00:00 +0000 UTC",
		},
		{
			name:     "non-UTC input converts first",
			input:    time.Date(2026, 8, 29, 23, 30, 0, 0, time.FixedZone("SAST", 2*60*60)),
			expected: "2026-08-29 00:00:00 +0000 UTC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StartOfDay(tt.input)
			if got.String() != tt.expected {
				t.Errorf("StartOfDay(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
