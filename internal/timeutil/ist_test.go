package timeutil

import (
	"testing"
	"time"
)

func TestStartOfMonth(t *testing.T) {
	// 2025-03-15 20:00 UTC is already 2025-03-16 01:30 IST.
	input := time.Date(2025, 3, 15, 20, 0, 0, 0, time.UTC)
	start := StartOfMonth(input)

	if start.Year() != 2025 || start.Month() != time.March || start.Day() != 1 {
		t.Fatalf("start = %v", start)
	}
	if start.Hour() != 0 || start.Minute() != 0 {
		t.Fatalf("start not at midnight: %v", start)
	}
	if start.Location() != IST {
		t.Fatalf("start not in IST: %v", start.Location())
	}
}

func TestStartOfMonthCrossesDateLine(t *testing.T) {
	// 2025-05-31 19:00 UTC is 2025-06-01 00:30 IST: the IST month is June.
	input := time.Date(2025, 5, 31, 19, 0, 0, 0, time.UTC)
	start := StartOfMonth(input)

	if start.Month() != time.June || start.Day() != 1 {
		t.Fatalf("start = %v, want June 1 in IST", start)
	}
}

func TestEndOfMonth(t *testing.T) {
	input := time.Date(2025, 2, 10, 12, 0, 0, 0, IST)
	end := EndOfMonth(input)

	if end.Month() != time.February || end.Day() != 28 {
		t.Fatalf("end = %v", end)
	}
	if !end.Before(StartOfMonth(input).AddDate(0, 1, 0)) {
		t.Fatalf("end %v not before next month start", end)
	}
}

func TestFormatIST(t *testing.T) {
	utc := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	// Midnight UTC is 05:30 IST.
	if got := FormatIST(utc, DateTimeLayout); got != "2025-01-01 05:30:00" {
		t.Fatalf("FormatIST = %q", got)
	}
}
