package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-01-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseDateRejectsImpossibleAndLoose(t *testing.T) {
	for _, s := range []string{"2024-02-30", "2023-02-29", "2024-13-01", "2024-1-5", "20240105", "", "2024-01-05T00:00:00Z"} {
		if _, err := ParseDate(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
	if _, err := ParseDate("2024-02-29"); err != nil {
		t.Fatalf("leap day should parse: %v", err)
	}
}

func TestBusinessDayOnOrBefore(t *testing.T) {
	sat := time.Date(2024, 1, 6, 15, 0, 0, 0, time.UTC)
	got := BusinessDayOnOrBefore(sat)
	if got.Weekday() != time.Friday || got.Day() != 5 {
		t.Fatalf("expected friday 5th, got %v", got)
	}
	wed := time.Date(2024, 1, 3, 1, 0, 0, 0, time.UTC)
	if !BusinessDayOnOrBefore(wed).Equal(TruncateDay(wed)) {
		t.Fatalf("weekday should map to itself")
	}
	mon := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	if PreviousBusinessDay(mon).Day() != 5 {
		t.Fatalf("previous business day of monday should be friday")
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, 1, 5, 1, 0, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if got := DaysBetween(b, a); got != -4 {
		t.Fatalf("expected -4, got %d", got)
	}
}

func TestNextBusinessRun(t *testing.T) {
	fri := time.Date(2024, 1, 5, 23, 0, 0, 0, time.UTC)
	got := NextBusinessRun(fri, 22, 30)
	want := time.Date(2024, 1, 8, 22, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	early := time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)
	if got := NextBusinessRun(early, 22, 30); !got.Equal(time.Date(2024, 1, 3, 22, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected same-day run, got %v", got)
	}
}

func TestExpectedAsOf(t *testing.T) {
	beforeRun := time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)
	if got := ExpectedAsOf(beforeRun, 22, 30); got.Day() != 2 {
		t.Fatalf("expected previous business day, got %v", got)
	}
	afterRun := time.Date(2024, 1, 3, 23, 0, 0, 0, time.UTC)
	if got := ExpectedAsOf(afterRun, 22, 30); got.Day() != 3 {
		t.Fatalf("expected today, got %v", got)
	}
	sunday := time.Date(2024, 1, 7, 23, 0, 0, 0, time.UTC)
	if got := ExpectedAsOf(sunday, 22, 30); got.Day() != 5 {
		t.Fatalf("expected friday, got %v", got)
	}
}
