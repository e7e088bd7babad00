package dates

import (
	"testing"
	"time"
)

var now = time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

func TestParseDeadlineISO(t *testing.T) {
	got := ParseDeadline("Apply by 2026-02-01 at the latest", now)
	if got == nil {
		t.Fatal("expected a deadline")
	}
	want := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseDeadlineFreeText(t *testing.T) {
	got := ParseDeadline("Deadline: 28 February 2026", now)
	if got == nil {
		t.Fatal("expected a deadline")
	}
	if got.Year() != 2026 || got.Month() != time.February || got.Day() != 28 {
		t.Fatalf("unexpected deadline %v", got)
	}
}

func TestParseDeadlineNoDate(t *testing.T) {
	if got := ParseDeadline("", now); got != nil {
		t.Fatalf("expected nil for empty text, got %v", got)
	}
}

func TestIsActiveDeadlineBoundary(t *testing.T) {
	today := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	if !IsActive(&today, nil, 45, now) {
		t.Fatal("deadline == today must be active")
	}
	if IsActive(&yesterday, nil, 45, now) {
		t.Fatal("deadline == yesterday must be inactive")
	}
}

func TestIsActiveAgeBoundary(t *testing.T) {
	maxAge := 45

	atLimit := now.AddDate(0, 0, -maxAge)
	if !IsActive(nil, &atLimit, maxAge, now) {
		t.Fatal("age == maxAgeDays must be active")
	}

	pastLimit := now.AddDate(0, 0, -(maxAge + 1))
	if IsActive(nil, &pastLimit, maxAge, now) {
		t.Fatal("age == maxAgeDays+1 must be inactive")
	}
}

func TestIsActiveNoDates(t *testing.T) {
	if IsActive(nil, nil, 45, now) {
		t.Fatal("listing without any dates must be inactive")
	}
}
