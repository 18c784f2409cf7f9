package domain

import (
	"testing"
	"time"
)

func TestParseWeek(t *testing.T) {
	w, err := ParseWeek("2026-W04")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if w.Year != 2026 || w.Num != 4 {
		t.Fatalf("want 2026-W04 got %v", w)
	}
	for _, bad := range []string{"", "2026-04", "2026-W4", "2026-W00", "2026-W54", "26-W04", "2026-w04", "2026-W04x"} {
		if _, err := ParseWeek(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestWeekStartIsMonday(t *testing.T) {
	w := Week{Year: 2026, Num: 4}
	start := w.Start()
	want := time.Date(2026, time.January, 19, 0, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Fatalf("start: want %v got %v", want, start)
	}
	if start.Weekday() != time.Monday {
		t.Fatalf("start weekday: want Monday got %v", start.Weekday())
	}
}

func TestWeekStartYearRollover(t *testing.T) {
	// January 4th 2026 is a Sunday, so week 1 begins in late December 2025.
	start := Week{Year: 2026, Num: 1}.Start()
	want := time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Fatalf("want %v got %v", want, start)
	}
}

func TestWeekEndExclusive(t *testing.T) {
	w := Week{Year: 2026, Num: 4}
	if !w.Contains(w.Start()) {
		t.Fatal("start must belong to the week")
	}
	if !w.Contains(w.End().Add(-time.Second)) {
		t.Fatal("last second of Sunday must belong to the week")
	}
	if w.Contains(w.End()) {
		t.Fatal("end is exclusive")
	}
	if got := WeekOf(w.End()); got != (Week{Year: 2026, Num: 5}) {
		t.Fatalf("end belongs to next week, got %v", got)
	}
	if w.Contains(w.Start().Add(-time.Second)) {
		t.Fatal("instant before start must not belong to the week")
	}
}

func TestWeekOfYearBoundary(t *testing.T) {
	got := WeekOf(time.Date(2025, time.December, 29, 12, 0, 0, 0, time.UTC))
	if got != (Week{Year: 2026, Num: 1}) {
		t.Fatalf("want 2026-W01 got %v", got)
	}
}

func TestWeekString(t *testing.T) {
	if s := (Week{Year: 2026, Num: 4}).String(); s != "2026-W04" {
		t.Fatalf("got %q", s)
	}
}

func TestRecentWeeksRollsOverYears(t *testing.T) {
	latest := time.Date(2026, time.January, 21, 10, 0, 0, 0, time.UTC) // inside 2026-W04
	got := RecentWeeks(latest, 5)
	want := []Week{
		{2026, 4}, {2026, 3}, {2026, 2}, {2026, 1}, {2025, 52},
	}
	if len(got) != len(want) {
		t.Fatalf("want %d weeks got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("week %d: want %v got %v", i, want[i], got[i])
		}
	}
}

func TestSentimentOf(t *testing.T) {
	cases := map[int]Sentiment{
		5: Positive,
		4: Positive,
		3: Neutral,
		2: Negative,
		1: Negative,
		0: Negative,
	}
	for rating, want := range cases {
		if got := SentimentOf(rating); got != want {
			t.Fatalf("rating %d: want %v got %v", rating, want, got)
		}
	}
}
