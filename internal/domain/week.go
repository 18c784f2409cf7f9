package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Week identifies one ISO 8601 week: Monday start, week 1 is the week
// containing January 4th of its year.
type Week struct {
	Year int
	Num  int
}

var weekTokenRE = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// ParseWeek parses a YYYY-Www token.
func ParseWeek(s string) (Week, error) {
	m := weekTokenRE.FindStringSubmatch(s)
	if m == nil {
		return Week{}, fmt.Errorf("invalid ISO week %q (want YYYY-Www)", s)
	}
	year, _ := strconv.Atoi(m[1])
	num, _ := strconv.Atoi(m[2])
	if num < 1 || num > 53 {
		return Week{}, fmt.Errorf("invalid ISO week %q: week number out of range", s)
	}
	return Week{Year: year, Num: num}, nil
}

// WeekOf returns the ISO week containing t.
func WeekOf(t time.Time) Week {
	y, w := t.ISOWeek()
	return Week{Year: y, Num: w}
}

// Start returns the week's Monday at 00:00 UTC. January 4th always falls
// inside week 1, so the Monday of its week anchors the year's grid.
func (w Week) Start() time.Time {
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	wd := int(jan4.Weekday())
	if wd == 0 { // Sunday
		wd = 7
	}
	monday := jan4.AddDate(0, 0, 1-wd)
	return monday.AddDate(0, 0, (w.Num-1)*7)
}

// End returns the exclusive upper bound: the next Monday at 00:00 UTC.
// A review stamped exactly at End belongs to the following week.
func (w Week) End() time.Time {
	return w.Start().AddDate(0, 0, 7)
}

// Contains reports whether t falls inside [Start, End).
func (w Week) Contains(t time.Time) bool {
	return !t.Before(w.Start()) && t.Before(w.End())
}

func (w Week) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Num)
}

// RecentWeeks lists the n ISO weeks ending at the week containing latest,
// most recent first. Week numbers roll over year boundaries using
// December 28th, which always sits inside the last ISO week of its year.
func RecentWeeks(latest time.Time, n int) []Week {
	if n <= 0 {
		return nil
	}
	base := WeekOf(latest)
	out := make([]Week, 0, n)
	for i := 0; i < n; i++ {
		year, num := base.Year, base.Num-i
		for num <= 0 {
			year--
			_, weeksInYear := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
			num += weeksInYear
		}
		out = append(out, Week{Year: year, Num: num})
	}
	return out
}
