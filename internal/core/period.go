package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is an inclusive [Start, End] date range resolved from a month token
// or a year. All boundaries are UTC; callers must be consistent about the
// calendar they feed in.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the period, boundaries included.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// MonthPeriod resolves a "YYYY-MM" token into the first instant of the month
// and the last second of its final day. The end is computed as day 0 of the
// following month, which normalizes across month lengths and leap years.
func MonthPeriod(month string) (Period, error) {
	year, monthNum, err := SplitMonthToken(month)
	if err != nil {
		return Period{}, err
	}
	return Period{
		Start: time.Date(year, time.Month(monthNum), 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.Month(monthNum)+1, 0, 23, 59, 59, 0, time.UTC),
	}, nil
}

// YearPeriod resolves a year into Jan 1 00:00:00 through Dec 31 23:59:59.
func YearPeriod(year int) Period {
	return Period{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC),
	}
}

// SplitMonthToken parses "YYYY-MM" into its two integers. Anything that does
// not split into exactly two numbers, or a month outside 1-12, fails with
// ErrInvalidPeriod.
func SplitMonthToken(month string) (year, monthNum int, err error) {
	parts := strings.Split(month, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("month token %q: %w", month, ErrInvalidPeriod)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("month token %q: %w", month, ErrInvalidPeriod)
	}
	monthNum, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("month token %q: %w", month, ErrInvalidPeriod)
	}
	if monthNum < 1 || monthNum > 12 {
		return 0, 0, fmt.Errorf("month %d out of range: %w", monthNum, ErrInvalidPeriod)
	}
	return year, monthNum, nil
}

// MonthToken formats a time as the "YYYY-MM" token used across the API.
func MonthToken(t time.Time) string {
	return t.UTC().Format("2006-01")
}
