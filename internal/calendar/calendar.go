// Package calendar handles month and date keys in the board's reference timezone.
package calendar

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	// Zone data for hosts without a system database.
	_ "time/tzdata"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"
)

// Key layouts.
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// DefaultTimezone is the reference timezone when none is configured.
const DefaultTimezone = "America/Los_Angeles"

var (
	monthPattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}$`)
	datePattern  = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
)

// InvalidMonthError reports a month key that is not YYYY-MM.
type InvalidMonthError struct {
	Month string
}

func (e *InvalidMonthError) Error() string {
	return fmt.Sprintf("invalid month format %q: expected YYYY-MM", e.Month)
}

// InvalidDateError reports a date key that is not YYYY-MM-DD.
type InvalidDateError struct {
	Date string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", e.Date)
}

// ParseMonth validates a YYYY-MM key and returns the first instant of that
// month in UTC.
func ParseMonth(month string) (time.Time, error) {
	if !monthPattern.MatchString(month) {
		return time.Time{}, &InvalidMonthError{Month: month}
	}
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return time.Time{}, &InvalidMonthError{Month: month}
	}
	return t, nil
}

// MonthRange returns the first and last real calendar day of month.
func MonthRange(month string) (string, string, error) {
	first, err := ParseMonth(month)
	if err != nil {
		return "", "", err
	}
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout), nil
}

// ParseDate validates a YYYY-MM-DD key.
func ParseDate(date string) (time.Time, error) {
	if !datePattern.MatchString(date) {
		return time.Time{}, &InvalidDateError{Date: date}
	}
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, &InvalidDateError{Date: date}
	}
	return t, nil
}

// MonthOf returns the YYYY-MM key of a date key.
func MonthOf(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.Format(MonthLayout), nil
}

// PreviousDate returns the day before date.
func PreviousDate(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, -1).Format(DateLayout), nil
}

// DatesInMonth lists every date key of month in order.
func DatesInMonth(month string) ([]string, error) {
	first, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}
	var dates []string
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates, nil
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Calendar answers "today" questions in a fixed reference timezone.
type Calendar struct {
	loc   *time.Location
	clock Clock
}

// New loads the named timezone. An empty name selects DefaultTimezone; a nil
// clock selects the system clock.
func New(timezone string, clock Clock) (*Calendar, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Calendar{loc: loc, clock: clock}, nil
}

// Location returns the reference timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now returns the current time in the reference timezone.
func (c *Calendar) Now() time.Time {
	return c.clock.Now().In(c.loc)
}

// Today returns today's date key.
func (c *Calendar) Today() string {
	return c.Now().Format(DateLayout)
}

// Yesterday returns yesterday's date key.
func (c *Calendar) Yesterday() string {
	return c.Now().AddDate(0, 0, -1).Format(DateLayout)
}

// CurrentMonth returns the current month key.
func (c *Calendar) CurrentMonth() string {
	return c.Now().Format(MonthLayout)
}

// PreviousMonth returns the key of the month before the current one.
func (c *Calendar) PreviousMonth() string {
	return PreviousMonthOf(c.Now())
}

// PreviousMonthOf returns the key of the month before t's month.
func PreviousMonthOf(t time.Time) string {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, -1, 0).Format(MonthLayout)
}

// ShiftMonth returns the key delta months away from month.
func ShiftMonth(month string, delta int) (string, error) {
	first, err := ParseMonth(month)
	if err != nil {
		return "", err
	}
	return first.AddDate(0, delta, 0).Format(MonthLayout), nil
}

// ParseDateInput accepts a date key or a casual expression such as "today",
// "yesterday" or "last friday" and returns the date key it names.
func (c *Calendar) ParseDateInput(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return c.Today(), nil
	}
	if datePattern.MatchString(input) {
		if _, err := ParseDate(input); err != nil {
			return "", err
		}
		return input, nil
	}

	w := when.New(nil)
	w.Add(en.All...)

	r, err := w.Parse(strings.ToLower(input), c.Now())
	if err != nil {
		return "", fmt.Errorf("failed to parse date %q: %w", input, err)
	}
	if r == nil {
		return "", &InvalidDateError{Date: input}
	}
	return r.Time.In(c.loc).Format(DateLayout), nil
}
