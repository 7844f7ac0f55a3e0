// Package editwindow decides whether a day's scores may still be changed.
package editwindow

import (
	"errors"
	"time"

	"github.com/verte-zerg/puzzlescore/internal/calendar"
)

// Reasons a caller may not edit a date.
var (
	ErrNotAdmin      = errors.New("only admins can edit scores")
	ErrOutsideWindow = errors.New("only today and yesterday can be edited")
	ErrFinalized     = errors.New("scores for this date are finalized")
)

// Policy allows admins to edit today and yesterday until the date is finalized.
// WindowDays widens the window; zero means today and yesterday.
type Policy struct {
	WindowDays int
}

// Check returns nil when the date is editable, or the first rule it breaks.
// today is the current date key in the reference timezone; finalized holds
// the finalized flag of every stored record for date.
func (p Policy) Check(date, today string, finalized []bool, isAdmin bool) error {
	if !isAdmin {
		return ErrNotAdmin
	}
	if !p.inWindow(date, today) {
		return ErrOutsideWindow
	}
	for _, f := range finalized {
		if f {
			return ErrFinalized
		}
	}
	return nil
}

// CanEdit reports whether Check passes.
func (p Policy) CanEdit(date, today string, finalized []bool, isAdmin bool) bool {
	return p.Check(date, today, finalized, isAdmin) == nil
}

func (p Policy) inWindow(date, today string) bool {
	d, err := calendar.ParseDate(date)
	if err != nil {
		return false
	}
	t, err := calendar.ParseDate(today)
	if err != nil {
		return false
	}
	days := p.WindowDays
	if days <= 0 {
		days = 1
	}
	age := int(t.Sub(d) / (24 * time.Hour))
	return !d.After(t) && age <= days
}
