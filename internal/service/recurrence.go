package service

import (
	"errors"
	"fmt"
	"time"

	"notesbot/internal/model"
	"notesbot/internal/timeparse"
)

// ErrInvalidRecurrence reports a repeat kind or interval the calculator
// cannot work with. It indicates a caller bug and is never swallowed.
var ErrInvalidRecurrence = errors.New("invalid recurrence")

// NextOccurrence advances current by interval steps of the given repeat kind.
// Month and year steps use calendar arithmetic: the day of month is kept when
// the target month has it and clamped to the month's last day otherwise
// (Jan 31 + 1 month is Feb 28 or 29, never Mar 2).
func NextOccurrence(current time.Time, kind model.RepeatKind, interval int) (time.Time, error) {
	if interval < 1 {
		return time.Time{}, fmt.Errorf("%w: interval %d", ErrInvalidRecurrence, interval)
	}

	switch kind {
	case model.RepeatDaily:
		return current.AddDate(0, 0, interval), nil
	case model.RepeatWeekly:
		return current.AddDate(0, 0, 7*interval), nil
	case model.RepeatMonthly:
		return addMonthsClamped(current, interval), nil
	case model.RepeatYearly:
		return addMonthsClamped(current, 12*interval), nil
	default:
		return time.Time{}, fmt.Errorf("%w: kind %q", ErrInvalidRecurrence, kind)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	// time.Date normalizes the month overflow for us; the day is applied
	// afterwards so that it clamps instead of spilling into the next month.
	first := time.Date(year, month+time.Month(months), 1, hour, minute, sec, t.Nanosecond(), t.Location())
	if last := timeparse.DaysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}
