package timeparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidExpression reports that a time pattern matched but one of its
// numeric components is out of range (month 13, hour 25 and so on). Callers
// usually treat it the same as no match, but it must stay distinguishable.
var ErrInvalidExpression = errors.New("invalid time expression")

// Result is the outcome of extracting a time expression from free text.
// When Matched is false Remainder equals the input unchanged.
type Result struct {
	Time      time.Time
	Matched   bool
	Remainder string
}

// Recognized vocabulary. Longer inflections go first inside each alternation
// so the regexp engine does not stop at a shorter prefix.
var (
	relativeRe = regexp.MustCompile(`(?i)(?:через\s+)?(\d+)\s+(минуту|минуты|минут|часов|часа|час|дней|дня|день|недель|недели|неделю)`)
	namedDayRe = regexp.MustCompile(`(?i)(послезавтра|завтра|сегодня)`)

	dateTimeYearRe = regexp.MustCompile(`(?i)(\d{1,2})\.(\d{1,2})\.(\d{4})\s+(?:в\s+)?(\d{1,2}):(\d{2})`)
	dateTimeRe     = regexp.MustCompile(`(?i)(\d{1,2})\.(\d{1,2})\s+(?:в\s+)?(\d{1,2}):(\d{2})`)
	clockRe        = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	dateYearRe     = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})`)
	dateRe         = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})`)

	weekdayRe = regexp.MustCompile(`(?i)(понедельник|вторник|среду|среда|четверг|пятницу|пятница|субботу|суббота|воскресенье)`)
)

var weekdays = map[string]time.Weekday{
	"понедельник": time.Monday,
	"вторник":     time.Tuesday,
	"среда":       time.Wednesday,
	"среду":       time.Wednesday,
	"четверг":     time.Thursday,
	"пятница":     time.Friday,
	"пятницу":     time.Friday,
	"суббота":     time.Saturday,
	"субботу":     time.Saturday,
	"воскресенье": time.Sunday,
}

// Parse extracts the first recognizable time expression from text and
// resolves it against ref. Patterns are tried in a fixed priority: relative
// offsets, named days, numeric date/time notations (most specific first),
// weekday names. Parse is pure; ref supplies "now" and the location.
func Parse(text string, ref time.Time) (Result, error) {
	if loc := relativeRe.FindStringSubmatchIndex(text); loc != nil {
		t, err := resolveRelative(text, loc, ref)
		if err != nil {
			return Result{Remainder: text}, err
		}
		return matched(text, loc[0], loc[1], t), nil
	}

	if loc := namedDayRe.FindStringIndex(text); loc != nil {
		t := resolveNamedDay(strings.ToLower(text[loc[0]:loc[1]]), ref)
		return matched(text, loc[0], loc[1], t), nil
	}

	if res, ok, err := parseAbsolute(text, ref); ok {
		return res, err
	}

	if loc := weekdayRe.FindStringIndex(text); loc != nil {
		t := resolveWeekday(strings.ToLower(text[loc[0]:loc[1]]), ref)
		return matched(text, loc[0], loc[1], t), nil
	}

	return Result{Remainder: text}, nil
}

func matched(text string, start, end int, t time.Time) Result {
	rest := strings.Join(strings.Fields(text[:start]+" "+text[end:]), " ")
	return Result{Time: t, Matched: true, Remainder: rest}
}

func resolveRelative(text string, loc []int, ref time.Time) (time.Time, error) {
	amount, err := strconv.Atoi(text[loc[2]:loc[3]])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: offset %q", ErrInvalidExpression, text[loc[2]:loc[3]])
	}
	unit := strings.ToLower(text[loc[4]:loc[5]])
	switch {
	case strings.HasPrefix(unit, "минут"):
		return ref.Add(time.Duration(amount) * time.Minute), nil
	case strings.HasPrefix(unit, "час"):
		return ref.Add(time.Duration(amount) * time.Hour), nil
	case strings.HasPrefix(unit, "недел"):
		return ref.AddDate(0, 0, 7*amount), nil
	default: // день, дня, дней
		return ref.AddDate(0, 0, amount), nil
	}
}

func resolveNamedDay(word string, ref time.Time) time.Time {
	switch word {
	case "послезавтра":
		return atMorning(ref, 2)
	case "завтра":
		return atMorning(ref, 1)
	default: // сегодня
		return atMorning(ref, 0)
	}
}

// parseAbsolute tries the numeric notations from most to least specific.
// The bool reports whether any pattern matched at all.
func parseAbsolute(text string, ref time.Time) (Result, bool, error) {
	if loc := dateTimeYearRe.FindStringSubmatchIndex(text); loc != nil {
		day, month, year := num(text, loc, 1), num(text, loc, 2), num(text, loc, 3)
		hour, minute := num(text, loc, 4), num(text, loc, 5)
		if err := validate(year, month, day, hour, minute); err != nil {
			return Result{Remainder: text}, true, err
		}
		t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, ref.Location())
		return matched(text, loc[0], loc[1], t), true, nil
	}

	if loc := dateTimeRe.FindStringSubmatchIndex(text); loc != nil {
		day, month := num(text, loc, 1), num(text, loc, 2)
		hour, minute := num(text, loc, 3), num(text, loc, 4)
		if err := validate(ref.Year(), month, day, hour, minute); err != nil {
			return Result{Remainder: text}, true, err
		}
		t := time.Date(ref.Year(), time.Month(month), day, hour, minute, 0, 0, ref.Location())
		return matched(text, loc[0], loc[1], t), true, nil
	}

	if loc := clockRe.FindStringSubmatchIndex(text); loc != nil {
		hour, minute := num(text, loc, 1), num(text, loc, 2)
		if err := validateClock(hour, minute); err != nil {
			return Result{Remainder: text}, true, err
		}
		// A bare clock time means the next occurrence of it: roll to
		// tomorrow when the moment already passed today.
		days := 0
		if hour < ref.Hour() || (hour == ref.Hour() && minute <= ref.Minute()) {
			days = 1
		}
		t := time.Date(ref.Year(), ref.Month(), ref.Day()+days, hour, minute, 0, 0, ref.Location())
		return matched(text, loc[0], loc[1], t), true, nil
	}

	if loc := dateYearRe.FindStringSubmatchIndex(text); loc != nil {
		day, month, year := num(text, loc, 1), num(text, loc, 2), num(text, loc, 3)
		if err := validate(year, month, day, 9, 0); err != nil {
			return Result{Remainder: text}, true, err
		}
		t := time.Date(year, time.Month(month), day, 9, 0, 0, 0, ref.Location())
		return matched(text, loc[0], loc[1], t), true, nil
	}

	if loc := dateRe.FindStringSubmatchIndex(text); loc != nil {
		day, month := num(text, loc, 1), num(text, loc, 2)
		if err := validate(ref.Year(), month, day, 9, 0); err != nil {
			return Result{Remainder: text}, true, err
		}
		t := time.Date(ref.Year(), time.Month(month), day, 9, 0, 0, 0, ref.Location())
		// No year given: a date already behind the reference means the
		// next year's occurrence.
		if t.Before(ref) {
			t = time.Date(ref.Year()+1, time.Month(month), day, 9, 0, 0, 0, ref.Location())
		}
		return matched(text, loc[0], loc[1], t), true, nil
	}

	return Result{}, false, nil
}

func resolveWeekday(word string, ref time.Time) time.Time {
	target := weekdays[word]
	days := (int(target) - int(ref.Weekday()) + 7) % 7
	if days == 0 {
		// Today's weekday always means the next week, never today.
		days = 7
	}
	return atMorning(ref, days)
}

// atMorning returns ref shifted by days whole days, fixed at 09:00 local.
func atMorning(ref time.Time, days int) time.Time {
	year, month, day := ref.Date()
	return time.Date(year, month, day+days, 9, 0, 0, 0, ref.Location())
}

func num(text string, loc []int, group int) int {
	n, _ := strconv.Atoi(text[loc[2*group] : loc[2*group+1]])
	return n
}

func validate(year, month, day, hour, minute int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidExpression, month)
	}
	if day < 1 || day > DaysInMonth(year, time.Month(month)) {
		return fmt.Errorf("%w: day %d of %d.%d", ErrInvalidExpression, day, month, year)
	}
	return validateClock(hour, minute)
}

func validateClock(hour, minute int) error {
	if hour > 23 {
		return fmt.Errorf("%w: hour %d", ErrInvalidExpression, hour)
	}
	if minute > 59 {
		return fmt.Errorf("%w: minute %d", ErrInvalidExpression, minute)
	}
	return nil
}

// DaysInMonth returns the number of days in the given month of year.
func DaysInMonth(year int, month time.Month) int {
	// First of the next month, rolled back a day.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
