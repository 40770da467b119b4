package timeparse

import (
	"fmt"
	"strings"
	"time"
)

// Format renders t in the bot's full display notation.
func Format(t time.Time) string {
	return t.Format("02.01.2006 в 15:04")
}

// FormatDate renders the date part only.
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatClock renders the clock part only.
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}

// Until describes the distance from now to target, e.g. "2 дн. 3 ч. 15 мин.".
func Until(now, target time.Time) string {
	diff := target.Sub(now)
	if diff < 0 {
		return "время истекло"
	}

	days := int(diff.Hours()) / 24
	hours := int(diff.Hours()) % 24
	minutes := int(diff.Minutes()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d дн.", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d ч.", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d мин.", minutes))
	}
	if len(parts) == 0 {
		return "менее минуты"
	}
	return strings.Join(parts, " ")
}
