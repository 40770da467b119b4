package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	ts := time.Date(2024, time.December, 25, 9, 5, 0, 0, msk)
	assert.Equal(t, "25.12.2024 в 09:05", Format(ts))
	assert.Equal(t, "25.12.2024", FormatDate(ts))
	assert.Equal(t, "09:05", FormatClock(ts))
}

func TestUntil(t *testing.T) {
	now := time.Date(2024, time.June, 11, 10, 0, 0, 0, msk)
	tests := []struct {
		target time.Time
		want   string
	}{
		{now.Add(-time.Minute), "время истекло"},
		{now.Add(30 * time.Second), "менее минуты"},
		{now.Add(5 * time.Minute), "5 мин."},
		{now.Add(3*time.Hour + 15*time.Minute), "3 ч. 15 мин."},
		{now.Add(49*time.Hour + 1*time.Minute), "2 дн. 1 ч. 1 мин."},
		{now.Add(24 * time.Hour), "1 дн."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Until(now, tt.target))
	}
}
