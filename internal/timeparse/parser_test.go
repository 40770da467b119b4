package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var msk = time.FixedZone("MSK", 3*60*60)

// Tuesday, 10:00.
var ref = time.Date(2024, time.June, 11, 10, 0, 0, 0, msk)

func TestParseRelativeOffsets(t *testing.T) {
	tests := []struct {
		text string
		want time.Time
	}{
		{"через 5 минут", ref.Add(5 * time.Minute)},
		{"через 1 минуту", ref.Add(time.Minute)},
		{"через 2 минуты", ref.Add(2 * time.Minute)},
		{"через 1 час", ref.Add(time.Hour)},
		{"через 3 часа", ref.Add(3 * time.Hour)},
		{"через 12 часов", ref.Add(12 * time.Hour)},
		{"через 1 день", ref.AddDate(0, 0, 1)},
		{"через 4 дня", ref.AddDate(0, 0, 4)},
		{"через 10 дней", ref.AddDate(0, 0, 10)},
		{"через 1 неделю", ref.AddDate(0, 0, 7)},
		{"через 2 недели", ref.AddDate(0, 0, 14)},
		{"через 6 недель", ref.AddDate(0, 0, 42)},
		{"5 минут", ref.Add(5 * time.Minute)}, // "через" is optional
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res, err := Parse(tt.text, ref)
			require.NoError(t, err)
			require.True(t, res.Matched)
			assert.True(t, res.Time.Equal(tt.want), "got %v want %v", res.Time, tt.want)
		})
	}
}

func TestParseNamedDays(t *testing.T) {
	tests := []struct {
		text string
		days int
	}{
		{"сегодня", 0},
		{"завтра", 1},
		{"послезавтра", 2},
		{"ЗАВТРА", 1},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res, err := Parse(tt.text, ref)
			require.NoError(t, err)
			require.True(t, res.Matched)
			want := time.Date(2024, time.June, 11+tt.days, 9, 0, 0, 0, msk)
			assert.True(t, res.Time.Equal(want), "got %v want %v", res.Time, want)
		})
	}
}

func TestParseClockRollForward(t *testing.T) {
	tests := []struct {
		name string
		text string
		ref  time.Time
		want time.Time
	}{
		{
			name: "later today stays today",
			text: "15:30",
			ref:  time.Date(2024, time.June, 11, 10, 0, 0, 0, msk),
			want: time.Date(2024, time.June, 11, 15, 30, 0, 0, msk),
		},
		{
			name: "already passed rolls to tomorrow",
			text: "15:30",
			ref:  time.Date(2024, time.June, 11, 16, 0, 0, 0, msk),
			want: time.Date(2024, time.June, 12, 15, 30, 0, 0, msk),
		},
		{
			name: "exact same minute rolls to tomorrow",
			text: "10:00",
			ref:  time.Date(2024, time.June, 11, 10, 0, 0, 0, msk),
			want: time.Date(2024, time.June, 12, 10, 0, 0, 0, msk),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(tt.text, tt.ref)
			require.NoError(t, err)
			require.True(t, res.Matched)
			assert.True(t, res.Time.Equal(tt.want), "got %v want %v", res.Time, tt.want)
		})
	}
}

func TestParseAbsoluteDates(t *testing.T) {
	tests := []struct {
		text string
		want time.Time
	}{
		{"25.12.2024 в 10:00", time.Date(2024, time.December, 25, 10, 0, 0, 0, msk)},
		{"25.12.2024 10:00", time.Date(2024, time.December, 25, 10, 0, 0, 0, msk)},
		{"25.12 в 18:45", time.Date(2024, time.December, 25, 18, 45, 0, 0, msk)},
		{"25.12.2024", time.Date(2024, time.December, 25, 9, 0, 0, 0, msk)},
		{"25.12", time.Date(2024, time.December, 25, 9, 0, 0, 0, msk)},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res, err := Parse(tt.text, ref)
			require.NoError(t, err)
			require.True(t, res.Matched)
			assert.True(t, res.Time.Equal(tt.want), "got %v want %v", res.Time, tt.want)
		})
	}
}

func TestParseDateYearRollForward(t *testing.T) {
	// Jan 31 at 09:00 is already behind a June reference.
	res, err := Parse("31.01", ref)
	require.NoError(t, err)
	require.True(t, res.Matched)
	want := time.Date(2025, time.January, 31, 9, 0, 0, 0, msk)
	assert.True(t, res.Time.Equal(want), "got %v want %v", res.Time, want)

	// A future date keeps the reference year.
	res, err = Parse("31.12", ref)
	require.NoError(t, err)
	require.True(t, res.Matched)
	want = time.Date(2024, time.December, 31, 9, 0, 0, 0, msk)
	assert.True(t, res.Time.Equal(want), "got %v want %v", res.Time, want)
}

func TestParseWeekdays(t *testing.T) {
	// ref is Tuesday June 11.
	tests := []struct {
		text string
		want time.Time
	}{
		{"в понедельник", time.Date(2024, time.June, 17, 9, 0, 0, 0, msk)},
		{"в среду", time.Date(2024, time.June, 12, 9, 0, 0, 0, msk)},
		{"в пятницу", time.Date(2024, time.June, 14, 9, 0, 0, 0, msk)},
		{"в воскресенье", time.Date(2024, time.June, 16, 9, 0, 0, 0, msk)},
		// Today's weekday means next week, never today.
		{"во вторник", time.Date(2024, time.June, 18, 9, 0, 0, 0, msk)},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res, err := Parse(tt.text, ref)
			require.NoError(t, err)
			require.True(t, res.Matched)
			assert.True(t, res.Time.Equal(tt.want), "got %v want %v", res.Time, tt.want)
		})
	}
}

func TestParseRelativeUnitNeedsAmount(t *testing.T) {
	// A bare unit word without a number is not a relative offset.
	res, err := Parse("через час позвонить", ref)
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Equal(t, "через час позвонить", res.Remainder)
}

func TestParseNoMatchLeavesTextUntouched(t *testing.T) {
	for _, text := range []string{"купить хлеб", "", "позвонить маме  срочно", "hello world"} {
		res, err := Parse(text, ref)
		require.NoError(t, err)
		assert.False(t, res.Matched)
		assert.Equal(t, text, res.Remainder)
	}
}

func TestParseRemainder(t *testing.T) {
	tests := []struct {
		text      string
		remainder string
	}{
		{"купить хлеб завтра", "купить хлеб"},
		{"через 5 минут позвонить маме", "позвонить маме"},
		{"встреча 25.12.2024 в 10:00 с командой", "встреча с командой"},
		{"завтра", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res, err := Parse(tt.text, ref)
			require.NoError(t, err)
			require.True(t, res.Matched)
			assert.Equal(t, tt.remainder, res.Remainder)
		})
	}
}

func TestParseInvalidComponents(t *testing.T) {
	tests := []string{
		"25.13.2024 в 10:00", // month 13
		"32.12.2024",         // day 32
		"25.12.2024 в 25:00", // hour 25
		"25.12.2024 в 10:60", // minute 60
		"29.02.2023",         // not a leap year
		"31.04",              // April has 30 days
	}
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			res, err := Parse(text, ref)
			require.ErrorIs(t, err, ErrInvalidExpression)
			assert.False(t, res.Matched)
			assert.Equal(t, text, res.Remainder)
		})
	}
}

func TestParseLeapDayWithExplicitYear(t *testing.T) {
	res, err := Parse("29.02.2024", ref)
	require.NoError(t, err)
	require.True(t, res.Matched)
	want := time.Date(2024, time.February, 29, 9, 0, 0, 0, msk)
	assert.True(t, res.Time.Equal(want))
}

func TestParsePriorityRelativeBeforeAbsolute(t *testing.T) {
	// Both a relative offset and a clock time are present, the relative
	// pattern wins.
	res, err := Parse("через 10 минут в 15:30", ref)
	require.NoError(t, err)
	require.True(t, res.Matched)
	assert.True(t, res.Time.Equal(ref.Add(10*time.Minute)))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(2023, time.February))
	assert.Equal(t, 31, DaysInMonth(2024, time.January))
	assert.Equal(t, 30, DaysInMonth(2024, time.April))
	assert.Equal(t, 31, DaysInMonth(2024, time.December))
}
