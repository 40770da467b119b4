package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("09:00")
	require.NoError(t, err)
	assert.Equal(t, "0 0 9 * * *", spec)

	spec, err = buildDailySpec("23:59")
	require.NoError(t, err)
	assert.Equal(t, "0 59 23 * * *", spec)
}

func TestBuildDailySpecRejectsBadInput(t *testing.T) {
	for _, raw := range []string{"", "9", "24:00", "12:60", "ab:cd", "12:00:00"} {
		_, err := buildDailySpec(raw)
		assert.Error(t, err, "input %q", raw)
	}
}
