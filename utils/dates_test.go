package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{1900, time.February, 28},
		{2000, time.February, 29},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DaysInMonth(tt.year, tt.month), "%d-%02d", tt.year, tt.month)
	}
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 9, DaysBetween(due, time.Date(2024, 4, 10, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, 0, DaysBetween(due, due.Add(5*time.Hour)))
	assert.Equal(t, -1, DaysBetween(due, due.AddDate(0, 0, -1)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-04-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-04-10T08:30:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 10, 13, 30, 0, 0, time.UTC), d)

	_, err = ParseDate("04/10/2024")
	assert.Error(t, err)
}
