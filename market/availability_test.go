package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupConsecutiveDates(t *testing.T) {
	dates := []string{
		"2025-07-01", "2025-07-02", "2025-07-03",
		"2025-07-05",
		"2025-07-10", "2025-07-11",
	}

	ranges := GroupConsecutiveDates(dates)
	require.Len(t, ranges, 3)

	assert.Equal(t, AvailabilityRange{Start: "2025-07-01", End: "2025-07-03", Nights: 3}, ranges[0])
	assert.Equal(t, AvailabilityRange{Start: "2025-07-05", End: "2025-07-05", Nights: 1}, ranges[1])
	assert.Equal(t, AvailabilityRange{Start: "2025-07-10", End: "2025-07-11", Nights: 2}, ranges[2])
}

func TestGroupConsecutiveDatesUnsortedInput(t *testing.T) {
	ranges := GroupConsecutiveDates([]string{"2025-07-03", "2025-07-01", "2025-07-02"})
	require.Len(t, ranges, 1)
	assert.Equal(t, AvailabilityRange{Start: "2025-07-01", End: "2025-07-03", Nights: 3}, ranges[0])
}

func TestGroupConsecutiveDatesDuplicatesAndGarbage(t *testing.T) {
	ranges := GroupConsecutiveDates([]string{"2025-07-01", "2025-07-01", "not-a-date", "2025-07-02"})
	require.Len(t, ranges, 1)
	assert.Equal(t, 2, ranges[0].Nights)

	assert.Nil(t, GroupConsecutiveDates(nil))
	assert.Nil(t, GroupConsecutiveDates([]string{"garbage"}))
}

func TestGroupConsecutiveDatesMonthBoundary(t *testing.T) {
	ranges := GroupConsecutiveDates([]string{"2025-07-31", "2025-08-01"})
	require.Len(t, ranges, 1)
	assert.Equal(t, AvailabilityRange{Start: "2025-07-31", End: "2025-08-01", Nights: 2}, ranges[0])
}

func TestAvailabilityRangeString(t *testing.T) {
	single := AvailabilityRange{Start: "2025-07-05", End: "2025-07-05", Nights: 1}
	assert.Equal(t, "2025-07-05 (1 night)", single.String())

	multi := AvailabilityRange{Start: "2025-07-01", End: "2025-07-03", Nights: 3}
	assert.Equal(t, "2025-07-01 to 2025-07-03 (3 nights)", multi.String())
}

func TestFormatAvailability(t *testing.T) {
	ranges := []AvailabilityRange{
		{Start: "2025-07-01", End: "2025-07-03", Nights: 3},
		{Start: "2025-07-05", End: "2025-07-05", Nights: 1},
	}

	got := FormatAvailability(ranges)
	assert.Equal(t, "Available: 2025-07-01 to 2025-07-03 (3 nights), 2025-07-05 (1 night). Total: 2 gaps, 4 nights.", got)
}

func TestFormatAvailabilityEmpty(t *testing.T) {
	assert.Equal(t, "No available dates found in the next 60 days.", FormatAvailability(nil))
}
