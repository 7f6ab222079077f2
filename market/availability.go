package market

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// AvailabilityRange is a maximal run of consecutive unbooked dates
type AvailabilityRange struct {
	Start  string `json:"start_date"`
	End    string `json:"end_date"`
	Nights int    `json:"night_count"`
}

// GroupConsecutiveDates collapses unbooked dates into contiguous ranges.
// Input order does not matter; duplicates and unparseable dates are
// dropped. One linear scan over the sorted dates: the current range is
// extended while the next date is exactly one day after its end.
func GroupConsecutiveDates(dates []string) []AvailabilityRange {
	parsed := make([]time.Time, 0, len(dates))
	for _, s := range dates {
		if d, err := time.Parse("2006-01-02", s); err == nil {
			parsed = append(parsed, d)
		}
	}
	if len(parsed) == 0 {
		return nil
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Before(parsed[j]) })

	var ranges []AvailabilityRange
	start, end := parsed[0], parsed[0]

	for _, d := range parsed[1:] {
		if d.Equal(end) {
			continue
		}
		if d.Equal(end.AddDate(0, 0, 1)) {
			end = d
			continue
		}
		ranges = append(ranges, closeRange(start, end))
		start, end = d, d
	}
	ranges = append(ranges, closeRange(start, end))

	return ranges
}

func closeRange(start, end time.Time) AvailabilityRange {
	nights := int(end.Sub(start).Hours()/24) + 1
	return AvailabilityRange{
		Start:  start.Format("2006-01-02"),
		End:    end.Format("2006-01-02"),
		Nights: nights,
	}
}

// String renders a range the way availability answers read:
// "2025-07-05 (1 night)" or "2025-07-01 to 2025-07-03 (3 nights)".
func (r AvailabilityRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%s (1 night)", r.Start)
	}
	return fmt.Sprintf("%s to %s (%d nights)", r.Start, r.End, r.Nights)
}

// FormatAvailability renders grouped ranges as one human-readable summary
func FormatAvailability(ranges []AvailabilityRange) string {
	if len(ranges) == 0 {
		return "No available dates found in the next 60 days."
	}

	parts := make([]string, len(ranges))
	totalNights := 0
	for i, r := range ranges {
		parts[i] = r.String()
		totalNights += r.Nights
	}

	return fmt.Sprintf("Available: %s. Total: %d gaps, %d nights.",
		strings.Join(parts, ", "), len(ranges), totalNights)
}
