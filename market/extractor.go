// Package market reduces the pricing API's nested neighborhood statistics
// into flat per-night records: market average price, occupancy, lead time
// and seasonal enrichment. All lookups are best effort — structurally
// missing data reads as absence, never as an error.
package market

import (
	"rental-pricing-ai/pricelabs"
)

// occupancyLabel is matched exactly against the Occ table's Labels
const occupancyLabel = "Occupancy"

// Bedroom-category trial orders, tried after the caller's preferred key.
// The two tables populate categories differently upstream, hence the two
// distinct orders.
var (
	priceCategoryOrder     = []string{"1", "2", "0", "3", "4"}
	occupancyCategoryOrder = []string{"3", "2", "1", "4", "5"}
)

// Indices into a percentile-price category's Y_values:
// [25th, 50th, 75th, median booked, 90th]
const (
	medianPriceSeries = 1
	bookedPriceSeries = 3
)

// MarketPriceForDate extracts the market average nightly price for a date
// from the Future Percentile Prices table. Categories are tried in order:
// the preferred bedroom key first, then a fixed fallback chain. Within the
// first category containing the date, the 50th-percentile series is read,
// falling back to the median booked price. Returns false when no category
// yields a value.
func MarketPriceForDate(nb *pricelabs.NeighborhoodData, targetDate, bedrooms string) (float64, bool) {
	if nb == nil || nb.FuturePercentilePrices == nil || nb.FuturePercentilePrices.Category == nil {
		return 0, false
	}
	categories := nb.FuturePercentilePrices.Category

	for _, key := range candidateKeys(bedrooms, priceCategoryOrder) {
		cat, ok := categories[key]
		if !ok {
			continue
		}
		dateIdx := indexOf(cat.XValues, targetDate)
		if dateIdx < 0 {
			continue
		}
		if len(cat.YValues) > medianPriceSeries {
			if v, ok := cat.YValues[medianPriceSeries].At(dateIdx); ok {
				return v, true
			}
		}
		if len(cat.YValues) > bookedPriceSeries {
			if v, ok := cat.YValues[bookedPriceSeries].At(dateIdx); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// OccupancyForDate extracts the market occupancy percentage for a date from
// the Future Occ/New/Canc table. The occupancy series is resolved by label
// position; the category fallback chain differs from the price one. The
// raw value is normalized to a 0-100 percentage.
func OccupancyForDate(nb *pricelabs.NeighborhoodData, targetDate, bedrooms string) (float64, bool) {
	if nb == nil || nb.FutureOccNewCanc == nil || nb.FutureOccNewCanc.Category == nil {
		return 0, false
	}
	table := nb.FutureOccNewCanc

	occIdx := indexOf(table.Labels, occupancyLabel)
	if occIdx < 0 {
		return 0, false
	}

	for _, key := range candidateKeys(bedrooms, occupancyCategoryOrder) {
		cat, ok := table.Category[key]
		if !ok {
			continue
		}
		dateIdx := indexOf(cat.XValues, targetDate)
		if dateIdx < 0 || len(cat.YValues) <= occIdx {
			continue
		}
		if v, ok := cat.YValues[occIdx].At(dateIdx); ok {
			return NormalizeOccupancy(v), true
		}
	}
	return 0, false
}

// NormalizeOccupancy converts a raw occupancy value to a percentage. The
// source encodes occupancy as a 0-1 fraction on some responses and as a
// percentage on others; values at or below 1.0 are treated as fractions.
func NormalizeOccupancy(v float64) float64 {
	if v <= 1.0 {
		return v * 100
	}
	return v
}

// candidateKeys returns the preferred key followed by the fixed fallback
// order. Repeating the preferred key is harmless: map lookups are
// idempotent and the first hit wins.
func candidateKeys(preferred string, order []string) []string {
	keys := make([]string, 0, len(order)+1)
	if preferred != "" {
		keys = append(keys, preferred)
	}
	return append(keys, order...)
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
