package market

import (
	"strings"
	"time"

	"rental-pricing-ai/pricelabs"
)

// Source tags where a record's market average price came from
type Source string

const (
	SourceReal      Source = "REAL"
	SourceEstimated Source = "ESTIMATED"
)

// NightlyRecord is one flat, analysis-ready row per unbooked calendar
// date. MarketAvgPrice is always populated: extracted from neighborhood
// data when available, otherwise estimated. Pointer fields are absent when
// the source had no usable value.
type NightlyRecord struct {
	Date           string   `json:"date"`
	YourPrice      *float64 `json:"your_price,omitempty"`
	MarketAvgPrice float64  `json:"market_avg_price"`
	MarketSource   Source   `json:"market_source"`
	Occupancy      *float64 `json:"occupancy,omitempty"`
	DayOfWeek      string   `json:"day_of_week,omitempty"`
	DemandDesc     string   `json:"demand_desc,omitempty"`
	LeadTimeDays   *int     `json:"lead_time_days,omitempty"`
	ADRLastYear    *float64 `json:"adr_last_year,omitempty"`
	NhoodDemand    string   `json:"neighborhood_demand,omitempty"`
	MinPriceLimit  *float64 `json:"min_price_limit,omitempty"`
	AvgLOSLastYear *float64 `json:"avg_los_last_year,omitempty"`
	SeasonalTag    string   `json:"seasonal_profile,omitempty"`
}

// BuildRecords normalizes raw nights into analysis-ready records. Booked
// and unbookable nights are dropped, and so are records without a positive
// listing price or marked unavailable by the demand descriptor — there is
// nothing to analyze for those.
func BuildRecords(nights []pricelabs.Night, nb *pricelabs.NeighborhoodData, bedrooms string) []NightlyRecord {
	records := make([]NightlyRecord, 0, len(nights))
	for _, night := range nights {
		rec, ok := BuildRecord(night, nb, bedrooms)
		if !ok {
			continue
		}
		if rec.YourPrice == nil || *rec.YourPrice <= 0 {
			continue
		}
		if strings.EqualFold(rec.DemandDesc, "unavailable") {
			continue
		}
		records = append(records, *rec)
	}
	return records
}

// BuildRecord assembles one NightlyRecord from a raw night and the
// neighborhood blob. Returns false for booked or unbookable nights. Every
// field extraction is independently guarded: a bad field costs that field,
// not the record.
func BuildRecord(night pricelabs.Night, nb *pricelabs.NeighborhoodData, bedrooms string) (*NightlyRecord, bool) {
	if strings.Contains(strings.ToLower(night.BookingStatus), "booked") {
		return nil, false
	}
	if night.Unbookable.Valid && night.Unbookable.Value != 0 {
		return nil, false
	}

	rec := &NightlyRecord{
		Date:       night.Date,
		DemandDesc: night.DemandDesc,
	}

	// Owner-set override price wins over the listed price
	if night.UserPrice.Valid && night.UserPrice.Value > 0 {
		v := night.UserPrice.Value
		rec.YourPrice = &v
	} else if night.Price.Valid {
		v := night.Price.Value
		rec.YourPrice = &v
	}

	if price, ok := MarketPriceForDate(nb, night.Date, bedrooms); ok {
		rec.MarketAvgPrice = price
		rec.MarketSource = SourceReal
	} else {
		current := 0.0
		if rec.YourPrice != nil {
			current = *rec.YourPrice
		}
		rec.MarketAvgPrice = SeasonalEstimate(current, night.Date)
		rec.MarketSource = SourceEstimated
	}

	if occ, ok := OccupancyForDate(nb, night.Date, bedrooms); ok {
		rec.Occupancy = &occ
	}

	if d, err := time.Parse("2006-01-02", night.Date); err == nil {
		rec.DayOfWeek = d.Weekday().String()
	}

	if night.Reason != nil && night.Reason.ListingInfo != nil {
		applyListingInfo(rec, night.Reason.ListingInfo)
	}

	return rec, true
}

// applyListingInfo copies enrichment fields, honoring the source's
// sentinels: ADR_STLY of -1 and avg_los_STLY of 0 both mean "not
// available".
func applyListingInfo(rec *NightlyRecord, info *pricelabs.ListingInfo) {
	if info.ADRSTLY.Valid && info.ADRSTLY.Value != -1 {
		v := info.ADRSTLY.Value
		rec.ADRLastYear = &v
	}
	rec.NhoodDemand = string(info.NhoodDemand)
	if info.MinimumPrice.Valid && info.MinimumPrice.Value > 0 {
		v := info.MinimumPrice.Value
		rec.MinPriceLimit = &v
	}
	if info.AvgLOSSTLY.Valid && info.AvgLOSSTLY.Value > 0 {
		v := info.AvgLOSSTLY.Value
		rec.AvgLOSLastYear = &v
	}
	rec.SeasonalTag = info.MinstaySeasonalProfile

	if days, ok := historicalLeadTime(string(info.BookedDateSTLY), string(info.DateSTLY)); ok {
		rec.LeadTimeDays = &days
	}
}

// historicalLeadTime derives a lead-time signal from last year's booking:
// days between the reservation date and the stay date. The booked date
// carries a "-1" sentinel when unknown; only strictly positive spans count.
func historicalLeadTime(bookedDate, stayDate string) (int, bool) {
	if bookedDate == "" || bookedDate == "-1" || stayDate == "" {
		return 0, false
	}
	booked, err := time.Parse("2006-01-02", bookedDate)
	if err != nil {
		return 0, false
	}
	stay, err := time.Parse("2006-01-02", stayDate)
	if err != nil {
		return 0, false
	}
	days := int(stay.Sub(booked).Hours() / 24)
	if days <= 0 {
		return 0, false
	}
	return days, true
}
