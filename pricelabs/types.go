// Package pricelabs provides the HTTP client and wire types for the
// PriceLabs pricing API.
//
// The API is loosely typed: numeric fields arrive as numbers or strings
// depending on the listing's PMS, occupancy series are sometimes nested one
// level deeper than documented, and sentinel values (-1, 0) stand in for
// "not available". The types here absorb all of that at decode time so a
// single malformed field degrades only that field, never the whole record.
package pricelabs

import (
	"encoding/json"
	"strconv"
)

// LooseFloat decodes a JSON number or a numeric string. Anything else
// (null, objects, non-numeric strings) leaves it unset.
type LooseFloat struct {
	Value float64
	Valid bool
}

func (f *LooseFloat) UnmarshalJSON(b []byte) error {
	var num float64
	if err := json.Unmarshal(b, &num); err == nil {
		f.Value = num
		f.Valid = true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if num, err := strconv.ParseFloat(s, 64); err == nil {
			f.Value = num
			f.Valid = true
		}
	}
	return nil
}

func (f LooseFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// LooseString decodes a JSON string or number into a string. The API emits
// both for categorical fields like nhood_demand and booked_date_STLY.
type LooseString string

func (s *LooseString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = LooseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*s = LooseString(num.String())
	}
	return nil
}

// Night is one calendar date of pricing data for a listing.
type Night struct {
	Date          string     `json:"date"`
	Price         LooseFloat `json:"price"`
	UserPrice     LooseFloat `json:"user_price"`
	BookingStatus string     `json:"booking_status"`
	Unbookable    LooseFloat `json:"unbookable"`
	ADR           LooseFloat `json:"ADR"`
	DemandDesc    string     `json:"demand_desc"`
	Reason        *Reason    `json:"reason,omitempty"`
}

// Reason carries the pricing-engine explanation attached to a night when
// the listing_prices request is made with reason=true.
type Reason struct {
	ListingInfo *ListingInfo `json:"listing_info,omitempty"`
}

// ListingInfo holds per-night enrichment fields. STLY means "same time last
// year". ADR_STLY uses -1 and avg_los_STLY uses 0 as "not available".
type ListingInfo struct {
	ADRSTLY                LooseFloat  `json:"ADR_STLY"`
	NhoodDemand            LooseString `json:"nhood_demand"`
	MinimumPrice           LooseFloat  `json:"minimum_price"`
	AvgLOSSTLY             LooseFloat  `json:"avg_los_STLY"`
	MinstaySeasonalProfile string      `json:"minstay_seasonal_profile"`
	BookedDateSTLY         LooseString `json:"booked_date_STLY"`
	DateSTLY               LooseString `json:"date_STLY"`
	AvgLOS                 LooseFloat  `json:"avg_los"`
}

// Listing describes one property known to the pricing service.
type Listing struct {
	ID           string     `json:"id"`
	PMS          string     `json:"pms"`
	Name         string     `json:"name"`
	NoOfBedrooms LooseFloat `json:"no_of_bedrooms"`
}

// NeighborhoodData is the market statistics blob for a listing's area.
// Tables are keyed by bedroom-category strings ("0" = studio, "1" = 1BR...)
// and hold date-indexed metric series.
type NeighborhoodData struct {
	FuturePercentilePrices *MetricTable `json:"Future Percentile Prices"`
	FutureOccNewCanc       *MetricTable `json:"Future Occ/New/Canc"`
}

// MetricTable is one named table of the neighborhood blob. Labels name the
// metric series positionally; Category maps bedroom keys to the series.
type MetricTable struct {
	Labels   []string                  `json:"Labels"`
	Category map[string]CategorySeries `json:"Category"`
}

// CategorySeries holds parallel arrays for one bedroom category: XValues
// are date strings, YValues[i] is the series for Labels[i], each indexed in
// parallel with XValues.
type CategorySeries struct {
	XValues []string     `json:"X_values"`
	YValues []FlexSeries `json:"Y_values"`
}

// FlexSeries is one metric series. The API emits two shapes for the same
// data: a flat array of values, or an array wrapping a single inner array.
// Both are decoded; a shape matching neither is kept empty, which reads as
// absence. Null elements stay absent positions rather than zeros.
type FlexSeries struct {
	flat   []*float64
	nested [][]*float64
}

func (s *FlexSeries) UnmarshalJSON(b []byte) error {
	var flat []*float64
	if err := json.Unmarshal(b, &flat); err == nil {
		s.flat = flat
		return nil
	}
	var nested [][]*float64
	if err := json.Unmarshal(b, &nested); err == nil {
		s.nested = nested
	}
	return nil
}

func (s FlexSeries) MarshalJSON() ([]byte, error) {
	if s.nested != nil {
		return json.Marshal(s.nested)
	}
	return json.Marshal(s.flat)
}

// At returns the value at position i, descending one nesting level first
// when the series arrived doubly nested. The second return is false when
// the position is out of range or holds no value.
func (s FlexSeries) At(i int) (float64, bool) {
	values := s.flat
	if values == nil {
		if len(s.nested) == 0 {
			return 0, false
		}
		values = s.nested[0]
	}
	if i < 0 || i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}

// FlatSeries builds a FlexSeries from plain values, for tests and fixtures.
func FlatSeries(values ...float64) FlexSeries {
	ptrs := make([]*float64, len(values))
	for i := range values {
		v := values[i]
		ptrs[i] = &v
	}
	return FlexSeries{flat: ptrs}
}

// NestedSeries builds a doubly nested FlexSeries, for tests and fixtures.
func NestedSeries(values ...float64) FlexSeries {
	ptrs := make([]*float64, len(values))
	for i := range values {
		v := values[i]
		ptrs[i] = &v
	}
	return FlexSeries{nested: [][]*float64{ptrs}}
}
