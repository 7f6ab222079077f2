package analysis

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-pricing-ai/market"
	"rental-pricing-ai/pricelabs"
)

func recordWith(yourPrice *float64, marketAvg float64) market.NightlyRecord {
	return market.NightlyRecord{
		Date:           "2025-07-01",
		YourPrice:      yourPrice,
		MarketAvgPrice: marketAvg,
		MarketSource:   market.SourceReal,
	}
}

type stubSource struct {
	nights  []pricelabs.Night
	nb      *pricelabs.NeighborhoodData
	nbErr   error
	lastReq struct{ dateFrom, dateTo string }
}

func (s *stubSource) ListingPrices(ctx context.Context, listingID, pms, dateFrom, dateTo string) ([]pricelabs.Night, error) {
	s.lastReq.dateFrom = dateFrom
	s.lastReq.dateTo = dateTo
	return s.nights, nil
}

func (s *stubSource) NeighborhoodData(ctx context.Context, listingID, pms string) (*pricelabs.NeighborhoodData, error) {
	return s.nb, s.nbErr
}

type stubAnalyzer struct {
	response string
	err      error
	calls    int
}

func (a *stubAnalyzer) Analyze(ctx context.Context, prompt string) (string, error) {
	a.calls++
	return a.response, a.err
}

func loose(v float64) pricelabs.LooseFloat {
	return pricelabs.LooseFloat{Value: v, Valid: true}
}

func testOptions() Options {
	return Options{
		ListingID:         "listing-1",
		PMS:               "airbnb",
		Bedrooms:          "3",
		Model:             "test-model",
		MaxNights:         10,
		RequestsPerSecond: 1000, // no throttling in tests
	}
}

func TestFetchNightlyRecordsDegradesWithoutNeighborhood(t *testing.T) {
	source := &stubSource{
		nights: []pricelabs.Night{
			{Date: "2025-07-01", Price: loose(400)},
			{Date: "2025-07-02", Price: loose(410), BookingStatus: "Booked"},
		},
		nbErr: fmt.Errorf("upstream down"),
	}
	svc := NewService(source, nil, nil, nil, testOptions())

	records, err := svc.FetchNightlyRecords(context.Background(), "2025-07-01", "2025-07-02")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ESTIMATED", string(records[0].MarketSource))
	assert.Greater(t, records[0].MarketAvgPrice, 0.0)
}

func TestAnalyzePricingWithLLM(t *testing.T) {
	source := &stubSource{
		nights: []pricelabs.Night{
			{Date: "2025-07-01", Price: loose(400)},
			{Date: "2025-07-02", Price: loose(420)},
		},
	}
	analyzer := &stubAnalyzer{
		response: `{"suggested_price": 450, "confidence": 80, "explanation": "Push toward market.", "insight_tag": "Revenue Opportunity"}`,
	}
	svc := NewService(source, analyzer, nil, nil, testOptions())

	suggestions, err := svc.AnalyzePricing(context.Background(), "2025-07-01", "2025-07-02", nil)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, 2, analyzer.calls)

	assert.Equal(t, "2025-07-01", suggestions[0].Date)
	require.NotNil(t, suggestions[0].SuggestedPrice)
	assert.Equal(t, 450.0, *suggestions[0].SuggestedPrice)
	assert.Equal(t, "Revenue Opportunity", suggestions[0].InsightTag)
}

func TestAnalyzePricingFallsBackOnLLMError(t *testing.T) {
	source := &stubSource{
		nights: []pricelabs.Night{{Date: "2025-07-01", Price: loose(400)}},
	}
	analyzer := &stubAnalyzer{err: fmt.Errorf("model unavailable")}
	svc := NewService(source, analyzer, nil, nil, testOptions())

	suggestions, err := svc.AnalyzePricing(context.Background(), "2025-07-01", "2025-07-01", nil)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	require.NotNil(t, suggestions[0].SuggestedPrice)
	require.NotNil(t, suggestions[0].Confidence)
	assert.NotEmpty(t, suggestions[0].InsightTag)
}

func TestAnalyzePricingWithoutAnalyzer(t *testing.T) {
	source := &stubSource{
		nights: []pricelabs.Night{{Date: "2025-07-01", Price: loose(400)}},
	}
	svc := NewService(source, nil, nil, nil, testOptions())

	suggestions, err := svc.AnalyzePricing(context.Background(), "2025-07-01", "2025-07-01", nil)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	require.NotNil(t, suggestions[0].Confidence)
}

func TestAnalyzePricingCapsNights(t *testing.T) {
	var nights []pricelabs.Night
	for day := 1; day <= 20; day++ {
		nights = append(nights, pricelabs.Night{
			Date:  fmt.Sprintf("2025-07-%02d", day),
			Price: loose(400),
		})
	}
	source := &stubSource{nights: nights}
	analyzer := &stubAnalyzer{response: `{"suggested_price": 450, "confidence": 80, "explanation": "x", "insight_tag": "y"}`}

	opts := testOptions()
	opts.MaxNights = 5
	svc := NewService(source, analyzer, nil, nil, opts)

	suggestions, err := svc.AnalyzePricing(context.Background(), "2025-07-01", "2025-07-20", nil)
	require.NoError(t, err)
	assert.Len(t, suggestions, 5)
	assert.Equal(t, 5, analyzer.calls)
}

func TestRuleSuggestionScenarios(t *testing.T) {
	price := func(v float64) *float64 { return &v }

	overpriced := ruleSuggestion(recordWith(price(900), 500))
	assert.Equal(t, "Overpriced vs Market", overpriced.InsightTag)
	require.NotNil(t, overpriced.SuggestedPrice)
	assert.InDelta(t, 575.0, *overpriced.SuggestedPrice, 1e-9) // market * 1.15

	underpriced := ruleSuggestion(recordWith(price(400), 500))
	assert.Equal(t, "Revenue Opportunity", underpriced.InsightTag)
	require.NotNil(t, underpriced.SuggestedPrice)
	assert.InDelta(t, 550.0, *underpriced.SuggestedPrice, 1e-9) // market * 1.10

	aligned := ruleSuggestion(recordWith(price(510), 500))
	assert.Equal(t, "Market Aligned", aligned.InsightTag)
	require.NotNil(t, aligned.SuggestedPrice)
	assert.Equal(t, 510.0, *aligned.SuggestedPrice)

	noData := ruleSuggestion(recordWith(nil, 0))
	assert.Equal(t, "Fallback Analysis", noData.InsightTag)
	require.NotNil(t, noData.Confidence)
	assert.Equal(t, 50, *noData.Confidence)
}

func TestRevenueForecast(t *testing.T) {
	source := &stubSource{
		nights: []pricelabs.Night{
			{Date: "2025-07-01", Price: loose(400), BookingStatus: "Booked", ADR: loose(380)},
			{Date: "2025-07-02", Price: loose(400), BookingStatus: "Booked (Check-In)"},
			{Date: "2025-07-03", Price: loose(400), UserPrice: loose(450)},
			{Date: "2025-07-04", Price: loose(400)},
			{Date: "2025-07-05", Price: loose(400), Unbookable: loose(1)},
			{Date: "2025-07-06"}, // no price, skipped entirely
		},
	}
	svc := NewService(source, nil, nil, nil, testOptions())

	forecast, err := svc.RevenueForecast(context.Background(), "2025-07-01", "2025-07-06")
	require.NoError(t, err)

	// Booked: 380 (ADR) + 400 = 780. Available: 450 + 400 = 850.
	assert.Contains(t, forecast, "CONFIRMED REVENUE (Booked): $780")
	assert.Contains(t, forecast, "POTENTIAL REVENUE (Available): $850")
	assert.Contains(t, forecast, "TOTAL POTENTIAL: $1,630")
	assert.Contains(t, forecast, "5 total nights (1 unbookable)")
	assert.Contains(t, forecast, "50% occupancy rate")
}

func TestRevenueForecastNoData(t *testing.T) {
	svc := NewService(&stubSource{}, nil, nil, nil, testOptions())
	forecast, err := svc.RevenueForecast(context.Background(), "2025-07-01", "2025-07-02")
	require.NoError(t, err)
	assert.Contains(t, forecast, "No pricing data available")
}

func TestUnbookedOpenings(t *testing.T) {
	source := &stubSource{
		nights: []pricelabs.Night{
			{Date: "2025-07-01"},
			{Date: "2025-07-02"},
			{Date: "2025-07-03", BookingStatus: "Booked"},
			{Date: "2025-07-04", Unbookable: loose(1)},
			{Date: "2025-07-05"},
		},
	}
	svc := NewService(source, nil, nil, nil, testOptions())

	summary, err := svc.UnbookedOpenings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Available: 2025-07-01 to 2025-07-02 (2 nights), 2025-07-05 (1 night). Total: 2 gaps, 3 nights.", summary)
}

func TestUnbookedOpeningsEmpty(t *testing.T) {
	source := &stubSource{
		nights: []pricelabs.Night{{Date: "2025-07-01", BookingStatus: "Booked"}},
	}
	svc := NewService(source, nil, nil, nil, testOptions())

	summary, err := svc.UnbookedOpenings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "No available dates found in the next 60 days.", summary)
}
