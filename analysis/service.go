// Package analysis orchestrates pricing work for one listing: pulling
// market data, normalizing it, running LLM analysis per night, and
// producing calendar and revenue summaries.
package analysis

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/time/rate"

	"rental-pricing-ai/cache"
	"rental-pricing-ai/database"
	"rental-pricing-ai/llm"
	"rental-pricing-ai/market"
	"rental-pricing-ai/pricelabs"
)

// suggestionTTL bounds how long a cached night analysis is reused
const suggestionTTL = 6 * time.Hour

// availabilityWindowDays is how far ahead calendar questions look
const availabilityWindowDays = 60

// PricingSource provides raw market data for a listing
type PricingSource interface {
	ListingPrices(ctx context.Context, listingID, pms, dateFrom, dateTo string) ([]pricelabs.Night, error)
	NeighborhoodData(ctx context.Context, listingID, pms string) (*pricelabs.NeighborhoodData, error)
}

// Analyzer produces a pricing recommendation for a single prompt
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Service coordinates fetching, normalization, and analysis for the
// configured listing. The cache, database, and analyzer are optional; a
// nil analyzer falls back to rule-based suggestions.
type Service struct {
	source   PricingSource
	analyzer Analyzer
	cache    *cache.AnalysisCache
	db       *database.Database
	limiter  *rate.Limiter

	listingID string
	pms       string
	bedrooms  string
	model     string
	maxNights int
}

// Options configures a Service
type Options struct {
	ListingID         string
	PMS               string
	Bedrooms          string
	Model             string
	MaxNights         int
	RequestsPerSecond float64
}

// NewService creates an analysis service
func NewService(source PricingSource, analyzer Analyzer, analysisCache *cache.AnalysisCache, db *database.Database, opts Options) *Service {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	maxNights := opts.MaxNights
	if maxNights <= 0 {
		maxNights = 30
	}

	return &Service{
		source:    source,
		analyzer:  analyzer,
		cache:     analysisCache,
		db:        db,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		listingID: opts.ListingID,
		pms:       opts.PMS,
		bedrooms:  opts.Bedrooms,
		model:     opts.Model,
		maxNights: maxNights,
	}
}

// FetchNightlyRecords pulls raw calendar and neighborhood data and
// normalizes them into analysis-ready records. A neighborhood fetch
// failure degrades to seasonal estimates rather than failing the call.
func (s *Service) FetchNightlyRecords(ctx context.Context, dateFrom, dateTo string) ([]market.NightlyRecord, error) {
	nights, err := s.source.ListingPrices(ctx, s.listingID, s.pms, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing prices: %w", err)
	}

	nb, err := s.source.NeighborhoodData(ctx, s.listingID, s.pms)
	if err != nil {
		log.Printf("⚠️  Neighborhood data unavailable, using seasonal estimates: %v", err)
		nb = nil
	}

	return market.BuildRecords(nights, nb, s.bedrooms), nil
}

// AnalyzePricing runs per-night pricing analysis over a date range.
// Cached suggestions are reused while the night's input data is
// unchanged; fresh nights go through the LLM behind the rate limiter,
// falling back to rule-based suggestions when the model is unavailable
// or its answer cannot be parsed.
func (s *Service) AnalyzePricing(ctx context.Context, dateFrom, dateTo string, pc *llm.PropertyContext) ([]llm.Suggestion, error) {
	records, err := s.FetchNightlyRecords(ctx, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	if len(records) > s.maxNights {
		records = records[:s.maxNights]
	}

	today := time.Now()
	suggestions := make([]llm.Suggestion, 0, len(records))

	for _, rec := range records {
		suggestion := s.analyzeNight(ctx, today, rec, pc)
		suggestion.Date = rec.Date
		suggestions = append(suggestions, suggestion)
	}

	s.persist(records, suggestions)

	return suggestions, nil
}

func (s *Service) analyzeNight(ctx context.Context, today time.Time, rec market.NightlyRecord, pc *llm.PropertyContext) llm.Suggestion {
	dataHash := cache.GenerateDataHash(rec)

	if s.cache != nil {
		if cached, ok := s.cache.GetSuggestion(ctx, s.listingID, rec.Date, dataHash); ok {
			return *cached
		}
	}

	suggestion, ok := s.llmSuggestion(ctx, today, rec, pc)
	if !ok {
		suggestion = ruleSuggestion(rec)
	}

	if s.cache != nil {
		if err := s.cache.SetSuggestion(ctx, s.listingID, rec.Date, dataHash, &suggestion, suggestionTTL); err != nil {
			log.Printf("⚠️  Failed to cache suggestion for %s: %v", rec.Date, err)
		}
	}

	return suggestion
}

func (s *Service) llmSuggestion(ctx context.Context, today time.Time, rec market.NightlyRecord, pc *llm.PropertyContext) (llm.Suggestion, bool) {
	if s.analyzer == nil {
		return llm.Suggestion{}, false
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return llm.Suggestion{}, false
	}

	prompt := llm.FormatNightPrompt(rec, pc, daysFromToday(today, rec.Date))
	content, err := s.analyzer.Analyze(ctx, prompt)
	if err != nil {
		log.Printf("⚠️  LLM analysis failed for %s, using rule fallback: %v", rec.Date, err)
		return llm.Suggestion{}, false
	}

	suggestion := llm.ParseSuggestion(content)
	if suggestion.SuggestedPrice == nil {
		return llm.Suggestion{}, false
	}
	return suggestion, true
}

// ruleSuggestion is the deterministic substitute when no model answer is
// available: compare the listing price to the market average and nudge
// toward it
func ruleSuggestion(rec market.NightlyRecord) llm.Suggestion {
	if rec.YourPrice == nil || rec.MarketAvgPrice <= 0 {
		conf := 50
		return llm.Suggestion{
			SuggestedPrice: rec.YourPrice,
			Confidence:     &conf,
			Explanation:    "Analysis unavailable. Consider market conditions and demand when pricing.",
			InsightTag:     "Fallback Analysis",
		}
	}

	gapPct := (*rec.YourPrice - rec.MarketAvgPrice) / rec.MarketAvgPrice * 100

	switch {
	case gapPct > 50:
		suggested := rec.MarketAvgPrice * 1.15
		conf := 85
		return llm.Suggestion{
			SuggestedPrice: &suggested,
			Confidence:     &conf,
			Explanation:    fmt.Sprintf("Your price is %.0f%% above market. Suggest lowering to $%.0f for better booking chances.", gapPct, suggested),
			InsightTag:     "Overpriced vs Market",
		}
	case gapPct < -10:
		suggested := rec.MarketAvgPrice * 1.1
		conf := 80
		return llm.Suggestion{
			SuggestedPrice: &suggested,
			Confidence:     &conf,
			Explanation:    fmt.Sprintf("You're underpricing by %.0f%%. Consider raising to $%.0f to capture more revenue.", -gapPct, suggested),
			InsightTag:     "Revenue Opportunity",
		}
	default:
		conf := 75
		return llm.Suggestion{
			SuggestedPrice: rec.YourPrice,
			Confidence:     &conf,
			Explanation:    fmt.Sprintf("Your pricing is competitive vs market average of $%.0f. Hold steady.", rec.MarketAvgPrice),
			InsightTag:     "Market Aligned",
		}
	}
}

// persist writes the suggestion batch to the history table. Persistence
// failures are logged, not returned; the caller still gets the analysis.
func (s *Service) persist(records []market.NightlyRecord, suggestions []llm.Suggestion) {
	if s.db == nil || len(suggestions) == 0 {
		return
	}

	byDate := make(map[string]market.NightlyRecord, len(records))
	for _, rec := range records {
		byDate[rec.Date] = rec
	}

	rows := make([]database.PriceSuggestion, 0, len(suggestions))
	for _, sug := range suggestions {
		rec := byDate[sug.Date]
		rows = append(rows, database.PriceSuggestion{
			ListingID:      s.listingID,
			Date:           sug.Date,
			CurrentPrice:   rec.YourPrice,
			SuggestedPrice: sug.SuggestedPrice,
			Confidence:     sug.Confidence,
			Explanation:    sug.Explanation,
			InsightTag:     sug.InsightTag,
			MarketAvgPrice: rec.MarketAvgPrice,
			MarketSource:   string(rec.MarketSource),
			Model:          s.model,
		})
	}

	if err := s.db.SaveSuggestions(rows); err != nil {
		log.Printf("⚠️  Failed to persist suggestions: %v", err)
	}
}

// SuggestionHistory returns stored suggestions for the configured listing
func (s *Service) SuggestionHistory(limit int) ([]database.PriceSuggestion, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not configured")
	}
	return s.db.ListSuggestions(s.listingID, limit)
}

// dollarPrinter renders amounts with thousands separators, matching the
// report formats ("$12,450")
var dollarPrinter = message.NewPrinter(language.English)

// RevenueForecast splits a date range into confirmed revenue from booked
// nights and potential revenue from available ones. Booked nights count
// at their actual daily rate when present, available nights at the
// owner's override price when set. Unbookable nights are excluded from
// both revenue and the occupancy rate.
func (s *Service) RevenueForecast(ctx context.Context, dateFrom, dateTo string) (string, error) {
	nights, err := s.source.ListingPrices(ctx, s.listingID, s.pms, dateFrom, dateTo)
	if err != nil {
		return "", fmt.Errorf("failed to fetch listing prices: %w", err)
	}
	if len(nights) == 0 {
		return fmt.Sprintf("No pricing data available for %s to %s", dateFrom, dateTo), nil
	}

	var bookedRevenue, unbookedRevenue float64
	var bookedNights, unbookedNights, unbookableNights int

	for _, night := range nights {
		if !night.Price.Valid || night.Price.Value == 0 {
			continue
		}

		switch {
		case strings.Contains(strings.ToLower(night.BookingStatus), "booked"):
			price := night.Price.Value
			if night.ADR.Valid && night.ADR.Value > 0 {
				price = night.ADR.Value
			}
			bookedRevenue += price
			bookedNights++
		case night.Unbookable.Valid && night.Unbookable.Value != 0:
			unbookableNights++
		default:
			price := night.Price.Value
			if night.UserPrice.Valid && night.UserPrice.Value > 0 {
				price = night.UserPrice.Value
			}
			unbookedRevenue += price
			unbookedNights++
		}
	}

	totalNights := bookedNights + unbookedNights + unbookableNights
	totalPotential := bookedRevenue + unbookedRevenue

	avgBookedRate := 0.0
	if bookedNights > 0 {
		avgBookedRate = bookedRevenue / float64(bookedNights)
	}
	avgUnbookedRate := 0.0
	if unbookedNights > 0 {
		avgUnbookedRate = unbookedRevenue / float64(unbookedNights)
	}

	bookableNights := totalNights - unbookableNights
	if bookableNights < 1 {
		bookableNights = 1
	}
	occupancy := float64(bookedNights) / float64(bookableNights) * 100

	return dollarPrinter.Sprintf(`Revenue Forecast (%s to %s):

CONFIRMED REVENUE (Booked): $%.0f
- %d nights @ $%.0f/night average

POTENTIAL REVENUE (Available): $%.0f
- %d nights @ $%.0f/night average

TOTAL POTENTIAL: $%.0f
- %d total nights (%d unbookable)
- %.0f%% occupancy rate`,
		dateFrom, dateTo,
		bookedRevenue, bookedNights, avgBookedRate,
		unbookedRevenue, unbookedNights, avgUnbookedRate,
		totalPotential, totalNights, unbookableNights, occupancy), nil
}

// UnbookedOpenings summarizes the available gaps over the next 60 days
func (s *Service) UnbookedOpenings(ctx context.Context) (string, error) {
	today := time.Now()
	dateFrom := today.Format("2006-01-02")
	dateTo := today.AddDate(0, 0, availabilityWindowDays).Format("2006-01-02")

	nights, err := s.source.ListingPrices(ctx, s.listingID, s.pms, dateFrom, dateTo)
	if err != nil {
		return "", fmt.Errorf("failed to fetch listing prices: %w", err)
	}

	var unbookedDates []string
	for _, night := range nights {
		if strings.Contains(strings.ToLower(night.BookingStatus), "booked") {
			continue
		}
		if night.Unbookable.Valid && night.Unbookable.Value != 0 {
			continue
		}
		if night.Date != "" {
			unbookedDates = append(unbookedDates, night.Date)
		}
	}

	ranges := market.GroupConsecutiveDates(unbookedDates)
	return market.FormatAvailability(ranges), nil
}

// AvailabilitySummary satisfies the chat service's data provider
func (s *Service) AvailabilitySummary(ctx context.Context) (string, error) {
	return s.UnbookedOpenings(ctx)
}

func daysFromToday(today time.Time, date string) int {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0
	}
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(midnight).Hours() / 24)
}
