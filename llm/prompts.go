package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"rental-pricing-ai/market"
)

// StringList tolerates the frontend sending a single string where a list
// is expected
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*l = list
		return nil
	}
	var single string
	if err := json.Unmarshal(b, &single); err == nil && single != "" {
		*l = []string{single}
	}
	return nil
}

// PropertyContext carries the host's self-described positioning: who books
// the property, what sets it apart, and what the pricing strategy is.
type PropertyContext struct {
	MainGuest       string            `json:"mainGuest"`
	SpecialFeatures StringList        `json:"specialFeature"`
	PricingGoals    StringList        `json:"pricingGoal"`
	FeatureDetails  map[string]string `json:"specialFeatureDetails"`
}

// SelectedProperty identifies the listing a conversation or analysis is
// scoped to
type SelectedProperty struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Bedrooms int    `json:"no_of_bedrooms"`
}

var guestProfiles = map[string]string{
	"Leisure":  "MAIN GUEST: Leisure travelers. Higher pricing on weekends. More conservative pricing on weekdays.",
	"Business": "MAIN GUEST: Business travelers. More balanced pricing throughout the week.",
	"Groups":   "MAIN GUEST: Group travelers. Focus on multi-night stays. Higher value bookings.",
	"Balanced": "MAIN GUEST: Variety of guests. Premium weekends for leisure, competitive weekdays for business.",
}

var advantageDescriptions = map[string]string{
	"Location":          "Prime location - #1 guest driver, premium justified",
	"Unique Amenity":    "Rare amenity (pool/hot tub) - strong premium justified",
	"Size/Capacity":     "Large capacity (10+) - higher rates, less competition",
	"Luxury/Design":     "Luxury finishes - appeals to high-paying guests",
	"Pet-Friendly":      "Pet-friendly - underserved premium market",
	"Exceptional View":  "Exceptional view - visual appeal justifies higher rates",
	"Unique Experience": "Unique property type - strong demand, pricing power",
}

var strategyDescriptions = map[string]string{
	"Fill Dates":       "FILL DATES: Prioritize occupancy over rate, aggressive discounts",
	"Max Price":        "MAX PRICE: Highest rates priority, highlight premium features",
	"Avoid Bad Guests": "QUALITY FILTER: Price floors to filter guests",
}

// contextSections builds the context lines injected into prompts from a
// host's property context. Custom feature descriptions win over the stock
// ones.
func contextSections(pc *PropertyContext) []string {
	if pc == nil {
		return nil
	}

	var sections []string

	if profile, ok := guestProfiles[pc.MainGuest]; ok {
		sections = append(sections, profile)
	}

	var advantages []string
	for _, feature := range pc.SpecialFeatures {
		if custom, ok := pc.FeatureDetails[feature]; ok && strings.TrimSpace(custom) != "" {
			advantages = append(advantages, fmt.Sprintf("%s: %s", feature, strings.TrimSpace(custom)))
		} else if stock, ok := advantageDescriptions[feature]; ok {
			advantages = append(advantages, fmt.Sprintf("%s: %s", feature, stock))
		}
	}
	if len(advantages) > 0 {
		sections = append(sections, "ADVANTAGES: "+strings.Join(advantages, "; "))
	}

	var strategies []string
	for _, goal := range pc.PricingGoals {
		if s, ok := strategyDescriptions[goal]; ok {
			strategies = append(strategies, s)
		}
	}
	if len(strategies) == 1 {
		sections = append(sections, "STRATEGY: "+strategies[0])
	} else if len(strategies) > 1 {
		sections = append(sections, "STRATEGIES (balance): "+strings.Join(strategies, "; "))
	}

	return sections
}

// propertyContextBlock renders the context sections as a prompt suffix, or
// an empty string when there is nothing to say
func propertyContextBlock(pc *PropertyContext) string {
	sections := contextSections(pc)
	if len(sections) == 0 {
		return ""
	}
	return fmt.Sprintf("\n\nPROPERTY CONTEXT: %s\nCRITICAL: Reference this context in pricing decisions. Align recommendations with guest type, advantages, and pricing strategy.",
		strings.Join(sections, " | "))
}

// FormatNightPrompt builds the per-night pricing analysis prompt. The
// record's market source is surfaced so the model knows whether it is
// looking at real comparables or a seasonal estimate.
func FormatNightPrompt(rec market.NightlyRecord, pc *PropertyContext, daysFromToday int) string {
	var sb strings.Builder
	sb.Grow(1536)

	sb.WriteString("You are a revenue manager for a short-term rental property. Analyze and recommend pricing in JSON:")
	sb.WriteString(propertyContextBlock(pc))
	sb.WriteString("\n\nPROPERTY DATA:\n")

	sb.WriteString(fmt.Sprintf("- Date: %s (%s) - %d days from today\n", rec.Date, orUnknown(rec.DayOfWeek), daysFromToday))
	if rec.YourPrice != nil {
		sb.WriteString(fmt.Sprintf("- Current: $%.0f\n", *rec.YourPrice))
	}

	sourceLabel := "real market data"
	if rec.MarketSource == market.SourceEstimated {
		sourceLabel = "seasonal estimate"
	}
	sb.WriteString(fmt.Sprintf("- Market: $%.0f (%s)\n", rec.MarketAvgPrice, sourceLabel))

	if rec.ADRLastYear != nil {
		sb.WriteString(fmt.Sprintf("- Last year: $%.0f\n", *rec.ADRLastYear))
	}
	sb.WriteString(fmt.Sprintf("- Demand: %s\n", orUnknown(rec.NhoodDemand)))
	sb.WriteString(fmt.Sprintf("- Event: %s\n", orStandard(rec.DemandDesc)))
	if rec.Occupancy != nil {
		sb.WriteString(fmt.Sprintf("- Occupancy: %.1f%%\n", *rec.Occupancy))
	} else {
		sb.WriteString("- Occupancy: Unknown\n")
	}
	if rec.LeadTimeDays != nil {
		sb.WriteString(fmt.Sprintf("- Typical lead time: %d days\n", *rec.LeadTimeDays))
	}
	if rec.AvgLOSLastYear != nil {
		sb.WriteString(fmt.Sprintf("- Avg stay: %.0f nights\n", *rec.AvgLOSLastYear))
	}
	if rec.MinPriceLimit != nil {
		sb.WriteString(fmt.Sprintf("- Min price: $%.0f\n", *rec.MinPriceLimit))
	}
	sb.WriteString(fmt.Sprintf("- Season: %s\n", orStandard(rec.SeasonalTag)))

	sb.WriteString("\nSTRATEGY: Analyze all property data to suggest a nightly rate that maximizes total revenue. Prioritize higher pricing during peak season, weekends, local events, or when market occupancy and demand are high. Lower prices modestly during low-demand periods, for last-minute openings, or mid-week stays to protect occupancy. Compare the current price to market averages and adjust upward if underpriced and justified by property quality or scarcity. Respect minimum price constraints, but allow competitive discounts when needed to avoid vacancies. Always balance rate with booking likelihood to optimize both ADR and occupancy.\n")

	sb.WriteString("\nJSON FORMAT:\n{\n  \"suggested_price\": [number],\n  \"confidence\": [0-100 integer],\n  \"explanation\": \"[1-2 sentences max]\",\n  \"insight_tag\": \"[short headline 3-5 words]\"\n}")

	return sb.String()
}

// ChatSystemPrompt builds the chat assistant's system prompt: role and
// formatting rules, the current date, and whatever property context the
// request carried.
func ChatSystemPrompt(selected *SelectedProperty, pc *PropertyContext, today time.Time) string {
	var sb strings.Builder
	sb.Grow(2048)

	sb.WriteString("You are an AI assistant for short-term rental hosts. Help with property availability and pricing questions using the data provided in the conversation.\n\n")
	sb.WriteString("Communication Style: Respond in a concise, data-driven manner like an experienced analyst. Lead with key numbers and metrics, use minimal filler words, and compress insights into dense, actionable statements. Keep responses brief and focused on bottom-line impact.\n\n")
	sb.WriteString("FORMATTING: Always format your responses using markdown for better readability:\n")
	sb.WriteString("- Use **bold** for important numbers, dates, and key metrics\n")
	sb.WriteString("- Use `code blocks` for specific prices, dates, and technical values\n")
	sb.WriteString("- Use bullet points for lists and recommendations\n")
	sb.WriteString("- Use ### headers for major sections\n")
	sb.WriteString("- Use > blockquotes for important insights or warnings\n")
	sb.WriteString("- Use tables when presenting multiple data points for comparison\n")

	sb.WriteString(fmt.Sprintf("\nToday is %s.\n", today.Format("2006-01-02")))

	if selected != nil {
		plural := "s"
		if selected.Bedrooms == 1 {
			plural = ""
		}
		sb.WriteString(fmt.Sprintf("\nCURRENT PROPERTY: %s\nLOCATION: %s\nBEDROOMS: %d bedroom%s\nMARKET POSITIONING: Use bedroom count for appropriate market segment positioning and pricing strategy.\n",
			orUnknown(selected.Name), orUnknown(selected.Location), selected.Bedrooms, plural))
	}

	if block := propertyContextBlock(pc); block != "" {
		sb.WriteString(block)
	}

	return sb.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func orStandard(s string) string {
	if s == "" {
		return "Standard"
	}
	return s
}
