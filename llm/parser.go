package llm

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Suggestion is one parsed pricing recommendation. Pointer fields stay nil
// when the model's answer did not yield a usable value.
type Suggestion struct {
	Date           string   `json:"date"`
	SuggestedPrice *float64 `json:"suggested_price"`
	Confidence     *int     `json:"confidence"`
	Explanation    string   `json:"explanation"`
	InsightTag     string   `json:"insight_tag"`
}

var (
	fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

	// Object extraction patterns, strictest first
	objectPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\{[^{}]*"suggested_price"[^{}]*\}`),
		regexp.MustCompile(`(?s)\{.*?"suggested_price".*?\}`),
		regexp.MustCompile(`(?s)\{.*\}`),
	}

	priceFieldRe       = regexp.MustCompile(`suggested_price["\s:]*\$?([\d,]+(?:\.\d+)?)`)
	confidenceFieldRe  = regexp.MustCompile(`confidence["\s:]*(\d+)`)
	explanationFieldRe = regexp.MustCompile(`explanation["\s:]*["']([^"']+)["']`)
	tagFieldRe         = regexp.MustCompile(`insight_tag["\s:]*["']([^"']+)["']`)
)

// ParseSuggestion recovers a Suggestion from whatever the model answered.
// It tries a strict JSON decode first, then hunts for a JSON object inside
// surrounding prose, then falls back to per-field regex extraction. The
// last resort keeps the raw text as the explanation so nothing is silently
// lost.
func ParseSuggestion(content string) Suggestion {
	clean := stripFences(content)

	if s, ok := fromJSON(clean); ok {
		return s
	}

	for _, pattern := range objectPatterns {
		for _, match := range pattern.FindAllString(clean, -1) {
			if s, ok := fromJSON(match); ok {
				return s
			}
		}
	}

	return fromFields(clean)
}

// stripFences unwraps a markdown code fence when the whole answer is
// wrapped in one
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if m := fenceRe.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return content
}

func fromJSON(text string) (Suggestion, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Suggestion{}, false
	}
	if _, ok := raw["suggested_price"]; !ok {
		return Suggestion{}, false
	}

	s := Suggestion{
		SuggestedPrice: coerceFloat(raw["suggested_price"]),
		Confidence:     coerceInt(raw["confidence"]),
	}
	json.Unmarshal(raw["explanation"], &s.Explanation)
	json.Unmarshal(raw["insight_tag"], &s.InsightTag)
	return s, true
}

// fromFields scrapes individual fields out of free text when no JSON
// object could be decoded
func fromFields(text string) Suggestion {
	s := Suggestion{
		Explanation: truncate(text, 100),
		InsightTag:  "Parsing Issue",
	}

	matched := false
	if m := priceFieldRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			s.SuggestedPrice = &v
			matched = true
		}
	}
	if m := confidenceFieldRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			s.Confidence = &v
			matched = true
		}
	}
	if m := explanationFieldRe.FindStringSubmatch(text); m != nil {
		s.Explanation = m[1]
		matched = true
	}
	if m := tagFieldRe.FindStringSubmatch(text); m != nil {
		s.InsightTag = m[1]
	}

	if !matched {
		s.Explanation = text
		s.InsightTag = "Parse Failed"
	}
	return s
}

// coerceFloat accepts a JSON number or a string like "$1,250" for price
// fields
func coerceFloat(raw json.RawMessage) *float64 {
	if raw == nil || string(raw) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "$", ""), ",", ""))
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return &v
		}
	}
	return nil
}

func coerceInt(raw json.RawMessage) *int {
	if raw == nil || string(raw) == "null" {
		return nil
	}
	var i int
	if err := json.Unmarshal(raw, &i); err == nil {
		return &i
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		v := int(f)
		return &v
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return &v
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
