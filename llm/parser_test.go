package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestionDirectJSON(t *testing.T) {
	s := ParseSuggestion(`{"suggested_price": 425.5, "confidence": 80, "explanation": "Raise toward market.", "insight_tag": "Revenue Opportunity"}`)

	require.NotNil(t, s.SuggestedPrice)
	assert.Equal(t, 425.5, *s.SuggestedPrice)
	require.NotNil(t, s.Confidence)
	assert.Equal(t, 80, *s.Confidence)
	assert.Equal(t, "Raise toward market.", s.Explanation)
	assert.Equal(t, "Revenue Opportunity", s.InsightTag)
}

func TestParseSuggestionCodeFence(t *testing.T) {
	content := "```json\n{\"suggested_price\": 390, \"confidence\": 70, \"explanation\": \"Hold.\", \"insight_tag\": \"Market Aligned\"}\n```"
	s := ParseSuggestion(content)

	require.NotNil(t, s.SuggestedPrice)
	assert.Equal(t, 390.0, *s.SuggestedPrice)
	assert.Equal(t, "Market Aligned", s.InsightTag)
}

func TestParseSuggestionEmbeddedJSON(t *testing.T) {
	content := `Here's my analysis of the night:

{"suggested_price": 510, "confidence": 65, "explanation": "Event weekend.", "insight_tag": "Event Premium"}

Let me know if you need more detail.`
	s := ParseSuggestion(content)

	require.NotNil(t, s.SuggestedPrice)
	assert.Equal(t, 510.0, *s.SuggestedPrice)
	require.NotNil(t, s.Confidence)
	assert.Equal(t, 65, *s.Confidence)
}

func TestParseSuggestionDollarString(t *testing.T) {
	s := ParseSuggestion(`{"suggested_price": "$1,250", "confidence": "85", "explanation": "Peak week.", "insight_tag": "Peak Pricing"}`)

	require.NotNil(t, s.SuggestedPrice)
	assert.Equal(t, 1250.0, *s.SuggestedPrice)
	require.NotNil(t, s.Confidence)
	assert.Equal(t, 85, *s.Confidence)
}

func TestParseSuggestionFieldRegexFallback(t *testing.T) {
	// Broken JSON (trailing comma) that still carries the fields
	content := `"suggested_price": 480, "confidence": 75, "explanation": "Solid demand signal", "insight_tag": "Hold Steady",`
	s := ParseSuggestion(content)

	require.NotNil(t, s.SuggestedPrice)
	assert.Equal(t, 480.0, *s.SuggestedPrice)
	require.NotNil(t, s.Confidence)
	assert.Equal(t, 75, *s.Confidence)
	assert.Equal(t, "Solid demand signal", s.Explanation)
	assert.Equal(t, "Hold Steady", s.InsightTag)
}

func TestParseSuggestionUnparseable(t *testing.T) {
	content := "I cannot analyze this night."
	s := ParseSuggestion(content)

	assert.Nil(t, s.SuggestedPrice)
	assert.Nil(t, s.Confidence)
	assert.Equal(t, content, s.Explanation)
	assert.Equal(t, "Parse Failed", s.InsightTag)
}

func TestParseSuggestionNullPrice(t *testing.T) {
	s := ParseSuggestion(`{"suggested_price": null, "confidence": 40, "explanation": "Not enough data.", "insight_tag": "Low Signal"}`)

	assert.Nil(t, s.SuggestedPrice)
	require.NotNil(t, s.Confidence)
	assert.Equal(t, 40, *s.Confidence)
}
