package database

import "time"

// PriceSuggestion is one stored pricing recommendation for a listing's
// night. History rows are append-only; re-running an analysis adds new
// rows rather than overwriting old ones.
type PriceSuggestion struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ListingID      string    `gorm:"index:idx_listing_date;size:64;not null" json:"listing_id"`
	Date           string    `gorm:"index:idx_listing_date;size:10;not null" json:"date"`
	CurrentPrice   *float64  `json:"current_price,omitempty"`
	SuggestedPrice *float64  `json:"suggested_price,omitempty"`
	Confidence     *int      `json:"confidence,omitempty"`
	Explanation    string    `gorm:"type:text" json:"explanation"`
	InsightTag     string    `gorm:"size:128" json:"insight_tag"`
	MarketAvgPrice float64   `json:"market_avg_price"`
	MarketSource   string    `gorm:"size:16" json:"market_source"`
	Model          string    `gorm:"size:128" json:"model"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName overrides the default table name
func (PriceSuggestion) TableName() string {
	return "price_suggestions"
}
