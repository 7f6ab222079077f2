package database

import "fmt"

// SaveSuggestion stores one pricing suggestion row
func (d *Database) SaveSuggestion(s *PriceSuggestion) error {
	if err := d.db.Create(s).Error; err != nil {
		return fmt.Errorf("failed to save suggestion: %w", err)
	}
	return nil
}

// SaveSuggestions stores a batch of pricing suggestions in one insert
func (d *Database) SaveSuggestions(suggestions []PriceSuggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	if err := d.db.Create(&suggestions).Error; err != nil {
		return fmt.Errorf("failed to save suggestions: %w", err)
	}
	return nil
}

// ListSuggestions returns the most recent suggestions for a listing,
// newest first
func (d *Database) ListSuggestions(listingID string, limit int) ([]PriceSuggestion, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []PriceSuggestion
	err := d.db.
		Where("listing_id = ?", listingID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	return rows, nil
}
