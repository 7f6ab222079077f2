package pricelabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the PriceLabs REST API
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a new PriceLabs API client
func NewClient(baseURL, apiKey string) *Client {
	// Configure custom HTTP transport for optimal connection pooling
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  false,
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}
}

// listingPricesRequest is the body for POST /v1/listing_prices
type listingPricesRequest struct {
	Listings []listingQuery `json:"listings"`
}

type listingQuery struct {
	ID       string `json:"id"`
	PMS      string `json:"pms"`
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
	Reason   bool   `json:"reason"`
}

type listingPricesResponse struct {
	Data []Night `json:"data"`
}

// ListingPrices fetches nightly price/booking data for one listing over a
// date range (dates in YYYY-MM-DD). The reason flag is always set so the
// response carries per-night listing_info enrichment.
func (c *Client) ListingPrices(ctx context.Context, listingID, pms, dateFrom, dateTo string) ([]Night, error) {
	body := listingPricesRequest{
		Listings: []listingQuery{
			{ID: listingID, PMS: pms, DateFrom: dateFrom, DateTo: dateTo, Reason: true},
		},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/listing_prices", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("pricing API error %d: %s", resp.StatusCode, string(respBody))
	}

	// Response is an array with one element per requested listing
	var results []listingPricesResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("empty response from pricing API")
	}

	return results[0].Data, nil
}

// NeighborhoodData fetches the market statistics blob for a listing's area.
// The payload nests the blob under "data", and on some accounts under
// "data.data"; both layers are unwrapped here.
func (c *Client) NeighborhoodData(ctx context.Context, listingID, pms string) (*NeighborhoodData, error) {
	params := url.Values{}
	params.Set("listing_id", listingID)
	params.Set("pms", pms)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v1/neighborhood_data?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("neighborhood API error %d: %s", resp.StatusCode, string(respBody))
	}

	var outer struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&outer); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(outer.Data) == 0 {
		return nil, fmt.Errorf("neighborhood response missing data")
	}

	payload := outer.Data
	var inner struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &inner); err == nil && len(inner.Data) > 0 {
		payload = inner.Data
	}

	var nb NeighborhoodData
	if err := json.Unmarshal(payload, &nb); err != nil {
		return nil, fmt.Errorf("failed to decode neighborhood data: %w", err)
	}
	return &nb, nil
}

type listingsResponse struct {
	Listings []Listing `json:"listings"`
}

// Listings fetches all listings visible to the API key
func (c *Client) Listings(ctx context.Context) ([]Listing, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v1/listings", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("listings API error %d: %s", resp.StatusCode, string(respBody))
	}

	var result listingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Listings, nil
}
