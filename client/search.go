package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"
)

// Itinerary categories. Every place falls into exactly one.
const (
	CategoryLodging    = "lodging"
	CategoryAttraction = "attraction"
	CategoryRestaurant = "restaurant"
)

// categoryKeywords drives the per-category fan-out
var categoryKeywords = map[string]string{
	CategoryLodging:    "lodging",
	CategoryAttraction: "tourist attractions",
	CategoryRestaurant: "restaurants",
}

// SearchOutcome is the merged result of a destination search. Categories are
// independent: a failed one leaves its error in Errors while the others still
// deliver results.
type SearchOutcome struct {
	Latitude  float64
	Longitude float64
	Results   []PlaceResult
	Errors    map[string]error
}

// Partial reports whether some categories failed while others succeeded
func (o *SearchOutcome) Partial() bool {
	return len(o.Errors) > 0 && len(o.Errors) < len(categoryKeywords)
}

// ByCategory filters merged results down to one category
func (o *SearchOutcome) ByCategory(category string) []PlaceResult {
	out := make([]PlaceResult, 0)
	for _, r := range o.Results {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// Geocode resolves a free-text destination to coordinates
func (c *Client) Geocode(ctx context.Context, address string) (lat, lng float64, err error) {
	var env geocodeEnvelope
	if err := c.do(ctx, "GET", "/api/places/geocode?address="+url.QueryEscape(address), nil, &env); err != nil {
		return 0, 0, err
	}
	if env.Status != "OK" {
		return 0, 0, fmt.Errorf("no location found for %q", address)
	}
	return env.Latitude, env.Longitude, nil
}

// SearchDestination geocodes the destination, then runs one nearby search per
// category in parallel and merges the results. Duplicate places keep their
// first (category-priority) hit; order within a category follows the
// provider's relevance ranking.
func (c *Client) SearchDestination(ctx context.Context, destination string) (*SearchOutcome, error) {
	lat, lng, err := c.Geocode(ctx, destination)
	if err != nil {
		return nil, err
	}
	return c.SearchNearby(ctx, lat, lng)
}

// SearchNearby runs the three category searches around a coordinate
func (c *Client) SearchNearby(ctx context.Context, lat, lng float64) (*SearchOutcome, error) {
	outcome := &SearchOutcome{
		Latitude:  lat,
		Longitude: lng,
		Errors:    make(map[string]error),
	}

	type categoryResult struct {
		category string
		results  []PlaceResult
		err      error
	}

	order := []string{CategoryLodging, CategoryAttraction, CategoryRestaurant}
	resultCh := make(chan categoryResult, len(order))

	var wg sync.WaitGroup
	for _, category := range order {
		wg.Add(1)
		go func(category, keyword string) {
			defer wg.Done()
			results, err := c.searchCategory(ctx, lat, lng, category, keyword)
			resultCh <- categoryResult{category: category, results: results, err: err}
		}(category, categoryKeywords[category])
	}
	wg.Wait()
	close(resultCh)

	byCategory := make(map[string][]PlaceResult, len(order))
	for res := range resultCh {
		if res.err != nil {
			outcome.Errors[res.category] = res.err
			searchRequests.WithLabelValues(res.category, "error").Inc()
			continue
		}
		byCategory[res.category] = res.results
		searchRequests.WithLabelValues(res.category, "ok").Inc()
	}

	// Merge in stable category order, dropping duplicate place IDs
	seen := make(map[string]bool)
	for _, category := range order {
		for _, r := range byCategory[category] {
			if r.PlaceID == "" || seen[r.PlaceID] {
				continue
			}
			seen[r.PlaceID] = true
			outcome.Results = append(outcome.Results, r)
		}
	}

	if len(outcome.Errors) == len(order) {
		return outcome, fmt.Errorf("all category searches failed: %v", outcome.Errors)
	}
	return outcome, nil
}

// searchCategory runs one keyword search and pins the category. The keyword
// determines intent; the provider's type tags are too noisy to trust here.
func (c *Client) searchCategory(ctx context.Context, lat, lng float64, category, keyword string) ([]PlaceResult, error) {
	path := fmt.Sprintf("/api/places/search?lat=%f&lng=%f&keyword=%s", lat, lng, url.QueryEscape(keyword))
	var env placeSearchEnvelope
	if err := c.do(ctx, "GET", path, nil, &env); err != nil {
		return nil, err
	}
	results := env.Results
	for i := range results {
		results[i].Category = category
	}
	return results, nil
}
