package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"TRIPMATE_BACK-END/internal/config"
	"TRIPMATE_BACK-END/internal/dto"
	"TRIPMATE_BACK-END/internal/models"
	"TRIPMATE_BACK-END/internal/utils"
)

const nearbySearchRadius = 5000 // meters

// PlacesHandler proxies geocoding and nearby search to the upstream place
// provider so the API key never reaches clients.
type PlacesHandler struct {
	client *resty.Client
	config *config.Config
}

// NewPlacesHandler creates a new PlacesHandler
func NewPlacesHandler(cfg *config.Config) *PlacesHandler {
	client := resty.New().
		SetBaseURL(cfg.Providers.PlaceBaseURL).
		SetTimeout(cfg.Providers.RequestTimeout).
		SetRetryCount(2)

	return &PlacesHandler{client: client, config: cfg}
}

// upstream response shapes (Google Maps web service)

type geocodeUpstream struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type nearbyUpstream struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID  string   `json:"place_id"`
		Name     string   `json:"name"`
		Vicinity string   `json:"vicinity"`
		Types    []string `json:"types"`
		Rating   float64  `json:"rating"`
		Ratings  int      `json:"user_ratings_total"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		Photos []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"results"`
}

// Geocode handles GET /api/places/geocode?address=...
// @Summary Resolve a free-text address to coordinates
// @Tags places
// @Produce json
// @Param address query string true "Address or city name"
// @Success 200 {object} dto.GeocodeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/places/geocode [get]
func (h *PlacesHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "address is required")
		return
	}

	var upstream geocodeUpstream
	resp, err := h.client.R().
		SetContext(r.Context()).
		SetQueryParams(map[string]string{
			"address": address,
			"key":     h.config.Providers.PlaceAPIKey,
		}).
		SetResult(&upstream).
		Get("/maps/api/geocode/json")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadGateway, "Upstream error", err.Error())
		return
	}
	if resp.IsError() {
		utils.WriteErrorResponse(w, http.StatusBadGateway, "Upstream error",
			fmt.Sprintf("geocoding provider returned %d", resp.StatusCode()))
		return
	}

	if upstream.Status != "OK" || len(upstream.Results) == 0 {
		utils.WriteJSONResponse(w, http.StatusOK, dto.GeocodeResponse{Status: "ZERO_RESULTS"})
		return
	}

	loc := upstream.Results[0].Geometry.Location
	utils.WriteJSONResponse(w, http.StatusOK, dto.GeocodeResponse{
		Status:    "OK",
		Latitude:  loc.Lat,
		Longitude: loc.Lng,
	})
}

// Search handles GET /api/places/search?lat=..&lng=..&keyword=..
// One request covers one keyword; clients fan out per category and merge.
// @Summary Nearby place search around a coordinate
// @Tags places
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param keyword query string true "Search keyword"
// @Success 200 {object} dto.PlaceSearchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/places/search [get]
func (h *PlacesHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if errLat != nil || errLng != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "lat and lng are required numbers")
		return
	}
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "keyword is required")
		return
	}

	var upstream nearbyUpstream
	resp, err := h.client.R().
		SetContext(r.Context()).
		SetQueryParams(map[string]string{
			"location": fmt.Sprintf("%f,%f", lat, lng),
			"radius":   strconv.Itoa(nearbySearchRadius),
			"keyword":  keyword,
			"key":      h.config.Providers.PlaceAPIKey,
		}).
		SetResult(&upstream).
		Get("/maps/api/place/nearbysearch/json")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadGateway, "Upstream error", err.Error())
		return
	}
	if resp.IsError() {
		utils.WriteErrorResponse(w, http.StatusBadGateway, "Upstream error",
			fmt.Sprintf("place provider returned %d", resp.StatusCode()))
		return
	}

	results := make([]dto.PlaceResult, 0, len(upstream.Results))
	for _, hit := range upstream.Results {
		imageURL := ""
		if len(hit.Photos) > 0 {
			imageURL = fmt.Sprintf(
				"%s/maps/api/place/photo?maxwidth=400&photo_reference=%s&key=%s",
				h.config.Providers.PlaceBaseURL, hit.Photos[0].PhotoReference, h.config.Providers.PlaceAPIKey)
		}
		results = append(results, dto.PlaceResult{
			PlaceID:     hit.PlaceID,
			Name:        hit.Name,
			Address:     hit.Vicinity,
			Category:    models.CategoryFromTypes(hit.Types),
			Rating:      hit.Rating,
			ReviewCount: hit.Ratings,
			ImageURL:    imageURL,
			Latitude:    hit.Geometry.Location.Lat,
			Longitude:   hit.Geometry.Location.Lng,
		})
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.PlaceSearchResponse{Results: results})
}
