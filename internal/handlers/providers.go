package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"TRIPMATE_BACK-END/internal/config"
	"TRIPMATE_BACK-END/internal/utils"
)

// ProvidersHandler proxies flight schedule, embassy, and emergency-contact
// lookups to their upstream APIs. Responses pass through as-is.
type ProvidersHandler struct {
	flight    *resty.Client
	embassy   *resty.Client
	emergency *resty.Client
	config    *config.Config
}

// NewProvidersHandler creates a new ProvidersHandler
func NewProvidersHandler(cfg *config.Config) *ProvidersHandler {
	newClient := func(baseURL string) *resty.Client {
		return resty.New().
			SetBaseURL(baseURL).
			SetTimeout(cfg.Providers.RequestTimeout).
			SetRetryCount(2)
	}

	return &ProvidersHandler{
		flight:    newClient(cfg.Providers.FlightBaseURL),
		embassy:   newClient(cfg.Providers.EmbassyBaseURL),
		emergency: newClient(cfg.Providers.EmergencyBaseURL),
		config:    cfg,
	}
}

// Flights handles GET /api/flights?departure=ICN&arrival=NRT&date=2025-03-01
// @Summary Flight schedules between two airports on a date
// @Tags providers
// @Produce json
// @Param departure query string true "Departure airport IATA code"
// @Param arrival query string true "Arrival airport IATA code"
// @Param date query string true "Departure date (YYYY-MM-DD)"
// @Param return_date query string false "Return date for round trips (YYYY-MM-DD)"
// @Param adults query int false "Number of adult travelers"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/flights [get]
func (h *ProvidersHandler) Flights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	departure := strings.ToUpper(strings.TrimSpace(q.Get("departure")))
	arrival := strings.ToUpper(strings.TrimSpace(q.Get("arrival")))
	date := strings.TrimSpace(q.Get("date"))
	if departure == "" || arrival == "" || date == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "departure, arrival and date are required")
		return
	}
	if _, err := utils.ParseDate(date); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "date must be ISO 8601 format (YYYY-MM-DD)")
		return
	}

	params := map[string]string{
		"dep_iata": departure,
		"arr_iata": arrival,
		"dep_date": date,
		"api_key":  h.config.Providers.FlightAPIKey,
	}
	if returnDate := strings.TrimSpace(q.Get("return_date")); returnDate != "" {
		if _, err := utils.ParseDate(returnDate); err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "return_date must be ISO 8601 format (YYYY-MM-DD)")
			return
		}
		params["ret_date"] = returnDate
	}
	if adults := strings.TrimSpace(q.Get("adults")); adults != "" {
		params["adults"] = adults
	}

	resp, err := h.flight.R().
		SetContext(r.Context()).
		SetQueryParams(params).
		Get("/v1/schedules")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadGateway, "Upstream error", err.Error())
		return
	}

	relayUpstream(w, resp)
}

// Embassy handles GET /api/embassy?country=JP
// @Summary Embassy contact details for a destination country
// @Tags providers
// @Produce json
// @Param country query string true "ISO 3166-1 alpha-2 country code"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/embassy [get]
func (h *ProvidersHandler) Embassy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	country := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("country")))
	if country == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "country is required")
		return
	}

	resp, err := h.embassy.R().
		SetContext(r.Context()).
		SetQueryParam("country", country).
		Get("/embassies")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadGateway, "Upstream error", err.Error())
		return
	}

	relayUpstream(w, resp)
}

// Emergency handles GET /api/emergency?country=JP
// @Summary Emergency phone numbers for a destination country
// @Tags providers
// @Produce json
// @Param country query string true "ISO 3166-1 alpha-2 country code"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/emergency [get]
func (h *ProvidersHandler) Emergency(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	country := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("country")))
	if country == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "country is required")
		return
	}

	resp, err := h.emergency.R().
		SetContext(r.Context()).
		SetQueryParam("country", country).
		Get("/contacts")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadGateway, "Upstream error", err.Error())
		return
	}

	relayUpstream(w, resp)
}

// relayUpstream forwards an upstream JSON body and status code unchanged
func relayUpstream(w http.ResponseWriter, resp *resty.Response) {
	if resp.IsError() {
		utils.WriteErrorResponse(w, http.StatusBadGateway, "Upstream error",
			fmt.Sprintf("provider returned %d", resp.StatusCode()))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp.Body())
}
