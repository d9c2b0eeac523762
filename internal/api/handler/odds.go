package handler

import (
	"net/http"

	"github.com/weatherodds/weatherodds/internal/api/models"
	"github.com/weatherodds/weatherodds/internal/api/response"
	"github.com/weatherodds/weatherodds/internal/climate"
)

// OddsHandler handles probability endpoints. Provider outages never surface as
// errors here: the engine answers with the default probability instead.
type OddsHandler struct {
	service *climate.Service
}

// NewOddsHandler creates a new OddsHandler.
func NewOddsHandler(service *climate.Service) *OddsHandler {
	return &OddsHandler{service: service}
}

// ComputeOdds handles POST /v1/odds - probabilities for a single date.
func (h *OddsHandler) ComputeOdds(w http.ResponseWriter, r *http.Request) {
	var input models.OddsRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	query, err := input.ToQuery()
	if err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	results, err := h.service.ComputeProbabilities(r.Context(), query)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.OddsResponse{Probabilities: results})
}

// ComputeRange handles POST /v1/odds:range - per-day and overall probabilities
// for a date range.
func (h *OddsHandler) ComputeRange(w http.ResponseWriter, r *http.Request) {
	var input models.RangeRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	query, err := input.ToQuery()
	if err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	result, err := h.service.ComputeRangeProbabilities(r.Context(), query)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}
