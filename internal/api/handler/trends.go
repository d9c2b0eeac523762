package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/weatherodds/weatherodds/internal/api/models"
	"github.com/weatherodds/weatherodds/internal/api/response"
	"github.com/weatherodds/weatherodds/internal/climate"
)

// TrendHandler handles the historical trend endpoint.
type TrendHandler struct {
	service *climate.Service
}

// NewTrendHandler creates a new TrendHandler.
func NewTrendHandler(service *climate.Service) *TrendHandler {
	return &TrendHandler{service: service}
}

// GetTrend handles GET /v1/trends?lat=&lon=&date= - one representative day per
// year for charting.
func (h *TrendHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	params, fieldErrors := parseTrendParams(r.URL.Query())
	if fieldErrors == nil {
		fieldErrors = models.Validate(params)
	}
	if fieldErrors != nil {
		response.BadRequest(w, r, "request validation failed", fieldErrors)
		return
	}

	query, err := params.ToQuery()
	if err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	points, err := h.service.ComputeTrend(r.Context(), query)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.TrendResponse{Points: points})
}

func parseTrendParams(q url.Values) (models.TrendParams, []models.FieldError) {
	var fieldErrors []models.FieldError

	parse := func(name string) *float64 {
		raw := q.Get(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field:   name,
				Message: "must be a number",
				Code:    models.CodeInvalidFormat,
			})
			return nil
		}
		return &v
	}

	params := models.TrendParams{
		Lat:  parse("lat"),
		Lon:  parse("lon"),
		Date: q.Get("date"),
	}
	return params, fieldErrors
}
