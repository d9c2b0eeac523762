package handler

import (
	"net/http"

	"github.com/weatherodds/weatherodds/internal/api/models"
	"github.com/weatherodds/weatherodds/internal/api/response"
	"github.com/weatherodds/weatherodds/internal/geocoding"
)

// LocationHandler handles location autocomplete.
type LocationHandler struct {
	geocoder *geocoding.Service
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(geocoder *geocoding.Service) *LocationHandler {
	return &LocationHandler{geocoder: geocoder}
}

// SearchLocations handles GET /v1/locations?q= - place name autocomplete.
// Short queries and geocoder failures both yield an empty result list.
func (h *LocationHandler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	results := h.geocoder.Search(r.Context(), r.URL.Query().Get("q"))

	w.Header().Set("Cache-Control", "public, max-age=3600")
	response.JSON(w, r, http.StatusOK, models.LocationsResponse{Results: results})
}
