package handler

import (
	"net/http"

	"github.com/weatherodds/weatherodds/internal/api/models"
	"github.com/weatherodds/weatherodds/internal/api/response"
	"github.com/weatherodds/weatherodds/internal/climate"
)

// ListConditions handles GET /v1/conditions - the condition catalogue in
// display order.
func ListConditions(w http.ResponseWriter, r *http.Request) {
	infos := make([]models.ConditionInfo, len(climate.Conditions))
	for i, c := range climate.Conditions {
		infos[i] = models.ConditionInfo{ID: c.ID, Label: c.Label}
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	response.JSON(w, r, http.StatusOK, models.ConditionsResponse{Conditions: infos})
}
