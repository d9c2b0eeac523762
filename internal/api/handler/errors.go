package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/weatherodds/weatherodds/internal/api/models"
	"github.com/weatherodds/weatherodds/internal/api/response"
	"github.com/weatherodds/weatherodds/internal/climate"
)

// maxBodyBytes bounds JSON request bodies. Export bodies carry at most a
// 31-day range plus a trend series, well under this.
const maxBodyBytes = 1 << 20

// decodeAndValidate decodes the JSON body into dst and validates it. On
// failure it writes a 400 problem and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return false
	}

	if fieldErrors := models.Validate(dst); fieldErrors != nil {
		response.BadRequest(w, r, "request validation failed", fieldErrors)
		return false
	}
	return true
}

// writeEngineError maps an engine error to a problem response.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, climate.ErrValidation) {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	zerolog.Ctx(r.Context()).Error().Err(err).Msg("engine returned an unexpected error")
	response.InternalError(w, r, "an unexpected error occurred")
}
