package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/weatherodds/weatherodds/internal/api/models"
	"github.com/weatherodds/weatherodds/internal/api/response"
	"github.com/weatherodds/weatherodds/internal/export"
)

// ExportHandler renders result sets the client already holds as downloads.
type ExportHandler struct {
	clock clockwork.Clock
}

// NewExportHandler creates a new ExportHandler. A nil clock uses the wall clock.
func NewExportHandler(clock clockwork.Clock) *ExportHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ExportHandler{clock: clock}
}

// CreateExport handles POST /v1/exports?format=csv|json.
func (h *ExportHandler) CreateExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.BadRequest(w, r, err.Error(), []models.FieldError{{
			Field:   "format",
			Message: "must be csv or json",
			Code:    models.CodeInvalid,
		}})
		return
	}

	var input models.ExportRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	report := input.ToReport(h.clock.Now().UTC())

	var buf bytes.Buffer
	if err := export.Write(&buf, format, report); err != nil {
		if errors.Is(err, export.ErrUnsupportedFormat) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Str("format", string(format)).Msg("failed to render export")
		response.InternalError(w, r, "failed to render export")
		return
	}

	response.Attachment(w, r, format.ContentType(), report.Filename(format), buf.Bytes())
}
