package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"flyer-service/internal/config"
	"flyer-service/internal/discount/model"
	"flyer-service/internal/discount/service"
)

// RowParser turns a raw listing (free text or spreadsheet) into rows.
type RowParser interface {
	ParseText(ctx context.Context, raw string) ([]model.Row, error)
	ParseFile(ctx context.Context, r io.Reader, filename string) ([]model.Row, error)
}

// RowCache remembers the last parsed batch so a match request can omit
// the rows and reuse it.
type RowCache interface {
	LastParsedRows() []model.Row
	SetLastRows(rows []model.Row)
}

// Parse accepts either a multipart upload (field "file": xlsx/xls/csv,
// optional field "text") or a raw text body, and returns normalized rows.
func Parse(cfg config.Config, logger zerolog.Logger, parser RowParser, cache RowCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := requestLogger(logger, r)
		defer r.Body.Close()

		var rows []model.Row
		var err error
		var source string

		ct := r.Header.Get("Content-Type")
		switch {
		case strings.HasPrefix(ct, "multipart/form-data"):
			if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
				errorJSON(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
				return
			}
			if file, header, ferr := r.FormFile("file"); ferr == nil {
				defer file.Close()
				source = header.Filename
				rows, err = parser.ParseFile(r.Context(), file, header.Filename)
			} else if text := r.FormValue("text"); text != "" {
				source = "form text"
				rows, err = parser.ParseText(r.Context(), text)
			} else {
				errorJSON(w, http.StatusBadRequest, "missing file or text")
				return
			}
		default:
			body, rerr := io.ReadAll(r.Body)
			if rerr != nil {
				errorJSON(w, http.StatusBadRequest, "read body: "+rerr.Error())
				return
			}
			source = "raw text"
			rows, err = parser.ParseText(r.Context(), string(body))
		}
		if err != nil {
			log.Error().Err(err).Str("source", source).Msg("discount parse failed")
			errorJSON(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		cache.SetLastRows(rows)

		writeJSON(w, http.StatusOK, map[string]any{
			"rows":  rows,
			"count": len(rows),
		})
		log.Info().
			Str("source", source).
			Int("rows", len(rows)).
			Dur("elapsed", time.Since(start)).
			Msg("discounts parsed")
	}
}

// matchRequest carries OCR slots plus optional rows and threshold. Empty
// rows fall back to the last parsed batch.
type matchRequest struct {
	Slots     []model.Slot `json:"slots"`
	Rows      []model.Row  `json:"rows"`
	Threshold float64      `json:"threshold"`
}

// Match pairs OCR slots with discount rows and reports per-slot
// confidence plus the rows nothing claimed.
func Match(cfg config.Config, logger zerolog.Logger, cache RowCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := requestLogger(logger, r)
		defer r.Body.Close()

		var req matchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorJSON(w, http.StatusBadRequest, "bad json: "+err.Error())
			return
		}
		if len(req.Slots) == 0 {
			errorJSON(w, http.StatusBadRequest, "no slots to match")
			return
		}

		rows := req.Rows
		if len(rows) == 0 {
			rows = cache.LastParsedRows()
		}

		threshold := req.Threshold
		if threshold <= 0 || threshold > 1 {
			threshold = cfg.MatchThreshold
		}

		res := service.Match(req.Slots, rows, model.Options{Threshold: threshold})

		writeJSON(w, http.StatusOK, res)
		log.Info().
			Int("slots", len(req.Slots)).
			Int("rows", len(rows)).
			Int("unmatched", len(res.UnmatchedRows)).
			Float64("threshold", threshold).
			Dur("elapsed", time.Since(start)).
			Msg("match done")
	}
}
