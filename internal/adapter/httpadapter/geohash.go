package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/couchcryptid/geohash-etl/internal/geohash"
)

type geohashResponse struct {
	Geohash   string `json:"geohash"`
	Precision int    `json:"precision"`
	Parsed    bool   `json:"parsed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleGeohash serves GET /geohash?lat=..&lon=..[&precision=..].
//
// Non-numeric coordinates are not a client error: they answer 200 with the
// "error" sentinel, the same value the pipeline writes. Out-of-range
// coordinates and invalid precision answer 422.
func handleGeohash(defaultPrecision int, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if !q.Has("lat") || !q.Has("lon") {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "lat and lon query parameters are required"})
			return
		}

		precision := defaultPrecision
		if p := q.Get("precision"); p != "" {
			n, err := strconv.Atoi(p)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "precision must be an integer"})
				return
			}
			precision = n
		}

		res, err := geohash.EncodeText(q.Get("lat"), q.Get("lon"), precision)
		if err != nil {
			if errors.Is(err, geohash.ErrOutOfRange) || errors.Is(err, geohash.ErrInvalidPrecision) {
				writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
				return
			}
			logger.Error("geohash lookup failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			return
		}

		writeJSON(w, http.StatusOK, geohashResponse{
			Geohash:   res.String(),
			Precision: precision,
			Parsed:    res.Parsed,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
