package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ewilliams-labs/trackfinder/internal/core/stats"
)

const maxBins = 100

// TopArtists handles GET /stats/artists?limit=
func (h *Handler) TopArtists(w http.ResponseWriter, r *http.Request) {
	n, err := queryInt(r, "limit", stats.DefaultTopArtists)
	if err != nil {
		writeServiceError(w, r, err, errCodeValidation)
		return
	}
	report, err := h.svc.TopArtists(r.Context(), userID(r), n)
	if err != nil {
		writeServiceError(w, r, err, errCodeInternal)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GenreCounts handles GET /stats/genres
func (h *Handler) GenreCounts(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.GenreCounts(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, r, err, errCodeInternal)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// FeatureDistribution handles GET /stats/features/{feature}?bins=
func (h *Handler) FeatureDistribution(w http.ResponseWriter, r *http.Request) {
	bins, err := queryInt(r, "bins", stats.DefaultBins)
	if err != nil {
		writeServiceError(w, r, err, errCodeValidation)
		return
	}
	if bins < 1 || bins > maxBins {
		writeErrorWithCode(w, http.StatusBadRequest, "bins must be between 1 and 100", errCodeValidation)
		return
	}
	dist, err := h.svc.FeatureDistribution(r.Context(), userID(r), chi.URLParam(r, "feature"), bins)
	if err != nil {
		writeServiceError(w, r, err, errCodeInternal)
		return
	}
	writeJSON(w, http.StatusOK, dist)
}
