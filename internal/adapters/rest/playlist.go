package rest

import (
	"net/http"
	"strings"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

type overviewResponse struct {
	Count int                  `json:"count"`
	Rows  []domain.OverviewRow `json:"rows"`
}

// ListPlaylists handles GET /playlists?sort=&order=
func (h *Handler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var sort domain.OverviewSort
	if name := q.Get("sort"); name != "" {
		col, err := domain.ParseColumn(name)
		if err != nil {
			writeServiceError(w, r, err, errCodeValidation)
			return
		}
		sort.Column = col
	}
	switch strings.ToLower(q.Get("order")) {
	case "", "asc":
	case "desc":
		sort.Descending = true
	default:
		writeErrorWithCode(w, http.StatusBadRequest, "order must be asc or desc", errCodeValidation)
		return
	}

	rows, err := h.svc.Overview(r.Context(), userID(r), sort)
	if err != nil {
		writeServiceError(w, r, err, errCodeInternal)
		return
	}
	writeJSON(w, http.StatusOK, overviewResponse{Count: len(rows), Rows: rows})
}
