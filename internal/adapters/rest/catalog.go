package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

const (
	defaultCatalogLimit = 50
	maxCatalogLimit     = 500
)

type songsResponse struct {
	Count int                 `json:"count"`
	Songs []domain.SongRecord `json:"songs"`
}

// SearchCatalog handles GET /catalog/search?field=&q=&limit=
func (h *Handler) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("field")
	if name == "" {
		name = string(domain.SearchTrackArtist)
	}
	field, err := domain.ParseSearchField(name)
	if err != nil {
		writeServiceError(w, r, err, errCodeInvalidField)
		return
	}
	limit, ok := catalogLimit(w, r)
	if !ok {
		return
	}

	songs, err := h.svc.SearchCatalog(r.Context(), field, q.Get("q"), limit)
	if err != nil {
		writeServiceError(w, r, err, errCodeInternal)
		return
	}
	writeJSON(w, http.StatusOK, songsResponse{Count: len(songs), Songs: songs})
}

// FilterCatalog handles GET /catalog/filter?tempo=min:max&valence=min:max
func (h *Handler) FilterCatalog(w http.ResponseWriter, r *http.Request) {
	ranges, err := parseRanges(r)
	if err != nil {
		writeServiceError(w, r, err, errCodeInvalidField)
		return
	}
	limit, ok := catalogLimit(w, r)
	if !ok {
		return
	}

	songs, err := h.svc.FilterCatalog(ranges, limit)
	if err != nil {
		writeServiceError(w, r, err, errCodeInternal)
		return
	}
	writeJSON(w, http.StatusOK, songsResponse{Count: len(songs), Songs: songs})
}

func catalogLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limit, err := queryInt(r, "limit", defaultCatalogLimit)
	if err != nil {
		writeServiceError(w, r, err, errCodeValidation)
		return 0, false
	}
	if limit < 1 || limit > maxCatalogLimit {
		writeErrorWithCode(w, http.StatusBadRequest,
			fmt.Sprintf("limit must be between 1 and %d", maxCatalogLimit), errCodeValidation)
		return 0, false
	}
	return limit, true
}

// parseRanges reads one min:max pair per feature query parameter. Unknown
// parameters other than limit are rejected so typos do not silently widen
// the filter.
func parseRanges(r *http.Request) ([]domain.FeatureRange, error) {
	var ranges []domain.FeatureRange
	for name, values := range r.URL.Query() {
		if name == "limit" {
			continue
		}
		if !domain.IsFeature(name) {
			return nil, fmt.Errorf("%w: feature %q", domain.ErrInvalidField, name)
		}
		lo, hi, ok := strings.Cut(values[0], ":")
		if !ok {
			return nil, fmt.Errorf("%w: %s must be min:max", domain.ErrInvalidField, name)
		}
		minV, err1 := strconv.ParseFloat(lo, 64)
		maxV, err2 := strconv.ParseFloat(hi, 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("%w: %s bounds must be numbers", domain.ErrInvalidField, name)
		}
		ranges = append(ranges, domain.FeatureRange{Feature: name, Min: minV, Max: maxV})
	}
	return ranges, nil
}
