package rest

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/validation"
)

// defaultPlaylistName is used when the save request carries no name.
const defaultPlaylistName = "My Playlist"

type searchRequest struct {
	K     int `json:"k"`
	Limit int `json:"limit" validate:"min=0"`
}

type savePlaylistRequest struct {
	Name string `json:"name" validate:"max=200"`
}

// FindSimilar handles POST /sessions/{id}/search
func (h *Handler) FindSimilar(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		writeServiceError(w, r, err, errCodeValidation)
		return
	}
	k := req.K
	if k == 0 {
		k = h.cfg.DefaultNeighbors
	}
	if k < 1 || k > h.cfg.MaxNeighbors {
		writeErrorWithCode(w, http.StatusBadRequest,
			fmt.Sprintf("k must be between 1 and %d", h.cfg.MaxNeighbors), errCodeInvalidNeighborCount)
		return
	}

	var result domain.SimilarityResult
	err := h.sessions.With(chi.URLParam(r, "id"), userID(r), func(s *domain.Session) error {
		res, err := h.svc.FindSimilar(r.Context(), s, k)
		if err != nil {
			return err
		}
		result = res.Truncate(req.Limit)
		return nil
	})
	if err != nil {
		writeServiceError(w, r, err, errCodeInternal)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SavePlaylist handles POST /sessions/{id}/playlists
func (h *Handler) SavePlaylist(w http.ResponseWriter, r *http.Request) {
	var req savePlaylistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		writeServiceError(w, r, err, errCodeValidation)
		return
	}
	if req.Name == "" {
		req.Name = defaultPlaylistName
	}

	var handle domain.PlaylistHandle
	err := h.sessions.With(chi.URLParam(r, "id"), userID(r), func(s *domain.Session) error {
		var err error
		handle, err = h.svc.SavePlaylist(r.Context(), s, req.Name)
		return err
	})
	if err != nil {
		writeServiceError(w, r, err, errCodeSaveFailed)
		return
	}
	writeJSON(w, http.StatusCreated, handle)
}
