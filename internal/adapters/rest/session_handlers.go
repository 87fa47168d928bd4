package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/validation"
)

type sessionResponse struct {
	ID         string              `json:"session_id"`
	UserID     string              `json:"user_id"`
	Cart       []domain.SongRecord `json:"cart"`
	CartSize   int                 `json:"cart_size"`
	CanSearch  bool                `json:"can_search"`
	ResultSize int                 `json:"result_size"`
	CreatedAt  time.Time           `json:"created_at"`
}

func newSessionResponse(s *domain.Session) sessionResponse {
	resp := sessionResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Cart:      s.Cart.Songs(),
		CartSize:  s.Cart.Len(),
		CanSearch: s.Cart.CanSearch(),
		CreatedAt: s.CreatedAt,
	}
	if s.Result != nil {
		resp.ResultSize = s.Result.Len()
	}
	return resp
}

type toggleRequest struct {
	TrackName   string `json:"track_name" validate:"required"`
	TrackArtist string `json:"track_artist" validate:"required"`
}

type toggleResponse struct {
	InCart bool `json:"in_cart"`
	sessionResponse
}

// CreateSession handles POST /sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create(userID(r))
	w.Header().Set("Location", "/sessions/"+s.ID)
	writeJSON(w, http.StatusCreated, newSessionResponse(s))
}

// GetSession handles GET /sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	var resp sessionResponse
	err := h.sessions.With(chi.URLParam(r, "id"), userID(r), func(s *domain.Session) error {
		resp = newSessionResponse(s)
		return nil
	})
	if err != nil {
		writeServiceError(w, r, err, errCodeInternal)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteSession handles DELETE /sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id"), userID(r)); err != nil {
		writeServiceError(w, r, err, errCodeInternal)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleCart handles POST /sessions/{id}/cart/toggle
func (h *Handler) ToggleCart(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		writeServiceError(w, r, err, errCodeValidation)
		return
	}

	var resp toggleResponse
	err := h.sessions.With(chi.URLParam(r, "id"), userID(r), func(s *domain.Session) error {
		in, err := h.svc.ToggleSong(s, domain.SongKey{TrackName: req.TrackName, TrackArtist: req.TrackArtist})
		if err != nil {
			return err
		}
		resp = toggleResponse{InCart: in, sessionResponse: newSessionResponse(s)}
		return nil
	})
	if err != nil {
		writeServiceError(w, r, err, errCodeInternal)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// RemoveFromCart handles DELETE /sessions/{id}/cart/{position}
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	pos, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		writeErrorWithCode(w, http.StatusBadRequest, "position must be an integer", errCodeValidation)
		return
	}

	var resp sessionResponse
	err = h.sessions.With(chi.URLParam(r, "id"), userID(r), func(s *domain.Session) error {
		if err := h.svc.RemoveAt(s, pos); err != nil {
			return err
		}
		resp = newSessionResponse(s)
		return nil
	})
	if err != nil {
		writeServiceError(w, r, err, errCodeInternal)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ClearCart handles DELETE /sessions/{id}/cart
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	var resp sessionResponse
	err := h.sessions.With(chi.URLParam(r, "id"), userID(r), func(s *domain.Session) error {
		h.svc.ClearCart(s)
		resp = newSessionResponse(s)
		return nil
	})
	if err != nil {
		writeServiceError(w, r, err, errCodeInternal)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
