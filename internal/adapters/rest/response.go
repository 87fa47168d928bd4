package rest

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/core/services"
	"github.com/ewilliams-labs/trackfinder/internal/logging"
	"github.com/ewilliams-labs/trackfinder/internal/validation"
)

const maxBodyBytes = 1 << 20

const (
	errCodeInsufficientSeeds    = "INSUFFICIENT_SEEDS"
	errCodeInvalidNeighborCount = "INVALID_NEIGHBOR_COUNT"
	errCodeEmptyPlaylist        = "EMPTY_PLAYLIST"
	errCodeNoResult             = "NO_RESULT"
	errCodeInvalidField         = "INVALID_FIELD"
	errCodeInvalidUserID        = "INVALID_USER_ID"
	errCodeValidation           = "VALIDATION_ERROR"
	errCodeNotFound             = "NOT_FOUND"
	errCodeSaveFailed           = "SAVE_FAILED"
	errCodeInternal             = "INTERNAL_ERROR"
)

type errorResponse struct {
	Error  string                  `json:"error"`
	Code   string                  `json:"code,omitempty"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeErrorWithCode(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeServiceError maps a service error onto a status and a machine code.
// fallback is the code used for unexpected failures.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Code: errCodeValidation, Fields: verr.Fields})
	case errors.Is(err, domain.ErrInsufficientSeeds):
		writeErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), errCodeInsufficientSeeds)
	case errors.Is(err, domain.ErrInvalidNeighborCount):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeInvalidNeighborCount)
	case errors.Is(err, domain.ErrEmptyPlaylist):
		writeErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), errCodeEmptyPlaylist)
	case errors.Is(err, domain.ErrNoResult):
		writeErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), errCodeNoResult)
	case errors.Is(err, domain.ErrInvalidField):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeInvalidField)
	case errors.Is(err, domain.ErrInvalidUserID):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeInvalidUserID)
	case errors.Is(err, domain.ErrInvalidPlaylistName):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeValidation)
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSessionNotFound):
		writeErrorWithCode(w, http.StatusNotFound, err.Error(), errCodeNotFound)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeErrorWithCode(w, http.StatusInternalServerError, err.Error(), fallback)
		return
	}
	if services.IsInvariant(err) {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("rejected request")
	}
}

func isJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength != 0 && !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &validation.RequestValidationError{Fields: []validation.FieldError{{
			Field:   name,
			Tag:     "numeric",
			Message: name + " must be an integer",
		}}}
	}
	return n, nil
}
