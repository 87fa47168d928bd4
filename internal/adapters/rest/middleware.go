package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ewilliams-labs/trackfinder/internal/logging"
	"github.com/ewilliams-labs/trackfinder/internal/metrics"
	"github.com/ewilliams-labs/trackfinder/internal/validation"
)

// userIDHeader carries the caller identity supplied by the fronting proxy.
const userIDHeader = "X-User-ID"

type ctxKey int

const userIDKey ctxKey = iota

// requestIDWithLogging wraps chi's RequestID so the id also lands in the
// logging context.
func requestIDWithLogging(next http.Handler) http.Handler {
	chiRequestID := chimiddleware.RequestID(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(chimiddleware.RequestIDHeader)
		if id == "" {
			id = logging.GenerateRequestID()
			r.Header.Set(chimiddleware.RequestIDHeader, id)
		}
		w.Header().Set(chimiddleware.RequestIDHeader, id)
		ctx := logging.ContextWithRequestID(r.Context(), id)
		chiRequestID.ServeHTTP(w, r.WithContext(ctx))
	})
}

// recordMetrics counts requests by route pattern, not raw path, to keep
// label cardinality bounded.
func recordMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		metrics.RecordAPIRequest(r.Method, route, status, elapsed)

		logging.Ctx(r.Context()).Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Dur("elapsed", elapsed).
			Msg("http request")
	})
}

// requireUser rejects requests without a usable X-User-ID.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(userIDHeader)
		if id == "" {
			writeErrorWithCode(w, http.StatusUnauthorized, userIDHeader+" header is required", errCodeInvalidUserID)
			return
		}
		if !validation.ValidUserID(id) {
			writeErrorWithCode(w, http.StatusBadRequest, "invalid user id", errCodeInvalidUserID)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
