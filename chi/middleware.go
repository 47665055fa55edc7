package chi

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/fwojciec/reelscout"
	"github.com/go-chi/chi/v5/middleware"
)

// preflight answers every OPTIONS request with 204 once CORS headers are set.
func preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
				"remote", r.RemoteAddr)
		}()
		next.ServeHTTP(ww, r)
	})
}

// requireAPIKey rejects requests whose x-api-key header does not match the
// configured key. An unconfigured key rejects everything.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if s.config.APIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.config.APIKey)) != 1 {
			s.Error(w, r, reelscout.Errorf(reelscout.EUNAUTHORIZED, "missing or invalid API key"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
