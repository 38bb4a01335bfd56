package api

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestLoggingMiddleware logs the start and completion of each request.
// Bodies are never logged.
func (s *Server) RequestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		s.logger.Printf("request_start method=%s path=%s request_id=%s remote_addr=%s",
			r.Method, r.URL.Path, requestID, r.RemoteAddr)

		next.ServeHTTP(ww, r)

		s.logger.Printf("request_completed method=%s path=%s status=%d duration=%v request_id=%s bytes_written=%d",
			r.Method, r.URL.Path, ww.Status(), time.Since(start), requestID, ww.BytesWritten())
	})
}

// versionHeader stamps every response with the build version.
func versionHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Scorekeeper-Version", Version)
		next.ServeHTTP(w, r)
	})
}

// TokenHeader carries the loopback API token.
const TokenHeader = "X-Scorekeeper-Token"

// TokenMiddleware rejects requests without the configured token.
func (s *Server) TokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(TokenHeader)), []byte(s.token)) != 1 {
			s.errorHandler.write(w, r, http.StatusUnauthorized,
				NewError(ErrTypeUnauthorized, "missing or invalid "+TokenHeader))
			return
		}
		next.ServeHTTP(w, r)
	})
}
