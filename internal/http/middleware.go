package http

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"presupuesto/internal/auth"
	"presupuesto/internal/log"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	sessionKey
)

func requestIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

func sessionFromContext(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(sessionKey).(auth.Session)
	return s, ok
}

// responseWriter records the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets the live feed upgrade through the wrapper.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withTracing assigns a request id, stores a request-scoped logger and logs
// the start and end of every request.
func (s *Server) withTracing(next http.Handler) http.Handler {
	withLogger := log.Middleware(s.deps.Logger, requestIDFrom)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 64 {
			id = generateRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))

		withLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			clientIP := extractClientIP(r)
			log.LogHTTPStart(r.Context(), r, clientIP)

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			log.LogHTTPEnd(r.Context(), r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
		})).ServeHTTP(w, r)
	})
}

func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if detectSuspiciousRequest(r, s.metrics) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request detected",
				log.FieldComponent, log.ComponentSecurity,
				log.FieldClientIP, extractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}

		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// withRateLimit throttles mutating methods per client IP.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
			ip := extractClientIP(r)
			if !s.rateLimiter.allow(ip, s.metrics) {
				log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
					log.FieldComponent, log.ComponentRateLimit,
					log.FieldClientIP, ip,
					log.FieldPath, r.URL.Path)
				w.Header().Set("Retry-After", "60")
				writeJSON(w, http.StatusTooManyRequests, errorBody{Error: msgRateLimited})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

const (
	msgRateLimited  = "Demasiadas solicitudes. Espera un momento."
	msgUnauthorized = "Inicia sesión para continuar."
)

// withSession attaches the bearer session to the context. When sign-in is
// required, requests without a live session are rejected.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			sess auth.Session
			ok   bool
		)
		if s.deps.Authenticator != nil {
			sess, ok = s.deps.Authenticator.Lookup(tokenFrom(r))
		}
		if !ok && s.deps.AuthRequired {
			atomic.AddInt64(&s.metrics.unauthorized, 1)
			w.Header().Set("WWW-Authenticate", `Bearer realm="presupuesto"`)
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: msgUnauthorized})
			return
		}
		if ok {
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			l := log.FromContext(ctx).With(log.FieldUserID, sess.UserID)
			r = r.WithContext(log.NewContext(ctx, l))
		}
		next.ServeHTTP(w, r)
	})
}

// tokenFrom reads the bearer token, or the token query parameter browsers
// use for the websocket handshake.
func tokenFrom(r *http.Request) string {
	if t := bearerToken(r); t != "" {
		return t
	}
	return r.URL.Query().Get("token")
}
