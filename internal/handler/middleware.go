package handler

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/msomdec/limur-users/internal/service"
)

type contextKey string

const profileContextKey contextKey = "profile"

// ProfileCookie holds the signed profile token.
const ProfileCookie = "limur_profile"

// ProfileFromContext returns the profile ID set by WithProfile, or "".
func ProfileFromContext(ctx context.Context) string {
	profile, _ := ctx.Value(profileContextKey).(string)
	return profile
}

// WithProfile resolves the request's profile from its cookie. Requests
// without a valid token are given a fresh profile and cookie, drawing on
// the client address's bucket in issuance. A nil issuance limiter allows
// every new profile.
func WithProfile(profiles *service.ProfileService, issuance *service.TokenBucket, cookieSecure bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var profile string
		if cookie, err := r.Cookie(ProfileCookie); err == nil {
			profile, _ = profiles.Validate(cookie.Value)
		}

		if profile == "" {
			if issuance != nil && !issuance.Allow("ip:"+clientIP(r)) {
				slog.Warn("profile issuance limited", "remote_addr", r.RemoteAddr)
				w.Header().Set("Retry-After", "10")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			id, token, err := profiles.Issue()
			if err != nil {
				slog.Error("issue profile", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			profile = id
			http.SetCookie(w, &http.Cookie{
				Name:     ProfileCookie,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   cookieSecure,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int(service.ProfileTTL / time.Second),
			})
		}

		ctx := context.WithValue(r.Context(), profileContextKey, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects requests with 429 once the profile's bucket is empty.
// It must run inside WithProfile.
func RateLimit(limiter *service.TokenBucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(ProfileFromContext(r.Context())) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SecurityHeaders sets conservative browser security headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		// Datastar evaluates expressions with the Function constructor.
		h.Set("Content-Security-Policy",
			"default-src 'self'; script-src 'self' https://cdn.jsdelivr.net 'unsafe-eval'; style-src 'self' 'unsafe-inline'")
		next.ServeHTTP(w, r)
	})
}

// LogRequests logs one line per request with its status and duration.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps SSE responses streaming through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
