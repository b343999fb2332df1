package middleware

import (
	"net/http"
	"strconv"
	"time"
)

const cacheControlNoStore = "no-store, no-cache, must-revalidate, max-age=0"

// NoStore marks responses as uncacheable. API responses carry per-user mood
// data and must not be kept by shared caches.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", cacheControlNoStore)
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// MaxAge lets the browser reuse a response for d, replacing NoStore's headers.
// Shared caches are still excluded. Use it on routes whose body is the same
// for every user, such as the questionnaire.
func MaxAge(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	value := "private, max-age=" + strconv.Itoa(int(d/time.Second))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Cache-Control", value)
			h.Del("Pragma")
			h.Del("Expires")
			next.ServeHTTP(w, r)
		})
	}
}
