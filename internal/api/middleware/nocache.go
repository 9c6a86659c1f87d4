package middleware

import "net/http"

// NoCache keeps authenticated pages out of browser and proxy caches.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		h.Add("Vary", "Cookie")
		next.ServeHTTP(w, r)
	})
}
