package controller

import (
	"net/http"
	"slices"
)

// AnyOrigin in the allowed origins accepts every origin.
const AnyOrigin = "*"

// WithCORS returns a middleware that lets the allowed origins call the API
// with credentials. The session cookie rides on cross-site requests, so the
// request origin is echoed instead of "*". OPTIONS preflight requests are
// answered with 204 No Content.
func WithCORS(origins []string) func(http.Handler) http.Handler {
	anyOrigin := slices.Contains(origins, AnyOrigin)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")
			if origin := r.Header.Get("Origin"); origin != "" && (anyOrigin || slices.Contains(origins, origin)) {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Headers",
					"Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-Id, accept, origin, Cache-Control")
				h.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
