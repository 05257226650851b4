package http

import (
	"net/http"
	"strings"
)

// CORS echoes the request origin back only when it is on the allow-list.
// Matching is exact: scheme, host and port must all be equal.
type CORS struct {
	origins map[string]struct{}
}

func NewCORS(origins []string) CORS {
	set := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		if origin = strings.TrimSpace(origin); origin != "" {
			set[origin] = struct{}{}
		}
	}
	return CORS{origins: set}
}

func (c CORS) Allows(origin string) bool {
	_, ok := c.origins[origin]
	return ok
}

// Handler sets the CORS headers before the wrapped handler runs, so they are
// present on every response, errors included.
func (c CORS) Handler(methods ...string) func(http.Handler) http.Handler {
	allowMethods := strings.Join(methods, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if origin := r.Header.Get("Origin"); origin != "" && c.Allows(origin) {
				h.Set("Access-Control-Allow-Origin", origin)
			}
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", "Content-Type")

			next.ServeHTTP(w, r)
		})
	}
}
