// AngelaMos | 2026
// cors.go

package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/byzip-v2/byzip-backend-v2/internal/config"
)

// CORS echoes the request origin only when it is on the allow-list. A "*"
// entry allows any origin without credentials.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	allowAny := false
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			allowAny = true
		}
		origins[strings.TrimRight(o, "/")] = struct{}{}
	}

	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()

			if origin != "" {
				h.Add("Vary", "Origin")
				_, listed := origins[origin]
				switch {
				case listed:
					h.Set("Access-Control-Allow-Origin", origin)
					if cfg.AllowCredentials {
						h.Set("Access-Control-Allow-Credentials", "true")
					}
				case allowAny:
					h.Set("Access-Control-Allow-Origin", "*")
				}
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				h.Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
