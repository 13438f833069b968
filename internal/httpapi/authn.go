package httpapi

import (
	"net/http"
	"strings"

	"societyhub.org/internal/identity"
)

// publicPaths need no bearer token. The websocket endpoint authenticates
// itself from the query string so the upgrade handshake is not rejected here.
var publicPaths = map[string]struct{}{
	"/api/auth/register": {},
	"/api/auth/login":    {},
	"/healthz":           {},
	"/readyz":            {},
	"/metrics":           {},
	"/ws":                {},
}

func isPublic(r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return true
	}
	if _, ok := publicPaths[r.URL.Path]; ok {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/uploads/")
}

// withAuth resolves the bearer token into a live identity and stores it on
// the request context. Public paths pass through untouched.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublic(r) {
			next.ServeHTTP(w, r)
			return
		}
		token := extractBearerToken(r)
		if token == "" {
			writeError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		id, err := a.resolver.Resolve(r.Context(), token)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(identity.ContextWithIdentity(r.Context(), id)))
	})
}

func extractBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
