package auth

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Middleware verifies the Authorization header on every request and attaches
// the resulting user claims to the request context. Public endpoints and
// requests without a token pass through unauthenticated; handlers that need an
// identity enforce it via RequireAuth.
func Middleware(firebaseAuth *FirebaseAuth, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				// Scheduler endpoints authenticate with a shared secret
				// instead of a user token.
				next.ServeHTTP(w, r)
				return
			}

			token, err := ExtractTokenFromHeader(authHeader)
			if err != nil {
				writeUnauthenticated(w, err.Error())
				return
			}

			claims, err := firebaseAuth.VerifyToken(r.Context(), token)
			if err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("Token verification failed")
				writeUnauthenticated(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserClaims(r.Context(), claims)))
		})
	}
}

// LocalDevMiddleware provides a mock user context for local development
func LocalDevMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			claims := &UserClaims{
				UID:         "local-dev-user",
				Email:       "dev@localhost",
				DisplayName: "Local Dev User",
				Verified:    true,
			}
			// Allow impersonation via header in dev mode only.
			if impersonate := r.Header.Get("X-Debug-Impersonate-User"); impersonate != "" {
				claims = &UserClaims{
					UID:   impersonate,
					Email: impersonate + "@debug.local",
				}
			}

			next.ServeHTTP(w, r.WithContext(WithUserClaims(r.Context(), claims)))
		})
	}
}

// isPublicEndpoint checks if an endpoint should be accessible without authentication
func isPublicEndpoint(path string) bool {
	publicEndpoints := []string{
		"/health",
		"/ping",
	}

	for _, endpoint := range publicEndpoints {
		if path == endpoint {
			return true
		}
	}

	return false
}

func writeUnauthenticated(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
