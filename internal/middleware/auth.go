package middleware

import (
	"net/http"
	"strings"

	"github.com/templui/authd/internal/ctxkeys"
)

// TokenAuthenticator resolves a bearer token to a user id.
type TokenAuthenticator interface {
	Authenticate(accessToken string) (string, error)
}

// Authenticate reads a bearer token from the Authorization header and, if it
// is a valid access token, stores the user id in the request context.
// Requests without a valid token continue anonymously.
func Authenticate(authenticator TokenAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := authenticator.Authenticate(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth returns a wrapper that hands anonymous requests to unauthorized.
//
// Example:
//
//	requireAuth := RequireAuth(handler.Unauthorized)
//	mux.HandleFunc("GET /auth/me", requireAuth(auth.Me))
func RequireAuth(unauthorized http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if ctxkeys.UserID(r.Context()) == "" {
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
