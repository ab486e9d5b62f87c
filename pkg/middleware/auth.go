package middleware

import (
	"net/http"
	"strings"

	"shortlink/pkg/auth"
	"shortlink/pkg/logging"
)

type Auth struct {
	tokens *auth.Tokens
	logger *logging.Logger
}

func NewAuth(tokens *auth.Tokens, logger *logging.Logger) *Auth {
	return &Auth{tokens: tokens, logger: logger}
}

// Authenticate is the optional-identity stage, applied to every inbound
// request. A missing, malformed, expired, or tampered bearer token never
// blocks the request; it just proceeds anonymous.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := a.tokens.Verify(tokenString)
		if err != nil {
			a.logger.Debug(r.Context(), "bearer token rejected", "reason", err.Error())
			next.ServeHTTP(w, r)
			return
		}

		ctx := auth.WithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth is the required-identity stage, applied per route.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFrom(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
