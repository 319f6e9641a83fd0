package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"chargesim/backend/libs/password"
)

const bearerPrefix = "Bearer "

// AuthOptions configures the shared-credential gate. When TokenHash is set it
// takes precedence over Token and is checked with bcrypt.
type AuthOptions struct {
	Token       string
	TokenHash   string
	ExemptPaths []string
}

// AuthMiddleware rejects requests whose Authorization header is not exactly
// "Bearer <token>". Exempt paths and CORS preflights pass through.
func AuthMiddleware(opts AuthOptions, logger *zap.Logger) func(http.Handler) http.Handler {
	exempt := make(map[string]struct{}, len(opts.ExemptPaths))
	for _, p := range opts.ExemptPaths {
		if p = strings.TrimSpace(p); p != "" {
			exempt[p] = struct{}{}
		}
	}
	hash := strings.TrimSpace(opts.TokenHash)
	hasher := password.NewBcryptHasher(0)
	expected := []byte(bearerPrefix + opts.Token)

	authorized := func(header string) bool {
		if hash != "" {
			token, ok := strings.CutPrefix(header, bearerPrefix)
			return ok && hasher.Compare(hash, token) == nil
		}
		return subtle.ConstantTimeCompare([]byte(header), expected) == 1
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := exempt[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if !authorized(r.Header.Get("Authorization")) {
				logger.Debug("unauthorized request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", RequestIDFromContext(r.Context())),
				)
				writeMessage(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
