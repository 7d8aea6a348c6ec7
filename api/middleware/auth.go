package middleware

import (
	"net/http"
	"strings"

	"github.com/chowpack/chowpack-engine/api/responses"
	pkgAuth "github.com/chowpack/chowpack-engine/pkg/auth"
	"github.com/chowpack/chowpack-engine/pkg/config"
	pkgerrors "github.com/chowpack/chowpack-engine/pkg/errors"
	"github.com/chowpack/chowpack-engine/pkg/logger"
)

// Auth validates the bearer token and seeds the request context with the
// session identity. The raw token is kept for upstream pass-through.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithIdentity(r.Context(), claims.UserID.String(), claims.University, token)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    claims.UserID.String(),
					"university": claims.University,
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
