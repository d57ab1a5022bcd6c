package middleware

import (
	"net/http"
	"strings"

	"github.com/garrisonhq/garrison-backend/api/responses"
	"github.com/garrisonhq/garrison-backend/internal/authz"
	pkgAuth "github.com/garrisonhq/garrison-backend/pkg/auth"
	"github.com/garrisonhq/garrison-backend/pkg/auth/session"
	"github.com/garrisonhq/garrison-backend/pkg/config"
	pkgerrors "github.com/garrisonhq/garrison-backend/pkg/errors"
	"github.com/garrisonhq/garrison-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the caller.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
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

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			principal := authz.Principal{
				UserID:     claims.UserID,
				Role:       claims.Role,
				HomeBaseID: claims.HomeBaseID,
			}
			ctx := WithPrincipal(r.Context(), principal)
			ctx = WithAccessID(ctx, claims.ID)

			if logg != nil {
				fields := map[string]any{
					"user_id":    claims.UserID.String(),
					"actor_role": string(claims.Role),
				}
				if claims.HomeBaseID != nil {
					fields["base_id"] = claims.HomeBaseID.String()
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
