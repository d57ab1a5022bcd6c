package controllers

import (
	"net/http"

	"github.com/garrisonhq/garrison-backend/api/middleware"
	"github.com/garrisonhq/garrison-backend/api/responses"
	"github.com/garrisonhq/garrison-backend/api/validators"
	"github.com/garrisonhq/garrison-backend/internal/auth"
	pkgerrors "github.com/garrisonhq/garrison-backend/pkg/errors"
	"github.com/garrisonhq/garrison-backend/pkg/logger"
)

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AuthRegister creates an account. Base-scoped roles must name a home base.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), body)
		if err != nil {
			if logg != nil {
				logg.Error(r.Context(), "register failed", err)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AuthRefresh rotates the refresh token pair.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Refresh(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the session tied to the presented access token.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		accessID := middleware.AccessIDFromContext(r.Context())
		if err := svc.Logout(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
