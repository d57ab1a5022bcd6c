package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/garrisonhq/garrison-backend/api/middleware"
	"github.com/garrisonhq/garrison-backend/api/responses"
	"github.com/garrisonhq/garrison-backend/api/validators"
	"github.com/garrisonhq/garrison-backend/internal/catalog"
	pkgerrors "github.com/garrisonhq/garrison-backend/pkg/errors"
	"github.com/garrisonhq/garrison-backend/pkg/logger"
)

type baseCreateRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Location string `json:"location" validate:"required,min=1"`
}

type baseUpdateRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Location *string `json:"location,omitempty" validate:"omitempty,min=1"`
}

// BaseCreate registers a new base. Admin only.
func BaseCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		caller, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller context missing"))
			return
		}

		var body baseCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		base, err := svc.CreateBase(r.Context(), caller, catalog.CreateBaseInput{Name: body.Name, Location: body.Location})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, base)
	}
}

// BaseList returns every base ordered by name.
func BaseList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		bases, err := svc.ListBases(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bases)
	}
}

// BaseGet returns one base by id.
func BaseGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "baseId"), "baseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		base, err := svc.GetBase(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, base)
	}
}

// BaseUpdate changes name or location. Admin only.
func BaseUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		caller, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller context missing"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "baseId"), "baseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body baseUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		base, err := svc.UpdateBase(r.Context(), caller, id, catalog.UpdateBaseInput{Name: body.Name, Location: body.Location})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, base)
	}
}

// BaseDelete removes a base with no recorded transactions. Admin only.
func BaseDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		caller, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller context missing"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "baseId"), "baseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteBase(r.Context(), caller, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
