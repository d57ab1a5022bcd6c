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

type assetTypeCreateRequest struct {
	Name        string `json:"name" validate:"required,min=1"`
	Description string `json:"description,omitempty"`
}

type assetTypeUpdateRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
}

// AssetTypeCreate registers a new asset type. Admin only.
func AssetTypeCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body assetTypeCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assetType, err := svc.CreateAssetType(r.Context(), caller, catalog.CreateAssetTypeInput{Name: body.Name, Description: body.Description})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, assetType)
	}
}

// AssetTypeList returns every asset type ordered by name.
func AssetTypeList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		assetTypes, err := svc.ListAssetTypes(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, assetTypes)
	}
}

// AssetTypeGet returns one asset type by id.
func AssetTypeGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "assetTypeId"), "assetTypeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assetType, err := svc.GetAssetType(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, assetType)
	}
}

// AssetTypeUpdate changes name or description. Admin only.
func AssetTypeUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		id, err := validators.ParsePathUUID(chi.URLParam(r, "assetTypeId"), "assetTypeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body assetTypeUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assetType, err := svc.UpdateAssetType(r.Context(), caller, id, catalog.UpdateAssetTypeInput{Name: body.Name, Description: body.Description})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, assetType)
	}
}

// AssetTypeDelete removes an asset type with no recorded transactions. Admin only.
func AssetTypeDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		id, err := validators.ParsePathUUID(chi.URLParam(r, "assetTypeId"), "assetTypeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteAssetType(r.Context(), caller, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
