package controllers

import (
	"context"
	"net/http"

	"github.com/garrisonhq/garrison-backend/api/responses"
	"github.com/garrisonhq/garrison-backend/pkg/config"
	pkgerrors "github.com/garrisonhq/garrison-backend/pkg/errors"
	"github.com/garrisonhq/garrison-backend/pkg/logger"
)

// Pinger reports connectivity for a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Garrison-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the database and Redis before reporting ready.
func HealthReady(cfg *config.Config, db, cache Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Garrison-Env", cfg.App.Env)

		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
