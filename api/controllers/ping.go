package controllers

import (
	"net/http"

	"github.com/garrisonhq/garrison-backend/api/middleware"
	"github.com/garrisonhq/garrison-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if principal, ok := middleware.PrincipalFromContext(r.Context()); ok {
			payload["role"] = string(principal.Role)
			if principal.HomeBaseID != nil {
				payload["home_base_id"] = principal.HomeBaseID.String()
			}
		}
		responses.WriteSuccess(w, payload)
	}
}
