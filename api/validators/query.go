package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garrisonhq/garrison-backend/pkg/enums"
	pkgerrors "github.com/garrisonhq/garrison-backend/pkg/errors"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseQueryUUID returns nil when the parameter is absent.
func ParseQueryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a uuid").WithDetails(map[string]any{"field": key})
	}
	return &id, nil
}

// ParseQueryTime accepts RFC3339 timestamps and plain dates. A plain date is
// read as midnight UTC, so an end_date of 2026-06-01 excludes that day's
// transactions unless a full timestamp is given.
func ParseQueryTime(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		utc := t.UTC()
		return &utc, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		utc := t.UTC()
		return &utc, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a RFC3339 timestamp or YYYY-MM-DD date").WithDetails(map[string]any{"field": key})
}

// ParseQueryKinds reads a comma-separated list of transaction kinds.
func ParseQueryKinds(r *http.Request, key string) ([]enums.TransactionKind, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	var kinds []enums.TransactionKind
	for _, part := range strings.Split(raw, ",") {
		kind, err := enums.ParseTransactionKind(strings.TrimSpace(part))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown transaction kind").WithDetails(map[string]any{"field": key, "value": part})
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// ParsePathUUID parses a chi URL parameter as a UUID.
func ParsePathUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a uuid").WithDetails(map[string]any{"field": field})
	}
	return id, nil
}
