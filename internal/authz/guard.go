package authz

import (
	"time"

	"github.com/google/uuid"

	"github.com/garrisonhq/garrison-backend/pkg/enums"
	pkgerrors "github.com/garrisonhq/garrison-backend/pkg/errors"
)

// Principal is the caller identity supplied per request by the auth layer.
// It is trusted as already authenticated and never persisted here.
type Principal struct {
	UserID     uuid.UUID
	Role       enums.UserRole
	HomeBaseID *uuid.UUID
}

// Scope restricts a read to a base, an asset type, and a date range. A nil
// BaseID means the global view, which only admins may request.
type Scope struct {
	BaseID      *uuid.UUID
	AssetTypeID *uuid.UUID
	Start       *time.Time
	End         *time.Time
}

// ResolveScope returns the effective scope for the caller. Admins pass
// through unchanged. Restricted roles are pinned to their home base: an empty
// base is forced to the home base (never silently global) and a mismatched
// base fails with a forbidden error.
func ResolveScope(p Principal, requested Scope) (Scope, error) {
	switch p.Role {
	case enums.UserRoleAdmin:
		return requested, nil
	case enums.UserRoleBaseCommander, enums.UserRoleLogisticsOfficer:
		if p.HomeBaseID == nil {
			return Scope{}, pkgerrors.New(pkgerrors.CodeForbidden, "principal has no home base")
		}
		if requested.BaseID == nil {
			effective := requested
			home := *p.HomeBaseID
			effective.BaseID = &home
			return effective, nil
		}
		if *requested.BaseID != *p.HomeBaseID {
			return Scope{}, pkgerrors.New(pkgerrors.CodeForbidden, "scope outside home base")
		}
		return requested, nil
	}
	return Scope{}, pkgerrors.New(pkgerrors.CodeForbidden, "unknown role")
}

// AuthorizeWrite checks that the caller may post a transaction touching the
// given bases. Restricted principals may only touch their home base.
func AuthorizeWrite(p Principal, baseIDs ...uuid.UUID) error {
	switch p.Role {
	case enums.UserRoleAdmin:
		return nil
	case enums.UserRoleBaseCommander, enums.UserRoleLogisticsOfficer:
		if p.HomeBaseID == nil {
			return pkgerrors.New(pkgerrors.CodeForbidden, "principal has no home base")
		}
		for _, id := range baseIDs {
			if id != *p.HomeBaseID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "write outside home base")
			}
		}
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "unknown role")
}

// VisibleKinds returns the transaction kinds the caller may list, or nil when
// unrestricted. Logistics officers only see procurement and transfer movement.
func VisibleKinds(p Principal) []enums.TransactionKind {
	if p.Role == enums.UserRoleLogisticsOfficer {
		return []enums.TransactionKind{
			enums.TransactionKindPurchase,
			enums.TransactionKindTransferIn,
			enums.TransactionKindTransferOut,
		}
	}
	return nil
}
