package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garrisonhq/garrison-backend/pkg/enums"
	pkgerrors "github.com/garrisonhq/garrison-backend/pkg/errors"
)

func TestResolveScopeAdminPassesThrough(t *testing.T) {
	admin := Principal{UserID: uuid.New(), Role: enums.UserRoleAdmin}

	scope, err := ResolveScope(admin, Scope{})
	require.NoError(t, err)
	assert.Nil(t, scope.BaseID)

	base := uuid.New()
	scope, err = ResolveScope(admin, Scope{BaseID: &base})
	require.NoError(t, err)
	assert.Equal(t, base, *scope.BaseID)
}

func TestResolveScopeForcesHomeBase(t *testing.T) {
	home := uuid.New()
	for _, role := range []enums.UserRole{enums.UserRoleBaseCommander, enums.UserRoleLogisticsOfficer} {
		p := Principal{UserID: uuid.New(), Role: role, HomeBaseID: &home}

		scope, err := ResolveScope(p, Scope{})
		require.NoError(t, err)
		require.NotNil(t, scope.BaseID)
		assert.Equal(t, home, *scope.BaseID)
	}
}

func TestResolveScopeRejectsForeignBase(t *testing.T) {
	home := uuid.New()
	other := uuid.New()
	p := Principal{UserID: uuid.New(), Role: enums.UserRoleBaseCommander, HomeBaseID: &home}

	_, err := ResolveScope(p, Scope{BaseID: &other})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))
}

func TestResolveScopeRejectsMissingHomeBase(t *testing.T) {
	p := Principal{UserID: uuid.New(), Role: enums.UserRoleLogisticsOfficer}
	_, err := ResolveScope(p, Scope{})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))
}

func TestResolveScopeRejectsUnknownRole(t *testing.T) {
	_, err := ResolveScope(Principal{Role: enums.UserRole("CLERK")}, Scope{})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))
}

func TestAuthorizeWrite(t *testing.T) {
	home := uuid.New()
	other := uuid.New()

	admin := Principal{Role: enums.UserRoleAdmin}
	assert.NoError(t, AuthorizeWrite(admin, home, other))

	commander := Principal{Role: enums.UserRoleBaseCommander, HomeBaseID: &home}
	assert.NoError(t, AuthorizeWrite(commander, home))
	assert.True(t, pkgerrors.Is(AuthorizeWrite(commander, other), pkgerrors.CodeForbidden))
	assert.True(t, pkgerrors.Is(AuthorizeWrite(commander, home, other), pkgerrors.CodeForbidden))

	rootless := Principal{Role: enums.UserRoleBaseCommander}
	assert.True(t, pkgerrors.Is(AuthorizeWrite(rootless, home), pkgerrors.CodeForbidden))
}

func TestVisibleKinds(t *testing.T) {
	assert.Nil(t, VisibleKinds(Principal{Role: enums.UserRoleAdmin}))
	assert.Nil(t, VisibleKinds(Principal{Role: enums.UserRoleBaseCommander}))

	kinds := VisibleKinds(Principal{Role: enums.UserRoleLogisticsOfficer})
	assert.ElementsMatch(t, []enums.TransactionKind{
		enums.TransactionKindPurchase,
		enums.TransactionKindTransferIn,
		enums.TransactionKindTransferOut,
	}, kinds)
}
