package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolegate/rolegate/internal/roles"
)

// errRow stands in for a pgx row whose Scan fails.
type errRow struct {
	err error
}

func (r errRow) Scan(dest ...any) error {
	return r.err
}

// TestPurpose: Validates that a role id which cannot be a UUID behaves
// like an absent role instead of a driver failure.
// Scope: Unit Test
// Security: Caller-controlled URL ids must not turn lookups into 5xx
// responses; malformed and missing ids are indistinguishable.
// Expected: absent-row results from every id-taking method, with no
// database round trip.
func TestRoleRepository_MalformedRoleIDIsAbsent(t *testing.T) {
	repo := NewRoleRepository(&DB{})
	ctx := context.Background()

	role, err := repo.FindRoleByID(ctx, "no-such-id", "shop-1")
	require.NoError(t, err)
	assert.Nil(t, role)

	role, err = repo.UpdateRole(ctx, "no-such-id", roles.RolePatch{})
	require.NoError(t, err)
	assert.Nil(t, role)

	assert.NoError(t, repo.DeleteRole(ctx, "no-such-id"))

	count, err := repo.CountAssignmentsForRole(ctx, "no-such-id")
	require.NoError(t, err)
	assert.Zero(t, count)

	exists, err := repo.AssignmentExists(ctx, "user-1", "no-such-id")
	require.NoError(t, err)
	assert.False(t, exists)

	err = repo.InsertAssignment(ctx, &roles.Assignment{UserID: "user-1", RoleID: "no-such-id"})
	assert.ErrorIs(t, err, roles.ErrRoleNotFound)

	err = repo.DeleteAssignment(ctx, "user-1", "no-such-id")
	assert.ErrorIs(t, err, roles.ErrNotAssigned)
}

func TestScanRole_ErrorMapping(t *testing.T) {
	t.Run("invalid text representation is absent", func(t *testing.T) {
		role, err := scanRole(errRow{err: &pgconn.PgError{Code: pgInvalidTextRep}}, "find role by id")
		require.NoError(t, err)
		assert.Nil(t, role)
	})

	t.Run("unique violation is the duplicate-name error", func(t *testing.T) {
		_, err := scanRole(errRow{err: &pgconn.PgError{Code: pgUniqueViolation}}, "update role")
		assert.ErrorIs(t, err, roles.ErrDuplicateRoleName)
	})

	t.Run("other pg errors wrap the store sentinel", func(t *testing.T) {
		_, err := scanRole(errRow{err: &pgconn.PgError{Code: "57P01"}}, "find role by id")
		assert.ErrorIs(t, err, roles.ErrStoreUnavailable)
	})

	t.Run("driver errors wrap the store sentinel", func(t *testing.T) {
		_, err := scanRole(errRow{err: errors.New("conn closed")}, "find role by id")
		assert.ErrorIs(t, err, roles.ErrStoreUnavailable)
	})
}
