package database

import (
	"context"
	"testing"

	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestInitSuperAdmin(t *testing.T) {
	db := newTestSQLite(t)
	ctx := context.Background()

	created, err := InitSuperAdmin(ctx, db, "master", "", "s3cret!")
	require.NoError(t, err)
	assert.True(t, created)

	u, err := db.GetUserByLogin(ctx, "master@localhost")
	require.NoError(t, err)
	assert.Equal(t, cnst.RoleMasterAdmin, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("s3cret!")))

	created, err = InitSuperAdmin(ctx, db, "master", "", "other")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = InitSuperAdmin(ctx, db, "", "", "")
	assert.Error(t, err)
}
