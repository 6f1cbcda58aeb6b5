package accounts_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	accounts "github.com/goliatone/go-accounts"
)

// setupTestDB opens a private in-memory database with the schema
// applied. Single connection, the memory database lives as long as it.
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, accounts.RunMigrations(context.Background(), db))

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func newTestUser(username string) *accounts.User {
	return &accounts.User{
		Name:     "Test User",
		Username: username,
		Mobile:   "+919876543210",
		Password: "c2VjcmV0MTIz",
		Role:     accounts.RoleReceptionist,
	}
}
