package accounts

import (
	"context"
	"io/fs"
	"sort"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

const migrationsDir = "data/sql/migrations"

// RunMigrations applies the embedded schema files in lexical order.
// Files are idempotent, re-running against an existing database is safe.
func RunMigrations(ctx context.Context, db *bun.DB) error {
	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to read migrations")
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		raw, err := fs.ReadFile(migrationsFS, migrationsDir+"/"+name)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to read migration "+name)
		}

		for _, stmt := range strings.Split(string(raw), ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return errors.Wrap(err, errors.CategoryInternal, "failed to apply migration "+name)
			}
		}
	}

	return nil
}
