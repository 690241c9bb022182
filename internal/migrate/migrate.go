// AngelaMos | 2026
// migrate.go

package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/projectboard/internal/core"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

// advisoryLockKey serialises concurrent migrators on the same database.
const advisoryLockKey = 727_001

type Migration struct {
	Version int
	Name    string
	UpSQL   string
}

func Load() ([]Migration, error) {
	return loadFrom(migrationsFS, "sql")
}

func loadFrom(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	migrations := make([]Migration, 0, len(entries))
	seen := make(map[int]string, len(entries))

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		var version int
		if _, err := fmt.Sscanf(e.Name(), "%d_", &version); err != nil {
			return nil, fmt.Errorf("invalid migration filename %s: %w", e.Name(), err)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf(
				"migration version %d used by %s and %s",
				version, prev, e.Name(),
			)
		}
		seen[version] = e.Name()

		data, err := fs.ReadFile(fsys, dir+"/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", e.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    e.Name(),
			UpSQL:   string(data),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// Up applies every embedded migration newer than the recorded schema
// version inside a single transaction and returns the resulting version.
func Up(ctx context.Context, db core.TxBeginner) (int, error) {
	migrations, err := Load()
	if err != nil {
		return 0, err
	}

	var version int
	err = core.InTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey); err != nil {
			return fmt.Errorf("acquire migration lock: %w", err)
		}

		current, err := currentVersion(ctx, tx)
		if err != nil {
			return err
		}

		for _, m := range migrations {
			if m.Version <= current {
				continue
			}
			if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
				return fmt.Errorf("migration %s: %w", m.Name, err)
			}
			if _, err := tx.ExecContext(ctx, `UPDATE schema_version SET version = $1`, m.Version); err != nil {
				return fmt.Errorf("update schema_version: %w", err)
			}
			slog.Info("migration applied", "name", m.Name, "version", m.Version)
			current = m.Version
		}

		version = current
		return nil
	})
	if err != nil {
		return 0, err
	}

	return version, nil
}

func currentVersion(ctx context.Context, tx *sqlx.Tx) (int, error) {
	if _, err := tx.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`,
	); err != nil {
		return 0, fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err := tx.GetContext(ctx, &version, `SELECT version FROM schema_version LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return 0, fmt.Errorf("init schema_version: %w", err)
		}
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema_version: %w", err)
	}

	return version, nil
}
