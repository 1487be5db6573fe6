package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed sql/*.sql
var files embed.FS

type migration struct {
	Name    string
	Version int
}

// Apply runs every embedded migration that is not yet recorded in schema_migrations.
func Apply(db *sqlx.DB) ([]string, error) {
	return ApplyFS(db, files, "sql")
}

func ApplyFS(db *sqlx.DB, fsys fs.FS, dir string) ([]string, error) {
	if err := ensureTable(db); err != nil {
		return nil, err
	}
	migs, err := listMigrations(fsys, dir)
	if err != nil {
		return nil, err
	}
	applied := []string{}
	if err := db.Select(&applied, `SELECT name FROM schema_migrations`); err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(applied))
	for _, name := range applied {
		done[name] = true
	}
	ran := []string{}
	for _, mig := range migs {
		if done[mig.Name] {
			continue
		}
		content, err := fs.ReadFile(fsys, dir+"/"+mig.Name)
		if err != nil {
			return ran, err
		}
		if err := applyMigration(db, mig, string(content)); err != nil {
			return ran, err
		}
		ran = append(ran, mig.Name)
	}
	return ran, nil
}

func ensureTable(db *sqlx.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  id SERIAL PRIMARY KEY,
  version INT NOT NULL,
  name TEXT NOT NULL UNIQUE,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	return err
}

func applyMigration(db *sqlx.DB, mig migration, content string) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(content); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply %s: %w", mig.Name, err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, mig.Version, mig.Name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record %s: %w", mig.Name, err)
	}
	return tx.Commit()
}

func listMigrations(fsys fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	migs := make([]migration, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		version, ok := parseVersion(name)
		if !ok {
			return nil, fmt.Errorf("migration %s: name must look like V<n>__<name>.sql", name)
		}
		migs = append(migs, migration{Name: name, Version: version})
	}
	sort.Slice(migs, func(i, j int) bool {
		if migs[i].Version != migs[j].Version {
			return migs[i].Version < migs[j].Version
		}
		return migs[i].Name < migs[j].Name
	})
	return migs, nil
}

func parseVersion(name string) (int, bool) {
	if !strings.HasPrefix(name, "V") {
		return 0, false
	}
	parts := strings.SplitN(name[1:], "__", 2)
	if len(parts) != 2 {
		return 0, false
	}
	value, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	return value, true
}
