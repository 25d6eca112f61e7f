package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"cabinet-suite-core/internal/infrastructure/database/postgres"
)

//go:embed sql/*.sql
var files embed.FS

const createTrackingTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    VARCHAR(100) PRIMARY KEY,
    applied_at TIMESTAMPTZ  NOT NULL DEFAULT now()
)`

// Migration fichier SQL embarqué
type Migration struct {
	Version string
	SQL     string
}

// Runner applique les migrations embarquées dans l'ordre lexical des fichiers
type Runner struct {
	db *postgres.Client
	tx *postgres.TransactionManager
}

func NewRunner(db *postgres.Client, tx *postgres.TransactionManager) *Runner {
	return &Runner{db: db, tx: tx}
}

// Load lit les migrations embarquées, triées par version
func Load() ([]Migration, error) {
	return loadFrom(files, "sql")
}

func loadFrom(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("lecture répertoire migrations: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("lecture migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, Migration{
			Version: strings.TrimSuffix(entry.Name(), ".sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// Pending filtre les migrations absentes de applied
func Pending(all []Migration, applied map[string]bool) []Migration {
	var pending []Migration
	for _, m := range all {
		if !applied[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending
}

// Apply exécute les migrations en attente, chacune dans sa transaction
func (r *Runner) Apply(ctx context.Context) ([]string, error) {
	if err := r.db.Exec(ctx, createTrackingTable); err != nil {
		return nil, fmt.Errorf("création schema_migrations: %w", err)
	}

	all, err := Load()
	if err != nil {
		return nil, err
	}

	applied, err := r.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var done []string
	for _, m := range Pending(all, applied) {
		start := time.Now()
		err := r.tx.WithTransaction(ctx, func(tx *postgres.Transaction) error {
			if err := tx.Exec(ctx, m.SQL); err != nil {
				return err
			}
			return tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version)
		})
		if err != nil {
			return done, fmt.Errorf("migration %s: %w", m.Version, err)
		}
		fmt.Printf("[MIGRATIONS] ✅ %s appliquée en %v\n", m.Version, time.Since(start))
		done = append(done, m.Version)
	}

	return done, nil
}

func (r *Runner) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("lecture schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := map[string]bool{}
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}
