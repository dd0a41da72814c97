package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Migration is one schema version. Statements run in order inside a
// single transaction together with the version bookkeeping row.
type Migration struct {
	Version     int
	Description string
	Statements  []string
}

// Migrations lists every schema version. Version 1 is the flat model where a
// build part only knows its component key; version 3 introduces the slot
// scaffold. Existing rows are linked to slots lazily, per build.
var Migrations = []Migration{
	{
		Version:     1,
		Description: "builds, catalog parts and flat build parts",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS builds (
				id         TEXT PRIMARY KEY,
				name       TEXT NOT NULL,
				bike_type  TEXT NOT NULL,
				created_at BIGINT NOT NULL,
				updated_at BIGINT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS parts (
				id                             TEXT PRIMARY KEY,
				name                           TEXT NOT NULL,
				component                      TEXT NOT NULL,
				weight_g                       INTEGER,
				price                          DOUBLE PRECISION,
				currency                       TEXT,
				source_url                     TEXT,
				source_name                    TEXT,
				compatibility_tags             TEXT,
				notes                          TEXT,
				crankset_component_type        TEXT,
				handlebars_stem_component_type TEXT,
				created_at                     BIGINT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_parts_component ON parts(component)`,
			`CREATE TABLE IF NOT EXISTS build_parts (
				id              TEXT PRIMARY KEY,
				build_id        TEXT NOT NULL REFERENCES builds(id) ON DELETE CASCADE,
				component       TEXT NOT NULL,
				part_id         TEXT REFERENCES parts(id) ON DELETE SET NULL,
				quantity        INTEGER NOT NULL DEFAULT 1,
				notes           TEXT,
				custom_name     TEXT,
				custom_weight_g INTEGER,
				custom_price    DOUBLE PRECISION,
				custom_currency TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_build_parts_build ON build_parts(build_id)`,
		},
	},
	{
		Version:     2,
		Description: "build ownership",
		Statements: []string{
			`ALTER TABLE builds ADD COLUMN user_id TEXT`,
			`CREATE INDEX IF NOT EXISTS idx_builds_user ON builds(user_id)`,
		},
	},
	{
		Version:     3,
		Description: "build scaffold: categories, groups, slots",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS build_categories (
				id         TEXT PRIMARY KEY,
				build_id   TEXT NOT NULL REFERENCES builds(id) ON DELETE CASCADE,
				name       TEXT NOT NULL,
				sort_order INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX IF NOT EXISTS idx_build_categories_build ON build_categories(build_id)`,
			`CREATE TABLE IF NOT EXISTS build_groups (
				id          TEXT PRIMARY KEY,
				build_id    TEXT NOT NULL REFERENCES builds(id) ON DELETE CASCADE,
				name        TEXT NOT NULL,
				category_id TEXT REFERENCES build_categories(id) ON DELETE SET NULL,
				sort_order  INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX IF NOT EXISTS idx_build_groups_build ON build_groups(build_id)`,
			`CREATE TABLE IF NOT EXISTS build_slots (
				id            TEXT PRIMARY KEY,
				build_id      TEXT NOT NULL REFERENCES builds(id) ON DELETE CASCADE,
				category_id   TEXT NOT NULL REFERENCES build_categories(id) ON DELETE CASCADE,
				component_key TEXT NOT NULL,
				sort_order    INTEGER NOT NULL DEFAULT 0,
				group_id      TEXT REFERENCES build_groups(id) ON DELETE SET NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_build_slots_build ON build_slots(build_id, category_id)`,
			`ALTER TABLE build_parts ADD COLUMN build_slot_id TEXT REFERENCES build_slots(id) ON DELETE CASCADE`,
			`ALTER TABLE build_parts ADD COLUMN component_label TEXT`,
			`ALTER TABLE build_parts ADD COLUMN created_at BIGINT NOT NULL DEFAULT 0`,
			`CREATE INDEX IF NOT EXISTS idx_build_parts_slot ON build_parts(build_slot_id)`,
		},
	},
}

// CurrentVersion returns the schema version after all migrations.
func CurrentVersion() int {
	return Migrations[len(Migrations)-1].Version
}

// SchemaVersion returns the highest applied migration version, 0 for an
// empty database.
func (d *DB) SchemaVersion(ctx context.Context) (int, error) {
	if _, err := d.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at BIGINT NOT NULL
	)`); err != nil {
		return 0, fmt.Errorf("error creating schema_migrations: %w", err)
	}
	var v int
	if err := d.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, fmt.Errorf("error reading schema version: %w", err)
	}
	return v, nil
}

// Migrate applies every pending migration and returns how many ran.
func (d *DB) Migrate(ctx context.Context, log *zap.Logger) (int, error) {
	current, err := d.SchemaVersion(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range Migrations {
		if m.Version <= current {
			continue
		}
		if err := d.apply(ctx, m); err != nil {
			return applied, err
		}
		log.Info("applied schema migration",
			zap.Int("version", m.Version),
			zap.String("description", m.Description))
		applied++
	}
	return applied, nil
}

func (d *DB) apply(ctx context.Context, m Migration) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting migration %d: %w", m.Version, err)
	}
	defer tx.Rollback()

	for i, stmt := range m.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error in migration %d statement %d: %w", m.Version, i+1, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		d.Dialect.Rebind(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`),
		m.Version, time.Now().UnixMilli(),
	); err != nil {
		return fmt.Errorf("error recording migration %d: %w", m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing migration %d: %w", m.Version, err)
	}
	return nil
}
