package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"panelsim/internal/errors"
)

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.0.0"}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in dependency order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createStudiesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create studies table")
	}
	if err := r.createPersonasTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create personas table")
	}
	if err := r.createResponsesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create responses table")
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

func (r *MigrationRunner) createStudiesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS studies (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			preset TEXT,
			questions JSONB NOT NULL DEFAULT '[]',
			completed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (r *MigrationRunner) createPersonasTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS personas (
			id TEXT PRIMARY KEY,
			study_id TEXT NOT NULL REFERENCES studies(id) ON DELETE CASCADE,
			label TEXT NOT NULL,
			age INT NOT NULL,
			gender TEXT NOT NULL,
			location TEXT NOT NULL,
			income_level TEXT NOT NULL,
			education TEXT NOT NULL,
			industry_experience TEXT,
			context_attrs JSONB NOT NULL DEFAULT '{}'
		)`)
	return err
}

func (r *MigrationRunner) createResponsesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS responses (
			id TEXT PRIMARY KEY,
			study_id TEXT NOT NULL REFERENCES studies(id) ON DELETE CASCADE,
			persona_id TEXT NOT NULL REFERENCES personas(id) ON DELETE CASCADE,
			question_id TEXT NOT NULL,
			rating INT,
			text_response TEXT NOT NULL DEFAULT '',
			explanation TEXT NOT NULL DEFAULT '',
			confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
			distribution JSONB
		)`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_personas_study ON personas(study_id)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_study ON responses(study_id)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_question ON responses(study_id, question_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
