package migration

import (
	"context"

	"gorepness/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createCommentsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create comments table")
	}

	if err := r.createVotesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create votes table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

// Statement ids are stored in canonical string form; moderated is -1, 0 or 1.
func (r *MigrationRunner) createCommentsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS comments (
			tid TEXT PRIMARY KEY,
			txt TEXT NOT NULL DEFAULT '',
			moderated SMALLINT NOT NULL DEFAULT 0 CHECK (moderated IN (-1, 0, 1)),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

// A missing row means the participant never voted; pass is stored as 0.
func (r *MigrationRunner) createVotesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS votes (
			participant_id TEXT NOT NULL,
			comment_id TEXT NOT NULL,
			vote SMALLINT NOT NULL CHECK (vote IN (-1, 0, 1)),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			PRIMARY KEY (participant_id, comment_id)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_votes_comment_id ON votes(comment_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_moderated ON comments(moderated) WHERE moderated = -1`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
