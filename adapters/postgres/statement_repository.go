package postgres

import (
	"context"

	"gorepness/domain/core"
	"gorepness/domain/votes"
	"gorepness/internal/errors"
	"gorepness/ports"

	"github.com/jmoiron/sqlx"
)

// StatementRepositoryImpl implements StatementRepository for PostgreSQL
type StatementRepositoryImpl struct {
	db *sqlx.DB
}

// NewStatementRepository creates a new PostgreSQL statement repository
func NewStatementRepository(db *sqlx.DB) ports.StatementRepository {
	return &StatementRepositoryImpl{db: db}
}

type statementRow struct {
	TID       string `db:"tid"`
	Txt       string `db:"txt"`
	Moderated int    `db:"moderated"`
}

// Catalog loads every statement
func (r *StatementRepositoryImpl) Catalog(ctx context.Context) (votes.StatementCatalog, error) {
	var rows []statementRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT tid, txt, moderated FROM comments`); err != nil {
		return nil, errors.Wrap(err, "failed to load statements")
	}

	statements := make([]votes.Statement, 0, len(rows))
	for _, row := range rows {
		tid, err := core.ParseStatementID(row.TID)
		if err != nil {
			continue
		}
		statements = append(statements, votes.Statement{
			ID:         tid,
			Text:       row.Txt,
			Moderation: votes.Moderation(row.Moderated),
		})
	}
	return votes.NewStatementCatalog(statements), nil
}

// SaveStatements upserts statements
func (r *StatementRepositoryImpl) SaveStatements(ctx context.Context, statements []votes.Statement) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin statement import")
	}
	defer tx.Rollback()

	for _, s := range statements {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO comments (tid, txt, moderated)
			VALUES ($1, $2, $3)
			ON CONFLICT (tid) DO UPDATE SET txt = EXCLUDED.txt, moderated = EXCLUDED.moderated
		`, s.ID.String(), s.Text, int(s.Moderation))
		if err != nil {
			return 0, errors.Wrapf(err, "failed to save statement %s", s.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit statement import")
	}
	return len(statements), nil
}
