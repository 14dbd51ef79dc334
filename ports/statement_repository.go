package ports

import (
	"context"

	"gorepness/domain/votes"
)

// StatementRepository provides statement text and moderation flags
type StatementRepository interface {
	Catalog(ctx context.Context) (votes.StatementCatalog, error)
	SaveStatements(ctx context.Context, statements []votes.Statement) (int, error)
}
