package memory

import (
	"context"
	"sync"

	"gorepness/domain/votes"
	"gorepness/ports"
)

// StatementRepository holds a statement catalog in memory
type StatementRepository struct {
	mu      sync.RWMutex
	catalog votes.StatementCatalog
}

var _ ports.StatementRepository = (*StatementRepository)(nil)

// NewStatementRepository creates a repository seeded with statements
func NewStatementRepository(statements ...votes.Statement) *StatementRepository {
	return &StatementRepository{catalog: votes.NewStatementCatalog(statements)}
}

// Catalog returns a copy of the catalog
func (r *StatementRepository) Catalog(ctx context.Context) (votes.StatementCatalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(votes.StatementCatalog, len(r.catalog))
	for k, v := range r.catalog {
		out[k] = v
	}
	return out, nil
}

// SaveStatements upserts statements by id
func (r *StatementRepository) SaveStatements(ctx context.Context, statements []votes.Statement) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range statements {
		r.catalog[s.ID] = s
	}
	return len(statements), nil
}
