package postgres

import (
	"context"
	"sync"

	"gorepness/domain/core"
	"gorepness/domain/votes"
	"gorepness/internal"
	"gorepness/internal/errors"
	"gorepness/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// VoteStore implements ports.VoteStore over the votes table
type VoteStore struct {
	mu          sync.RWMutex
	databaseURL string
	db          *sqlx.DB
	ownsDB      bool
	logger      *internal.Logger
}

var (
	_ ports.VoteStore  = (*VoteStore)(nil)
	_ ports.VoteWriter = (*VoteStore)(nil)
)

type voteRow struct {
	ParticipantID string `db:"participant_id"`
	CommentID     string `db:"comment_id"`
	Vote          int64  `db:"vote"`
}

// NewVoteStore creates a store that connects on Open
func NewVoteStore(databaseURL string) *VoteStore {
	return &VoteStore{databaseURL: databaseURL, logger: internal.DefaultLogger}
}

// NewVoteStoreWithDB wraps an existing connection; Close leaves it open
func NewVoteStoreWithDB(db *sqlx.DB) *VoteStore {
	return &VoteStore{db: db, logger: internal.DefaultLogger}
}

// Open connects (when needed) and pings the database
func (s *VoteStore) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		if s.databaseURL == "" {
			return core.NewStoreUnavailableError("postgres", errors.ConfigInvalid("DATABASE_URL is required"))
		}
		db, err := sqlx.ConnectContext(ctx, "postgres", s.databaseURL)
		if err != nil {
			return core.NewStoreUnavailableError("postgres", err)
		}
		s.db = db
		s.ownsDB = true
	}

	if err := s.db.PingContext(ctx); err != nil {
		return core.NewStoreUnavailableError("postgres", err)
	}
	s.logger.Debug("[VoteStore] postgres vote store open")
	return nil
}

// Close releases the connection if this store opened it
func (s *VoteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	var err error
	if s.ownsDB {
		err = s.db.Close()
	}
	s.db = nil
	return err
}

func (s *VoteStore) conn() (*sqlx.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, core.NewStoreUnavailableError("postgres", nil)
	}
	return s.db, nil
}

// VotesForParticipants queries one statement's votes for the participants
func (s *VoteStore) VotesForParticipants(ctx context.Context, statementID core.StatementID, participantIDs []core.ParticipantID) (map[core.ParticipantID]votes.Vote, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var rows []voteRow
	err = db.SelectContext(ctx, &rows, `
		SELECT participant_id, comment_id, vote
		FROM votes
		WHERE comment_id = $1 AND participant_id = ANY($2)
	`, statementID.String(), pq.Array(participantStrings(participantIDs)))
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrapf(err, "failed to query votes for statement %s", statementID))
	}

	out := make(map[core.ParticipantID]votes.Vote, len(rows))
	for _, r := range rows {
		v, err := votes.ParseVote(r.Vote)
		if err != nil {
			s.logger.Warn("[VoteStore] skipping vote of %s on %s: %v", r.ParticipantID, r.CommentID, err)
			continue
		}
		out[core.ParticipantID(r.ParticipantID)] = v
	}
	return out, nil
}

// FullVoteMatrixForParticipants queries every vote of the participants in one round trip
func (s *VoteStore) FullVoteMatrixForParticipants(ctx context.Context, participantIDs []core.ParticipantID) (votes.GroupVoteMatrix, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var rows []voteRow
	err = db.SelectContext(ctx, &rows, `
		SELECT participant_id, comment_id, vote
		FROM votes
		WHERE participant_id = ANY($1)
	`, pq.Array(participantStrings(participantIDs)))
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to query vote matrix"))
	}

	return s.matrixFromRows(rows), nil
}

// matrixFromRows skips rows with an invalid vote or comment id, logging each
func (s *VoteStore) matrixFromRows(rows []voteRow) votes.GroupVoteMatrix {
	m := make(votes.GroupVoteMatrix)
	for _, r := range rows {
		v, err := votes.ParseVote(r.Vote)
		if err != nil {
			s.logger.Warn("[VoteStore] skipping vote of %s on %s: %v", r.ParticipantID, r.CommentID, err)
			continue
		}
		tid, err := core.ParseStatementID(r.CommentID)
		if err != nil {
			s.logger.Warn("[VoteStore] skipping vote of %s on unparseable statement %q: %v", r.ParticipantID, r.CommentID, err)
			continue
		}
		m.Set(core.ParticipantID(r.ParticipantID), tid, v)
	}
	return m
}

// SaveVotes upserts vote records in a single transaction
func (s *VoteStore) SaveVotes(ctx context.Context, records []votes.Record) (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin vote import")
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO votes (participant_id, comment_id, vote)
		VALUES ($1, $2, $3)
		ON CONFLICT (participant_id, comment_id) DO UPDATE SET vote = EXCLUDED.vote
	`)
	if err != nil {
		return 0, errors.Wrap(err, "failed to prepare vote upsert")
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ParticipantID.String(), r.StatementID.String(), int(r.Vote)); err != nil {
			return 0, errors.Wrapf(err, "failed to save vote of %s on %s", r.ParticipantID, r.StatementID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit vote import")
	}
	return len(records), nil
}

func participantStrings(ids []core.ParticipantID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
