package memory

import (
	"context"
	"sync"

	"gorepness/domain/core"
	"gorepness/domain/votes"
	"gorepness/ports"
)

// VoteStore keeps votes indexed by participant. File-backed stores load
// into it; tests and the synthetic source use it directly.
type VoteStore struct {
	mu     sync.RWMutex
	open   bool
	name   string
	byPart map[core.ParticipantID]map[core.StatementID]votes.Vote
	loader func(ctx context.Context) ([]votes.Record, error)
}

var (
	_ ports.VoteStore  = (*VoteStore)(nil)
	_ ports.VoteWriter = (*VoteStore)(nil)
)

// NewVoteStore creates an empty in-memory store
func NewVoteStore(records ...votes.Record) *VoteStore {
	s := &VoteStore{name: "memory", byPart: make(map[core.ParticipantID]map[core.StatementID]votes.Vote)}
	s.load(records)
	return s
}

// NewLoadingVoteStore creates a store whose Open runs loader and replaces
// the contents with its records.
func NewLoadingVoteStore(name string, loader func(ctx context.Context) ([]votes.Record, error)) *VoteStore {
	s := NewVoteStore()
	s.name = name
	s.loader = loader
	return s
}

// Open makes the store queryable
func (s *VoteStore) Open(ctx context.Context) error {
	var records []votes.Record
	if s.loader != nil {
		var err error
		records, err = s.loader(ctx)
		if err != nil {
			return core.NewStoreUnavailableError(s.name, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loader != nil {
		s.byPart = make(map[core.ParticipantID]map[core.StatementID]votes.Vote)
		s.load(records)
	}
	s.open = true
	return nil
}

// Close makes subsequent queries fail
func (s *VoteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}

func (s *VoteStore) load(records []votes.Record) {
	for _, r := range records {
		row, ok := s.byPart[r.ParticipantID]
		if !ok {
			row = make(map[core.StatementID]votes.Vote)
			s.byPart[r.ParticipantID] = row
		}
		row[r.StatementID] = r.Vote
	}
}

// SaveVotes upserts records; the last vote for a (participant, statement) wins
func (s *VoteStore) SaveVotes(ctx context.Context, records []votes.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(records)
	return len(records), nil
}

// VotesForParticipants returns votes on one statement
func (s *VoteStore) VotesForParticipants(ctx context.Context, statementID core.StatementID, participantIDs []core.ParticipantID) (map[core.ParticipantID]votes.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.open {
		return nil, core.NewStoreUnavailableError(s.name, nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[core.ParticipantID]votes.Vote)
	for _, pid := range participantIDs {
		if v, ok := s.byPart[pid][statementID]; ok {
			out[pid] = v
		}
	}
	return out, nil
}

// FullVoteMatrixForParticipants returns a copy of every vote of the participants
func (s *VoteStore) FullVoteMatrixForParticipants(ctx context.Context, participantIDs []core.ParticipantID) (votes.GroupVoteMatrix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.open {
		return nil, core.NewStoreUnavailableError(s.name, nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := make(votes.GroupVoteMatrix)
	for _, pid := range participantIDs {
		for tid, v := range s.byPart[pid] {
			m.Set(pid, tid, v)
		}
	}
	return m, nil
}

// ParticipantIDs lists every participant with at least one vote
func (s *VoteStore) ParticipantIDs() []core.ParticipantID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]core.ParticipantID, 0, len(s.byPart))
	for pid := range s.byPart {
		ids = append(ids, pid)
	}
	return ids
}
