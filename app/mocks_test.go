package app

import (
	"context"
	"fmt"

	"gorepness/adapters/memory"
	"gorepness/domain/core"
	"gorepness/domain/votes"

	"github.com/stretchr/testify/mock"
)

type MockVoteStore struct {
	mock.Mock
}

func (m *MockVoteStore) Open(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockVoteStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockVoteStore) VotesForParticipants(ctx context.Context, statementID core.StatementID, participantIDs []core.ParticipantID) (map[core.ParticipantID]votes.Vote, error) {
	args := m.Called(ctx, statementID, participantIDs)
	got, _ := args.Get(0).(map[core.ParticipantID]votes.Vote)
	return got, args.Error(1)
}

func (m *MockVoteStore) FullVoteMatrixForParticipants(ctx context.Context, participantIDs []core.ParticipantID) (votes.GroupVoteMatrix, error) {
	args := m.Called(ctx, participantIDs)
	got, _ := args.Get(0).(votes.GroupVoteMatrix)
	return got, args.Error(1)
}

// conversation builds an open in-memory store plus aligned labels and ids.
// Each group gets size participants named "<label>-<i>"; vote(label, i)
// returns the votes of that participant keyed by statement id.
type conversation struct {
	store        *memory.VoteStore
	labels       []votes.GroupLabel
	participants []core.ParticipantID
}

func newConversation(groups []votes.GroupLabel, size int, vote func(label votes.GroupLabel, i int) map[core.StatementID]votes.Vote) *conversation {
	c := &conversation{store: memory.NewVoteStore()}
	var records []votes.Record
	for _, label := range groups {
		for i := 0; i < size; i++ {
			pid := core.ParticipantID(fmt.Sprintf("%s-%d", label, i))
			c.labels = append(c.labels, label)
			c.participants = append(c.participants, pid)
			for tid, v := range vote(label, i) {
				records = append(records, votes.Record{ParticipantID: pid, StatementID: tid, Vote: v})
			}
		}
	}
	_, _ = c.store.SaveVotes(context.Background(), records)
	_ = c.store.Open(context.Background())
	return c
}

// polarized: group "0" agrees and group "1" disagrees with statement "1";
// everyone agrees with statement "2".
func polarized(size int) *conversation {
	return newConversation([]votes.GroupLabel{"0", "1"}, size, func(label votes.GroupLabel, i int) map[core.StatementID]votes.Vote {
		v := votes.Agree
		if label == "1" {
			v = votes.Disagree
		}
		return map[core.StatementID]votes.Vote{"1": v, "2": votes.Agree}
	})
}
