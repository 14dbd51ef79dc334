package memory

import (
	"context"
	"errors"
	"testing"

	"gorepness/domain/core"
	"gorepness/domain/votes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []votes.Record {
	return []votes.Record{
		{ParticipantID: "p1", StatementID: "1", Vote: votes.Agree},
		{ParticipantID: "p1", StatementID: "2", Vote: votes.Pass},
		{ParticipantID: "p2", StatementID: "1", Vote: votes.Disagree},
	}
}

func TestVoteStore_RequiresOpen(t *testing.T) {
	ctx := context.Background()
	s := NewVoteStore(sampleRecords()...)

	_, err := s.FullVoteMatrixForParticipants(ctx, []core.ParticipantID{"p1"})
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)

	require.NoError(t, s.Open(ctx))
	m, err := s.FullVoteMatrixForParticipants(ctx, []core.ParticipantID{"p1", "p3"})
	require.NoError(t, err)
	assert.Equal(t, votes.GroupVoteMatrix{"p1": {"1": votes.Agree, "2": votes.Pass}}, m)

	require.NoError(t, s.Close())
	_, err = s.VotesForParticipants(ctx, "1", []core.ParticipantID{"p1"})
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
}

func TestVoteStore_VotesForParticipants_AbsentIsMissing(t *testing.T) {
	ctx := context.Background()
	s := NewVoteStore(sampleRecords()...)
	require.NoError(t, s.Open(ctx))

	got, err := s.VotesForParticipants(ctx, "2", []core.ParticipantID{"p1", "p2"})
	require.NoError(t, err)
	assert.Equal(t, map[core.ParticipantID]votes.Vote{"p1": votes.Pass}, got)

	again, err := s.VotesForParticipants(ctx, "2", []core.ParticipantID{"p1", "p2"})
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestVoteStore_LoaderFailureIsStoreUnavailable(t *testing.T) {
	s := NewLoadingVoteStore("file", func(ctx context.Context) ([]votes.Record, error) {
		return nil, errors.New("no such file")
	})
	err := s.Open(context.Background())
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
}

func TestStatementRepository_CatalogIsCopy(t *testing.T) {
	ctx := context.Background()
	r := NewStatementRepository(votes.Statement{ID: "1", Text: "a"})
	c, err := r.Catalog(ctx)
	require.NoError(t, err)
	delete(c, "1")

	again, err := r.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, again, 1)
}
