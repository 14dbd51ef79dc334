package app

import (
	"context"
	"errors"
	"testing"

	"gorepness/domain/core"
	"gorepness/domain/stats"
	"gorepness/domain/votes"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubStatements struct {
	catalog votes.StatementCatalog
	err     error
}

func (s stubStatements) Catalog(ctx context.Context) (votes.StatementCatalog, error) {
	return s.catalog, s.err
}

func (s stubStatements) SaveStatements(ctx context.Context, statements []votes.Statement) (int, error) {
	return len(statements), nil
}

func findRep(list []stats.FinalizedCommentStats, tid core.StatementID) (stats.FinalizedCommentStats, bool) {
	for _, f := range list {
		if f.TID == tid {
			return f, true
		}
	}
	return stats.FinalizedCommentStats{}, false
}

func TestAnalyzePaintedClusters_Polarized(t *testing.T) {
	c := polarized(7)
	svc := NewAnalysisService(c.store, nil, 2)

	result, err := svc.AnalyzePaintedClusters(context.Background(), AnalysisRequest{
		Labels:         c.labels,
		ParticipantIDs: c.participants,
	})
	require.NoError(t, err)

	agree, ok := findRep(result.RepComments["0"], "1")
	require.True(t, ok)
	assert.Equal(t, stats.DirectionAgree, agree.RepfulFor)

	disagree, ok := findRep(result.RepComments["1"], "1")
	require.True(t, ok)
	assert.Equal(t, stats.DirectionDisagree, disagree.RepfulFor)

	require.NotNil(t, result.ConsensusStatements)
	require.NotEmpty(t, result.ConsensusStatements.Agree)
	assert.Equal(t, core.StatementID("2"), result.ConsensusStatements.Agree[0].TID)
	assert.Len(t, result.GroupVotes, 2)
	assert.Len(t, result.GroupVotes["0"], 7)
}

func TestAnalyzePaintedClusters_SingleGroupHasNoConsensus(t *testing.T) {
	c := newConversation([]votes.GroupLabel{"0"}, 10, func(_ votes.GroupLabel, _ int) map[core.StatementID]votes.Vote {
		return map[core.StatementID]votes.Vote{"1": votes.Agree}
	})
	svc := NewAnalysisService(c.store, nil, 1)

	result, err := svc.AnalyzePaintedClusters(context.Background(), AnalysisRequest{Labels: c.labels, ParticipantIDs: c.participants})
	require.NoError(t, err)
	assert.Nil(t, result.ConsensusStatements)
	assert.Contains(t, result.RepComments, votes.GroupLabel("0"))
}

func TestAnalyzePaintedClusters_ModeratedStatementsExcluded(t *testing.T) {
	c := polarized(7)
	catalog := votes.NewStatementCatalog([]votes.Statement{
		{ID: "1", Text: "Split", Moderation: votes.Accepted},
		{ID: "2", Text: "Hidden", Moderation: votes.ModeratedOut},
	})
	svc := NewAnalysisService(c.store, stubStatements{catalog: catalog}, 2)

	result, err := svc.AnalyzePaintedClusters(context.Background(), AnalysisRequest{Labels: c.labels, ParticipantIDs: c.participants})
	require.NoError(t, err)
	for _, list := range result.RepComments {
		_, found := findRep(list, "2")
		assert.False(t, found)
	}
	for _, cs := range result.ConsensusStatements.Agree {
		assert.NotEqual(t, core.StatementID("2"), cs.TID)
	}

	result, err = svc.AnalyzePaintedClusters(context.Background(), AnalysisRequest{
		Labels:         c.labels,
		ParticipantIDs: c.participants,
		Options:        stats.AnalysisOptions{IncludeModerated: true},
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.ConsensusStatements.Agree)
	assert.Equal(t, core.StatementID("2"), result.ConsensusStatements.Agree[0].TID)
}

func TestAnalyzePaintedClusters_RequestCatalogWins(t *testing.T) {
	c := polarized(7)
	svc := NewAnalysisService(c.store, stubStatements{err: errors.New("must not be called")}, 1)

	_, err := svc.AnalyzePaintedClusters(context.Background(), AnalysisRequest{
		Labels:         c.labels,
		ParticipantIDs: c.participants,
		Catalog:        votes.StatementCatalog{},
	})
	assert.NoError(t, err)
}

func TestAnalyzePaintedClusters_StatementSubset(t *testing.T) {
	c := polarized(7)
	svc := NewAnalysisService(c.store, nil, 1)

	result, err := svc.AnalyzePaintedClusters(context.Background(), AnalysisRequest{
		Labels:         c.labels,
		ParticipantIDs: c.participants,
		StatementIDs:   []core.StatementID{"2"},
	})
	require.NoError(t, err)
	for _, list := range result.RepComments {
		_, found := findRep(list, "1")
		assert.False(t, found)
	}
}

func TestAnalyzePaintedClusters_StoreUnavailable(t *testing.T) {
	svc := NewAnalysisService(nil, nil, 1)
	_, err := svc.AnalyzePaintedClusters(context.Background(), AnalysisRequest{})
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)

	store := new(MockVoteStore)
	store.On("FullVoteMatrixForParticipants", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
	svc = NewAnalysisService(store, nil, 1)
	result, err := svc.AnalyzePaintedClusters(context.Background(), AnalysisRequest{
		Labels:         []votes.GroupLabel{"0", "1"},
		ParticipantIDs: []core.ParticipantID{"a", "b"},
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)

	svc = NewAnalysisService(polarized(2).store, stubStatements{err: errors.New("down")}, 1)
	_, err = svc.AnalyzePaintedClusters(context.Background(), AnalysisRequest{})
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
}

func TestAnalyzePaintedClusters_Idempotent(t *testing.T) {
	c := newConversation([]votes.GroupLabel{"0", "1", "2"}, 9, func(label votes.GroupLabel, i int) map[core.StatementID]votes.Vote {
		out := make(map[core.StatementID]votes.Vote)
		for s := 0; s < 12; s++ {
			tid := core.MustStatementID(s)
			switch (s + i + len(label)*int(label[0])) % 4 {
			case 0:
				out[tid] = votes.Agree
			case 1:
				out[tid] = votes.Disagree
			case 2:
				out[tid] = votes.Pass
			}
		}
		return out
	})
	svc := NewAnalysisService(c.store, nil, 3)
	req := AnalysisRequest{Labels: c.labels, ParticipantIDs: c.participants}

	first, err := svc.AnalyzePaintedClusters(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.AnalyzePaintedClusters(context.Background(), req)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("analysis not idempotent (-first +second):\n%s", diff)
	}
	assert.Equal(t, Fingerprint(first), Fingerprint(second))
}

func TestAnalyzePaintedClusters_Invariants(t *testing.T) {
	c := newConversation([]votes.GroupLabel{"a", "b"}, 12, func(label votes.GroupLabel, i int) map[core.StatementID]votes.Vote {
		out := make(map[core.StatementID]votes.Vote)
		for s := 0; s < 30; s++ {
			if (s+i)%5 == 0 {
				continue
			}
			v := votes.Vote((s*7+i*3+int(label[0]))%3 - 1)
			out[core.MustStatementID(s)] = v
		}
		return out
	})
	svc := NewAnalysisService(c.store, nil, 2)

	result, err := svc.AnalyzePaintedClusters(context.Background(), AnalysisRequest{
		Labels:         c.labels,
		ParticipantIDs: c.participants,
		Options:        stats.AnalysisOptions{MinVoteCount: 3, MaxStatementsCount: 4},
	})
	require.NoError(t, err)

	for label, list := range result.RepComments {
		assert.LessOrEqual(t, len(list), 4, "group %s", label)
		seen := make(map[core.StatementID]bool)
		for i, f := range list {
			assert.Equal(t, f.NTrials, f.NAgree+f.NDisagree+f.NPass)
			assert.GreaterOrEqual(t, f.NTrials, 3)
			assert.False(t, seen[f.TID], "duplicate %s", f.TID)
			seen[f.TID] = true
			if f.BestAgree {
				assert.Equal(t, 0, i)
			}
		}
	}

	agree := make(map[core.StatementID]bool)
	for _, cs := range result.ConsensusStatements.Agree {
		agree[cs.TID] = true
	}
	for _, cs := range result.ConsensusStatements.Disagree {
		assert.False(t, agree[cs.TID])
	}
	assert.LessOrEqual(t, len(result.ConsensusStatements.Agree), 2)
}

func TestCalculateRepresentativeStatements_LabelMismatch(t *testing.T) {
	c := polarized(3)
	svc := NewAnalysisService(c.store, nil, 1)

	_, err := svc.CalculateRepresentativeStatements(context.Background(), c.labels, c.participants[:2], nil, stats.AnalysisOptions{})
	assert.ErrorIs(t, err, core.ErrLabelMismatch)
}
