package repness

import (
	"fmt"
	"testing"

	"gorepness/domain/core"
	"gorepness/domain/stats"
	"gorepness/domain/votes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// consensusFixture: everyone agrees on "1", disagrees on "2", splits on "3".
func consensusFixture() votes.GroupVotes {
	gv := votes.GroupVotes{"0": {}, "1": {}}
	for i := 0; i < 10; i++ {
		label := votes.GroupLabel(fmt.Sprintf("%d", i%2))
		pid := core.ParticipantID(fmt.Sprintf("p%d", i))
		gv[label].Set(pid, "1", votes.Agree)
		gv[label].Set(pid, "2", votes.Disagree)
		if i < 5 {
			gv[label].Set(pid, "3", votes.Agree)
		} else {
			gv[label].Set(pid, "3", votes.Disagree)
		}
	}
	return gv
}

func TestSelectConsensusStatements_Pools(t *testing.T) {
	res := SelectConsensusStatements(consensusFixture(), DefaultConsensusParams())

	require.Len(t, res.Agree, 1)
	assert.Equal(t, core.StatementID("1"), res.Agree[0].TID)
	assert.Equal(t, stats.DirectionAgree, res.Agree[0].ConsFor)
	assert.Equal(t, 10, res.Agree[0].NSuccess)
	assert.Equal(t, 10, res.Agree[0].NTrials)
	assert.InDelta(t, 11.0/12, res.Agree[0].PSuccess, 1e-12)

	require.Len(t, res.Disagree, 1)
	assert.Equal(t, core.StatementID("2"), res.Disagree[0].TID)
	assert.Equal(t, stats.DirectionDisagree, res.Disagree[0].ConsFor)
}

func TestSelectConsensusStatements_PoolsDisjoint(t *testing.T) {
	gv := manyStatements(12, 9)
	for k, v := range consensusFixture() {
		for pid, row := range v {
			for tid, vote := range row {
				gv[k].Set(pid, "c"+tid, vote)
			}
		}
	}

	for _, thr := range []float64{0.5, 0.6, 0.9} {
		p := DefaultConsensusParams()
		p.ProbThreshold = thr
		p.PickMax = intPtr(100)
		res := SelectConsensusStatements(gv, p)

		agreed := make(map[core.StatementID]bool)
		for _, s := range res.Agree {
			agreed[s.TID] = true
		}
		for _, s := range res.Disagree {
			assert.False(t, agreed[s.TID], "tid %s in both pools at threshold %v", s.TID, thr)
		}
	}
}

func TestSelectConsensusStatements_ExcludedAndMinVotes(t *testing.T) {
	p := DefaultConsensusParams()
	p.Excluded = []core.StatementID{"1"}
	res := SelectConsensusStatements(consensusFixture(), p)
	assert.Empty(t, res.Agree)
	assert.Len(t, res.Disagree, 1)

	p = DefaultConsensusParams()
	p.MinVoteCount = 11
	res = SelectConsensusStatements(consensusFixture(), p)
	assert.Empty(t, res.Agree)
	assert.Empty(t, res.Disagree)
}

func TestSelectConsensusStatements_CapIsHalved(t *testing.T) {
	gv := votes.GroupVotes{"0": {}, "1": {}}
	for s := 0; s < 8; s++ {
		for i := 0; i < 10; i++ {
			label := votes.GroupLabel(fmt.Sprintf("%d", i%2))
			gv[label].Set(core.ParticipantID(fmt.Sprintf("p%d", i)), core.StatementID(fmt.Sprintf("%d", s)), votes.Agree)
		}
	}

	p := DefaultConsensusParams()
	p.MaxStatementsCount = 7
	assert.Len(t, SelectConsensusStatements(gv, p).Agree, 3)

	p.PickMax = intPtr(6)
	assert.Len(t, SelectConsensusStatements(gv, p).Agree, 6)
}

func TestSelectConsensusStatements_RankedByMetric(t *testing.T) {
	// statement s gets 10+s agrees out of 20 votes
	gv := votes.GroupVotes{"0": {}, "1": {}}
	for s := 0; s <= 10; s++ {
		tid := core.StatementID(fmt.Sprintf("%d", s))
		for i := 0; i < 20; i++ {
			v := votes.Pass
			if i < 10+s {
				v = votes.Agree
			}
			label := votes.GroupLabel(fmt.Sprintf("%d", i%2))
			gv[label].Set(core.ParticipantID(fmt.Sprintf("p%d", i)), tid, v)
		}
	}

	p := DefaultConsensusParams()
	p.PickMax = intPtr(100)
	res := SelectConsensusStatements(gv, p)

	require.NotEmpty(t, res.Agree)
	assert.Equal(t, core.StatementID("10"), res.Agree[0].TID)
	for i := 1; i < len(res.Agree); i++ {
		prev, cur := res.Agree[i-1], res.Agree[i]
		assert.GreaterOrEqual(t, prev.PSuccess*prev.PTest, cur.PSuccess*cur.PTest)
	}
}

func TestSelectConsensusStatements_SingleGroupStillRuns(t *testing.T) {
	gv := consensusFixture()
	delete(gv, "1")
	res := SelectConsensusStatements(gv, DefaultConsensusParams())
	assert.Len(t, res.Agree, 1)
}
