package repness

import (
	"fmt"

	"gorepness/domain/core"
	"gorepness/domain/votes"
)

// polarizedGroups builds two groups of size n: group "0" votes v0 on the
// statement and group "1" votes v1.
func polarizedGroups(n int, tid core.StatementID, v0, v1 votes.Vote) votes.GroupVotes {
	g0 := make(votes.GroupVoteMatrix)
	g1 := make(votes.GroupVoteMatrix)
	for i := 0; i < n; i++ {
		g0.Set(core.ParticipantID(fmt.Sprintf("a%d", i)), tid, v0)
		g1.Set(core.ParticipantID(fmt.Sprintf("b%d", i)), tid, v1)
	}
	return votes.GroupVotes{"0": g0, "1": g1}
}

func intPtr(v int) *int { return &v }
