package repness

import (
	"gorepness/domain/core"
	"gorepness/domain/stats"
	"gorepness/domain/votes"
)

// CalculateRepresentativeComments runs tally, comparison and selection over
// the given statements, or over every statement seen when none are given.
func CalculateRepresentativeComments(groupVotes votes.GroupVotes, statementIDs []core.StatementID, opts SelectOptions) stats.RepComments {
	if len(statementIDs) == 0 {
		statementIDs = groupVotes.StatementIDs()
	}
	return SelectRepComments(ComputeCommentStats(groupVotes, statementIDs), nil, opts)
}
