package repness

import (
	"gorepness/domain/core"
	"gorepness/domain/stats"
	"gorepness/domain/votes"
)

// BasicStatsFromCounts derives smoothed proportions and z-scores from tallies
func BasicStatsFromCounts(agrees, disagrees, seen int) stats.BasicCommentStats {
	return stats.BasicCommentStats{
		NA:  agrees,
		ND:  disagrees,
		NS:  seen,
		PA:  smoothedProportion(agrees, seen),
		PD:  smoothedProportion(disagrees, seen),
		PAT: ProportionTest(agrees, seen),
		PDT: ProportionTest(disagrees, seen),
	}
}

// BasicStats tallies one statement within one group's matrix
func BasicStats(matrix votes.GroupVoteMatrix, tid core.StatementID) stats.BasicCommentStats {
	var agrees, disagrees, seen int
	for _, row := range matrix {
		vote, ok := row[tid]
		if !ok {
			continue
		}
		seen++
		switch vote {
		case votes.Agree:
			agrees++
		case votes.Disagree:
			disagrees++
		}
	}
	return BasicStatsFromCounts(agrees, disagrees, seen)
}

// AddComparativeStats compares a group against the pooled counts of every
// other group. With no other groups the sums are zero and the ratios are
// relative only to the smoothing constants.
func AddComparativeStats(in stats.BasicCommentStats, rest []stats.BasicCommentStats) stats.CommentStats {
	var sumNA, sumND, sumNS int
	for _, other := range rest {
		sumNA += other.NA
		sumND += other.ND
		sumNS += other.NS
	}

	return stats.CommentStats{
		BasicCommentStats: in,
		RA:                in.PA / (float64(1+sumNA) / float64(2+sumNS)),
		RD:                in.PD / (float64(1+sumND) / float64(2+sumNS)),
		RAT:               TwoProportionTest(in.NA, sumNA, in.NS, sumNS),
		RDT:               TwoProportionTest(in.ND, sumND, in.NS, sumNS),
	}
}

// ComputeCommentStats builds per-statement, per-group comparative stats.
// Every group gets an entry for every statement, including ns = 0 entries.
func ComputeCommentStats(groupVotes votes.GroupVotes, statementIDs []core.StatementID) []stats.StatementGroupStats {
	labels := groupVotes.Labels()
	out := make([]stats.StatementGroupStats, 0, len(statementIDs))

	for _, tid := range statementIDs {
		basic := make([]stats.BasicCommentStats, len(labels))
		for i, label := range labels {
			basic[i] = BasicStats(groupVotes[label], tid)
		}

		groups := make(map[votes.GroupLabel]stats.CommentStats, len(labels))
		rest := make([]stats.BasicCommentStats, 0, len(labels))
		for i, label := range labels {
			rest = rest[:0]
			for j := range labels {
				if j != i {
					rest = append(rest, basic[j])
				}
			}
			groups[label] = AddComparativeStats(basic[i], rest)
		}

		out = append(out, stats.StatementGroupStats{TID: tid, Groups: groups})
	}
	return out
}
