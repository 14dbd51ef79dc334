package repness

import (
	"sort"

	"gorepness/domain/core"
	"gorepness/domain/stats"
	"gorepness/domain/votes"
)

// ConsensusParams configure SelectConsensusStatements.
type ConsensusParams struct {
	Excluded           []core.StatementID
	PickMax            *int
	ProbThreshold      float64
	Confidence         float64
	MinVoteCount       int
	MaxStatementsCount int
}

// DefaultConsensusParams uses a 0.5 probability threshold at 90% confidence
func DefaultConsensusParams() ConsensusParams {
	return ConsensusParams{
		ProbThreshold:      0.5,
		Confidence:         0.9,
		MinVoteCount:       stats.DefaultMinVoteCount,
		MaxStatementsCount: stats.DefaultMaxStatementsCount,
	}
}

type pooledStatement struct {
	tid core.StatementID
	stats.BasicCommentStats
}

// SelectConsensusStatements pools every participant of every group and
// returns the statements most broadly agreed and disagreed on. Group
// identity is ignored. Each pool is cut independently at PickMax when
// given, else at half of MaxStatementsCount.
func SelectConsensusStatements(groupVotes votes.GroupVotes, p ConsensusParams) stats.ConsensusResult {
	if p.MinVoteCount < 1 {
		p.MinVoteCount = stats.DefaultMinVoteCount
	}
	if p.MaxStatementsCount <= 0 {
		p.MaxStatementsCount = stats.DefaultMaxStatementsCount
	}

	excluded := make(map[core.StatementID]struct{}, len(p.Excluded))
	for _, tid := range p.Excluded {
		excluded[tid] = struct{}{}
	}

	var pooled []pooledStatement
	for _, tid := range groupVotes.StatementIDs() {
		if _, skip := excluded[tid]; skip {
			continue
		}

		var agrees, disagrees, seen int
		for _, matrix := range groupVotes {
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
		}

		if seen == 0 || seen < p.MinVoteCount {
			continue
		}
		pooled = append(pooled, pooledStatement{tid: tid, BasicCommentStats: BasicStatsFromCounts(agrees, disagrees, seen)})
	}

	limit := p.MaxStatementsCount / 2
	if p.PickMax != nil {
		limit = *p.PickMax
	}
	if limit < 0 {
		limit = 0
	}

	var agree, disagree []pooledStatement
	for _, s := range pooled {
		if s.PA > p.ProbThreshold && IsSignificant(s.PAT, p.Confidence) {
			agree = append(agree, s)
		}
		if s.PD > p.ProbThreshold && IsSignificant(s.PDT, p.Confidence) {
			disagree = append(disagree, s)
		}
	}

	sort.SliceStable(agree, func(i, j int) bool {
		return agree[i].PA*agree[i].PAT > agree[j].PA*agree[j].PAT
	})
	sort.SliceStable(disagree, func(i, j int) bool {
		return disagree[i].PD*disagree[i].PDT > disagree[j].PD*disagree[j].PDT
	})

	return stats.ConsensusResult{
		Agree:    formatConsensus(agree, limit, stats.DirectionAgree),
		Disagree: formatConsensus(disagree, limit, stats.DirectionDisagree),
	}
}

func formatConsensus(pool []pooledStatement, limit int, dir stats.Direction) []stats.ConsensusStatement {
	if len(pool) > limit {
		pool = pool[:limit]
	}
	out := make([]stats.ConsensusStatement, 0, len(pool))
	for _, s := range pool {
		c := stats.ConsensusStatement{TID: s.tid, NTrials: s.NS, ConsFor: dir}
		if dir == stats.DirectionAgree {
			c.NSuccess, c.PSuccess, c.PTest = s.NA, s.PA, s.PAT
		} else {
			c.NSuccess, c.PSuccess, c.PTest = s.ND, s.PD, s.PDT
		}
		out = append(out, c)
	}
	return out
}
