package repness

import (
	"math"
	"sort"

	"gorepness/domain/core"
	"gorepness/domain/stats"
	"gorepness/domain/votes"
)

// PassesByTest: the group-relative and the absolute z-score must both clear
// 90% on the agree side or on the disagree side.
func PassesByTest(cs stats.CommentStats) bool {
	return (ZSig90(cs.RAT) && ZSig90(cs.PAT)) ||
		(ZSig90(cs.RDT) && ZSig90(cs.PDT))
}

// BeatsBestByTest compares max(rat, rdt) to the running best; nil means no best yet.
func BeatsBestByTest(cs stats.CommentStats, currentBestZ *float64) bool {
	return currentBestZ == nil || math.Max(cs.RAT, cs.RDT) > *currentBestZ
}

// BeatsBestAgr decides whether cs replaces the current best-agreement
// candidate. The priority order is kept as-is: ratio product when the
// current best is over-represented, raw proportion product otherwise, and
// a threshold check when there is no current best.
func BeatsBestAgr(cs stats.CommentStats, currentBest *stats.CommentStats) bool {
	if cs.NA == 0 && cs.ND == 0 {
		return false
	}
	if currentBest != nil && currentBest.RA > 1.0 {
		return cs.RA*cs.RAT*cs.PA*cs.PAT >
			currentBest.RA*currentBest.RAT*currentBest.PA*currentBest.PAT
	}
	if currentBest != nil {
		return cs.PA*cs.PAT > currentBest.PA*currentBest.PAT
	}
	return ZSig90(cs.PAT) || (cs.RA > 1.0 && cs.PA > 0.5)
}

// FinalizeCommentStats collapses agree/disagree into one direction
func FinalizeCommentStats(tid core.StatementID, cs stats.CommentStats) stats.FinalizedCommentStats {
	agree := (cs.RAT > cs.RDT && cs.NA >= MinVotesForDirection) || cs.ND < MinVotesForDirection

	f := stats.FinalizedCommentStats{
		TID:       tid,
		NAgree:    cs.NA,
		NDisagree: cs.ND,
		NPass:     cs.Passes(),
		NTrials:   cs.NS,
	}
	if agree {
		f.NSuccess = cs.NA
		f.PSuccess = cs.PA
		f.PTest = cs.PAT
		f.Repness = cs.RA
		f.RepnessTest = cs.RAT
		f.RepfulFor = stats.DirectionAgree
	} else {
		f.NSuccess = cs.ND
		f.PSuccess = cs.PD
		f.PTest = cs.PDT
		f.Repness = cs.RD
		f.RepnessTest = cs.RDT
		f.RepfulFor = stats.DirectionDisagree
	}
	return f
}

// RepnessMetric ranks sufficient statements
func RepnessMetric(f stats.FinalizedCommentStats) float64 {
	return f.Repness * f.RepnessTest * f.PSuccess * f.PTest
}

// SelectOptions carry the filters used by SelectRepComments.
type SelectOptions struct {
	stats.AnalysisOptions
	Catalog votes.StatementCatalog
}

type groupSelection struct {
	best       *stats.FinalizedCommentStats
	bestAgree  *stats.CommentStats
	bestAgrTID core.StatementID
	sufficient []stats.FinalizedCommentStats
}

// SelectRepComments ranks statements per group into a bounded list. A
// group's best-agreement statement, when one exists, is first and flagged;
// the rest are the significance-passing statements sorted by RepnessMetric.
// Lists are cut at pickMax when given, else at MaxStatementsCount.
func SelectRepComments(commentStats []stats.StatementGroupStats, pickMax *int, opts SelectOptions) stats.RepComments {
	result := make(stats.RepComments)
	if len(commentStats) == 0 {
		return result
	}
	o := opts.AnalysisOptions.WithDefaults()

	selections := make(map[votes.GroupLabel]*groupSelection)
	for _, sgs := range commentStats {
		for label := range sgs.Groups {
			if _, ok := selections[label]; !ok {
				selections[label] = &groupSelection{}
			}
		}
	}

	for _, sgs := range commentStats {
		if !o.IncludeModerated && opts.Catalog.IsModerated(sgs.TID) {
			continue
		}

		for label, cs := range sgs.Groups {
			sel := selections[label]
			if cs.NS < o.MinVoteCount {
				continue
			}

			if PassesByTest(cs) {
				sel.sufficient = append(sel.sufficient, FinalizeCommentStats(sgs.TID, cs))
			}

			var bestZ *float64
			if sel.best != nil && sel.best.RepnessTest != 0 {
				z := sel.best.RepnessTest
				bestZ = &z
			}
			if BeatsBestByTest(cs, bestZ) {
				f := FinalizeCommentStats(sgs.TID, cs)
				sel.best = &f
			}

			if BeatsBestAgr(cs, sel.bestAgree) {
				c := cs
				sel.bestAgree = &c
				sel.bestAgrTID = sgs.TID
			}
		}
	}

	limit := o.MaxStatementsCount
	if pickMax != nil {
		limit = *pickMax
	}
	if limit < 0 {
		limit = 0
	}

	for label, sel := range selections {
		selected := make([]stats.FinalizedCommentStats, 0, len(sel.sufficient)+1)
		sufficient := sel.sufficient

		if sel.bestAgree != nil {
			bestAgree := FinalizeCommentStats(sel.bestAgrTID, *sel.bestAgree)
			bestAgree.BestAgree = true
			selected = append(selected, bestAgree)

			filtered := sufficient[:0:0]
			for _, f := range sufficient {
				if f.TID != bestAgree.TID {
					filtered = append(filtered, f)
				}
			}
			sufficient = filtered
		}

		sort.SliceStable(sufficient, func(i, j int) bool {
			return RepnessMetric(sufficient[i]) > RepnessMetric(sufficient[j])
		})
		selected = append(selected, sufficient...)

		if len(selected) > limit {
			selected = selected[:limit]
		}
		result[label] = selected
	}

	return result
}
