package stats

import (
	"gorepness/domain/core"
	"gorepness/domain/votes"
)

// Direction is the side a statement is representative or consensual for.
type Direction string

const (
	DirectionAgree    Direction = "agree"
	DirectionDisagree Direction = "disagree"
)

// BasicCommentStats are the tallies of one statement within one group.
// INVARIANTS:
// - NA + ND + passes == NS
// - 0 < PA, PD < 1 (Laplace smoothing)
type BasicCommentStats struct {
	NA  int     `json:"na"`  // agree count
	ND  int     `json:"nd"`  // disagree count
	NS  int     `json:"ns"`  // votes seen, passes included
	PA  float64 `json:"pa"`  // (NA+1)/(NS+2)
	PD  float64 `json:"pd"`  // (ND+1)/(NS+2)
	PAT float64 `json:"pat"` // one-proportion z for agree
	PDT float64 `json:"pdt"` // one-proportion z for disagree
}

// Passes is the number of pass votes
func (b BasicCommentStats) Passes() int {
	return b.NS - b.NA - b.ND
}

// CommentStats adds the comparison of a group against the pooled rest.
type CommentStats struct {
	BasicCommentStats
	RA  float64 `json:"ra"`  // agree representativeness ratio
	RD  float64 `json:"rd"`  // disagree representativeness ratio
	RAT float64 `json:"rat"` // two-proportion z, agree, in vs out
	RDT float64 `json:"rdt"` // two-proportion z, disagree, in vs out
}

// StatementGroupStats is one statement's stats for every group.
type StatementGroupStats struct {
	TID    core.StatementID
	Groups map[votes.GroupLabel]CommentStats
}

// FinalizedCommentStats is the side-taken, externally visible result.
type FinalizedCommentStats struct {
	TID         core.StatementID `json:"tid"`
	NAgree      int              `json:"n_agree"`
	NDisagree   int              `json:"n_disagree"`
	NPass       int              `json:"n_pass"`
	NSuccess    int              `json:"n_success"`
	NTrials     int              `json:"n_trials"`
	PSuccess    float64          `json:"p_success"`
	PTest       float64          `json:"p_test"`
	Repness     float64          `json:"repness"`
	RepnessTest float64          `json:"repness_test"`
	RepfulFor   Direction        `json:"repful_for"`
	BestAgree   bool             `json:"best_agree,omitempty"`
}

// RepComments maps each group to its ordered representative statements.
type RepComments map[votes.GroupLabel][]FinalizedCommentStats

// ConsensusStatement is a conversation-wide result, independent of grouping.
type ConsensusStatement struct {
	TID      core.StatementID `json:"tid"`
	NSuccess int              `json:"n_success"`
	NTrials  int              `json:"n_trials"`
	PSuccess float64          `json:"p_success"`
	PTest    float64          `json:"p_test"`
	ConsFor  Direction        `json:"cons_for"`
}

// ConsensusResult holds the agree and disagree pools.
type ConsensusResult struct {
	Agree    []ConsensusStatement `json:"agree"`
	Disagree []ConsensusStatement `json:"disagree"`
}

// AnalysisResult is the output of one painted-cluster analysis.
type AnalysisResult struct {
	RepComments         RepComments      `json:"repComments"`
	ConsensusStatements *ConsensusResult `json:"consensusStatements"`
	GroupVotes          votes.GroupVotes `json:"groupVotes"`
}
