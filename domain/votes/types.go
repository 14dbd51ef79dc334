package votes

import (
	"fmt"
	"sort"

	"gorepness/domain/core"
)

// Vote is one participant's reaction to one statement. Absence of a vote is
// modeled by a missing map entry, never by Pass.
type Vote int8

const (
	Disagree Vote = -1
	Pass     Vote = 0
	Agree    Vote = 1
)

// ParseVote validates a raw integer vote
func ParseVote(v int64) (Vote, error) {
	switch v {
	case -1, 0, 1:
		return Vote(v), nil
	default:
		return 0, fmt.Errorf("%w: %d", core.ErrInvalidVote, v)
	}
}

// Type returns the vote-layer name of the vote
func (v Vote) Type() string {
	switch v {
	case Agree:
		return "agree"
	case Disagree:
		return "disagree"
	default:
		return "pass"
	}
}

// Record is one (participant, statement, vote) triple as held by a vote store.
type Record struct {
	ParticipantID core.ParticipantID `json:"participant_id" db:"participant_id"`
	StatementID   core.StatementID   `json:"comment_id" db:"comment_id"`
	Vote          Vote               `json:"vote" db:"vote"`
}

// GroupVoteMatrix maps participant → statement → vote for one group.
// Built fresh per analysis call and not mutated after construction.
type GroupVoteMatrix map[core.ParticipantID]map[core.StatementID]Vote

// NewGroupVoteMatrix builds a matrix from vote records
func NewGroupVoteMatrix(records []Record) GroupVoteMatrix {
	m := make(GroupVoteMatrix)
	for _, r := range records {
		m.Set(r.ParticipantID, r.StatementID, r.Vote)
	}
	return m
}

// Set records a vote, creating the participant row on demand
func (m GroupVoteMatrix) Set(pid core.ParticipantID, tid core.StatementID, v Vote) {
	row, ok := m[pid]
	if !ok {
		row = make(map[core.StatementID]Vote)
		m[pid] = row
	}
	row[tid] = v
}

// StatementIDs returns the statements voted on in this matrix, sorted
func (m GroupVoteMatrix) StatementIDs() []core.StatementID {
	seen := make(map[core.StatementID]struct{})
	for _, row := range m {
		for tid := range row {
			seen[tid] = struct{}{}
		}
	}
	return sortedIDs(seen)
}

// GroupVotes is the aggregation output: one matrix per group label.
type GroupVotes map[GroupLabel]GroupVoteMatrix

// Labels returns the group labels in a stable order
func (g GroupVotes) Labels() []GroupLabel {
	labels := make([]GroupLabel, 0, len(g))
	for label := range g {
		labels = append(labels, label)
	}
	SortLabels(labels)
	return labels
}

// StatementIDs returns the union of statements across all groups, ascending
func (g GroupVotes) StatementIDs() []core.StatementID {
	seen := make(map[core.StatementID]struct{})
	for _, matrix := range g {
		for _, row := range matrix {
			for tid := range row {
				seen[tid] = struct{}{}
			}
		}
	}
	return sortedIDs(seen)
}

func sortedIDs(set map[core.StatementID]struct{}) []core.StatementID {
	ids := make([]core.StatementID, 0, len(set))
	for tid := range set {
		ids = append(ids, tid)
	}
	SortStatementIDs(ids)
	return ids
}

// SortStatementIDs sorts ids ascending in place
func SortStatementIDs(ids []core.StatementID) {
	sort.Slice(ids, func(i, j int) bool {
		return core.CompareStatementIDs(ids[i], ids[j]) < 0
	})
}
