package app

import (
	"context"

	"gorepness/domain/core"
	"gorepness/domain/votes"
	"gorepness/ports"
)

// VoteTypeNone marks a participant who never voted on the statement
const VoteTypeNone = "none"

// ParticipantVote is one point of the vote-coloring layer
type ParticipantVote struct {
	ParticipantID core.ParticipantID `json:"participant_id"`
	Vote          *votes.Vote        `json:"vote"` // nil when the participant never voted
	VoteType      string             `json:"vote_type"`
}

// VoteLayerService reports how each participant voted on a single statement
type VoteLayerService struct {
	store ports.VoteStore
}

// NewVoteLayerService creates a vote layer service
func NewVoteLayerService(store ports.VoteStore) *VoteLayerService {
	return &VoteLayerService{store: store}
}

// ParticipantVotesForStatement returns one entry per requested participant,
// in request order, using a single store query.
func (s *VoteLayerService) ParticipantVotesForStatement(ctx context.Context, statementID core.StatementID, participantIDs []core.ParticipantID) ([]ParticipantVote, error) {
	if s.store == nil {
		return nil, core.NewStoreUnavailableError("votes", nil)
	}
	byParticipant, err := s.store.VotesForParticipants(ctx, statementID, participantIDs)
	if err != nil {
		if core.IsStoreUnavailable(err) {
			return nil, err
		}
		return nil, core.NewStoreUnavailableError("votes", err)
	}

	out := make([]ParticipantVote, len(participantIDs))
	for i, pid := range participantIDs {
		out[i] = ParticipantVote{ParticipantID: pid, VoteType: VoteTypeNone}
		if v, ok := byParticipant[pid]; ok {
			v := v
			out[i].Vote = &v
			out[i].VoteType = v.Type()
		}
	}
	return out, nil
}
