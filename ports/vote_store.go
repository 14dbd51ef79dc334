package ports

import (
	"context"

	"gorepness/domain/core"
	"gorepness/domain/votes"
)

// VoteStore supplies participant votes to the analysis engine. It is
// read-only from the engine's side, must tolerate repeated identical
// queries, and has an explicit lifecycle: calls before Open or after Close
// fail with core.ErrStoreUnavailable.
type VoteStore interface {
	Open(ctx context.Context) error
	Close() error

	// VotesForParticipants returns each listed participant's vote on one
	// statement. Participants who never voted are absent from the map.
	VotesForParticipants(ctx context.Context, statementID core.StatementID, participantIDs []core.ParticipantID) (map[core.ParticipantID]votes.Vote, error)

	// FullVoteMatrixForParticipants returns every recorded vote of the
	// listed participants, across all statements.
	FullVoteMatrixForParticipants(ctx context.Context, participantIDs []core.ParticipantID) (votes.GroupVoteMatrix, error)
}

// VoteWriter is implemented by stores that accept imported votes.
type VoteWriter interface {
	SaveVotes(ctx context.Context, records []votes.Record) (int, error)
}
