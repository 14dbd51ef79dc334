package testkit

import (
	"context"

	"gorepness/adapters/memory"
	"gorepness/internal"
)

// TestKit provides a synthetic conversation behind in-memory stores
type TestKit struct {
	conversation *Conversation
	votes        *memory.VoteStore
	statements   *memory.StatementRepository
}

// NewTestKit generates a conversation and loads it into memory stores.
// The vote store still needs Open.
func NewTestKit(config ConversationGeneratorConfig) *TestKit {
	conv := NewConversationGenerator(config).Generate()
	internal.DefaultLogger.Debug("[TestKit] generated %d votes from %d participants on %d statements",
		len(conv.Records), len(conv.ParticipantIDs), len(conv.Statements))

	return &TestKit{
		conversation: conv,
		votes:        memory.NewVoteStore(conv.Records...),
		statements:   memory.NewStatementRepository(conv.Statements...),
	}
}

// NewOpenTestKit is NewTestKit with the vote store already open
func NewOpenTestKit(ctx context.Context, config ConversationGeneratorConfig) (*TestKit, error) {
	kit := NewTestKit(config)
	if err := kit.votes.Open(ctx); err != nil {
		return nil, err
	}
	return kit, nil
}

// Conversation returns the generated data
func (t *TestKit) Conversation() *Conversation {
	return t.conversation
}

// VoteStore returns the in-memory vote store
func (t *TestKit) VoteStore() *memory.VoteStore {
	return t.votes
}

// StatementRepository returns the in-memory statement repository
func (t *TestKit) StatementRepository() *memory.StatementRepository {
	return t.statements
}
