package app

import (
	"context"
	"sync"

	"gorepness/domain/core"
	"gorepness/domain/votes"
	"gorepness/internal"
	"gorepness/ports"

	"golang.org/x/sync/errgroup"
)

// GroupVoteAggregator builds one vote matrix per painted group
type GroupVoteAggregator struct {
	store       ports.VoteStore
	concurrency int
	logger      *internal.Logger
}

// NewGroupVoteAggregator creates an aggregator issuing at most concurrency
// store queries at a time
func NewGroupVoteAggregator(store ports.VoteStore, concurrency int) *GroupVoteAggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &GroupVoteAggregator{
		store:       store,
		concurrency: concurrency,
		logger:      internal.DefaultLogger.Component("Aggregator"),
	}
}

// PartitionParticipants groups participant ids by label, keeping input
// order inside each group. Unassigned labels are dropped.
func PartitionParticipants(labels []votes.GroupLabel, participantIDs []core.ParticipantID) (map[votes.GroupLabel][]core.ParticipantID, error) {
	if len(labels) != len(participantIDs) {
		return nil, core.NewLabelMismatchError(len(labels), len(participantIDs))
	}
	groups := make(map[votes.GroupLabel][]core.ParticipantID)
	for i, label := range labels {
		if !label.IsAssigned() {
			continue
		}
		groups[label] = append(groups[label], participantIDs[i])
	}
	return groups, nil
}

// Aggregate queries the store once per group. Any store failure fails the
// whole aggregation and no partial result is returned.
func (a *GroupVoteAggregator) Aggregate(ctx context.Context, labels []votes.GroupLabel, participantIDs []core.ParticipantID) (votes.GroupVotes, error) {
	groups, err := PartitionParticipants(labels, participantIDs)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		result = make(votes.GroupVotes, len(groups))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for label, members := range groups {
		label, members := label, members
		g.Go(func() error {
			matrix, err := a.store.FullVoteMatrixForParticipants(gctx, members)
			if err != nil {
				if core.IsStoreUnavailable(err) {
					return err
				}
				return core.NewStoreUnavailableError("votes", err)
			}
			if matrix == nil {
				matrix = make(votes.GroupVoteMatrix)
			}
			a.logger.Debug("group %s: %d participants, %d voters", label, len(members), len(matrix))

			mu.Lock()
			result[label] = matrix
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.logger.Error("aggregation failed: %v", err)
		return nil, err
	}
	return result, nil
}
