package app

import (
	"context"
	"time"

	"gorepness/adapters/stats/repness"
	"gorepness/domain/core"
	"gorepness/domain/stats"
	"gorepness/domain/votes"
	"gorepness/internal"
	"gorepness/ports"
)

// AnalysisService composes aggregation, representative selection and
// consensus selection into one painted-cluster analysis
type AnalysisService struct {
	store       ports.VoteStore
	statements  ports.StatementRepository
	concurrency int
	logger      *internal.Logger
}

// AnalysisRequest holds the inputs of one analysis call
type AnalysisRequest struct {
	Labels         []votes.GroupLabel     `json:"labels"`
	ParticipantIDs []core.ParticipantID   `json:"participant_ids"`
	StatementIDs   []core.StatementID     `json:"statement_ids,omitempty"` // defaults to every statement seen, ascending
	Catalog        votes.StatementCatalog `json:"-"`                       // defaults to the statement repository
	Options        stats.AnalysisOptions  `json:"options"`
}

// NewAnalysisService creates an analysis service. statements may be nil,
// in which case only the request's catalog is used for moderation.
func NewAnalysisService(store ports.VoteStore, statements ports.StatementRepository, concurrency int) *AnalysisService {
	return &AnalysisService{
		store:       store,
		statements:  statements,
		concurrency: concurrency,
		logger:      internal.DefaultLogger.Component("Analysis"),
	}
}

// AnalyzePaintedClusters aggregates each group's votes, selects
// representative statements per group and, with at least two groups,
// consensus statements across everyone. Store failures are returned as
// core.ErrStoreUnavailable; nothing is retried.
func (s *AnalysisService) AnalyzePaintedClusters(ctx context.Context, req AnalysisRequest) (*stats.AnalysisResult, error) {
	if s.store == nil {
		return nil, core.NewStoreUnavailableError("votes", nil)
	}
	start := time.Now()
	opts := req.Options.WithDefaults()

	catalog, err := s.catalog(ctx, req.Catalog)
	if err != nil {
		return nil, err
	}

	groupVotes, err := NewGroupVoteAggregator(s.store, s.concurrency).Aggregate(ctx, req.Labels, req.ParticipantIDs)
	if err != nil {
		return nil, err
	}

	repComments := repness.CalculateRepresentativeComments(groupVotes, req.StatementIDs, repness.SelectOptions{
		AnalysisOptions: opts,
		Catalog:         catalog,
	})

	result := &stats.AnalysisResult{
		RepComments: repComments,
		GroupVotes:  groupVotes,
	}

	if len(groupVotes) >= 2 {
		params := repness.DefaultConsensusParams()
		params.MinVoteCount = opts.MinVoteCount
		params.MaxStatementsCount = opts.MaxStatementsCount
		if !opts.IncludeModerated {
			params.Excluded = catalog.ModeratedIDs()
		}
		consensus := repness.SelectConsensusStatements(groupVotes, params)
		result.ConsensusStatements = &consensus
	}

	s.logger.Info("analyzed %d groups in %s", len(groupVotes), time.Since(start).Round(time.Millisecond))
	return result, nil
}

// CalculateRepresentativeStatements is the application entry point: the
// label array and participant ids are index aligned, catalog supplies
// moderation flags and options fall back to their defaults.
func (s *AnalysisService) CalculateRepresentativeStatements(ctx context.Context, labels []votes.GroupLabel, participantIDs []core.ParticipantID, catalog votes.StatementCatalog, opts stats.AnalysisOptions) (*stats.AnalysisResult, error) {
	result, err := s.AnalyzePaintedClusters(ctx, AnalysisRequest{
		Labels:         labels,
		ParticipantIDs: participantIDs,
		Catalog:        catalog,
		Options:        opts,
	})
	if err != nil {
		s.logger.Error("error calculating representative statements: %v", err)
		return nil, err
	}
	return result, nil
}

// Catalog returns the statement catalog from the repository, or an empty one
func (s *AnalysisService) Catalog(ctx context.Context) (votes.StatementCatalog, error) {
	return s.catalog(ctx, nil)
}

func (s *AnalysisService) catalog(ctx context.Context, given votes.StatementCatalog) (votes.StatementCatalog, error) {
	if given != nil {
		return given, nil
	}
	if s.statements == nil {
		return votes.StatementCatalog{}, nil
	}
	catalog, err := s.statements.Catalog(ctx)
	if err != nil {
		return nil, core.NewStoreUnavailableError("statements", err)
	}
	return catalog, nil
}
