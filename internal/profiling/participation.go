package profiling

import (
	"gorepness/domain/core"
	"gorepness/domain/votes"

	"github.com/montanaflynn/stats"
)

// ParticipationSummary describes how much one group voted
type ParticipationSummary struct {
	Group          votes.GroupLabel `json:"group"`
	Voters         int              `json:"voters"`
	TotalVotes     int              `json:"total_votes"`
	Agrees         int              `json:"agrees"`
	Disagrees      int              `json:"disagrees"`
	Passes         int              `json:"passes"`
	StatementsSeen int              `json:"statements_seen"`

	MeanVotesPerVoter   float64 `json:"mean_votes_per_voter"`
	MedianVotesPerVoter float64 `json:"median_votes_per_voter"`
	StdDevVotesPerVoter float64 `json:"stddev_votes_per_voter"`
	P90VotesPerVoter    float64 `json:"p90_votes_per_voter"`
}

// SummarizeParticipation summarizes every group, ordered by label. Groups
// whose matrix is empty get zero statistics.
func SummarizeParticipation(groupVotes votes.GroupVotes) ([]ParticipationSummary, error) {
	labels := groupVotes.Labels()
	out := make([]ParticipationSummary, 0, len(labels))
	for _, label := range labels {
		s, err := summarizeGroup(label, groupVotes[label])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func summarizeGroup(label votes.GroupLabel, matrix votes.GroupVoteMatrix) (ParticipationSummary, error) {
	s := ParticipationSummary{Group: label, Voters: len(matrix)}
	if len(matrix) == 0 {
		return s, nil
	}

	perVoter := make(stats.Float64Data, 0, len(matrix))
	seen := make(map[core.StatementID]struct{})
	for _, row := range matrix {
		perVoter = append(perVoter, float64(len(row)))
		for tid, v := range row {
			seen[tid] = struct{}{}
			switch v {
			case votes.Agree:
				s.Agrees++
			case votes.Disagree:
				s.Disagrees++
			default:
				s.Passes++
			}
		}
	}
	s.TotalVotes = s.Agrees + s.Disagrees + s.Passes
	s.StatementsSeen = len(seen)

	var err error
	if s.MeanVotesPerVoter, err = perVoter.Mean(); err != nil {
		return s, err
	}
	if s.MedianVotesPerVoter, err = perVoter.Median(); err != nil {
		return s, err
	}
	if s.StdDevVotesPerVoter, err = perVoter.StandardDeviation(); err != nil {
		return s, err
	}
	if s.P90VotesPerVoter, err = perVoter.Percentile(90); err != nil {
		return s, err
	}
	return s, nil
}
