package stats

// Defaults applied when an option is left at its zero value.
const (
	DefaultMinVoteCount       = 1
	DefaultMaxStatementsCount = 10
)

// AnalysisOptions tune statement selection. MinVoteCount filters statements
// per group and is unrelated to the fixed vote threshold used when choosing
// a finalized statement's direction.
type AnalysisOptions struct {
	IncludeModerated   bool `json:"includeModerated" yaml:"include_moderated"`
	MinVoteCount       int  `json:"minVoteCount" yaml:"min_vote_count"`
	MaxStatementsCount int  `json:"maxStatementsCount" yaml:"max_statements_count"`
}

// DefaultAnalysisOptions returns the options used when none are supplied
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		IncludeModerated:   false,
		MinVoteCount:       DefaultMinVoteCount,
		MaxStatementsCount: DefaultMaxStatementsCount,
	}
}

// WithDefaults fills zero-valued counts. MinVoteCount is raised to at least
// 1 so statements nobody in a group voted on never qualify.
func (o AnalysisOptions) WithDefaults() AnalysisOptions {
	if o.MinVoteCount < 1 {
		o.MinVoteCount = DefaultMinVoteCount
	}
	if o.MaxStatementsCount <= 0 {
		o.MaxStatementsCount = DefaultMaxStatementsCount
	}
	return o
}
