package testkit

import (
	"fmt"
	"math/rand"
	"strconv"

	"gorepness/domain/core"
	"gorepness/domain/votes"
)

// ConversationGeneratorConfig configures the synthetic conversation generator
type ConversationGeneratorConfig struct {
	Participants   int     `json:"participants"`
	Statements     int     `json:"statements"`
	Groups         int     `json:"groups"`
	VoteRate       float64 `json:"vote_rate"`       // chance a participant votes on a given statement
	PassRate       float64 `json:"pass_rate"`       // chance a cast vote is a pass
	Polarization   float64 `json:"polarization"`    // 0 = groups agree on everything, 1 = opposed
	ModerationRate float64 `json:"moderation_rate"` // share of statements moderated out
	Seed           int64   `json:"seed"`
}

// DefaultConversationConfig returns a small two-camp conversation
func DefaultConversationConfig() ConversationGeneratorConfig {
	return ConversationGeneratorConfig{
		Participants:   200,
		Statements:     40,
		Groups:         2,
		VoteRate:       0.7,
		PassRate:       0.1,
		Polarization:   0.6,
		ModerationRate: 0.05,
		Seed:           42,
	}
}

// Conversation is a generated dataset with its ground-truth grouping
type Conversation struct {
	Records        []votes.Record
	Statements     []votes.Statement
	ParticipantIDs []core.ParticipantID
	Labels         []votes.GroupLabel // ground-truth group of each participant, index aligned
}

// ConversationGenerator produces seeded, reproducible conversations
type ConversationGenerator struct {
	config ConversationGeneratorConfig
	rng    *rand.Rand
}

// NewConversationGenerator creates a new conversation generator
func NewConversationGenerator(config ConversationGeneratorConfig) *ConversationGenerator {
	if config.Groups < 1 {
		config.Groups = 1
	}
	return &ConversationGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the conversation. Each group has an agree probability per
// statement: a shared baseline pushed apart by Polarization, so some
// statements split the groups and the rest are broadly agreed or rejected.
func (g *ConversationGenerator) Generate() *Conversation {
	cfg := g.config
	conv := &Conversation{}

	for s := 0; s < cfg.Statements; s++ {
		st := votes.Statement{
			ID:         core.StatementID(strconv.Itoa(s)),
			Text:       fmt.Sprintf("Synthetic statement %d", s),
			Moderation: votes.Accepted,
		}
		if g.rng.Float64() < cfg.ModerationRate {
			st.Moderation = votes.ModeratedOut
		}
		conv.Statements = append(conv.Statements, st)
	}

	agreeProb := make([][]float64, cfg.Groups)
	for grp := range agreeProb {
		agreeProb[grp] = make([]float64, cfg.Statements)
	}
	for s := 0; s < cfg.Statements; s++ {
		base := g.rng.Float64()
		direction := 1.0
		if g.rng.Intn(2) == 0 {
			direction = -1.0
		}
		for grp := 0; grp < cfg.Groups; grp++ {
			shift := 0.0
			if cfg.Groups > 1 {
				// spread groups evenly across [-0.5, 0.5]
				shift = (float64(grp)/float64(cfg.Groups-1) - 0.5) * cfg.Polarization * direction
			}
			agreeProb[grp][s] = clamp(base+shift, 0.02, 0.98)
		}
	}

	for p := 0; p < cfg.Participants; p++ {
		pid := core.ParticipantID(fmt.Sprintf("p%04d", p))
		grp := p % cfg.Groups
		conv.ParticipantIDs = append(conv.ParticipantIDs, pid)
		conv.Labels = append(conv.Labels, votes.GroupLabel(strconv.Itoa(grp)))

		for s := 0; s < cfg.Statements; s++ {
			if g.rng.Float64() >= cfg.VoteRate {
				continue
			}
			conv.Records = append(conv.Records, votes.Record{
				ParticipantID: pid,
				StatementID:   conv.Statements[s].ID,
				Vote:          g.vote(agreeProb[grp][s]),
			})
		}
	}
	return conv
}

func (g *ConversationGenerator) vote(agreeProb float64) votes.Vote {
	if g.rng.Float64() < g.config.PassRate {
		return votes.Pass
	}
	if g.rng.Float64() < agreeProb {
		return votes.Agree
	}
	return votes.Disagree
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
