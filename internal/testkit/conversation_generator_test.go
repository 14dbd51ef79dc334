package testkit

import (
	"context"
	"testing"

	"gorepness/app"
	"gorepness/domain/stats"
	"gorepness/domain/votes"

	"github.com/google/go-cmp/cmp"
)

func TestConversationGenerator_Basic(t *testing.T) {
	config := ConversationGeneratorConfig{
		Participants: 30,
		Statements:   10,
		Groups:       3,
		VoteRate:     0.8,
		PassRate:     0.1,
		Polarization: 0.8,
		Seed:         7,
	}

	conv := NewConversationGenerator(config).Generate()

	if len(conv.ParticipantIDs) != 30 || len(conv.Labels) != 30 {
		t.Fatalf("expected 30 aligned participants, got %d ids and %d labels", len(conv.ParticipantIDs), len(conv.Labels))
	}
	if len(conv.Statements) != 10 {
		t.Errorf("expected 10 statements, got %d", len(conv.Statements))
	}
	if got := len(votes.DistinctGroups(conv.Labels)); got != 3 {
		t.Errorf("expected 3 groups, got %d", got)
	}
	if len(conv.Records) == 0 {
		t.Fatal("expected votes to be generated")
	}

	seen := make(map[string]bool)
	for i, r := range conv.Records {
		key := r.ParticipantID.String() + "/" + r.StatementID.String()
		if seen[key] {
			t.Errorf("record %d duplicates vote %s", i, key)
		}
		seen[key] = true
		if r.Vote < votes.Disagree || r.Vote > votes.Agree {
			t.Errorf("record %d has invalid vote %d", i, r.Vote)
		}
	}
}

func TestConversationGenerator_Deterministic(t *testing.T) {
	a := NewConversationGenerator(DefaultConversationConfig()).Generate()
	b := NewConversationGenerator(DefaultConversationConfig()).Generate()

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different conversations (-a +b):\n%s", diff)
	}
}

func TestTestKit_AnalysisEndToEnd(t *testing.T) {
	ctx := context.Background()
	config := DefaultConversationConfig()
	config.Polarization = 0.9

	kit, err := NewOpenTestKit(ctx, config)
	if err != nil {
		t.Fatalf("open kit: %v", err)
	}
	conv := kit.Conversation()
	svc := app.NewAnalysisService(kit.VoteStore(), kit.StatementRepository(), 2)

	result, err := svc.CalculateRepresentativeStatements(ctx, conv.Labels, conv.ParticipantIDs, nil, stats.DefaultAnalysisOptions())
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}

	if len(result.RepComments) != 2 {
		t.Fatalf("expected representative statements for 2 groups, got %d", len(result.RepComments))
	}
	if result.ConsensusStatements == nil {
		t.Fatal("expected consensus statements with two groups")
	}

	catalog, _ := kit.StatementRepository().Catalog(ctx)
	for label, list := range result.RepComments {
		if len(list) > 10 {
			t.Errorf("group %s has %d statements, cap is 10", label, len(list))
		}
		for _, f := range list {
			if catalog.IsModerated(f.TID) {
				t.Errorf("group %s lists moderated statement %s", label, f.TID)
			}
		}
	}
}
