package surface

import (
	"testing"

	"github.com/pgatlas/pgatlas/pkg/config"
	"github.com/pgatlas/pgatlas/pkg/graph"
	"github.com/pgatlas/pgatlas/pkg/graph/graphtest"
	"github.com/pgatlas/pgatlas/pkg/score"
)

func fundingFixture(t *testing.T) Inputs {
	g := graphtest.New(t).
		Project("pa", 0).Project("pb", 100).Project("pc", 1000).Project("pd", 10000).
		Repo("ra", 1).Repo("rb", 1).Repo("rc", 1).Repo("rd", 1).
		Owns("pa", "ra").
		Owns("pb", "rb").
		Owns("pc", "rc").
		Owns("pd", "rd").
		Graph()

	return Inputs{
		Graph:       g,
		Criticality: map[string]int{"ra": 5, "rb": 10, "rc": 1, "rd": 0},
		Concentration: map[string]score.Risk{
			"ra": {Repo: "ra", PonyFactor: 1},
		},
	}
}

func TestFundingEfficiency(t *testing.T) {
	got := FundingEfficiency(fundingFixture(t), config.Default().Funding)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}

	wantOrder := []string{"pa", "pb", "pc", "pd"}
	wantTier := []FundingTier{TierUnfunded, TierUndefined, TierBalanced, TierSignificantlyOverfunded}
	for i := range got {
		if got[i].Project != wantOrder[i] {
			t.Errorf("entry[%d] = %s, want %s", i, got[i].Project, wantOrder[i])
		}
		if got[i].Tier != wantTier[i] {
			t.Errorf("%s tier = %s, want %s", got[i].Project, got[i].Tier, wantTier[i])
		}
	}

	pa, pb, pc := got[0], got[1], got[2]
	if pa.FER != nil || pb.FER != nil {
		t.Errorf("FER = %v/%v, want nil/nil", pa.FER, pb.FER)
	}
	if pa.FundingPct != 0 || pa.CriticalityPct != 50 {
		t.Errorf("pa pct = %v/%v, want 50/0", pa.CriticalityPct, pa.FundingPct)
	}
	if !pa.PonyFlag || pa.PonyRiskRepos != 1 {
		t.Errorf("pa pony = %v/%d, want true/1", pa.PonyFlag, pa.PonyRiskRepos)
	}
	if pc.FER == nil || *pc.FER != 0.75 {
		t.Errorf("pc FER = %v, want 0.75", pc.FER)
	}
}

func TestClassifyFER(t *testing.T) {
	cfg := config.Default().Funding
	tests := []struct {
		fer  float64
		want FundingTier
	}{
		{3.5, TierCriticallyUnderfunded},
		{2.0, TierUnderfunded},
		{1.31, TierUnderfunded},
		{1.3, TierBalanced},
		{0.71, TierBalanced},
		{0.7, TierOverfunded},
		{0.41, TierOverfunded},
		{0.4, TierSignificantlyOverfunded},
		{0, TierSignificantlyOverfunded},
	}
	for _, tt := range tests {
		if got := ClassifyFER(tt.fer, cfg); got != tt.want {
			t.Errorf("ClassifyFER(%v) = %s, want %s", tt.fer, got, tt.want)
		}
	}
}

func TestSummarizeFunding(t *testing.T) {
	fer := func(v float64) *float64 { return &v }
	entries := []FundingEntry{
		{Project: "x", FER: fer(2.5), Tier: TierCriticallyUnderfunded},
		{Project: "y", FER: fer(4.0), Tier: TierCriticallyUnderfunded},
		{Project: "z", Tier: TierUnfunded},
	}
	s := SummarizeFunding(entries, 1)
	if len(s.Tiers) != len(FundingTiers) {
		t.Errorf("len(Tiers) = %d, want %d", len(s.Tiers), len(FundingTiers))
	}
	if s.Tiers[TierCriticallyUnderfunded] != 2 || s.Tiers[TierUnfunded] != 1 || s.Tiers[TierBalanced] != 0 {
		t.Errorf("Tiers = %v", s.Tiers)
	}
	if len(s.TopUnderfunded) != 1 || s.TopUnderfunded[0].Project != "y" {
		t.Errorf("TopUnderfunded = %+v", s.TopUnderfunded)
	}
}

func TestFundingEfficiencyNoProjects(t *testing.T) {
	in := Inputs{Graph: graph.New()}
	if got := FundingEfficiency(in, config.Default().Funding); len(got) != 0 {
		t.Errorf("FundingEfficiency = %+v, want empty", got)
	}
}
