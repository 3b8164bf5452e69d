package surface

import (
	"testing"

	"github.com/pgatlas/pgatlas/pkg/config"
	"github.com/pgatlas/pgatlas/pkg/graph"
	"github.com/pgatlas/pgatlas/pkg/graph/graphtest"
	"github.com/pgatlas/pgatlas/pkg/score"
)

func TestClassifyTrend(t *testing.T) {
	cfg := config.Default().Trend
	tests := []struct {
		days graph.Days
		want Trend
	}{
		{0, TrendActive},
		{13, TrendActive},
		{14, TrendStable},
		{44, TrendStable},
		{45, TrendStagnant},
		{88, TrendStagnant},
		{89, TrendDeclining},
		{400, TrendDeclining},
		{graph.UnknownDays, TrendActive},
	}
	for _, tt := range tests {
		if got := ClassifyTrend(tt.days, cfg); got != tt.want {
			t.Errorf("ClassifyTrend(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func debtFixture(t *testing.T) Inputs {
	g := graphtest.New(t).
		Project("p", 100).
		Repo("hot", 100).
		Repo("warm", 60).
		Repo("lowpct", 100).
		Repo("diverse", 100).
		Repo("busy", 5).
		Repo("nocontrib", 100).
		Owns("p", "hot").
		Graph()

	return Inputs{
		Graph: g,
		Criticality: map[string]int{
			"hot": 40, "warm": 20, "lowpct": 2, "diverse": 50, "busy": 50, "nocontrib": 60,
		},
		CriticalityPct: map[string]float64{
			"hot": 90, "warm": 80, "lowpct": 50, "diverse": 95, "busy": 95, "nocontrib": 99,
		},
		Concentration: map[string]score.Risk{
			"hot":     {Repo: "hot", HHI: 6800, TopContributor: "alice", TopShare: 0.8},
			"warm":    {Repo: "warm", HHI: 3000, TopContributor: "bob", TopShare: 0.5},
			"lowpct":  {Repo: "lowpct", HHI: 9000},
			"diverse": {Repo: "diverse", HHI: 1000},
			"busy":    {Repo: "busy", HHI: 9000},
		},
	}
}

func TestMaintenanceDebt(t *testing.T) {
	got := MaintenanceDebt(debtFixture(t), config.Default())
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}

	hot := got[0]
	if hot.Repo != "hot" || hot.Project != "p" {
		t.Errorf("first = %s/%s, want hot/p", hot.Repo, hot.Project)
	}
	if hot.RiskScore != 0.612 {
		t.Errorf("RiskScore = %v, want 0.612", hot.RiskScore)
	}
	if hot.HHITier != score.TierCritical || hot.Trend != TrendDeclining {
		t.Errorf("tier/trend = %s/%s, want critical/declining", hot.HHITier, hot.Trend)
	}
	if hot.Dependents != 40 || hot.DaysSince != 100 {
		t.Errorf("dependents/days = %d/%d, want 40/100", hot.Dependents, hot.DaysSince)
	}

	warm := got[1]
	if warm.Repo != "warm" || warm.Project != "warm" {
		t.Errorf("second = %s/%s, want warm/warm", warm.Repo, warm.Project)
	}
	if warm.HHITier != score.TierConcentrated || warm.Trend != TrendStagnant {
		t.Errorf("tier/trend = %s/%s, want concentrated/stagnant", warm.HHITier, warm.Trend)
	}
}

func TestMaintenanceDebtRequiresAllConditions(t *testing.T) {
	excluded := []string{"lowpct", "diverse", "busy", "nocontrib"}
	got := MaintenanceDebt(debtFixture(t), config.Default())
	for _, e := range got {
		for _, id := range excluded {
			if e.Repo == id {
				t.Errorf("%s on the debt surface, fails one condition", id)
			}
		}
	}
}

func TestSummarizeDebt(t *testing.T) {
	entries := MaintenanceDebt(debtFixture(t), config.Default())
	s := SummarizeDebt(entries, 1)
	if s.Total != 2 || s.CriticalHHI != 1 || s.Declining != 1 {
		t.Errorf("summary = %+v", s)
	}
	if len(s.Top) != 1 || s.Top[0].Repo != "hot" {
		t.Errorf("Top = %+v", s.Top)
	}
	if empty := SummarizeDebt(nil, 5); empty.Total != 0 || len(empty.Top) != 0 {
		t.Errorf("SummarizeDebt(nil) = %+v", empty)
	}
}
