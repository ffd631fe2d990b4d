package fraud

import (
	"context"
	"testing"

	"github.com/propclear/propclear/internal/domain"
	"github.com/propclear/propclear/internal/signals"
)

// scriptedSource replays a fixed sequence of draws.
type scriptedSource struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (s *scriptedSource) Float64() float64 {
	v := s.floats[s.fi%len(s.floats)]
	s.fi++
	return v
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[s.ii%len(s.ints)] % n
	s.ii++
	return v
}

// fakeLookups returns canned cross-reference data.
type fakeLookups struct {
	cases         []*domain.LitigationCase
	suspectDocs   int
	titleDisputes int
	claims        int
}

func (f *fakeLookups) ListLitigationByProperty(ctx context.Context, propertyID string) ([]*domain.LitigationCase, error) {
	return f.cases, nil
}

func (f *fakeLookups) CountSuspectDocuments(ctx context.Context, propertyID string) (int, error) {
	return f.suspectDocs, nil
}

func (f *fakeLookups) CountTitleDisputesByParty(ctx context.Context, owner string) (int, error) {
	return f.titleDisputes, nil
}

func (f *fakeLookups) CountLitigationByPropertyOrAddress(ctx context.Context, propertyID, address string) (int, error) {
	return f.claims, nil
}

func TestAnalyzeWeightedAggregation(t *testing.T) {
	ctx := context.Background()

	// All confirmed signals firing with price=50 and forgery=40 sums
	// to 117 before the clamp.
	src := &scriptedSource{floats: []float64{
		0.9, // GPA holder concern (> 0.8)
		0.5, // price anomaly -> 50
		0.8, // document forgery -> 40
		0.1, 0.1, 0.1, 0.1,
	}}
	lookups := &fakeLookups{
		cases: []*domain.LitigationCase{
			{CaseNumber: "DC/2024/0001", CaseType: domain.CaseTypeTitleDispute},
		},
		suspectDocs:   1,
		titleDisputes: 2,
		claims:        1,
	}

	analyzer := NewAnalyzer(signals.NewGenerator(src), NewCrossReferencer(lookups))

	score, err := analyzer.Analyze(ctx, Input{
		PropertyID:     "prop-001",
		OwnerName:      "Ramesh Kumar",
		Address:        "123 MG Road",
		MortgageStatus: domain.MortgageStatusClear,
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if score.OverallFraudScore != 100 {
		t.Errorf("expected clamped score 100, got %d", score.OverallFraudScore)
	}
	if score.Recommendation != domain.RecommendationHighRisk {
		t.Errorf("expected high risk recommendation, got %q", score.Recommendation)
	}

	wantFlags := []string{
		domain.FlagDuplicateSale,
		domain.FlagForgedDocument,
		domain.FlagIdentityTheft,
		domain.FlagMultipleClaims,
		domain.FlagGPAHolderConcern,
	}
	if len(score.FraudFlags) != len(wantFlags) {
		t.Fatalf("expected %d flags, got %v", len(wantFlags), score.FraudFlags)
	}
	for i, want := range wantFlags {
		if score.FraudFlags[i] != want {
			t.Errorf("flag %d: expected %s, got %s", i, want, score.FraudFlags[i])
		}
	}

	if score.Findings.MortgageStatus != domain.MortgageStatusClear {
		t.Errorf("expected mortgage status carried into findings, got %s", score.Findings.MortgageStatus)
	}
}

func TestAnalyzeCleanProperty(t *testing.T) {
	ctx := context.Background()

	// No GPA concern and low synthetic draws over an empty store.
	src := &scriptedSource{floats: []float64{
		0.1, // no GPA concern
		0.2, // price anomaly -> 20
		0.2, // document forgery -> 10
		0.1, 0.1, 0.1, 0.1,
	}}
	analyzer := NewAnalyzer(signals.NewGenerator(src), NewCrossReferencer(&fakeLookups{}))

	score, err := analyzer.Analyze(ctx, Input{
		PropertyID: "prop-002",
		OwnerName:  "Anita Desai",
		Address:    "456 FC Road",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	// floor(20*0.2 + 10*0.3) = 7
	if score.OverallFraudScore != 7 {
		t.Errorf("expected score 7, got %d", score.OverallFraudScore)
	}
	if score.Recommendation != domain.RecommendationLowRisk {
		t.Errorf("expected low risk recommendation, got %q", score.Recommendation)
	}
	if len(score.FraudFlags) != 0 {
		t.Errorf("expected no flags, got %v", score.FraudFlags)
	}
}

func TestAnalyzeThresholdBoundary(t *testing.T) {
	ctx := context.Background()

	// The manual review policy is strictly greater-than 50.
	src := &scriptedSource{floats: []float64{
		0.1, // no GPA concern
		0.0, // zero price anomaly
		0.0, // zero document forgery
		0.1, 0.1, 0.1, 0.1,
	}}
	// duplicate sale (15) + identity theft (25) = 40.
	lookups := &fakeLookups{
		cases: []*domain.LitigationCase{
			{CaseNumber: "DC/2024/0009", CaseType: domain.CaseTypeTitleDispute},
		},
		titleDisputes: 2,
	}

	analyzer := NewAnalyzer(signals.NewGenerator(src), NewCrossReferencer(lookups))
	score, err := analyzer.Analyze(ctx, Input{PropertyID: "prop-003", OwnerName: "X", Address: "Y"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if score.OverallFraudScore != 40 {
		t.Errorf("expected score 40, got %d", score.OverallFraudScore)
	}
	if score.Recommendation != domain.RecommendationLowRisk {
		t.Errorf("expected low risk at 40, got %q", score.Recommendation)
	}
}

func TestRiskLevelBuckets(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "low"},
		{29, "low"},
		{30, "medium"},
		{60, "medium"},
		{61, "high"},
		{100, "high"},
	}
	for _, tt := range tests {
		if got := domain.RiskLevelForScore(tt.score); got != tt.want {
			t.Errorf("RiskLevelForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
