package fraud

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/propclear/propclear/internal/domain"
	"github.com/propclear/propclear/internal/signals"
)

// Fixed aggregation weights. Not configurable; operator-level alerting
// layers on top via CEL rules instead of touching the score.
const (
	weightPriceAnomaly    = 0.2
	weightDocumentForgery = 0.3
	weightDuplicateSale   = 15.0
	weightForgedDocument  = 20.0
	weightIdentityTheft   = 25.0
	weightMultipleClaims  = 20.0
	weightGPAConcern      = 15.0
)

// Input identifies the property under fraud analysis.
type Input struct {
	PropertyID     string
	OwnerName      string
	Address        string
	MortgageStatus domain.MortgageStatus
}

// Analyzer combines synthetic signals with cross-reference findings
// into a weighted fraud score. Analyze computes and returns; it writes
// nothing, persistence belongs to the audit transaction.
type Analyzer struct {
	gen  *signals.Generator
	xref *CrossReferencer
}

// NewAnalyzer creates a fraud analyzer.
func NewAnalyzer(gen *signals.Generator, xref *CrossReferencer) *Analyzer {
	return &Analyzer{gen: gen, xref: xref}
}

// Analyze runs the full fraud risk analysis for a property.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*domain.FraudScore, error) {
	if in.PropertyID == "" {
		return nil, fmt.Errorf("property id is required")
	}

	findings, err := a.xref.Check(ctx, in.PropertyID, in.OwnerName, in.Address)
	if err != nil {
		return nil, fmt.Errorf("cross-reference checks failed: %w", err)
	}
	findings.GPAHolderConcern = a.gen.GPAHolderConcern()
	findings.MortgageStatus = in.MortgageStatus

	now := time.Now().UTC()
	score := &domain.FraudScore{
		ID:         uuid.New().String(),
		PropertyID: in.PropertyID,
		OwnerName:  in.OwnerName,

		PriceAnomalyScore:      a.gen.PriceAnomaly(),
		DocumentForgeryScore:   a.gen.DocumentForgery(),
		SellerBehaviorScore:    a.gen.SellerBehavior(),
		TitleFraudScore:        a.gen.TitleFraud(),
		DoubleSaleRiskScore:    a.gen.DoubleSaleRisk(),
		BenamiTransactionScore: a.gen.BenamiTransaction(),

		Findings:  findings,
		CreatedAt: now,
		UpdatedAt: now,
	}

	score.OverallFraudScore = aggregate(score)
	score.FraudFlags = flagsFor(findings)

	if score.OverallFraudScore > domain.FraudReviewThreshold {
		score.Recommendation = domain.RecommendationHighRisk
	} else {
		score.Recommendation = domain.RecommendationLowRisk
	}

	return score, nil
}

// aggregate applies the fixed weighting and clamps to [0, 100].
func aggregate(s *domain.FraudScore) int {
	total := s.PriceAnomalyScore*weightPriceAnomaly +
		s.DocumentForgeryScore*weightDocumentForgery +
		float64(s.Findings.DuplicateSaleInstances)*weightDuplicateSale +
		float64(s.Findings.ForgedDocumentCount)*weightForgedDocument +
		float64(s.Findings.IdentityTheftAlerts)*weightIdentityTheft +
		float64(s.Findings.MultipleClaimDisputes)*weightMultipleClaims

	if s.Findings.GPAHolderConcern {
		total += weightGPAConcern
	}

	score := int(math.Floor(total))
	if score > 100 {
		score = 100
	}
	return score
}

// flagsFor derives the categorical fraud flag list from raw findings.
func flagsFor(f domain.FraudFindings) []string {
	flags := []string{}
	if f.DuplicateSaleInstances > 0 {
		flags = append(flags, domain.FlagDuplicateSale)
	}
	if f.ForgedDocumentCount > 0 {
		flags = append(flags, domain.FlagForgedDocument)
	}
	if f.IdentityTheftAlerts > 0 {
		flags = append(flags, domain.FlagIdentityTheft)
	}
	if f.MultipleClaimDisputes > 0 {
		flags = append(flags, domain.FlagMultipleClaims)
	}
	if f.GPAHolderConcern {
		flags = append(flags, domain.FlagGPAHolderConcern)
	}
	return flags
}
