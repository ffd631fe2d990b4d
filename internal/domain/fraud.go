package domain

import (
	"time"
)

// Fraud flag tags derived from cross-reference signals.
const (
	FlagDuplicateSale    = "duplicate_sale"
	FlagForgedDocument   = "forged_document"
	FlagIdentityTheft    = "identity_theft"
	FlagMultipleClaims   = "multiple_claims"
	FlagGPAHolderConcern = "gpa_holder_concern"
)

// FraudReviewThreshold is the overall score above which the aggregator
// recommends manual review. The policy is binary; richer bucketing is a
// presentation concern (see RiskLevelForScore).
const FraudReviewThreshold = 50

// Aggregator recommendation strings.
const (
	RecommendationHighRisk = "High risk - Manual review required"
	RecommendationLowRisk  = "Low risk - Proceed with caution"
)

// FraudFindings holds the raw cross-reference counters behind a score.
type FraudFindings struct {
	DuplicateSaleInstances int            `json:"duplicateSaleInstances"`
	ForgedDocumentCount    int            `json:"forgedDocumentCount"`
	IdentityTheftAlerts    int            `json:"identityTheftAlerts"`
	MultipleClaimDisputes  int            `json:"multipleClaimDisputes"`
	GPAHolderConcern       bool           `json:"gpaHolderConcern"`
	MortgageStatus         MortgageStatus `json:"mortgageStatus"`
}

// FraudScore is the persisted output of a fraud risk analysis.
type FraudScore struct {
	ID         string `json:"id"`
	PropertyID string `json:"propertyId"`
	OwnerName  string `json:"ownerName"`

	// Synthetic sub-scores, each with its own fixed upper bound.
	PriceAnomalyScore      float64 `json:"priceAnomalyScore"`
	DocumentForgeryScore   float64 `json:"documentForgeryScore"`
	SellerBehaviorScore    float64 `json:"sellerBehaviorScore"`
	TitleFraudScore        float64 `json:"titleFraudScore"`
	DoubleSaleRiskScore    float64 `json:"doubleSaleRiskScore"`
	BenamiTransactionScore float64 `json:"benamiTransactionScore"`

	Findings          FraudFindings `json:"detailedFindings"`
	FraudFlags        []string      `json:"fraudFlags"`
	OverallFraudScore int           `json:"overallFraudScore"`
	Recommendation    string        `json:"recommendation"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RiskLevelForScore buckets an overall fraud score for display.
// Distinct from the aggregator's binary recommendation policy.
func RiskLevelForScore(score int) string {
	switch {
	case score > 60:
		return "high"
	case score >= 30:
		return "medium"
	default:
		return "low"
	}
}
