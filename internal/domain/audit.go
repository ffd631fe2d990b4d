package domain

import (
	"time"
)

// AuditBundle is the six-record output of a comprehensive audit.
// Everything except MarketIntelligence is owned by the audit run that
// produced it; the market snapshot is shared across the city/month.
type AuditBundle struct {
	Property               *Property               `json:"property"`
	EncumbranceCertificate *EncumbranceCertificate `json:"encumbranceCertificate"`
	TitleVerification      *TitleVerification      `json:"titleVerification"`
	FraudScore             *FraudScore             `json:"fraudScore"`
	LitigationCases        []*LitigationCase       `json:"litigationCases"`
	LandRecord             *LandRecord             `json:"landRecord"`
	MarketIntelligence     *MarketIntelligence     `json:"marketIntelligence"`
}

// AuditSummary is the flattened event payload published after an audit
// completes. Alert rules evaluate against these fields.
type AuditSummary struct {
	PropertyID         string      `json:"propertyId"`
	City               string      `json:"city"`
	State              string      `json:"state"`
	OwnerName          string      `json:"ownerName"`
	OverallFraudScore  int         `json:"overallFraudScore"`
	RiskLevel          string      `json:"riskLevel"`
	ECStatus           ECStatus    `json:"ecStatus"`
	TitleStatus        TitleStatus `json:"titleStatus"`
	LandType           LandType    `json:"landType"`
	LitigationCount    int         `json:"litigationCount"`
	MarketFraudRatePct float64     `json:"marketFraudRatePct"`
	CompletedAt        time.Time   `json:"completedAt"`
}

// Summary flattens a bundle into its event payload.
func (b *AuditBundle) Summary() AuditSummary {
	return AuditSummary{
		PropertyID:         b.Property.ID,
		City:               b.Property.City,
		State:              b.Property.State,
		OwnerName:          b.Property.OwnerName,
		OverallFraudScore:  b.FraudScore.OverallFraudScore,
		RiskLevel:          RiskLevelForScore(b.FraudScore.OverallFraudScore),
		ECStatus:           b.EncumbranceCertificate.Status,
		TitleStatus:        b.TitleVerification.Status,
		LandType:           b.LandRecord.LandType,
		LitigationCount:    len(b.LitigationCases),
		MarketFraudRatePct: b.MarketIntelligence.FraudRatePct,
		CompletedAt:        time.Now().UTC(),
	}
}

// AlertRule is an operator-defined CEL expression evaluated against
// completed audit summaries by the async worker.
type AlertRule struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Expression  string    `json:"expression"`
	Severity    RiskLevel `json:"severity"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Alert is emitted when an audit summary matches an alert rule.
type Alert struct {
	ID          string    `json:"id"`
	RuleID      string    `json:"ruleId"`
	RuleName    string    `json:"ruleName"`
	Severity    RiskLevel `json:"severity"`
	PropertyID  string    `json:"propertyId"`
	City        string    `json:"city"`
	FraudScore  int       `json:"fraudScore"`
	TriggeredAt time.Time `json:"triggeredAt"`
}
