package domain

import (
	"time"
)

// Court identifies the forum a case is filed in.
type Court string

const (
	CourtDistrict Court = "district_court"
	CourtHigh     Court = "high_court"
)

// CaseType classifies a property litigation case.
type CaseType string

const (
	CaseTypeTitleDispute        CaseType = "title_dispute"
	CaseTypeBoundaryDispute     CaseType = "boundary_dispute"
	CaseTypeEncroachment        CaseType = "encroachment"
	CaseTypeInheritance         CaseType = "inheritance"
	CaseTypeMortgageRecovery    CaseType = "mortgage_recovery"
	CaseTypeEviction            CaseType = "eviction"
	CaseTypePropertyTaxRecovery CaseType = "property_tax_recovery"
	CaseTypePropertyDispute     CaseType = "property_dispute"
)

// CaseStatus is the procedural stage of a case.
type CaseStatus string

const (
	CaseStatusPending  CaseStatus = "pending"
	CaseStatusDisposed CaseStatus = "disposed"
	CaseStatusAppealed CaseStatus = "appealed"
)

// RiskLevel is a categorical severity used for litigation and alerts.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// LitigationCase is a court case linked to a property.
// RiskLevel is assigned independently of case type and status; it is
// stored categorical data, not a derived field.
type LitigationCase struct {
	ID              string     `json:"id"`
	CaseNumber      string     `json:"caseNumber"`
	Court           Court      `json:"court"`
	State           string     `json:"state"`
	PropertyAddress string     `json:"propertyAddress"`
	PropertyID      string     `json:"propertyId"`
	OwnerName       string     `json:"ownerName"`
	Plaintiff       string     `json:"plaintiff"`
	Defendant       string     `json:"defendant"`
	CaseType        CaseType   `json:"caseType"`
	FilingDate      time.Time  `json:"filingDate"`
	Status          CaseStatus `json:"status"`
	Judgment        string     `json:"judgment,omitempty"`
	JudgmentDate    *time.Time `json:"judgmentDate,omitempty"`
	Description     string     `json:"description"`
	RiskLevel       RiskLevel  `json:"riskLevel"`
	CreatedAt       time.Time  `json:"createdAt"`
}
