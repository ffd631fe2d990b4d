package domain

import (
	"time"
)

// ReraStatus is the registration state of a RERA project.
type ReraStatus string

const (
	ReraStatusRegistered ReraStatus = "registered"
	ReraStatusExpired    ReraStatus = "expired"
	ReraStatusRevoked    ReraStatus = "revoked"
	ReraStatusLapsed     ReraStatus = "lapsed"
)

// ReraProject is a mock RERA project registration record.
type ReraProject struct {
	ID                 string     `json:"id"`
	RegistrationNumber string     `json:"registrationNumber"`
	ProjectName        string     `json:"projectName"`
	DeveloperID        string     `json:"developerId"`
	DeveloperName      string     `json:"developerName"`
	City               string     `json:"city"`
	State              string     `json:"state"`
	Status             ReraStatus `json:"status"`
	ApprovedDate       time.Time  `json:"approvedDate"`
	ExpiryDate         time.Time  `json:"expiryDate"`
	TotalUnits         int        `json:"totalUnits"`
	ComplaintCount     int        `json:"complaintCount"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// DeveloperAudit is a synthesized track-record audit for a developer.
type DeveloperAudit struct {
	ID                string    `json:"id"`
	DeveloperID       string    `json:"developerId"`
	DeveloperName     string    `json:"developerName"`
	ProjectsTotal     int       `json:"projectsTotal"`
	ProjectsCompleted int       `json:"projectsCompleted"`
	ProjectsDelayed   int       `json:"projectsDelayed"`
	ProjectsStalled   int       `json:"projectsStalled"`
	DefaultRatePct    float64   `json:"defaultRatePct"`
	AvgDelayMonths    float64   `json:"avgDelayMonths"`
	LitigationCount   int       `json:"litigationCount"`
	RiskLevel         RiskLevel `json:"riskLevel"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ForgeryRisk is the suspicion level attached to a verified document.
type ForgeryRisk string

const (
	ForgeryRiskLow    ForgeryRisk = "low"
	ForgeryRiskMedium ForgeryRisk = "medium"
	ForgeryRiskHigh   ForgeryRisk = "high"
)

// DocumentVerification is a stored document authenticity check.
// Records with ForgeryRisk above low feed the forged-document
// cross-reference during fraud analysis.
type DocumentVerification struct {
	ID             string      `json:"id"`
	PropertyID     string      `json:"propertyId"`
	DocumentType   string      `json:"documentType"`
	DocumentNumber string      `json:"documentNumber"`
	Authentic      bool        `json:"authentic"`
	ForgeryRisk    ForgeryRisk `json:"forgeryRisk"`
	Notes          string      `json:"notes,omitempty"`
	VerifiedAt     time.Time   `json:"verifiedAt"`
}
