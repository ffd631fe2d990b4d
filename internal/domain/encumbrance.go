package domain

import (
	"time"
)

// ECStatus is the encumbrance certificate form issued for a property.
// Form 15 lists encumbrances; Form 16 certifies a clear title window.
type ECStatus string

const (
	ECStatusForm15 ECStatus = "form_15"
	ECStatusForm16 ECStatus = "form_16"
)

// EncumbranceRecord is a single financial claim listed on a Form 15 EC.
type EncumbranceRecord struct {
	Type   string    `json:"type"`
	Amount float64   `json:"amount"`
	Lender string    `json:"lender"`
	Date   time.Time `json:"date"`
}

// EncumbranceCertificate is the synthesized EC for a property.
// Invariant: Status is form_15 iff Encumbrances is non-empty.
type EncumbranceCertificate struct {
	ID                 string              `json:"id"`
	PropertyID         string              `json:"propertyId"`
	State              string              `json:"state"`
	District           string              `json:"district"`
	SubRegistrarOffice string              `json:"subRegistrarOffice"`
	SurveyNumber       string              `json:"surveyNumber"`
	OwnerName          string              `json:"ownerName"`
	Status             ECStatus            `json:"ecStatus"`
	Encumbrances       []EncumbranceRecord `json:"encumbrances"`
	VerificationDate   time.Time           `json:"verificationDate"`
	ExpiryDate         time.Time           `json:"expiryDate"`
	FraudRiskScore     int                 `json:"fraudRiskScore"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}
