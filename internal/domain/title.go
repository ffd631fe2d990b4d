package domain

import (
	"time"
)

// TitleStatus is the outcome of title verification.
type TitleStatus string

const (
	TitleStatusClean    TitleStatus = "clean"
	TitleStatusFlagged  TitleStatus = "flagged"
	TitleStatusDisputed TitleStatus = "disputed"
	TitleStatusUnclear  TitleStatus = "unclear"
)

// MortgageStatus reflects registered charges against the title.
type MortgageStatus string

const (
	MortgageStatusClear     MortgageStatus = "clear"
	MortgageStatusMortgaged MortgageStatus = "mortgaged"
	MortgageStatusReleased  MortgageStatus = "released"
)

// OwnershipChainEntry is one historical transfer in the title chain.
type OwnershipChainEntry struct {
	OwnerName string `json:"ownerName"`
	Period    string `json:"period"`
	Document  string `json:"document"`
}

// TitleVerification is the synthesized title check for a property.
// Invariant: TitleChainComplete=false implies RedFlags is non-empty.
type TitleVerification struct {
	ID                 string                `json:"id"`
	PropertyID         string                `json:"propertyId"`
	OwnerName          string                `json:"ownerName"`
	CurrentSalePrice   float64               `json:"currentSalePrice,omitempty"`
	Status             TitleStatus           `json:"verificationStatus"`
	TitleChainComplete bool                  `json:"titleChainComplete"`
	YearsVerified      int                   `json:"yearsVerified"`
	MortgageStatus     MortgageStatus        `json:"mortgageStatus"`
	TaxClearance       bool                  `json:"taxClearance"`
	LitigationFound    bool                  `json:"litigationFound"`
	OwnershipChain     []OwnershipChainEntry `json:"ownershipChain"`
	RiskScore          int                   `json:"riskScore"`
	RedFlags           []string              `json:"redFlags"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
}
