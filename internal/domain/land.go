package domain

import (
	"math"
	"time"
)

// LandType is the revenue classification of the land under a property.
type LandType string

const (
	LandTypeAgricultural LandType = "agricultural"
	LandTypeResidential  LandType = "residential"
	LandTypeCommercial   LandType = "commercial"
)

// MutationStatus tracks whether ownership mutation has been recorded.
type MutationStatus string

const (
	MutationCompleted MutationStatus = "completed"
	MutationPending   MutationStatus = "pending"
)

// SqftPerAcre is the standard square-feet-to-acre conversion constant.
const SqftPerAcre = 43560.0

// LandRecord is the synthesized revenue record for a property.
// Invariant: ConversionCertificateNumber is non-empty iff
// ConversionCertificateRequired is true.
type LandRecord struct {
	ID                            string         `json:"id"`
	PropertyID                    string         `json:"propertyId"`
	State                         string         `json:"state"`
	District                      string         `json:"district"`
	Village                       string         `json:"village"`
	SurveyNumber                  string         `json:"surveyNumber"`
	PlotNumber                    string         `json:"plotNumber"`
	PattaNumber                   string         `json:"pattaNumber"`
	AreaSqft                      float64        `json:"areaInSqft"`
	AreaAcres                     float64        `json:"areaInAcres"`
	LandType                      LandType       `json:"landType"`
	RecordStatus                  string         `json:"recordStatus"`
	OwnerName                     string         `json:"ownerName"`
	MutationStatus                MutationStatus `json:"mutationStatus"`
	ConversionCertificateRequired bool           `json:"conversionCertificateRequired"`
	ConversionCertificateNumber   string         `json:"conversionCertificateNumber,omitempty"`
	RecordsUpToDate               bool           `json:"recordsUpToDate"`
	LastMutationDate              time.Time      `json:"lastMutationDate"`
	SourcePortal                  string         `json:"sourcePortal"`
	CreatedAt                     time.Time      `json:"createdAt"`
	UpdatedAt                     time.Time      `json:"updatedAt"`
}

// LandTypeFor maps a submitted property type to a land classification.
func LandTypeFor(pt PropertyType) LandType {
	switch pt {
	case PropertyTypeLand:
		return LandTypeAgricultural
	case PropertyTypeCommercial:
		return LandTypeCommercial
	default:
		return LandTypeResidential
	}
}

// AcresFromSqft converts square feet to acres, rounded to 2 decimals.
func AcresFromSqft(sqft float64) float64 {
	return math.Round(sqft/SqftPerAcre*100) / 100
}
