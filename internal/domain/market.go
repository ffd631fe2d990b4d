package domain

import (
	"fmt"
	"time"
)

// MonthYearLayout is the time layout for market intelligence keys.
const MonthYearLayout = "2006-01"

// MarketIntelligence is a city-level snapshot shared by every audit run
// in the same (city, month). Keyed by city + month-year, not by property.
type MarketIntelligence struct {
	ID                      string    `json:"id"`
	City                    string    `json:"city"`
	Locality                string    `json:"locality"`
	MonthYear               string    `json:"monthYear"`
	AvgPropertyPrice        float64   `json:"avgPropertyPrice"`
	PricePerSqft            float64   `json:"pricePerSqft"`
	TransactionVolume       int       `json:"transactionVolume"`
	FraudRatePct            float64   `json:"fraudRatePct"`
	DeveloperDefaultRatePct float64   `json:"developerDefaultRatePct"`
	ProjectStallRatePct     float64   `json:"projectStallRatePct"`
	AvgProjectDelayMonths   float64   `json:"avgProjectDelayMonths"`
	DemandSupplyRatio       float64   `json:"demandSupplyRatio"`
	RentalYieldPct          float64   `json:"rentalYieldPct"`
	InvestmentScore         int       `json:"investmentScore"`
	RegulatoryChanges       []string  `json:"regulatoryChanges"`
	CreatedAt               time.Time `json:"createdAt"`
}

// MarketKey builds the shared lookup key for a city/month snapshot.
func MarketKey(city, monthYear string) string {
	return fmt.Sprintf("%s-%s", city, monthYear)
}
