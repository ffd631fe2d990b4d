// Package domain defines the core interfaces and types for PropClear.
package domain

import (
	"time"
)

// PropertyType is the caller-submitted classification of a property.
type PropertyType string

const (
	PropertyTypeResidential PropertyType = "RESIDENTIAL"
	PropertyTypeCommercial  PropertyType = "COMMERCIAL"
	PropertyTypeLand        PropertyType = "LAND"
	PropertyTypeApartment   PropertyType = "APARTMENT"
)

// DefaultOwnerName is used when a submission carries no owner name.
const DefaultOwnerName = "Property Owner"

// DefaultEstimatedValue anchors market synthesis when no value is submitted.
const DefaultEstimatedValue = 5_000_000

// DefaultAreaSqft is assumed when a submission carries no area.
const DefaultAreaSqft = 1_000

// PropertySubmission is the caller's input to a comprehensive audit.
type PropertySubmission struct {
	Name            string       `json:"propertyName"`
	Address         string       `json:"address"`
	City            string       `json:"city"`
	State           string       `json:"state"`
	Pincode         string       `json:"pincode,omitempty"`
	PropertyType    PropertyType `json:"propertyType"`
	TransactionType string       `json:"transactionType"`
	EstimatedValue  float64      `json:"estimatedValue,omitempty"`
	AreaSqft        float64      `json:"area,omitempty"`
	OwnerName       string       `json:"ownerName,omitempty"`
	Description     string       `json:"description,omitempty"`
	UserID          string       `json:"userId"`
}

// Normalize fills submission defaults in place.
func (s *PropertySubmission) Normalize() {
	if s.OwnerName == "" {
		s.OwnerName = DefaultOwnerName
	}
	if s.EstimatedValue <= 0 {
		s.EstimatedValue = DefaultEstimatedValue
	}
	if s.AreaSqft <= 0 {
		s.AreaSqft = DefaultAreaSqft
	}
}

// Property is the stored property record created at submission time.
type Property struct {
	ID              string       `json:"id"`
	Name            string       `json:"propertyName"`
	Address         string       `json:"address"`
	City            string       `json:"city"`
	State           string       `json:"state"`
	Pincode         string       `json:"pincode,omitempty"`
	PropertyType    PropertyType `json:"propertyType"`
	TransactionType string       `json:"transactionType"`
	EstimatedValue  float64      `json:"estimatedValue"`
	AreaSqft        float64      `json:"areaSqft"`
	OwnerName       string       `json:"ownerName"`
	Description     string       `json:"description,omitempty"`
	UserID          string       `json:"userId"`
	CreatedAt       time.Time    `json:"createdAt"`
}
