// Package fraud implements fraud risk analysis for property audits.
package fraud

import (
	"context"
	"fmt"

	"github.com/propclear/propclear/internal/domain"
)

// Lookups is the slice of the repository the cross-referencer reads.
type Lookups interface {
	ListLitigationByProperty(ctx context.Context, propertyID string) ([]*domain.LitigationCase, error)
	CountSuspectDocuments(ctx context.Context, propertyID string) (int, error)
	CountTitleDisputesByParty(ctx context.Context, owner string) (int, error)
	CountLitigationByPropertyOrAddress(ctx context.Context, propertyID, address string) (int, error)
}

// CrossReferencer runs read-only checks against stored records to
// ground the synthetic signals in real lookups.
type CrossReferencer struct {
	lookups Lookups
}

// NewCrossReferencer creates a cross-referencer over repository lookups.
func NewCrossReferencer(lookups Lookups) *CrossReferencer {
	return &CrossReferencer{lookups: lookups}
}

// Check populates fraud findings from stored litigation and document
// records at call time.
func (c *CrossReferencer) Check(ctx context.Context, propertyID, ownerName, address string) (domain.FraudFindings, error) {
	var f domain.FraudFindings

	cases, err := c.lookups.ListLitigationByProperty(ctx, propertyID)
	if err != nil {
		return f, fmt.Errorf("failed to list litigation: %w", err)
	}
	// A title dispute on record reads as a possible duplicate sale.
	for _, lc := range cases {
		if lc.CaseType == domain.CaseTypeTitleDispute {
			f.DuplicateSaleInstances = 1
			break
		}
	}

	forged, err := c.lookups.CountSuspectDocuments(ctx, propertyID)
	if err != nil {
		return f, fmt.Errorf("failed to count suspect documents: %w", err)
	}
	f.ForgedDocumentCount = forged

	disputes, err := c.lookups.CountTitleDisputesByParty(ctx, ownerName)
	if err != nil {
		return f, fmt.Errorf("failed to count title disputes: %w", err)
	}
	// One dispute is ordinary litigation; the same name in several
	// points at impersonation.
	if disputes > 1 {
		f.IdentityTheftAlerts = 1
	}

	claims, err := c.lookups.CountLitigationByPropertyOrAddress(ctx, propertyID, address)
	if err != nil {
		return f, fmt.Errorf("failed to count claims: %w", err)
	}
	f.MultipleClaimDisputes = claims

	return f, nil
}
