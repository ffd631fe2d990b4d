// Package audit implements the comprehensive property audit pipeline.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/propclear/propclear/internal/domain"
	"github.com/propclear/propclear/internal/fraud"
	"github.com/propclear/propclear/internal/market"
	"github.com/propclear/propclear/internal/signals"
)

const tracerName = "propclear-audit"

// sourcePortals are the regional registry portals land records are
// attributed to.
var sourcePortals = []string{
	"Maharashtra Bhulekh",
	"Karnataka Bhoomi",
	"Tamil Nadu eServices",
	"Telangana Dharani",
	"UP Bhulekh",
	"Delhi DLRC",
}

// caseTypes and courts drawn from when minting a synthetic case.
var (
	caseTypes = []domain.CaseType{
		domain.CaseTypeTitleDispute,
		domain.CaseTypeBoundaryDispute,
		domain.CaseTypeEncroachment,
		domain.CaseTypeInheritance,
		domain.CaseTypeMortgageRecovery,
		domain.CaseTypeEviction,
		domain.CaseTypePropertyTaxRecovery,
		domain.CaseTypePropertyDispute,
	}
	courts       = []domain.Court{domain.CourtDistrict, domain.CourtHigh}
	caseStatuses = []domain.CaseStatus{domain.CaseStatusPending, domain.CaseStatusDisposed, domain.CaseStatusAppealed}
	riskLevels   = []domain.RiskLevel{domain.RiskLow, domain.RiskMedium, domain.RiskHigh, domain.RiskCritical}
)

// Store is the slice of the repository the orchestrator writes through.
type Store interface {
	SaveAuditBundle(ctx context.Context, b *domain.AuditBundle) error
}

// Orchestrator runs the full audit: it synthesizes the correlated
// records, persists them in one transaction, resolves the shared
// market snapshot and publishes the completion event.
type Orchestrator struct {
	store    Store
	gen      *signals.Generator
	analyzer *fraud.Analyzer
	market   *market.Resolver
	bus      domain.EventBus
}

// NewOrchestrator creates an audit orchestrator. bus may be nil when
// eventing is disabled.
func NewOrchestrator(store Store, gen *signals.Generator, analyzer *fraud.Analyzer, resolver *market.Resolver, bus domain.EventBus) *Orchestrator {
	return &Orchestrator{
		store:    store,
		gen:      gen,
		analyzer: analyzer,
		market:   resolver,
		bus:      bus,
	}
}

// RunComprehensiveAudit audits a submitted property and returns the
// six-record bundle. Per-property writes are all-or-nothing; callers
// must not assume anything was persisted when an error is returned.
func (o *Orchestrator) RunComprehensiveAudit(ctx context.Context, propertyID string, sub *domain.PropertySubmission) (*domain.AuditBundle, error) {
	if propertyID == "" {
		return nil, fmt.Errorf("property id is required")
	}
	if sub == nil {
		return nil, fmt.Errorf("property submission is required")
	}
	sub.Normalize()

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "RunComprehensiveAudit",
		trace.WithAttributes(
			attribute.String("property.id", propertyID),
			attribute.String("property.city", sub.City),
			attribute.String("property.type", string(sub.PropertyType)),
		),
	)
	defer span.End()

	now := time.Now().UTC()
	surveyNumber := "SN-" + o.gen.Token(6)

	property := &domain.Property{
		ID:              propertyID,
		Name:            sub.Name,
		Address:         sub.Address,
		City:            sub.City,
		State:           sub.State,
		Pincode:         sub.Pincode,
		PropertyType:    sub.PropertyType,
		TransactionType: sub.TransactionType,
		EstimatedValue:  sub.EstimatedValue,
		AreaSqft:        sub.AreaSqft,
		OwnerName:       sub.OwnerName,
		Description:     sub.Description,
		UserID:          sub.UserID,
		CreatedAt:       now,
	}

	ec := o.synthesizeEncumbranceCertificate(property, surveyNumber, now)
	title := o.synthesizeTitleVerification(property, now)

	score, err := o.analyzer.Analyze(ctx, fraud.Input{
		PropertyID:     propertyID,
		OwnerName:      sub.OwnerName,
		Address:        sub.Address,
		MortgageStatus: title.MortgageStatus,
	})
	if err != nil {
		return nil, fmt.Errorf("fraud analysis failed: %w", err)
	}

	cases := []*domain.LitigationCase{}
	if o.gen.Chance(0.25) {
		cases = append(cases, o.mintLitigationCase(property, now))
	}

	land := o.synthesizeLandRecord(property, surveyNumber, now)

	bundle := &domain.AuditBundle{
		Property:               property,
		EncumbranceCertificate: ec,
		TitleVerification:      title,
		FraudScore:             score,
		LitigationCases:        cases,
		LandRecord:             land,
	}

	if err := o.store.SaveAuditBundle(ctx, bundle); err != nil {
		return nil, fmt.Errorf("failed to persist audit bundle: %w", err)
	}

	// The snapshot is shared across the city/month window, so it lives
	// outside the per-property transaction.
	intel, err := o.market.Resolve(ctx, sub.City, sub.EstimatedValue)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve market intelligence: %w", err)
	}
	bundle.MarketIntelligence = intel

	o.publishCompleted(ctx, bundle)

	span.SetAttributes(
		attribute.Int("fraud.score", score.OverallFraudScore),
		attribute.Int("litigation.count", len(cases)),
	)

	return bundle, nil
}

// synthesizeEncumbranceCertificate draws encumbrance presence (~30%)
// and builds the certificate. Status is form_15 iff the list is
// non-empty.
func (o *Orchestrator) synthesizeEncumbranceCertificate(p *domain.Property, surveyNumber string, now time.Time) *domain.EncumbranceCertificate {
	encumbrances := []domain.EncumbranceRecord{}
	status := domain.ECStatusForm16
	riskScore := o.gen.IntBetween(0, 20)

	if o.gen.Chance(0.30) {
		status = domain.ECStatusForm15
		riskScore = o.gen.IntBetween(25, 60)
		encumbrances = append(encumbrances, domain.EncumbranceRecord{
			Type:   "mortgage",
			Amount: p.EstimatedValue * o.gen.FloatBetween(0.3, 0.7),
			Lender: "SBI Home Loans",
			Date:   now.AddDate(0, -o.gen.IntBetween(6, 48), 0),
		})
	}

	return &domain.EncumbranceCertificate{
		ID:                 uuid.New().String(),
		PropertyID:         p.ID,
		State:              p.State,
		District:           p.City,
		SubRegistrarOffice: p.City + " Sub-Registrar Office",
		SurveyNumber:       surveyNumber,
		OwnerName:          p.OwnerName,
		Status:             status,
		Encumbrances:       encumbrances,
		VerificationDate:   now,
		ExpiryDate:         now.AddDate(1, 0, 0),
		FraudRiskScore:     riskScore,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// synthesizeTitleVerification draws cleanliness (~80%) and builds the
// verification with a 3-entry ownership chain. Red flags appear only
// when the chain is incomplete.
func (o *Orchestrator) synthesizeTitleVerification(p *domain.Property, now time.Time) *domain.TitleVerification {
	clean := o.gen.Chance(0.80)
	yearsVerified := o.gen.IntBetween(10, 30)

	status := domain.TitleStatusClean
	redFlags := []string{}
	riskScore := o.gen.IntBetween(0, 25)
	mortgage := domain.MortgageStatusClear

	if !clean {
		status = []domain.TitleStatus{
			domain.TitleStatusFlagged,
			domain.TitleStatusDisputed,
			domain.TitleStatusUnclear,
		}[o.gen.Intn(3)]
		redFlags = []string{"Incomplete documentation", "Pending mutation"}
		riskScore = o.gen.IntBetween(40, 90)
		mortgage = []domain.MortgageStatus{
			domain.MortgageStatusMortgaged,
			domain.MortgageStatusReleased,
		}[o.gen.Intn(2)]
	}

	chain := o.buildOwnershipChain(p.OwnerName, yearsVerified, now)

	return &domain.TitleVerification{
		ID:                 uuid.New().String(),
		PropertyID:         p.ID,
		OwnerName:          p.OwnerName,
		CurrentSalePrice:   p.EstimatedValue,
		Status:             status,
		TitleChainComplete: clean,
		YearsVerified:      yearsVerified,
		MortgageStatus:     mortgage,
		TaxClearance:       clean,
		LitigationFound:    !clean,
		OwnershipChain:     chain,
		RiskScore:          riskScore,
		RedFlags:           redFlags,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// buildOwnershipChain produces the 3-entry synthetic history spanning
// yearsVerified years, newest first.
func (o *Orchestrator) buildOwnershipChain(currentOwner string, yearsVerified int, now time.Time) []domain.OwnershipChainEntry {
	previousOwners := []string{"Suresh Patil", "Lakshmi Devi"}
	documents := []string{"Sale Deed", "Gift Deed", "Partition Deed", "Inheritance Certificate"}

	segment := yearsVerified / 3
	year := now.Year()

	chain := make([]domain.OwnershipChainEntry, 0, 3)
	chain = append(chain, domain.OwnershipChainEntry{
		OwnerName: currentOwner,
		Period:    fmt.Sprintf("%d-present", year-segment),
		Document:  documents[o.gen.Intn(len(documents))],
	})
	for i, owner := range previousOwners {
		from := year - segment*(i+2)
		to := year - segment*(i+1)
		chain = append(chain, domain.OwnershipChainEntry{
			OwnerName: owner,
			Period:    fmt.Sprintf("%d-%d", from, to),
			Document:  documents[o.gen.Intn(len(documents))],
		})
	}

	return chain
}

// mintLitigationCase synthesizes one new case for this property.
// Risk level is drawn independently of type and status.
func (o *Orchestrator) mintLitigationCase(p *domain.Property, now time.Time) *domain.LitigationCase {
	caseNumber := fmt.Sprintf("CASE-%s-%06d", now.Format("20060102"), o.gen.Intn(1_000_000))
	filingDate := now.AddDate(0, -o.gen.IntBetween(1, 36), 0)

	return &domain.LitigationCase{
		ID:              uuid.New().String(),
		CaseNumber:      caseNumber,
		Court:           courts[o.gen.Intn(len(courts))],
		State:           p.State,
		PropertyAddress: p.Address,
		PropertyID:      p.ID,
		OwnerName:       p.OwnerName,
		Plaintiff:       "State Revenue Department",
		Defendant:       p.OwnerName,
		CaseType:        caseTypes[o.gen.Intn(len(caseTypes))],
		FilingDate:      filingDate,
		Status:          caseStatuses[o.gen.Intn(len(caseStatuses))],
		Description:     "Synthetic case minted during comprehensive audit",
		RiskLevel:       riskLevels[o.gen.Intn(len(riskLevels))],
		CreatedAt:       now,
	}
}

// synthesizeLandRecord derives the revenue record from the submission.
// Conversion certificate fields are populated only for LAND parcels.
func (o *Orchestrator) synthesizeLandRecord(p *domain.Property, surveyNumber string, now time.Time) *domain.LandRecord {
	landType := domain.LandTypeFor(p.PropertyType)

	lr := &domain.LandRecord{
		ID:               uuid.New().String(),
		PropertyID:       p.ID,
		State:            p.State,
		District:         p.City,
		Village:          p.City,
		SurveyNumber:     surveyNumber,
		PlotNumber:       fmt.Sprintf("P-%d", o.gen.IntBetween(1, 999)),
		PattaNumber:      fmt.Sprintf("PT-%d", o.gen.IntBetween(10000, 99999)),
		AreaSqft:         p.AreaSqft,
		AreaAcres:        domain.AcresFromSqft(p.AreaSqft),
		LandType:         landType,
		RecordStatus:     "verified",
		OwnerName:        p.OwnerName,
		MutationStatus:   domain.MutationCompleted,
		RecordsUpToDate:  true,
		LastMutationDate: now.AddDate(0, -o.gen.IntBetween(1, 24), 0),
		SourcePortal:     sourcePortals[o.gen.Intn(len(sourcePortals))],
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if p.PropertyType == domain.PropertyTypeLand {
		lr.ConversionCertificateRequired = true
		lr.ConversionCertificateNumber = "CC-" + o.gen.Token(8)
	}

	return lr
}

// publishCompleted emits the audit summary. Publishing is best effort;
// a bus outage never fails a committed audit.
func (o *Orchestrator) publishCompleted(ctx context.Context, bundle *domain.AuditBundle) {
	if o.bus == nil {
		return
	}

	summary := bundle.Summary()
	payload, err := json.Marshal(summary)
	if err != nil {
		slog.Error("failed to marshal audit summary", "property_id", summary.PropertyID, "error", err)
		return
	}

	if err := o.bus.Publish(ctx, domain.TopicAuditCompleted, payload); err != nil {
		slog.Warn("failed to publish audit completed event",
			"property_id", summary.PropertyID,
			"error", err,
		)
	}
}
