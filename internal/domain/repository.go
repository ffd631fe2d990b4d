package domain

import (
	"context"
	"time"
)

// Repository defines the interface for data persistence.
// Reads for a missing record return a not-found error from the
// implementation; list reads return empty slices for mere absence.
type Repository interface {
	// Property records
	SaveProperty(ctx context.Context, p *Property) error
	GetProperty(ctx context.Context, propertyID string) (*Property, error)

	// SaveAuditBundle persists every per-property record of a bundle
	// (property, EC, title, fraud score, litigation cases, land record)
	// in a single transaction. Re-audits overwrite by property id.
	SaveAuditBundle(ctx context.Context, b *AuditBundle) error

	// Per-property derived records
	GetEncumbranceCertificate(ctx context.Context, propertyID string) (*EncumbranceCertificate, error)
	GetTitleVerification(ctx context.Context, propertyID string) (*TitleVerification, error)
	GetFraudScore(ctx context.Context, propertyID string) (*FraudScore, error)
	GetLandRecord(ctx context.Context, propertyID string) (*LandRecord, error)

	// Litigation
	SaveLitigationCase(ctx context.Context, c *LitigationCase) error
	GetLitigationCase(ctx context.Context, caseNumber string) (*LitigationCase, error)
	ListLitigationByProperty(ctx context.Context, propertyID string) ([]*LitigationCase, error)
	ListLitigationByOwner(ctx context.Context, owner string) ([]*LitigationCase, error)
	ListLitigationByState(ctx context.Context, state string) ([]*LitigationCase, error)
	ListHighRiskLitigation(ctx context.Context) ([]*LitigationCase, error)
	CountLitigationByPropertyOrAddress(ctx context.Context, propertyID, address string) (int, error)
	CountTitleDisputesByParty(ctx context.Context, owner string) (int, error)

	// Document verifications
	SaveDocumentVerification(ctx context.Context, d *DocumentVerification) error
	ListDocumentVerifications(ctx context.Context, propertyID string) ([]*DocumentVerification, error)
	CountSuspectDocuments(ctx context.Context, propertyID string) (int, error)

	// RERA registry
	SaveReraProject(ctx context.Context, p *ReraProject) error
	GetReraProject(ctx context.Context, registrationNumber string) (*ReraProject, error)
	ListReraProjectsByState(ctx context.Context, state string) ([]*ReraProject, error)

	// Developer audits
	SaveDeveloperAudit(ctx context.Context, a *DeveloperAudit) error
	GetDeveloperAudit(ctx context.Context, developerID string) (*DeveloperAudit, error)

	// Market intelligence. Upsert is insert-or-ignore on (city, monthYear)
	// and returns the stored row, so a lost race still yields the single
	// canonical snapshot for the window.
	UpsertMarketIntelligence(ctx context.Context, m *MarketIntelligence) (*MarketIntelligence, error)
	GetMarketIntelligence(ctx context.Context, city, monthYear string) (*MarketIntelligence, error)

	// Alert rules
	SaveAlertRule(ctx context.Context, r *AlertRule) error
	ListAlertRules(ctx context.Context) ([]*AlertRule, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
