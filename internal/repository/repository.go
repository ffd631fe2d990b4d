// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/propclear/propclear/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx so bundle writes can
// share the single-record insert helpers.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveProperty stores or overwrites a property record.
func (r *SQLRepository) SaveProperty(ctx context.Context, p *domain.Property) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("%w: property id is required", ErrInvalidInput)
	}
	return r.insertProperty(ctx, r.db, p)
}

func (r *SQLRepository) insertProperty(ctx context.Context, e execer, p *domain.Property) error {
	query := `
		INSERT INTO properties (
			id, name, address, city, state, pincode, property_type,
			transaction_type, estimated_value, area_sqft, owner_name,
			description, user_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			city = excluded.city,
			state = excluded.state,
			pincode = excluded.pincode,
			property_type = excluded.property_type,
			transaction_type = excluded.transaction_type,
			estimated_value = excluded.estimated_value,
			area_sqft = excluded.area_sqft,
			owner_name = excluded.owner_name,
			description = excluded.description
	`

	_, err := e.ExecContext(ctx, r.rebind(query),
		p.ID, p.Name, p.Address, p.City, p.State, p.Pincode,
		string(p.PropertyType), p.TransactionType, p.EstimatedValue,
		p.AreaSqft, p.OwnerName, p.Description, p.UserID, p.CreatedAt,
	)
	return err
}

// GetProperty retrieves a property record by id.
func (r *SQLRepository) GetProperty(ctx context.Context, propertyID string) (*domain.Property, error) {
	query := `
		SELECT id, name, address, city, state, pincode, property_type,
			   transaction_type, estimated_value, area_sqft, owner_name,
			   description, user_id, created_at
		FROM properties
		WHERE id = ?
	`

	var p domain.Property
	var propertyType string

	err := r.db.QueryRowContext(ctx, r.rebind(query), propertyID).Scan(
		&p.ID, &p.Name, &p.Address, &p.City, &p.State, &p.Pincode,
		&propertyType, &p.TransactionType, &p.EstimatedValue,
		&p.AreaSqft, &p.OwnerName, &p.Description, &p.UserID, &p.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.PropertyType = domain.PropertyType(propertyType)
	return &p, nil
}

// SaveAuditBundle persists all per-property records of a completed audit
// in one transaction. If any write fails, nothing is committed.
func (r *SQLRepository) SaveAuditBundle(ctx context.Context, b *domain.AuditBundle) error {
	if b == nil || b.Property == nil || b.Property.ID == "" {
		return fmt.Errorf("%w: bundle with property is required", ErrInvalidInput)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.insertProperty(ctx, tx, b.Property); err != nil {
		return fmt.Errorf("failed to save property: %w", err)
	}
	if err := r.insertEncumbranceCertificate(ctx, tx, b.EncumbranceCertificate); err != nil {
		return fmt.Errorf("failed to save encumbrance certificate: %w", err)
	}
	if err := r.insertTitleVerification(ctx, tx, b.TitleVerification); err != nil {
		return fmt.Errorf("failed to save title verification: %w", err)
	}
	if err := r.insertFraudScore(ctx, tx, b.FraudScore); err != nil {
		return fmt.Errorf("failed to save fraud score: %w", err)
	}
	for _, c := range b.LitigationCases {
		if err := r.insertLitigationCase(ctx, tx, c); err != nil {
			return fmt.Errorf("failed to save litigation case: %w", err)
		}
	}
	if err := r.insertLandRecord(ctx, tx, b.LandRecord); err != nil {
		return fmt.Errorf("failed to save land record: %w", err)
	}

	return tx.Commit()
}

func (r *SQLRepository) insertEncumbranceCertificate(ctx context.Context, e execer, ec *domain.EncumbranceCertificate) error {
	if ec == nil {
		return fmt.Errorf("%w: encumbrance certificate is required", ErrInvalidInput)
	}

	encumbrances, _ := json.Marshal(ec.Encumbrances)

	query := `
		INSERT INTO encumbrance_certificates (
			id, property_id, state, district, sub_registrar_office,
			survey_number, owner_name, status, encumbrances,
			verification_date, expiry_date, fraud_risk_score,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(property_id) DO UPDATE SET
			id = excluded.id,
			state = excluded.state,
			district = excluded.district,
			sub_registrar_office = excluded.sub_registrar_office,
			survey_number = excluded.survey_number,
			owner_name = excluded.owner_name,
			status = excluded.status,
			encumbrances = excluded.encumbrances,
			verification_date = excluded.verification_date,
			expiry_date = excluded.expiry_date,
			fraud_risk_score = excluded.fraud_risk_score,
			updated_at = excluded.updated_at
	`

	_, err := e.ExecContext(ctx, r.rebind(query),
		ec.ID, ec.PropertyID, ec.State, ec.District, ec.SubRegistrarOffice,
		ec.SurveyNumber, ec.OwnerName, string(ec.Status), string(encumbrances),
		ec.VerificationDate, ec.ExpiryDate, ec.FraudRiskScore,
		ec.CreatedAt, ec.UpdatedAt,
	)
	return err
}

// GetEncumbranceCertificate retrieves the EC for a property.
func (r *SQLRepository) GetEncumbranceCertificate(ctx context.Context, propertyID string) (*domain.EncumbranceCertificate, error) {
	query := `
		SELECT id, property_id, state, district, sub_registrar_office,
			   survey_number, owner_name, status, encumbrances,
			   verification_date, expiry_date, fraud_risk_score,
			   created_at, updated_at
		FROM encumbrance_certificates
		WHERE property_id = ?
	`

	var ec domain.EncumbranceCertificate
	var status, encumbrances string

	err := r.db.QueryRowContext(ctx, r.rebind(query), propertyID).Scan(
		&ec.ID, &ec.PropertyID, &ec.State, &ec.District, &ec.SubRegistrarOffice,
		&ec.SurveyNumber, &ec.OwnerName, &status, &encumbrances,
		&ec.VerificationDate, &ec.ExpiryDate, &ec.FraudRiskScore,
		&ec.CreatedAt, &ec.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	ec.Status = domain.ECStatus(status)
	ec.Encumbrances = []domain.EncumbranceRecord{}
	json.Unmarshal([]byte(encumbrances), &ec.Encumbrances)

	return &ec, nil
}

func (r *SQLRepository) insertTitleVerification(ctx context.Context, e execer, tv *domain.TitleVerification) error {
	if tv == nil {
		return fmt.Errorf("%w: title verification is required", ErrInvalidInput)
	}

	chain, _ := json.Marshal(tv.OwnershipChain)
	flags, _ := json.Marshal(tv.RedFlags)

	query := `
		INSERT INTO title_verifications (
			id, property_id, owner_name, current_sale_price, status,
			title_chain_complete, years_verified, mortgage_status,
			tax_clearance, litigation_found, ownership_chain,
			risk_score, red_flags, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(property_id) DO UPDATE SET
			id = excluded.id,
			owner_name = excluded.owner_name,
			current_sale_price = excluded.current_sale_price,
			status = excluded.status,
			title_chain_complete = excluded.title_chain_complete,
			years_verified = excluded.years_verified,
			mortgage_status = excluded.mortgage_status,
			tax_clearance = excluded.tax_clearance,
			litigation_found = excluded.litigation_found,
			ownership_chain = excluded.ownership_chain,
			risk_score = excluded.risk_score,
			red_flags = excluded.red_flags,
			updated_at = excluded.updated_at
	`

	_, err := e.ExecContext(ctx, r.rebind(query),
		tv.ID, tv.PropertyID, tv.OwnerName, tv.CurrentSalePrice, string(tv.Status),
		boolToInt(tv.TitleChainComplete), tv.YearsVerified, string(tv.MortgageStatus),
		boolToInt(tv.TaxClearance), boolToInt(tv.LitigationFound), string(chain),
		tv.RiskScore, string(flags), tv.CreatedAt, tv.UpdatedAt,
	)
	return err
}

// GetTitleVerification retrieves the title verification for a property.
func (r *SQLRepository) GetTitleVerification(ctx context.Context, propertyID string) (*domain.TitleVerification, error) {
	query := `
		SELECT id, property_id, owner_name, current_sale_price, status,
			   title_chain_complete, years_verified, mortgage_status,
			   tax_clearance, litigation_found, ownership_chain,
			   risk_score, red_flags, created_at, updated_at
		FROM title_verifications
		WHERE property_id = ?
	`

	var tv domain.TitleVerification
	var status, mortgage, chain, flags string
	var chainComplete, taxClearance, litigationFound int

	err := r.db.QueryRowContext(ctx, r.rebind(query), propertyID).Scan(
		&tv.ID, &tv.PropertyID, &tv.OwnerName, &tv.CurrentSalePrice, &status,
		&chainComplete, &tv.YearsVerified, &mortgage,
		&taxClearance, &litigationFound, &chain,
		&tv.RiskScore, &flags, &tv.CreatedAt, &tv.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	tv.Status = domain.TitleStatus(status)
	tv.MortgageStatus = domain.MortgageStatus(mortgage)
	tv.TitleChainComplete = chainComplete == 1
	tv.TaxClearance = taxClearance == 1
	tv.LitigationFound = litigationFound == 1
	tv.OwnershipChain = []domain.OwnershipChainEntry{}
	tv.RedFlags = []string{}
	json.Unmarshal([]byte(chain), &tv.OwnershipChain)
	json.Unmarshal([]byte(flags), &tv.RedFlags)

	return &tv, nil
}

func (r *SQLRepository) insertFraudScore(ctx context.Context, e execer, fs *domain.FraudScore) error {
	if fs == nil {
		return fmt.Errorf("%w: fraud score is required", ErrInvalidInput)
	}

	findings, _ := json.Marshal(fs.Findings)
	flags, _ := json.Marshal(fs.FraudFlags)

	// Fraud scores accumulate historically; reads take the latest row.
	query := `
		INSERT INTO fraud_scores (
			id, property_id, owner_name, price_anomaly_score,
			document_forgery_score, seller_behavior_score, title_fraud_score,
			double_sale_risk_score, benami_transaction_score, findings,
			fraud_flags, overall_fraud_score, recommendation,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := e.ExecContext(ctx, r.rebind(query),
		fs.ID, fs.PropertyID, fs.OwnerName, fs.PriceAnomalyScore,
		fs.DocumentForgeryScore, fs.SellerBehaviorScore, fs.TitleFraudScore,
		fs.DoubleSaleRiskScore, fs.BenamiTransactionScore, string(findings),
		string(flags), fs.OverallFraudScore, fs.Recommendation,
		fs.CreatedAt, fs.UpdatedAt,
	)
	return err
}

// GetFraudScore retrieves the most recent fraud score for a property.
func (r *SQLRepository) GetFraudScore(ctx context.Context, propertyID string) (*domain.FraudScore, error) {
	query := `
		SELECT id, property_id, owner_name, price_anomaly_score,
			   document_forgery_score, seller_behavior_score, title_fraud_score,
			   double_sale_risk_score, benami_transaction_score, findings,
			   fraud_flags, overall_fraud_score, recommendation,
			   created_at, updated_at
		FROM fraud_scores
		WHERE property_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`

	var fs domain.FraudScore
	var findings, flags string

	err := r.db.QueryRowContext(ctx, r.rebind(query), propertyID).Scan(
		&fs.ID, &fs.PropertyID, &fs.OwnerName, &fs.PriceAnomalyScore,
		&fs.DocumentForgeryScore, &fs.SellerBehaviorScore, &fs.TitleFraudScore,
		&fs.DoubleSaleRiskScore, &fs.BenamiTransactionScore, &findings,
		&flags, &fs.OverallFraudScore, &fs.Recommendation,
		&fs.CreatedAt, &fs.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	fs.FraudFlags = []string{}
	json.Unmarshal([]byte(findings), &fs.Findings)
	json.Unmarshal([]byte(flags), &fs.FraudFlags)

	return &fs, nil
}

func (r *SQLRepository) insertLandRecord(ctx context.Context, e execer, lr *domain.LandRecord) error {
	if lr == nil {
		return fmt.Errorf("%w: land record is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO land_records (
			id, property_id, state, district, village, survey_number,
			plot_number, patta_number, area_sqft, area_acres, land_type,
			record_status, owner_name, mutation_status,
			conversion_certificate_required, conversion_certificate_number,
			records_up_to_date, last_mutation_date, source_portal,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(property_id) DO UPDATE SET
			id = excluded.id,
			state = excluded.state,
			district = excluded.district,
			village = excluded.village,
			survey_number = excluded.survey_number,
			plot_number = excluded.plot_number,
			patta_number = excluded.patta_number,
			area_sqft = excluded.area_sqft,
			area_acres = excluded.area_acres,
			land_type = excluded.land_type,
			record_status = excluded.record_status,
			owner_name = excluded.owner_name,
			mutation_status = excluded.mutation_status,
			conversion_certificate_required = excluded.conversion_certificate_required,
			conversion_certificate_number = excluded.conversion_certificate_number,
			records_up_to_date = excluded.records_up_to_date,
			last_mutation_date = excluded.last_mutation_date,
			source_portal = excluded.source_portal,
			updated_at = excluded.updated_at
	`

	_, err := e.ExecContext(ctx, r.rebind(query),
		lr.ID, lr.PropertyID, lr.State, lr.District, lr.Village, lr.SurveyNumber,
		lr.PlotNumber, lr.PattaNumber, lr.AreaSqft, lr.AreaAcres, string(lr.LandType),
		lr.RecordStatus, lr.OwnerName, string(lr.MutationStatus),
		boolToInt(lr.ConversionCertificateRequired), lr.ConversionCertificateNumber,
		boolToInt(lr.RecordsUpToDate), lr.LastMutationDate, lr.SourcePortal,
		lr.CreatedAt, lr.UpdatedAt,
	)
	return err
}

// GetLandRecord retrieves the land record for a property.
func (r *SQLRepository) GetLandRecord(ctx context.Context, propertyID string) (*domain.LandRecord, error) {
	query := `
		SELECT id, property_id, state, district, village, survey_number,
			   plot_number, patta_number, area_sqft, area_acres, land_type,
			   record_status, owner_name, mutation_status,
			   conversion_certificate_required, conversion_certificate_number,
			   records_up_to_date, last_mutation_date, source_portal,
			   created_at, updated_at
		FROM land_records
		WHERE property_id = ?
	`

	var lr domain.LandRecord
	var landType, mutation string
	var ccRequired, upToDate int

	err := r.db.QueryRowContext(ctx, r.rebind(query), propertyID).Scan(
		&lr.ID, &lr.PropertyID, &lr.State, &lr.District, &lr.Village, &lr.SurveyNumber,
		&lr.PlotNumber, &lr.PattaNumber, &lr.AreaSqft, &lr.AreaAcres, &landType,
		&lr.RecordStatus, &lr.OwnerName, &mutation,
		&ccRequired, &lr.ConversionCertificateNumber,
		&upToDate, &lr.LastMutationDate, &lr.SourcePortal,
		&lr.CreatedAt, &lr.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	lr.LandType = domain.LandType(landType)
	lr.MutationStatus = domain.MutationStatus(mutation)
	lr.ConversionCertificateRequired = ccRequired == 1
	lr.RecordsUpToDate = upToDate == 1

	return &lr, nil
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	// Convert ? to $1, $2, etc.
	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
