package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/propclear/propclear/internal/domain"
)

const litigationColumns = `
	id, case_number, court, state, property_address, property_id,
	owner_name, plaintiff, defendant, case_type, filing_date, status,
	judgment, judgment_date, description, risk_level, created_at
`

// SaveLitigationCase stores a litigation case. Case numbers are unique;
// whoever inserts a case number first owns it, later inserts are no-ops.
func (r *SQLRepository) SaveLitigationCase(ctx context.Context, c *domain.LitigationCase) error {
	if c == nil || c.CaseNumber == "" {
		return fmt.Errorf("%w: case number is required", ErrInvalidInput)
	}
	return r.insertLitigationCase(ctx, r.db, c)
}

func (r *SQLRepository) insertLitigationCase(ctx context.Context, e execer, c *domain.LitigationCase) error {
	query := `
		INSERT INTO litigation_cases (` + litigationColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(case_number) DO NOTHING
	`

	var judgmentDate sql.NullTime
	if c.JudgmentDate != nil {
		judgmentDate = sql.NullTime{Time: *c.JudgmentDate, Valid: true}
	}

	_, err := e.ExecContext(ctx, r.rebind(query),
		c.ID, c.CaseNumber, string(c.Court), c.State, c.PropertyAddress, c.PropertyID,
		c.OwnerName, c.Plaintiff, c.Defendant, string(c.CaseType), c.FilingDate,
		string(c.Status), c.Judgment, judgmentDate, c.Description,
		string(c.RiskLevel), c.CreatedAt,
	)
	return err
}

func scanLitigationCase(row interface{ Scan(...any) error }) (*domain.LitigationCase, error) {
	var c domain.LitigationCase
	var court, caseType, status, riskLevel string
	var judgmentDate sql.NullTime

	err := row.Scan(
		&c.ID, &c.CaseNumber, &court, &c.State, &c.PropertyAddress, &c.PropertyID,
		&c.OwnerName, &c.Plaintiff, &c.Defendant, &caseType, &c.FilingDate,
		&status, &c.Judgment, &judgmentDate, &c.Description, &riskLevel, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Court = domain.Court(court)
	c.CaseType = domain.CaseType(caseType)
	c.Status = domain.CaseStatus(status)
	c.RiskLevel = domain.RiskLevel(riskLevel)
	c.JudgmentDate = timePtr(judgmentDate)

	return &c, nil
}

func (r *SQLRepository) queryLitigation(ctx context.Context, query string, args ...any) ([]*domain.LitigationCase, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cases := []*domain.LitigationCase{}
	for rows.Next() {
		c, err := scanLitigationCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}

	return cases, rows.Err()
}

// GetLitigationCase retrieves a case by case number.
func (r *SQLRepository) GetLitigationCase(ctx context.Context, caseNumber string) (*domain.LitigationCase, error) {
	query := `SELECT ` + litigationColumns + ` FROM litigation_cases WHERE case_number = ?`

	c, err := scanLitigationCase(r.db.QueryRowContext(ctx, r.rebind(query), caseNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// ListLitigationByProperty retrieves cases filed against a property id.
func (r *SQLRepository) ListLitigationByProperty(ctx context.Context, propertyID string) ([]*domain.LitigationCase, error) {
	query := `SELECT ` + litigationColumns + `
		FROM litigation_cases WHERE property_id = ? ORDER BY filing_date DESC`
	return r.queryLitigation(ctx, query, propertyID)
}

// ListLitigationByOwner retrieves cases where the owner name appears as a
// party (substring match against plaintiff, defendant and owner).
func (r *SQLRepository) ListLitigationByOwner(ctx context.Context, owner string) ([]*domain.LitigationCase, error) {
	if owner == "" {
		return []*domain.LitigationCase{}, nil
	}

	pattern := "%" + owner + "%"
	query := `SELECT ` + litigationColumns + `
		FROM litigation_cases
		WHERE plaintiff LIKE ? OR defendant LIKE ? OR owner_name LIKE ?
		ORDER BY filing_date DESC`
	return r.queryLitigation(ctx, query, pattern, pattern, pattern)
}

// ListLitigationByState retrieves cases filed in a state.
func (r *SQLRepository) ListLitigationByState(ctx context.Context, state string) ([]*domain.LitigationCase, error) {
	query := `SELECT ` + litigationColumns + `
		FROM litigation_cases WHERE state = ? ORDER BY filing_date DESC`
	return r.queryLitigation(ctx, query, state)
}

// ListHighRiskLitigation retrieves critical and high risk cases,
// critical first.
func (r *SQLRepository) ListHighRiskLitigation(ctx context.Context) ([]*domain.LitigationCase, error) {
	query := `SELECT ` + litigationColumns + `
		FROM litigation_cases
		WHERE risk_level IN ('critical', 'high')
		ORDER BY CASE risk_level WHEN 'critical' THEN 0 ELSE 1 END, filing_date DESC`
	return r.queryLitigation(ctx, query)
}

// CountLitigationByPropertyOrAddress counts cases matching a property id
// or its address. Feeds the multiple-claims cross-reference.
func (r *SQLRepository) CountLitigationByPropertyOrAddress(ctx context.Context, propertyID, address string) (int, error) {
	query := `SELECT COUNT(*) FROM litigation_cases WHERE property_id = ? OR property_address = ?`

	var count int
	err := r.db.QueryRowContext(ctx, r.rebind(query), propertyID, address).Scan(&count)
	return count, err
}

// CountTitleDisputesByParty counts title_dispute cases naming the owner
// as plaintiff or defendant. Feeds the identity-theft cross-reference.
func (r *SQLRepository) CountTitleDisputesByParty(ctx context.Context, owner string) (int, error) {
	query := `
		SELECT COUNT(*) FROM litigation_cases
		WHERE case_type = 'title_dispute' AND (plaintiff = ? OR defendant = ?)
	`

	var count int
	err := r.db.QueryRowContext(ctx, r.rebind(query), owner, owner).Scan(&count)
	return count, err
}

// SaveDocumentVerification stores a document authenticity check.
func (r *SQLRepository) SaveDocumentVerification(ctx context.Context, d *domain.DocumentVerification) error {
	if d == nil || d.PropertyID == "" {
		return fmt.Errorf("%w: property id is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO document_verifications (
			id, property_id, document_type, document_number,
			authentic, forgery_risk, notes, verified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		d.ID, d.PropertyID, d.DocumentType, d.DocumentNumber,
		boolToInt(d.Authentic), string(d.ForgeryRisk), d.Notes, d.VerifiedAt,
	)
	return err
}

// ListDocumentVerifications retrieves document checks for a property.
func (r *SQLRepository) ListDocumentVerifications(ctx context.Context, propertyID string) ([]*domain.DocumentVerification, error) {
	query := `
		SELECT id, property_id, document_type, document_number,
			   authentic, forgery_risk, notes, verified_at
		FROM document_verifications
		WHERE property_id = ?
		ORDER BY verified_at DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []*domain.DocumentVerification{}
	for rows.Next() {
		var d domain.DocumentVerification
		var authentic int
		var risk string

		if err := rows.Scan(
			&d.ID, &d.PropertyID, &d.DocumentType, &d.DocumentNumber,
			&authentic, &risk, &d.Notes, &d.VerifiedAt,
		); err != nil {
			return nil, err
		}

		d.Authentic = authentic == 1
		d.ForgeryRisk = domain.ForgeryRisk(risk)
		docs = append(docs, &d)
	}

	return docs, rows.Err()
}

// CountSuspectDocuments counts document checks with forgery risk above
// low. Feeds the forged-document cross-reference.
func (r *SQLRepository) CountSuspectDocuments(ctx context.Context, propertyID string) (int, error) {
	query := `SELECT COUNT(*) FROM document_verifications WHERE property_id = ? AND forgery_risk != 'low'`

	var count int
	err := r.db.QueryRowContext(ctx, r.rebind(query), propertyID).Scan(&count)
	return count, err
}

// SaveReraProject stores or overwrites a RERA project registration.
func (r *SQLRepository) SaveReraProject(ctx context.Context, p *domain.ReraProject) error {
	if p == nil || p.RegistrationNumber == "" {
		return fmt.Errorf("%w: registration number is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO rera_projects (
			id, registration_number, project_name, developer_id,
			developer_name, city, state, status, approved_date,
			expiry_date, total_units, complaint_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(registration_number) DO UPDATE SET
			project_name = excluded.project_name,
			developer_id = excluded.developer_id,
			developer_name = excluded.developer_name,
			city = excluded.city,
			state = excluded.state,
			status = excluded.status,
			approved_date = excluded.approved_date,
			expiry_date = excluded.expiry_date,
			total_units = excluded.total_units,
			complaint_count = excluded.complaint_count
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		p.ID, p.RegistrationNumber, p.ProjectName, p.DeveloperID,
		p.DeveloperName, p.City, p.State, string(p.Status), p.ApprovedDate,
		p.ExpiryDate, p.TotalUnits, p.ComplaintCount, p.CreatedAt,
	)
	return err
}

// GetReraProject retrieves a project by registration number.
func (r *SQLRepository) GetReraProject(ctx context.Context, registrationNumber string) (*domain.ReraProject, error) {
	query := `
		SELECT id, registration_number, project_name, developer_id,
			   developer_name, city, state, status, approved_date,
			   expiry_date, total_units, complaint_count, created_at
		FROM rera_projects
		WHERE registration_number = ?
	`

	var p domain.ReraProject
	var status string

	err := r.db.QueryRowContext(ctx, r.rebind(query), registrationNumber).Scan(
		&p.ID, &p.RegistrationNumber, &p.ProjectName, &p.DeveloperID,
		&p.DeveloperName, &p.City, &p.State, &status, &p.ApprovedDate,
		&p.ExpiryDate, &p.TotalUnits, &p.ComplaintCount, &p.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Status = domain.ReraStatus(status)
	return &p, nil
}

// ListReraProjectsByState retrieves all projects registered in a state.
func (r *SQLRepository) ListReraProjectsByState(ctx context.Context, state string) ([]*domain.ReraProject, error) {
	query := `
		SELECT id, registration_number, project_name, developer_id,
			   developer_name, city, state, status, approved_date,
			   expiry_date, total_units, complaint_count, created_at
		FROM rera_projects
		WHERE state = ?
		ORDER BY approved_date DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), state)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*domain.ReraProject{}
	for rows.Next() {
		var p domain.ReraProject
		var status string

		if err := rows.Scan(
			&p.ID, &p.RegistrationNumber, &p.ProjectName, &p.DeveloperID,
			&p.DeveloperName, &p.City, &p.State, &status, &p.ApprovedDate,
			&p.ExpiryDate, &p.TotalUnits, &p.ComplaintCount, &p.CreatedAt,
		); err != nil {
			return nil, err
		}

		p.Status = domain.ReraStatus(status)
		projects = append(projects, &p)
	}

	return projects, rows.Err()
}

// SaveDeveloperAudit stores or overwrites a developer track-record audit.
func (r *SQLRepository) SaveDeveloperAudit(ctx context.Context, a *domain.DeveloperAudit) error {
	if a == nil || a.DeveloperID == "" {
		return fmt.Errorf("%w: developer id is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO developer_audits (
			id, developer_id, developer_name, projects_total,
			projects_completed, projects_delayed, projects_stalled,
			default_rate_pct, avg_delay_months, litigation_count,
			risk_level, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(developer_id) DO UPDATE SET
			id = excluded.id,
			developer_name = excluded.developer_name,
			projects_total = excluded.projects_total,
			projects_completed = excluded.projects_completed,
			projects_delayed = excluded.projects_delayed,
			projects_stalled = excluded.projects_stalled,
			default_rate_pct = excluded.default_rate_pct,
			avg_delay_months = excluded.avg_delay_months,
			litigation_count = excluded.litigation_count,
			risk_level = excluded.risk_level
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		a.ID, a.DeveloperID, a.DeveloperName, a.ProjectsTotal,
		a.ProjectsCompleted, a.ProjectsDelayed, a.ProjectsStalled,
		a.DefaultRatePct, a.AvgDelayMonths, a.LitigationCount,
		string(a.RiskLevel), a.CreatedAt,
	)
	return err
}

// GetDeveloperAudit retrieves a developer audit by developer id.
func (r *SQLRepository) GetDeveloperAudit(ctx context.Context, developerID string) (*domain.DeveloperAudit, error) {
	query := `
		SELECT id, developer_id, developer_name, projects_total,
			   projects_completed, projects_delayed, projects_stalled,
			   default_rate_pct, avg_delay_months, litigation_count,
			   risk_level, created_at
		FROM developer_audits
		WHERE developer_id = ?
	`

	var a domain.DeveloperAudit
	var risk string

	err := r.db.QueryRowContext(ctx, r.rebind(query), developerID).Scan(
		&a.ID, &a.DeveloperID, &a.DeveloperName, &a.ProjectsTotal,
		&a.ProjectsCompleted, &a.ProjectsDelayed, &a.ProjectsStalled,
		&a.DefaultRatePct, &a.AvgDelayMonths, &a.LitigationCount,
		&risk, &a.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	a.RiskLevel = domain.RiskLevel(risk)
	return &a, nil
}

// UpsertMarketIntelligence inserts a snapshot unless one already exists
// for the (city, monthYear) window, then returns the stored row. The
// insert-or-ignore keeps the one-record-per-window invariant even when
// two first audits for a new city race.
func (r *SQLRepository) UpsertMarketIntelligence(ctx context.Context, m *domain.MarketIntelligence) (*domain.MarketIntelligence, error) {
	if m == nil || m.City == "" || m.MonthYear == "" {
		return nil, fmt.Errorf("%w: city and monthYear are required", ErrInvalidInput)
	}

	changes, _ := json.Marshal(m.RegulatoryChanges)

	query := `
		INSERT INTO market_intelligence (
			id, city, locality, month_year, avg_property_price,
			price_per_sqft, transaction_volume, fraud_rate_pct,
			developer_default_rate_pct, project_stall_rate_pct,
			avg_project_delay_months, demand_supply_ratio,
			rental_yield_pct, investment_score, regulatory_changes,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(city, month_year) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		m.ID, m.City, m.Locality, m.MonthYear, m.AvgPropertyPrice,
		m.PricePerSqft, m.TransactionVolume, m.FraudRatePct,
		m.DeveloperDefaultRatePct, m.ProjectStallRatePct,
		m.AvgProjectDelayMonths, m.DemandSupplyRatio,
		m.RentalYieldPct, m.InvestmentScore, string(changes),
		m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return r.GetMarketIntelligence(ctx, m.City, m.MonthYear)
}

// GetMarketIntelligence retrieves the snapshot for a city/month window.
func (r *SQLRepository) GetMarketIntelligence(ctx context.Context, city, monthYear string) (*domain.MarketIntelligence, error) {
	query := `
		SELECT id, city, locality, month_year, avg_property_price,
			   price_per_sqft, transaction_volume, fraud_rate_pct,
			   developer_default_rate_pct, project_stall_rate_pct,
			   avg_project_delay_months, demand_supply_ratio,
			   rental_yield_pct, investment_score, regulatory_changes,
			   created_at
		FROM market_intelligence
		WHERE city = ? AND month_year = ?
	`

	var m domain.MarketIntelligence
	var changes string

	err := r.db.QueryRowContext(ctx, r.rebind(query), city, monthYear).Scan(
		&m.ID, &m.City, &m.Locality, &m.MonthYear, &m.AvgPropertyPrice,
		&m.PricePerSqft, &m.TransactionVolume, &m.FraudRatePct,
		&m.DeveloperDefaultRatePct, &m.ProjectStallRatePct,
		&m.AvgProjectDelayMonths, &m.DemandSupplyRatio,
		&m.RentalYieldPct, &m.InvestmentScore, &changes,
		&m.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	m.RegulatoryChanges = []string{}
	json.Unmarshal([]byte(changes), &m.RegulatoryChanges)

	return &m, nil
}

// SaveAlertRule stores or overwrites an alert rule.
func (r *SQLRepository) SaveAlertRule(ctx context.Context, rule *domain.AlertRule) error {
	if rule == nil || rule.ID == "" {
		return fmt.Errorf("%w: rule id is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO alert_rules (
			id, name, description, expression, severity, enabled,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			expression = excluded.expression,
			severity = excluded.severity,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		rule.ID, rule.Name, rule.Description, rule.Expression,
		string(rule.Severity), boolToInt(rule.Enabled),
		rule.CreatedAt, rule.UpdatedAt,
	)
	return err
}

// ListAlertRules retrieves all enabled alert rules.
func (r *SQLRepository) ListAlertRules(ctx context.Context) ([]*domain.AlertRule, error) {
	query := `
		SELECT id, name, description, expression, severity, enabled,
			   created_at, updated_at
		FROM alert_rules
		WHERE enabled = 1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []*domain.AlertRule{}
	for rows.Next() {
		var rule domain.AlertRule
		var severity string
		var enabled int

		if err := rows.Scan(
			&rule.ID, &rule.Name, &rule.Description, &rule.Expression,
			&severity, &enabled, &rule.CreatedAt, &rule.UpdatedAt,
		); err != nil {
			return nil, err
		}

		rule.Severity = domain.RiskLevel(severity)
		rule.Enabled = enabled == 1
		rules = append(rules, &rule)
	}

	return rules, rows.Err()
}
