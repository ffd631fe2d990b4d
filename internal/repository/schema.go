package repository

// Schema definitions for the PropClear database.
// Compatible with both SQLite and PostgreSQL.

const schemaProperties = `
CREATE TABLE IF NOT EXISTS properties (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    address TEXT NOT NULL,
    city TEXT NOT NULL,
    state TEXT NOT NULL,
    pincode TEXT,
    property_type TEXT NOT NULL,
    transaction_type TEXT,
    estimated_value REAL NOT NULL,
    area_sqft REAL NOT NULL,
    owner_name TEXT NOT NULL,
    description TEXT,
    user_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_properties_city ON properties(city);
CREATE INDEX IF NOT EXISTS idx_properties_state ON properties(state);
CREATE INDEX IF NOT EXISTS idx_properties_user ON properties(user_id);
`

const schemaEncumbranceCertificates = `
CREATE TABLE IF NOT EXISTS encumbrance_certificates (
    id TEXT NOT NULL,
    property_id TEXT PRIMARY KEY,
    state TEXT NOT NULL,
    district TEXT NOT NULL,
    sub_registrar_office TEXT NOT NULL,
    survey_number TEXT NOT NULL,
    owner_name TEXT NOT NULL,
    status TEXT NOT NULL,
    encumbrances TEXT NOT NULL,
    verification_date TIMESTAMP NOT NULL,
    expiry_date TIMESTAMP NOT NULL,
    fraud_risk_score INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ec_state ON encumbrance_certificates(state);
CREATE INDEX IF NOT EXISTS idx_ec_survey ON encumbrance_certificates(survey_number);
`

const schemaTitleVerifications = `
CREATE TABLE IF NOT EXISTS title_verifications (
    id TEXT NOT NULL,
    property_id TEXT PRIMARY KEY,
    owner_name TEXT NOT NULL,
    current_sale_price REAL,
    status TEXT NOT NULL,
    title_chain_complete INTEGER NOT NULL,
    years_verified INTEGER NOT NULL,
    mortgage_status TEXT NOT NULL,
    tax_clearance INTEGER NOT NULL,
    litigation_found INTEGER NOT NULL,
    ownership_chain TEXT NOT NULL,
    risk_score INTEGER NOT NULL,
    red_flags TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaFraudScores = `
CREATE TABLE IF NOT EXISTS fraud_scores (
    id TEXT PRIMARY KEY,
    property_id TEXT NOT NULL,
    owner_name TEXT NOT NULL,
    price_anomaly_score REAL NOT NULL,
    document_forgery_score REAL NOT NULL,
    seller_behavior_score REAL NOT NULL,
    title_fraud_score REAL NOT NULL,
    double_sale_risk_score REAL NOT NULL,
    benami_transaction_score REAL NOT NULL,
    findings TEXT NOT NULL,
    fraud_flags TEXT NOT NULL,
    overall_fraud_score INTEGER NOT NULL,
    recommendation TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fraud_scores_property ON fraud_scores(property_id, created_at);
`

const schemaLitigationCases = `
CREATE TABLE IF NOT EXISTS litigation_cases (
    id TEXT NOT NULL,
    case_number TEXT PRIMARY KEY,
    court TEXT NOT NULL,
    state TEXT NOT NULL,
    property_address TEXT NOT NULL,
    property_id TEXT NOT NULL,
    owner_name TEXT NOT NULL,
    plaintiff TEXT NOT NULL,
    defendant TEXT NOT NULL,
    case_type TEXT NOT NULL,
    filing_date TIMESTAMP NOT NULL,
    status TEXT NOT NULL,
    judgment TEXT,
    judgment_date TIMESTAMP,
    description TEXT,
    risk_level TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_litigation_property ON litigation_cases(property_id);
CREATE INDEX IF NOT EXISTS idx_litigation_state ON litigation_cases(state);
CREATE INDEX IF NOT EXISTS idx_litigation_risk ON litigation_cases(risk_level);
`

const schemaLandRecords = `
CREATE TABLE IF NOT EXISTS land_records (
    id TEXT NOT NULL,
    property_id TEXT PRIMARY KEY,
    state TEXT NOT NULL,
    district TEXT NOT NULL,
    village TEXT NOT NULL,
    survey_number TEXT NOT NULL,
    plot_number TEXT NOT NULL,
    patta_number TEXT NOT NULL,
    area_sqft REAL NOT NULL,
    area_acres REAL NOT NULL,
    land_type TEXT NOT NULL,
    record_status TEXT NOT NULL,
    owner_name TEXT NOT NULL,
    mutation_status TEXT NOT NULL,
    conversion_certificate_required INTEGER NOT NULL,
    conversion_certificate_number TEXT,
    records_up_to_date INTEGER NOT NULL,
    last_mutation_date TIMESTAMP NOT NULL,
    source_portal TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_land_records_district ON land_records(state, district);
`

const schemaMarketIntelligence = `
CREATE TABLE IF NOT EXISTS market_intelligence (
    id TEXT NOT NULL,
    city TEXT NOT NULL,
    locality TEXT NOT NULL,
    month_year TEXT NOT NULL,
    avg_property_price REAL NOT NULL,
    price_per_sqft REAL NOT NULL,
    transaction_volume INTEGER NOT NULL,
    fraud_rate_pct REAL NOT NULL,
    developer_default_rate_pct REAL NOT NULL,
    project_stall_rate_pct REAL NOT NULL,
    avg_project_delay_months REAL NOT NULL,
    demand_supply_ratio REAL NOT NULL,
    rental_yield_pct REAL NOT NULL,
    investment_score INTEGER NOT NULL,
    regulatory_changes TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (city, month_year)
);
`

const schemaDocumentVerifications = `
CREATE TABLE IF NOT EXISTS document_verifications (
    id TEXT PRIMARY KEY,
    property_id TEXT NOT NULL,
    document_type TEXT NOT NULL,
    document_number TEXT NOT NULL,
    authentic INTEGER NOT NULL,
    forgery_risk TEXT NOT NULL,
    notes TEXT,
    verified_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_property ON document_verifications(property_id);
`

const schemaReraProjects = `
CREATE TABLE IF NOT EXISTS rera_projects (
    id TEXT NOT NULL,
    registration_number TEXT PRIMARY KEY,
    project_name TEXT NOT NULL,
    developer_id TEXT NOT NULL,
    developer_name TEXT NOT NULL,
    city TEXT NOT NULL,
    state TEXT NOT NULL,
    status TEXT NOT NULL,
    approved_date TIMESTAMP NOT NULL,
    expiry_date TIMESTAMP NOT NULL,
    total_units INTEGER NOT NULL,
    complaint_count INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rera_state ON rera_projects(state);
CREATE INDEX IF NOT EXISTS idx_rera_developer ON rera_projects(developer_id);
`

const schemaDeveloperAudits = `
CREATE TABLE IF NOT EXISTS developer_audits (
    id TEXT NOT NULL,
    developer_id TEXT PRIMARY KEY,
    developer_name TEXT NOT NULL,
    projects_total INTEGER NOT NULL,
    projects_completed INTEGER NOT NULL,
    projects_delayed INTEGER NOT NULL,
    projects_stalled INTEGER NOT NULL,
    default_rate_pct REAL NOT NULL,
    avg_delay_months REAL NOT NULL,
    litigation_count INTEGER NOT NULL,
    risk_level TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`

const schemaAlertRules = `
CREATE TABLE IF NOT EXISTS alert_rules (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    expression TEXT NOT NULL,
    severity TEXT NOT NULL,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaProperties,
		schemaEncumbranceCertificates,
		schemaTitleVerifications,
		schemaFraudScores,
		schemaLitigationCases,
		schemaLandRecords,
		schemaMarketIntelligence,
		schemaDocumentVerifications,
		schemaReraProjects,
		schemaDeveloperAudits,
		schemaAlertRules,
	}
}
