package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/propclear/propclear/internal/alerts"
	"github.com/propclear/propclear/internal/audit"
	"github.com/propclear/propclear/internal/domain"
	"github.com/propclear/propclear/internal/market"
	"github.com/propclear/propclear/internal/repository"
	"github.com/propclear/propclear/internal/signals"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	repo         domain.Repository
	cache        domain.Cache
	orchestrator *audit.Orchestrator
	resolver     *market.Resolver
	engine       *alerts.Engine
	gen          *signals.Generator
	version      string
}

// NewHandler creates a new API handler.
func NewHandler(repo domain.Repository, cache domain.Cache, orchestrator *audit.Orchestrator, resolver *market.Resolver, engine *alerts.Engine, gen *signals.Generator, version string) *Handler {
	return &Handler{
		repo:         repo,
		cache:        cache,
		orchestrator: orchestrator,
		resolver:     resolver,
		engine:       engine,
		gen:          gen,
		version:      version,
	}
}

// PropertyRequest is the request body for POST /properties. The
// dashboard sends estimatedValue and area as strings.
type PropertyRequest struct {
	PropertyName    string          `json:"propertyName"`
	Address         string          `json:"address"`
	City            string          `json:"city"`
	State           string          `json:"state"`
	Pincode         string          `json:"pincode,omitempty"`
	PropertyType    string          `json:"propertyType"`
	TransactionType string          `json:"transactionType"`
	EstimatedValue  json.RawMessage `json:"estimatedValue,omitempty"`
	Area            json.RawMessage `json:"area,omitempty"`
	OwnerName       string          `json:"ownerName,omitempty"`
	Description     string          `json:"description,omitempty"`
	UserID          string          `json:"userId"`
}

// AuditResults is the flattened summary returned with a new property.
type AuditResults struct {
	OverallRiskScore int             `json:"overallRiskScore"`
	RiskLevel        string          `json:"riskLevel"`
	ECStatus         domain.ECStatus `json:"ecStatus"`
	FraudScore       int             `json:"fraudScore"`
	LitigationCount  int             `json:"litigationCount"`
}

// PropertyResponse is the response for POST /properties.
type PropertyResponse struct {
	Property     *domain.Property    `json:"property"`
	AuditResults AuditResults        `json:"auditResults"`
	Audit        *domain.AuditBundle `json:"audit"`
}

// SubmitProperty handles POST /properties.
func (h *Handler) SubmitProperty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	for field, value := range map[string]string{
		"propertyName":    req.PropertyName,
		"address":         req.Address,
		"city":            req.City,
		"state":           req.State,
		"propertyType":    req.PropertyType,
		"transactionType": req.TransactionType,
		"userId":          req.UserID,
	} {
		if value == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": field + " is required",
			})
			return
		}
	}

	estimatedValue, err := parseNumber(req.EstimatedValue)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "estimatedValue must be numeric",
		})
		return
	}
	area, err := parseNumber(req.Area)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "area must be numeric",
		})
		return
	}

	sub := &domain.PropertySubmission{
		Name:            req.PropertyName,
		Address:         req.Address,
		City:            req.City,
		State:           req.State,
		Pincode:         req.Pincode,
		PropertyType:    domain.PropertyType(req.PropertyType),
		TransactionType: req.TransactionType,
		EstimatedValue:  estimatedValue,
		AreaSqft:        area,
		OwnerName:       req.OwnerName,
		Description:     req.Description,
		UserID:          req.UserID,
	}

	propertyID := uuid.New().String()
	bundle, err := h.orchestrator.RunComprehensiveAudit(ctx, propertyID, sub)
	if err != nil {
		slog.Error("comprehensive audit failed",
			"property_id", propertyID,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "audit failed",
		})
		return
	}

	score := bundle.FraudScore.OverallFraudScore
	writeJSON(w, http.StatusCreated, PropertyResponse{
		Property: bundle.Property,
		AuditResults: AuditResults{
			OverallRiskScore: score,
			RiskLevel:        domain.RiskLevelForScore(score),
			ECStatus:         bundle.EncumbranceCertificate.Status,
			FraudScore:       score,
			LitigationCount:  len(bundle.LitigationCases),
		},
		Audit: bundle,
	})
}

// parseNumber accepts a JSON number or a numeric string.
func parseNumber(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// GetProperty handles GET /properties/{id}.
func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	h.getByPropertyID(w, r, func(id string) (any, error) {
		return h.repo.GetProperty(r.Context(), id)
	})
}

// GetEncumbranceCertificate handles GET /properties/{id}/encumbrance.
func (h *Handler) GetEncumbranceCertificate(w http.ResponseWriter, r *http.Request) {
	h.getByPropertyID(w, r, func(id string) (any, error) {
		return h.repo.GetEncumbranceCertificate(r.Context(), id)
	})
}

// GetTitleVerification handles GET /properties/{id}/title.
func (h *Handler) GetTitleVerification(w http.ResponseWriter, r *http.Request) {
	h.getByPropertyID(w, r, func(id string) (any, error) {
		return h.repo.GetTitleVerification(r.Context(), id)
	})
}

// GetFraudScore handles GET /properties/{id}/fraud.
func (h *Handler) GetFraudScore(w http.ResponseWriter, r *http.Request) {
	h.getByPropertyID(w, r, func(id string) (any, error) {
		return h.repo.GetFraudScore(r.Context(), id)
	})
}

// GetLandRecord handles GET /properties/{id}/land.
func (h *Handler) GetLandRecord(w http.ResponseWriter, r *http.Request) {
	h.getByPropertyID(w, r, func(id string) (any, error) {
		return h.repo.GetLandRecord(r.Context(), id)
	})
}

// ListPropertyLitigation handles GET /properties/{id}/litigation.
func (h *Handler) ListPropertyLitigation(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "id")
	cases, err := h.repo.ListLitigationByProperty(r.Context(), propertyID)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cases)
}

// ListPropertyDocuments handles GET /properties/{id}/documents.
func (h *Handler) ListPropertyDocuments(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "id")
	docs, err := h.repo.ListDocumentVerifications(r.Context(), propertyID)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) getByPropertyID(w http.ResponseWriter, r *http.Request, get func(id string) (any, error)) {
	propertyID := chi.URLParam(r, "id")
	if propertyID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "property id is required",
		})
		return
	}

	record, err := get(propertyID)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// ListHighRiskLitigation handles GET /litigation/high-risk.
func (h *Handler) ListHighRiskLitigation(w http.ResponseWriter, r *http.Request) {
	cases, err := h.repo.ListHighRiskLitigation(r.Context())
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cases)
}

// ListLitigation handles GET /litigation?owner= and ?state=.
func (h *Handler) ListLitigation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if owner := r.URL.Query().Get("owner"); owner != "" {
		cases, err := h.repo.ListLitigationByOwner(ctx, owner)
		if err != nil {
			h.writeLookupError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cases)
		return
	}

	if state := r.URL.Query().Get("state"); state != "" {
		cases, err := h.repo.ListLitigationByState(ctx, state)
		if err != nil {
			h.writeLookupError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cases)
		return
	}

	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": "owner or state query parameter is required",
	})
}

// GetLitigationCase handles GET /litigation/{caseNumber}.
func (h *Handler) GetLitigationCase(w http.ResponseWriter, r *http.Request) {
	caseNumber := chi.URLParam(r, "caseNumber")
	c, err := h.repo.GetLitigationCase(r.Context(), caseNumber)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// GetMarket handles GET /market/{city} for the current month.
func (h *Handler) GetMarket(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")
	m, err := h.resolver.Current(r.Context(), city)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// DocumentVerifyRequest is the request body for POST /documents/verify.
type DocumentVerifyRequest struct {
	PropertyID     string `json:"propertyId"`
	DocumentType   string `json:"documentType"`
	DocumentNumber string `json:"documentNumber"`
}

// VerifyDocument handles POST /documents/verify. The check is
// synthetic; its stored outcome feeds later fraud cross-references.
func (h *Handler) VerifyDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req DocumentVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}
	if req.PropertyID == "" || req.DocumentType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "propertyId and documentType are required",
		})
		return
	}

	risk := domain.ForgeryRiskLow
	notes := "No anomalies detected"
	switch draw := h.gen.Intn(10); {
	case draw >= 9:
		risk = domain.ForgeryRiskHigh
		notes = "Signature mismatch against registry sample"
	case draw >= 7:
		risk = domain.ForgeryRiskMedium
		notes = "Stamp paper serial could not be confirmed"
	}

	doc := &domain.DocumentVerification{
		ID:             uuid.New().String(),
		PropertyID:     req.PropertyID,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		Authentic:      risk == domain.ForgeryRiskLow,
		ForgeryRisk:    risk,
		Notes:          notes,
		VerifiedAt:     time.Now().UTC(),
	}

	if err := h.repo.SaveDocumentVerification(ctx, doc); err != nil {
		slog.Error("failed to save document verification", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to save verification",
		})
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

// ReraProjectRequest is the request body for POST /rera/projects.
type ReraProjectRequest struct {
	RegistrationNumber string `json:"registrationNumber"`
	ProjectName        string `json:"projectName"`
	DeveloperID        string `json:"developerId"`
	DeveloperName      string `json:"developerName"`
	City               string `json:"city"`
	State              string `json:"state"`
	TotalUnits         int    `json:"totalUnits"`
}

// CreateReraProject handles POST /rera/projects.
func (h *Handler) CreateReraProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ReraProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}
	if req.RegistrationNumber == "" || req.ProjectName == "" || req.State == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "registrationNumber, projectName and state are required",
		})
		return
	}

	now := time.Now().UTC()
	project := &domain.ReraProject{
		ID:                 uuid.New().String(),
		RegistrationNumber: req.RegistrationNumber,
		ProjectName:        req.ProjectName,
		DeveloperID:        req.DeveloperID,
		DeveloperName:      req.DeveloperName,
		City:               req.City,
		State:              req.State,
		Status:             domain.ReraStatusRegistered,
		ApprovedDate:       now.AddDate(-h.gen.IntBetween(0, 3), 0, 0),
		ExpiryDate:         now.AddDate(h.gen.IntBetween(2, 5), 0, 0),
		TotalUnits:         req.TotalUnits,
		ComplaintCount:     h.gen.Intn(12),
		CreatedAt:          now,
	}

	if err := h.repo.SaveReraProject(ctx, project); err != nil {
		slog.Error("failed to save RERA project", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to save project",
		})
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

// GetReraProject handles GET /rera/projects/{registrationNumber}.
func (h *Handler) GetReraProject(w http.ResponseWriter, r *http.Request) {
	registrationNumber := chi.URLParam(r, "registrationNumber")
	p, err := h.repo.GetReraProject(r.Context(), registrationNumber)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListReraProjects handles GET /rera/projects?state=.
func (h *Handler) ListReraProjects(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "state query parameter is required",
		})
		return
	}

	projects, err := h.repo.ListReraProjectsByState(r.Context(), state)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// DeveloperAuditRequest is the request body for POST /developers/{id}/audit.
type DeveloperAuditRequest struct {
	DeveloperName string `json:"developerName"`
}

// RunDeveloperAudit handles POST /developers/{id}/audit. The track
// record is synthesized the way the per-property records are.
func (h *Handler) RunDeveloperAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	developerID := chi.URLParam(r, "id")

	var req DeveloperAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}
	if req.DeveloperName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "developerName is required",
		})
		return
	}

	total := h.gen.IntBetween(3, 40)
	stalled := h.gen.Intn(total / 3)
	delayed := h.gen.Intn(total - stalled)
	completed := total - stalled - delayed
	defaultRate := float64(stalled) / float64(total) * 100

	riskLevel := domain.RiskLow
	switch {
	case defaultRate > 20:
		riskLevel = domain.RiskCritical
	case defaultRate > 10:
		riskLevel = domain.RiskHigh
	case defaultRate > 5:
		riskLevel = domain.RiskMedium
	}

	a := &domain.DeveloperAudit{
		ID:                uuid.New().String(),
		DeveloperID:       developerID,
		DeveloperName:     req.DeveloperName,
		ProjectsTotal:     total,
		ProjectsCompleted: completed,
		ProjectsDelayed:   delayed,
		ProjectsStalled:   stalled,
		DefaultRatePct:    defaultRate,
		AvgDelayMonths:    h.gen.FloatBetween(0, 18),
		LitigationCount:   h.gen.Intn(8),
		RiskLevel:         riskLevel,
		CreatedAt:         time.Now().UTC(),
	}

	if err := h.repo.SaveDeveloperAudit(ctx, a); err != nil {
		slog.Error("failed to save developer audit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to save developer audit",
		})
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

// GetDeveloperAudit handles GET /developers/{id}/audit.
func (h *Handler) GetDeveloperAudit(w http.ResponseWriter, r *http.Request) {
	developerID := chi.URLParam(r, "id")
	a, err := h.repo.GetDeveloperAudit(r.Context(), developerID)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// AlertRuleRequest is the request body for POST /alert-rules.
type AlertRuleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Expression  string `json:"expression"`
	Severity    string `json:"severity"`
	Enabled     *bool  `json:"enabled,omitempty"`
}

// ListAlertRules handles GET /alert-rules.
func (h *Handler) ListAlertRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.repo.ListAlertRules(r.Context())
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

// CreateAlertRule handles POST /alert-rules. The expression is
// compiled before anything is stored.
func (h *Handler) CreateAlertRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AlertRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}
	if req.Name == "" || req.Expression == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "name and expression are required",
		})
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	severity := domain.RiskLevel(req.Severity)
	if severity == "" {
		severity = domain.RiskMedium
	}

	now := time.Now().UTC()
	rule := &domain.AlertRule{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Expression:  req.Expression,
		Severity:    severity,
		Enabled:     enabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.engine.ValidateRule(rule); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	if err := h.repo.SaveAlertRule(ctx, rule); err != nil {
		slog.Error("failed to save alert rule", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to save rule",
		})
		return
	}

	if rule.Enabled {
		if err := h.engine.LoadRule(rule); err != nil {
			slog.Error("failed to load alert rule", "rule", rule.Name, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, rule)
}

// ReloadAlertRules handles POST /alert-rules/reload.
func (h *Handler) ReloadAlertRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.repo.ListAlertRules(r.Context())
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	if err := h.engine.LoadRules(rules); err != nil {
		slog.Error("failed to reload alert rules", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to reload rules",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reloaded": h.engine.RuleCount(),
	})
}

// Health returns the service health including dependency pings.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// writeLookupError maps repository errors to HTTP statuses.
func (h *Handler) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "not found",
		})
		return
	}
	if errors.Is(err, repository.ErrInvalidInput) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	slog.Error("lookup failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
