package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/propclear/propclear/internal/alerts"
	"github.com/propclear/propclear/internal/audit"
	"github.com/propclear/propclear/internal/bus"
	"github.com/propclear/propclear/internal/cache"
	"github.com/propclear/propclear/internal/domain"
	"github.com/propclear/propclear/internal/fraud"
	"github.com/propclear/propclear/internal/market"
	"github.com/propclear/propclear/internal/repository"
	"github.com/propclear/propclear/internal/signals"
)

type testEnv struct {
	server *Server
	repo   domain.Repository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo, err := repository.New(domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "api_test.db"),
	})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	c := cache.NewLRUCache(128)
	eventBus := bus.NewChannelBus(64)
	t.Cleanup(func() { eventBus.Close() })

	gen := signals.NewGenerator(signals.NewSource(42))
	analyzer := fraud.NewAnalyzer(gen, fraud.NewCrossReferencer(repo))
	resolver := market.NewResolver(repo, c, gen)

	engine, err := alerts.NewEngine()
	if err != nil {
		t.Fatalf("failed to create alert engine: %v", err)
	}
	if err := engine.LoadRules(alerts.DefaultRules()); err != nil {
		t.Fatalf("failed to load default rules: %v", err)
	}

	orchestrator := audit.NewOrchestrator(repo, gen, analyzer, resolver, eventBus)
	handler := NewHandler(repo, c, orchestrator, resolver, engine, gen, "test")
	server := NewServer(handler, domain.ServerConfig{Host: "127.0.0.1", Port: 0})

	return &testEnv{server: server, repo: repo}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func submission() map[string]any {
	return map[string]any{
		"propertyName":    "Test Villa",
		"address":         "123 MG Road",
		"city":            "Pune",
		"state":           "Maharashtra",
		"pincode":         "411001",
		"propertyType":    "VILLA",
		"transactionType": "buy",
		"estimatedValue":  "8500000",
		"area":            "1200",
		"ownerName":       "Ramesh Kumar",
		"userId":          "user-001",
	}
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Health", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/health", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var body map[string]string
		decodeBody(t, rec, &body)
		if body["status"] != "healthy" {
			t.Errorf("expected healthy status, got %q", body["status"])
		}
		if body["version"] != "test" {
			t.Errorf("expected test version, got %q", body["version"])
		}
	})

	t.Run("Ready", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/ready", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestSubmitProperty(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/properties", submission())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp PropertyResponse
	decodeBody(t, rec, &resp)

	if resp.Property == nil {
		t.Fatal("expected property in response")
	}
	if resp.Property.Name != "Test Villa" {
		t.Errorf("expected property name Test Villa, got %q", resp.Property.Name)
	}
	if resp.Property.EstimatedValue != 8500000 {
		t.Errorf("expected string estimatedValue to parse, got %v", resp.Property.EstimatedValue)
	}

	ar := resp.AuditResults
	if ar.OverallRiskScore < 0 || ar.OverallRiskScore > 100 {
		t.Errorf("overall risk score out of range: %d", ar.OverallRiskScore)
	}
	if ar.OverallRiskScore != ar.FraudScore {
		t.Errorf("overallRiskScore %d and fraudScore %d should agree", ar.OverallRiskScore, ar.FraudScore)
	}
	switch ar.RiskLevel {
	case "low", "medium", "high":
	default:
		t.Errorf("unexpected risk level %q", ar.RiskLevel)
	}
	if ar.ECStatus != domain.ECStatusForm15 && ar.ECStatus != domain.ECStatusForm16 {
		t.Errorf("unexpected EC status %q", ar.ECStatus)
	}

	if resp.Audit == nil || resp.Audit.TitleVerification == nil {
		t.Fatal("expected full audit bundle in response")
	}

	t.Run("DerivedRecordsRetrievable", func(t *testing.T) {
		id := resp.Property.ID
		for _, path := range []string{
			"/properties/" + id,
			"/properties/" + id + "/encumbrance",
			"/properties/" + id + "/title",
			"/properties/" + id + "/fraud",
			"/properties/" + id + "/land",
			"/properties/" + id + "/litigation",
			"/properties/" + id + "/documents",
		} {
			if got := env.do(t, http.MethodGet, path, nil); got.Code != http.StatusOK {
				t.Errorf("GET %s: expected 200, got %d", path, got.Code)
			}
		}
	})

	t.Run("MarketWindowCreated", func(t *testing.T) {
		got := env.do(t, http.MethodGet, "/market/Pune", nil)
		if got.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", got.Code)
		}
		var m domain.MarketIntelligence
		decodeBody(t, got, &m)
		if m.City != "Pune" {
			t.Errorf("expected Pune market record, got %q", m.City)
		}
	})
}

func TestSubmitPropertyValidation(t *testing.T) {
	env := newTestEnv(t)

	t.Run("MissingRequiredField", func(t *testing.T) {
		for _, field := range []string{
			"propertyName", "address", "city", "state",
			"propertyType", "transactionType", "userId",
		} {
			body := submission()
			delete(body, field)
			rec := env.do(t, http.MethodPost, "/properties", body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("missing %s: expected 400, got %d", field, rec.Code)
			}
		}
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/properties", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		env.server.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("NonNumericEstimatedValue", func(t *testing.T) {
		body := submission()
		body["estimatedValue"] = "eight lakhs"
		rec := env.do(t, http.MethodPost, "/properties", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("NumericValueAccepted", func(t *testing.T) {
		body := submission()
		body["estimatedValue"] = 8500000
		body["area"] = 1200
		rec := env.do(t, http.MethodPost, "/properties", body)
		if rec.Code != http.StatusCreated {
			t.Errorf("expected 201 for JSON numbers, got %d", rec.Code)
		}
	})
}

func TestLookupNotFound(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{
		"/properties/no-such-id",
		"/properties/no-such-id/title",
		"/properties/no-such-id/fraud",
		"/litigation/CASE-00000000-000000",
		"/market/Nowhere",
		"/rera/projects/P00000000000",
		"/developers/no-such-dev/audit",
	} {
		rec := env.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestLitigationEndpoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []*domain.LitigationCase{
		{
			ID: "lc-001", CaseNumber: "CASE-20250101-000001",
			Court: domain.CourtDistrict, State: "Maharashtra",
			PropertyAddress: "123 MG Road", PropertyID: "prop-001",
			OwnerName: "Ramesh Kumar", Plaintiff: "Ramesh Kumar", Defendant: "Suresh Patil",
			CaseType: domain.CaseTypeTitleDispute, FilingDate: time.Now().AddDate(-1, 0, 0),
			Status: domain.CaseStatusPending, Description: "Disputed sale deed",
			RiskLevel: domain.RiskCritical, CreatedAt: time.Now(),
		},
		{
			ID: "lc-002", CaseNumber: "CASE-20250102-000002",
			Court: domain.CourtHigh, State: "Karnataka",
			PropertyAddress: "9 Brigade Road", PropertyID: "prop-002",
			OwnerName: "Anita Shah", Plaintiff: "Bank of Baroda", Defendant: "Anita Shah",
			CaseType: domain.CaseTypeMortgageRecovery, FilingDate: time.Now().AddDate(0, -6, 0),
			Status: domain.CaseStatusPending, Description: "EMI default recovery",
			RiskLevel: domain.RiskMedium, CreatedAt: time.Now(),
		},
	}
	for _, c := range cases {
		if err := env.repo.SaveLitigationCase(ctx, c); err != nil {
			t.Fatalf("failed to seed litigation case: %v", err)
		}
	}

	t.Run("GetByCaseNumber", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/litigation/CASE-20250101-000001", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var c domain.LitigationCase
		decodeBody(t, rec, &c)
		if c.OwnerName != "Ramesh Kumar" {
			t.Errorf("unexpected owner %q", c.OwnerName)
		}
	})

	t.Run("ListByOwner", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/litigation?owner=Ramesh+Kumar", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var got []*domain.LitigationCase
		decodeBody(t, rec, &got)
		if len(got) != 1 {
			t.Errorf("expected 1 case for owner, got %d", len(got))
		}
	})

	t.Run("ListByState", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/litigation?state=Karnataka", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var got []*domain.LitigationCase
		decodeBody(t, rec, &got)
		if len(got) != 1 {
			t.Errorf("expected 1 case for state, got %d", len(got))
		}
	})

	t.Run("HighRiskOrdering", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/litigation/high-risk", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var got []*domain.LitigationCase
		decodeBody(t, rec, &got)
		if len(got) == 0 || got[0].RiskLevel != domain.RiskCritical {
			t.Errorf("expected critical case first, got %+v", got)
		}
	})

	t.Run("MissingQueryParams", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/litigation", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestDocumentVerification(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/documents/verify", map[string]string{
		"propertyId":     "prop-100",
		"documentType":   "sale_deed",
		"documentNumber": "SD-9001",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var doc domain.DocumentVerification
	decodeBody(t, rec, &doc)
	if doc.Authentic != (doc.ForgeryRisk == domain.ForgeryRiskLow) {
		t.Errorf("authentic flag should track forgery risk: %+v", doc)
	}

	t.Run("ListedForProperty", func(t *testing.T) {
		got := env.do(t, http.MethodGet, "/properties/prop-100/documents", nil)
		if got.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", got.Code)
		}
		var docs []*domain.DocumentVerification
		decodeBody(t, got, &docs)
		if len(docs) != 1 {
			t.Errorf("expected 1 document, got %d", len(docs))
		}
	})

	t.Run("MissingPropertyID", func(t *testing.T) {
		got := env.do(t, http.MethodPost, "/documents/verify", map[string]string{
			"documentType": "sale_deed",
		})
		if got.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", got.Code)
		}
	})
}

func TestReraProjects(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/rera/projects", map[string]any{
		"registrationNumber": "P52100012345",
		"projectName":        "Green Acres Phase II",
		"developerId":        "dev-001",
		"developerName":      "Sunrise Developers",
		"city":               "Pune",
		"state":              "Maharashtra",
		"totalUnits":         240,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	t.Run("GetByRegistrationNumber", func(t *testing.T) {
		got := env.do(t, http.MethodGet, "/rera/projects/P52100012345", nil)
		if got.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", got.Code)
		}
		var p domain.ReraProject
		decodeBody(t, got, &p)
		if p.ProjectName != "Green Acres Phase II" {
			t.Errorf("unexpected project name %q", p.ProjectName)
		}
	})

	t.Run("ListByState", func(t *testing.T) {
		got := env.do(t, http.MethodGet, "/rera/projects?state=Maharashtra", nil)
		if got.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", got.Code)
		}
		var projects []*domain.ReraProject
		decodeBody(t, got, &projects)
		if len(projects) != 1 {
			t.Errorf("expected 1 project, got %d", len(projects))
		}
	})

	t.Run("MissingState", func(t *testing.T) {
		got := env.do(t, http.MethodGet, "/rera/projects", nil)
		if got.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", got.Code)
		}
	})

	t.Run("MissingRequiredFields", func(t *testing.T) {
		got := env.do(t, http.MethodPost, "/rera/projects", map[string]string{
			"projectName": "No Registration",
		})
		if got.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", got.Code)
		}
	})
}

func TestDeveloperAudit(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/developers/dev-001/audit", map[string]string{
		"developerName": "Sunrise Developers",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var a domain.DeveloperAudit
	decodeBody(t, rec, &a)
	if a.ProjectsCompleted+a.ProjectsDelayed+a.ProjectsStalled != a.ProjectsTotal {
		t.Errorf("project counts should sum to total: %+v", a)
	}

	t.Run("Retrievable", func(t *testing.T) {
		got := env.do(t, http.MethodGet, "/developers/dev-001/audit", nil)
		if got.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", got.Code)
		}
	})

	t.Run("MissingDeveloperName", func(t *testing.T) {
		got := env.do(t, http.MethodPost, "/developers/dev-002/audit", map[string]string{})
		if got.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", got.Code)
		}
	})
}

func TestAlertRules(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/alert-rules", map[string]any{
		"name":       "pune-hot-market",
		"expression": `city == "Pune" && fraud_score > 40`,
		"severity":   "high",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	t.Run("Listed", func(t *testing.T) {
		got := env.do(t, http.MethodGet, "/alert-rules", nil)
		if got.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", got.Code)
		}
		var rules []*domain.AlertRule
		decodeBody(t, got, &rules)
		if len(rules) != 1 {
			t.Errorf("expected 1 stored rule, got %d", len(rules))
		}
	})

	t.Run("InvalidExpressionRejected", func(t *testing.T) {
		got := env.do(t, http.MethodPost, "/alert-rules", map[string]any{
			"name":       "broken",
			"expression": "fraud_score >",
		})
		if got.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for invalid expression, got %d", got.Code)
		}
	})

	t.Run("NonBooleanRejected", func(t *testing.T) {
		got := env.do(t, http.MethodPost, "/alert-rules", map[string]any{
			"name":       "not-a-predicate",
			"expression": "fraud_score + 1",
		})
		if got.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for non-boolean expression, got %d", got.Code)
		}
	})

	t.Run("Reload", func(t *testing.T) {
		got := env.do(t, http.MethodPost, "/alert-rules/reload", nil)
		if got.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", got.Code)
		}
		var body map[string]int
		decodeBody(t, got, &body)
		if body["reloaded"] != 1 {
			t.Errorf("expected 1 reloaded rule, got %d", body["reloaded"])
		}
	})
}
