//go:build integration
// +build integration

// Package integration provides end-to-end tests for the PropClear due
// diligence engine.
//
// These tests verify the COMPLETE audit pipeline:
//
//	Submission → Registry Lookups → Fraud Analysis → Stored Bundle
//
// Run with: go test -tags=integration -v ./tests/integration/...
//
// UNDERSTANDING THE DOMAIN:
//
// 1. SUBMISSION: A property a buyer wants vetted before purchase.
//
// 2. AUDIT: One comprehensive pass that gathers, per property:
//   - Encumbrance certificate (form_15 = encumbered, form_16 = clear)
//   - Title verification with ownership chain
//   - Land record with acreage and classification
//   - Litigation cases touching the property or owner
//
// 3. FRAUD SCORE: Weighted aggregate in [0, 100]. A score above 50
//    recommends manual review; the riskLevel field buckets the same
//    score for dashboards (>60 high, >=30 medium, else low).
//
// 4. MARKET INTELLIGENCE: One shared snapshot per (city, month),
//    created lazily by the first audit in that window.
//
// The server must be running with a clean database for the market
// window assertions to hold.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

// TestConfig holds test environment configuration
type TestConfig struct {
	BaseURL string
}

func getTestConfig() TestConfig {
	baseURL := os.Getenv("PROPCLEAR_TEST_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return TestConfig{BaseURL: baseURL}
}

// ============================================================================
// API Request/Response Types (matching PropClear's API contract)
// ============================================================================

// PropertyRequest is the submission sent to POST /properties
type PropertyRequest struct {
	PropertyName    string `json:"propertyName"`
	Address         string `json:"address"`
	City            string `json:"city"`
	State           string `json:"state"`
	Pincode         string `json:"pincode,omitempty"`
	PropertyType    string `json:"propertyType"`
	TransactionType string `json:"transactionType"`
	EstimatedValue  string `json:"estimatedValue,omitempty"`
	Area            string `json:"area,omitempty"`
	OwnerName       string `json:"ownerName,omitempty"`
	UserID          string `json:"userId"`
}

// AuditResults is the flattened summary in the submission response
type AuditResults struct {
	OverallRiskScore int    `json:"overallRiskScore"`
	RiskLevel        string `json:"riskLevel"`
	ECStatus         string `json:"ecStatus"`
	FraudScore       int    `json:"fraudScore"`
	LitigationCount  int    `json:"litigationCount"`
}

// PropertyResponse is what POST /properties returns
type PropertyResponse struct {
	Property struct {
		ID             string  `json:"id"`
		Name           string  `json:"propertyName"`
		City           string  `json:"city"`
		EstimatedValue float64 `json:"estimatedValue"`
	} `json:"property"`
	AuditResults AuditResults `json:"auditResults"`
	Audit        struct {
		EncumbranceCertificate struct {
			SurveyNumber string `json:"surveyNumber"`
			Status       string `json:"status"`
			Encumbrances []struct {
				Type   string  `json:"type"`
				Amount float64 `json:"amount"`
			} `json:"encumbrances"`
		} `json:"encumbranceCertificate"`
		TitleVerification struct {
			Status         string `json:"status"`
			OwnershipChain []struct {
				Owner string `json:"owner"`
			} `json:"ownershipChain"`
			YearsVerified int      `json:"yearsVerified"`
			RedFlags      []string `json:"redFlags"`
		} `json:"titleVerification"`
		FraudScore struct {
			OverallFraudScore int      `json:"overallFraudScore"`
			Recommendation    string   `json:"recommendation"`
			Flags             []string `json:"flags"`
		} `json:"fraudScore"`
		LandRecord struct {
			LandType  string  `json:"landType"`
			AreaAcres float64 `json:"areaAcres"`
		} `json:"landRecord"`
	} `json:"audit"`
}

// ============================================================================
// Test Helper Functions
// ============================================================================

func submitProperty(t *testing.T, config TestConfig, req PropertyRequest) PropertyResponse {
	t.Helper()

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, config.BaseURL+"/properties", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var result PropertyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return result
}

func getJSON(t *testing.T, config TestConfig, path string, out any) int {
	t.Helper()

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(config.BaseURL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode %s response: %v", path, err)
		}
	}
	return resp.StatusCode
}

func requireServer(t *testing.T, config TestConfig) {
	t.Helper()
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(config.BaseURL + "/health")
	if err != nil {
		t.Skipf("PropClear not reachable at %s: %v", config.BaseURL, err)
	}
	resp.Body.Close()
}

func testSubmission(name string) PropertyRequest {
	return PropertyRequest{
		PropertyName:    name,
		Address:         "123 MG Road",
		City:            "Pune",
		State:           "Maharashtra",
		Pincode:         "411001",
		PropertyType:    "VILLA",
		TransactionType: "buy",
		EstimatedValue:  "8500000",
		Area:            "1200",
		OwnerName:       "Ramesh Kumar",
		UserID:          "integration-user",
	}
}

// ============================================================================
// Tests
// ============================================================================

func TestComprehensiveAudit(t *testing.T) {
	config := getTestConfig()
	requireServer(t, config)

	resp := submitProperty(t, config, testSubmission("Integration Villa"))

	t.Run("PropertyIsEnriched", func(t *testing.T) {
		if resp.Property.ID == "" {
			t.Error("expected a property id")
		}
		if resp.Audit.EncumbranceCertificate.SurveyNumber == "" {
			t.Error("expected a survey number on the encumbrance certificate")
		}
		if resp.Property.EstimatedValue != 8500000 {
			t.Errorf("expected estimatedValue 8500000, got %v", resp.Property.EstimatedValue)
		}
	})

	t.Run("AuditResultsAreConsistent", func(t *testing.T) {
		ar := resp.AuditResults
		if ar.OverallRiskScore < 0 || ar.OverallRiskScore > 100 {
			t.Errorf("score out of range: %d", ar.OverallRiskScore)
		}
		if ar.OverallRiskScore != resp.Audit.FraudScore.OverallFraudScore {
			t.Errorf("summary score %d disagrees with bundle score %d",
				ar.OverallRiskScore, resp.Audit.FraudScore.OverallFraudScore)
		}

		wantLevel := "low"
		switch {
		case ar.OverallRiskScore > 60:
			wantLevel = "high"
		case ar.OverallRiskScore >= 30:
			wantLevel = "medium"
		}
		if ar.RiskLevel != wantLevel {
			t.Errorf("score %d should bucket to %s, got %s", ar.OverallRiskScore, wantLevel, ar.RiskLevel)
		}
	})

	t.Run("EncumbranceStatusMatchesRecords", func(t *testing.T) {
		ec := resp.Audit.EncumbranceCertificate
		encumbered := len(ec.Encumbrances) > 0
		if encumbered && ec.Status != "form_15" {
			t.Errorf("encumbrances present but status %s", ec.Status)
		}
		if !encumbered && ec.Status != "form_16" {
			t.Errorf("no encumbrances but status %s", ec.Status)
		}
	})

	t.Run("TitleChainAndWindow", func(t *testing.T) {
		tv := resp.Audit.TitleVerification
		if len(tv.OwnershipChain) == 0 {
			t.Error("expected an ownership chain")
		}
		if tv.YearsVerified < 10 || tv.YearsVerified > 30 {
			t.Errorf("yearsVerified out of range: %d", tv.YearsVerified)
		}
		if tv.Status == "clean" && len(tv.RedFlags) > 0 {
			t.Errorf("clean title should carry no red flags, got %v", tv.RedFlags)
		}
	})

	t.Run("RecommendationFollowsThreshold", func(t *testing.T) {
		fs := resp.Audit.FraudScore
		want := "Low risk - Proceed with caution"
		if fs.OverallFraudScore > 50 {
			want = "High risk - Manual review required"
		}
		if fs.Recommendation != want {
			t.Errorf("score %d: expected %q, got %q", fs.OverallFraudScore, want, fs.Recommendation)
		}
	})

	t.Run("DerivedRecordsRetrievable", func(t *testing.T) {
		id := resp.Property.ID
		for _, path := range []string{
			"/properties/" + id,
			"/properties/" + id + "/encumbrance",
			"/properties/" + id + "/title",
			"/properties/" + id + "/fraud",
			"/properties/" + id + "/land",
		} {
			if code := getJSON(t, config, path, nil); code != http.StatusOK {
				t.Errorf("GET %s: expected 200, got %d", path, code)
			}
		}
	})
}

func TestMarketWindowIsShared(t *testing.T) {
	config := getTestConfig()
	requireServer(t, config)

	first := submitProperty(t, config, testSubmission("Market Window A"))
	second := submitProperty(t, config, testSubmission("Market Window B"))
	if first.Property.City != second.Property.City {
		t.Fatal("both submissions should land in the same city")
	}

	var m struct {
		ID        string `json:"id"`
		City      string `json:"city"`
		MonthYear string `json:"monthYear"`
	}
	if code := getJSON(t, config, "/market/Pune", &m); code != http.StatusOK {
		t.Fatalf("expected market snapshot, got %d", code)
	}
	if m.City != "Pune" {
		t.Errorf("unexpected market city %q", m.City)
	}
	if want := time.Now().UTC().Format("2006-01"); m.MonthYear != want {
		t.Errorf("expected current window %s, got %s", want, m.MonthYear)
	}
}

func TestDocumentVerificationFeedsAudit(t *testing.T) {
	config := getTestConfig()
	requireServer(t, config)

	resp := submitProperty(t, config, testSubmission("Document Feed Villa"))
	id := resp.Property.ID

	body, _ := json.Marshal(map[string]string{
		"propertyId":     id,
		"documentType":   "sale_deed",
		"documentNumber": fmt.Sprintf("SD-%d", time.Now().UnixNano()),
	})
	httpResp, err := http.Post(config.BaseURL+"/documents/verify", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("document verify failed: %v", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", httpResp.StatusCode)
	}

	var docs []struct {
		DocumentType string `json:"documentType"`
	}
	if code := getJSON(t, config, "/properties/"+id+"/documents", &docs); code != http.StatusOK {
		t.Fatalf("expected 200 listing documents, got %d", code)
	}
	if len(docs) == 0 {
		t.Error("expected the verification on record")
	}
}

func TestAlertRuleLifecycle(t *testing.T) {
	config := getTestConfig()
	requireServer(t, config)

	ruleName := fmt.Sprintf("integration-rule-%d", time.Now().UnixNano())
	body, _ := json.Marshal(map[string]any{
		"name":       ruleName,
		"expression": "fraud_score > 95 && litigation_count > 3",
		"severity":   "critical",
	})
	resp, err := http.Post(config.BaseURL+"/alert-rules", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("create rule failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var rules []struct {
		Name string `json:"name"`
	}
	if code := getJSON(t, config, "/alert-rules", &rules); code != http.StatusOK {
		t.Fatalf("expected 200 listing rules, got %d", code)
	}
	found := false
	for _, r := range rules {
		if r.Name == ruleName {
			found = true
		}
	}
	if !found {
		t.Errorf("created rule %s not listed", ruleName)
	}

	reload, err := http.Post(config.BaseURL+"/alert-rules/reload", "application/json", nil)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	reload.Body.Close()
	if reload.StatusCode != http.StatusOK {
		t.Errorf("expected 200 on reload, got %d", reload.StatusCode)
	}
}
