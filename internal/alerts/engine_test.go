package alerts

import (
	"testing"

	"github.com/propclear/propclear/internal/domain"
)

func summary(score, litigation int) *domain.AuditSummary {
	return &domain.AuditSummary{
		PropertyID:         "prop-001",
		City:               "Pune",
		State:              "Maharashtra",
		OverallFraudScore:  score,
		RiskLevel:          domain.RiskLevelForScore(score),
		ECStatus:           domain.ECStatusForm16,
		TitleStatus:        domain.TitleStatusClean,
		LandType:           domain.LandTypeResidential,
		LitigationCount:    litigation,
		MarketFraudRatePct: 2.0,
	}
}

func TestEngineEvaluate(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	rule := &domain.AlertRule{
		ID:         "ar-001",
		Name:       "high-fraud-score",
		Expression: "fraud_score > 60",
		Severity:   domain.RiskHigh,
		Enabled:    true,
	}
	if err := engine.LoadRule(rule); err != nil {
		t.Fatalf("LoadRule failed: %v", err)
	}

	t.Run("Match", func(t *testing.T) {
		alerts, err := engine.Evaluate(summary(75, 0))
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if len(alerts) != 1 {
			t.Fatalf("expected 1 alert, got %d", len(alerts))
		}
		if alerts[0].RuleName != "high-fraud-score" {
			t.Errorf("unexpected rule name: %s", alerts[0].RuleName)
		}
		if alerts[0].Severity != domain.RiskHigh {
			t.Errorf("unexpected severity: %s", alerts[0].Severity)
		}
		if alerts[0].FraudScore != 75 {
			t.Errorf("unexpected score: %d", alerts[0].FraudScore)
		}
	})

	t.Run("NoMatch", func(t *testing.T) {
		alerts, err := engine.Evaluate(summary(30, 0))
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if len(alerts) != 0 {
			t.Errorf("expected no alerts, got %d", len(alerts))
		}
	})

	t.Run("BoundaryNotMatched", func(t *testing.T) {
		alerts, err := engine.Evaluate(summary(60, 0))
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if len(alerts) != 0 {
			t.Errorf("strictly greater-than should not match 60, got %d alerts", len(alerts))
		}
	})
}

func TestEngineCompoundExpressions(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	rule := &domain.AlertRule{
		ID:         "ar-002",
		Name:       "encumbered-with-litigation",
		Expression: `ec_status == "form_15" && litigation_count > 0`,
		Severity:   domain.RiskCritical,
		Enabled:    true,
	}
	if err := engine.LoadRule(rule); err != nil {
		t.Fatalf("LoadRule failed: %v", err)
	}

	s := summary(45, 1)
	s.ECStatus = domain.ECStatusForm15

	alerts, err := engine.Evaluate(s)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}

	// Drop one conjunct, alert should not fire.
	s.LitigationCount = 0
	alerts, err = engine.Evaluate(s)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("expected no alerts, got %d", len(alerts))
	}
}

func TestEngineValidation(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	t.Run("InvalidSyntax", func(t *testing.T) {
		err := engine.ValidateRule(&domain.AlertRule{ID: "bad", Name: "bad", Expression: "fraud_score >"})
		if err == nil {
			t.Error("expected compile error for invalid syntax")
		}
	})

	t.Run("NonBoolOutput", func(t *testing.T) {
		err := engine.ValidateRule(&domain.AlertRule{ID: "bad", Name: "bad", Expression: "fraud_score + 1"})
		if err == nil {
			t.Error("expected error for non-bool expression")
		}
	})

	t.Run("UnknownVariable", func(t *testing.T) {
		err := engine.ValidateRule(&domain.AlertRule{ID: "bad", Name: "bad", Expression: "unknown_var > 1"})
		if err == nil {
			t.Error("expected error for unknown variable")
		}
	})

	t.Run("EmptyExpression", func(t *testing.T) {
		err := engine.ValidateRule(&domain.AlertRule{ID: "bad", Name: "bad"})
		if err == nil {
			t.Error("expected error for empty expression")
		}
	})
}

func TestLoadRulesReplacesSet(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	if err := engine.LoadRules(DefaultRules()); err != nil {
		t.Fatalf("LoadRules with defaults failed: %v", err)
	}
	if engine.RuleCount() != len(DefaultRules()) {
		t.Errorf("expected %d rules, got %d", len(DefaultRules()), engine.RuleCount())
	}

	replacement := []*domain.AlertRule{
		{ID: "only", Name: "only", Expression: "fraud_score > 90", Severity: domain.RiskHigh, Enabled: true},
		{ID: "off", Name: "off", Expression: "fraud_score > 10", Severity: domain.RiskLow, Enabled: false},
	}
	if err := engine.LoadRules(replacement); err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}
	if engine.RuleCount() != 1 {
		t.Errorf("disabled rules must not load; expected 1, got %d", engine.RuleCount())
	}
}
