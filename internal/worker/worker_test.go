package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/propclear/propclear/internal/alerts"
	"github.com/propclear/propclear/internal/bus"
	"github.com/propclear/propclear/internal/domain"
)

func newTestWorker(t *testing.T, rules []*domain.AlertRule) (*Worker, *bus.ChannelBus) {
	t.Helper()

	engine, err := alerts.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if err := engine.LoadRules(rules); err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}

	b := bus.NewChannelBus(10)
	t.Cleanup(func() { b.Close() })

	w := NewWorker(b, engine)
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(w.Stop)

	return w, b
}

func publishSummary(t *testing.T, b *bus.ChannelBus, summary domain.AuditSummary) {
	t.Helper()
	payload, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := b.Publish(context.Background(), domain.TopicAuditCompleted, payload); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
}

func TestWorkerRaisesAlertOnMatch(t *testing.T) {
	rules := []*domain.AlertRule{{
		ID:         "ar-001",
		Name:       "high-fraud-score",
		Expression: "fraud_score > 60",
		Severity:   domain.RiskHigh,
		Enabled:    true,
	}}
	_, b := newTestWorker(t, rules)

	alertCh := make(chan *domain.Alert, 1)
	sub, err := b.Subscribe(context.Background(), domain.TopicFraudAlert, func(ctx context.Context, msg *domain.Message) error {
		var a domain.Alert
		if err := json.Unmarshal(msg.Payload, &a); err != nil {
			return err
		}
		alertCh <- &a
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	publishSummary(t, b, domain.AuditSummary{
		PropertyID:        "prop-001",
		City:              "Pune",
		OverallFraudScore: 85,
		RiskLevel:         "high",
		ECStatus:          domain.ECStatusForm15,
		TitleStatus:       domain.TitleStatusDisputed,
		LandType:          domain.LandTypeResidential,
	})

	select {
	case a := <-alertCh:
		if a.RuleName != "high-fraud-score" {
			t.Errorf("unexpected rule: %s", a.RuleName)
		}
		if a.PropertyID != "prop-001" {
			t.Errorf("unexpected property: %s", a.PropertyID)
		}
		if a.FraudScore != 85 {
			t.Errorf("unexpected score: %d", a.FraudScore)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for fraud alert")
	}
}

func TestWorkerIgnoresNonMatching(t *testing.T) {
	rules := []*domain.AlertRule{{
		ID:         "ar-001",
		Name:       "high-fraud-score",
		Expression: "fraud_score > 60",
		Severity:   domain.RiskHigh,
		Enabled:    true,
	}}
	_, b := newTestWorker(t, rules)

	got := make(chan struct{}, 1)
	sub, err := b.Subscribe(context.Background(), domain.TopicFraudAlert, func(ctx context.Context, msg *domain.Message) error {
		got <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	publishSummary(t, b, domain.AuditSummary{
		PropertyID:        "prop-002",
		OverallFraudScore: 12,
		RiskLevel:         "low",
	})

	select {
	case <-got:
		t.Fatal("unexpected alert for low score")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWorkerSkipsMalformedPayload(t *testing.T) {
	rules := []*domain.AlertRule{{
		ID:         "ar-001",
		Name:       "high-fraud-score",
		Expression: "fraud_score > 60",
		Severity:   domain.RiskHigh,
		Enabled:    true,
	}}
	_, b := newTestWorker(t, rules)

	if err := b.Publish(context.Background(), domain.TopicAuditCompleted, []byte("not json")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	// A bad payload must not wedge the worker; a good one after it
	// still gets processed.
	alertCh := make(chan struct{}, 1)
	sub, err := b.Subscribe(context.Background(), domain.TopicFraudAlert, func(ctx context.Context, msg *domain.Message) error {
		alertCh <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	publishSummary(t, b, domain.AuditSummary{PropertyID: "prop-003", OverallFraudScore: 99})

	select {
	case <-alertCh:
	case <-time.After(time.Second):
		t.Fatal("worker stopped processing after malformed payload")
	}
}
