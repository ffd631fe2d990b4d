// Package worker provides async alert evaluation over the event bus.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/propclear/propclear/internal/alerts"
	"github.com/propclear/propclear/internal/domain"
)

// Worker consumes completed audit summaries, evaluates the loaded
// alert rules and publishes a fraud alert for every match.
type Worker struct {
	bus    domain.EventBus
	engine *alerts.Engine

	subscription domain.Subscription
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewWorker creates an alert worker.
func NewWorker(bus domain.EventBus, engine *alerts.Engine) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:    bus,
		engine: engine,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the audit completed topic.
func (w *Worker) Start() error {
	sub, err := w.bus.Subscribe(w.ctx, domain.TopicAuditCompleted, w.handleAuditCompleted)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	w.subscription = sub

	slog.Info("alert worker started",
		"topic", domain.TopicAuditCompleted,
		"rules_loaded", w.engine.RuleCount(),
	)
	return nil
}

// Stop unsubscribes and stops processing.
func (w *Worker) Stop() {
	w.cancel()
	if w.subscription != nil {
		_ = w.subscription.Unsubscribe()
	}
	slog.Info("alert worker stopped")
}

func (w *Worker) handleAuditCompleted(ctx context.Context, msg *domain.Message) error {
	start := time.Now()

	var summary domain.AuditSummary
	if err := json.Unmarshal(msg.Payload, &summary); err != nil {
		slog.Error("failed to unmarshal audit summary",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	matched, err := w.engine.Evaluate(&summary)
	if err != nil {
		slog.Error("alert evaluation failed",
			"property_id", summary.PropertyID,
			"error", err,
		)
		return err
	}

	for _, alert := range matched {
		w.publishAlert(ctx, alert)
	}

	slog.Debug("audit summary processed",
		"property_id", summary.PropertyID,
		"fraud_score", summary.OverallFraudScore,
		"alerts", len(matched),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (w *Worker) publishAlert(ctx context.Context, alert *domain.Alert) {
	payload, err := json.Marshal(alert)
	if err != nil {
		slog.Error("failed to marshal alert", "rule", alert.RuleName, "error", err)
		return
	}

	if err := w.bus.Publish(ctx, domain.TopicFraudAlert, payload); err != nil {
		slog.Warn("failed to publish fraud alert",
			"rule", alert.RuleName,
			"property_id", alert.PropertyID,
			"error", err,
		)
		return
	}

	slog.Info("fraud alert raised",
		"rule", alert.RuleName,
		"severity", alert.Severity,
		"property_id", alert.PropertyID,
		"fraud_score", alert.FraudScore,
	)
}
