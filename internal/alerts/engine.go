// Package alerts provides the CEL-Go based alert rule engine.
package alerts

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/uuid"

	"github.com/propclear/propclear/internal/domain"
)

// Engine compiles operator-defined CEL expressions and evaluates them
// against completed audit summaries. Rules layer alerting on top of
// the fixed fraud weighting; they never change the score itself.
type Engine struct {
	mu       sync.RWMutex
	env      *cel.Env
	compiled map[string]*compiledRule
}

type compiledRule struct {
	rule    *domain.AlertRule
	program cel.Program
}

// NewEngine creates an alert rule engine with the audit summary
// variables bound into the CEL environment.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("fraud_score", cel.IntType),
		cel.Variable("litigation_count", cel.IntType),
		cel.Variable("ec_status", cel.StringType),
		cel.Variable("title_status", cel.StringType),
		cel.Variable("risk_level", cel.StringType),
		cel.Variable("land_type", cel.StringType),
		cel.Variable("market_fraud_rate", cel.DoubleType),
		cel.Variable("city", cel.StringType),
		cel.Variable("state", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{
		env:      env,
		compiled: make(map[string]*compiledRule),
	}, nil
}

// ValidateRule compiles a rule without loading it.
func (e *Engine) ValidateRule(rule *domain.AlertRule) error {
	if rule == nil {
		return fmt.Errorf("alert rule is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	_, err := e.compile(rule)
	return err
}

// LoadRule compiles and loads a rule into the engine.
func (e *Engine) LoadRule(rule *domain.AlertRule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	compiled, err := e.compile(rule)
	if err != nil {
		return err
	}

	e.compiled[rule.ID] = compiled
	return nil
}

// LoadRules replaces the loaded rule set with the enabled rules given.
func (e *Engine) LoadRules(rules []*domain.AlertRule) error {
	next := make(map[string]*compiledRule, len(rules))

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		compiled, err := e.compile(rule)
		if err != nil {
			return fmt.Errorf("rule %s: %w", rule.Name, err)
		}
		next[rule.ID] = compiled
	}

	e.compiled = next
	return nil
}

// RuleCount returns the number of loaded rules.
func (e *Engine) RuleCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.compiled)
}

// Evaluate runs every loaded rule against an audit summary and returns
// one alert per matching rule.
func (e *Engine) Evaluate(summary *domain.AuditSummary) ([]*domain.Alert, error) {
	if summary == nil {
		return nil, fmt.Errorf("audit summary is required")
	}

	e.mu.RLock()
	rules := make([]*compiledRule, 0, len(e.compiled))
	for _, r := range e.compiled {
		rules = append(rules, r)
	}
	e.mu.RUnlock()

	activation := map[string]any{
		"fraud_score":       int64(summary.OverallFraudScore),
		"litigation_count":  int64(summary.LitigationCount),
		"ec_status":         string(summary.ECStatus),
		"title_status":      string(summary.TitleStatus),
		"risk_level":        summary.RiskLevel,
		"land_type":         string(summary.LandType),
		"market_fraud_rate": summary.MarketFraudRatePct,
		"city":              summary.City,
		"state":             summary.State,
	}

	alerts := []*domain.Alert{}
	for _, r := range rules {
		out, _, err := r.program.Eval(activation)
		if err != nil {
			return nil, fmt.Errorf("rule %s evaluation failed: %w", r.rule.Name, err)
		}

		matched, ok := out.(types.Bool)
		if !ok || !bool(matched) {
			continue
		}

		alerts = append(alerts, &domain.Alert{
			ID:          uuid.New().String(),
			RuleID:      r.rule.ID,
			RuleName:    r.rule.Name,
			Severity:    r.rule.Severity,
			PropertyID:  summary.PropertyID,
			City:        summary.City,
			FraudScore:  summary.OverallFraudScore,
			TriggeredAt: time.Now().UTC(),
		})
	}

	return alerts, nil
}

// compile checks an expression and builds its program. Expressions must
// produce a boolean.
func (e *Engine) compile(rule *domain.AlertRule) (*compiledRule, error) {
	if rule.Expression == "" {
		return nil, fmt.Errorf("expression is required")
	}

	ast, issues := e.env.Compile(rule.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid expression: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("expression must evaluate to bool, got %s", ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build program: %w", err)
	}

	return &compiledRule{rule: rule, program: program}, nil
}
