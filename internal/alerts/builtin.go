package alerts

import (
	"time"

	"github.com/google/uuid"

	"github.com/propclear/propclear/internal/domain"
)

// DefaultRules returns the seed alert rules installed on first boot.
// Operators can disable or replace them through the alert-rules API.
func DefaultRules() []*domain.AlertRule {
	now := time.Now().UTC()

	rule := func(name, description, expression string, severity domain.RiskLevel) *domain.AlertRule {
		return &domain.AlertRule{
			ID:          uuid.New().String(),
			Name:        name,
			Description: description,
			Expression:  expression,
			Severity:    severity,
			Enabled:     true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	return []*domain.AlertRule{
		rule(
			"high-fraud-score",
			"Overall fraud score in the manual review band",
			"fraud_score > 60",
			domain.RiskHigh,
		),
		rule(
			"encumbered-with-litigation",
			"Encumbered certificate combined with fresh litigation",
			`ec_status == "form_15" && litigation_count > 0`,
			domain.RiskCritical,
		),
		rule(
			"disputed-title",
			"Title verification came back disputed or unclear",
			`title_status == "disputed" || title_status == "unclear"`,
			domain.RiskMedium,
		),
		rule(
			"hot-market-fraud",
			"Audit in a city whose market fraud rate is elevated",
			"market_fraud_rate > 4.0 && fraud_score > 40",
			domain.RiskHigh,
		),
	}
}
