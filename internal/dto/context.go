package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/models"
)

// Tier is a coarse user segment used to pick default context values and
// difficulty-appropriate generation ranges.
type Tier string

const (
	TierBeginner     Tier = "BEGINNER"
	TierIntermediate Tier = "INTERMEDIATE"
	TierAdvanced     Tier = "ADVANCED"
)

// AtRiskIndicator names an indicator currently on the wrong side of the
// user's target.
type AtRiskIndicator string

const (
	RiskSavingsRate     AtRiskIndicator = "SAVINGS_RATE"
	RiskDebtRatio       AtRiskIndicator = "DEBT_RATIO"
	RiskReserveCoverage AtRiskIndicator = "RESERVE_COVERAGE"
)

// CategorySpend is a category's recent expense total.
type CategorySpend struct {
	CategoryID string               `json:"categoryId"`
	Name       string               `json:"name"`
	Group      models.CategoryGroup `json:"group"`
	Total      decimal.Decimal      `json:"total"`
	Count      int                  `json:"count"`
}

// CategoryGrowth flags a category whose trailing-30-day spend grew beyond the
// growth threshold relative to the preceding 30 days.
type CategoryGrowth struct {
	CategoryID    string          `json:"categoryId"`
	Name          string          `json:"name"`
	Previous      decimal.Decimal `json:"previous"`
	Current       decimal.Decimal `json:"current"`
	GrowthPercent decimal.Decimal `json:"growthPercent"`
}

// UserContext is the analyzed situation feeding mission prioritization and
// generation viability checks.
type UserContext struct {
	UID                  string               `json:"uid"`
	Tier                 Tier                 `json:"tier"`
	Level                int                  `json:"level"`
	Indicators           IndicatorSnapshot    `json:"indicators"`
	RecentTransactions   []models.Transaction `json:"recentTransactions"`
	TopCategories        []CategorySpend      `json:"topCategories"`
	GoalsNearingDeadline []models.Goal        `json:"goalsNearingDeadline"`
	StagnantGoals        []models.Goal        `json:"stagnantGoals"`
	HasActiveGoals       bool                 `json:"hasActiveGoals"`
	AtRiskIndicators     []AtRiskIndicator    `json:"atRiskIndicators"`
	SpendingGrowth       []CategoryGrowth     `json:"spendingGrowth"`
	AnalyzedAt           time.Time            `json:"analyzedAt"`
}

// AtRisk reports whether the given indicator was flagged.
func (c *UserContext) AtRisk(ind AtRiskIndicator) bool {
	for _, r := range c.AtRiskIndicators {
		if r == ind {
			return true
		}
	}
	return false
}
