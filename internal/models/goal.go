package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a user-declared savings or expense target. The engine reads it as
// input to the GOAL_PROGRESS validator and context analysis; the transactions
// service keeps CurrentAmount and LastContributionAt up to date.
type Goal struct {
	GoalID             string          `json:"goalId"`
	UID                string          `json:"uid"`
	Title              string          `json:"title"`
	TargetAmount       decimal.Decimal `json:"targetAmount"`
	CurrentAmount      decimal.Decimal `json:"currentAmount"`
	CategoryIDs        []string        `json:"categoryIds,omitempty"`
	Deadline           time.Time       `json:"deadline"`
	LastContributionAt *time.Time      `json:"lastContributionAt,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// Achieved reports whether the goal target has been reached.
func (g *Goal) Achieved() bool {
	return g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}

// ProgressPercent returns goal completion as a percentage, capped at 100.
func (g *Goal) ProgressPercent() decimal.Decimal {
	if g.TargetAmount.IsZero() {
		return decimal.Zero
	}
	pct := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100))
	hundred := decimal.NewFromInt(100)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}
