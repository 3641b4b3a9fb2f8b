package services

import (
	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/models"
)

// Absolute guardrails on indicator targets, independent of tier.
var (
	maxSavingsRateTarget = decimal.NewFromInt(70)
	minDebtRatioTarget   = decimal.NewFromInt(5)
	maxReserveTarget     = decimal.NewFromInt(12)
	maxReductionPercent  = decimal.NewFromInt(60)
	minReductionPercent  = decimal.NewFromInt(5)
)

// Per-30-days headroom a target may demand beyond the tier baseline.
var (
	savingsGainPerMonth = decimal.NewFromInt(20)
	debtDropPerMonth    = decimal.NewFromInt(20)
	reserveGainPerMonth = decimal.NewFromInt(2)
)

func tierDefaults(tier dto.Tier) dto.TierDefaults {
	switch tier {
	case dto.TierAdvanced:
		return dto.TierDefaults{
			SavingsRate:     decimal.NewFromInt(25),
			DebtRatio:       decimal.NewFromInt(15),
			ReserveCoverage: decimal.NewFromInt(4),
		}
	case dto.TierIntermediate:
		return dto.TierDefaults{
			SavingsRate:     decimal.NewFromInt(15),
			DebtRatio:       decimal.NewFromInt(30),
			ReserveCoverage: decimal.NewFromInt(2),
		}
	default:
		return dto.TierDefaults{
			SavingsRate:     decimal.NewFromInt(5),
			DebtRatio:       decimal.NewFromInt(45),
			ReserveCoverage: decimal.New(5, -1),
		}
	}
}

// contextForTier synthesizes a UserContext from tier defaults, used when a
// batch is generated for a tier rather than a concrete user.
func contextForTier(tier dto.Tier) dto.UserContext {
	d := tierDefaults(tier)
	return dto.UserContext{
		Tier: tier,
		Indicators: dto.IndicatorSnapshot{
			SavingsRate:     d.SavingsRate,
			DebtRatio:       d.DebtRatio,
			ReserveCoverage: d.ReserveCoverage,
		},
	}
}

// checkViability decides whether a candidate is achievable-but-not-already-met
// for the given context. Returns a rejection reason code, or "" when viable.
func checkViability(c dto.MissionCandidate, uctx dto.UserContext) string {
	months := decimal.NewFromInt(int64(c.DurationDays)).Div(decimal.NewFromInt(30))

	switch c.ValidationType {
	case models.ValidateSavingsRate:
		target := c.Targets.SavingsRate
		if target.IsZero() {
			return dto.ReasonIncomplete
		}
		current := uctx.Indicators.SavingsRate
		if target.LessThanOrEqual(current) {
			return dto.ReasonNotViable
		}
		if target.GreaterThan(maxSavingsRateTarget) ||
			target.Sub(current).GreaterThan(savingsGainPerMonth.Mul(months)) {
			return dto.ReasonNotViable
		}

	case models.ValidateDebtRatio:
		target := c.Targets.DebtRatio
		if target.IsZero() {
			return dto.ReasonIncomplete
		}
		current := uctx.Indicators.DebtRatio
		if target.GreaterThanOrEqual(current) {
			return dto.ReasonNotViable
		}
		if target.LessThan(minDebtRatioTarget) ||
			current.Sub(target).GreaterThan(debtDropPerMonth.Mul(months)) {
			return dto.ReasonNotViable
		}

	case models.ValidateReserveCoverage:
		target := c.Targets.ReserveMonths
		if target.IsZero() {
			return dto.ReasonIncomplete
		}
		current := uctx.Indicators.ReserveCoverage
		if target.LessThanOrEqual(current) {
			return dto.ReasonNotViable
		}
		if target.GreaterThan(maxReserveTarget) ||
			target.Sub(current).GreaterThan(reserveGainPerMonth.Mul(months)) {
			return dto.ReasonNotViable
		}

	case models.ValidateCategoryCut:
		if c.Targets.CategoryID == "" || c.Targets.ReductionPercent.IsZero() {
			return dto.ReasonIncomplete
		}
		pct := c.Targets.ReductionPercent
		if pct.LessThan(minReductionPercent) || pct.GreaterThan(maxReductionPercent) {
			return dto.ReasonNotViable
		}

	case models.ValidateCategoryLimit:
		if c.Targets.CategoryID == "" || !c.Targets.SpendingLimit.IsPositive() {
			return dto.ReasonIncomplete
		}

	case models.ValidateGoalProgress:
		if !uctx.HasActiveGoals {
			return dto.ReasonNotViable
		}
		pct := c.Targets.GoalPercent
		if !pct.IsPositive() || pct.GreaterThan(decimal.NewFromInt(100)) {
			return dto.ReasonIncomplete
		}

	case models.ValidateTransactionCount:
		if c.Targets.TransactionCount <= 0 {
			return dto.ReasonIncomplete
		}

	case models.ValidateConsistency:
		freq := c.Targets.WeeklyFrequency
		if freq <= 0 {
			return dto.ReasonIncomplete
		}
		if freq > 21 {
			return dto.ReasonNotViable
		}

	case models.ValidateDiscipline:
		// Discipline missions track settlement links over the window; no
		// numeric target beyond the duration itself.

	default:
		return dto.ReasonIncomplete
	}

	return ""
}

// checkBounds enforces the reward/duration envelope for the candidate's
// difficulty, and structural completeness of the definition itself.
func checkBounds(c dto.MissionCandidate) string {
	if c.Title == "" || c.Description == "" || c.Type == "" || c.ValidationType == "" {
		return dto.ReasonIncomplete
	}
	bounds, ok := generationBounds[c.Difficulty]
	if !ok {
		return dto.ReasonIncomplete
	}
	if c.DurationDays < bounds.minDuration || c.DurationDays > bounds.maxDuration {
		return dto.ReasonDurationOutOfRange
	}
	if c.RewardPoints < bounds.minReward || c.RewardPoints > bounds.maxReward {
		return dto.ReasonRewardOutOfRange
	}
	return ""
}
