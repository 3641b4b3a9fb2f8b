package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/models"
)

// difficultyBounds is the allowed reward/duration envelope per difficulty.
// Candidates from either source are rejected outside their tier's envelope.
type difficultyBounds struct {
	minReward, maxReward     int
	minDuration, maxDuration int
}

var generationBounds = map[models.Difficulty]difficultyBounds{
	models.DifficultyEasy:   {minReward: 50, maxReward: 150, minDuration: 5, maxDuration: 14},
	models.DifficultyMedium: {minReward: 100, maxReward: 300, minDuration: 10, maxDuration: 30},
	models.DifficultyHard:   {minReward: 200, maxReward: 500, minDuration: 21, maxDuration: 60},
}

func difficultyForTier(tier dto.Tier) models.Difficulty {
	switch tier {
	case dto.TierAdvanced:
		return models.DifficultyHard
	case dto.TierIntermediate:
		return models.DifficultyMedium
	default:
		return models.DifficultyEasy
	}
}

// templateOrder cycles mission types so a batch spreads across behaviors
// instead of colliding with its own near-identical titles.
var templateOrder = []models.MissionType{
	models.MissionSavings,
	models.MissionExpenseControl,
	models.MissionConsistency,
	models.MissionDebtReduction,
	models.MissionReserveBuilding,
	models.MissionGoalAchievement,
}

// expandTemplate produces the nth deterministic-given-rng candidate for the
// tier. Parameters are drawn within the tier's viable ranges so template
// output passes the same viability checks AI output must pass.
func expandTemplate(n int, tier dto.Tier, uctx dto.UserContext, randIntn func(int) int) dto.MissionCandidate {
	missionType := templateOrder[n%len(templateOrder)]
	// Goal missions are pointless without active goals; fall back to the
	// consistency template for that slot.
	if missionType == models.MissionGoalAchievement && !uctx.HasActiveGoals {
		missionType = models.MissionConsistency
	}

	difficulty := difficultyForTier(tier)
	bounds := generationBounds[difficulty]
	defaults := tierDefaults(tier)

	duration := bounds.minDuration + randIntn(bounds.maxDuration-bounds.minDuration+1)
	reward := bounds.minReward + randIntn(bounds.maxReward-bounds.minReward+1)

	c := dto.MissionCandidate{
		Type:         missionType,
		DurationDays: duration,
		RewardPoints: reward,
		Difficulty:   difficulty,
		Source:       models.SourceTemplate,
	}

	switch missionType {
	case models.MissionSavings:
		gain := decimal.NewFromInt(int64(3 + randIntn(8)))
		target := defaults.SavingsRate.Add(gain)
		c.ValidationType = models.ValidateSavingsRate
		c.Targets.SavingsRate = target
		c.Title = fmt.Sprintf("Push your savings rate to %s%%", target.StringFixed(0))
		c.Description = fmt.Sprintf("Keep your monthly spending low enough to save %s%% of your income for %d days.", target.StringFixed(0), duration)

	case models.MissionExpenseControl:
		categoryID := topSpendingCategory(uctx)
		if categoryID == "" {
			// Nothing to cut against; size the slot as a tracking mission.
			count := duration/3 + randIntn(5)
			c.ValidationType = models.ValidateTransactionCount
			c.Targets.TransactionCount = count
			c.Title = fmt.Sprintf("Record %d transactions in %d days", count, duration)
			c.Description = fmt.Sprintf("Log %d transactions before the deadline so your spending picture stays accurate.", count)
			break
		}
		cut := decimal.NewFromInt(int64(10 + randIntn(16)))
		c.ValidationType = models.ValidateCategoryCut
		c.Targets.ReductionPercent = cut
		c.Targets.CategoryID = categoryID
		c.Title = fmt.Sprintf("Cut your biggest spending category by %s%%", cut.StringFixed(0))
		c.Description = fmt.Sprintf("Spend %s%% less in your heaviest expense category than you did over the previous %d days.", cut.StringFixed(0), duration)

	case models.MissionConsistency:
		freq := 2 + randIntn(3)
		c.ValidationType = models.ValidateConsistency
		c.Targets.WeeklyFrequency = freq
		c.Title = fmt.Sprintf("Log %d transactions every week", freq)
		c.Description = fmt.Sprintf("Record at least %d transactions in each 7-day stretch for %d days to build the tracking habit.", freq, duration)

	case models.MissionDebtReduction:
		drop := decimal.NewFromInt(int64(5 + randIntn(8)))
		target := decimal.Max(defaults.DebtRatio.Sub(drop), minDebtRatioTarget)
		c.ValidationType = models.ValidateDebtRatio
		c.Targets.DebtRatio = target
		c.Title = fmt.Sprintf("Bring your debt ratio under %s%%", target.StringFixed(0))
		c.Description = fmt.Sprintf("Settle debts and keep new borrowing low so debt payments stay under %s%% of your income.", target.StringFixed(0))

	case models.MissionReserveBuilding:
		extra := decimal.New(int64(5+randIntn(11)), -1) // 0.5 .. 1.5 months
		target := defaults.ReserveCoverage.Add(extra)
		c.ValidationType = models.ValidateReserveCoverage
		c.Targets.ReserveMonths = target
		c.Title = fmt.Sprintf("Grow your reserve to %s months of essentials", target.StringFixed(1))
		c.Description = fmt.Sprintf("Move money into savings until your reserve covers %s months of essential expenses.", target.StringFixed(1))

	case models.MissionGoalAchievement:
		pct := decimal.NewFromInt(int64(50 + 10*randIntn(6)))
		c.ValidationType = models.ValidateGoalProgress
		c.Targets.GoalPercent = pct
		c.Title = fmt.Sprintf("Reach %s%% of a savings goal", pct.StringFixed(0))
		c.Description = fmt.Sprintf("Contribute toward one of your goals until it stands at %s%% of its target amount.", pct.StringFixed(0))
	}

	return c
}

func topSpendingCategory(uctx dto.UserContext) string {
	if len(uctx.TopCategories) > 0 {
		return uctx.TopCategories[0].CategoryID
	}
	return ""
}
