package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/models"
)

// goalProgressValidator reads the user's linked goal: progress is the goal's
// own completion percentage, and the mission completes when that percentage
// reaches the mission's configured target.
type goalProgressValidator struct {
	baseValidator
}

func (v *goalProgressValidator) CalculateProgress(ctx context.Context) (dto.ProgressResult, error) {
	if !v.progress.Started() {
		return v.notStartedResult(), nil
	}

	goal, err := v.pickGoal(ctx)
	if err != nil {
		return dto.ProgressResult{}, err
	}
	if goal == nil {
		return dto.ProgressResult{
			ProgressPercentage: 0,
			IsCompleted:        false,
			Message:            "no active goal to track",
		}, nil
	}

	goalPct := goal.ProgressPercent()
	targetPct := v.mission.Targets.GoalPercent
	if targetPct.IsZero() {
		targetPct = hundred
	}

	pct := clampPercent(goalPct.InexactFloat64())
	completed := goalPct.GreaterThanOrEqual(targetPct)

	return dto.ProgressResult{
		ProgressPercentage: pct,
		IsCompleted:        completed,
		Metrics: map[string]any{
			"goal_id":        goal.GoalID,
			"goal_title":     goal.Title,
			"current_amount": goal.CurrentAmount.InexactFloat64(),
			"target_amount":  goal.TargetAmount.InexactFloat64(),
			"goal_percent":   goalPct.InexactFloat64(),
			"target_percent": targetPct.InexactFloat64(),
		},
		Message: fmt.Sprintf("goal %q at %s%% of its target", goal.Title, goalPct.StringFixed(2)),
	}, nil
}

// pickGoal prefers a goal linked to the mission's target category, falling
// back to the unachieved goal with the nearest deadline.
func (v *goalProgressValidator) pickGoal(ctx context.Context) (*models.Goal, error) {
	goals, err := v.deps.goals.ListGoals(ctx, v.progress.UID)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return nil, nil
	}

	if catID := v.mission.Targets.CategoryID; catID != "" {
		for i := range goals {
			for _, c := range goals[i].CategoryIDs {
				if c == catID {
					return &goals[i], nil
				}
			}
		}
	}

	pending := make([]models.Goal, 0, len(goals))
	for _, g := range goals {
		if !g.Achieved() {
			pending = append(pending, g)
		}
	}
	if len(pending) == 0 {
		return &goals[0], nil
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Deadline.Before(pending[j].Deadline)
	})
	return &pending[0], nil
}

// multiCriteriaValidator handles PAYMENT_DISCIPLINE and any unrecognized
// validation type: every criterion configured on the mission must
// individually pass, and progress is their average. With nothing configured
// it degrades to elapsed-time progress.
type multiCriteriaValidator struct {
	baseValidator
}

func (v *multiCriteriaValidator) CalculateProgress(ctx context.Context) (dto.ProgressResult, error) {
	if !v.progress.Started() {
		return v.notStartedResult(), nil
	}

	parts := v.criteria()
	if len(parts) == 0 {
		now := v.deps.clockNow()
		pct := clampPercent(v.elapsedRatio(now) * 100)
		return dto.ProgressResult{
			ProgressPercentage: pct,
			IsCompleted:        pct >= 100,
			Message:            fmt.Sprintf("%.0f%% of the mission period elapsed", pct),
		}, nil
	}

	var sum float64
	all := true
	metrics := map[string]any{}
	for name, ev := range parts {
		res, err := ev.CalculateProgress(ctx)
		if err != nil {
			return dto.ProgressResult{}, err
		}
		sum += res.ProgressPercentage
		all = all && res.IsCompleted
		metrics[name] = res.Metrics
	}

	pct := clampPercent(sum / float64(len(parts)))
	msg := fmt.Sprintf("%d criteria tracked, overall %.0f%%", len(parts), pct)
	if all {
		msg = "all criteria met"
	}

	return dto.ProgressResult{
		ProgressPercentage: pct,
		IsCompleted:        all,
		Metrics:            metrics,
		Message:            msg,
	}, nil
}

// criteria derives sub-validators from whichever targets the mission
// populates.
func (v *multiCriteriaValidator) criteria() map[string]ProgressEvaluator {
	t := v.mission.Targets
	parts := map[string]ProgressEvaluator{}

	if t.TransactionCount > 0 {
		parts["transaction_count"] = &transactionCountValidator{v.baseValidator}
	}
	if t.WeeklyFrequency > 0 {
		parts["consistency"] = &consistencyValidator{v.baseValidator}
	}
	if t.SpendingLimit.IsPositive() && t.CategoryID != "" {
		parts["category_limit"] = &categoryLimitValidator{v.baseValidator}
	}
	if t.DebtRatio.IsPositive() {
		debt := *v.mission
		debt.ValidationType = models.ValidateDebtRatio
		parts["debt_ratio"] = &indicatorThresholdValidator{baseValidator{
			mission: &debt, progress: v.progress, deps: v.deps,
		}}
	}
	if t.SavingsRate.IsPositive() {
		sav := *v.mission
		sav.ValidationType = models.ValidateSavingsRate
		parts["savings_rate"] = &indicatorThresholdValidator{baseValidator{
			mission: &sav, progress: v.progress, deps: v.deps,
		}}
	}

	return parts
}
