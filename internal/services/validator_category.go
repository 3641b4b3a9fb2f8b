package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/dto"
)

// categoryReductionValidator compares spend in the target category over the
// reference window (the duration-days window immediately preceding mission
// start, captured in the baseline) against the window running since start.
type categoryReductionValidator struct {
	baseValidator
}

func (v *categoryReductionValidator) CalculateProgress(ctx context.Context) (dto.ProgressResult, error) {
	if !v.progress.Started() {
		return v.notStartedResult(), nil
	}

	reference := v.progress.Baseline.CategorySpend
	targetPct := v.mission.Targets.ReductionPercent

	now := v.deps.clockNow()
	current, err := v.categoryExpense(ctx, v.mission.Targets.CategoryID, *v.progress.StartedAt, now)
	if err != nil {
		return dto.ProgressResult{}, err
	}

	var reductionPct decimal.Decimal
	if reference.IsPositive() {
		reductionPct = reference.Sub(current).Div(reference).Mul(hundred).Round(2)
	}

	var pct float64
	if targetPct.IsPositive() {
		pct = clampPercent(reductionPct.Div(targetPct).Mul(hundred).InexactFloat64())
	}
	completed := reference.IsPositive() && reductionPct.GreaterThanOrEqual(targetPct)
	if completed {
		pct = 100
	}

	msg := fmt.Sprintf("spending cut by %s%%, target %s%%", reductionPct.StringFixed(2), targetPct.StringFixed(2))
	if !reference.IsPositive() {
		msg = "no reference spending to reduce"
	}

	return dto.ProgressResult{
		ProgressPercentage: pct,
		IsCompleted:        completed,
		Metrics: map[string]any{
			"category_id":       v.mission.Targets.CategoryID,
			"reference_spend":   reference.InexactFloat64(),
			"current_spend":     current.InexactFloat64(),
			"reduction_percent": reductionPct.InexactFloat64(),
			"target_percent":    targetPct.InexactFloat64(),
		},
		Message: msg,
	}, nil
}

// categoryLimitValidator tracks cumulative spend in the target category since
// start. Progress is elapsed-time based while under the limit; crossing the
// limit pins progress to zero for the rest of the mission.
type categoryLimitValidator struct {
	baseValidator
}

func (v *categoryLimitValidator) CalculateProgress(ctx context.Context) (dto.ProgressResult, error) {
	if !v.progress.Started() {
		return v.notStartedResult(), nil
	}

	limit := v.mission.Targets.SpendingLimit
	now := v.deps.clockNow()

	spent, err := v.categoryExpense(ctx, v.mission.Targets.CategoryID, *v.progress.StartedAt, now)
	if err != nil {
		return dto.ProgressResult{}, err
	}

	metrics := map[string]any{
		"category_id": v.mission.Targets.CategoryID,
		"spent":       spent.InexactFloat64(),
		"limit":       limit.InexactFloat64(),
	}

	if spent.GreaterThan(limit) {
		metrics["over_limit"] = true
		return dto.ProgressResult{
			ProgressPercentage: 0,
			IsCompleted:        false,
			Metrics:            metrics,
			Message: fmt.Sprintf("spending limit exceeded (%s over %s)",
				spent.StringFixed(2), limit.StringFixed(2)),
		}, nil
	}

	elapsed := v.elapsedRatio(now)
	pct := clampPercent(elapsed * 100)
	completed := elapsed >= 1

	metrics["over_limit"] = false
	metrics["elapsed_percent"] = pct

	msg := fmt.Sprintf("under the limit with %.0f%% of the period elapsed", pct)
	if completed {
		msg = "stayed under the spending limit for the whole period"
	}

	return dto.ProgressResult{
		ProgressPercentage: pct,
		IsCompleted:        completed,
		Metrics:            metrics,
		Message:            msg,
	}, nil
}
