package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/models"
)

// indicatorThresholdValidator compares a current indicator against the
// mission target using the favorable direction per indicator: savings rate
// and reserve coverage must climb to the target, the debt ratio must fall
// under it.
type indicatorThresholdValidator struct {
	baseValidator
}

func (v *indicatorThresholdValidator) CalculateProgress(ctx context.Context) (dto.ProgressResult, error) {
	if !v.progress.Started() {
		return v.notStartedResult(), nil
	}

	snap, err := v.deps.indicators.Get(ctx, v.progress.UID)
	if err != nil {
		return dto.ProgressResult{}, err
	}

	var name string
	var current, target decimal.Decimal
	higherIsBetter := true

	switch v.mission.ValidationType {
	case models.ValidateDebtRatio:
		name = "debt_ratio"
		current = snap.DebtRatio
		target = v.mission.Targets.DebtRatio
		higherIsBetter = false
	case models.ValidateReserveCoverage:
		name = "reserve_coverage"
		current = snap.ReserveCoverage
		target = v.mission.Targets.ReserveMonths
	default:
		name = "savings_rate"
		current = snap.SavingsRate
		target = v.mission.Targets.SavingsRate
	}

	pct, completed := thresholdProgress(current, target, higherIsBetter)

	msg := fmt.Sprintf("%s at %s, target %s", name, current.StringFixed(2), target.StringFixed(2))
	if completed {
		msg = fmt.Sprintf("%s target reached (%s)", name, current.StringFixed(2))
	}

	return dto.ProgressResult{
		ProgressPercentage: pct,
		IsCompleted:        completed,
		Metrics: map[string]any{
			"indicator": name,
			"current":   current.InexactFloat64(),
			"target":    target.InexactFloat64(),
		},
		Message: msg,
	}, nil
}

// thresholdProgress maps current vs target to a percentage in the favorable
// direction. A zero target counts as already met.
func thresholdProgress(current, target decimal.Decimal, higherIsBetter bool) (float64, bool) {
	if target.IsZero() {
		return 100, true
	}

	if higherIsBetter {
		if current.GreaterThanOrEqual(target) {
			return 100, true
		}
		if current.IsNegative() {
			return 0, false
		}
		return clampPercent(current.Div(target).Mul(hundred).InexactFloat64()), false
	}

	// Lower is better: under or at the target is done, otherwise scale by
	// how close the current value is to dropping under it.
	if current.LessThanOrEqual(target) {
		return 100, true
	}
	return clampPercent(target.Div(current).Mul(hundred).InexactFloat64()), false
}
