package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/models"
)

// ProgressEvaluator measures a user's progress toward one mission instance.
// Implementations never treat "mission not yet started" as an error: an
// unstarted mission reports zero progress.
type ProgressEvaluator interface {
	CalculateProgress(ctx context.Context) (dto.ProgressResult, error)
}

// ValidateCompletion runs the evaluator and reduces the result to the
// completion flag and its human-readable status line.
func ValidateCompletion(ctx context.Context, ev ProgressEvaluator) (bool, string, error) {
	res, err := ev.CalculateProgress(ctx)
	if err != nil {
		return false, "", err
	}
	return res.IsCompleted, res.Message, nil
}

type validatorGoalStore interface {
	ListGoals(ctx context.Context, uid string) ([]models.Goal, error)
}

type indicatorProvider interface {
	Get(ctx context.Context, uid string) (dto.IndicatorSnapshot, error)
}

// validatorDeps bundles the read-only collaborators every strategy may need.
type validatorDeps struct {
	txs        indicatorTxStore
	goals      validatorGoalStore
	indicators indicatorProvider
	clockNow   func() time.Time
}

// newEvaluator selects the strategy for the mission's validation type. An
// unrecognized or legacy value falls back to the generic multi-criteria
// validator rather than failing.
func newEvaluator(mission *models.Mission, progress *models.MissionProgress, deps validatorDeps) ProgressEvaluator {
	base := baseValidator{mission: mission, progress: progress, deps: deps}

	switch mission.ValidationType {
	case models.ValidateTransactionCount:
		return &transactionCountValidator{base}
	case models.ValidateSavingsRate, models.ValidateDebtRatio, models.ValidateReserveCoverage:
		return &indicatorThresholdValidator{base}
	case models.ValidateCategoryCut:
		return &categoryReductionValidator{base}
	case models.ValidateCategoryLimit:
		return &categoryLimitValidator{base}
	case models.ValidateGoalProgress:
		return &goalProgressValidator{base}
	case models.ValidateConsistency:
		return &consistencyValidator{base}
	default:
		return &multiCriteriaValidator{base}
	}
}

type baseValidator struct {
	mission  *models.Mission
	progress *models.MissionProgress
	deps     validatorDeps
}

// notStartedResult is the universal answer for a mission without a start
// point.
func (b *baseValidator) notStartedResult() dto.ProgressResult {
	return dto.ProgressResult{
		ProgressPercentage: 0,
		IsCompleted:        false,
		Message:            "mission not started yet",
	}
}

// elapsedRatio returns elapsed/duration in [0,1].
func (b *baseValidator) elapsedRatio(now time.Time) float64 {
	if b.progress.StartedAt == nil || b.mission.DurationDays <= 0 {
		return 0
	}
	elapsed := now.Sub(*b.progress.StartedAt)
	total := time.Duration(b.mission.DurationDays) * 24 * time.Hour
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= total {
		return 1
	}
	return float64(elapsed) / float64(total)
}

// countTransactions counts non-deleted ledger rows dated in [from, to].
func (b *baseValidator) countTransactions(ctx context.Context, from, to time.Time) (int, error) {
	txCh, errCh := b.deps.txs.Query(ctx, b.progress.UID, dto.TransactionQuery{
		DateFrom: &from,
		DateTo:   &to,
	})

	count := 0
	err := streamTransactions(txCh, errCh, func(tx *models.Transaction) error {
		if !tx.Deleted() {
			count++
		}
		return nil
	})
	return count, err
}

// categoryExpense sums expense amounts for one category over [from, to].
func (b *baseValidator) categoryExpense(ctx context.Context, categoryID string, from, to time.Time) (decimal.Decimal, error) {
	expense := models.TransactionExpense
	txCh, errCh := b.deps.txs.Query(ctx, b.progress.UID, dto.TransactionQuery{
		Type:       &expense,
		CategoryID: &categoryID,
		DateFrom:   &from,
		DateTo:     &to,
	})

	var total decimal.Decimal
	err := streamTransactions(txCh, errCh, func(tx *models.Transaction) error {
		if !tx.Deleted() {
			total = total.Add(tx.Amount)
		}
		return nil
	})
	return total, err
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
