package services

import (
	"context"
	"fmt"

	"github.com/Marcos1701/finquest-backend/internal/dto"
)

// transactionCountValidator: progress is the share of the target transaction
// count logged since the mission started.
type transactionCountValidator struct {
	baseValidator
}

func (v *transactionCountValidator) CalculateProgress(ctx context.Context) (dto.ProgressResult, error) {
	if !v.progress.Started() {
		return v.notStartedResult(), nil
	}

	target := v.mission.Targets.TransactionCount
	if target <= 0 {
		return dto.ProgressResult{
			ProgressPercentage: 100,
			IsCompleted:        true,
			Message:            "no transaction target configured",
		}, nil
	}

	now := v.deps.clockNow()
	current, err := v.countTransactions(ctx, *v.progress.StartedAt, now)
	if err != nil {
		return dto.ProgressResult{}, err
	}

	pct := clampPercent(float64(current) / float64(target) * 100)
	completed := current >= target

	msg := fmt.Sprintf("%d of %d transactions logged", current, target)
	if completed {
		msg = fmt.Sprintf("transaction target reached (%d of %d)", current, target)
	}

	return dto.ProgressResult{
		ProgressPercentage: pct,
		IsCompleted:        completed,
		Metrics: map[string]any{
			"current_count": current,
			"target_count":  target,
		},
		Message: msg,
	}, nil
}

// consistencyValidator partitions the mission window into 7-day buckets and
// counts the buckets meeting the minimum transaction frequency.
type consistencyValidator struct {
	baseValidator
}

const bucketDays = 7

func (v *consistencyValidator) CalculateProgress(ctx context.Context) (dto.ProgressResult, error) {
	if !v.progress.Started() {
		return v.notStartedResult(), nil
	}

	minPerBucket := v.mission.Targets.WeeklyFrequency
	if minPerBucket <= 0 {
		minPerBucket = 1
	}

	totalBuckets := (v.mission.DurationDays + bucketDays - 1) / bucketDays
	if totalBuckets == 0 {
		totalBuckets = 1
	}

	now := v.deps.clockNow()
	start := *v.progress.StartedAt

	compliant := 0
	elapsedBuckets := 0
	counts := make([]int, 0, totalBuckets)
	for i := 0; i < totalBuckets; i++ {
		bucketStart := start.AddDate(0, 0, i*bucketDays)
		if bucketStart.After(now) {
			break
		}
		bucketEnd := bucketStart.AddDate(0, 0, bucketDays)
		if bucketEnd.After(now) {
			bucketEnd = now
		}
		elapsedBuckets++

		n, err := v.countTransactions(ctx, bucketStart, bucketEnd)
		if err != nil {
			return dto.ProgressResult{}, err
		}
		counts = append(counts, n)
		if n >= minPerBucket {
			compliant++
		}
	}

	pct := clampPercent(float64(compliant) / float64(totalBuckets) * 100)
	completed := compliant >= totalBuckets

	return dto.ProgressResult{
		ProgressPercentage: pct,
		IsCompleted:        completed,
		Metrics: map[string]any{
			"total_buckets":     totalBuckets,
			"elapsed_buckets":   elapsedBuckets,
			"compliant_buckets": compliant,
			"bucket_counts":     counts,
			"min_per_bucket":    minPerBucket,
		},
		Message: fmt.Sprintf("%d of %d weeks met the activity minimum", compliant, totalBuckets),
	}, nil
}
