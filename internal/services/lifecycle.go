package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/models"
	"github.com/Marcos1701/finquest-backend/pkg/logger"
)

type lifecycleMissionStore interface {
	GetMission(ctx context.Context, missionID string) (*models.Mission, error)
}

type lifecycleProgressStore interface {
	GetProgress(ctx context.Context, uid, progressID string) (*models.MissionProgress, error)
	GetProgressByMission(ctx context.Context, uid, missionID string) (*models.MissionProgress, error)
	ListProgress(ctx context.Context, uid string) ([]models.MissionProgress, error)
	UpdateProgress(ctx context.Context, uid string, p *models.MissionProgress) error
}

// rewardStore performs the atomic read-check-write reward grant. Grant
// returns the audit record and whether this call created it; a concurrent or
// earlier grant surfaces as granted == false with the existing record.
type rewardStore interface {
	GetXPTransaction(ctx context.Context, uid, progressID string) (*models.XPTransaction, error)
	Grant(ctx context.Context, uid string, progress *models.MissionProgress, mission *models.Mission) (*models.XPTransaction, bool, error)
}

// missionService owns the mission lifecycle state machine, progress
// evaluation and reward application.
type missionService struct {
	missions   lifecycleMissionStore
	progress   lifecycleProgressStore
	rewards    rewardStore
	txs        indicatorTxStore
	goals      validatorGoalStore
	indicators indicatorProvider
	clockNow   func() time.Time
}

func NewMissionService(missions lifecycleMissionStore, progress lifecycleProgressStore, rewards rewardStore, txs indicatorTxStore, goals validatorGoalStore, indicators indicatorProvider) *missionService {
	return &missionService{
		missions:   missions,
		progress:   progress,
		rewards:    rewards,
		txs:        txs,
		goals:      goals,
		indicators: indicators,
		clockNow:   time.Now,
	}
}

// Start moves a pending mission to ACTIVE, setting the start point and
// capturing the baseline snapshot validators measure against. Starting an
// already-active or finalized mission is a conflict, not a silent no-op.
func (s *missionService) Start(ctx context.Context, uid, missionID string) (*models.MissionProgress, error) {
	progress, err := s.progress.GetProgressByMission(ctx, uid, missionID)
	if err != nil {
		return nil, err
	}

	if !progress.Status.CanTransitionTo(models.StatusActive) {
		return nil, errs.NewConflictError(fmt.Sprintf("mission cannot be started from status %s", progress.Status))
	}

	mission, err := s.missions.GetMission(ctx, missionID)
	if err != nil {
		return nil, err
	}

	if err := s.activate(ctx, progress, mission); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("mission started", "mission_id", missionID, "progress_id", progress.ProgressID)
	return progress, nil
}

// Skip finalizes a pending or active mission as SKIPPED.
func (s *missionService) Skip(ctx context.Context, uid, missionID string) (*models.MissionProgress, error) {
	progress, err := s.progress.GetProgressByMission(ctx, uid, missionID)
	if err != nil {
		return nil, err
	}

	if !progress.Status.CanTransitionTo(models.StatusSkipped) {
		return nil, errs.NewConflictError(fmt.Sprintf("mission cannot be skipped from status %s", progress.Status))
	}

	progress.Status = models.StatusSkipped
	progress.UpdatedAt = s.clockNow()
	if err := s.progress.UpdateProgress(ctx, uid, progress); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("mission skipped", "mission_id", missionID, "progress_id", progress.ProgressID)
	return progress, nil
}

// EvaluateProgress runs the mission's validator and persists the measured
// progress. A pending mission is started implicitly on its first evaluation.
// Completion transitions the instance and applies the reward; a missed
// deadline transitions it to FAILED.
func (s *missionService) EvaluateProgress(ctx context.Context, uid, progressID string) (dto.ProgressResult, error) {
	progress, err := s.progress.GetProgress(ctx, uid, progressID)
	if err != nil {
		return dto.ProgressResult{}, err
	}

	if progress.Status.Terminal() {
		return dto.ProgressResult{
			ProgressPercentage: progress.Progress,
			IsCompleted:        progress.Status == models.StatusCompleted,
			Message:            fmt.Sprintf("mission already %s", progress.Status),
		}, nil
	}

	mission, err := s.missions.GetMission(ctx, progress.MissionID)
	if err != nil {
		return dto.ProgressResult{}, err
	}

	if progress.Status == models.StatusPending {
		if err := s.activate(ctx, progress, mission); err != nil {
			return dto.ProgressResult{}, err
		}
	}

	ev := newEvaluator(mission, progress, validatorDeps{
		txs:        s.txs,
		goals:      s.goals,
		indicators: s.indicators,
		clockNow:   s.clockNow,
	})
	res, err := ev.CalculateProgress(ctx)
	if err != nil {
		return dto.ProgressResult{}, err
	}

	now := s.clockNow()
	progress.Progress = res.ProgressPercentage
	progress.UpdatedAt = now

	switch {
	case res.IsCompleted:
		progress.Status = models.StatusCompleted
		progress.CompletedAt = &now
		if err := s.progress.UpdateProgress(ctx, uid, progress); err != nil {
			return res, err
		}
		if _, err := s.applyReward(ctx, uid, progress, mission); err != nil {
			return res, err
		}
	case progress.Overdue(mission.DurationDays, now):
		progress.Status = models.StatusFailed
		if err := s.progress.UpdateProgress(ctx, uid, progress); err != nil {
			return res, err
		}
		res.Message = "mission deadline passed"
	default:
		if err := s.progress.UpdateProgress(ctx, uid, progress); err != nil {
			return res, err
		}
	}

	return res, nil
}

// ApplyReward grants the mission reward exactly once per progress instance.
// The audit record, not the status, is the idempotence guard: a retry or a
// concurrent completion finds the record and reports AlreadyGranted.
func (s *missionService) ApplyReward(ctx context.Context, uid, progressID string) (dto.RewardResult, error) {
	progress, err := s.progress.GetProgress(ctx, uid, progressID)
	if err != nil {
		return dto.RewardResult{}, err
	}

	if existing, err := s.rewards.GetXPTransaction(ctx, uid, progressID); err == nil && existing != nil {
		return rewardResultFrom(existing, false), nil
	}

	if progress.Status != models.StatusCompleted {
		return dto.RewardResult{}, errs.NewConflictError(fmt.Sprintf("mission is %s, reward requires completion", progress.Status))
	}

	mission, err := s.missions.GetMission(ctx, progress.MissionID)
	if err != nil {
		return dto.RewardResult{}, err
	}

	return s.applyReward(ctx, uid, progress, mission)
}

func (s *missionService) applyReward(ctx context.Context, uid string, progress *models.MissionProgress, mission *models.Mission) (dto.RewardResult, error) {
	xp, granted, err := s.rewards.Grant(ctx, uid, progress, mission)
	if err != nil {
		return dto.RewardResult{}, err
	}

	if granted {
		logger.FromContext(ctx).Info("reward granted",
			"progress_id", progress.ProgressID,
			"points", xp.Points,
			"level", xp.LevelAfter,
		)
	}
	return rewardResultFrom(xp, granted), nil
}

// ExpireOverdue fails every active mission whose deadline has passed.
// Invoked from the scheduled sweeper, not the request path.
func (s *missionService) ExpireOverdue(ctx context.Context, uid string) (int, error) {
	list, err := s.progress.ListProgress(ctx, uid)
	if err != nil {
		return 0, err
	}

	now := s.clockNow()
	expired := 0
	for i := range list {
		p := &list[i]
		if p.Status != models.StatusActive {
			continue
		}
		mission, err := s.missions.GetMission(ctx, p.MissionID)
		if err != nil {
			return expired, err
		}
		if !p.Overdue(mission.DurationDays, now) {
			continue
		}
		p.Status = models.StatusFailed
		p.UpdatedAt = now
		if err := s.progress.UpdateProgress(ctx, uid, p); err != nil {
			return expired, err
		}
		expired++
	}
	return expired, nil
}

// ListActive returns the user's pending and active mission instances paired
// with their catalog definitions.
func (s *missionService) ListActive(ctx context.Context, uid string) ([]dto.ActiveMission, error) {
	list, err := s.progress.ListProgress(ctx, uid)
	if err != nil {
		return nil, err
	}

	var out []dto.ActiveMission
	for _, p := range list {
		if p.Status.Terminal() {
			continue
		}
		mission, err := s.missions.GetMission(ctx, p.MissionID)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.ActiveMission{Mission: *mission, Progress: p})
	}
	return out, nil
}

// activate transitions to ACTIVE and captures the baseline snapshot.
func (s *missionService) activate(ctx context.Context, progress *models.MissionProgress, mission *models.Mission) error {
	now := s.clockNow()

	baseline, err := s.captureBaseline(ctx, progress.UID, mission, now)
	if err != nil {
		return err
	}

	progress.Status = models.StatusActive
	progress.StartedAt = &now
	progress.Baseline = baseline
	progress.UpdatedAt = now
	return s.progress.UpdateProgress(ctx, progress.UID, progress)
}

// captureBaseline records indicators, the lifetime transaction count and the
// target-category spend over the duration-days window preceding start.
func (s *missionService) captureBaseline(ctx context.Context, uid string, mission *models.Mission, now time.Time) (models.BaselineSnapshot, error) {
	baseline := models.BaselineSnapshot{PeriodDays: mission.DurationDays}

	snap, err := s.indicators.Get(ctx, uid)
	if err != nil {
		return baseline, err
	}
	baseline.SavingsRate = snap.SavingsRate
	baseline.DebtRatio = snap.DebtRatio
	baseline.ReserveCoverage = snap.ReserveCoverage

	txCh, errCh := s.txs.Query(ctx, uid, dto.TransactionQuery{DateTo: &now})
	count := 0
	if err := streamTransactions(txCh, errCh, func(tx *models.Transaction) error {
		if !tx.Deleted() {
			count++
		}
		return nil
	}); err != nil {
		return baseline, err
	}
	baseline.TransactionCount = count

	if catID := mission.Targets.CategoryID; catID != "" && mission.DurationDays > 0 {
		from := now.AddDate(0, 0, -mission.DurationDays)
		expense := models.TransactionExpense
		spendCh, spendErrCh := s.txs.Query(ctx, uid, dto.TransactionQuery{
			Type:       &expense,
			CategoryID: &catID,
			DateFrom:   &from,
			DateTo:     &now,
		})
		if err := streamTransactions(spendCh, spendErrCh, func(tx *models.Transaction) error {
			if !tx.Deleted() {
				baseline.CategorySpend = baseline.CategorySpend.Add(tx.Amount)
			}
			return nil
		}); err != nil {
			return baseline, err
		}
	}

	return baseline, nil
}

func rewardResultFrom(xp *models.XPTransaction, granted bool) dto.RewardResult {
	return dto.RewardResult{
		AlreadyGranted: !granted,
		Points:         xp.Points,
		Level:          xp.LevelAfter,
		XP:             xp.XPAfter,
		LevelUps:       xp.LevelAfter - xp.LevelBefore,
	}
}
