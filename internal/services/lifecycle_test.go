package services

import (
	"testing"
	"time"

	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/models"
	"github.com/Marcos1701/finquest-backend/pkg/helpers"
)

func newTestLifecycle(catalog *fakeMissionCatalog, progress *fakeProgressStore, rewards *fakeRewardStore, ledger *fakeLedger, ind *fakeIndicators) *missionService {
	if ledger == nil {
		ledger = &fakeLedger{}
	}
	if ind == nil {
		ind = &fakeIndicators{}
	}
	svc := NewMissionService(catalog, progress, rewards, ledger, &fakeGoalStore{}, ind)
	svc.clockNow = func() time.Time { return testNow }
	return svc
}

func countMission() models.Mission {
	m := models.Mission{
		MissionID:      "m1",
		Title:          "Log four transactions",
		Type:           models.MissionConsistency,
		ValidationType: models.ValidateTransactionCount,
		DurationDays:   14,
		RewardPoints:   100,
		Active:         true,
	}
	m.Targets.TransactionCount = 4
	return m
}

func TestStartCapturesBaseline(t *testing.T) {
	catalog := &fakeMissionCatalog{missions: []models.Mission{countMission()}}
	progress := &fakeProgressStore{items: []*models.MissionProgress{
		{ProgressID: "pr1", UID: "u1", MissionID: "m1", Status: models.StatusPending},
	}}
	ledger := &fakeLedger{txs: []models.Transaction{
		{TransactionID: "t1", Amount: dec("10"), Type: models.TransactionExpense, Date: daysAgo(testNow, 3)},
		{TransactionID: "t2", Amount: dec("20"), Type: models.TransactionExpense, Date: daysAgo(testNow, 1)},
	}}
	ind := &fakeIndicators{}
	ind.snap.SavingsRate = dec("12.50")

	svc := newTestLifecycle(catalog, progress, newFakeRewardStore(models.NewUserProfile("u1", testNow)), ledger, ind)

	p, err := svc.Start(helpers.TestCtx(), "u1", "m1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if p.Status != models.StatusActive || !p.Started() {
		t.Fatalf("status = %s, started = %v; want ACTIVE and started", p.Status, p.Started())
	}
	if !p.Baseline.SavingsRate.Equal(dec("12.50")) {
		t.Errorf("baseline savings rate = %s, want 12.50", p.Baseline.SavingsRate)
	}
	if p.Baseline.TransactionCount != 2 {
		t.Errorf("baseline transaction count = %d, want 2", p.Baseline.TransactionCount)
	}

	// Starting again from ACTIVE is a conflict.
	if _, err := svc.Start(helpers.TestCtx(), "u1", "m1"); err == nil {
		t.Fatal("second Start succeeded, want conflict")
	} else if _, ok := err.(*errs.ConflictError); !ok {
		t.Fatalf("second Start error = %T, want *errs.ConflictError", err)
	}
}

func TestSkipFromPendingAndActive(t *testing.T) {
	for _, from := range []models.ProgressStatus{models.StatusPending, models.StatusActive} {
		catalog := &fakeMissionCatalog{missions: []models.Mission{countMission()}}
		progress := &fakeProgressStore{items: []*models.MissionProgress{
			{ProgressID: "pr1", UID: "u1", MissionID: "m1", Status: from},
		}}
		svc := newTestLifecycle(catalog, progress, newFakeRewardStore(models.NewUserProfile("u1", testNow)), nil, nil)

		p, err := svc.Skip(helpers.TestCtx(), "u1", "m1")
		if err != nil {
			t.Fatalf("Skip from %s: %v", from, err)
		}
		if p.Status != models.StatusSkipped {
			t.Errorf("Skip from %s left status %s", from, p.Status)
		}
	}
}

func TestSkipCompletedIsConflict(t *testing.T) {
	catalog := &fakeMissionCatalog{missions: []models.Mission{countMission()}}
	progress := &fakeProgressStore{items: []*models.MissionProgress{
		{ProgressID: "pr1", UID: "u1", MissionID: "m1", Status: models.StatusCompleted},
	}}
	svc := newTestLifecycle(catalog, progress, newFakeRewardStore(models.NewUserProfile("u1", testNow)), nil, nil)

	if _, err := svc.Skip(helpers.TestCtx(), "u1", "m1"); err == nil {
		t.Fatal("Skip on completed mission succeeded, want conflict")
	}
}

func TestEvaluateProgressImplicitStartAndPartial(t *testing.T) {
	catalog := &fakeMissionCatalog{missions: []models.Mission{countMission()}}
	progress := &fakeProgressStore{items: []*models.MissionProgress{
		{ProgressID: "pr1", UID: "u1", MissionID: "m1", Status: models.StatusPending},
	}}
	svc := newTestLifecycle(catalog, progress, newFakeRewardStore(models.NewUserProfile("u1", testNow)), &fakeLedger{}, nil)

	res, err := svc.EvaluateProgress(helpers.TestCtx(), "u1", "pr1")
	if err != nil {
		t.Fatalf("EvaluateProgress: %v", err)
	}
	if res.IsCompleted {
		t.Fatal("mission completed with no transactions logged")
	}

	stored, _ := progress.GetProgress(helpers.TestCtx(), "u1", "pr1")
	if stored.Status != models.StatusActive {
		t.Errorf("pending mission not implicitly started, status = %s", stored.Status)
	}
}

func TestEvaluateProgressCompletionGrantsReward(t *testing.T) {
	start := daysAgo(testNow, 2)
	catalog := &fakeMissionCatalog{missions: []models.Mission{countMission()}}
	progress := &fakeProgressStore{items: []*models.MissionProgress{
		{ProgressID: "pr1", UID: "u1", MissionID: "m1", Status: models.StatusActive, StartedAt: &start},
	}}
	ledger := &fakeLedger{}
	for i := 0; i < 4; i++ {
		ledger.txs = append(ledger.txs, models.Transaction{
			TransactionID: "t", Amount: dec("5"),
			Type: models.TransactionExpense, Date: daysAgo(testNow, 1),
		})
	}
	profile := models.NewUserProfile("u1", testNow)
	rewards := newFakeRewardStore(profile)

	svc := newTestLifecycle(catalog, progress, rewards, ledger, nil)

	res, err := svc.EvaluateProgress(helpers.TestCtx(), "u1", "pr1")
	if err != nil {
		t.Fatalf("EvaluateProgress: %v", err)
	}
	if !res.IsCompleted || res.ProgressPercentage != 100 {
		t.Fatalf("result = %+v, want completed at 100", res)
	}

	stored, _ := progress.GetProgress(helpers.TestCtx(), "u1", "pr1")
	if stored.Status != models.StatusCompleted || stored.CompletedAt == nil {
		t.Errorf("stored status = %s, completedAt = %v", stored.Status, stored.CompletedAt)
	}
	if profile.XP != 100 {
		t.Errorf("profile XP = %d, want 100", profile.XP)
	}
	if len(rewards.records) != 1 {
		t.Errorf("xp transactions = %d, want 1", len(rewards.records))
	}
}

func TestEvaluateProgressOverdueFails(t *testing.T) {
	start := daysAgo(testNow, 20) // past the 14-day duration
	catalog := &fakeMissionCatalog{missions: []models.Mission{countMission()}}
	progress := &fakeProgressStore{items: []*models.MissionProgress{
		{ProgressID: "pr1", UID: "u1", MissionID: "m1", Status: models.StatusActive, StartedAt: &start},
	}}
	svc := newTestLifecycle(catalog, progress, newFakeRewardStore(models.NewUserProfile("u1", testNow)), &fakeLedger{}, nil)

	res, err := svc.EvaluateProgress(helpers.TestCtx(), "u1", "pr1")
	if err != nil {
		t.Fatalf("EvaluateProgress: %v", err)
	}
	if res.IsCompleted {
		t.Fatal("overdue mission reported completed")
	}

	stored, _ := progress.GetProgress(helpers.TestCtx(), "u1", "pr1")
	if stored.Status != models.StatusFailed {
		t.Errorf("stored status = %s, want FAILED", stored.Status)
	}
}

func TestEvaluateProgressTerminalIsStable(t *testing.T) {
	catalog := &fakeMissionCatalog{missions: []models.Mission{countMission()}}
	progress := &fakeProgressStore{items: []*models.MissionProgress{
		{ProgressID: "pr1", UID: "u1", MissionID: "m1", Status: models.StatusFailed, Progress: 40},
	}}
	svc := newTestLifecycle(catalog, progress, newFakeRewardStore(models.NewUserProfile("u1", testNow)), nil, nil)

	res, err := svc.EvaluateProgress(helpers.TestCtx(), "u1", "pr1")
	if err != nil {
		t.Fatalf("EvaluateProgress: %v", err)
	}
	if res.IsCompleted || res.ProgressPercentage != 40 {
		t.Errorf("result = %+v, want stored 40%% and not completed", res)
	}
	if progress.updates != 0 {
		t.Errorf("terminal evaluation wrote %d updates, want 0", progress.updates)
	}
}

func TestApplyRewardIdempotent(t *testing.T) {
	now := testNow
	catalog := &fakeMissionCatalog{missions: []models.Mission{countMission()}}
	progress := &fakeProgressStore{items: []*models.MissionProgress{
		{ProgressID: "pr1", UID: "u1", MissionID: "m1", Status: models.StatusCompleted, CompletedAt: &now},
	}}
	profile := models.NewUserProfile("u1", testNow)
	rewards := newFakeRewardStore(profile)

	svc := newTestLifecycle(catalog, progress, rewards, nil, nil)

	first, err := svc.ApplyReward(helpers.TestCtx(), "u1", "pr1")
	if err != nil {
		t.Fatalf("first ApplyReward: %v", err)
	}
	if first.AlreadyGranted || first.Points != 100 {
		t.Fatalf("first result = %+v, want fresh grant of 100", first)
	}

	second, err := svc.ApplyReward(helpers.TestCtx(), "u1", "pr1")
	if err != nil {
		t.Fatalf("second ApplyReward: %v", err)
	}
	if !second.AlreadyGranted {
		t.Fatal("second ApplyReward did not report AlreadyGranted")
	}
	if profile.XP != 100 {
		t.Errorf("profile XP = %d after double apply, want 100", profile.XP)
	}
	if len(rewards.records) != 1 {
		t.Errorf("xp transactions = %d, want exactly 1", len(rewards.records))
	}
}

func TestApplyRewardRequiresCompletion(t *testing.T) {
	catalog := &fakeMissionCatalog{missions: []models.Mission{countMission()}}
	progress := &fakeProgressStore{items: []*models.MissionProgress{
		{ProgressID: "pr1", UID: "u1", MissionID: "m1", Status: models.StatusActive},
	}}
	svc := newTestLifecycle(catalog, progress, newFakeRewardStore(models.NewUserProfile("u1", testNow)), nil, nil)

	if _, err := svc.ApplyReward(helpers.TestCtx(), "u1", "pr1"); err == nil {
		t.Fatal("ApplyReward on active mission succeeded, want conflict")
	} else if _, ok := err.(*errs.ConflictError); !ok {
		t.Fatalf("error = %T, want *errs.ConflictError", err)
	}
}

func TestExpireOverdue(t *testing.T) {
	fresh := daysAgo(testNow, 2)
	stale := daysAgo(testNow, 30)
	catalog := &fakeMissionCatalog{missions: []models.Mission{countMission()}}
	progress := &fakeProgressStore{items: []*models.MissionProgress{
		{ProgressID: "pr1", UID: "u1", MissionID: "m1", Status: models.StatusActive, StartedAt: &stale},
		{ProgressID: "pr2", UID: "u1", MissionID: "m1", Status: models.StatusActive, StartedAt: &fresh},
		{ProgressID: "pr3", UID: "u1", MissionID: "m1", Status: models.StatusPending},
	}}
	svc := newTestLifecycle(catalog, progress, newFakeRewardStore(models.NewUserProfile("u1", testNow)), nil, nil)

	n, err := svc.ExpireOverdue(helpers.TestCtx(), "u1")
	if err != nil {
		t.Fatalf("ExpireOverdue: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired = %d, want 1", n)
	}

	stale1, _ := progress.GetProgress(helpers.TestCtx(), "u1", "pr1")
	fresh2, _ := progress.GetProgress(helpers.TestCtx(), "u1", "pr2")
	if stale1.Status != models.StatusFailed {
		t.Errorf("overdue mission status = %s, want FAILED", stale1.Status)
	}
	if fresh2.Status != models.StatusActive {
		t.Errorf("fresh mission status = %s, want ACTIVE", fresh2.Status)
	}
}

func TestListActiveSkipsTerminal(t *testing.T) {
	catalog := &fakeMissionCatalog{missions: []models.Mission{countMission()}}
	progress := &fakeProgressStore{items: []*models.MissionProgress{
		{ProgressID: "pr1", UID: "u1", MissionID: "m1", Status: models.StatusActive},
		{ProgressID: "pr2", UID: "u1", MissionID: "m1", Status: models.StatusCompleted},
	}}
	svc := newTestLifecycle(catalog, progress, newFakeRewardStore(models.NewUserProfile("u1", testNow)), nil, nil)

	list, err := svc.ListActive(helpers.TestCtx(), "u1")
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(list) != 1 || list[0].Progress.ProgressID != "pr1" {
		t.Fatalf("list = %+v, want only pr1", list)
	}
}
