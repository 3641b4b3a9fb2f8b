package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/models"
	"github.com/Marcos1701/finquest-backend/pkg/helpers"
)

func testCatalog() []models.Mission {
	return []models.Mission{
		{
			MissionID: "m-savings", Title: "Save more",
			Type: models.MissionSavings, ValidationType: models.ValidateSavingsRate,
			Difficulty: models.DifficultyEasy, Priority: 1, Active: true,
		},
		{
			MissionID: "m-debt", Title: "Pay down debt",
			Type: models.MissionDebtReduction, ValidationType: models.ValidateDebtRatio,
			Difficulty: models.DifficultyEasy, Priority: 1, Active: true,
		},
		{
			MissionID: "m-reserve", Title: "Build a reserve",
			Type: models.MissionReserveBuilding, ValidationType: models.ValidateReserveCoverage,
			Difficulty: models.DifficultyMedium, Priority: 1, Active: true,
		},
		{
			MissionID: "m-goal", Title: "Hit a goal",
			Type: models.MissionGoalAchievement, ValidationType: models.ValidateGoalProgress,
			Difficulty: models.DifficultyEasy, Priority: 3, Active: true,
		},
		{
			MissionID: "m-retired", Title: "Old mission",
			Type: models.MissionConsistency, ValidationType: models.ValidateConsistency,
			Difficulty: models.DifficultyEasy, Priority: 5, Active: false,
		},
	}
}

func newTestAssignment(catalog *fakeMissionCatalog, progress *fakeProgressStore, analyzer *fakeAnalyzer) *assignmentService {
	svc := NewAssignmentService(catalog, progress, analyzer)
	svc.clockNow = func() time.Time { return testNow }
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("pr-%d", seq)
	}
	return svc
}

func TestAssignMissionsFillsFreeSlots(t *testing.T) {
	catalog := &fakeMissionCatalog{missions: testCatalog()}
	progress := &fakeProgressStore{}
	analyzer := &fakeAnalyzer{uctx: dto.UserContext{
		Tier:             dto.TierBeginner,
		AtRiskIndicators: []dto.AtRiskIndicator{dto.RiskDebtRatio},
	}}

	svc := newTestAssignment(catalog, progress, analyzer)
	assigned, err := svc.AssignMissions(helpers.TestCtx(), "u1", 3)
	if err != nil {
		t.Fatalf("AssignMissions: %v", err)
	}

	if len(assigned) != 3 {
		t.Fatalf("assigned = %d missions, want 3", len(assigned))
	}
	for _, p := range assigned {
		if p.Status != models.StatusPending {
			t.Errorf("mission %s assigned with status %s, want PENDING", p.MissionID, p.Status)
		}
		if p.MissionID == "m-retired" {
			t.Error("inactive catalog mission was assigned")
		}
		if p.MissionID == "m-goal" {
			t.Error("goal mission assigned to user without active goals")
		}
	}

	// Debt is the at-risk indicator, so the debt mission must outrank the
	// others and be present.
	found := false
	for _, p := range assigned {
		if p.MissionID == "m-debt" {
			found = true
		}
	}
	if !found {
		t.Error("at-risk debt mission missing from assigned set")
	}
}

func TestAssignMissionsIdempotentWithoutLedgerChange(t *testing.T) {
	catalog := &fakeMissionCatalog{missions: testCatalog()}
	progress := &fakeProgressStore{}
	analyzer := &fakeAnalyzer{uctx: dto.UserContext{Tier: dto.TierBeginner}}

	svc := newTestAssignment(catalog, progress, analyzer)

	first, err := svc.AssignMissions(helpers.TestCtx(), "u1", 2)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.AssignMissions(helpers.TestCtx(), "u1", 2)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("set size changed: %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i].MissionID != second[i].MissionID {
			t.Errorf("set changed at %d: %s then %s", i, first[i].MissionID, second[i].MissionID)
		}
	}
	if progress.creates != len(first) {
		t.Errorf("creates = %d, want %d (second call must create nothing)", progress.creates, len(first))
	}
}

func TestAssignMissionsSkipsCompletedButRetriesFailed(t *testing.T) {
	catalog := &fakeMissionCatalog{missions: testCatalog()}
	progress := &fakeProgressStore{items: []*models.MissionProgress{
		{ProgressID: "done", UID: "u1", MissionID: "m-savings", Status: models.StatusCompleted},
		{ProgressID: "lost", UID: "u1", MissionID: "m-debt", Status: models.StatusFailed},
	}}
	analyzer := &fakeAnalyzer{uctx: dto.UserContext{Tier: dto.TierBeginner}}

	svc := newTestAssignment(catalog, progress, analyzer)
	assigned, err := svc.AssignMissions(helpers.TestCtx(), "u1", 2)
	if err != nil {
		t.Fatalf("AssignMissions: %v", err)
	}

	ids := map[string]bool{}
	for _, p := range assigned {
		ids[p.MissionID] = true
	}
	if ids["m-savings"] {
		t.Error("completed mission was re-assigned")
	}
	if !ids["m-debt"] {
		t.Error("failed mission was not offered again")
	}
}

func TestAssignMissionsNoSlotsReturnsCurrentSet(t *testing.T) {
	catalog := &fakeMissionCatalog{missions: testCatalog()}
	progress := &fakeProgressStore{items: []*models.MissionProgress{
		{ProgressID: "p1", UID: "u1", MissionID: "m-savings", Status: models.StatusActive},
		{ProgressID: "p2", UID: "u1", MissionID: "m-debt", Status: models.StatusPending},
	}}
	analyzer := &fakeAnalyzer{uctx: dto.UserContext{Tier: dto.TierBeginner}}

	svc := newTestAssignment(catalog, progress, analyzer)
	assigned, err := svc.AssignMissions(helpers.TestCtx(), "u1", 2)
	if err != nil {
		t.Fatalf("AssignMissions: %v", err)
	}

	if len(assigned) != 2 || progress.creates != 0 {
		t.Fatalf("assigned = %d, creates = %d; want 2 and 0", len(assigned), progress.creates)
	}
}

func TestScoreMissionWeighsRiskAndTier(t *testing.T) {
	uctx := dto.UserContext{
		Tier:             dto.TierBeginner,
		AtRiskIndicators: []dto.AtRiskIndicator{dto.RiskSavingsRate},
	}

	savings := models.Mission{
		Type:       models.MissionSavings,
		Difficulty: models.DifficultyEasy,
		Priority:   1,
	}
	reserve := models.Mission{
		Type:       models.MissionReserveBuilding,
		Difficulty: models.DifficultyHard,
		Priority:   1,
	}

	sSavings := scoreMission(savings, uctx)
	sReserve := scoreMission(reserve, uctx)
	if !sSavings.GreaterThan(sReserve) {
		t.Errorf("at-risk savings mission scored %s, non-risk hard mission %s", sSavings, sReserve)
	}

	// Priority contributes linearly.
	prioritized := savings
	prioritized.Priority = 3
	diff := scoreMission(prioritized, uctx).Sub(sSavings)
	if !diff.Equal(decimal.NewFromInt(10)) {
		t.Errorf("priority delta = %s, want 10", diff)
	}
}
