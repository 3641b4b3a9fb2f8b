package services

import (
	"testing"
	"time"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/models"
	"github.com/Marcos1701/finquest-backend/pkg/helpers"
)

func newTestUsers(users *fakeUserStore, profiles *fakeProfileStore, goals *fakeGoalStore, ind *fakeIndicators) *userService {
	if users == nil {
		users = &fakeUserStore{}
	}
	if profiles == nil {
		profiles = &fakeProfileStore{}
	}
	if goals == nil {
		goals = &fakeGoalStore{}
	}
	if ind == nil {
		ind = &fakeIndicators{}
	}
	svc := NewUserService(users, profiles, goals, ind, func() string { return "g-new" })
	svc.clockNow = func() time.Time { return testNow }
	return svc
}

func TestRegisterCreatesLevelOneProfile(t *testing.T) {
	users := &fakeUserStore{}
	profiles := &fakeProfileStore{}
	svc := newTestUsers(users, profiles, nil, nil)

	profile, err := svc.Register(helpers.TestCtx(), "u1", "u1@example.com", dto.RegisterRequest{FirstName: "Ana"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if profile.Level != 1 || profile.XP != 0 || !profile.FirstAccess {
		t.Errorf("profile = %+v, want fresh level-1 profile", profile)
	}
	if _, err := users.GetUser(helpers.TestCtx(), "u1"); err != nil {
		t.Errorf("user record missing: %v", err)
	}

	if _, err := svc.Register(helpers.TestCtx(), "u1", "u1@example.com", dto.RegisterRequest{}); err == nil {
		t.Fatal("double registration succeeded")
	} else if _, ok := err.(*errs.ConflictError); !ok {
		t.Fatalf("error = %T, want *errs.ConflictError", err)
	}
}

func TestGetProfileClearsFirstAccess(t *testing.T) {
	profiles := &fakeProfileStore{profile: models.NewUserProfile("u1", testNow)}
	ind := &fakeIndicators{}
	ind.snap.SavingsRate = dec("22")
	svc := newTestUsers(nil, profiles, nil, ind)

	resp, err := svc.GetProfile(helpers.TestCtx(), "u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if !resp.Indicators.SavingsRate.Equal(dec("22")) {
		t.Errorf("indicators savings rate = %s", resp.Indicators.SavingsRate)
	}
	if !resp.Profile.FirstAccess {
		t.Error("response should carry the pre-clear FirstAccess value")
	}
	if profiles.profile.FirstAccess {
		t.Error("stored FirstAccess flag not cleared")
	}

	again, err := svc.GetProfile(helpers.TestCtx(), "u1")
	if err != nil {
		t.Fatalf("second GetProfile: %v", err)
	}
	if again.Profile.FirstAccess {
		t.Error("FirstAccess still set on second fetch")
	}
}

func TestUpdateTargetsPartialPatch(t *testing.T) {
	profile := models.NewUserProfile("u1", testNow)
	profile.TargetDebtRatio = dec("30")
	profiles := &fakeProfileStore{profile: profile}
	svc := newTestUsers(nil, profiles, nil, nil)

	sr := dec("20")
	updated, err := svc.UpdateTargets(helpers.TestCtx(), "u1", dto.UpdateTargetsRequest{TargetSavingsRate: &sr})
	if err != nil {
		t.Fatalf("UpdateTargets: %v", err)
	}
	if !updated.TargetSavingsRate.Equal(dec("20")) || !updated.TargetDebtRatio.Equal(dec("30")) {
		t.Errorf("targets = %s / %s, want 20 / 30", updated.TargetSavingsRate, updated.TargetDebtRatio)
	}

	bad := dec("140")
	if _, err := svc.UpdateTargets(helpers.TestCtx(), "u1", dto.UpdateTargetsRequest{TargetSavingsRate: &bad}); err == nil {
		t.Fatal("out-of-range target accepted")
	}
}

func TestCreateGoalValidation(t *testing.T) {
	goals := &fakeGoalStore{}
	svc := newTestUsers(nil, nil, goals, nil)

	_, err := svc.CreateGoal(helpers.TestCtx(), "u1", dto.CreateGoalRequest{
		Title: "Car", TargetAmount: dec("5000"), Deadline: testNow.AddDate(0, 6, 0),
	})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if len(goals.goals) != 1 || goals.goals[0].GoalID != "g-new" {
		t.Fatalf("goals = %+v", goals.goals)
	}

	cases := []dto.CreateGoalRequest{
		{TargetAmount: dec("100"), Deadline: testNow.AddDate(0, 1, 0)},              // no title
		{Title: "x", TargetAmount: dec("0"), Deadline: testNow.AddDate(0, 1, 0)},    // zero target
		{Title: "x", TargetAmount: dec("100"), Deadline: testNow.AddDate(0, -1, 0)}, // past deadline
	}
	for i, req := range cases {
		if _, err := svc.CreateGoal(helpers.TestCtx(), "u1", req); err == nil {
			t.Errorf("case %d: invalid goal accepted", i)
		}
	}
}
