package store

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/models"
)

func TestTransactionDocRoundTripKeepsDecimalExact(t *testing.T) {
	amount, _ := decimal.NewFromString("1234.56")
	deleted := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	tx := &models.Transaction{
		TransactionID: "t1",
		Description:   "Rent",
		Amount:        amount,
		Type:          models.TransactionExpense,
		Date:          time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		CategoryID:    "cat-housing",
		Recurrence:    models.RecurrenceMonthly,
		DeletedAt:     &deleted,
	}

	back, err := transactionToDoc(tx).model()
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	if back.Amount.String() != "1234.56" {
		t.Errorf("amount = %s, lost precision", back.Amount)
	}
	if !back.Deleted() || back.Type != models.TransactionExpense {
		t.Errorf("round trip dropped fields: %+v", back)
	}
}

func TestMissionDocRoundTripKeepsTargets(t *testing.T) {
	m := &models.Mission{
		MissionID:      "m1",
		Title:          "Save 15%",
		Type:           models.MissionSavings,
		ValidationType: models.ValidateSavingsRate,
		DurationDays:   30,
		RewardPoints:   200,
		Difficulty:     models.DifficultyMedium,
		Active:         true,
		GeneratedBy:    models.SourceTemplate,
	}
	m.Targets.SavingsRate = decimal.RequireFromString("15.5")
	m.Targets.WeeklyFrequency = 3

	back, err := missionToDoc(m).model()
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	if back.Targets.SavingsRate.String() != "15.5" || back.Targets.WeeklyFrequency != 3 {
		t.Errorf("targets = %+v", back.Targets)
	}
	if back.ValidationType != models.ValidateSavingsRate {
		t.Errorf("validation type = %s", back.ValidationType)
	}
}

func TestProfileDocEmptyDecimalsReadAsZero(t *testing.T) {
	// Profiles written before targets existed have empty strings there.
	d := profileDoc{UID: "u1", Level: 3, XP: 40}
	p, err := d.model()
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	if !p.TargetSavingsRate.IsZero() || !p.SavingsRate.IsZero() {
		t.Errorf("profile = %+v, want zero decimals", p)
	}
}

func TestTransactionQueryWithEmulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("firestore client error: %v", err)
	}
	defer client.Close()

	store := NewTransactionStore(client)
	uid := "user-query"
	now := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	deleted := now

	seed := []models.Transaction{
		{TransactionID: "t1", Description: "Salary", Amount: decimal.NewFromInt(3000), Type: models.TransactionIncome, Date: now.AddDate(0, 0, -10)},
		{TransactionID: "t2", Description: "Rent", Amount: decimal.NewFromInt(900), Type: models.TransactionExpense, Date: now.AddDate(0, 0, -8), CategoryID: "cat-housing"},
		{TransactionID: "t3", Description: "Old", Amount: decimal.NewFromInt(50), Type: models.TransactionExpense, Date: now.AddDate(0, 0, -60)},
		{TransactionID: "t4", Description: "Erased", Amount: decimal.NewFromInt(20), Type: models.TransactionExpense, Date: now.AddDate(0, 0, -5), DeletedAt: &deleted},
	}
	for i := range seed {
		if err := store.CreateTransaction(ctx, uid, &seed[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	expense := models.TransactionExpense
	from := now.AddDate(0, 0, -30)
	txCh, errCh := store.Query(ctx, uid, dto.TransactionQuery{
		Type:     &expense,
		DateFrom: &from,
		DateTo:   &now,
	})

	var got []models.Transaction
	for tx := range txCh {
		got = append(got, *tx)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("query error: %v", err)
	}

	if len(got) != 1 || got[0].TransactionID != "t2" {
		t.Fatalf("results = %+v, want only t2", got)
	}
	if got[0].Amount.String() != "900" {
		t.Errorf("amount = %s", got[0].Amount)
	}
}

func TestRewardGrantIdempotentWithEmulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("firestore client error: %v", err)
	}
	defer client.Close()

	uid := "user-reward"
	profiles := NewProfileStore(client)
	rewards := NewRewardStore(client)

	profile := models.NewUserProfile(uid, time.Now())
	if err := profiles.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("create profile: %v", err)
	}

	progress := &models.MissionProgress{ProgressID: "pr1", UID: uid, MissionID: "m1", Status: models.StatusCompleted}
	mission := &models.Mission{MissionID: "m1", RewardPoints: 120}

	rec, granted, err := rewards.Grant(ctx, uid, progress, mission)
	if err != nil || !granted {
		t.Fatalf("first grant: rec=%+v granted=%v err=%v", rec, granted, err)
	}

	rec2, granted2, err := rewards.Grant(ctx, uid, progress, mission)
	if err != nil {
		t.Fatalf("second grant: %v", err)
	}
	if granted2 {
		t.Fatal("second grant created a new record")
	}
	if rec2.Points != 120 || rec2.XPAfter != rec.XPAfter {
		t.Errorf("second grant returned %+v, want the original record", rec2)
	}

	stored, err := profiles.GetProfile(ctx, uid)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if stored.XP != 120 {
		t.Errorf("profile XP = %d, want exactly one reward applied", stored.XP)
	}
}
