package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MissionType is the category of behavior a mission targets.
type MissionType string

const (
	MissionSavings         MissionType = "SAVINGS"
	MissionDebtReduction   MissionType = "DEBT_REDUCTION"
	MissionReserveBuilding MissionType = "RESERVE_BUILDING"
	MissionExpenseControl  MissionType = "EXPENSE_CONTROL"
	MissionConsistency     MissionType = "CONSISTENCY"
	MissionGoalAchievement MissionType = "GOAL_ACHIEVEMENT"
)

// ValidationType selects the validator strategy applied to a mission.
// Unrecognized values fall back to the generic multi-criteria validator.
type ValidationType string

const (
	ValidateTransactionCount ValidationType = "TRANSACTION_COUNT"
	ValidateSavingsRate      ValidationType = "SAVINGS_RATE"
	ValidateDebtRatio        ValidationType = "DEBT_RATIO"
	ValidateReserveCoverage  ValidationType = "RESERVE_COVERAGE"
	ValidateCategoryCut      ValidationType = "CATEGORY_REDUCTION"
	ValidateCategoryLimit    ValidationType = "CATEGORY_LIMIT"
	ValidateGoalProgress     ValidationType = "GOAL_PROGRESS"
	ValidateConsistency      ValidationType = "TRANSACTION_CONSISTENCY"
	ValidateDiscipline       ValidationType = "PAYMENT_DISCIPLINE"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

type GenerationSource string

const (
	SourceCurator  GenerationSource = "curator"
	SourceTemplate GenerationSource = "template"
	SourceAI       GenerationSource = "ai"
)

// MissionTargets carries every numeric goal a validator may read. Only the
// fields relevant to the mission's ValidationType are populated.
type MissionTargets struct {
	SavingsRate      decimal.Decimal `json:"savingsRate"`      // percent, met when current >= target
	DebtRatio        decimal.Decimal `json:"debtRatio"`        // percent, met when current <= target
	ReserveMonths    decimal.Decimal `json:"reserveMonths"`    // months, met when current >= target
	ReductionPercent decimal.Decimal `json:"reductionPercent"` // percent cut vs reference window
	SpendingLimit    decimal.Decimal `json:"spendingLimit"`    // cumulative category cap
	GoalPercent      decimal.Decimal `json:"goalPercent"`      // goal completion percent
	TransactionCount int             `json:"transactionCount"` // logged transactions since start
	WeeklyFrequency  int             `json:"weeklyFrequency"`  // min transactions per 7-day bucket
	CategoryID       string          `json:"categoryId,omitempty"`
}

// Mission is a catalog definition. Immutable once assigned except through the
// curator and generator paths.
type Mission struct {
	MissionID       string           `json:"missionId"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Type            MissionType      `json:"type"`
	ValidationType  ValidationType   `json:"validationType"`
	Targets         MissionTargets   `json:"targets"`
	DurationDays    int              `json:"durationDays"`
	RewardPoints    int              `json:"rewardPoints"`
	Difficulty      Difficulty       `json:"difficulty"`
	Priority        int              `json:"priority"`
	Active          bool             `json:"active"`
	SystemGenerated bool             `json:"systemGenerated"`
	GeneratedBy     GenerationSource `json:"generatedBy"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// Deadline returns the completion deadline for a mission started at the
// given time.
func (m *Mission) Deadline(startedAt time.Time) time.Time {
	return startedAt.AddDate(0, 0, m.DurationDays)
}
