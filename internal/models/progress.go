package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProgressStatus is the mission lifecycle label. Transitions go exclusively
// through CanTransitionTo so a status is never flipped by an incidental save.
type ProgressStatus string

const (
	StatusPending   ProgressStatus = "PENDING"
	StatusActive    ProgressStatus = "ACTIVE"
	StatusCompleted ProgressStatus = "COMPLETED"
	StatusFailed    ProgressStatus = "FAILED"
	StatusSkipped   ProgressStatus = "SKIPPED"
)

// Terminal reports whether the status accepts no further transitions.
func (s ProgressStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// CanTransitionTo enforces the legal lifecycle edges:
// PENDING -> ACTIVE | SKIPPED, ACTIVE -> COMPLETED | FAILED | SKIPPED.
func (s ProgressStatus) CanTransitionTo(to ProgressStatus) bool {
	switch s {
	case StatusPending:
		return to == StatusActive || to == StatusSkipped
	case StatusActive:
		return to == StatusCompleted || to == StatusFailed || to == StatusSkipped
	default:
		return false
	}
}

// BaselineSnapshot captures ledger state at mission start; validators use it
// as the reference point for progress math.
type BaselineSnapshot struct {
	SavingsRate      decimal.Decimal `json:"savingsRate"`
	DebtRatio        decimal.Decimal `json:"debtRatio"`
	ReserveCoverage  decimal.Decimal `json:"reserveCoverage"`
	TransactionCount int             `json:"transactionCount"`
	CategorySpend    decimal.Decimal `json:"categorySpend"` // target-category spend in the reference window
	PeriodDays       int             `json:"periodDays"`    // reference window length
}

// MissionProgress is a user's live instance of a catalog mission.
type MissionProgress struct {
	ProgressID  string           `json:"progressId"`
	UID         string           `json:"uid"`
	MissionID   string           `json:"missionId"`
	Status      ProgressStatus   `json:"status"`
	Progress    float64          `json:"progress"` // 0..100
	StartedAt   *time.Time       `json:"startedAt,omitempty"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	Baseline    BaselineSnapshot `json:"baseline"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Started reports whether the mission has a captured start point. Validators
// treat an unstarted mission as zero progress, never as an error.
func (p *MissionProgress) Started() bool {
	return p.StartedAt != nil
}

// Overdue reports whether the mission deadline has passed.
func (p *MissionProgress) Overdue(durationDays int, now time.Time) bool {
	if p.StartedAt == nil {
		return false
	}
	return now.After(p.StartedAt.AddDate(0, 0, durationDays))
}
