package dto

import (
	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/models"
)

// ProgressResult is what every validator strategy produces.
type ProgressResult struct {
	ProgressPercentage float64        `json:"progressPercentage"` // 0..100
	IsCompleted        bool           `json:"isCompleted"`
	Metrics            map[string]any `json:"metrics,omitempty"`
	Message            string         `json:"message"`
}

// RewardResult reports the outcome of an applyReward call. AlreadyGranted is
// true when a concurrent or earlier call won the race; no second XP delta is
// applied in that case.
type RewardResult struct {
	AlreadyGranted bool `json:"alreadyGranted"`
	Points         int  `json:"points"`
	Level          int  `json:"level"`
	XP             int  `json:"xp"`
	LevelUps       int  `json:"levelUps"`
}

// ActiveMission pairs a catalog definition with the user's live instance.
type ActiveMission struct {
	Mission  models.Mission         `json:"mission"`
	Progress models.MissionProgress `json:"progress"`
}

// ScoredMission is an assignment candidate with its priority score.
type ScoredMission struct {
	Mission models.Mission
	Score   decimal.Decimal
}

type UpdateTargetsRequest struct {
	TargetSavingsRate   *decimal.Decimal `json:"targetSavingsRate,omitempty"`
	TargetDebtRatio     *decimal.Decimal `json:"targetDebtRatio,omitempty"`
	TargetReserveMonths *decimal.Decimal `json:"targetReserveMonths,omitempty"`
}
