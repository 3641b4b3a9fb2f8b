package dto

import (
	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/models"
)

// Rejection reason codes aggregated per candidate; a failed candidate never
// aborts the batch.
const (
	ReasonDuplicateTitle     = "duplicate_title"
	ReasonDuplicateSimilar   = "duplicate_similar"
	ReasonNotViable          = "not_viable"
	ReasonRewardOutOfRange   = "reward_out_of_range"
	ReasonDurationOutOfRange = "duration_out_of_range"
	ReasonIncomplete         = "incomplete_definition"
	ReasonUnparseable        = "unparseable_candidate"
	ReasonPersistFailed      = "persist_failed"
)

// MissionCandidate is a proposed catalog entry from either source, not yet
// validated or persisted.
type MissionCandidate struct {
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Type           models.MissionType    `json:"type"`
	ValidationType models.ValidationType `json:"validationType"`
	Targets        models.MissionTargets `json:"targets"`
	DurationDays   int                   `json:"durationDays"`
	RewardPoints   int                   `json:"rewardPoints"`
	Difficulty     models.Difficulty     `json:"difficulty"`
	Source         models.GenerationSource `json:"-"`
}

// GenerationFailure records one rejected candidate.
type GenerationFailure struct {
	Title  string `json:"title,omitempty"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// GenerationSummary reports where the created missions came from. AI failures
// are invisible to the caller except through these counts.
type GenerationSummary struct {
	Requested     int `json:"requested"`
	Created       int `json:"created"`
	FromAI        int `json:"fromAi"`
	FromTemplates int `json:"fromTemplates"`
	Rejected      int `json:"rejected"`
}

type GenerateBatchResult struct {
	Created []models.Mission    `json:"created"`
	Failed  []GenerationFailure `json:"failed"`
	Summary GenerationSummary   `json:"summary"`
}

type GenerateBatchRequest struct {
	Tier  string `json:"tier"`
	Count int    `json:"count"`
	UseAI bool   `json:"useAi"`
}

// TierDefaults are the assumed indicator baselines per tier, used by
// viability validation to reject targets that are already achieved or that no
// real budget reaches within the mission duration.
type TierDefaults struct {
	Tier            Tier
	SavingsRate     decimal.Decimal
	DebtRatio       decimal.Decimal
	ReserveCoverage decimal.Decimal
}
