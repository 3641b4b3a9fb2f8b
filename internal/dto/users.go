package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/models"
)

type RegisterRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

type ProfileResponse struct {
	Profile    models.UserProfile `json:"profile"`
	Indicators IndicatorSnapshot  `json:"indicators"`
}

type CreateGoalRequest struct {
	Title        string          `json:"title"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	CategoryIDs  []string        `json:"categoryIds,omitempty"`
	Deadline     time.Time       `json:"deadline"`
}
