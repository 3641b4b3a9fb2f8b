package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserProfile is the per-user mutable aggregate: level, experience, the
// cached indicator values and the user-set indicator targets. It is created
// alongside the user and mutated only by reward application, cache refresh
// and target updates.
type UserProfile struct {
	UID   string `json:"uid"`
	Level int    `json:"level"`
	XP    int    `json:"xp"`

	// Cached indicators; IndicatorsCachedAt == nil means stale.
	SavingsRate        decimal.Decimal `json:"savingsRate"`
	DebtRatio          decimal.Decimal `json:"debtRatio"`
	ReserveCoverage    decimal.Decimal `json:"reserveCoverage"`
	IndicatorsCachedAt *time.Time      `json:"indicatorsCachedAt,omitempty"`

	// User-settable targets, read by context analysis.
	TargetSavingsRate   decimal.Decimal `json:"targetSavingsRate"`
	TargetDebtRatio     decimal.Decimal `json:"targetDebtRatio"`
	TargetReserveMonths decimal.Decimal `json:"targetReserveMonths"`

	FirstAccess bool      `json:"firstAccess"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// XPThreshold is the experience required to clear the given level.
func XPThreshold(level int) int {
	return 150 + (level-1)*50
}

// ApplyXP adds points and cascades level-ups while the accumulated XP clears
// the current level's threshold. Returns the number of levels gained.
func (p *UserProfile) ApplyXP(points int) int {
	p.XP += points

	var levelUps int
	for p.XP >= XPThreshold(p.Level) {
		p.XP -= XPThreshold(p.Level)
		p.Level++
		levelUps++
	}
	return levelUps
}

// NewUserProfile returns the starting profile for a freshly registered user.
func NewUserProfile(uid string, now time.Time) *UserProfile {
	return &UserProfile{
		UID:         uid,
		Level:       1,
		XP:          0,
		FirstAccess: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
