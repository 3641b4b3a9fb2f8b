package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// IndicatorSnapshot is the derived financial-health picture for one user over
// the trailing 30 days (lifetime numerator for reserve coverage).
type IndicatorSnapshot struct {
	SavingsRate     decimal.Decimal `json:"savingsRate"`     // TPS, percent
	DebtRatio       decimal.Decimal `json:"debtRatio"`       // RDR, percent
	ReserveCoverage decimal.Decimal `json:"reserveCoverage"` // ILI, months
	TotalIncome     decimal.Decimal `json:"totalIncome"`
	TotalExpense    decimal.Decimal `json:"totalExpense"`
	ComputedAt      time.Time       `json:"computedAt"`
	FromCache       bool            `json:"fromCache"`
}
