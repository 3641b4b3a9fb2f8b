package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/models"
)

// TransactionQuery narrows a ledger scan. Nil bounds are open; soft-deleted
// rows are excluded unless IncludeDeleted is set.
type TransactionQuery struct {
	Type           *models.TransactionType
	CategoryID     *string
	DateFrom       *time.Time
	DateTo         *time.Time
	IncludeDeleted bool
	Limit          int
}

type CreateTransactionRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Date        time.Time       `json:"date"`
	CategoryID  string          `json:"categoryId,omitempty"`
	Recurrence  string          `json:"recurrence,omitempty"`
}

type UpdateTransactionRequest struct {
	Description *string          `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Date        *time.Time       `json:"date,omitempty"`
	CategoryID  *string          `json:"categoryId,omitempty"`
}

type CreateLinkRequest struct {
	IncomeTxID  string          `json:"incomeTxId"`
	ExpenseTxID string          `json:"expenseTxId"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type,omitempty"`
}
