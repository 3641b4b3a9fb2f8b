package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

type Recurrence string

const (
	RecurrenceNone    Recurrence = "NONE"
	RecurrenceDaily   Recurrence = "DAILY"
	RecurrenceWeekly  Recurrence = "WEEKLY"
	RecurrenceMonthly Recurrence = "MONTHLY"
)

// Transaction is a ledger entry. Once settled it is immutable except for the
// soft-delete marker; soft-deleted rows are excluded from every aggregation.
type Transaction struct {
	TransactionID string          `json:"transactionId"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"` // always > 0; Type carries the sign
	Type          TransactionType `json:"type"`
	Date          time.Time       `json:"date"`
	CategoryID    string          `json:"categoryId,omitempty"`
	Recurrence    Recurrence      `json:"recurrence"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	DeletedAt     *time.Time      `json:"deletedAt,omitempty"`
}

// Deleted reports whether the transaction has been soft-deleted.
func (t *Transaction) Deleted() bool {
	return t.DeletedAt != nil
}

type LinkType string

const (
	LinkDebtSettlement LinkType = "DEBT_SETTLEMENT"
	LinkAllocation     LinkType = "ALLOCATION"
)

// TransactionLink pairs an income transaction with the expense it funds or
// settles. DEBT_SETTLEMENT links are the numerator source for the debt ratio.
type TransactionLink struct {
	LinkID      string          `json:"linkId"`
	IncomeTxID  string          `json:"incomeTxId"`
	ExpenseTxID string          `json:"expenseTxId"`
	Amount      decimal.Decimal `json:"amount"`
	Type        LinkType        `json:"type"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
}
