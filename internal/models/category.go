package models

import "time"

// CategoryGroup is the semantic group driving indicator formulas. The raw
// category name is presentation only.
type CategoryGroup string

const (
	GroupEssentialExpense CategoryGroup = "ESSENTIAL_EXPENSE"
	GroupSavings          CategoryGroup = "SAVINGS"
	GroupInvestment       CategoryGroup = "INVESTMENT"
	GroupLifestyleExpense CategoryGroup = "LIFESTYLE_EXPENSE"
	GroupOther            CategoryGroup = "OTHER"
)

// Category classifies transactions. UID is empty for global (curated)
// categories and set for user-owned ones.
type Category struct {
	CategoryID string          `json:"categoryId"`
	UID        string          `json:"uid,omitempty"`
	Name       string          `json:"name"`
	Type       TransactionType `json:"type"`
	Group      CategoryGroup   `json:"group"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// ReserveGroup reports whether flows into this category count toward the
// reserve-coverage numerator.
func (c *Category) ReserveGroup() bool {
	return c.Group == GroupSavings || c.Group == GroupInvestment
}
