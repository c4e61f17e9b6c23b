package models

import "time"

// TransferType identifies what kind of money movement a transfer records.
type TransferType string

const (
	TransferTypeBudgetToBudget TransferType = "budget_to_budget"
	TransferTypeGoalToBudget   TransferType = "goal_to_budget"
	TransferTypeGoalDrawdown   TransferType = "goal_drawdown"
)

// Transfer is an immutable ledger row recording a money movement between two
// budgets, from a goal into a budget, or a pure goal drawdown. Exactly one
// row is written per transfer, inside the same transaction that re-checks the
// source balance.
type Transfer struct {
	AppendOnlyBase
	UserID        uint         `gorm:"not null;index" json:"user_id"`
	Type          TransferType `gorm:"not null" json:"type"`
	Amount        float64      `gorm:"not null" json:"amount"`
	Date          time.Time    `gorm:"not null" json:"date"`
	Reference     string       `gorm:"not null;uniqueIndex" json:"reference"`
	Description   string       `json:"description,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	PaymentMethod string       `json:"payment_method,omitempty"`

	FromBudgetID *uint `gorm:"index" json:"from_budget_id,omitempty"`
	ToBudgetID   *uint `gorm:"index" json:"to_budget_id,omitempty"`
	GoalID       *uint `gorm:"index" json:"goal_id,omitempty"`
}
