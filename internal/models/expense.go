package models

import "time"

// Expense is a spending line inside a budget. The date must fall within the
// owning month's window. An expense may optionally be linked to a financial
// goal, in which case it counts toward that goal's balance.
type Expense struct {
	Base
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	BudgetID    uint       `gorm:"not null;index" json:"budget_id"`
	GoalID      *uint      `gorm:"index" json:"goal_id,omitempty"`
	Name        string     `gorm:"not null" json:"name"`
	Amount      float64    `gorm:"not null" json:"amount"`
	Date        time.Time  `gorm:"not null" json:"date"`
	IsRecurring bool       `gorm:"default:false" json:"is_recurring"`
	Frequency   *Frequency `json:"frequency,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}
