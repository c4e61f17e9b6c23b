package models

import "time"

// GoalPriority ranks financial goals.
type GoalPriority string

const (
	GoalPriorityLow    GoalPriority = "low"
	GoalPriorityMedium GoalPriority = "medium"
	GoalPriorityHigh   GoalPriority = "high"
)

// FinancialGoal is a savings target. The balance is derived, never stored:
// BaseAmount plus the contribution ledger, minus drawdowns and transfers out.
// The stored BaseAmount is only changed by a direct edit.
type FinancialGoal struct {
	Base
	UserID       uint         `gorm:"not null;index" json:"user_id"`
	Name         string       `gorm:"not null" json:"name"`
	Description  string       `json:"description"`
	TargetAmount float64      `gorm:"not null" json:"target_amount"`
	BaseAmount   float64      `gorm:"not null;default:0" json:"base_amount"`
	StartDate    time.Time    `gorm:"not null" json:"start_date"`
	EndDate      *time.Time   `json:"end_date,omitempty"`
	Priority     GoalPriority `gorm:"default:medium" json:"priority"`
	HasSubGoals  bool         `gorm:"default:false" json:"has_sub_goals"`

	// CurrentAmount is computed by the goal service on read. Not persisted.
	CurrentAmount float64 `gorm:"-" json:"current_amount"`

	// Relationships
	SubGoals      []FinancialSubGoal `gorm:"foreignKey:GoalID" json:"sub_goals,omitempty"`
	Contributions []GoalContribution `gorm:"foreignKey:GoalID" json:"contributions,omitempty"`
}

// FinancialSubGoal tracks a discrete step toward its parent goal.
type FinancialSubGoal struct {
	Base
	GoalID    uint       `gorm:"not null;index" json:"goal_id"`
	Name      string     `gorm:"not null" json:"name"`
	Progress  float64    `gorm:"not null;default:0" json:"progress"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// GoalContribution is an immutable ledger row recording a deposit into a
// goal. Contributions are unconditional; there is no "space" check.
type GoalContribution struct {
	AppendOnlyBase
	UserID uint      `gorm:"not null;index" json:"user_id"`
	GoalID uint      `gorm:"not null;index" json:"goal_id"`
	Amount float64   `gorm:"not null" json:"amount"`
	Date   time.Time `gorm:"not null" json:"date"`
	Note   string    `json:"note,omitempty"`
}
