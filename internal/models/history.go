package models

import "time"

// HistoryAction describes what happened to a budget row.
type HistoryAction string

const (
	HistoryActionCreated HistoryAction = "created"
	HistoryActionUpdated HistoryAction = "updated"
	HistoryActionDeleted HistoryAction = "deleted"
)

// MasterBudgetHistoryEntry is an append-only audit row written on every
// master budget mutation. OldData and NewData hold full JSON snapshots.
type MasterBudgetHistoryEntry struct {
	AppendOnlyBase
	UserID         uint          `gorm:"not null;index" json:"user_id"`
	MasterBudgetID uint          `gorm:"not null;index" json:"master_budget_id"`
	Action         HistoryAction `gorm:"not null" json:"action"`
	OldData        string        `json:"old_data,omitempty"`
	NewData        string        `json:"new_data,omitempty"`
	ChangedAt      time.Time     `gorm:"not null;index" json:"changed_at"`
}

// BudgetHistoryEntry is the per-month budget counterpart of
// MasterBudgetHistoryEntry.
type BudgetHistoryEntry struct {
	AppendOnlyBase
	UserID    uint          `gorm:"not null;index" json:"user_id"`
	BudgetID  uint          `gorm:"not null;index" json:"budget_id"`
	Action    HistoryAction `gorm:"not null" json:"action"`
	OldData   string        `json:"old_data,omitempty"`
	NewData   string        `json:"new_data,omitempty"`
	ChangedAt time.Time     `gorm:"not null;index" json:"changed_at"`
}
