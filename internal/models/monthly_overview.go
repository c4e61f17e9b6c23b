package models

import "time"

// MonthlyOverview is a named, date-bounded budgeting period. It owns the
// budgets and income sources created inside it; deleting an overview removes
// those as well.
type MonthlyOverview struct {
	Base
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`

	// Relationships
	Budgets       []Budget       `gorm:"foreignKey:MonthlyOverviewID" json:"budgets,omitempty"`
	IncomeSources []IncomeSource `gorm:"foreignKey:MonthlyOverviewID" json:"income_sources,omitempty"`
}

// Contains reports whether the given date falls inside the overview's
// [StartDate, EndDate] window, inclusive on both ends.
func (m *MonthlyOverview) Contains(date time.Time) bool {
	return !date.Before(m.StartDate) && !date.After(m.EndDate)
}

// IncomeSource is a single income line inside a monthly overview.
type IncomeSource struct {
	Base
	UserID            uint       `gorm:"not null;index" json:"user_id"`
	MonthlyOverviewID uint       `gorm:"not null;index" json:"monthly_overview_id"`
	Name              string     `gorm:"not null" json:"name"`
	Amount            float64    `gorm:"not null" json:"amount"`
	ReceivedOn        *time.Time `json:"received_on,omitempty"`
}
