package models

// MasterBudget is a reusable category template. Its lifecycle is independent
// of any month: deleting a master budget never touches the per-month budgets
// that were copied from it.
type MasterBudget struct {
	Base
	UserID      uint    `gorm:"not null;index" json:"user_id"`
	Name        string  `gorm:"not null" json:"name"`
	Amount      float64 `gorm:"not null" json:"amount"`
	Description string  `json:"description"`
}

// Budget is a month-scoped instantiation of a category. When linked to a
// MasterBudget, an amount that diverges from the template by more than one
// cent must carry an override reason.
type Budget struct {
	Base
	UserID            uint     `gorm:"not null;index" json:"user_id"`
	MonthlyOverviewID uint     `gorm:"not null;index" json:"monthly_overview_id"`
	MasterBudgetID    *uint    `gorm:"index" json:"master_budget_id,omitempty"`
	Name              string   `gorm:"not null" json:"name"`
	Amount            float64  `gorm:"not null" json:"amount"`
	Description       string   `json:"description"`
	OverrideAmount    *float64 `json:"override_amount,omitempty"`
	OverrideReason    string   `json:"override_reason,omitempty"`

	// Relationships
	MasterBudget *MasterBudget `gorm:"foreignKey:MasterBudgetID" json:"master_budget,omitempty"`
	Expenses     []Expense     `gorm:"foreignKey:BudgetID" json:"expenses,omitempty"`
}
