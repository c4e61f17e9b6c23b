package models

import "time"

// Frequency is a billing cadence for subscriptions and recurring expenses.
type Frequency string

const (
	FrequencyWeekly     Frequency = "weekly"
	FrequencyBiWeekly   Frequency = "bi-weekly"
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencyBiAnnually Frequency = "bi-annually"
	FrequencyAnnually   Frequency = "annually"
	FrequencyOneTime    Frequency = "one-time"
)

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusEnded     SubscriptionStatus = "ended"
)

// Subscription is a recurring commitment. The budgeting core uses it for its
// normalized cost projection and for generating one-off budget lines in a
// month whose window covers the next billing date.
type Subscription struct {
	Base
	UserID          uint               `gorm:"not null;index" json:"user_id"`
	Name            string             `gorm:"not null" json:"name"`
	Amount          float64            `gorm:"not null" json:"amount"`
	Frequency       Frequency          `gorm:"not null" json:"frequency"`
	Status          SubscriptionStatus `gorm:"not null;default:active" json:"status"`
	NextBillingDate *time.Time         `json:"next_billing_date,omitempty"`
	Description     string             `json:"description"`
}
