// Package validator registers custom validation functions with Gin's binding
// engine so request DTOs can declare enum fields in their binding tags.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("frequency", validateFrequency)
		_ = v.RegisterValidation("subscription_status", validateSubscriptionStatus)
		_ = v.RegisterValidation("transfer_type", validateTransferType)
		_ = v.RegisterValidation("goal_priority", validateGoalPriority)
	}
}

func validateFrequency(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "weekly", "bi-weekly", "monthly", "quarterly", "bi-annually", "annually", "one-time":
		return true
	}
	return false
}

func validateSubscriptionStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "active", "paused", "cancelled", "ended":
		return true
	}
	return false
}

func validateTransferType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "budget_to_budget", "goal_to_budget", "goal_drawdown":
		return true
	}
	return false
}

func validateGoalPriority(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "low", "medium", "high":
		return true
	}
	return false
}
