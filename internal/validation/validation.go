// Package validation holds the stateless guard functions and summary
// arithmetic shared by every ledger service. Each guard either returns nil or
// an *errors.AppError whose message is shown to the user verbatim.
package validation

import (
	"fmt"
	"math"
	"time"

	apperrors "hearth/internal/errors"
)

// currencySymbol prefixes every amount embedded in an error message.
const currencySymbol = "€"

// FormatAmount renders a currency value with the symbol and exactly two
// decimal places, e.g. €50.00.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%s%.2f", currencySymbol, v)
}

// roundCents rounds to two decimal places. Guards compare cent-rounded values
// so that float noise (99.99 + 0.01 == 100.00000000000001) cannot reject an
// exact-boundary amount.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// floorCents truncates to two decimal places. Reported remaining amounts are
// floored rather than rounded so the message never promises more than is
// actually available.
func floorCents(v float64) float64 {
	return math.Floor(v*100) / 100
}

// DateRange fails unless end >= start. Equal dates form a valid single-day
// period. The label names the entity being validated ("Goal", "February
// 2026", ...) and prefixes the message when present.
func DateRange(start, end time.Time, label string) error {
	if end.Before(start) {
		msg := "End Date must be after Start Date"
		if label != "" {
			msg = label + ": " + msg
		}
		return apperrors.NewValidation(msg)
	}
	return nil
}

// PositiveAmount fails unless value > 0.
func PositiveAmount(value float64, fieldName string) error {
	if value <= 0 {
		return apperrors.NewValidation(fmt.Sprintf("%s must be greater than zero", fieldName))
	}
	return nil
}

// NonNegativeAmount fails unless value >= 0.
func NonNegativeAmount(value float64, fieldName string) error {
	if value < 0 {
		return apperrors.NewValidation(fmt.Sprintf("%s cannot be negative", fieldName))
	}
	return nil
}

// Progress fails unless value lies in [0, 100].
func Progress(value float64) error {
	if value < 0 || value > 100 {
		return apperrors.NewValidation("Progress must be between 0 and 100")
	}
	return nil
}

// ExpenseDateWithinMonth fails unless monthStart <= date <= monthEnd,
// inclusive on both ends. The message names the offending date and month so
// the form can show it without further lookup.
func ExpenseDateWithinMonth(date, monthStart, monthEnd time.Time, monthLabel string) error {
	if date.Before(monthStart) || date.After(monthEnd) {
		return apperrors.NewValidation(fmt.Sprintf(
			"Expense date %s is outside %s (%s to %s)",
			date.Format("2006-01-02"), monthLabel,
			monthStart.Format("2006-01-02"), monthEnd.Format("2006-01-02"),
		))
	}
	return nil
}

// NoOverspending fails unless alreadySpent + newAmount fits within
// budgetAmount. The message reports the requested amount, what is still
// available, and the overage, all currency-formatted. The comparison is
// cent-rounded; the reported remaining is floored.
func NoOverspending(budgetAmount, alreadySpent, newAmount float64, budgetName string) error {
	if roundCents(alreadySpent+newAmount) > roundCents(budgetAmount) {
		remaining := floorCents(budgetAmount - alreadySpent)
		overage := roundCents(alreadySpent + newAmount - budgetAmount)
		return apperrors.NewOverspending(fmt.Sprintf(
			"Cannot spend %s in %q: only %s available, over by %s",
			FormatAmount(newAmount), budgetName, FormatAmount(remaining), FormatAmount(overage),
		))
	}
	return nil
}

// NoOverdraw fails unless amount fits within the goal's current balance. The
// message reports the available balance. Like NoOverspending it is a
// business-rule rejection, not a malformed request.
func NoOverdraw(balance, amount float64, goalName string) error {
	if roundCents(amount) > roundCents(balance) {
		return apperrors.NewOverspending(fmt.Sprintf(
			"Cannot withdraw %s from %q: only %s available",
			FormatAmount(amount), goalName, FormatAmount(floorCents(balance)),
		))
	}
	return nil
}

// NoNegativeBalance fails when an edit would leave the goal's derived balance
// below zero, which happens when a base amount is lowered or a goal-linked
// expense shrinks after money has already been drawn down.
func NoNegativeBalance(newBalance float64, goalName string) error {
	if roundCents(newBalance) < 0 {
		return apperrors.NewOverspending(fmt.Sprintf(
			"Cannot apply change to %q: balance would drop to %s",
			goalName, FormatAmount(roundCents(newBalance)),
		))
	}
	return nil
}

// BudgetSummary is the derived spending picture of a single budget.
type BudgetSummary struct {
	AmountSpent float64 `json:"amount_spent"`
	AmountLeft  float64 `json:"amount_left"`
	PercentUsed float64 `json:"percent_used"`
}

// CalculateBudgetSummary sums the expense amounts against the budget amount.
// AmountLeft may be negative when overspent. PercentUsed is defined as zero
// for a zero budget rather than an error.
func CalculateBudgetSummary(budgetAmount float64, expenseAmounts []float64) BudgetSummary {
	var spent float64
	for _, v := range expenseAmounts {
		spent += v
	}

	var percent float64
	if budgetAmount != 0 {
		percent = spent / budgetAmount * 100
	}

	return BudgetSummary{
		AmountSpent: spent,
		AmountLeft:  budgetAmount - spent,
		PercentUsed: percent,
	}
}

// MonthlyOverviewSummary is the income/allocation picture of a month.
type MonthlyOverviewSummary struct {
	TotalIncome       float64 `json:"total_income"`
	TotalBudgeted     float64 `json:"total_budgeted"`
	AmountUnallocated float64 `json:"amount_unallocated"`
}

// CalculateMonthlyOverviewSummary totals income and budgeted amounts for a
// month. AmountUnallocated may be negative when the month over-allocates.
func CalculateMonthlyOverviewSummary(incomeAmounts, budgetAmounts []float64) MonthlyOverviewSummary {
	var income, budgeted float64
	for _, v := range incomeAmounts {
		income += v
	}
	for _, v := range budgetAmounts {
		budgeted += v
	}

	return MonthlyOverviewSummary{
		TotalIncome:       income,
		TotalBudgeted:     budgeted,
		AmountUnallocated: income - budgeted,
	}
}
