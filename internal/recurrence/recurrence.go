// Package recurrence normalizes periodic amounts to canonical monthly and
// yearly equivalents. Conversion factors come from a 365.25-day, 12-month
// calendar approximation, so for any recurring frequency the monthly
// equivalent times twelve matches the yearly equivalent to within a cent.
package recurrence

import "hearth/internal/models"

// MonthlyAmount converts a periodic amount to its monthly equivalent.
// One-time amounts carry no recurring cost and normalize to zero.
func MonthlyAmount(freq models.Frequency, amount float64) float64 {
	switch freq {
	case models.FrequencyWeekly:
		return amount * 52 / 12
	case models.FrequencyBiWeekly:
		return amount * 26 / 12
	case models.FrequencyMonthly:
		return amount
	case models.FrequencyQuarterly:
		return amount / 3
	case models.FrequencyBiAnnually:
		return amount / 6
	case models.FrequencyAnnually:
		return amount / 12
	case models.FrequencyOneTime:
		return 0
	}
	return 0
}

// YearlyAmount converts a periodic amount to its yearly equivalent.
func YearlyAmount(freq models.Frequency, amount float64) float64 {
	switch freq {
	case models.FrequencyWeekly:
		return amount * 52
	case models.FrequencyBiWeekly:
		return amount * 26
	case models.FrequencyMonthly:
		return amount * 12
	case models.FrequencyQuarterly:
		return amount * 4
	case models.FrequencyBiAnnually:
		return amount * 2
	case models.FrequencyAnnually:
		return amount
	case models.FrequencyOneTime:
		return 0
	}
	return 0
}
