// Package finance holds the derived values the console forms compute while
// an operator edits inputs.
package finance

import (
	"math"
	"strconv"
	"strings"

	"retail-console/internal/core/domain"
)

// ParseAmount parses a numeric form field.
// Surrounding and grouping spaces are ignored. NaN and Inf are rejected.
func ParseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

// RecyclingProfit returns the profit earned for requestedQty units of a
// recycling record. The full profit is returned unscaled when the whole
// received amount is requested.
func RecyclingProfit(rec domain.RecyclingRecord, requestedQty float64) (float64, error) {
	if !finite(rec.SpentAmount, rec.GetAmount, rec.UnitSellingPrice, rec.UnitMinPrice, requestedQty) {
		return 0, domain.ErrNonFinite
	}
	if rec.GetAmount == 0 {
		return 0, domain.ErrZeroGetAmount
	}

	profitPerUnit := rec.UnitSellingPrice - rec.UnitMinPrice
	totalProfit := profitPerUnit * rec.SpentAmount

	profit := totalProfit
	if requestedQty != rec.GetAmount {
		profit = (totalProfit / rec.GetAmount) * requestedQty
	}
	if !finite(profit) {
		return 0, domain.ErrNonFinite
	}
	return profit, nil
}

// ConvertCurrency converts a USD amount to local currency. Both inputs are raw
// form strings; anything that does not parse yields 0.
func ConvertCurrency(amountUSD, exchangeRate string) float64 {
	usd, ok := ParseAmount(amountUSD)
	if !ok {
		return 0
	}
	rate, ok := ParseAmount(exchangeRate)
	if !ok {
		return 0
	}
	local := usd * rate
	if !finite(local) {
		return 0
	}
	return local
}

// DebtRemainder returns what is still owed on a debt after payments, never
// below zero.
func DebtRemainder(total float64, payments ...float64) float64 {
	if !finite(total) || !finite(payments...) {
		return 0
	}
	remainder := total
	for _, p := range payments {
		remainder -= p
	}
	if remainder < 0 || !finite(remainder) {
		return 0
	}
	return remainder
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
