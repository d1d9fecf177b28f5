package utils

import "github.com/shopspring/decimal"

// Money amounts are stored as float64 in the models but all billing
// arithmetic goes through decimal so that split invoices add up to the
// cent. Two amounts are considered equal when they match after rounding
// to two decimal places.

// RoundMoney rounds an amount to two decimal places (smallest currency unit).
func RoundMoney(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return f
}

// MoneyEquals reports whether two amounts are the same to the cent.
func MoneyEquals(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}

// SumMoney adds a list of amounts without accumulating float error.
func SumMoney(amounts []float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	f, _ := total.Round(2).Float64()
	return f
}

// ProportionalShares splits a charge (discount or tax) across parts in
// proportion to each part's share of the whole. Rounding remainders are
// pushed onto the last share so the shares always sum to the charge.
func ProportionalShares(charge float64, parts []float64, whole float64) []float64 {
	shares := make([]float64, len(parts))
	if len(parts) == 0 {
		return shares
	}
	chargeDec := decimal.NewFromFloat(charge)
	wholeDec := decimal.NewFromFloat(whole)
	if wholeDec.IsZero() {
		return shares
	}
	assigned := decimal.Zero
	for i, part := range parts {
		if i == len(parts)-1 {
			f, _ := chargeDec.Sub(assigned).Round(2).Float64()
			shares[i] = f
			break
		}
		share := decimal.NewFromFloat(part).Mul(chargeDec).Div(wholeDec).Round(2)
		assigned = assigned.Add(share)
		f, _ := share.Float64()
		shares[i] = f
	}
	return shares
}
