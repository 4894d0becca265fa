package domain

import "github.com/shopspring/decimal"

// RoundMoney rounds a monetary value to 2 decimals, half up.
// decimal avoids the float drift that plain math.Round accumulates on
// quantity x price products.
func RoundMoney(v float64) float64 {
	out, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return out
}

// LineAmount computes a product line amount: quantity x unit price,
// rounded to 2 decimals.
func LineAmount(quantity, unitPrice float64) float64 {
	amount := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice))
	out, _ := amount.Round(2).Float64()
	return out
}

// TotalAmount sums the already-rounded per-line amounts. The sum of
// rounded line amounts is authoritative; rounding the sum of raw
// products can differ by a cent and is deliberately not used.
func TotalAmount(lines ProductLines) float64 {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(decimal.NewFromFloat(line.Amount))
	}
	out, _ := total.Round(2).Float64()
	return out
}
