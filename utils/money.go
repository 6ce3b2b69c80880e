package utils

import "github.com/shopspring/decimal"

// RoundMoney rounds to cents for storage and display. Never feed the result
// back into a chained calculation.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatMoney renders a dollar amount like "$1,300.00".
func FormatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-2:]

	var grouped []byte
	for i := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, whole[i])
	}

	sign := ""
	if d.Sign() < 0 {
		sign = "-"
	}
	return sign + "$" + string(grouped) + "." + frac
}

// PercentToFraction turns 7 (percent) into 0.07.
func PercentToFraction(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(decimal.NewFromInt(100))
}
