package spray

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Unit string

const (
	Ounce  Unit = "oz"
	Gallon Unit = "gal"
	Pound  Unit = "lb"
)

var unitAliases = map[string]Unit{
	"oz":      Ounce,
	"ounce":   Ounce,
	"ounces":  Ounce,
	"floz":    Ounce,
	"gal":     Gallon,
	"gl":      Gallon,
	"gallon":  Gallon,
	"gallons": Gallon,
	"lb":      Pound,
	"lbs":     Pound,
	"pound":   Pound,
	"pounds":  Pound,
}

// factor converts a quantity as q * num / den. Kept rational so chained
// conversions do not accumulate rounding.
type factor struct {
	num int64
	den int64
}

var conversions = map[[2]Unit]factor{
	{Ounce, Gallon}: {1, 128},
	{Gallon, Ounce}: {128, 1},
	{Ounce, Pound}:  {1, 16},
	{Pound, Ounce}:  {16, 1},
}

// ParseUnit resolves the spellings used in price sheets. ok is false for
// anything it does not know.
func ParseUnit(s string) (Unit, bool) {
	u, ok := unitAliases[strings.ToLower(strings.TrimSpace(s))]
	return u, ok
}

// Convert expresses q (in from) in to. Only pairs in the factor table and
// same-unit pairs are accepted.
func Convert(q decimal.Decimal, from, to string) (decimal.Decimal, error) {
	f, err := lookup(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return f.apply(q), nil
}

func lookup(from, to string) (factor, error) {
	src, okFrom := ParseUnit(from)
	dst, okTo := ParseUnit(to)
	if !okFrom || !okTo {
		return factor{}, &UnsupportedConversionError{From: from, To: to}
	}
	if src == dst {
		return factor{1, 1}, nil
	}
	f, ok := conversions[[2]Unit{src, dst}]
	if !ok {
		return factor{}, &UnsupportedConversionError{From: from, To: to}
	}
	return f, nil
}

func (f factor) apply(q decimal.Decimal) decimal.Decimal {
	if f.den == 1 {
		return q.Mul(decimal.NewFromInt(f.num))
	}
	return q.Mul(decimal.NewFromInt(f.num)).Div(decimal.NewFromInt(f.den))
}
