package spray

import (
	"github.com/shopspring/decimal"
)

// CostPerArea converts rate from rateUnit into priceUnit and multiplies by
// price. The result is unrounded.
func CostPerArea(price, rate decimal.Decimal, rateUnit, priceUnit string) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Zero, ErrInvalidPrice
	}
	if rate.IsNegative() {
		return decimal.Zero, ErrInvalidRate
	}
	normalized, err := Convert(rate, rateUnit, priceUnit)
	if err != nil {
		return decimal.Zero, err
	}
	return normalized.Mul(price), nil
}

// Product is a priced chemical with the container sizes it is sold in.
type Product struct {
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	PriceUnit  string          `json:"priceUnit"`
	Containers []Container     `json:"containers,omitempty"`
}

// PassProduct is one product applied at Rate (per acre) in a pass.
type PassProduct struct {
	Product  Product         `json:"product"`
	Rate     decimal.Decimal `json:"rate"`
	RateUnit string          `json:"rateUnit"`
}

// Pass is one spray application event.
type Pass struct {
	Name     string        `json:"name"`
	Products []PassProduct `json:"products"`
}

// PassCost sums the per-acre cost of every product in the pass. An empty
// pass costs nothing.
func PassCost(pass Pass) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, pp := range pass.Products {
		cost, err := CostPerArea(pp.Product.Price, pp.Rate, pp.RateUnit, pp.Product.PriceUnit)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(cost)
	}
	return total, nil
}

// AggregatePassCost is the full-program per-acre price.
func AggregatePassCost(passes []Pass) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, pass := range passes {
		cost, err := PassCost(pass)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(cost)
	}
	return total, nil
}
