package spray

import (
	"m77ag-backend/utils"

	"github.com/shopspring/decimal"
)

// Program is an ordered set of passes.
type Program struct {
	Name   string `json:"name"`
	Passes []Pass `json:"passes"`
}

type PassCostLine struct {
	Name    string          `json:"name"`
	PerAcre decimal.Decimal `json:"perAcre"`
}

// ProductPurchase is the container plan for one product across all passes.
type ProductPurchase struct {
	Product string          `json:"product"`
	RatePer decimal.Decimal `json:"ratePerAcre"`
	Unit    string          `json:"unit"`
	Plan    ContainerPlan   `json:"plan"`
}

// Quote is the full program cost result.
type Quote struct {
	Program string `json:"program"`
	ProgramCost
	Passes    []PassCostLine    `json:"passes"`
	Purchases []ProductPurchase `json:"purchases"`
}

// QuoteProgram prices program over acres and plans container purchases.
func QuoteProgram(program Program, acres decimal.Decimal, tiers []DiscountTier) (*Quote, error) {
	lines := make([]PassCostLine, 0, len(program.Passes))
	for _, pass := range program.Passes {
		cost, err := PassCost(pass)
		if err != nil {
			return nil, err
		}
		lines = append(lines, PassCostLine{Name: pass.Name, PerAcre: cost})
	}

	perAcre, err := AggregatePassCost(program.Passes)
	if err != nil {
		return nil, err
	}
	cost, err := ProgramCostForArea(acres, perAcre, tiers)
	if err != nil {
		return nil, err
	}

	purchases, err := planPurchases(program, acres)
	if err != nil {
		return nil, err
	}

	return &Quote{
		Program:     program.Name,
		ProgramCost: cost,
		Passes:      lines,
		Purchases:   purchases,
	}, nil
}

// planPurchases totals each product's per-acre rate across passes, in the
// product's price unit, then sizes containers for the whole acreage.
// Products without container sizes are priced but not planned.
func planPurchases(program Program, acres decimal.Decimal) ([]ProductPurchase, error) {
	type usage struct {
		product Product
		rate    decimal.Decimal
	}
	var order []string
	totals := map[string]*usage{}

	for _, pass := range program.Passes {
		for _, pp := range pass.Products {
			rate, err := Convert(pp.Rate, pp.RateUnit, pp.Product.PriceUnit)
			if err != nil {
				return nil, err
			}
			u, ok := totals[pp.Product.Name]
			if !ok {
				u = &usage{product: pp.Product, rate: decimal.Zero}
				totals[pp.Product.Name] = u
				order = append(order, pp.Product.Name)
			}
			u.rate = u.rate.Add(rate)
		}
	}

	purchases := make([]ProductPurchase, 0, len(order))
	for _, name := range order {
		u := totals[name]
		if len(u.product.Containers) == 0 {
			continue
		}
		plan, err := BestContainerPlan(acres, u.rate, u.product.PriceUnit, u.product.Containers)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, ProductPurchase{
			Product: name,
			RatePer: u.rate,
			Unit:    u.product.PriceUnit,
			Plan:    plan,
		})
	}
	return purchases, nil
}

// Rounded returns a copy with money fields rounded to cents for display.
func (q *Quote) Rounded() *Quote {
	out := *q
	out.PerAcrePrice = utils.RoundMoney(q.PerAcrePrice)
	out.BaseTotal = utils.RoundMoney(q.BaseTotal)
	out.DiscountAmount = utils.RoundMoney(q.DiscountAmount)
	out.FinalTotal = utils.RoundMoney(q.FinalTotal)

	out.Passes = make([]PassCostLine, len(q.Passes))
	for i, line := range q.Passes {
		out.Passes[i] = PassCostLine{Name: line.Name, PerAcre: utils.RoundMoney(line.PerAcre)}
	}
	return &out
}
