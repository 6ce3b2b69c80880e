package spray

import (
	"github.com/shopspring/decimal"
)

// Container is a purchasable package size, e.g. a 105 gal shuttle.
type Container struct {
	Label string          `json:"label,omitempty"`
	Size  decimal.Decimal `json:"size"`
	Unit  string          `json:"unit"`
}

// ContainerPlan is how many containers cover a requirement. All quantities
// are in the container's unit.
type ContainerPlan struct {
	Container      Container       `json:"container"`
	TotalNeeded    decimal.Decimal `json:"totalNeeded"`
	Containers     int64           `json:"containers"`
	TotalPurchased decimal.Decimal `json:"totalPurchased"`
	Leftover       decimal.Decimal `json:"leftover"`
}

// ContainersRequired rounds up to whole containers; partial containers are
// not sold.
func ContainersRequired(totalArea, rate decimal.Decimal, rateUnit string, container Container) (ContainerPlan, error) {
	if totalArea.IsNegative() {
		return ContainerPlan{}, ErrInvalidArea
	}
	if rate.IsNegative() {
		return ContainerPlan{}, ErrInvalidRate
	}
	if !container.Size.IsPositive() {
		return ContainerPlan{}, ErrInvalidContainer
	}

	needed, err := Convert(totalArea.Mul(rate), rateUnit, container.Unit)
	if err != nil {
		return ContainerPlan{}, err
	}

	count := needed.Div(container.Size).Ceil()
	purchased := count.Mul(container.Size)

	return ContainerPlan{
		Container:      container,
		TotalNeeded:    needed,
		Containers:     count.IntPart(),
		TotalPurchased: purchased,
		Leftover:       purchased.Sub(needed),
	}, nil
}

// BestContainerPlan picks the variant with the least leftover, then the
// fewest containers. Variants whose unit cannot be reached are skipped; if
// none can, the last conversion error is returned.
func BestContainerPlan(totalArea, rate decimal.Decimal, rateUnit string, variants []Container) (ContainerPlan, error) {
	if len(variants) == 0 {
		return ContainerPlan{}, ErrNoContainers
	}

	var (
		best    ContainerPlan
		found   bool
		lastErr error
	)
	for _, v := range variants {
		plan, err := ContainersRequired(totalArea, rate, rateUnit, v)
		if err != nil {
			lastErr = err
			continue
		}
		if !found || betterPlan(plan, best) {
			best, found = plan, true
		}
	}
	if !found {
		return ContainerPlan{}, lastErr
	}
	return best, nil
}

func betterPlan(a, b ContainerPlan) bool {
	// Leftovers may be in different units; compare in a's unit.
	bLeft, err := Convert(b.Leftover, b.Container.Unit, a.Container.Unit)
	if err != nil {
		return false
	}
	if cmp := a.Leftover.Cmp(bLeft); cmp != 0 {
		return cmp < 0
	}
	return a.Containers < b.Containers
}
