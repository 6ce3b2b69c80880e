package spray

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedUnitConversion is matched by every *UnsupportedConversionError.
	ErrUnsupportedUnitConversion = errors.New("unsupported unit conversion")

	ErrInvalidPrice        = errors.New("price cannot be negative")
	ErrInvalidRate         = errors.New("application rate cannot be negative")
	ErrInvalidArea         = errors.New("area cannot be negative")
	ErrInvalidContainer    = errors.New("container size must be greater than zero")
	ErrNoContainers        = errors.New("product has no container sizes")
	ErrInvalidDiscountTier = errors.New("discount percent must be between 0 and 100")
)

// UnsupportedConversionError names the unit pair that has no factor.
type UnsupportedConversionError struct {
	From string
	To   string
}

func (e *UnsupportedConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q to %q", e.From, e.To)
}

func (e *UnsupportedConversionError) Is(target error) bool {
	return target == ErrUnsupportedUnitConversion
}
