package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := map[string]string{
		"0":          "$0.00",
		"5":          "$5.00",
		"1300":       "$1,300.00",
		"1250.5":     "$1,250.50",
		"3.7375":     "$3.74",
		"1234567.89": "$1,234,567.89",
		"-50":        "-$50.00",
		"999.999":    "$1,000.00",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestRoundMoney(t *testing.T) {
	assert.True(t, RoundMoney(decimal.RequireFromString("19576.5")).Equal(decimal.RequireFromString("19576.50")))
	assert.True(t, RoundMoney(decimal.RequireFromString("1737.9375")).Equal(decimal.RequireFromString("1737.94")))
}

func TestPercentToFraction(t *testing.T) {
	assert.True(t, PercentToFraction(decimal.NewFromInt(7)).Equal(decimal.RequireFromString("0.07")))
}
