package utils_test

import (
	"testing"

	"github.com/openbooks/ledger-backend/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatWithPrecision(t *testing.T) {
	testCases := []struct {
		name      string
		amount    string
		precision int
		expected  string
	}{
		{name: "rounds half up", amount: "12.3456", precision: 2, expected: "12.35"},
		{name: "trims extra places", amount: "100.999", precision: 2, expected: "101"},
		{name: "negative amount", amount: "-0.005", precision: 2, expected: "-0.01"},
		{name: "zero precision", amount: "7.5", precision: 0, expected: "8"},
		{name: "already exact", amount: "50", precision: 2, expected: "50"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := utils.FormatWithPrecision(decimal.RequireFromString(tc.amount), tc.precision)
			assert.Equal(t, tc.expected, got)
		})
	}
}
