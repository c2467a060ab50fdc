package fines_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"LIBRIS-backend/internal/library/fines"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
	}{
		{name: "whole_dollars", amount: 5},
		{name: "with_cents", amount: 1.50},
		{name: "zero", amount: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := fines.FormatUSD(tc.amount)
			assert.Contains(t, got, "$")
			assert.NotContains(t, got, "USD")
		})
	}
}
