package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCentsValidation(t *testing.T) {
	type price struct {
		Amount decimal.Decimal `validate:"gte=0,lt=10000000000,cents"`
	}

	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{name: "whole amount", amount: "12"},
		{name: "two decimals", amount: "12.50"},
		{name: "trailing zeros beyond cents", amount: "9.2500"},
		{name: "largest storable price", amount: "9999999999.99"},
		{name: "three decimals", amount: "12.345", wantErr: true},
		{name: "fraction of a cent", amount: "0.001", wantErr: true},
		{name: "too large for the column", amount: "10000000000", wantErr: true},
	}

	v := NewValidator()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(price{Amount: decimal.RequireFromString(tt.amount)})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
