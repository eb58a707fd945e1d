package market

import (
	"math"
	"testing"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		code   string
		want   string
	}{
		{67000, "usd", "$67,000.00"},
		{67123.456, "usd", "$67,123.456"},
		{1.5, "USD", "$1.50"},
		{0, "usd", "$0.00"},
		{0.000123456, "usd", "$0.000123"},
		{0.0000004, "usd", "$0.00"},
		{1234567.891234567, "eur", "€1,234,567.891235"},
		{-1000, "gbp", "-£1,000.00"},
		{12.5, "chf", "CHF 12.50"},
		{99.99, "inr", "₹99.99"},
		{1300000000000, "usd", "$1,300,000,000,000.00"},
		{5, "jpy", "JPY 5.00"},
		{0.005, "usd", "$0.005"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatCurrency(tt.amount, tt.code); got != tt.want {
				t.Errorf("FormatCurrency(%v, %q) = %q, want %q", tt.amount, tt.code, got, tt.want)
			}
		})
	}
}

func TestFormatCurrencyNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := FormatCurrency(v, "usd"); got != NotAvailable {
			t.Errorf("FormatCurrency(%v) = %q, want %q", v, got, NotAvailable)
		}
	}
}

func TestFormatOptional(t *testing.T) {
	if got := FormatOptional(nil, "usd"); got != NotAvailable {
		t.Errorf("FormatOptional(nil) = %q", got)
	}
	v := 21000000.0
	if got := FormatOptional(&v, "usd"); got != "$21,000,000.00" {
		t.Errorf("FormatOptional(21e6) = %q", got)
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.234, "+1.23%"},
		{1.235, "+1.24%"},
		{-4.561, "-4.56%"},
		{0, "0.00%"},
		{-0.001, "0.00%"},
		{100, "+100.00%"},
	}

	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{19700000, "19,700,000"},
		{999.6, "1,000"},
		{0, "0"},
		{-1234, "-1,234"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
