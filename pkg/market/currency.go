package market

import (
	"slices"
	"strings"

	errs "github.com/matzehuels/tokenfolio/pkg/errors"
)

// DefaultCurrency is used when no preference has been stored.
const DefaultCurrency = "usd"

// Currencies lists the display currencies offered to the user, in menu order.
var Currencies = []string{"usd", "eur", "gbp", "chf", "inr"}

var currencyNames = map[string]string{
	"usd": "US Dollar",
	"eur": "Euro",
	"gbp": "British Pound",
	"chf": "Swiss Franc",
	"inr": "Indian Rupee",
}

// Normalize trims and lower-cases a currency code.
func Normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// IsSupported reports whether code (in any case) is a display currency.
func IsSupported(code string) bool {
	return slices.Contains(Currencies, Normalize(code))
}

// ValidateCurrency returns the normalized code, or INVALID_ARGUMENT when the
// code is not a display currency.
func ValidateCurrency(code string) (string, error) {
	c := Normalize(code)
	if !slices.Contains(Currencies, c) {
		return "", errs.New(errs.ErrCodeInvalidArgument,
			"unsupported currency %q (choose one of %s)", code, strings.Join(Currencies, ", "))
	}
	return c, nil
}

// CurrencyName returns the English name of a display currency, or the
// upper-cased code for anything else.
func CurrencyName(code string) string {
	if name, ok := currencyNames[Normalize(code)]; ok {
		return name
	}
	return strings.ToUpper(Normalize(code))
}
