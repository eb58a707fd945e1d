package market

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Fraction digit bounds for prices. Small-cap tokens trade well below one
// cent, so up to six digits are kept; trailing zeros beyond two are dropped.
const (
	minFractionDigits = 2
	maxFractionDigits = 6
)

// NotAvailable is printed for figures the service did not report.
const NotAvailable = "N/A"

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"INR": "₹",
}

var maxGrouped = decimal.NewFromInt(math.MaxInt64)

// FormatCurrency renders amount in US English style for the given currency
// code: "$67,123.45", "€0.000123", "-£1,000.00", "CHF 12.50".
//
// Codes without a narrow symbol are printed as an upper-case prefix.
// Non-finite amounts render as [NotAvailable].
func FormatCurrency(amount float64, code string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return NotAvailable
	}

	iso := strings.ToUpper(Normalize(code))
	if unit, err := currency.ParseISO(iso); err == nil {
		iso = unit.String()
	}
	prefix, ok := symbols[iso]
	if !ok {
		prefix = iso + " "
	}

	d := decimal.NewFromFloat(amount).Round(maxFractionDigits)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + prefix + groupDecimal(d)
}

// FormatOptional is FormatCurrency for nullable figures.
func FormatOptional(amount *float64, code string) string {
	if amount == nil {
		return NotAvailable
	}
	return FormatCurrency(*amount, code)
}

// FormatPercent renders a change as "+1.23%" or "-4.56%". Values that
// round to zero print without a sign.
func FormatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return NotAvailable
	}
	d := decimal.NewFromFloat(p).Round(2)
	s := d.StringFixed(2) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	return s
}

// FormatNumber renders a plain quantity with thousands separators and no
// fraction, e.g. supplies: "19,700,000".
func FormatNumber(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return NotAvailable
	}
	d := decimal.NewFromFloat(n).Round(0)
	if d.IsNegative() {
		return "-" + groupInt(d.Abs())
	}
	return groupInt(d)
}

// groupDecimal prints a non-negative decimal with grouped integer digits and
// between min and max fraction digits.
func groupDecimal(d decimal.Decimal) string {
	fixed := d.StringFixed(maxFractionDigits)
	_, frac, _ := strings.Cut(fixed, ".")
	frac = strings.TrimRight(frac, "0")
	for len(frac) < minFractionDigits {
		frac += "0"
	}
	return groupInt(d.Truncate(0)) + "." + frac
}

func groupInt(d decimal.Decimal) string {
	if d.GreaterThanOrEqual(maxGrouped) {
		return d.Truncate(0).String()
	}
	p := message.NewPrinter(language.AmericanEnglish)
	return p.Sprintf("%d", d.IntPart())
}
