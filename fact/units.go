package fact

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultRates is the static currency table used when none is configured.
// Values are the USD worth of one unit of the currency.
var DefaultRates = map[string]float64{
	"USD": 1.0,
	"EUR": 1.08,
	"UAH": 0.024,
}

// ResolveValue normalizes a scalar object value. Temperature strings
// ("<n> C|F|K") convert to Kelvin with two-decimal precision; currency
// strings ("<n> USD|EUR|UAH") convert to USD using the rate table.
// Anything that does not parse as either form passes through unchanged,
// since lens output is free-form.
func ResolveValue(value string, rates map[string]float64) string {
	if rates == nil {
		rates = DefaultRates
	}

	parts := strings.Fields(value)
	if len(parts) != 2 {
		return value
	}
	amount, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return value
	}

	unit := parts[1]
	switch unit {
	case "C":
		return formatKelvin(amount + 273.15)
	case "F":
		return formatKelvin((amount-32)*5/9 + 273.15)
	case "K":
		return formatKelvin(amount)
	}

	if rate, ok := rates[strings.ToUpper(unit)]; ok {
		return fmt.Sprintf("%.2fUSD", amount*rate)
	}
	return value
}

func formatKelvin(k float64) string {
	return fmt.Sprintf("%.2fK", k)
}
