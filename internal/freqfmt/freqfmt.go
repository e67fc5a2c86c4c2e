// Package freqfmt turns raw frequencies in Hz into short axis labels such as
// "1.32 kHz" or "15.01 MHz".
package freqfmt

import (
	"fmt"
	"math"
)

const (
	minExponent = 0
	maxExponent = 9
)

// unit is a row of the exponent lookup table
type unit struct {
	minExp  int     // smallest decimal exponent handled by this unit
	maxExp  int     // largest decimal exponent handled by this unit
	divisor float64 // value is divided by this before formatting
	suffix  string
}

// units is ordered from the largest exponent down; the first row whose
// exponent range contains the value wins.
var units = []unit{
	{minExp: 9, maxExp: 9, divisor: 1e9, suffix: "GHz"},
	{minExp: 6, maxExp: 8, divisor: 1e6, suffix: "MHz"},
	{minExp: 3, maxExp: 5, divisor: 1e3, suffix: "kHz"},
	{minExp: 0, maxExp: 2, divisor: 1, suffix: "Hz"},
}

// Format converts a frequency in Hz to a label with two decimal digits and
// a unit suffix, e.g. 1320 -> "1.32 kHz", 15012402 -> "15.01 MHz".
//
// Exponents outside [0, 9] are clamped, so 25 GHz is "25.00 GHz" and 0.5 Hz is
// "0.50 Hz". Negative values pick the unit by magnitude and keep their sign.
// NaN and infinities produce an empty label.
func Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}

	u := lookup(exponent(v))
	return fmt.Sprintf("%.2f %s", v/u.divisor, u.suffix)
}

// FormatRange formats a frequency interval as "<min> - <max>".
func FormatRange(min, max float64) string {
	return fmt.Sprintf("%s - %s", Format(min), Format(max))
}

// exponent returns floor(log10(|v|)) clamped to the supported range.
func exponent(v float64) int {
	a := math.Abs(v)
	if a == 0 {
		return minExponent
	}

	e := int(math.Floor(math.Log10(a)))

	// Log10 is not exact for every power of ten
	if math.Pow10(e+1) <= a {
		e++
	} else if math.Pow10(e) > a {
		e--
	}

	return min(max(e, minExponent), maxExponent)
}

func lookup(exp int) unit {
	for _, u := range units {
		if exp >= u.minExp && exp <= u.maxExp {
			return u
		}
	}
	return units[len(units)-1]
}
