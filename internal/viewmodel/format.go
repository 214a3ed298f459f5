package viewmodel

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// Formatter renders numbers for display. The zero value uses ₹.
type Formatter struct {
	Currency string
}

func (f Formatter) symbol() string {
	if f.Currency == "" {
		return "₹"
	}
	return f.Currency
}

// Money formats v with the currency symbol and thousands separators. Whole
// amounts drop the decimals; anything else shows exactly two.
func (f Formatter) Money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return f.symbol() + fmt.Sprint(v)
	}
	v = math.Round(v*100) / 100
	sign := ""
	if v < 0 {
		sign = "-"
	}
	s := humanize.CommafWithDigits(math.Abs(v), 2)
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i == 2 {
		s += "0"
	}
	return sign + f.symbol() + s
}

// Count formats a whole-number count with thousands separators. Counts
// outside the int64 range keep their float digits.
func (f Formatter) Count(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	v = math.Round(v)
	if v >= math.MaxInt64 || v < math.MinInt64 {
		return humanize.Commaf(v)
	}
	return humanize.Comma(int64(v))
}

// Percent formats a 0..1 ratio as a percentage with one decimal.
func (f Formatter) Percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// Multiplier formats a lift-style ratio, e.g. 2.35x.
func (f Formatter) Multiplier(v float64) string {
	return fmt.Sprintf("%.2fx", v)
}

// Hour formats an hour of day as HH:00.
func (f Formatter) Hour(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

// Price formats a catalog price: the currency symbol and always two decimals.
func (f Formatter) Price(v float64) string {
	s := f.Money(v)
	if !strings.Contains(s, ".") {
		s += ".00"
	}
	return s
}
