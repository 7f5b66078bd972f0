package shared

import (
	"fmt"
	"math"
	"strconv"
)

// Money is a monetary value in minor units (cents). Integer arithmetic keeps
// bid comparisons exact; two bids are compared with plain < and >, no epsilon.
type Money int64

// MoneyFromFloat converts a dollar amount to minor units, rounding half away
// from zero. Used only at the API boundary where clients send JSON numbers.
func MoneyFromFloat(dollars float64) Money {
	return Money(math.Round(dollars * 100))
}

// Float64 returns the value in dollars for display and wire encoding.
func (m Money) Float64() float64 {
	return float64(m) / 100
}

// IsPositive reports whether the value is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m > 0
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the value as a dollar number, the format API clients
// send and receive.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(m.Float64(), 'f', 2, 64)), nil
}

// UnmarshalJSON accepts a JSON number in dollars.
func (m *Money) UnmarshalJSON(data []byte) error {
	dollars, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid monetary amount %q: %w", string(data), err)
	}
	*m = MoneyFromFloat(dollars)
	return nil
}
