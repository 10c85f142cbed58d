package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is a dollar amount held to cents.
type Money float64

// RoundMoney rounds v to two decimal places.
func RoundMoney(v float64) Money {
	return Money(math.Round(v*100) / 100)
}

// Float64 returns the raw amount.
func (m Money) Float64() float64 { return float64(m) }

// Fixed formats the amount with exactly two decimals and no currency sign.
func (m Money) Fixed() string {
	return strconv.FormatFloat(float64(m), 'f', 2, 64)
}

// String formats the amount as a dollar figure, e.g. "$975.00".
func (m Money) String() string { return "$" + m.Fixed() }

// MarshalJSON always emits two decimals so stored records read back as cents.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Fixed()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid money amount %q", s)
	}
	*m = RoundMoney(v)
	return nil
}
