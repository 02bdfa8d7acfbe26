package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Number is a JSON number that stays exact while it is integral.
// The zero value means "absent" and counts as 0 in arithmetic.
type Number struct {
	text  string
	i     int64
	f     float64
	isInt bool
	valid bool
}

// ParseNumber reads a JSON number literal, such as a json.Number
func ParseNumber(s string) (Number, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Number{text: s, i: i, f: float64(i), isInt: true, valid: true}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return Number{text: s, f: f, valid: true}, nil
}

// IntNumber wraps an integer
func IntNumber(v int64) Number {
	return Number{text: strconv.FormatInt(v, 10), i: v, f: float64(v), isInt: true, valid: true}
}

// FloatNumber wraps a float; it is never treated as an integer
func FloatNumber(v float64) Number {
	return Number{text: strconv.FormatFloat(v, 'f', -1, 64), f: v, valid: true}
}

// Valid is false when the field was absent
func (n Number) Valid() bool { return n.valid }

// IsInt is true for absent numbers and integral literals
func (n Number) IsInt() bool { return !n.valid || n.isInt }

func (n Number) Int64() int64 {
	if n.IsInt() {
		return n.i
	}
	return int64(n.f)
}

func (n Number) Float64() float64 {
	if n.IsInt() {
		return float64(n.i)
	}
	return n.f
}

// String returns the literal as received, or "" for an absent number
func (n Number) String() string {
	return n.text
}

// Mul multiplies exactly when both sides are integral and the product fits in int64
func (n Number) Mul(o Number) Number {
	if n.IsInt() && o.IsInt() {
		a, b := n.Int64(), o.Int64()
		if a == 0 || b == 0 {
			return IntNumber(0)
		}
		p := a * b
		if p/b == a && !(a == -1 && b == math.MinInt64) && !(b == -1 && a == math.MinInt64) {
			return IntNumber(p)
		}
	}
	return FloatNumber(n.Float64() * o.Float64())
}

// Sub subtracts exactly when both sides are integral
func (n Number) Sub(o Number) Number {
	if n.IsInt() && o.IsInt() {
		a, b := n.Int64(), o.Int64()
		d := a - b
		if (b >= 0 && d <= a) || (b < 0 && d > a) {
			return IntNumber(d)
		}
	}
	return FloatNumber(n.Float64() - o.Float64())
}

// MarshalJSON writes the original literal; absent numbers become null
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return []byte(n.text), nil
}

// UnmarshalJSON accepts number literals and null
func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Number{}
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	parsed, err := ParseNumber(num.String())
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
