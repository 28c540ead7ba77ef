package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ValueType identifies the type of value a port carries.
// A port's type is fixed for its lifetime.
type ValueType string

const (
	// TypeInt is a nullable 64-bit integer.
	TypeInt ValueType = "int"
)

// Value is a nullable integer flowing on ports.
// The zero Value is absent, which is distinct from Of(0).
type Value struct {
	n     int64
	valid bool
}

// Absent returns the "no value yet" marker.
func Absent() Value { return Value{} }

// Of wraps n as a present value.
func Of(n int64) Value { return Value{n: n, valid: true} }

// Present reports whether v carries a number.
func (v Value) Present() bool { return v.valid }

// Int returns the number and whether it is present.
func (v Value) Int() (int64, bool) { return v.n, v.valid }

// Is reports whether v is present and equal to n.
func (v Value) Is(n int64) bool { return v.valid && v.n == n }

// String renders the decimal number, or "" when absent.
func (v Value) String() string {
	if !v.valid {
		return ""
	}
	return strconv.FormatInt(v.n, 10)
}

// MarshalJSON encodes absent as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(v.n, 10)), nil
}

// UnmarshalJSON accepts null or an integer.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Absent()
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = Of(n)
	return nil
}

// ParseValue parses a decimal integer. The empty string and "null" yield Absent.
func ParseValue(s string) (Value, error) {
	if s == "" || s == "null" {
		return Absent(), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Absent(), err
	}
	return Of(n), nil
}

// Add returns a+b, or Absent if either operand is absent.
func Add(a, b Value) Value {
	if !a.valid || !b.valid {
		return Absent()
	}
	return Of(a.n + b.n)
}

// Div returns the truncated quotient a/b. It is Absent if either operand is
// absent or b is zero.
func Div(a, b Value) Value {
	if !a.valid || !b.valid || b.n == 0 {
		return Absent()
	}
	return Of(a.n / b.n)
}
