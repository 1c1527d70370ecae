package model

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Value is a fixed-point integer that may be undefined. The zero Value is the
// undefined marker and is never equal to a defined zero.
type Value struct {
	v *big.Int
}

// Defined wraps a copy of v. A nil v yields the undefined marker.
func Defined(v *big.Int) Value {
	if v == nil {
		return Value{}
	}
	return Value{v: new(big.Int).Set(v)}
}

// Undefined returns the undefined marker.
func Undefined() Value {
	return Value{}
}

func (v Value) IsDefined() bool {
	return v.v != nil
}

// Int returns a copy of the integer and whether it is defined.
func (v Value) Int() (*big.Int, bool) {
	if v.v == nil {
		return nil, false
	}
	return new(big.Int).Set(v.v), true
}

// IsZero reports whether the value is defined and equal to zero.
func (v Value) IsZero() bool {
	return v.v != nil && v.v.Sign() == 0
}

func (v Value) Equal(other Value) bool {
	if v.v == nil || other.v == nil {
		return v.v == nil && other.v == nil
	}
	return v.v.Cmp(other.v) == 0
}

func (v Value) String() string {
	if v.v == nil {
		return "undefined"
	}
	return v.v.String()
}

// MarshalJSON encodes undefined as null and defined values as decimal strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v.v.String())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*v = Value{}
		return nil
	}
	parsed, err := parseJSONInt(data)
	if err != nil {
		return fmt.Errorf("value: %w", err)
	}
	*v = Value{v: parsed}
	return nil
}
