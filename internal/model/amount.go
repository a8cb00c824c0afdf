package model

import (
	"bytes"
	"encoding/json"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Numbers outside these bounds stay numeric but never reach decimal
// arithmetic.
const (
	MaxDigits   = 64
	MaxExponent = 64

	// maxLiteralLen caps the text handed to the decimal parser.
	maxLiteralLen = 128
)

var maxCoefficient = new(big.Int).Exp(big.NewInt(10), big.NewInt(MaxDigits), nil)

// WithinBounds reports whether d has at most MaxDigits significant digits and
// an exponent within ±MaxExponent.
func WithinBounds(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > MaxExponent || exp < -MaxExponent {
		return false
	}
	return d.Coefficient().CmpAbs(maxCoefficient) < 0
}

// Amount is an optional money value as received from a caller. It keeps track
// of whether a value was supplied at all, whether that value was numeric and
// whether it fits the supported range, so that "missing", "not a number",
// "out of range" and "negative" stay distinguishable.
type Amount struct {
	value      decimal.Decimal
	raw        json.RawMessage
	present    bool
	numeric    bool
	outOfRange bool
}

// NewAmount returns a present, numeric amount. Values outside WithinBounds are
// marked out of range and their value is dropped.
func NewAmount(d decimal.Decimal) Amount {
	if !WithinBounds(d) {
		return Amount{present: true, numeric: true, outOfRange: true}
	}
	return Amount{value: d, present: true, numeric: true}
}

// AmountOf converts an arbitrary Go value into an Amount. Integers, floats,
// decimals and json.Number are numeric, except NaN and infinities; nil is
// absent; anything else is kept as a non-numeric value.
func AmountOf(v any) Amount {
	switch n := v.(type) {
	case nil:
		return Amount{}
	case Amount:
		return n
	case decimal.Decimal:
		return NewAmount(n)
	case int:
		return NewAmount(decimal.NewFromInt(int64(n)))
	case int32:
		return NewAmount(decimal.NewFromInt32(n))
	case int64:
		return NewAmount(decimal.NewFromInt(n))
	case float32:
		if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
			return nonNumeric(nil)
		}
		return NewAmount(decimal.NewFromFloat32(n))
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nonNumeric(nil)
		}
		return NewAmount(decimal.NewFromFloat(n))
	case json.Number:
		var a Amount
		_ = a.UnmarshalJSON([]byte(n.String()))
		return a
	}

	raw, err := json.Marshal(v)
	if err != nil {
		raw = nil
	}
	return nonNumeric(raw)
}

func nonNumeric(raw []byte) Amount {
	return Amount{raw: append(json.RawMessage(nil), raw...), present: true}
}

func outOfRange(raw []byte) Amount {
	return Amount{raw: append(json.RawMessage(nil), raw...), present: true, numeric: true, outOfRange: true}
}

// Present reports whether a value was supplied.
func (a Amount) Present() bool { return a.present }

// Numeric reports whether the supplied value is a number.
func (a Amount) Numeric() bool { return a.present && a.numeric }

// InRange reports whether the amount is numeric and within WithinBounds.
func (a Amount) InRange() bool { return a.Numeric() && !a.outOfRange }

// Decimal returns the numeric value, or zero when the amount is absent,
// non-numeric or out of range.
func (a Amount) Decimal() decimal.Decimal {
	if !a.InRange() {
		return decimal.Zero
	}
	return a.value
}

func (a Amount) String() string {
	switch {
	case !a.present:
		return "<none>"
	case a.outOfRange && len(a.raw) == 0:
		return "<out of range>"
	case a.numeric && !a.outOfRange:
		return a.value.String()
	default:
		return string(a.raw)
	}
}

// UnmarshalJSON never fails: a JSON number becomes a numeric amount, null
// leaves the amount absent and every other JSON value is kept as non-numeric.
// A number whose exponent or digit count exceeds the bounds is numeric but
// out of range.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = Amount{}
		return nil
	}
	if c := b[0]; (c == '-' || (c >= '0' && c <= '9')) && json.Valid(b) {
		if len(b) > maxLiteralLen {
			*a = outOfRange(b)
			return nil
		}
		// NewFromString only fails on a valid JSON number when the exponent
		// overflows int32.
		d, err := decimal.NewFromString(string(b))
		if err != nil || !WithinBounds(d) {
			*a = outOfRange(b)
			return nil
		}
		*a = NewAmount(d)
		return nil
	}
	*a = nonNumeric(b)
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	switch {
	case !a.present:
		return []byte("null"), nil
	case a.outOfRange && len(a.raw) == 0:
		return []byte("null"), nil
	case a.outOfRange:
		return a.raw, nil
	case a.numeric:
		return []byte(a.value.String()), nil
	case len(a.raw) == 0:
		return []byte("null"), nil
	default:
		return a.raw, nil
	}
}
