package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// decimalScale is the fixed fractional-digit scale FHIRPath decimals are
// rendered and compared at (spec.md §3.1: "fixed-point with 8 fractional
// digits").
const decimalScale = 8

// Decimal is a FHIRPath decimal value, backed by shopspring/decimal for
// arbitrary-precision arithmetic but normalized to a fixed 8-digit scale on
// construction, matching the reference implementation's ValueElement
// (original_source/src/fhirtools/model/ValueElement.hxx).
type Decimal struct {
	d decimal.Decimal
}

// NewDecimal builds a Decimal from a shopspring/decimal.Decimal, rounding to
// the fixed scale.
func NewDecimal(d decimal.Decimal) Decimal {
	return Decimal{d: d.Round(decimalScale)}
}

// DecimalFromInt lifts an integer into a Decimal (used by the Integer ≤
// Decimal promotion lattice, spec.md §4.2).
func DecimalFromInt(i int64) Decimal {
	return Decimal{d: decimal.NewFromInt(i)}
}

// ParseDecimal parses a FHIRPath decimal literal (e.g. "33.0", "-4.50").
func ParseDecimal(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid decimal literal %q: %w", s, err)
	}
	return NewDecimal(d), nil
}

// Raw exposes the underlying shopspring/decimal.Decimal for arithmetic that
// lives outside this package (e.g. the slicing engine's equality checks).
func (d Decimal) Raw() decimal.Decimal { return d.d }

// Add, Sub, Mod implement the small arithmetic surface spec.md §4.2 puts in
// scope (only `mod` is required; `+` is listed for completeness of the
// Integer/Decimal lattice used by comparison promotion).
func (d Decimal) Add(o Decimal) Decimal { return NewDecimal(d.d.Add(o.d)) }
func (d Decimal) Sub(o Decimal) Decimal { return NewDecimal(d.d.Sub(o.d)) }

// Mod implements FHIRPath decimal `mod` with fmod-style semantics: the sign
// of the result follows the dividend, and a zero divisor yields an error the
// caller turns into an empty result (spec.md §4.2 "Math").
func (d Decimal) Mod(o Decimal) (Decimal, error) {
	if o.d.IsZero() {
		return Decimal{}, fmt.Errorf("modulo by zero")
	}
	quotient := d.d.Div(o.d).Truncate(0)
	remainder := d.d.Sub(quotient.Mul(o.d))
	return NewDecimal(remainder), nil
}

// Cmp implements total ordering between two Decimals.
func (d Decimal) Cmp(o Decimal) int { return d.d.Cmp(o.d) }

// Equal reports exact equality at the fixed scale.
func (d Decimal) Equal(o Decimal) bool { return d.d.Equal(o.d) }

// String renders the decimal with trailing zeros trimmed, matching the
// reference implementation's round-trip-preserving string form.
func (d Decimal) String() string { return d.d.String() }

// Quantity is a FHIRPath (value, unit) pair (spec.md §3.1). Unit conversion
// is out of scope: quantities only compare when their units match exactly.
type Quantity struct {
	Value Decimal
	Unit  string
}

// Equal reports whether two quantities have the same unit and equal value.
func (q Quantity) Equal(o Quantity) bool {
	return q.Unit == o.Unit && q.Value.Equal(o.Value)
}

// Cmp compares two same-unit quantities. ErrNotComparable is returned
// otherwise (spec.md §3.1: "conversion between units is not performed").
func (q Quantity) Cmp(o Quantity) (int, error) {
	if q.Unit != o.Unit {
		return 0, ErrNotComparable
	}
	return q.Value.Cmp(o.Value), nil
}

func (q Quantity) String() string {
	if q.Unit == "" {
		return q.Value.String()
	}
	return fmt.Sprintf("%s '%s'", q.Value.String(), q.Unit)
}
