package model

import "fmt"

// Literal is a concrete Element for primitive values synthesized during
// expression evaluation (literal nodes, computed results) rather than read
// from a host resource tree. It carries no profile/element-definition
// handle and no parent — those only exist for elements sourced from a real
// resource (spec.md §3.1).
type Literal struct {
	typ      Type
	i        int64
	d        Decimal
	s        string
	b        bool
	ts       Timestamp
	q        Quantity
	parent   Element
}

var _ Element = (*Literal)(nil)

// NewIntegerLiteral builds an Integer Element.
func NewIntegerLiteral(v int64) *Literal { return &Literal{typ: TypeInteger, i: v} }

// NewDecimalLiteral builds a Decimal Element.
func NewDecimalLiteral(v Decimal) *Literal { return &Literal{typ: TypeDecimal, d: v} }

// NewStringLiteral builds a String Element.
func NewStringLiteral(v string) *Literal { return &Literal{typ: TypeString, s: v} }

// NewBooleanLiteral builds a Boolean Element.
func NewBooleanLiteral(v bool) *Literal { return &Literal{typ: TypeBoolean, b: v} }

// NewDateLiteral builds a Date Element.
func NewDateLiteral(v Timestamp) *Literal { return &Literal{typ: TypeDate, ts: v} }

// NewDateTimeLiteral builds a DateTime Element.
func NewDateTimeLiteral(v Timestamp) *Literal { return &Literal{typ: TypeDateTime, ts: v} }

// NewTimeLiteral builds a Time Element.
func NewTimeLiteral(v Timestamp) *Literal { return &Literal{typ: TypeTime, ts: v} }

// NewQuantityLiteral builds a Quantity Element.
func NewQuantityLiteral(v Quantity) *Literal { return &Literal{typ: TypeQuantity, q: v} }

func (l *Literal) Type() Type             { return l.typ }
func (l *Literal) TypeInfo() ElementTypeInfo { return nil }
func (l *Literal) Parent() Element        { return l.parent }

func (l *Literal) AsInt() (int64, error) {
	if l.typ != TypeInteger {
		return 0, &ConversionError{From: l.typ, To: "Integer"}
	}
	return l.i, nil
}

func (l *Literal) AsDecimal() (Decimal, error) {
	switch l.typ {
	case TypeDecimal:
		return l.d, nil
	case TypeInteger:
		return DecimalFromInt(l.i), nil
	default:
		return Decimal{}, &ConversionError{From: l.typ, To: "Decimal"}
	}
}

func (l *Literal) AsBool() (bool, error) {
	if l.typ != TypeBoolean {
		return false, &ConversionError{From: l.typ, To: "Boolean"}
	}
	return l.b, nil
}

func (l *Literal) AsString() (string, error) {
	switch l.typ {
	case TypeString:
		return l.s, nil
	case TypeInteger:
		return fmt.Sprintf("%d", l.i), nil
	case TypeDecimal:
		return l.d.String(), nil
	case TypeBoolean:
		return fmt.Sprintf("%t", l.b), nil
	case TypeDate, TypeDateTime, TypeTime:
		return l.ts.String(), nil
	case TypeQuantity:
		return l.q.String(), nil
	default:
		return "", &ConversionError{From: l.typ, To: "String"}
	}
}

func (l *Literal) AsDate() (Timestamp, error) {
	if l.typ != TypeDate && l.typ != TypeDateTime {
		return Timestamp{}, &ConversionError{From: l.typ, To: "Date"}
	}
	return l.ts, nil
}

func (l *Literal) AsTime() (Timestamp, error) {
	if l.typ != TypeTime {
		return Timestamp{}, &ConversionError{From: l.typ, To: "Time"}
	}
	return l.ts, nil
}

func (l *Literal) AsDateTime() (Timestamp, error) {
	if l.typ != TypeDateTime && l.typ != TypeDate {
		return Timestamp{}, &ConversionError{From: l.typ, To: "DateTime"}
	}
	return l.ts, nil
}

func (l *Literal) AsQuantity() (Quantity, error) {
	switch l.typ {
	case TypeQuantity:
		return l.q, nil
	case TypeDecimal:
		return Quantity{Value: l.d}, nil
	case TypeInteger:
		return Quantity{Value: DecimalFromInt(l.i)}, nil
	default:
		return Quantity{}, &ConversionError{From: l.typ, To: "Quantity"}
	}
}

func (l *Literal) SubElementNames() []string      { return nil }
func (l *Literal) SubElements(name string) []Element { return nil }
func (l *Literal) HasSubElement(name string) bool { return false }

func (l *Literal) IsResource() bool          { return false }
func (l *Literal) IsContainerResource() bool { return false }
func (l *Literal) ResourceType() string      { return "" }
func (l *Literal) Profiles() []string        { return nil }

// CompareTo implements the Integer≤Decimal≤Quantity and Date≤DateTime
// promotion lattice (spec.md §3.1, §4.2) via the shared cross-adapter
// comparison in compare.go, so a Literal compares correctly against any
// other Element implementation (e.g. a host resource element), not only
// other Literals.
func (l *Literal) CompareTo(other Element) (Ordering, error) {
	return CompareElements(l, other)
}

// Equals implements FHIRPath structural equality with implicit promotion
// (spec.md §3.1).
func (l *Literal) Equals(other Element) TriState {
	return EqualsElements(l, other)
}
