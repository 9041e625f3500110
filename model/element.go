// Package model defines the FHIRPath value model: the typed Element, the
// Collection it travels in, and the conversions and comparisons FHIRPath
// requires over them.
//
// Element is intentionally an interface rather than a concrete struct: the
// core never owns a concrete resource DOM. Hosts adapt their own JSON/XML/ORM
// representation by implementing Element (see internal/jsonmodel for a
// reference adapter over JSON).
package model

import (
	"fmt"
)

// Type identifies the FHIRPath/FHIR type of an Element.
type Type string

// Element type constants (spec.md §3.1).
const (
	TypeInteger    Type = "Integer"
	TypeDecimal    Type = "Decimal"
	TypeString     Type = "String"
	TypeBoolean    Type = "Boolean"
	TypeDate       Type = "Date"
	TypeDateTime   Type = "DateTime"
	TypeTime       Type = "Time"
	TypeQuantity   Type = "Quantity"
	TypeStructured Type = "Structured"
)

// ElementTypeInfo is the non-owning handle to the profile and element
// definition that produced an Element (ProfiledElementTypeInfo, spec.md §3.3).
// It is a minimal interface here to avoid an import cycle with package
// repository; repository.ElementInfo implements it.
type ElementTypeInfo interface {
	// TypeName returns the FHIR type name this element was defined with
	// (e.g. "HumanName", "code", "Patient").
	TypeName() string
	// ProfileURL returns the canonical URL of the StructureDefinition that
	// owns the defining ElementDefinition.
	ProfileURL() string
}

// Element is the polymorphic FHIRPath value (spec.md §3.1).
type Element interface {
	// Type reports which of the fixed FHIRPath types this element holds.
	Type() Type

	// TypeInfo returns the defining profile/element-definition pair, or nil
	// if the element was synthesized outside a profile (e.g. a literal).
	TypeInfo() ElementTypeInfo

	// Parent returns the element's parent, or nil at the tree root. The
	// reference is conceptually weak: parents own children, not vice versa.
	Parent() Element

	// Conversions. Each returns a typed error if the element cannot be
	// converted (e.g. AsInt on a Structured element).
	AsInt() (int64, error)
	AsDecimal() (Decimal, error)
	AsBool() (bool, error)
	AsString() (string, error)
	AsDate() (Timestamp, error)
	AsTime() (Timestamp, error)
	AsDateTime() (Timestamp, error)
	AsQuantity() (Quantity, error)

	// SubElementNames returns the ordered, already choice/slice-expanded
	// names of this element's direct children.
	SubElementNames() []string
	// SubElements returns the children under the given (expanded) name, in
	// document order.
	SubElements(name string) []Element
	// HasSubElement reports whether name names a present child.
	HasSubElement(name string) bool

	// IsResource reports whether this element is a FHIR resource (has a
	// resourceType).
	IsResource() bool
	// IsContainerResource reports whether this element is a Bundle-like
	// resource that can contain other resources as entries.
	IsContainerResource() bool
	// ResourceType returns the resourceType value, or "" if not a resource.
	ResourceType() string
	// Profiles returns the meta.profile list, or nil if absent/not a resource.
	Profiles() []string

	// CompareTo returns a partial order against other. ErrNotComparable is
	// returned when the two elements are not order-comparable.
	CompareTo(other Element) (Ordering, error)
	// Equals implements FHIRPath structural equality, tri-valued per
	// spec.md §equality.
	Equals(other Element) TriState
}

// Ordering is the result of Element.CompareTo.
type Ordering int

// Ordering values.
const (
	Less Ordering = iota - 1
	Equal
	Greater
)

// TriState is a three-valued boolean: True, False, or Empty (unknown).
type TriState int

// TriState values.
const (
	Empty TriState = iota
	False
	True
)

// FromBool lifts a Go bool into a definite TriState.
func FromBool(b bool) TriState {
	if b {
		return True
	}
	return False
}

// Bool reports the underlying value and whether the TriState was definite.
func (t TriState) Bool() (bool, bool) {
	switch t {
	case True:
		return true, true
	case False:
		return false, true
	default:
		return false, false
	}
}

// And implements three-valued AND (spec.md §8 truth table).
func (t TriState) And(o TriState) TriState {
	if t == False || o == False {
		return False
	}
	if t == Empty || o == Empty {
		return Empty
	}
	return True
}

// Or implements three-valued OR.
func (t TriState) Or(o TriState) TriState {
	if t == True || o == True {
		return True
	}
	if t == Empty || o == Empty {
		return Empty
	}
	return False
}

// Xor implements three-valued XOR: empty propagates unless both sides are
// definite, in which case it is ordinary boolean xor.
func (t TriState) Xor(o TriState) TriState {
	if t == Empty || o == Empty {
		return Empty
	}
	return FromBool((t == True) != (o == True))
}

// Implies implements three-valued implication per spec.md §8.
func (t TriState) Implies(o TriState) TriState {
	if t == False {
		return True
	}
	if t == True {
		return o
	}
	// t == Empty
	if o == True {
		return True
	}
	return Empty
}

// Not implements three-valued negation.
func (t TriState) Not() TriState {
	switch t {
	case True:
		return False
	case False:
		return True
	default:
		return Empty
	}
}

// ConversionError is returned by Element's As* conversions.
type ConversionError struct {
	From Type
	To   string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s", e.From, e.To)
}

// ErrNotComparable is returned by CompareTo for incompatible types.
var ErrNotComparable = fmt.Errorf("values are not order-comparable")
