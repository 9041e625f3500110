package model

import "fmt"

// Collection is an ordered sequence of Element values (spec.md §3.1). It is
// the unit of data FHIRPath expressions pass between operators.
type Collection []Element

// EmptyCollection is the zero-length collection, returned by literal `{}` and by every
// function whose FHIRPath N1 default on empty input is "return empty".
var EmptyCollection = Collection(nil)

// Single returns the sole element, failing if the collection does not
// contain exactly one item.
func (c Collection) Single() (Element, error) {
	if len(c) != 1 {
		return nil, fmt.Errorf("expected a single item, got %d", len(c))
	}
	return c[0], nil
}

// SingleOrEmpty returns the sole element (or nil for an empty collection),
// failing only when the collection holds more than one item.
func (c Collection) SingleOrEmpty() (Element, error) {
	switch len(c) {
	case 0:
		return nil, nil
	case 1:
		return c[0], nil
	default:
		return nil, fmt.Errorf("expected zero or one items, got %d", len(c))
	}
}

// Boolean coerces the collection to a single bool per FHIRPath's
// singleton-evaluation rule: empty is false, a single boolean item is used
// as-is, and a single non-boolean item is true (spec.md §3.1, GLOSSARY).
func (c Collection) Boolean() (bool, error) {
	switch len(c) {
	case 0:
		return false, nil
	case 1:
		if c[0].Type() == TypeBoolean {
			return c[0].AsBool()
		}
		return true, nil
	default:
		return false, fmt.Errorf("cannot coerce a collection of %d items to boolean", len(c))
	}
}

// Contains reports whether e is present in c under FHIRPath equality.
func (c Collection) Contains(e Element) bool {
	for _, item := range c {
		if b, ok := item.Equals(e).Bool(); ok && b {
			return true
		}
	}
	return false
}

// Equals implements FHIRPath collection equality: ordered, element-wise,
// tri-valued, empty-propagating (spec.md §4.2 "Equality & comparison").
func (c Collection) Equals(o Collection) TriState {
	if len(c) == 0 || len(o) == 0 {
		return Empty
	}
	if len(c) != len(o) {
		return False
	}
	result := True
	for i := range c {
		eq := c[i].Equals(o[i])
		if eq == Empty {
			return Empty
		}
		result = result.And(eq)
	}
	return result
}

// Append returns a new collection with other's items appended after c's.
func (c Collection) Append(other Collection) Collection {
	out := make(Collection, 0, len(c)+len(other))
	out = append(out, c...)
	out = append(out, other...)
	return out
}

// Distinct removes duplicate items (by FHIRPath equality), preserving the
// first occurrence's position (spec.md §8 "Distinct idempotence").
func (c Collection) Distinct() Collection {
	out := make(Collection, 0, len(c))
	for _, item := range c {
		if !out.Contains(item) {
			out = append(out, item)
		}
	}
	return out
}

// Union combines a and b, deduplicating by FHIRPath equality and preserving
// first-occurrence order across a then b (spec.md §8 "Union dedup").
func Union(a, b Collection) Collection {
	return a.Append(b).Distinct()
}
