package model

// CompareElements implements the promotion-aware comparison lattice
// (String, Boolean, Integer≤Decimal, Quantity, Date≤DateTime≤Time) between
// any two Elements — not just elements of the same concrete type. Every
// Element implementation (Literal, internal/jsonmodel's host adapter, or any
// future one) shares this so a FHIRPath comparison works regardless of which
// side holds the profile-bound value and which holds a literal or computed
// result (spec.md §4.2 "Equality & comparison").
func CompareElements(a, b Element) (Ordering, error) {
	switch {
	case a.Type() == TypeString && b.Type() == TypeString:
		as, err1 := a.AsString()
		bs, err2 := b.AsString()
		if err1 != nil || err2 != nil {
			return 0, ErrNotComparable
		}
		return compareStrings(as, bs), nil
	case a.Type() == TypeBoolean && b.Type() == TypeBoolean:
		ab, err1 := a.AsBool()
		bb, err2 := b.AsBool()
		if err1 != nil || err2 != nil {
			return 0, ErrNotComparable
		}
		return compareBools(ab, bb), nil
	case isNumeric(a.Type()) && isNumeric(b.Type()):
		ad, err1 := a.AsDecimal()
		bd, err2 := b.AsDecimal()
		if err1 != nil || err2 != nil {
			return 0, ErrNotComparable
		}
		return Ordering(ad.Cmp(bd)), nil
	case a.Type() == TypeQuantity || b.Type() == TypeQuantity:
		aq, err1 := a.AsQuantity()
		bq, err2 := b.AsQuantity()
		if err1 != nil || err2 != nil {
			return 0, ErrNotComparable
		}
		c, err := aq.Cmp(bq)
		if err != nil {
			return 0, err
		}
		return Ordering(c), nil
	case isDateLike(a.Type()) && isDateLike(b.Type()):
		at, err1 := asTimestamp(a)
		bt, err2 := asTimestamp(b)
		if err1 != nil || err2 != nil {
			return 0, ErrNotComparable
		}
		return Ordering(at.Cmp(bt)), nil
	default:
		return 0, ErrNotComparable
	}
}

func asTimestamp(e Element) (Timestamp, error) {
	if e.Type() == TypeTime {
		return e.AsTime()
	}
	return e.AsDateTime()
}

// EqualsElements implements FHIRPath structural equality with implicit
// promotion for primitives, and recursive child-wise equality for
// structured values (spec.md §3.1).
func EqualsElements(a, b Element) TriState {
	if a == nil || b == nil {
		return Empty
	}
	if a.Type() == TypeStructured || b.Type() == TypeStructured {
		if a.Type() != TypeStructured || b.Type() != TypeStructured {
			return False
		}
		return equalsStructured(a, b)
	}
	ord, err := CompareElements(a, b)
	if err != nil {
		return False
	}
	return FromBool(ord == Equal)
}

func equalsStructured(a, b Element) TriState {
	namesA := a.SubElementNames()
	if len(namesA) != len(b.SubElementNames()) {
		return False
	}
	seen := make(map[string]bool, len(namesA))
	for _, name := range namesA {
		if seen[name] {
			continue
		}
		seen[name] = true
		ea := a.SubElements(name)
		eb := b.SubElements(name)
		if len(ea) != len(eb) {
			return False
		}
		for i := range ea {
			if ea[i].Equals(eb[i]) != True {
				return False
			}
		}
	}
	return True
}

func isNumeric(t Type) bool { return t == TypeInteger || t == TypeDecimal }
func isDateLike(t Type) bool { return t == TypeDate || t == TypeDateTime || t == TypeTime }

func compareStrings(a, b string) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

func compareBools(a, b bool) Ordering {
	switch {
	case a == b:
		return Equal
	case !a && b:
		return Less
	default:
		return Greater
	}
}
