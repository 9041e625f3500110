package repository

import (
	"strconv"

	"github.com/fhirtools/fhirtools/model"
)

// xmlElement is a detached, immutable copy of a fixed[x]/pattern[x] XML
// subtree, built once at decode time so the transient *node parse tree never
// escapes the parser (see xml.go's doc comment on node). It implements
// model.Element so the validator can run ordinary Equals/SubElements
// comparisons against it exactly as it would against a host resource
// element (spec.md §4.5 "Fixed / Pattern").
type xmlElement struct {
	name     string
	value    string
	hasValue bool
	children []*xmlElement
}

// nodeToXMLElement copies n (and its children) into a detached xmlElement
// tree; the source *node and its backing strings are never retained.
func nodeToXMLElement(n *node) *xmlElement {
	if n == nil {
		return nil
	}
	e := &xmlElement{name: n.name}
	if v, ok := n.attr("value"); ok {
		e.value = v
		e.hasValue = true
	}
	for _, c := range n.children {
		e.children = append(e.children, nodeToXMLElement(c))
	}
	return e
}

func (e *xmlElement) Type() model.Type {
	if !e.hasValue && len(e.children) > 0 {
		return model.TypeStructured
	}
	if _, err := strconv.ParseInt(e.value, 10, 64); err == nil {
		return model.TypeInteger
	}
	if _, err := strconv.ParseFloat(e.value, 64); err == nil {
		return model.TypeDecimal
	}
	if _, err := strconv.ParseBool(e.value); err == nil {
		return model.TypeBoolean
	}
	return model.TypeString
}

func (e *xmlElement) TypeInfo() model.ElementTypeInfo { return nil }
func (e *xmlElement) Parent() model.Element           { return nil }

func (e *xmlElement) AsInt() (int64, error) {
	v, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return 0, &model.ConversionError{From: e.Type(), To: "Integer"}
	}
	return v, nil
}

func (e *xmlElement) AsDecimal() (model.Decimal, error) {
	d, err := model.ParseDecimal(e.value)
	if err != nil {
		return model.Decimal{}, &model.ConversionError{From: e.Type(), To: "Decimal"}
	}
	return d, nil
}

func (e *xmlElement) AsBool() (bool, error) {
	v, err := strconv.ParseBool(e.value)
	if err != nil {
		return false, &model.ConversionError{From: e.Type(), To: "Boolean"}
	}
	return v, nil
}

func (e *xmlElement) AsString() (string, error) {
	if !e.hasValue {
		return "", &model.ConversionError{From: e.Type(), To: "String"}
	}
	return e.value, nil
}

func (e *xmlElement) AsDate() (model.Timestamp, error) {
	ts, err := model.ParseTimestamp(e.value)
	if err != nil {
		return model.Timestamp{}, &model.ConversionError{From: e.Type(), To: "Date"}
	}
	return ts, nil
}

func (e *xmlElement) AsDateTime() (model.Timestamp, error) { return e.AsDate() }

func (e *xmlElement) AsTime() (model.Timestamp, error) {
	ts, err := model.ParseTime(e.value)
	if err != nil {
		return model.Timestamp{}, &model.ConversionError{From: e.Type(), To: "Time"}
	}
	return ts, nil
}

func (e *xmlElement) AsQuantity() (model.Quantity, error) {
	return model.Quantity{}, &model.ConversionError{From: e.Type(), To: "Quantity"}
}

func (e *xmlElement) SubElementNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range e.children {
		if !seen[c.name] {
			seen[c.name] = true
			out = append(out, c.name)
		}
	}
	return out
}

func (e *xmlElement) SubElements(name string) []model.Element {
	var out []model.Element
	for _, c := range e.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

func (e *xmlElement) HasSubElement(name string) bool {
	for _, c := range e.children {
		if c.name == name {
			return true
		}
	}
	return false
}

func (e *xmlElement) IsResource() bool          { return false }
func (e *xmlElement) IsContainerResource() bool { return false }
func (e *xmlElement) ResourceType() string      { return "" }
func (e *xmlElement) Profiles() []string        { return nil }

func (e *xmlElement) CompareTo(other model.Element) (model.Ordering, error) {
	return 0, model.ErrNotComparable
}

// Equals implements structural equality against another model.Element: types
// must agree and, for primitives, values must match; for structured values
// every child present here must be present and equal in other (pattern-style
// subset match, which also satisfies the stricter fixed-value full-equality
// case when e has no extra children beyond what other carries).
func (e *xmlElement) Equals(other model.Element) model.TriState {
	if other == nil {
		return model.Empty
	}
	if e.Type() != model.TypeStructured {
		s, err := other.AsString()
		if err != nil {
			return model.False
		}
		return model.FromBool(s == e.value)
	}
	for _, name := range e.SubElementNames() {
		want := e.SubElements(name)
		got := other.SubElements(name)
		if len(got) < len(want) {
			return model.False
		}
		for i, w := range want {
			if got[i].Equals(w) != model.True {
				return model.False
			}
		}
	}
	return model.True
}
