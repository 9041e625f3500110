// Package jsonmodel adapts a FHIR JSON resource into model.Element, using
// buger/jsonparser to walk the document once at parse time into a tree of
// immutable Element nodes. It is the first concrete host adapter: the
// repository's own xmlElement (repository/fixedvalue.go) only represents
// detached fixed/pattern literals, never a live resource, so cmd/fhirtools
// and the engine need this package to drive fhirpath/validator/reference
// against real data (spec.md §4.7, §6.3).
package jsonmodel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"

	"github.com/fhirtools/fhirtools/model"
)

// Element is a JSON-backed model.Element. A tree is built once, eagerly,
// when Parse is called; it never re-parses or mutates afterwards.
type Element struct {
	name      string
	raw       []byte
	valueType jsonparser.ValueType
	parent    *Element

	// names holds child field names in document order (deduplicated); kids
	// holds every child keyed by name, preserving array order within a name.
	names []string
	kids  map[string][]*Element
}

var _ model.Element = (*Element)(nil)

// Parse builds an Element tree from a single FHIR resource's JSON bytes. The
// root is always the resource itself.
func Parse(data []byte) (*Element, error) {
	root := &Element{name: "", raw: data, valueType: jsonparser.Object}
	if err := root.buildObject(data); err != nil {
		return nil, fmt.Errorf("jsonmodel: parse failed: %w", err)
	}
	return root, nil
}

// buildObject populates e's children from a JSON object's immediate
// key/value pairs, pairing FHIR's "_field" primitive-extension companions
// (id/extension) with their sibling "field" value (FHIR JSON §"Extensions
// on primitive values").
func (e *Element) buildObject(raw []byte) error {
	e.kids = make(map[string][]*Element)

	type rawChild struct {
		value []byte
		typ   jsonparser.ValueType
	}
	values := make(map[string]rawChild)
	exts := make(map[string][]byte)
	var order []string
	seen := make(map[string]bool)

	err := jsonparser.ObjectEach(raw, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		name := string(key)
		if strings.HasPrefix(name, "_") {
			exts[name[1:]] = value
			return nil
		}
		values[name] = rawChild{value: value, typ: dataType}
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, name := range order {
		rc := values[name]
		extRaw := exts[name]
		children, err := e.buildField(name, rc.value, rc.typ, extRaw)
		if err != nil {
			return err
		}
		e.kids[name] = children
		e.names = append(e.names, name)
	}
	return nil
}

// buildField builds every Element instance for one JSON field, pairing array
// elements with their positional "_field" extension companion when present.
func (e *Element) buildField(name string, value []byte, typ jsonparser.ValueType, extRaw []byte) ([]*Element, error) {
	if typ == jsonparser.Array {
		var extItems [][]byte
		var extTypes []jsonparser.ValueType
		if len(extRaw) > 0 {
			_, _ = jsonparser.ArrayEach(extRaw, func(v []byte, dt jsonparser.ValueType, _ int, _ error) {
				extItems = append(extItems, v)
				extTypes = append(extTypes, dt)
			})
		}
		var out []*Element
		idx := 0
		var iterErr error
		_, err := jsonparser.ArrayEach(value, func(v []byte, dt jsonparser.ValueType, _ int, _ error) {
			if iterErr != nil {
				return
			}
			var itemExt []byte
			if idx < len(extItems) && extTypes[idx] == jsonparser.Object {
				itemExt = extItems[idx]
			}
			child, err := e.buildNode(name, v, dt, itemExt)
			if err != nil {
				iterErr = err
				return
			}
			out = append(out, child)
			idx++
		})
		if err != nil {
			return nil, err
		}
		return out, iterErr
	}
	var elExt []byte
	if typ != jsonparser.Object && len(extRaw) > 0 {
		elExt = extRaw
	}
	child, err := e.buildNode(name, value, typ, elExt)
	if err != nil {
		return nil, err
	}
	return []*Element{child}, nil
}

func (e *Element) buildNode(name string, value []byte, typ jsonparser.ValueType, extRaw []byte) (*Element, error) {
	child := &Element{name: name, raw: value, valueType: typ, parent: e}
	switch typ {
	case jsonparser.Object:
		if err := child.buildObject(value); err != nil {
			return nil, err
		}
	default:
		if len(extRaw) > 0 {
			// A primitive's extensions live under its own "id"/"extension"
			// sub-elements, exactly as if the primitive were a complex type
			// (FHIR JSON primitive-extension convention).
			if err := child.buildObject(extRaw); err != nil {
				return nil, err
			}
		} else {
			child.kids = make(map[string][]*Element)
		}
	}
	return child, nil
}

// Type reports this element's FHIRPath type. Raw JSON carries no type
// annotation of its own — numbers, booleans, and objects map directly, but
// a JSON string could be a FHIR string, date, dateTime, or time depending on
// the (unavailable, here) element definition that declared it. Lacking that
// binding, a string is classified as Date/DateTime/Time when it parses as
// one, matching repository/fixedvalue.go's xmlElement heuristic of
// inferring from shape rather than refusing to compare at all — comparisons
// and conversions in fhirpath/validator only work when Type() agrees with
// the value's actual shape.
func (e *Element) Type() model.Type {
	switch e.valueType {
	case jsonparser.Object:
		return model.TypeStructured
	case jsonparser.Number:
		if looksIntegral(e.raw) {
			return model.TypeInteger
		}
		return model.TypeDecimal
	case jsonparser.Boolean:
		return model.TypeBoolean
	case jsonparser.String:
		s, err := e.stringValue()
		if err != nil {
			return model.TypeString
		}
		if ts, err := model.ParseTimestamp(s); err == nil {
			if ts.Precision() >= model.PrecisionDateTime {
				return model.TypeDateTime
			}
			return model.TypeDate
		}
		if _, err := model.ParseTime(s); err == nil {
			return model.TypeTime
		}
		return model.TypeString
	default:
		return model.TypeString
	}
}

func looksIntegral(raw []byte) bool {
	for _, b := range raw {
		if b == '.' || b == 'e' || b == 'E' {
			return false
		}
	}
	return true
}

func (e *Element) TypeInfo() model.ElementTypeInfo { return nil }
func (e *Element) Parent() model.Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *Element) stringValue() (string, error) {
	switch e.valueType {
	case jsonparser.String:
		out, err := jsonparser.Unescape(e.raw, nil)
		if err != nil {
			return "", err
		}
		return string(out), nil
	case jsonparser.Number, jsonparser.Boolean:
		return string(e.raw), nil
	default:
		return "", &model.ConversionError{From: e.Type(), To: "String"}
	}
}

func (e *Element) AsInt() (int64, error) {
	if e.valueType != jsonparser.Number {
		return 0, &model.ConversionError{From: e.Type(), To: "Integer"}
	}
	v, err := strconv.ParseInt(string(e.raw), 10, 64)
	if err != nil {
		return 0, &model.ConversionError{From: e.Type(), To: "Integer"}
	}
	return v, nil
}

func (e *Element) AsDecimal() (model.Decimal, error) {
	if e.valueType != jsonparser.Number {
		return model.Decimal{}, &model.ConversionError{From: e.Type(), To: "Decimal"}
	}
	d, err := model.ParseDecimal(string(e.raw))
	if err != nil {
		return model.Decimal{}, &model.ConversionError{From: e.Type(), To: "Decimal"}
	}
	return d, nil
}

func (e *Element) AsBool() (bool, error) {
	if e.valueType != jsonparser.Boolean {
		return false, &model.ConversionError{From: e.Type(), To: "Boolean"}
	}
	return string(e.raw) == "true", nil
}

func (e *Element) AsString() (string, error) {
	s, err := e.stringValue()
	if err != nil {
		return "", &model.ConversionError{From: e.Type(), To: "String"}
	}
	return s, nil
}

func (e *Element) AsDate() (model.Timestamp, error) {
	s, err := e.stringValue()
	if err != nil {
		return model.Timestamp{}, &model.ConversionError{From: e.Type(), To: "Date"}
	}
	ts, err := model.ParseTimestamp(s)
	if err != nil {
		return model.Timestamp{}, &model.ConversionError{From: e.Type(), To: "Date"}
	}
	return ts, nil
}

func (e *Element) AsDateTime() (model.Timestamp, error) { return e.AsDate() }

func (e *Element) AsTime() (model.Timestamp, error) {
	s, err := e.stringValue()
	if err != nil {
		return model.Timestamp{}, &model.ConversionError{From: e.Type(), To: "Time"}
	}
	ts, err := model.ParseTime(s)
	if err != nil {
		return model.Timestamp{}, &model.ConversionError{From: e.Type(), To: "Time"}
	}
	return ts, nil
}

// AsQuantity reads a FHIR Quantity's {value, unit} pair from this element's
// own sub-elements — Quantity is itself a structured type, not a JSON
// primitive (spec.md §3.1).
func (e *Element) AsQuantity() (model.Quantity, error) {
	if e.valueType != jsonparser.Object {
		return model.Quantity{}, &model.ConversionError{From: e.Type(), To: "Quantity"}
	}
	values := e.SubElements("value")
	if len(values) != 1 {
		return model.Quantity{}, &model.ConversionError{From: e.Type(), To: "Quantity"}
	}
	v, err := values[0].AsDecimal()
	if err != nil {
		return model.Quantity{}, &model.ConversionError{From: e.Type(), To: "Quantity"}
	}
	unit := ""
	if u := e.SubElements("code"); len(u) == 1 {
		unit, _ = u[0].AsString()
	} else if u := e.SubElements("unit"); len(u) == 1 {
		unit, _ = u[0].AsString()
	}
	return model.Quantity{Value: v, Unit: unit}, nil
}

func (e *Element) SubElementNames() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

func (e *Element) SubElements(name string) []model.Element {
	children := e.kids[name]
	if len(children) == 0 {
		return nil
	}
	out := make([]model.Element, len(children))
	for i, c := range children {
		out[i] = c
	}
	return out
}

func (e *Element) HasSubElement(name string) bool {
	return len(e.kids[name]) > 0
}

func (e *Element) IsResource() bool {
	return e.valueType == jsonparser.Object && e.HasSubElement("resourceType")
}

func (e *Element) IsContainerResource() bool {
	return e.ResourceType() == "Bundle"
}

func (e *Element) ResourceType() string {
	if e.valueType != jsonparser.Object {
		return ""
	}
	rt := e.SubElements("resourceType")
	if len(rt) != 1 {
		return ""
	}
	s, err := rt[0].AsString()
	if err != nil {
		return ""
	}
	return s
}

func (e *Element) Profiles() []string {
	if !e.IsResource() {
		return nil
	}
	meta := e.SubElements("meta")
	if len(meta) != 1 {
		return nil
	}
	profiles := meta[0].SubElements("profile")
	if len(profiles) == 0 {
		return nil
	}
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if s, err := p.AsString(); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func (e *Element) CompareTo(other model.Element) (model.Ordering, error) {
	return model.CompareElements(e, other)
}

func (e *Element) Equals(other model.Element) model.TriState {
	return model.EqualsElements(e, other)
}
