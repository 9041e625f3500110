// Package repository holds the conformance resource model — structure
// definitions, element definitions, slicing, code systems, and value sets —
// and the loader and post-load passes that build an immutable Repository
// from a directory of FHIR XML resources (spec.md §3.2, §4.1).
package repository

import (
	"fmt"

	"github.com/fhirtools/fhirtools/model"
)

// Kind is the StructureDefinition.kind enumeration (spec.md §3.2).
type Kind string

// Kind values.
const (
	KindPrimitiveType Kind = "primitiveType"
	KindComplexType   Kind = "complexType"
	KindResource      Kind = "resource"
	KindLogical       Kind = "logical"
	KindSlice         Kind = "slice"
	KindSystem        Kind = "system"
)

// Derivation is the StructureDefinition.derivation enumeration.
type Derivation string

// Derivation values.
const (
	DerivationBaseType      Derivation = "basetype"
	DerivationSpecialization Derivation = "specialization"
	DerivationConstraint    Derivation = "constraint"
)

// SlicingRules is the Slicing.rules enumeration.
type SlicingRules string

// SlicingRules values.
const (
	RulesOpen        SlicingRules = "open"
	RulesClosed      SlicingRules = "closed"
	RulesOpenAtEnd   SlicingRules = "openAtEnd"
	RulesReportOther SlicingRules = "reportOther"
)

// DiscriminatorType is the Discriminator.type enumeration.
type DiscriminatorType string

// DiscriminatorType values.
const (
	DiscriminatorValue   DiscriminatorType = "value"
	DiscriminatorExists  DiscriminatorType = "exists"
	DiscriminatorPattern DiscriminatorType = "pattern"
	DiscriminatorTypeCode DiscriminatorType = "type"
	DiscriminatorProfile DiscriminatorType = "profile"
)

// BindingStrength is the Binding.strength enumeration.
type BindingStrength string

// BindingStrength values, ordered weakest to strongest severity on miss.
const (
	BindingExample    BindingStrength = "example"
	BindingPreferred  BindingStrength = "preferred"
	BindingExtensible BindingStrength = "extensible"
	BindingRequired   BindingStrength = "required"
)

// ContentType is the CodeSystem.content enumeration.
type ContentType string

// ContentType values.
const (
	ContentNotPresent ContentType = "not-present"
	ContentExample     ContentType = "example"
	ContentFragment    ContentType = "fragment"
	ContentComplete    ContentType = "complete"
	ContentSupplement  ContentType = "supplement"
)

// DefinitionKey identifies a StructureDefinition, CodeSystem, or ValueSet by
// canonical URL and optional version (spec.md §3.2).
type DefinitionKey struct {
	URL     string
	Version string
}

func (k DefinitionKey) String() string {
	if k.Version == "" {
		return k.URL
	}
	return fmt.Sprintf("%s|%s", k.URL, k.Version)
}

// Cardinality is an element's (min, max) occurrence bound. MaxUnbounded
// indicates an unbounded max ("*").
type Cardinality struct {
	Min uint32
	Max uint32 // meaningful only when MaxUnbounded is false
	MaxUnbounded bool
}

// Satisfies reports whether count observed occurrences satisfy this bound.
func (c Cardinality) Satisfies(count int) bool {
	if count < int(c.Min) {
		return false
	}
	if c.MaxUnbounded {
		return true
	}
	return count <= int(c.Max)
}

func (c Cardinality) String() string {
	if c.MaxUnbounded {
		return fmt.Sprintf("%d..*", c.Min)
	}
	return fmt.Sprintf("%d..%d", c.Min, c.Max)
}

// Constraint is a FHIRPath invariant attached to an ElementDefinition.
type Constraint struct {
	Key        string
	Severity   string // error | warning
	Human      string
	Expression string
}

// Binding is a terminology binding attached to an ElementDefinition.
type Binding struct {
	Strength    BindingStrength
	ValueSetKey DefinitionKey
}

// Discriminator selects how runtime elements are matched to slices.
type Discriminator struct {
	Type DiscriminatorType
	Path string
}

// Slicing describes how an array element is partitioned into slices.
type Slicing struct {
	Ordered       bool
	Rules         SlicingRules
	Discriminators []Discriminator
	// SliceProfiles are the synthesized kind=slice StructureDefinitions, one
	// per declared slice name, in declaration order.
	SliceProfiles []*StructureDefinition
}

// TypeRef is one of an ElementDefinition's allowed types.
type TypeRef struct {
	Code                string
	Profiles            []string
	TargetProfiles      []string
}

// ElementDefinition is one node of a StructureDefinition's element tree
// (spec.md §3.2).
type ElementDefinition struct {
	Name             string // canonical Type.path[:sliceName]... after expansion
	OriginalName     string // pre-expansion name, e.g. "Observation.value[x]"
	TypeID           string
	Types            []TypeRef
	Cardinality      Cardinality
	IsArray          bool
	IsBackbone       bool
	Representation   string // element | xmlAttr | xmlText | typeAttr | cdaText
	ContentReference string // "#Path.to.element", resolved lazily
	Constraints      []Constraint
	Slicing          *Slicing
	Binding          *Binding
	SliceName        string

	// Fixed and Pattern hold, if present, a detached model.Element literal
	// tree built once at decode time (see fixedvalue.go), compared directly
	// against the host's runtime Element by the validator.
	Fixed   model.Element
	Pattern model.Element

	MaxLength int // 0 means unset
	MinValue  any
	MaxValue  any

	// parent StructureDefinition, set once by the builder.
	owner *StructureDefinition
	// index of this element within owner.Elements, set once by the builder.
	index int
}

// Owner returns the StructureDefinition this element belongs to.
func (e *ElementDefinition) Owner() *StructureDefinition { return e.owner }

// Index returns this element's position within its owner's Elements slice.
func (e *ElementDefinition) Index() int { return e.index }

// StructureDefinition is the repository's structural conformance type
// (spec.md §3.2).
type StructureDefinition struct {
	TypeID         string
	URL            string
	Version        string
	BaseDefinition string
	Kind           Kind
	Derivation     Derivation
	Abstract       bool
	Name           string

	// Elements are in declaration order; Elements[0] is the root.
	Elements []*ElementDefinition

	// byName indexes Elements by canonical (expanded) name.
	byName map[string]*ElementDefinition
	// childrenByParent indexes direct children by parent element name.
	childrenByParent map[string][]*ElementDefinition
}

// Key returns this definition's repository key.
func (s *StructureDefinition) Key() DefinitionKey {
	return DefinitionKey{URL: s.URL, Version: s.Version}
}

// Root returns the first (root) element definition, or nil if empty.
func (s *StructureDefinition) Root() *ElementDefinition {
	if len(s.Elements) == 0 {
		return nil
	}
	return s.Elements[0]
}

// ByName looks up an element definition by its canonical expanded name.
func (s *StructureDefinition) ByName(name string) (*ElementDefinition, bool) {
	ed, ok := s.byName[name]
	return ed, ok
}

// Children returns the direct children of the element named parent, in
// declaration order.
func (s *StructureDefinition) Children(parent string) []*ElementDefinition {
	return s.childrenByParent[parent]
}

// Code is a single terminology code (spec.md §3.2).
type Code struct {
	Code          string
	CaseSensitive bool
	System        string
	Display       string
	Parent        string // parent code within the same CodeSystem, if any
}

// CodeSystem is a terminology code system (spec.md §3.2).
type CodeSystem struct {
	URL           string
	Version       string
	CaseSensitive bool
	Content       ContentType
	Supplements   string // target CodeSystem URL, when Content == supplement

	Codes []Code
	byCode map[string]*Code
}

// Key returns this code system's repository key.
func (c *CodeSystem) Key() DefinitionKey {
	return DefinitionKey{URL: c.URL, Version: c.Version}
}

// ByCode looks up a code by its literal code value.
func (c *CodeSystem) ByCode(code string) (*Code, bool) {
	cd, ok := c.byCode[code]
	return cd, ok
}

// ConceptFilterOp is a ValueSet include/exclude filter operator.
type ConceptFilterOp string

// ConceptFilterOp values.
const (
	FilterIsA    ConceptFilterOp = "is-a"
	FilterIsNotA ConceptFilterOp = "is-not-a"
	FilterEquals ConceptFilterOp = "="
)

// ConceptFilter is one ValueSet.compose.include.filter entry.
type ConceptFilter struct {
	Property string
	Op       ConceptFilterOp
	Value    string
}

// ValueSetRule is one include or exclude block in a ValueSet's composition.
type ValueSetRule struct {
	SystemURL string // CodeSystem URL, or "" if ValueSetURLs is used instead
	Codes     []string
	Filters   []ConceptFilter
	ValueSetURLs []string // other value sets to union/subtract
}

// ValueSet is a terminology value set (spec.md §3.2).
type ValueSet struct {
	URL     string
	Version string

	Includes []ValueSetRule
	Excludes []ValueSetRule

	// ExplicitExpansion lists ValueSet.expansion.contains entries that are
	// added verbatim regardless of compose rules.
	ExplicitExpansion []Code

	finalized bool
	finalizing bool
	expansion map[codeKey]Code
}

type codeKey struct {
	system string
	code   string
}

// Key returns this value set's repository key.
func (v *ValueSet) Key() DefinitionKey {
	return DefinitionKey{URL: v.URL, Version: v.Version}
}
