package repository

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// StructureDefinitionBuilder assembles a StructureDefinition element by
// element, enforcing the build-time invariants of spec.md §4.1: backbone
// promotion, choice-type expansion, and slice routing.
type StructureDefinitionBuilder struct {
	sd *StructureDefinition

	// activeSlicing, keyed by the sliced element's canonical name, tracks the
	// slicing builder currently accepting elements for that array.
	activeSlicing map[string]*slicingBuilder
}

type slicingBuilder struct {
	containerName string
	slicing       *Slicing
	activeSlice   string
	sliceBuilders map[string]*StructureDefinitionBuilder
}

// NewStructureDefinitionBuilder starts a builder for the given identity.
func NewStructureDefinitionBuilder(typeID, url, version string, kind Kind, derivation Derivation) *StructureDefinitionBuilder {
	return &StructureDefinitionBuilder{
		sd: &StructureDefinition{
			TypeID:           typeID,
			URL:              url,
			Version:          version,
			Kind:             kind,
			Derivation:       derivation,
			byName:           make(map[string]*ElementDefinition),
			childrenByParent: make(map[string][]*ElementDefinition),
		},
		activeSlicing: make(map[string]*slicingBuilder),
	}
}

// SetBaseDefinition sets the base definition URL.
func (b *StructureDefinitionBuilder) SetBaseDefinition(url string) *StructureDefinitionBuilder {
	b.sd.BaseDefinition = url
	return b
}

// SetAbstract marks the definition abstract.
func (b *StructureDefinitionBuilder) SetAbstract(abstract bool) *StructureDefinitionBuilder {
	b.sd.Abstract = abstract
	return b
}

// SetName sets the definition's display name.
func (b *StructureDefinitionBuilder) SetName(name string) *StructureDefinitionBuilder {
	b.sd.Name = name
	return b
}

// parentName returns the dotted-name prefix one level up, or "" at the root.
func parentName(name string) string {
	name = stripSliceQualifiers(name)
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return name[:i]
}

// stripSliceQualifiers removes ":sliceName" qualifiers from every path
// segment, leaving the plain dotted path.
func stripSliceQualifiers(name string) string {
	segments := strings.Split(name, ".")
	for i, seg := range segments {
		if j := strings.Index(seg, ":"); j >= 0 {
			segments[i] = seg[:j]
		}
	}
	return strings.Join(segments, ".")
}

// sliceQualifier returns the ":sliceName" suffix of the last path segment,
// or "" if the element is unsliced.
func sliceQualifier(name string) string {
	last := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		last = name[i+1:]
	}
	if j := strings.Index(last, ":"); j >= 0 {
		return last[j+1:]
	}
	return ""
}

// isChoiceName reports whether a pre-expansion name ends with the "[x]"
// choice-type placeholder.
func isChoiceName(originalName string) bool {
	return strings.HasSuffix(originalName, "[x]")
}

// expandChoiceName substitutes "[x]" with the upper-camel type code, per
// spec.md §3.2 ("the first character of the type name is upper-cased").
func expandChoiceName(originalName, typeCode string) string {
	base := strings.TrimSuffix(originalName, "[x]")
	if typeCode == "" {
		return base
	}
	return base + upperFirst(typeCode)
}

// upperFirst upper-cases typeCode's leading rune via strcase.ToCamel, which
// leaves an already-camel string like "uri" or "CodeableConcept" otherwise
// untouched (spec.md §3.2's "upper-case the first character" choice-type
// expansion rule).
func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strcase.ToCamel(s)
}

// AddElement adds one ElementDefinition, applying backbone promotion, choice
// expansion, and slice routing (spec.md §4.1).
//
// proto carries the not-yet-finalized element data; proto.OriginalName and
// proto.Types must be set. AddElement returns the finalized elements that
// were actually appended (more than one when a choice type expands).
func (b *StructureDefinitionBuilder) AddElement(proto ElementDefinition) []*ElementDefinition {
	qualifier := sliceQualifier(proto.OriginalName)
	if qualifier != "" {
		return b.routeToSlice(proto, qualifier)
	}

	if isChoiceName(proto.OriginalName) {
		return b.expandChoice(proto)
	}

	return []*ElementDefinition{b.appendElement(proto)}
}

func (b *StructureDefinitionBuilder) expandChoice(proto ElementDefinition) []*ElementDefinition {
	out := make([]*ElementDefinition, 0, len(proto.Types))
	for _, t := range proto.Types {
		child := proto
		child.Name = expandChoiceName(proto.OriginalName, t.Code)
		child.TypeID = t.Code
		child.Types = []TypeRef{t}
		out = append(out, b.appendElement(child))
	}
	return out
}

func (b *StructureDefinitionBuilder) appendElement(proto ElementDefinition) *ElementDefinition {
	if proto.Name == "" {
		proto.Name = stripSliceQualifiers(proto.OriginalName)
	}

	// Auto-assign contentReference inside a slice when the element has no
	// type of its own (spec.md §4.1).
	if proto.TypeID == "" && len(proto.Types) == 0 && proto.ContentReference == "" && sliceQualifier(proto.OriginalName) != "" {
		proto.ContentReference = "#" + stripSliceQualifiers(proto.Name)
	}

	ed := proto
	ed.owner = b.sd
	ed.index = len(b.sd.Elements)
	b.sd.Elements = append(b.sd.Elements, &ed)
	b.sd.byName[ed.Name] = &ed

	parent := parentName(ed.Name)
	if parent != "" {
		b.promoteBackbone(parent)
		b.sd.childrenByParent[parent] = append(b.sd.childrenByParent[parent], &ed)
	}
	return &ed
}

// promoteBackbone marks parentName, and every sibling sharing its
// OriginalName, as a backbone element: any element that turns out to have
// children is retroactively a backbone (spec.md §4.1).
func (b *StructureDefinitionBuilder) promoteBackbone(parentName string) {
	ed, ok := b.sd.byName[parentName]
	if !ok {
		return
	}
	if ed.IsBackbone {
		return
	}
	for _, sibling := range b.sd.Elements {
		if stripSliceQualifiers(sibling.OriginalName) == stripSliceQualifiers(ed.OriginalName) {
			sibling.IsBackbone = true
		}
	}
}

// routeToSlice directs an element carrying a ":sliceName" qualifier into the
// slicing builder for its container, synthesizing the container's Slicing
// and base (unsliced) element on first use if necessary (spec.md §4.1).
func (b *StructureDefinitionBuilder) routeToSlice(proto ElementDefinition, sliceName string) []*ElementDefinition {
	container := parentContainerName(proto.OriginalName)

	sb, ok := b.activeSlicing[container]
	if !ok {
		if _, exists := b.sd.byName[container]; !exists {
			// Synthesize the unsliced base element so navigation still finds
			// a home for this path.
			base := ElementDefinition{
				OriginalName: container,
				Name:         container,
			}
			b.appendElement(base)
		}
		containerEd := b.sd.byName[container]
		containerEd.Slicing = &Slicing{Rules: RulesOpen}
		sb = &slicingBuilder{
			containerName: container,
			slicing:       containerEd.Slicing,
			sliceBuilders: make(map[string]*StructureDefinitionBuilder),
		}
		b.activeSlicing[container] = sb
	}

	if sliceName != sb.activeSlice {
		sb.activeSlice = sliceName
		sliceURL := b.sd.URL + ":" + sliceName
		sliceBuilder := NewStructureDefinitionBuilder(
			containerElementTypeID(b.sd, container), sliceURL, b.sd.Version, KindSlice, DerivationConstraint,
		)
		sb.sliceBuilders[sliceName] = sliceBuilder
		sb.slicing.SliceProfiles = append(sb.slicing.SliceProfiles, sliceBuilder.sd)
	}

	sliceBuilder := sb.sliceBuilders[sliceName]
	relativeName := stripContainerPrefix(proto.Name, container)
	if relativeName == "" {
		relativeName = stripContainerPrefix(stripSliceQualifiers(proto.OriginalName), container)
	}
	proto.Name = relativeName
	return sliceBuilder.AddElement(proto)
}

func containerElementTypeID(sd *StructureDefinition, container string) string {
	if ed, ok := sd.byName[container]; ok {
		return ed.TypeID
	}
	return ""
}

// parentContainerName strips a trailing ":sliceName..." qualifier chain back
// to the plain array element's dotted path.
func parentContainerName(originalName string) string {
	return stripSliceQualifiers(originalName)
}

func stripContainerPrefix(name, container string) string {
	rel := strings.TrimPrefix(name, container)
	return strings.TrimPrefix(rel, ".")
}

// Build finalizes the StructureDefinition, returning it along with any
// slice StructureDefinitions synthesized along the way.
func (b *StructureDefinitionBuilder) Build() (*StructureDefinition, []*StructureDefinition) {
	var slices []*StructureDefinition
	for _, sb := range b.activeSlicing {
		for _, sliceBuilder := range sb.sliceBuilders {
			sliceSD, nested := sliceBuilder.Build()
			slices = append(slices, sliceSD)
			slices = append(slices, nested...)
		}
	}
	return b.sd, slices
}
