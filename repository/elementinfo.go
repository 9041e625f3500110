package repository

import "strings"

// ElementInfo is the (Profile, ElementDefinition) navigation pointer
// (`ProfiledElementTypeInfo`, spec.md §3.3). It is the non-owning handle
// every model.Element carries as its defining type information, and the
// bridge the validator and expression evaluator use to descend a profile
// tree alongside a runtime resource tree.
type ElementInfo struct {
	repo    *Repository
	Profile *StructureDefinition
	Element *ElementDefinition
}

// NewElementInfo builds an ElementInfo for a (profile, element) pair.
func NewElementInfo(repo *Repository, profile *StructureDefinition, element *ElementDefinition) *ElementInfo {
	return &ElementInfo{repo: repo, Profile: profile, Element: element}
}

// TypeName implements model.ElementTypeInfo.
func (info *ElementInfo) TypeName() string {
	if info.Element == nil {
		return ""
	}
	return info.Element.TypeID
}

// ProfileURL implements model.ElementTypeInfo.
func (info *ElementInfo) ProfileURL() string {
	if info.Profile == nil {
		return ""
	}
	return info.Profile.URL
}

// SubField looks up a direct child by its expanded name only (spec.md §3.3:
// "lookup by expanded name only").
func (info *ElementInfo) SubField(name string) (*ElementInfo, bool) {
	qualified := info.Element.Name + "." + name
	ed, ok := info.Profile.ByName(qualified)
	if !ok {
		return nil, false
	}
	return NewElementInfo(info.repo, info.Profile, ed), true
}

// ExpandedNames returns every type-expanded name of a choice field declared
// under this element (spec.md §3.3).
func (info *ElementInfo) ExpandedNames(name string) []string {
	prefix := info.Element.Name + "." + name
	var out []string
	for _, child := range info.Profile.Children(info.Element.Name) {
		if strings.HasPrefix(child.Name, prefix) {
			out = append(out, child.Name)
		}
	}
	return out
}

// SubDefinitions returns the element definition for name plus the root
// element of the type it resolves to (following contentReference when
// present), for the validator's descent (spec.md §3.3).
func (info *ElementInfo) SubDefinitions(name string) (*ElementInfo, *ElementInfo, bool) {
	child, ok := info.SubField(name)
	if !ok {
		return nil, nil, false
	}

	if child.Element.ContentReference != "" {
		target, ok := info.repo.resolveContentReference(info.Profile, child.Element.ContentReference)
		if !ok {
			return child, nil, true
		}
		return child, NewElementInfo(info.repo, info.Profile, target), true
	}

	typeSD, ok := info.repo.resolveTypeID(child.Element.TypeID)
	if !ok || typeSD.Root() == nil {
		return child, nil, true
	}
	return child, NewElementInfo(info.repo, typeSD, typeSD.Root()), true
}

// TypeCast retypes this pointer to a derived structure (e.g. a matched
// slice's synthesized profile) without changing the underlying cardinality
// (spec.md §3.3).
func (info *ElementInfo) TypeCast(targetProfile *StructureDefinition) *ElementInfo {
	root := targetProfile.Root()
	if root == nil {
		return info
	}
	return NewElementInfo(info.repo, targetProfile, root)
}

// TypeInfoInParentStructureDefinition walks up the profile's inheritance
// chain, returning the same-named element definition on the base type
// (spec.md §3.3).
func (info *ElementInfo) TypeInfoInParentStructureDefinition() (*ElementInfo, bool) {
	if info.Profile.BaseDefinition == "" {
		return nil, false
	}
	base, ok := info.repo.StructureByURL(info.Profile.BaseDefinition)
	if !ok {
		return nil, false
	}
	ed, ok := base.ByName(info.Element.Name)
	if !ok {
		return nil, false
	}
	return NewElementInfo(info.repo, base, ed), true
}

// IsDerivedFrom reports whether this element's type is, or inherits from,
// baseTypeID — used by the `is`/`ofType` operators.
func (info *ElementInfo) IsDerivedFrom(baseTypeID string) bool {
	return info.repo.IsDerivedFrom(info.TypeName(), baseTypeID)
}
