package repository

import (
	"fmt"
	"sync"
)

// Repository is the immutable, load-once store of conformance resources
// (spec.md §3.2 "Lifecycle & invariants"). It is safe for unsynchronized
// concurrent reads once Verify has returned successfully; all mutation
// happens before that point through the Add* methods.
type Repository struct {
	mu sync.RWMutex

	structuresByURL  map[string]*StructureDefinition
	structuresByType map[string]*StructureDefinition // first definition wins, per type code

	codeSystemsByURL map[string]*CodeSystem
	valueSetsByURL   map[string]*ValueSet

	supplements []*CodeSystem // queued content=supplement CodeSystems, merged in PostLoad

	sealed bool
}

// New creates an empty Repository ready to accept Add* calls.
func New() *Repository {
	return &Repository{
		structuresByURL:  make(map[string]*StructureDefinition),
		structuresByType: make(map[string]*StructureDefinition),
		codeSystemsByURL: make(map[string]*CodeSystem),
		valueSetsByURL:   make(map[string]*ValueSet),
	}
}

// AddStructureDefinition registers a StructureDefinition, indexing it by URL
// and (first-definition-wins) by type code.
func (r *Repository) AddStructureDefinition(sd *StructureDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("repository is sealed")
	}
	if sd.URL == "" {
		return fmt.Errorf("structure definition %q has no url", sd.TypeID)
	}
	if _, exists := r.structuresByURL[sd.URL]; exists {
		return fmt.Errorf("duplicate structure definition url %q", sd.URL)
	}
	r.structuresByURL[sd.URL] = sd
	if sd.TypeID != "" && sd.Derivation != DerivationConstraint {
		if _, exists := r.structuresByType[sd.TypeID]; !exists {
			r.structuresByType[sd.TypeID] = sd
		}
	}
	return nil
}

// AddCodeSystem registers a CodeSystem. Content=supplement code systems are
// queued rather than indexed immediately (spec.md §4.1 "Loading").
func (r *Repository) AddCodeSystem(cs *CodeSystem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("repository is sealed")
	}
	if cs.Content == ContentSupplement {
		r.supplements = append(r.supplements, cs)
		return nil
	}
	return r.indexCodeSystem(cs)
}

func (r *Repository) indexCodeSystem(cs *CodeSystem) error {
	if cs.URL == "" {
		return fmt.Errorf("code system has no url")
	}
	if cs.byCode == nil {
		cs.byCode = make(map[string]*Code, len(cs.Codes))
		for i := range cs.Codes {
			cs.byCode[cs.Codes[i].Code] = &cs.Codes[i]
		}
	}
	r.codeSystemsByURL[cs.URL] = cs
	return nil
}

// AddValueSet registers a ValueSet (unfinalized).
func (r *Repository) AddValueSet(vs *ValueSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("repository is sealed")
	}
	if vs.URL == "" {
		return fmt.Errorf("value set has no url")
	}
	r.valueSetsByURL[vs.URL] = vs
	return nil
}

// StructureByURL looks up a StructureDefinition by canonical URL.
func (r *Repository) StructureByURL(url string) (*StructureDefinition, bool) {
	sd, ok := r.structuresByURL[url]
	return sd, ok
}

// StructureByType looks up the first-loaded StructureDefinition for a type
// code (e.g. "Patient", "HumanName").
func (r *Repository) StructureByType(typeCode string) (*StructureDefinition, bool) {
	sd, ok := r.structuresByType[typeCode]
	return sd, ok
}

// CodeSystemByURL looks up a CodeSystem by canonical URL.
func (r *Repository) CodeSystemByURL(url string) (*CodeSystem, bool) {
	cs, ok := r.codeSystemsByURL[url]
	return cs, ok
}

// ValueSetByURL looks up a ValueSet by canonical URL.
func (r *Repository) ValueSetByURL(url string) (*ValueSet, bool) {
	vs, ok := r.valueSetsByURL[url]
	return vs, ok
}

// AllStructures returns every loaded StructureDefinition, in no particular
// order. Used by post-load passes and by the CLI's diagnostic dump.
func (r *Repository) AllStructures() []*StructureDefinition {
	out := make([]*StructureDefinition, 0, len(r.structuresByURL))
	for _, sd := range r.structuresByURL {
		out = append(out, sd)
	}
	return out
}

// IsDerivedFrom reports whether typeID names a type that is typeID itself or
// inherits (via baseDefinition, transitively) from baseTypeID.
func (r *Repository) IsDerivedFrom(typeID, baseTypeID string) bool {
	if typeID == baseTypeID {
		return true
	}
	sd, ok := r.StructureByType(typeID)
	if !ok {
		return false
	}
	return r.isURLDerivedFrom(sd.BaseDefinition, baseTypeID)
}

func (r *Repository) isURLDerivedFrom(url, baseTypeID string) bool {
	for url != "" {
		sd, ok := r.StructureByURL(url)
		if !ok {
			return false
		}
		if sd.TypeID == baseTypeID {
			return true
		}
		url = sd.BaseDefinition
	}
	return false
}

// ResolveTypeName resolves a typeId-or-URL to its canonical URL, as required
// by the `is`/`as`/`ofType` operators (spec.md §4.2 "Type operators").
func (r *Repository) ResolveTypeName(name string) (string, bool) {
	if sd, ok := r.StructureByURL(name); ok {
		return sd.URL, ok
	}
	if sd, ok := r.StructureByType(name); ok {
		return sd.URL, true
	}
	return "", false
}

// Seal marks the repository immutable; subsequent Add* calls fail. Called by
// Verify once structural checks pass.
func (r *Repository) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}
