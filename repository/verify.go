package repository

import "fmt"

// Verify performs spec.md §4.1 step 4 ("View verification"), checking that
// every baseDefinition, typed element, profile, targetProfile,
// contentReference, and required binding resolves. Verify does not compile
// discriminators or constraint expressions, and no other load-time pass
// does: package validator compiles constraints when it first evaluates them
// and compiles slicing discriminators each time it walks a sliced field.
//
// Verify seals the repository on success. On failure it returns a
// *LoadError listing every unresolved reference found; it does not seal.
func (r *Repository) Verify() error {
	loadErr := &LoadError{}

	for _, sd := range r.structuresByURL {
		r.verifyBaseDefinition(sd, loadErr)
		for _, ed := range sd.Elements {
			r.verifyElement(sd, ed, loadErr)
		}
	}

	if loadErr.HasFatal() {
		return loadErr
	}
	r.Seal()
	return nil
}

func (r *Repository) verifyBaseDefinition(sd *StructureDefinition, loadErr *LoadError) {
	if sd.BaseDefinition == "" {
		return // root types (e.g. "Element" itself) have no base
	}
	if _, ok := r.structuresByURL[sd.BaseDefinition]; !ok {
		loadErr.add(Issue{
			URL:     sd.URL,
			Version: sd.Version,
			Message: fmt.Sprintf("baseDefinition %q does not resolve", sd.BaseDefinition),
			Fatal:   true,
		})
	}
}

func (r *Repository) verifyElement(sd *StructureDefinition, ed *ElementDefinition, loadErr *LoadError) {
	for _, t := range ed.Types {
		if t.Code == "" {
			continue
		}
		if _, ok := r.resolveTypeID(t.Code); !ok {
			loadErr.add(Issue{
				URL: sd.URL, Version: sd.Version, ElementName: ed.Name,
				Message: fmt.Sprintf("type %q does not resolve", t.Code),
				Fatal:   true,
			})
		}
		for _, p := range t.Profiles {
			if _, ok := r.structuresByURL[p]; !ok {
				loadErr.add(Issue{
					URL: sd.URL, Version: sd.Version, ElementName: ed.Name,
					Message: fmt.Sprintf("profile %q does not resolve", p),
					Fatal:   true,
				})
			}
		}
		for _, tp := range t.TargetProfiles {
			if _, ok := r.structuresByURL[tp]; !ok {
				loadErr.add(Issue{
					URL: sd.URL, Version: sd.Version, ElementName: ed.Name,
					Message: fmt.Sprintf("targetProfile %q does not resolve", tp),
					Fatal:   true,
				})
			}
		}
	}

	if ed.ContentReference != "" {
		if _, ok := r.resolveContentReference(sd, ed.ContentReference); !ok {
			loadErr.add(Issue{
				URL: sd.URL, Version: sd.Version, ElementName: ed.Name,
				Message: fmt.Sprintf("contentReference %q does not resolve", ed.ContentReference),
				Fatal:   true,
			})
		}
	}

	if ed.Binding != nil {
		_, ok := r.valueSetsByURL[ed.Binding.ValueSetKey.URL]
		fatal := ed.Binding.Strength == BindingRequired
		if !ok {
			loadErr.add(Issue{
				URL: sd.URL, Version: sd.Version, ElementName: ed.Name,
				Message: fmt.Sprintf("binding value set %q does not resolve", ed.Binding.ValueSetKey.URL),
				Fatal:   fatal,
			})
		}
	}
}

// resolveTypeID reports whether a type code resolves to a known structure,
// either by type code or by full canonical URL.
func (r *Repository) resolveTypeID(typeID string) (*StructureDefinition, bool) {
	if sd, ok := r.structuresByType[typeID]; ok {
		return sd, true
	}
	sd, ok := r.structuresByURL[typeID]
	return sd, ok
}

// resolveContentReference resolves "#ElementPath" against the defining
// StructureDefinition's own elements (the common case) and, failing that,
// against the base chain.
func (r *Repository) resolveContentReference(sd *StructureDefinition, ref string) (*ElementDefinition, bool) {
	path := ref
	if len(path) > 0 && path[0] == '#' {
		path = path[1:]
	}
	for s := sd; s != nil; {
		if ed, ok := s.byName[path]; ok {
			return ed, true
		}
		if s.BaseDefinition == "" {
			break
		}
		next, ok := r.structuresByURL[s.BaseDefinition]
		if !ok {
			break
		}
		s = next
	}
	return nil, false
}
