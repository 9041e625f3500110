package repository

import "fmt"

// PostLoad runs the three post-load passes spec.md §4.1 lists ahead of
// verification: supplement merging, ValueSet finalization, and the slicing
// inheritance fixer. It does not seal the repository; call Verify afterward.
func (r *Repository) PostLoad() error {
	r.mergeSupplements()
	if err := r.finalizeValueSets(); err != nil {
		return err
	}
	r.fixInheritedSlicing()
	return nil
}

// mergeSupplements merges every queued content=supplement CodeSystem into
// its target, synthesizing the target if it is not already loaded
// (spec.md §4.1 step 1).
func (r *Repository) mergeSupplements() {
	for _, supplement := range r.supplements {
		target, ok := r.codeSystemsByURL[supplement.Supplements]
		if !ok {
			target = &CodeSystem{
				URL:           supplement.Supplements,
				CaseSensitive: supplement.CaseSensitive,
				Content:       ContentFragment,
			}
			r.indexCodeSystem(target)
		}
		for _, code := range supplement.Codes {
			if _, exists := target.byCode[code.Code]; exists {
				continue
			}
			target.Codes = append(target.Codes, code)
			target.byCode[code.Code] = &target.Codes[len(target.Codes)-1]
		}
	}
	r.supplements = nil
}

// finalizeValueSets finalizes every loaded ValueSet (spec.md §4.1 step 2,
// §3.2 "ValueSet finalization is deterministic and idempotent").
func (r *Repository) finalizeValueSets() error {
	for _, vs := range r.valueSetsByURL {
		if err := r.finalizeValueSet(vs); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) finalizeValueSet(vs *ValueSet) error {
	if vs.finalized {
		return nil
	}
	if vs.finalizing {
		return fmt.Errorf("cyclic value set reference involving %q", vs.URL)
	}
	vs.finalizing = true
	defer func() { vs.finalizing = false }()

	expansion := make(map[codeKey]Code)
	for _, include := range vs.Includes {
		if err := r.applyRule(expansion, include, true); err != nil {
			return err
		}
	}
	for _, exclude := range vs.Excludes {
		if err := r.applyRule(expansion, exclude, false); err != nil {
			return err
		}
	}
	for _, code := range vs.ExplicitExpansion {
		expansion[codeKey{system: code.System, code: normalizeCode(code, code.CaseSensitive)}] = code
	}

	vs.expansion = expansion
	vs.finalized = true
	return nil
}

func (r *Repository) applyRule(expansion map[codeKey]Code, rule ValueSetRule, add bool) error {
	for _, otherURL := range rule.ValueSetURLs {
		other, ok := r.valueSetsByURL[otherURL]
		if !ok {
			return fmt.Errorf("value set rule references unknown value set %q", otherURL)
		}
		if err := r.finalizeValueSet(other); err != nil {
			return err
		}
		for key, code := range other.expansion {
			if add {
				expansion[key] = code
			} else {
				delete(expansion, key)
			}
		}
	}

	if rule.SystemURL == "" {
		return nil
	}
	cs, ok := r.codeSystemsByURL[rule.SystemURL]
	if !ok {
		return fmt.Errorf("value set rule references unknown code system %q", rule.SystemURL)
	}

	var candidates []Code
	switch {
	case len(rule.Codes) == 0 && len(rule.Filters) == 0:
		candidates = cs.Codes
	default:
		if len(rule.Codes) > 0 {
			for _, code := range rule.Codes {
				if c, ok := cs.byCode[code]; ok {
					candidates = append(candidates, *c)
				}
			}
		}
		for _, filter := range rule.Filters {
			candidates = append(candidates, r.applyConceptFilter(cs, filter)...)
		}
	}

	for _, code := range candidates {
		key := codeKey{system: cs.URL, code: normalizeCode(code, cs.CaseSensitive)}
		if add {
			expansion[key] = code
		} else {
			delete(expansion, key)
		}
	}
	return nil
}

// applyConceptFilter evaluates one is-a/is-not-a/= filter over a CodeSystem's
// concept hierarchy (spec.md §4.1 step 2).
func (r *Repository) applyConceptFilter(cs *CodeSystem, filter ConceptFilter) []Code {
	var out []Code
	switch filter.Op {
	case FilterEquals:
		if c, ok := cs.byCode[filter.Value]; ok {
			out = append(out, *c)
		}
	case FilterIsA:
		for _, code := range cs.Codes {
			if code.Code == filter.Value || isDescendantOf(cs, code, filter.Value) {
				out = append(out, code)
			}
		}
	case FilterIsNotA:
		for _, code := range cs.Codes {
			if code.Code != filter.Value && !isDescendantOf(cs, code, filter.Value) {
				out = append(out, code)
			}
		}
	}
	return out
}

func isDescendantOf(cs *CodeSystem, code Code, ancestor string) bool {
	seen := make(map[string]bool)
	for code.Parent != "" && !seen[code.Parent] {
		if code.Parent == ancestor {
			return true
		}
		seen[code.Parent] = true
		parent, ok := cs.byCode[code.Parent]
		if !ok {
			return false
		}
		code = *parent
	}
	return false
}

func normalizeCode(code Code, caseSensitive bool) string {
	if caseSensitive {
		return code.Code
	}
	return lower(code.Code)
}

func lower(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// ContainsCode reports whether a finalized ValueSet's expansion contains the
// given code, matching case-sensitivity per the code system it came from
// (spec.md §8 scenario 6).
func (vs *ValueSet) ContainsCode(system, code string) bool {
	if vs.expansion == nil {
		return false
	}
	if _, ok := vs.expansion[codeKey{system: system, code: code}]; ok {
		return true
	}
	c, ok := vs.expansion[codeKey{system: system, code: lower(code)}]
	return ok && !c.CaseSensitive
}

// fixInheritedSlicing propagates a base element's Slicing down to a derived
// element that omits it, searching the profile's baseDefinition chain for an
// element with exactly the same name (spec.md §4.1 step 3, "repository
// fixer"). The prefixes of the dotted element name are not searched.
func (r *Repository) fixInheritedSlicing() {
	for _, sd := range r.structuresByURL {
		for _, ed := range sd.Elements {
			if ed.Slicing != nil {
				continue
			}
			if inherited := r.findInheritedSlicing(sd, ed.Name); inherited != nil {
				ed.Slicing = inherited
			}
		}
	}
}

func (r *Repository) findInheritedSlicing(sd *StructureDefinition, name string) *Slicing {
	for url := sd.BaseDefinition; url != ""; {
		base, ok := r.structuresByURL[url]
		if !ok {
			break
		}
		if ed, ok := base.byName[name]; ok && ed.Slicing != nil {
			return ed.Slicing
		}
		url = base.BaseDefinition
	}
	return nil
}
