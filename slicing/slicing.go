// Package slicing compiles ElementDefinition.slicing declarations into
// runtime predicates and classifies array members against them
// (spec.md §4.4), grounded on gofhir-validator/pkg/slicing/slicing.go's
// Context/SliceInfo shape, generalized from JSON-map traversal to
// model.Element traversal.
package slicing

import (
	"fmt"

	"github.com/fhirtools/fhirtools/expression"
	"github.com/fhirtools/fhirtools/model"
	"github.com/fhirtools/fhirtools/repository"
)

// MatchContext carries what a Condition needs to evaluate itself. Checker
// reuses expression.Validator — the same `profile`-discriminator kind
// (spec.md §4.4 step 1: "predicate runs the full validator ... reports
// success iff the highest severity is below error") also backs the
// FHIRPath conformsTo() function, so both share one interface. package
// validator implements it and passes itself as Checker when its slicing
// phase builds a MatchContext.
type MatchContext struct {
	Eval    *expression.EvalContext
	Checker expression.Validator
}

// Condition is one compiled discriminator predicate (spec.md §4.4 step 1).
type Condition interface {
	Matches(mctx *MatchContext, el model.Element) (bool, error)
}

// CompiledSlice pairs a declared slice's synthesized profile with the
// conjunction of its discriminator conditions (spec.md §4.4 step 2).
type CompiledSlice struct {
	Name       string
	Profile    *repository.StructureDefinition
	Conditions []Condition
}

// Matches reports whether el satisfies every discriminator condition for
// this slice.
func (s *CompiledSlice) Matches(mctx *MatchContext, el model.Element) (bool, error) {
	for _, c := range s.Conditions {
		ok, err := c.Matches(mctx, el)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Compiled is the compiled form of a repository.Slicing, ready for
// classification at validation time.
type Compiled struct {
	Rules   repository.SlicingRules
	Ordered bool
	Slices  []*CompiledSlice
}

// Compile builds a Compiled slicing definition, walking each declared
// slice's discriminators once per call. Repository verification does not
// call it; package validator calls it each time it walks a sliced field,
// and the result is not cached.
func Compile(repo *repository.Repository, slicing *repository.Slicing) (*Compiled, error) {
	c := &Compiled{Rules: slicing.Rules, Ordered: slicing.Ordered}
	for _, profile := range slicing.SliceProfiles {
		root := profile.Root()
		if root == nil {
			continue
		}
		info := repository.NewElementInfo(repo, profile, root)
		cs := &CompiledSlice{Name: root.SliceName, Profile: profile}
		for _, d := range slicing.Discriminators {
			cond, err := compileDiscriminator(repo, info, d)
			if err != nil {
				return nil, fmt.Errorf("slice %q discriminator %s@%s: %w", cs.Name, d.Type, d.Path, err)
			}
			cs.Conditions = append(cs.Conditions, cond)
		}
		c.Slices = append(c.Slices, cs)
	}
	return c, nil
}

func compileDiscriminator(repo *repository.Repository, slice *repository.ElementInfo, d repository.Discriminator) (Condition, error) {
	candidates, err := collectCandidates(repo, slice, d.Path)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("discriminator path %q resolves to no element", d.Path)
	}
	switch d.Type {
	case repository.DiscriminatorValue:
		return compileValueCondition(d.Path, candidates)
	case repository.DiscriminatorPattern:
		return compilePatternCondition(d.Path, candidates)
	case repository.DiscriminatorExists:
		return compileExistsCondition(d.Path, candidates)
	case repository.DiscriminatorTypeCode:
		return compileTypeCondition(d.Path, candidates)
	case repository.DiscriminatorProfile:
		return compileProfileCondition(d.Path, candidates)
	default:
		return nil, fmt.Errorf("unknown discriminator type %q", d.Type)
	}
}

// collectCandidates walks path from slice's root, then (spec.md §4.4 step 1:
// "collecting candidate element definitions in all profiles referenced by
// the path") adds one candidate per explicit type profile declared on the
// terminal element, so discriminators anchored on a choice/profiled field
// see every profile's own fixed/pattern/cardinality declaration.
func collectCandidates(repo *repository.Repository, slice *repository.ElementInfo, path string) ([]*repository.ElementInfo, error) {
	target, err := walkElementPath(slice, path)
	if err != nil {
		return nil, err
	}
	candidates := []*repository.ElementInfo{target}
	if target.Element == nil {
		return candidates, nil
	}
	for _, t := range target.Element.Types {
		for _, p := range t.Profiles {
			if sd, ok := repo.StructureByURL(p); ok && sd.Root() != nil {
				candidates = append(candidates, repository.NewElementInfo(repo, sd, sd.Root()))
			}
		}
	}
	return candidates, nil
}

// walkElementPath descends a dotted discriminator path from start via
// ElementInfo.SubField, treating "$this" as a no-op segment.
func walkElementPath(start *repository.ElementInfo, path string) (*repository.ElementInfo, error) {
	cur := start
	for _, seg := range splitPath(path) {
		if seg == "$this" {
			continue
		}
		next, ok := cur.SubField(seg)
		if !ok {
			return nil, fmt.Errorf("path segment %q does not resolve under %s", seg, cur.Element.Name)
		}
		cur = next
	}
	return cur, nil
}

func splitPath(path string) []string {
	if path == "" || path == "$this" {
		return nil
	}
	var segs []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			segs = append(segs, path[start:i])
			start = i + 1
		}
	}
	segs = append(segs, path[start:])
	return segs
}

// walkRuntimePath descends a dotted path on a live model.Element, taking the
// first element at each step (discriminator paths are expected to resolve to
// a singleton per candidate).
func walkRuntimePath(el model.Element, path string) model.Element {
	cur := el
	for _, seg := range splitPath(path) {
		if cur == nil {
			return nil
		}
		if seg == "$this" {
			continue
		}
		children := cur.SubElements(seg)
		if len(children) == 0 {
			return nil
		}
		cur = children[0]
	}
	return cur
}
