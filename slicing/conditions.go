package slicing

import (
	"fmt"

	"github.com/fhirtools/fhirtools/model"
	"github.com/fhirtools/fhirtools/repository"
)

// valueCondition implements the `value` discriminator kind (spec.md §4.4
// step 1: "the runtime element at the discriminator path must equal the
// fixed value declared by some candidate").
type valueCondition struct {
	path       string
	fixedByPath []fixedCandidate
}

type fixedCandidate struct {
	subPath string // path relative to the discriminator target, usually ""
	value   model.Element
}

func compileValueCondition(path string, candidates []*repository.ElementInfo) (Condition, error) {
	var fixed []fixedCandidate
	for _, c := range candidates {
		if c.Element.Fixed != nil {
			fixed = append(fixed, fixedCandidate{value: c.Element.Fixed})
		}
	}
	if len(fixed) == 0 {
		return nil, fmt.Errorf("value discriminator at %q has no fixed value in any candidate profile", path)
	}
	return &valueCondition{path: path, fixedByPath: fixed}, nil
}

func (c *valueCondition) Matches(_ *MatchContext, el model.Element) (bool, error) {
	target := walkRuntimePath(el, c.path)
	if target == nil {
		return false, nil
	}
	for _, f := range c.fixedByPath {
		if f.value.Equals(target) == model.True {
			return true, nil
		}
	}
	return false, nil
}

// patternCondition implements the `pattern` discriminator kind: same
// traversal as `value` but subset/partial match (spec.md §4.4 step 1:
// "`pattern`: as `value`, but the comparison is Element::matches ...
// partial/subset match for complex values").
type patternCondition struct {
	path     string
	patterns []model.Element
}

func compilePatternCondition(path string, candidates []*repository.ElementInfo) (Condition, error) {
	var patterns []model.Element
	for _, c := range candidates {
		if c.Element.Pattern != nil {
			patterns = append(patterns, c.Element.Pattern)
		}
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("pattern discriminator at %q has no pattern value in any candidate profile", path)
	}
	return &patternCondition{path: path, patterns: patterns}, nil
}

func (c *patternCondition) Matches(_ *MatchContext, el model.Element) (bool, error) {
	target := walkRuntimePath(el, c.path)
	if target == nil {
		return false, nil
	}
	for _, p := range c.patterns {
		if p.Equals(target) == model.True {
			return true, nil
		}
	}
	return false, nil
}

// existsCondition implements the `exists` discriminator kind (spec.md §4.4
// step 1: "`exists`: the discriminator path is present (or absent, per the
// candidate's own min cardinality) on the runtime element").
type existsCondition struct {
	path       string
	mustExist  bool
}

func compileExistsCondition(path string, candidates []*repository.ElementInfo) (Condition, error) {
	mustExist := false
	for _, c := range candidates {
		if c.Element.Cardinality.Min > 0 {
			mustExist = true
		}
	}
	return &existsCondition{path: path, mustExist: mustExist}, nil
}

func (c *existsCondition) Matches(_ *MatchContext, el model.Element) (bool, error) {
	target := walkRuntimePath(el, c.path)
	return (target != nil) == c.mustExist, nil
}

// typeCondition implements the `type` discriminator kind: the runtime
// element's resolved type must match one of the candidates' declared type
// codes (spec.md §4.4 step 1: "`type`: the discriminator path's runtime
// type ... must equal the type code declared by some candidate").
type typeCondition struct {
	path  string
	types []string
}

func compileTypeCondition(path string, candidates []*repository.ElementInfo) (Condition, error) {
	var types []string
	for _, c := range candidates {
		if c.Element.TypeID != "" {
			types = append(types, c.Element.TypeID)
		}
		for _, t := range c.Element.Types {
			types = append(types, t.Code)
		}
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("type discriminator at %q resolves to no declared type in any candidate", path)
	}
	return &typeCondition{path: path, types: types}, nil
}

func (c *typeCondition) Matches(mctx *MatchContext, el model.Element) (bool, error) {
	target := walkRuntimePath(el, c.path)
	if target == nil {
		return false, nil
	}
	ti := target.TypeInfo()
	var typeName string
	if ti != nil {
		typeName = ti.TypeName()
	}
	if typeName == "" {
		typeName = primitiveTypeName(target.Type())
	}
	var repo *repository.Repository
	if mctx != nil && mctx.Eval != nil {
		repo = mctx.Eval.Repo
	}
	for _, want := range c.types {
		if typeName == want {
			return true, nil
		}
		if repo != nil && repo.IsDerivedFrom(typeName, want) {
			return true, nil
		}
	}
	return false, nil
}

func primitiveTypeName(t model.Type) string {
	switch t {
	case model.TypeString:
		return "string"
	case model.TypeInteger:
		return "integer"
	case model.TypeDecimal:
		return "decimal"
	case model.TypeBoolean:
		return "boolean"
	case model.TypeDate:
		return "date"
	case model.TypeDateTime:
		return "dateTime"
	case model.TypeTime:
		return "time"
	case model.TypeQuantity:
		return "Quantity"
	default:
		return ""
	}
}

// profileCondition implements the `profile` discriminator kind: full
// validation of the runtime element against one of the candidate's declared
// profile URLs must succeed with no issue at or above error severity (spec.md §4.4
// step 1: "`profile`: the predicate runs the full validator against each
// [profile] and reports success iff the highest severity is below error").
type profileCondition struct {
	path     string
	profiles []string
}

func compileProfileCondition(path string, candidates []*repository.ElementInfo) (Condition, error) {
	var profiles []string
	for _, c := range candidates {
		for _, t := range c.Element.Types {
			profiles = append(profiles, t.Profiles...)
		}
		profiles = append(profiles, c.Profile.URL)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("profile discriminator at %q resolves to no candidate profile URL", path)
	}
	return &profileCondition{path: path, profiles: profiles}, nil
}

func (c *profileCondition) Matches(mctx *MatchContext, el model.Element) (bool, error) {
	target := walkRuntimePath(el, c.path)
	if target == nil {
		return false, nil
	}
	if mctx == nil || mctx.Checker == nil {
		return false, fmt.Errorf("profile discriminator at %q requires a conformance checker, none wired", c.path)
	}
	for _, url := range c.profiles {
		ok, err := mctx.Checker.ConformsTo(mctx.Eval, target, url)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
