package validator

import (
	"fmt"

	"github.com/fhirtools/fhirtools/expression"
	"github.com/fhirtools/fhirtools/model"
	"github.com/fhirtools/fhirtools/repository"
)

// Validator runs the conformance validator's pre-order walk against an
// immutable repository (spec.md §4.5). A Validator is reused across many
// Validate calls; it holds no per-call state.
type Validator struct {
	repo *repository.Repository
	// Resolver backs the reference-validation phase (spec.md §4.5
	// "References: deferred to the reference resolver, §4.6"). Declared via
	// expression.Resolver to share the same abstraction package reference
	// implements for the FHIRPath resolve() function.
	Resolver expression.Resolver
}

// New builds a Validator over a sealed, verified repository.
func New(repo *repository.Repository) *Validator {
	return &Validator{repo: repo}
}

// ConformsTo implements expression.Validator (for the FHIRPath conformsTo()
// function) and backs the slicing package's `profile` discriminator kind
// (spec.md §4.4 step 1, §4.2 "FHIR supplements"): it reports whether el
// validates against profileURL with no issue at or above error.
func (v *Validator) ConformsTo(_ *expression.EvalContext, el model.Element, profileURL string) (bool, error) {
	sd, ok := v.repo.StructureByURL(profileURL)
	if !ok {
		return false, fmt.Errorf("conformsTo: unknown profile %q", profileURL)
	}
	results := v.validateOne(el, sd)
	return results.IsValid(), nil
}

// Validate validates root against every profile named in profileURLs (or,
// if none are given, against root's own declared ResourceType). Per spec.md
// §4.5, a resource must be valid against every activated profile; issues
// from all of them accumulate into one Results.
func (v *Validator) Validate(root model.Element, profileURLs ...string) (*Results, error) {
	urls := profileURLs
	if len(urls) == 0 {
		rt := root.ResourceType()
		if rt == "" {
			return nil, fmt.Errorf("validate: root element is not a resource and no profile was given")
		}
		sd, ok := v.repo.StructureByType(rt)
		if !ok {
			return nil, fmt.Errorf("validate: no structure definition registered for resource type %q", rt)
		}
		urls = []string{sd.URL}
	}

	results := &Results{}
	for _, url := range urls {
		sd, ok := v.repo.StructureByURL(url)
		if !ok {
			results.Addf(SeverityError, CodeNotFound, root.ResourceType(), url, "profile %q not found in repository", url)
			continue
		}
		results.Merge(v.validateOne(root, sd))
	}
	return results, nil
}

// validateOne runs the pre-order walk against a single profile.
func (v *Validator) validateOne(root model.Element, sd *repository.StructureDefinition) *Results {
	results := &Results{}
	rootDef := sd.Root()
	if rootDef == nil {
		results.Addf(SeverityFatal, CodeStructure, sd.TypeID, sd.URL, "profile %q has no root element definition", sd.URL)
		return results
	}
	ec := expression.NewEvalContext(v.repo, root)
	ec.Resolver = v.Resolver
	ec.Validator = v

	info := repository.NewElementInfo(v.repo, sd, rootDef)
	v.walkElement(ec, info, root, sd.TypeID, sd.URL, results)
	v.walkChildren(ec, info, root, sd.TypeID, sd.URL, results)
	return results
}
