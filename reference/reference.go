// Package reference resolves FHIR Reference elements to their target
// Element, by contained-resource id, Bundle entry fullUrl, or self-reference
// (spec.md §4.6). Grounded on gofhir-validator/pkg/reference/reference.go's
// BundleContext/fullUrl-index shape, generalized from a JSON-map Bundle scan
// to model.Element traversal so the same Resolver works over any host
// Element implementation (XML-decoded fixtures, a JSON resource, or a
// synthesized literal).
package reference

import (
	"fmt"
	"strings"

	"github.com/fhirtools/fhirtools/expression"
	"github.com/fhirtools/fhirtools/model"
)

// Resolver implements expression.Resolver (for the FHIRPath resolve()
// function) and is wired into validator.Validator for the reference
// validation phase (spec.md §4.5 "References").
type Resolver struct{}

// New builds a Resolver. It carries no state: every resolution walks the
// target element's own ancestry to find its containing resource and bundle.
func New() *Resolver {
	return &Resolver{}
}

// Resolve implements expression.Resolver. ref must be a FHIR Reference
// element (a complex value with a "reference" string sub-element).
func (r *Resolver) Resolve(_ *expression.EvalContext, ref model.Element) (model.Element, error) {
	refStr, ok := referenceString(ref)
	if !ok || refStr == "" {
		return nil, fmt.Errorf("reference has no reference string")
	}

	// Step 1: parse (scheme?, pathOrId, containedId?) — spec.md §4.6.
	if containedID, isContained := strings.CutPrefix(refStr, "#"); isContained {
		host := findHostResource(ref)
		if host == nil {
			return nil, fmt.Errorf("reference %q: no containing resource found for a contained lookup", refStr)
		}
		return findContained(host, containedID)
	}

	// Step 2 & 3: compute target identity, resolve via Bundle fullUrl search
	// (spec.md §4.6 "entry[].fullUrl search") ...
	if bundle := findBundle(ref); bundle != nil {
		if target := findByFullURL(bundle, refStr); target != nil {
			return target, nil
		}
	}

	// ... or self-reference, when the reference names the resource it is
	// itself embedded in (spec.md §4.6 "or self-reference").
	if host := findHostResource(ref); host != nil && matchesSelf(host, refStr) {
		return host, nil
	}

	return nil, fmt.Errorf("reference %q does not resolve", refStr)
}

func referenceString(ref model.Element) (string, bool) {
	children := ref.SubElements("reference")
	if len(children) != 1 {
		return "", false
	}
	s, err := children[0].AsString()
	if err != nil {
		return "", false
	}
	return s, true
}

// findHostResource walks ref's ancestry to the nearest element that is
// itself a resource (the resource the reference is embedded in).
func findHostResource(el model.Element) model.Element {
	for cur := el; cur != nil; cur = cur.Parent() {
		if cur.IsResource() {
			return cur
		}
	}
	return nil
}

// findBundle walks ref's ancestry to the nearest container resource
// (Bundle-shaped) so entry[].fullUrl can be searched.
func findBundle(el model.Element) model.Element {
	for cur := el; cur != nil; cur = cur.Parent() {
		if cur.IsContainerResource() {
			return cur
		}
	}
	return nil
}

func findContained(host model.Element, containedID string) (model.Element, error) {
	for _, c := range host.SubElements("contained") {
		if idMatches(c, containedID) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("contained resource #%s not found", containedID)
}

func findByFullURL(bundle model.Element, fullURL string) model.Element {
	for _, entry := range bundle.SubElements("entry") {
		fullURLEls := entry.SubElements("fullUrl")
		if len(fullURLEls) != 1 {
			continue
		}
		s, err := fullURLEls[0].AsString()
		if err != nil || s != fullURL {
			continue
		}
		resourceEls := entry.SubElements("resource")
		if len(resourceEls) == 1 {
			return resourceEls[0]
		}
	}
	return nil
}

// matchesSelf reports whether refStr identifies host itself, by
// "Type/id"-shaped relative reference or a urn:uuid matching host's id.
func matchesSelf(host model.Element, refStr string) bool {
	idEls := host.SubElements("id")
	if len(idEls) != 1 {
		return false
	}
	id, err := idEls[0].AsString()
	if err != nil || id == "" {
		return false
	}
	if refStr == "urn:uuid:"+id {
		return true
	}
	expected := host.ResourceType() + "/" + id
	return refStr == expected || strings.HasSuffix(refStr, "/"+expected)
}

func idMatches(el model.Element, id string) bool {
	idEls := el.SubElements("id")
	if len(idEls) != 1 {
		return false
	}
	s, err := idEls[0].AsString()
	return err == nil && s == id
}
