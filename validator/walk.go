package validator

import (
	"strings"

	"github.com/fhirtools/fhirtools/expression"
	"github.com/fhirtools/fhirtools/fhirpath"
	"github.com/fhirtools/fhirtools/model"
	"github.com/fhirtools/fhirtools/pool"
	"github.com/fhirtools/fhirtools/repository"
	"github.com/fhirtools/fhirtools/slicing"
)

// buildChildPath builds "path.lname[idx]" via pool's reusable PathBuilder:
// the pre-order walk builds one of these per present field instance across a
// potentially large resource tree, which is exactly the allocation pressure
// pool was written to absorb.
func buildChildPath(path, lname string, idx int) string {
	return pool.BuildPath(func(b *pool.PathBuilder) {
		b.WriteString(path)
		b.AppendWithDot(lname)
		b.AppendIndex(idx)
	})
}

// slicePath builds "path.lname:sliceName".
func slicePath(path, lname, sliceName string) string {
	pb := pool.AcquirePathBuilder()
	defer pb.Release()
	pb.WriteString(path)
	pb.AppendWithDot(lname)
	pb.WriteByte(':')
	pb.WriteString(sliceName)
	return pb.String()
}

// walkElement runs every self-contained check attached directly to info's
// ElementDefinition against el: fixed/pattern, max length, binding, and
// invariants (spec.md §4.5 pre-order walk, steps "Fixed/pattern", "Max
// length", "Bindings", "Invariants"). It does not recurse — see walkChildren.
func (v *Validator) walkElement(ec *expression.EvalContext, info *repository.ElementInfo, el model.Element, path, profileURL string, results *Results) {
	ed := info.Element

	if ed.Fixed != nil && ed.Fixed.Equals(el) != model.True {
		results.Addf(SeverityError, CodeValue, path, profileURL, "value does not match fixed value")
	}
	if ed.Pattern != nil && ed.Pattern.Equals(el) != model.True {
		results.Addf(SeverityError, CodeValue, path, profileURL, "value does not match required pattern")
	}
	if ed.MaxLength > 0 {
		if s, err := el.AsString(); err == nil && len(s) > ed.MaxLength {
			results.Addf(SeverityError, CodeTooLong, path, profileURL, "value length %d exceeds maxLength %d", len(s), ed.MaxLength)
		}
	}
	if ed.Binding != nil {
		v.checkBinding(ed.Binding, el, path, profileURL, results)
	}
	for _, c := range ed.Constraints {
		v.checkConstraint(ec, c, el, path, profileURL, results)
	}
}

func (v *Validator) checkBinding(b *repository.Binding, el model.Element, path, profileURL string, results *Results) {
	code, err := el.AsString()
	if err != nil {
		return // complex (Coding/CodeableConcept) binding targets are out of scope here
	}
	vs, ok := v.repo.ValueSetByURL(b.ValueSetKey.URL)
	if !ok {
		return
	}
	found := false
	for _, inc := range vs.Includes {
		if vs.ContainsCode(inc.SystemURL, code) {
			found = true
			break
		}
	}
	if found {
		return
	}
	switch b.Strength {
	case repository.BindingRequired:
		results.Addf(SeverityError, CodeCodeInvalid, path, profileURL, "code %q not found in required value set %q", code, b.ValueSetKey.URL)
	case repository.BindingExtensible:
		results.Addf(SeverityWarning, CodeCodeInvalid, path, profileURL, "code %q not found in extensible value set %q", code, b.ValueSetKey.URL)
	default: // preferred, example: informational only, not surfaced as an issue
	}
}

func (v *Validator) checkConstraint(ec *expression.EvalContext, c repository.Constraint, el model.Element, path, profileURL string, results *Results) {
	expr, err := fhirpath.Compile(v.repo, c.Expression)
	if err != nil {
		results.Addf(SeverityError, CodeInvariant, path, profileURL, "constraint %s: cannot compile %q: %v", c.Key, c.Expression, err)
		return
	}
	out, err := expr.Eval(ec, model.Collection{el})
	if err != nil {
		results.Addf(SeverityError, CodeInvariant, path, profileURL, "constraint %s: evaluation failed: %v", c.Key, err)
		return
	}
	ok, err := out.Boolean()
	if err != nil {
		results.Addf(SeverityError, CodeInvariant, path, profileURL, "constraint %s: %v", c.Key, err)
		return
	}
	if ok {
		return
	}
	sev := SeverityWarning
	if c.Severity == "error" {
		sev = SeverityError
	}
	results.Addf(sev, CodeInvariant, path, profileURL, "constraint %s failed: %s", c.Key, c.Human)
}

// walkChildren descends every field declared directly under target (spec.md
// §4.5 pre-order walk, steps "Cardinality" and "Slicing"), then recurses
// into each present child, following contentReference/type boundaries via
// ElementInfo.SubDefinitions.
func (v *Validator) walkChildren(ec *expression.EvalContext, target *repository.ElementInfo, el model.Element, path, profileURL string, results *Results) {
	children := target.Profile.Children(target.Element.Name)
	if len(children) == 0 {
		return
	}

	var order []string
	groups := make(map[string][]*repository.ElementDefinition)
	for _, ed := range children {
		if _, seen := groups[ed.OriginalName]; !seen {
			order = append(order, ed.OriginalName)
		}
		groups[ed.OriginalName] = append(groups[ed.OriginalName], ed)
	}

	for _, key := range order {
		group := groups[key]
		base := group[0]

		total := 0
		for _, ed := range group {
			total += len(el.SubElements(localName(ed)))
		}
		if !base.Cardinality.Satisfies(total) {
			code := CodeCardinality
			if total < int(base.Cardinality.Min) {
				code = CodeRequired
			}
			results.Addf(SeverityError, code, pool.JoinPath(path, localName(base)), profileURL,
				"field occurs %d times, expected cardinality %s", total, base.Cardinality)
		}

		for _, ed := range group {
			lname := localName(ed)
			runtimeChildren := el.SubElements(lname)
			if len(runtimeChildren) == 0 {
				continue
			}
			if ed.Slicing != nil {
				v.walkSlicedField(ec, target, ed, runtimeChildren, path, profileURL, results)
				continue
			}
			v.walkUnslicedField(ec, target, ed, lname, runtimeChildren, path, profileURL, results)
		}
	}
}

func (v *Validator) walkUnslicedField(ec *expression.EvalContext, target *repository.ElementInfo, ed *repository.ElementDefinition, lname string, runtimeChildren []model.Element, path, profileURL string, results *Results) {
	for idx, childEl := range runtimeChildren {
		childPath := buildChildPath(path, lname, idx)
		v.walkFieldInstance(ec, target, ed, lname, childEl, childPath, profileURL, results)
	}
}

// walkFieldInstance validates one present instance of a declared field: its
// own self-checks, recursion into its own substructure (following
// contentReference/type boundaries), and reference resolution when the
// field's type is Reference (spec.md §4.5 "References: deferred to the
// reference resolver, §4.6").
func (v *Validator) walkFieldInstance(ec *expression.EvalContext, target *repository.ElementInfo, ed *repository.ElementDefinition, lname string, childEl model.Element, childPath, profileURL string, results *Results) {
	childInfo := repository.NewElementInfo(v.repo, target.Profile, ed)
	v.walkElement(ec, childInfo, childEl, childPath, profileURL, results)

	if _, nextTarget, ok := target.SubDefinitions(lname); ok && nextTarget != nil {
		v.walkChildren(ec, nextTarget, childEl, childPath, profileURL, results)
	}
	if ed.TypeID == "Reference" && v.Resolver != nil {
		if _, err := v.Resolver.Resolve(ec, childEl); err != nil {
			results.Addf(SeverityError, CodeNotFound, childPath, profileURL, "reference does not resolve: %v", err)
		}
	}
}

// walkSlicedField classifies runtimeChildren against ed's compiled slicing
// and, for each member, validates against whichever profile it was matched
// to (spec.md §4.4 step 3 classification combined with §4.5's "Slicing: ...
// re-descent with typecast").
func (v *Validator) walkSlicedField(ec *expression.EvalContext, target *repository.ElementInfo, ed *repository.ElementDefinition, runtimeChildren []model.Element, path, profileURL string, results *Results) {
	lname := localName(ed)
	compiled, err := slicing.Compile(v.repo, ed.Slicing)
	if err != nil {
		results.Addf(SeverityError, CodeStructure, pool.JoinPath(path, lname), profileURL, "slicing compilation failed: %v", err)
		return
	}

	mctx := &slicing.MatchContext{Eval: ec, Checker: v}
	classifications := compiled.Classify(mctx, runtimeChildren)
	counts := slicing.CardinalityCounts(classifications)
	for _, slice := range compiled.Slices {
		root := slice.Profile.Root()
		if root == nil {
			continue
		}
		if !root.Cardinality.Satisfies(counts[slice.Name]) {
			results.Addf(SeverityError, CodeCardinality, slicePath(path, lname, slice.Name), profileURL,
				"slice %q occurs %d times, expected cardinality %s", slice.Name, counts[slice.Name], root.Cardinality)
		}
	}

	for _, cl := range classifications {
		childEl := runtimeChildren[cl.Index]
		childPath := buildChildPath(path, lname, cl.Index)

		switch cl.Outcome {
		case slicing.OutcomeMatched:
			sliceRoot := cl.Slice.Profile.Root()
			sliceInfo := repository.NewElementInfo(v.repo, cl.Slice.Profile, sliceRoot)
			v.walkElement(ec, sliceInfo, childEl, childPath, profileURL, results)
			v.walkChildren(ec, sliceInfo, childEl, childPath, profileURL, results)
		case slicing.OutcomeViolation:
			if cl.Err != nil {
				results.Addf(SeverityError, CodeStructure, childPath, profileURL, "slice classification failed: %v", cl.Err)
			} else {
				results.Addf(SeverityError, CodeStructure, childPath, profileURL, "element does not match any allowed slice")
			}
		case slicing.OutcomeReportOther:
			results.Addf(SeverityInfo, CodeStructure, childPath, profileURL, "element does not match any declared slice")
		default: // open / openAtEnd: still a valid instance of the base type
			v.walkFieldInstance(ec, target, ed, lname, childEl, childPath, profileURL, results)
		}
	}
}

// localName returns the last dotted segment of an ElementDefinition's
// canonical name.
func localName(ed *repository.ElementDefinition) string {
	name := ed.Name
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
