package expression

import "github.com/fhirtools/fhirtools/model"

// This evaluates `$this`: the input, unchanged (spec.md §4.2 "Context nodes").
type This struct{}

func (This) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	return input, nil
}

// Invocation implements `e1.e2`: evaluate Right against the output of Left
// (spec.md §4.2 "Invocation composition").
type Invocation struct {
	Left  Expression
	Right Expression
}

func (n Invocation) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	left, err := n.Left.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	return n.Right.Eval(ctx, left)
}

// Path implements field-navigation by name: for each input element, if it is
// a resource whose resource_type matches Name, yield it; otherwise yield all
// children whose name equals Name exactly (spec.md §4.2 "Path selection").
// Slices keep their field's name and so are selected; a choice element is
// reached only by its expanded name (`valueQuantity`), and `value` does not
// select `valueQuantity`.
type Path struct {
	Name string
}

func (n Path) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	var out model.Collection
	for _, el := range input {
		if el.IsResource() && el.ResourceType() == n.Name {
			out = append(out, el)
			continue
		}
		for _, name := range el.SubElementNames() {
			if pathMatchesField(name, n.Name) {
				out = append(out, el.SubElements(name)...)
			}
		}
	}
	return out, nil
}

// pathMatchesField reports whether a child name (e.g. "valueQuantity") is
// the field the source named. The match is exact; no choice-type expansion
// is applied.
func pathMatchesField(expandedName, requestedName string) bool {
	if expandedName == requestedName {
		return true
	}
	return false
}

// Children implements `children()`: all named children of each input element
// (spec.md §4.2 "Tree navigation").
type Children struct{}

func (Children) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	var out model.Collection
	for _, el := range input {
		for _, name := range el.SubElementNames() {
			out = append(out, el.SubElements(name)...)
		}
	}
	return out, nil
}

// Descendants implements `descendants()`: all transitive descendants,
// pre-order, excluding the inputs themselves (spec.md §4.2). FHIR resource
// trees are shallow enough in practice for ordinary recursion; spec.md §5
// permits switching to an explicit work queue only "if language limits
// require" it.
type Descendants struct{}

func (Descendants) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	var out model.Collection
	for _, el := range input {
		out = appendDescendants(out, el)
	}
	return out, nil
}

func appendDescendants(out model.Collection, el model.Element) model.Collection {
	for _, name := range el.SubElementNames() {
		for _, child := range el.SubElements(name) {
			out = append(out, child)
			out = appendDescendants(out, child)
		}
	}
	return out
}
