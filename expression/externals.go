package expression

import "github.com/fhirtools/fhirtools/model"

// ucumURL is the literal value `%ucum` resolves to (spec.md §4.2).
const ucumURL = "http://unitsofmeasure.org"

// Context implements `%context`: walks parents from the input's single
// element upward until one marked as the context root (or the tree root) is
// found, returning that element (spec.md §4.2).
type Context struct{}

func (Context) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	el, err := input.SingleOrEmpty()
	if err != nil {
		return nil, errf("%context", "%v", err)
	}
	if el == nil {
		if ctx.ContextRoot != nil {
			return model.Collection{ctx.ContextRoot}, nil
		}
		return model.EmptyCollection, nil
	}
	cur := el
	for cur.Parent() != nil && cur != ctx.ContextRoot {
		cur = cur.Parent()
	}
	return model.Collection{cur}, nil
}

// ResourceContext implements `%resource`: walks from the context element
// upward to the nearest resource (spec.md §4.2).
type ResourceContext struct{}

func (ResourceContext) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	el, err := input.SingleOrEmpty()
	if err != nil {
		return nil, errf("%resource", "%v", err)
	}
	if el == nil {
		el = ctx.ContextRoot
	}
	for cur := el; cur != nil; cur = cur.Parent() {
		if cur.IsResource() {
			return model.Collection{cur}, nil
		}
	}
	return model.EmptyCollection, nil
}

// RootResourceContext implements `%rootResource`: like %resource but
// continues to the outermost container resource (spec.md §4.2).
type RootResourceContext struct{}

func (RootResourceContext) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	el, err := input.SingleOrEmpty()
	if err != nil {
		return nil, errf("%rootResource", "%v", err)
	}
	if el == nil {
		el = ctx.ContextRoot
	}
	var last model.Element
	for cur := el; cur != nil; cur = cur.Parent() {
		if cur.IsResource() {
			last = cur
			if cur.IsContainerResource() {
				return model.Collection{cur}, nil
			}
		}
	}
	if last != nil {
		return model.Collection{last}, nil
	}
	return model.EmptyCollection, nil
}

// Ucum implements `%ucum`: the literal UCUM URL (spec.md §4.2).
type Ucum struct{}

func (Ucum) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	return model.Collection{model.NewStringLiteral(ucumURL)}, nil
}

// ExternalConstant implements a host-registered `%name` constant
// (spec.md §4.3 "External-constant productions").
type ExternalConstant struct{ Name string }

func (n ExternalConstant) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	v, ok := ctx.Vars[n.Name]
	if !ok {
		return nil, errf("external constant", "unknown external constant %%%s", n.Name)
	}
	return v, nil
}
