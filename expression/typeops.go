package expression

import "github.com/fhirtools/fhirtools/model"

// Is implements `is(type)`: true if the input's single element's definition
// is derived from the named type (spec.md §4.2 "Type operators").
type Is struct {
	Input    Expression
	TypeName string
}

func (n Is) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	c, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(c) == 0 {
		return model.EmptyCollection, nil
	}
	el, err := c.Single()
	if err != nil {
		return nil, errf("is", "%v", err)
	}
	return boolResult(elementIsDerivedFrom(ctx, el, n.TypeName)), nil
}

// As implements `as(type)`: returns the input if derived, else empty
// (spec.md §4.2 "Type operators").
type As struct {
	Input    Expression
	TypeName string
}

func (n As) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	c, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(c) == 0 {
		return model.EmptyCollection, nil
	}
	el, err := c.Single()
	if err != nil {
		return nil, errf("as", "%v", err)
	}
	if elementIsDerivedFrom(ctx, el, n.TypeName) {
		return model.Collection{el}, nil
	}
	return model.EmptyCollection, nil
}
