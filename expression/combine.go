package expression

import "github.com/fhirtools/fhirtools/model"

// Union implements `union(a,b)` and the `|` binary operator: dedup,
// left-order-preserving (spec.md §4.2 "Combining", §8 "Union dedup").
type Union struct {
	Left  Expression
	Right Expression
}

func (n Union) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	left, err := n.Left.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	right, err := n.Right.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	return model.Union(left, right), nil
}

// Combine implements `combine(other)`: concatenation, no dedup
// (spec.md §4.2 "Combining").
type Combine struct {
	Input Expression
	Other Expression
}

func (n Combine) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	left, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	right, err := n.Other.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	return left.Append(right), nil
}
