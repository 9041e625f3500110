package expression

import "github.com/fhirtools/fhirtools/model"

// In implements `in`: singleton in collection (spec.md §4.2 "Membership").
type In struct {
	Left  Expression
	Right Expression
}

func (n In) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	leftCol, err := n.Left.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	right, err := n.Right.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(leftCol) == 0 {
		return model.EmptyCollection, nil
	}
	left, err := leftCol.Single()
	if err != nil {
		return nil, errf("in", "%v", err)
	}
	return boolResult(right.Contains(left)), nil
}

// ContainsOp implements the binary `contains` operator: collection contains
// singleton (spec.md §4.2 "Membership").
type ContainsOp struct {
	Left  Expression
	Right Expression
}

func (n ContainsOp) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	left, err := n.Left.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	rightCol, err := n.Right.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(rightCol) == 0 {
		return model.EmptyCollection, nil
	}
	right, err := rightCol.Single()
	if err != nil {
		return nil, errf("contains", "%v", err)
	}
	return boolResult(left.Contains(right)), nil
}
