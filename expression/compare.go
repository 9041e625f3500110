package expression

import "github.com/fhirtools/fhirtools/model"

// Eq implements `=`/`!=`: element-wise FHIRPath equality with implicit
// promotion; empty on either side yields empty (spec.md §4.2 "Equality &
// comparison").
type Eq struct {
	Left    Expression
	Right   Expression
	Negated bool
}

func (n Eq) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	left, err := n.Left.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	right, err := n.Right.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	result := left.Equals(right)
	if n.Negated {
		result = result.Not()
	}
	b, ok := result.Bool()
	if !ok {
		return model.EmptyCollection, nil
	}
	return boolResult(b), nil
}

// CompareOp is the relational operator `<`/`<=`/`>`/`>=` implements.
type CompareOp int

// CompareOp values.
const (
	OpLess CompareOp = iota
	OpLessEq
	OpGreater
	OpGreaterEq
)

// Compare implements `<`, `>`, `<=`, `>=`: defined only for singleton
// operands of compatible (promoted) types; incompatible types raise an
// error (spec.md §4.2 "Equality & comparison").
type Compare struct {
	Left  Expression
	Right Expression
	Op    CompareOp
}

func (n Compare) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	leftCol, err := n.Left.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	rightCol, err := n.Right.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(leftCol) == 0 || len(rightCol) == 0 {
		return model.EmptyCollection, nil
	}
	left, err := leftCol.Single()
	if err != nil {
		return nil, errf("compare", "left operand: %v", err)
	}
	right, err := rightCol.Single()
	if err != nil {
		return nil, errf("compare", "right operand: %v", err)
	}
	ord, err := left.CompareTo(right)
	if err != nil {
		return nil, errf("compare", "incompatible operand types: %v", err)
	}
	switch n.Op {
	case OpLess:
		return boolResult(ord == model.Less), nil
	case OpLessEq:
		return boolResult(ord == model.Less || ord == model.Equal), nil
	case OpGreater:
		return boolResult(ord == model.Greater), nil
	default: // OpGreaterEq
		return boolResult(ord == model.Greater || ord == model.Equal), nil
	}
}
