package expression

import "github.com/fhirtools/fhirtools/model"

// BoolOp is the three-valued boolean operator a Bool node implements
// (spec.md §4.2 "Boolean logic", §8 "Boolean truth tables").
type BoolOp int

// BoolOp values.
const (
	OpAnd BoolOp = iota
	OpOr
	OpXor
	OpImplies
)

// Bool implements `and`/`or`/`xor`/`implies` over the singleton-coerced
// operands (spec.md §4.2). `not` is a unary node; see Not below.
type Bool struct {
	Left  Expression
	Right Expression
	Op    BoolOp
}

func (n Bool) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	left, err := toTriState(ctx, n.Left, input)
	if err != nil {
		return nil, err
	}
	right, err := toTriState(ctx, n.Right, input)
	if err != nil {
		return nil, err
	}
	var result model.TriState
	switch n.Op {
	case OpAnd:
		result = left.And(right)
	case OpOr:
		result = left.Or(right)
	case OpXor:
		result = left.Xor(right)
	default: // OpImplies
		result = left.Implies(right)
	}
	return triStateResult(result), nil
}

// Not implements the unary `not()` (spec.md §4.2).
type Not struct{ Input Expression }

func (n Not) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	t, err := toTriState(ctx, n.Input, input)
	if err != nil {
		return nil, err
	}
	return triStateResult(t.Not()), nil
}

func toTriState(ctx *EvalContext, e Expression, input model.Collection) (model.TriState, error) {
	c, err := e.Eval(ctx, input)
	if err != nil {
		return model.Empty, err
	}
	switch len(c) {
	case 0:
		return model.Empty, nil
	case 1:
		b, err := c[0].AsBool()
		if err != nil {
			// Singleton-evaluation rule: a single non-boolean item is true.
			return model.True, nil
		}
		return model.FromBool(b), nil
	default:
		return model.Empty, errf("boolean", "cannot coerce a collection of %d items to boolean", len(c))
	}
}

func triStateResult(t model.TriState) model.Collection {
	b, ok := t.Bool()
	if !ok {
		return model.EmptyCollection
	}
	return boolResult(b)
}
