package expression

import "github.com/fhirtools/fhirtools/model"

// Empty implements `empty()` (spec.md §4.2 "Existence").
type Empty struct{ Input Expression }

func (n Empty) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	c, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	return boolResult(len(c) == 0), nil
}

// Exists implements `exists([crit])`, defined as `where(crit).exists()` when
// a criterion is given, or simply "not empty" otherwise (spec.md §4.2).
type Exists struct {
	Input     Expression
	Criterion Expression // may be nil
}

func (n Exists) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	c, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	if n.Criterion != nil {
		filtered, err := (Where{Input: Literal{c}, Criterion: n.Criterion}).Eval(ctx, input)
		if err != nil {
			return nil, err
		}
		return boolResult(len(filtered) > 0), nil
	}
	return boolResult(len(c) > 0), nil
}

// Literal wraps an already-evaluated collection as an Expression, used
// internally to thread pre-evaluated results through combinators like
// Exists that are defined in terms of another operator.
type Literal struct{ Value model.Collection }

func (n Literal) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	return n.Value, nil
}

// All implements `all(crit)`: true if crit is true on every element; vacuous
// truth on empty input (spec.md §4.2).
type All struct {
	Input     Expression
	Criterion Expression
}

func (n All) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	c, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	for _, el := range c {
		single := model.Collection{el}
		res, err := n.Criterion.Eval(ctx, single)
		if err != nil {
			return nil, err
		}
		b, err := res.Boolean()
		if err != nil {
			return nil, errf("all", "%v", err)
		}
		if !b {
			return boolResult(false), nil
		}
	}
	return boolResult(true), nil
}

// boolKind selects which of allTrue/anyTrue/allFalse/anyFalse a node is.
type boolKind int

const (
	AllTrueKind boolKind = iota
	AnyTrueKind
	AllFalseKind
	AnyFalseKind
)

// BooleanAggregate implements `allTrue`/`anyTrue`/`allFalse`/`anyFalse`
// (spec.md §4.2).
type BooleanAggregate struct {
	Input Expression
	Kind  boolKind
}

func (n BooleanAggregate) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	c, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	switch n.Kind {
	case AllTrueKind:
		for _, el := range c {
			b, err := el.AsBool()
			if err != nil || !b {
				return boolResult(false), nil
			}
		}
		return boolResult(true), nil
	case AnyTrueKind:
		for _, el := range c {
			if b, err := el.AsBool(); err == nil && b {
				return boolResult(true), nil
			}
		}
		return boolResult(false), nil
	case AllFalseKind:
		for _, el := range c {
			b, err := el.AsBool()
			if err != nil || b {
				return boolResult(false), nil
			}
		}
		return boolResult(true), nil
	default: // AnyFalseKind
		for _, el := range c {
			if b, err := el.AsBool(); err == nil && !b {
				return boolResult(true), nil
			}
		}
		return boolResult(false), nil
	}
}

// Count implements `count()` (spec.md §4.2).
type Count struct{ Input Expression }

func (n Count) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	c, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	return model.Collection{model.NewIntegerLiteral(int64(len(c)))}, nil
}

// Distinct implements `distinct()` (spec.md §4.2, §8 "Distinct idempotence").
type Distinct struct{ Input Expression }

func (n Distinct) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	c, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	return c.Distinct(), nil
}

// IsDistinct implements `isDistinct()` (spec.md §4.2).
type IsDistinct struct{ Input Expression }

func (n IsDistinct) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	c, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	return boolResult(len(c.Distinct()) == len(c)), nil
}

func boolResult(b bool) model.Collection {
	return model.Collection{model.NewBooleanLiteral(b)}
}
