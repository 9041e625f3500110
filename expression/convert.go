package expression

import (
	"strconv"

	"github.com/fhirtools/fhirtools/model"
)

// Iif implements `iif(cond, t, f?)`, evaluating the selected branch lazily
// (spec.md §4.2 "Conversions", "Evaluation rules").
type Iif struct {
	Cond     Expression
	Then     Expression
	Else     Expression // may be nil
}

func (n Iif) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	t, err := toTriState(ctx, n.Cond, input)
	if err != nil {
		return nil, err
	}
	switch t {
	case model.True:
		return n.Then.Eval(ctx, input)
	case model.False, model.Empty:
		if n.Else == nil {
			return model.EmptyCollection, nil
		}
		return n.Else.Eval(ctx, input)
	}
	return model.EmptyCollection, nil
}

// ToInteger implements `toInteger()` (spec.md §4.2 "Conversions").
type ToInteger struct{ Input Expression }

func (n ToInteger) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	c, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	el, err := c.SingleOrEmpty()
	if err != nil || el == nil {
		return model.EmptyCollection, nil
	}
	if i, convErr := el.AsInt(); convErr == nil {
		return model.Collection{model.NewIntegerLiteral(i)}, nil
	}
	s, convErr := el.AsString()
	if convErr != nil {
		return model.EmptyCollection, nil
	}
	i, parseErr := strconv.ParseInt(s, 10, 64)
	if parseErr != nil {
		return model.EmptyCollection, nil
	}
	return model.Collection{model.NewIntegerLiteral(i)}, nil
}

// ToString implements `toString()`: string for integer/decimal/bool; empty
// for non-convertible structured input (spec.md §4.2 "Conversions").
type ToString struct{ Input Expression }

func (n ToString) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	c, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	el, err := c.SingleOrEmpty()
	if err != nil || el == nil {
		return model.EmptyCollection, nil
	}
	s, convErr := el.AsString()
	if convErr != nil {
		return model.EmptyCollection, nil
	}
	return model.Collection{model.NewStringLiteral(s)}, nil
}
