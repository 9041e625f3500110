package expression

import "github.com/fhirtools/fhirtools/model"

// Null is the `{}` literal: the empty collection (spec.md §4.2).
type Null struct{}

func (Null) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	return model.EmptyCollection, nil
}

// BoolLiteral is a `true`/`false` literal node.
type BoolLiteral struct{ Value bool }

func (n BoolLiteral) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	return model.Collection{model.NewBooleanLiteral(n.Value)}, nil
}

// StringLiteral is a quoted string literal node.
type StringLiteral struct{ Value string }

func (n StringLiteral) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	return model.Collection{model.NewStringLiteral(n.Value)}, nil
}

// IntegerLiteral is an integer literal node.
type IntegerLiteral struct{ Value int64 }

func (n IntegerLiteral) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	return model.Collection{model.NewIntegerLiteral(n.Value)}, nil
}

// DecimalLiteral is a decimal literal node (recognized by the presence of
// "." in the source, spec.md §4.3).
type DecimalLiteral struct{ Value model.Decimal }

func (n DecimalLiteral) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	return model.Collection{model.NewDecimalLiteral(n.Value)}, nil
}

// DateLiteral is an `@2024-01-01`-style date literal node.
type DateLiteral struct{ Value model.Timestamp }

func (n DateLiteral) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	return model.Collection{model.NewDateLiteral(n.Value)}, nil
}

// DateTimeLiteral is an `@2024-01-01T10:00:00Z`-style literal node.
type DateTimeLiteral struct{ Value model.Timestamp }

func (n DateTimeLiteral) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	return model.Collection{model.NewDateTimeLiteral(n.Value)}, nil
}

// TimeLiteral is an `@T10:00:00`-style literal node.
type TimeLiteral struct{ Value model.Timestamp }

func (n TimeLiteral) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	return model.Collection{model.NewTimeLiteral(n.Value)}, nil
}

// QuantityLiteral is a `4 'mg'`-style literal node.
type QuantityLiteral struct{ Value model.Quantity }

func (n QuantityLiteral) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	return model.Collection{model.NewQuantityLiteral(n.Value)}, nil
}
