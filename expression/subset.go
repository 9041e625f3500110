package expression

import "github.com/fhirtools/fhirtools/model"

// Indexer implements `c[n]`: empty if out of bounds (spec.md §4.2 "Subsetting").
type Indexer struct {
	Input Expression
	Index Expression
}

func (n Indexer) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	c, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	idxCol, err := n.Index.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	idxEl, err := idxCol.Single()
	if err != nil {
		return nil, errf("indexer", "%v", err)
	}
	i, err := idxEl.AsInt()
	if err != nil {
		return nil, errf("indexer", "%v", err)
	}
	if i < 0 || int(i) >= len(c) {
		return model.EmptyCollection, nil
	}
	return model.Collection{c[i]}, nil
}

// First implements `first()`.
type First struct{ Input Expression }

func (n First) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	c, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(c) == 0 {
		return model.EmptyCollection, nil
	}
	return model.Collection{c[0]}, nil
}

// Tail implements `tail()`: every element except the first.
type Tail struct{ Input Expression }

func (n Tail) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	c, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(c) <= 1 {
		return model.EmptyCollection, nil
	}
	return c[1:], nil
}

// Intersect implements `intersect(other)`: preserves left-order, deduplicates
// (spec.md §4.2 "Subsetting").
type Intersect struct {
	Input Expression
	Other Expression
}

func (n Intersect) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	left, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	right, err := n.Other.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	var out model.Collection
	for _, el := range left.Distinct() {
		if right.Contains(el) {
			out = append(out, el)
		}
	}
	return out, nil
}
