package expression

import "github.com/fhirtools/fhirtools/model"

// Mod implements `mod`: integer modulo; decimal modulo via fmod-style
// semantics; zero divisor yields empty (spec.md §4.2 "Math": "only mod is
// required in scope").
type Mod struct {
	Left  Expression
	Right Expression
}

func (n Mod) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
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
		return nil, errf("mod", "%v", err)
	}
	right, err := rightCol.Single()
	if err != nil {
		return nil, errf("mod", "%v", err)
	}

	if li, err1 := left.AsInt(); err1 == nil {
		if ri, err2 := right.AsInt(); err2 == nil {
			if ri == 0 {
				return model.EmptyCollection, nil
			}
			return model.Collection{model.NewIntegerLiteral(li % ri)}, nil
		}
	}

	ld, err1 := left.AsDecimal()
	rd, err2 := right.AsDecimal()
	if err1 != nil || err2 != nil {
		return nil, errf("mod", "operands must both be numeric")
	}
	result, err := ld.Mod(rd)
	if err != nil {
		return model.EmptyCollection, nil
	}
	return model.Collection{model.NewDecimalLiteral(result)}, nil
}
