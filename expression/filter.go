package expression

import "github.com/fhirtools/fhirtools/model"

// Where implements `where(crit)`: keep items whose crit evaluates to a
// singleton true (spec.md §4.2 "Filtering", §8 "Where-count").
type Where struct {
	Input     Expression
	Criterion Expression
}

func (n Where) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	c, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	var out model.Collection
	for _, el := range c {
		single := model.Collection{el}
		res, err := n.Criterion.Eval(ctx, single)
		if err != nil {
			return nil, err
		}
		b, err := res.Boolean()
		if err != nil {
			return nil, errf("where", "%v", err)
		}
		if b {
			out = append(out, el)
		}
	}
	return out, nil
}

// Select implements `select(proj)`: concatenate per-item projections, order
// preserved (spec.md §4.2 "Filtering").
type Select struct {
	Input      Expression
	Projection Expression
}

func (n Select) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	c, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	var out model.Collection
	for _, el := range c {
		res, err := n.Projection.Eval(ctx, model.Collection{el})
		if err != nil {
			return nil, err
		}
		out = out.Append(res)
	}
	return out, nil
}

// OfType implements `ofType(t)`: keep items whose structure definition is
// derived from the named type (spec.md §4.2 "Filtering").
type OfType struct {
	Input    Expression
	TypeName string
}

func (n OfType) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	c, err := n.Input.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	var out model.Collection
	for _, el := range c {
		if elementIsDerivedFrom(ctx, el, n.TypeName) {
			out = append(out, el)
		}
	}
	return out, nil
}

// elementIsDerivedFrom resolves the element's defining type through its
// model.ElementTypeInfo handle and asks the repository whether it derives
// from typeName (spec.md §4.2 "Type operators").
func elementIsDerivedFrom(ctx *EvalContext, el model.Element, typeName string) bool {
	info := el.TypeInfo()
	if info == nil {
		return string(el.Type()) == typeName
	}
	resolvedTarget, ok := ctx.Repo.ResolveTypeName(typeName)
	if !ok {
		resolvedTarget = typeName
	}
	if sd, ok := ctx.Repo.StructureByURL(info.ProfileURL()); ok {
		return ctx.Repo.IsDerivedFrom(sd.TypeID, typeNameFromURL(ctx, resolvedTarget))
	}
	return ctx.Repo.IsDerivedFrom(info.TypeName(), typeName)
}

func typeNameFromURL(ctx *EvalContext, urlOrName string) string {
	if sd, ok := ctx.Repo.StructureByURL(urlOrName); ok {
		return sd.TypeID
	}
	return urlOrName
}
