package expression

import (
	"regexp"
	"strings"

	"github.com/fhirtools/fhirtools/model"
)

func singleString(ctx *EvalContext, e Expression, input model.Collection) (string, bool, error) {
	c, err := e.Eval(ctx, input)
	if err != nil {
		return "", false, err
	}
	el, err := c.SingleOrEmpty()
	if err != nil {
		return "", false, errf("string", "%v", err)
	}
	if el == nil {
		return "", false, nil
	}
	s, err := el.AsString()
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

// IndexOf implements `indexOf(sub)`: −1 if not found, empty if either operand
// is empty (spec.md §4.2 "String manipulation").
type IndexOf struct {
	Input Expression
	Sub   Expression
}

func (n IndexOf) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	s, ok, err := singleString(ctx, n.Input, input)
	if err != nil || !ok {
		return model.EmptyCollection, err
	}
	sub, ok, err := singleString(ctx, n.Sub, input)
	if err != nil || !ok {
		return model.EmptyCollection, err
	}
	return model.Collection{model.NewIntegerLiteral(int64(strings.Index(s, sub)))}, nil
}

// Substring implements `substring(start[, len])`: empty if start out of
// range (spec.md §4.2).
type Substring struct {
	Input  Expression
	Start  Expression
	Length Expression // may be nil
}

func (n Substring) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	s, ok, err := singleString(ctx, n.Input, input)
	if err != nil || !ok {
		return model.EmptyCollection, err
	}
	startCol, err := n.Start.Eval(ctx, input)
	if err != nil {
		return nil, err
	}
	startEl, err := startCol.Single()
	if err != nil {
		return nil, errf("substring", "%v", err)
	}
	start, err := startEl.AsInt()
	if err != nil {
		return nil, err
	}
	if start < 0 || int(start) >= len(s) {
		return model.EmptyCollection, nil
	}
	end := len(s)
	if n.Length != nil {
		lenCol, err := n.Length.Eval(ctx, input)
		if err != nil {
			return nil, err
		}
		if lenEl, err := lenCol.SingleOrEmpty(); err == nil && lenEl != nil {
			l, err := lenEl.AsInt()
			if err != nil {
				return nil, err
			}
			if int(start)+int(l) < end {
				end = int(start) + int(l)
			}
		}
	}
	return model.Collection{model.NewStringLiteral(s[start:end])}, nil
}

// StartsWith implements `startsWith(prefix)`.
type StartsWith struct {
	Input  Expression
	Prefix Expression
}

func (n StartsWith) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	s, ok, err := singleString(ctx, n.Input, input)
	if err != nil || !ok {
		return model.EmptyCollection, err
	}
	prefix, ok, err := singleString(ctx, n.Prefix, input)
	if err != nil || !ok {
		return model.EmptyCollection, err
	}
	return boolResult(strings.HasPrefix(s, prefix)), nil
}

// ContainsStr implements the `contains(sub)` string function (distinct from
// the binary `contains` operator in membership.go).
type ContainsStr struct {
	Input Expression
	Sub   Expression
}

func (n ContainsStr) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	s, ok, err := singleString(ctx, n.Input, input)
	if err != nil || !ok {
		return model.EmptyCollection, err
	}
	sub, ok, err := singleString(ctx, n.Sub, input)
	if err != nil || !ok {
		return model.EmptyCollection, err
	}
	return boolResult(strings.Contains(s, sub)), nil
}

// Matches implements `matches(regex)` using POSIX extended syntax
// (spec.md §4.2).
type Matches struct {
	Input Expression
	Regex Expression
}

func (n Matches) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	s, ok, err := singleString(ctx, n.Input, input)
	if err != nil || !ok {
		return model.EmptyCollection, err
	}
	pattern, ok, err := singleString(ctx, n.Regex, input)
	if err != nil || !ok {
		return model.EmptyCollection, err
	}
	re, err := regexp.CompilePOSIX(pattern)
	if err != nil {
		return nil, errf("matches", "invalid regex %q: %v", pattern, err)
	}
	return boolResult(re.MatchString(s)), nil
}

// ReplaceMatches implements `replaceMatches(regex, repl)` (spec.md §4.2).
type ReplaceMatches struct {
	Input       Expression
	Regex       Expression
	Replacement Expression
}

func (n ReplaceMatches) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	s, ok, err := singleString(ctx, n.Input, input)
	if err != nil || !ok {
		return model.EmptyCollection, err
	}
	pattern, ok, err := singleString(ctx, n.Regex, input)
	if err != nil || !ok {
		return model.EmptyCollection, err
	}
	repl, ok, err := singleString(ctx, n.Replacement, input)
	if err != nil || !ok {
		return model.EmptyCollection, err
	}
	re, err := regexp.CompilePOSIX(pattern)
	if err != nil {
		return nil, errf("replaceMatches", "invalid regex %q: %v", pattern, err)
	}
	return model.Collection{model.NewStringLiteral(re.ReplaceAllString(s, repl))}, nil
}

// Length implements `length()`.
type Length struct{ Input Expression }

func (n Length) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	s, ok, err := singleString(ctx, n.Input, input)
	if err != nil || !ok {
		return model.EmptyCollection, err
	}
	return model.Collection{model.NewIntegerLiteral(int64(len(s)))}, nil
}

// Concat implements the `&` string-concatenation operator, treating empty
// operands as the empty string (spec.md §4.2).
type Concat struct {
	Left  Expression
	Right Expression
}

func (n Concat) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
	left, _, err := singleString(ctx, n.Left, input)
	if err != nil {
		return nil, err
	}
	right, _, err := singleString(ctx, n.Right, input)
	if err != nil {
		return nil, err
	}
	return model.Collection{model.NewStringLiteral(left + right)}, nil
}

// Plus implements the `+` operator: integer addition or string concatenation
// only (spec.md §4.2 "String manipulation").
type Plus struct {
	Left  Expression
	Right Expression
}

func (n Plus) Eval(ctx *EvalContext, input model.Collection) (model.Collection, error) {
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
		return nil, errf("+", "%v", err)
	}
	right, err := rightCol.Single()
	if err != nil {
		return nil, errf("+", "%v", err)
	}
	if li, err1 := left.AsInt(); err1 == nil {
		if ri, err2 := right.AsInt(); err2 == nil {
			return model.Collection{model.NewIntegerLiteral(li + ri)}, nil
		}
	}
	ls, err1 := left.AsString()
	rs, err2 := right.AsString()
	if err1 != nil || err2 != nil {
		return nil, errf("+", "operands must both be integers or both be strings")
	}
	return model.Collection{model.NewStringLiteral(ls + rs)}, nil
}
