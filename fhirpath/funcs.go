package fhirpath

import "github.com/fhirtools/fhirtools/expression"

// parseFunctionCall parses `name(arg, arg, ...)` at the cursor and dispatches
// to the matching expression.* constructor. The implicit receiver of every
// function is `$this` (spec.md §4.2): when the call follows `.`, the
// enclosing Invocation node supplies the left-hand output as the input to
// This{}'s Eval, so every function-backed node's "Input" field is always
// built as expression.This{} here, never the preceding expression directly.
func (p *parser) parseFunctionCall(_ expression.Expression) (expression.Expression, error) {
	name := p.advance().Text
	if err := p.expectOp("("); err != nil {
		return nil, err
	}
	var args []expression.Expression
	if !(p.cur().Kind == TokOp && p.cur().Text == ")") {
		for {
			arg, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur().Kind == TokOp && p.cur().Text == "," {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return buildFunctionCall(name, args)
}

var recv expression.Expression = expression.This{}

func buildFunctionCall(name string, args []expression.Expression) (expression.Expression, error) {
	def, ok := funcRegistry[name]
	if !ok {
		return nil, &ParseError{Msg: "unknown function " + name + "()"}
	}
	if len(args) < def.MinArgs || (def.MaxArgs >= 0 && len(args) > def.MaxArgs) {
		return nil, &ParseError{Msg: "wrong number of arguments to " + name + "()"}
	}
	return def.Build(args)
}

// FuncDef describes one callable FHIRPath function: its arity bounds and how
// to build its expression tree node from already-parsed argument
// expressions. Grounded on the FuncDef{Name, MinArgs, MaxArgs, Fn} registry
// idiom in other_examples' non-ANTLR FHIRPath function dispatch (see
// DESIGN.md "Dropped teacher dependencies").
type FuncDef struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 means unbounded
	Build   func(args []expression.Expression) (expression.Expression, error)
}

func arg(args []expression.Expression, i int) expression.Expression {
	if i < len(args) {
		return args[i]
	}
	return nil
}

var funcRegistry map[string]FuncDef

func init() {
	defs := []FuncDef{
		{"empty", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Empty{Input: recv}, nil
		}},
		{"exists", 0, 1, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Exists{Input: recv, Criterion: arg(a, 0)}, nil
		}},
		{"all", 1, 1, func(a []expression.Expression) (expression.Expression, error) {
			return expression.All{Input: recv, Criterion: a[0]}, nil
		}},
		{"allTrue", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.BooleanAggregate{Input: recv, Kind: expression.AllTrueKind}, nil
		}},
		{"anyTrue", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.BooleanAggregate{Input: recv, Kind: expression.AnyTrueKind}, nil
		}},
		{"allFalse", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.BooleanAggregate{Input: recv, Kind: expression.AllFalseKind}, nil
		}},
		{"anyFalse", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.BooleanAggregate{Input: recv, Kind: expression.AnyFalseKind}, nil
		}},
		{"count", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Count{Input: recv}, nil
		}},
		{"distinct", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Distinct{Input: recv}, nil
		}},
		{"isDistinct", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.IsDistinct{Input: recv}, nil
		}},
		{"where", 1, 1, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Where{Input: recv, Criterion: a[0]}, nil
		}},
		{"select", 1, 1, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Select{Input: recv, Projection: a[0]}, nil
		}},
		{"ofType", 1, 1, func(a []expression.Expression) (expression.Expression, error) {
			name, ok := typeNameOf(a[0])
			if !ok {
				return nil, &ParseError{Msg: "ofType() requires a type name argument"}
			}
			return expression.OfType{Input: recv, TypeName: name}, nil
		}},
		{"first", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.First{Input: recv}, nil
		}},
		{"tail", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Tail{Input: recv}, nil
		}},
		{"intersect", 1, 1, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Intersect{Input: recv, Other: a[0]}, nil
		}},
		{"union", 1, 1, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Union{Left: recv, Right: a[0]}, nil
		}},
		{"combine", 1, 1, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Combine{Input: recv, Other: a[0]}, nil
		}},
		{"iif", 2, 3, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Iif{Cond: a[0], Then: a[1], Else: arg(a, 2)}, nil
		}},
		{"toInteger", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.ToInteger{Input: recv}, nil
		}},
		{"toString", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.ToString{Input: recv}, nil
		}},
		{"indexOf", 1, 1, func(a []expression.Expression) (expression.Expression, error) {
			return expression.IndexOf{Input: recv, Sub: a[0]}, nil
		}},
		{"substring", 1, 2, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Substring{Input: recv, Start: a[0], Length: arg(a, 1)}, nil
		}},
		{"startsWith", 1, 1, func(a []expression.Expression) (expression.Expression, error) {
			return expression.StartsWith{Input: recv, Prefix: a[0]}, nil
		}},
		{"contains", 1, 1, func(a []expression.Expression) (expression.Expression, error) {
			return expression.ContainsStr{Input: recv, Sub: a[0]}, nil
		}},
		{"matches", 1, 1, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Matches{Input: recv, Regex: a[0]}, nil
		}},
		{"replaceMatches", 2, 2, func(a []expression.Expression) (expression.Expression, error) {
			return expression.ReplaceMatches{Input: recv, Regex: a[0], Replacement: a[1]}, nil
		}},
		{"length", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Length{Input: recv}, nil
		}},
		{"not", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Not{Input: recv}, nil
		}},
		{"extension", 1, 1, func(a []expression.Expression) (expression.Expression, error) {
			url, ok := stringLiteralValue(a[0])
			if !ok {
				return nil, &ParseError{Msg: "extension() requires a string literal URL argument"}
			}
			return expression.ExtensionFn{Input: recv, URL: url}, nil
		}},
		{"hasValue", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.HasValue{Input: recv}, nil
		}},
		{"getValue", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.GetValue{Input: recv}, nil
		}},
		{"conformsTo", 1, 1, func(a []expression.Expression) (expression.Expression, error) {
			url, ok := stringLiteralValue(a[0])
			if !ok {
				return nil, &ParseError{Msg: "conformsTo() requires a string literal profile URL argument"}
			}
			return expression.ConformsTo{Input: recv, ProfileURL: url}, nil
		}},
		{"htmlChecks", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.HTMLChecks{Input: recv}, nil
		}},
		{"resolve", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Resolve{Input: recv}, nil
		}},
		{"children", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Children{}, nil
		}},
		{"descendants", 0, 0, func(a []expression.Expression) (expression.Expression, error) {
			return expression.Descendants{}, nil
		}},
		{"trace", 1, 2, func(a []expression.Expression) (expression.Expression, error) {
			return recv, nil
		}},
	}
	funcRegistry = make(map[string]FuncDef, len(defs))
	for _, d := range defs {
		funcRegistry[d.Name] = d
	}
}

// stringLiteralValue extracts the literal string value from an argument
// expression that must be a plain string literal (spec.md §4.2: extension()
// and conformsTo() take a literal URL, not a computed path).
func stringLiteralValue(e expression.Expression) (string, bool) {
	if s, ok := e.(expression.StringLiteral); ok {
		return s.Value, true
	}
	return "", false
}
