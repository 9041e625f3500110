package fhirpath

import (
	"fmt"
	"strings"

	"github.com/fhirtools/fhirtools/expression"
)

// ParseError is raised by the compiler for malformed FHIRPath source,
// carrying the source text and a best-effort position (spec.md §7 "Parse
// errors").
type ParseError struct {
	Source string
	Pos    int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("fhirpath parse error at %d: %s", e.Pos, e.Msg)
}

// parser drives the recursive-descent/Pratt grammar (spec.md §4.3).
type parser struct {
	src  string
	toks []lexToken
	pos  int
}

func newParser(src string) (*parser, error) {
	lex := NewLexer(src)
	var toks []lexToken
	for {
		t, err := lex.Next()
		if err != nil {
			return nil, &ParseError{Source: src, Pos: 0, Msg: err.Error()}
		}
		toks = append(toks, t)
		if t.Kind == TokEOF {
			break
		}
	}
	return &parser{src: src, toks: toks}, nil
}

// Parse compiles src into an expression tree (spec.md §4.3).
func Parse(src string) (expression.Expression, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != TokEOF {
		return nil, p.errorf("unexpected trailing input %q", p.cur().Text)
	}
	return expr, nil
}

func (p *parser) cur() lexToken  { return p.toks[p.pos] }
func (p *parser) advance() lexToken {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Source: p.src, Pos: p.cur().Pos, Msg: fmt.Sprintf(format, args...)}
}

// binding powers, lowest to highest (spec.md §4.3: "Binary-operator
// productions dispatch on the operator literal").
const (
	bpNone = iota
	bpImplies
	bpOrXor
	bpAnd
	bpUnion
	bpMembership // in, contains
	bpIsAs
	bpEquality
	bpRelational
	bpConcat // &
	bpAdditive
	bpMultiplicative
)

var binaryBP = map[string]int{
	"implies": bpImplies,
	"or": bpOrXor, "xor": bpOrXor,
	"and":      bpAnd,
	"|":        bpUnion,
	"in":       bpMembership,
	"contains": bpMembership,
	"is":       bpIsAs,
	"as":       bpIsAs,
	"=":        bpEquality, "!=": bpEquality, "~": bpEquality, "!~": bpEquality,
	"<": bpRelational, "<=": bpRelational, ">": bpRelational, ">=": bpRelational,
	"&": bpConcat,
	"+": bpAdditive, "-": bpAdditive,
	"*": bpMultiplicative, "/": bpMultiplicative, "div": bpMultiplicative, "mod": bpMultiplicative,
}

// parseExpression implements Pratt-style precedence climbing over the
// binary operator table, with invocation (`.`) and indexer (`[`) bound
// tighter than any binary operator (handled inside parseUnary/parsePostfix).
func (p *parser) parseExpression(minBP int) (expression.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		opText, ok := p.peekBinaryOp()
		if !ok {
			break
		}
		bp, known := binaryBP[opText]
		if !known || bp < minBP {
			break
		}
		p.advance()
		right, err := p.parseExpression(bp + 1)
		if err != nil {
			return nil, err
		}
		left, err = buildBinary(opText, left, right)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// peekBinaryOp reports the textual operator at the cursor, if any (operators
// are either TokOp punctuation or a reserved TokIdent like "and"/"is").
func (p *parser) peekBinaryOp() (string, bool) {
	t := p.cur()
	if t.Kind == TokOp {
		if _, ok := binaryBP[t.Text]; ok {
			return t.Text, true
		}
		return "", false
	}
	if t.Kind == TokIdent {
		lower := strings.ToLower(t.Text)
		if _, ok := binaryBP[lower]; ok {
			return lower, true
		}
	}
	return "", false
}

func buildBinary(op string, left, right expression.Expression) (expression.Expression, error) {
	switch op {
	case "implies":
		return expression.Bool{Left: left, Right: right, Op: expression.OpImplies}, nil
	case "or":
		return expression.Bool{Left: left, Right: right, Op: expression.OpOr}, nil
	case "xor":
		return expression.Bool{Left: left, Right: right, Op: expression.OpXor}, nil
	case "and":
		return expression.Bool{Left: left, Right: right, Op: expression.OpAnd}, nil
	case "|":
		return expression.Union{Left: left, Right: right}, nil
	case "in":
		return expression.In{Left: left, Right: right}, nil
	case "contains":
		return expression.ContainsOp{Left: left, Right: right}, nil
	case "is":
		return buildIsAs(left, right, true)
	case "as":
		return buildIsAs(left, right, false)
	case "=":
		return expression.Eq{Left: left, Right: right}, nil
	case "!=":
		return expression.Eq{Left: left, Right: right, Negated: true}, nil
	case "~", "!~":
		return nil, &ParseError{Msg: "equivalence operators (~, !~) are not implemented"}
	case "<":
		return expression.Compare{Left: left, Right: right, Op: expression.OpLess}, nil
	case "<=":
		return expression.Compare{Left: left, Right: right, Op: expression.OpLessEq}, nil
	case ">":
		return expression.Compare{Left: left, Right: right, Op: expression.OpGreater}, nil
	case ">=":
		return expression.Compare{Left: left, Right: right, Op: expression.OpGreaterEq}, nil
	case "&":
		return expression.Concat{Left: left, Right: right}, nil
	case "+":
		return expression.Plus{Left: left, Right: right}, nil
	case "-", "*", "/", "div":
		return nil, &ParseError{Msg: "operator '" + op + "' is not implemented (only + and mod are in scope)"}
	case "mod":
		return expression.Mod{Left: left, Right: right}, nil
	default:
		return nil, &ParseError{Msg: "unknown operator " + op}
	}
}

// buildIsAs extracts the literal type name from the right-hand identifier
// expression of an is/as production.
func buildIsAs(left, right expression.Expression, isOp bool) (expression.Expression, error) {
	name, ok := typeNameOf(right)
	if !ok {
		return nil, &ParseError{Msg: "is/as requires a type name operand"}
	}
	if isOp {
		return expression.Is{Input: left, TypeName: name}, nil
	}
	return expression.As{Input: left, TypeName: name}, nil
}

func typeNameOf(e expression.Expression) (string, bool) {
	switch v := e.(type) {
	case identPath:
		return v.dotted, true
	default:
		return "", false
	}
}

// identPath marks an as-yet-uninterpreted dotted identifier chain so
// is/as/ofType can recover the literal type name instead of treating it as
// a path navigation; parsePrimary builds the Path expression behind it and
// wraps it in identPath so both uses are available.
type identPath struct {
	expression.Expression
	dotted string
}
