package fhirpath

import (
	"strings"

	"github.com/fhirtools/fhirtools/expression"
	"github.com/fhirtools/fhirtools/model"
)

// parseUnary handles the unary +/- productions ahead of postfix/primary
// parsing. Only unary minus on a numeric literal is in scope; unary plus is
// a no-op per FHIRPath N1 (spec.md §9 leaves general arithmetic out of
// scope, but literal sign is needed to express negative number literals).
func (p *parser) parseUnary() (expression.Expression, error) {
	if p.cur().Kind == TokOp && p.cur().Text == "-" {
		p.advance()
		if p.cur().Kind != TokNumber {
			return nil, p.errorf("unary '-' is only supported directly before a numeric literal")
		}
		return p.parseNegatedNumber()
	}
	if p.cur().Kind == TokOp && p.cur().Text == "+" {
		p.advance()
	}
	return p.parsePostfix()
}

func (p *parser) parseNegatedNumber() (expression.Expression, error) {
	t := p.advance()
	if strings.Contains(t.Text, ".") {
		d, err := model.ParseDecimal("-" + t.Text)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		return p.parsePostfixFrom(expression.DecimalLiteral{Value: d})
	}
	n, err := parseIntLiteral(t.Text)
	if err != nil {
		return nil, p.errorf("%v", err)
	}
	return p.parsePostfixFrom(expression.IntegerLiteral{Value: -n})
}

// parsePostfix parses a primary expression followed by zero or more
// invocation (`.name`, `.func(...)`) or indexer (`[n]`) suffixes
// (spec.md §4.2 "Invocation composition", "Subsetting").
func (p *parser) parsePostfix() (expression.Expression, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parsePostfixFrom(left)
}

func (p *parser) parsePostfixFrom(left expression.Expression) (expression.Expression, error) {
	for {
		switch {
		case p.cur().Kind == TokOp && p.cur().Text == ".":
			p.advance()
			right, dotted, err := p.parseInvocationTarget()
			if err != nil {
				return nil, err
			}
			combinedDotted := ""
			if ip, ok := left.(identPath); ok {
				combinedDotted = ip.dotted + "." + dotted
			}
			inv := expression.Invocation{Left: left, Right: right}
			if combinedDotted != "" {
				left = identPath{Expression: inv, dotted: combinedDotted}
			} else {
				left = inv
			}
		case p.cur().Kind == TokOp && p.cur().Text == "[":
			p.advance()
			idx, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			if err := p.expectOp("]"); err != nil {
				return nil, err
			}
			left = expression.Indexer{Input: left, Index: idx}
		default:
			return left, nil
		}
	}
}

// parseInvocationTarget parses the right-hand side of `.`: either a function
// call or a bare field name, returning the built node plus (for a bare
// field name) the literal name for is/as/ofType type-name recovery.
func (p *parser) parseInvocationTarget() (expression.Expression, string, error) {
	if p.cur().Kind != TokIdent && p.cur().Kind != TokDelimitedIdent {
		return nil, "", p.errorf("expected identifier or function call after '.'")
	}
	name := p.cur().Text
	if p.cur().Kind == TokIdent && p.peekNextIsCall() {
		call, err := p.parseFunctionCall(nil)
		return call, "", err
	}
	p.advance()
	return expression.Path{Name: name}, name, nil
}

func (p *parser) peekNextIsCall() bool {
	idx := p.pos + 1
	if idx > len(p.toks)-1 {
		idx = len(p.toks) - 1
	}
	next := p.toks[idx]
	return next.Kind == TokOp && next.Text == "("
}

func (p *parser) expectOp(text string) error {
	if p.cur().Kind != TokOp || p.cur().Text != text {
		return p.errorf("expected %q, got %q", text, p.cur().Text)
	}
	p.advance()
	return nil
}

// parsePrimary parses a literal, parenthesized expression, `$this`,
// `%external`, or a bare identifier chain / leading function call
// (spec.md §4.3 "Literal productions").
func (p *parser) parsePrimary() (expression.Expression, error) {
	t := p.cur()
	switch t.Kind {
	case TokString:
		p.advance()
		return expression.StringLiteral{Value: t.Text}, nil
	case TokNumber:
		p.advance()
		if strings.Contains(t.Text, ".") {
			d, err := model.ParseDecimal(t.Text)
			if err != nil {
				return nil, p.errorf("%v", err)
			}
			return expression.DecimalLiteral{Value: d}, nil
		}
		n, err := parseIntLiteral(t.Text)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		if q, ok := p.tryParseQuantityUnit(n, t.Text); ok {
			return q, nil
		}
		return expression.IntegerLiteral{Value: n}, nil
	case TokDate:
		p.advance()
		ts, err := model.ParseTimestamp(t.Text)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		return expression.DateLiteral{Value: ts}, nil
	case TokDateTime:
		p.advance()
		ts, err := model.ParseTimestamp(t.Text)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		return expression.DateTimeLiteral{Value: ts}, nil
	case TokTime:
		p.advance()
		ts, err := model.ParseTime(strings.TrimPrefix(t.Text, "T"))
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		return expression.TimeLiteral{Value: ts}, nil
	case TokExternal:
		p.advance()
		return buildExternal(t.Text), nil
	case TokDelimitedIdent:
		p.advance()
		return identPath{Expression: expression.Path{Name: t.Text}, dotted: t.Text}, nil
	case TokIdent:
		return p.parseIdentPrimary(t)
	case TokOp:
		if t.Text == "(" {
			p.advance()
			inner, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return inner, nil
		}
		if t.Text == "{" {
			p.advance()
			if err := p.expectOp("}"); err != nil {
				return nil, err
			}
			return expression.Null{}, nil
		}
		return nil, p.errorf("unexpected token %q", t.Text)
	default:
		return nil, p.errorf("unexpected end of input")
	}
}

func (p *parser) parseIdentPrimary(t lexToken) (expression.Expression, error) {
	switch strings.ToLower(t.Text) {
	case "true":
		p.advance()
		return expression.BoolLiteral{Value: true}, nil
	case "false":
		p.advance()
		return expression.BoolLiteral{Value: false}, nil
	}
	if t.Text == "$this" {
		p.advance()
		return expression.This{}, nil
	}
	if p.peekNextIsCall() {
		return p.parseFunctionCall(nil)
	}
	p.advance()
	return identPath{Expression: expression.Path{Name: t.Text}, dotted: t.Text}, nil
}

func buildExternal(name string) expression.Expression {
	switch name {
	case "context":
		return expression.Context{}
	case "resource":
		return expression.ResourceContext{}
	case "rootResource":
		return expression.RootResourceContext{}
	case "ucum":
		return expression.Ucum{}
	default:
		return expression.ExternalConstant{Name: name}
	}
}

func parseIntLiteral(s string) (int64, error) {
	var n int64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, &ParseError{Msg: "invalid integer literal " + s}
		}
		n = n*10 + int64(c-'0')
	}
	return n, nil
}

// tryParseQuantityUnit recognizes an integer literal immediately followed by
// a quoted unit string as a Quantity literal (spec.md §4.2 "Literal nodes":
// "quantity (from a value-and-unit string literal)"). Decimal values and bare
// unit identifiers such as `4 days` are not recognized as quantities.
func (p *parser) tryParseQuantityUnit(n int64, numText string) (expression.Expression, bool) {
	if p.cur().Kind == TokString {
		unit := p.cur().Text
		p.advance()
		return expression.QuantityLiteral{Value: model.Quantity{Value: model.DecimalFromInt(n), Unit: unit}}, true
	}
	return nil, false
}
