package eval

import (
	"fmt"
	"math"

	"condcomp/internal/env"
)

// Expression AST. The grammar is the small conditional-expression subset the
// directives need: literals, identifiers, unary and binary operators, the
// ternary conditional and member/index access.
type node interface{}

type literalNode struct{ val env.Value }
type identNode struct{ name string }
type unaryNode struct {
	op      string
	operand node
}
type binaryNode struct {
	op          string
	left, right node
}
type condNode struct{ cond, then, els node }
type memberNode struct {
	obj  node
	name string
}
type indexNode struct{ obj, index node }

type parser struct {
	tokens []token
	pos    int
}

func parse(src string) (node, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	n, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tkEOF {
		return nil, &SyntaxError{Pos: tok.pos, Msg: "unexpected trailing input"}
	}
	return n, nil
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tkEOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(punct string) bool {
	if tok := p.peek(); tok.kind == tkPunct && tok.text == punct {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(punct string) error {
	if !p.accept(punct) {
		tok := p.peek()
		return &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("expected %q", punct)}
	}
	return nil
}

func (p *parser) ternary() (node, error) {
	cond, err := p.logicalOr()
	if err != nil {
		return nil, err
	}
	if !p.accept("?") {
		return cond, nil
	}
	then, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	els, err := p.ternary()
	if err != nil {
		return nil, err
	}
	return condNode{cond: cond, then: then, els: els}, nil
}

// binaryLevel parses a left-associative run of the given operators.
func (p *parser) binaryLevel(operand func() (node, error), ops ...string) (node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, op := range ops {
			if p.peek().kind == tkPunct && p.peek().text == op {
				p.next()
				right, err := operand()
				if err != nil {
					return nil, err
				}
				left = binaryNode{op: op, left: left, right: right}
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}
	}
}

func (p *parser) logicalOr() (node, error) {
	return p.binaryLevel(p.logicalAnd, "||")
}

func (p *parser) logicalAnd() (node, error) {
	return p.binaryLevel(p.equality, "&&")
}

func (p *parser) equality() (node, error) {
	return p.binaryLevel(p.relational, "===", "!==", "==", "!=")
}

func (p *parser) relational() (node, error) {
	return p.binaryLevel(p.additive, "<=", ">=", "<", ">")
}

func (p *parser) additive() (node, error) {
	return p.binaryLevel(p.multiplicative, "+", "-")
}

func (p *parser) multiplicative() (node, error) {
	return p.binaryLevel(p.unary, "*", "/", "%")
}

func (p *parser) unary() (node, error) {
	tok := p.peek()
	if tok.kind == tkPunct && (tok.text == "!" || tok.text == "-" || tok.text == "+") {
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: tok.text, operand: operand}, nil
	}
	return p.postfix()
}

func (p *parser) postfix() (node, error) {
	n, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept("."):
			tok := p.next()
			if tok.kind != tkIdent {
				return nil, &SyntaxError{Pos: tok.pos, Msg: "expected property name after '.'"}
			}
			n = memberNode{obj: n, name: tok.text}
		case p.accept("["):
			idx, err := p.ternary()
			if err != nil {
				return nil, err
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			n = indexNode{obj: n, index: idx}
		default:
			return n, nil
		}
	}
}

func (p *parser) primary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tkNumber:
		return literalNode{val: tok.num}, nil
	case tkString:
		return literalNode{val: tok.str}, nil
	case tkIdent:
		switch tok.text {
		case "true":
			return literalNode{val: true}, nil
		case "false":
			return literalNode{val: false}, nil
		case "null":
			return literalNode{val: env.Null}, nil
		case "undefined":
			return literalNode{val: env.Undefined}, nil
		case "NaN":
			return literalNode{val: math.NaN()}, nil
		case "Infinity":
			return literalNode{val: math.Inf(1)}, nil
		}
		return identNode{name: tok.text}, nil
	case tkPunct:
		if tok.text == "(" {
			n, err := p.ternary()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return n, nil
		}
	}
	return nil, &SyntaxError{Pos: tok.pos, Msg: "expected an expression"}
}
