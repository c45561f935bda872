package calculator

import (
	"errors"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
)

// MaxExpressionLength bounds the size of an expression accepted by Evaluate
const MaxExpressionLength = 256

const allowedChars = "0123456789+-*/(). "

var (
	// ErrUnsafeExpression is returned when an expression holds characters outside the arithmetic set
	ErrUnsafeExpression = errors.New("unsafe expression")
	// ErrInvalidExpression is returned for malformed arithmetic
	ErrInvalidExpression = errors.New("invalid expression")
	// ErrDivisionByZero is returned when a divisor evaluates to zero
	ErrDivisionByZero = errors.New("division by zero")
)

// Calculator evaluates plain arithmetic over + - * / and parentheses
type Calculator struct{}

var _ interfaces.Calculator = &Calculator{}

func New() *Calculator {
	return &Calculator{}
}

// Evaluate parses and computes expr with the usual precedence rules
func (c *Calculator) Evaluate(expr string) (float64, error) {
	if len(expr) > MaxExpressionLength {
		return 0, goerr.Wrap(ErrUnsafeExpression, "expression too long", goerr.V("length", len(expr)))
	}
	for _, r := range expr {
		if !strings.ContainsRune(allowedChars, r) {
			return 0, goerr.Wrap(ErrUnsafeExpression, "disallowed character",
				goerr.V("expression", expr),
				goerr.V("char", string(r)))
		}
	}

	p := &parser{src: expr}
	p.skipSpaces()
	if p.done() {
		return 0, goerr.Wrap(ErrInvalidExpression, "empty expression")
	}

	v, err := p.parseExpr()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to evaluate expression", goerr.V("expression", expr))
	}
	if !p.done() {
		return 0, goerr.Wrap(ErrInvalidExpression, "unexpected trailing input",
			goerr.V("expression", expr),
			goerr.V("pos", p.pos))
	}
	return v, nil
}

// parser is a recursive-descent evaluator:
//
//	expr   = term { ("+" | "-") term }
//	term   = factor { ("*" | "/") factor }
//	factor = ("+" | "-") factor | number | "(" expr ")"
type parser struct {
	src string
	pos int
}

func (p *parser) done() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.done() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpaces() {
	for !p.done() && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		p.skipSpaces()
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		p.skipSpaces()
		right, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
			continue
		}
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		left /= right
	}
}

func (p *parser) parseFactor() (float64, error) {
	switch c := p.peek(); {
	case c == '+' || c == '-':
		p.pos++
		p.skipSpaces()
		v, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if c == '-' {
			v = -v
		}
		return v, nil

	case c == '(':
		p.pos++
		p.skipSpaces()
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, goerr.Wrap(ErrInvalidExpression, "missing closing parenthesis", goerr.V("pos", p.pos))
		}
		p.pos++
		p.skipSpaces()
		return v, nil

	case (c >= '0' && c <= '9') || c == '.':
		return p.parseNumber()

	default:
		return 0, goerr.Wrap(ErrInvalidExpression, "unexpected token", goerr.V("pos", p.pos))
	}
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	for !p.done() {
		c := p.src[p.pos]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		p.pos++
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, goerr.Wrap(ErrInvalidExpression, "malformed number", goerr.V("literal", p.src[start:p.pos]))
	}
	p.skipSpaces()
	return v, nil
}
