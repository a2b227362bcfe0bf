// Package formula evaluates restricted arithmetic expressions against a
// named variable context. The grammar covers numeric literals, variables,
// unary sign, and the binary operators + - * / (the Unicode multiplication
// sign is accepted as an alias for *), with parentheses. There are no
// conditionals, function calls, or comparisons; evaluation cannot execute
// anything beyond arithmetic.
package formula

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

// Evaluation errors.
var (
	// ErrMalformedExpression is returned when the expression cannot be
	// parsed as pure arithmetic.
	ErrMalformedExpression = errors.New("malformed expression")

	// ErrUnknownVariable is returned when the expression references a name
	// absent from the variable context.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrDivisionByZero is returned when a division has a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")
)

// Eval evaluates expr against vars and returns a single numeric result.
// It is a pure function of (expr, vars).
func Eval(expr string, vars map[string]float64) (float64, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return 0, err
	}

	p := &parser{tokens: toks, vars: vars}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if !p.atEnd() {
		return 0, fmt.Errorf("%w: unexpected %q at offset %d", ErrMalformedExpression, p.peek().text, p.peek().pos)
	}
	return v, nil
}

// Variables returns the set of variable names referenced by expr without
// evaluating it. Used by the indicator calculator to build the dependency
// graph.
func Variables(expr string) ([]string, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var names []string
	for _, t := range toks {
		if t.kind == tokIdent {
			if _, ok := seen[t.text]; !ok {
				seen[t.text] = struct{}{}
				names = append(names, t.text)
			}
		}
	}
	return names, nil
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

func tokenize(expr string) ([]token, error) {
	var toks []token
	runes := []rune(expr)
	i := 0

	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '+':
			toks = append(toks, token{kind: tokPlus, text: "+", pos: i})
			i++
		case r == '-':
			toks = append(toks, token{kind: tokMinus, text: "-", pos: i})
			i++
		case r == '*' || r == '×':
			toks = append(toks, token{kind: tokStar, text: "*", pos: i})
			i++
		case r == '/':
			toks = append(toks, token{kind: tokSlash, text: "/", pos: i})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			// optional exponent
			if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
				j := i + 1
				if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
					j++
				}
				if j < len(runes) && unicode.IsDigit(runes[j]) {
					i = j
					for i < len(runes) && unicode.IsDigit(runes[i]) {
						i++
					}
				}
			}
			text := string(runes[start:i])
			num, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q at offset %d", ErrMalformedExpression, text, start)
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: num, pos: start})
		case r == '_' || unicode.IsLetter(r):
			start := i
			for i < len(runes) && (runes[i] == '_' || unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i])) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(runes[start:i]), pos: start})
		default:
			return nil, fmt.Errorf("%w: unexpected character %q at offset %d", ErrMalformedExpression, string(r), i)
		}
	}

	toks = append(toks, token{kind: tokEOF, text: "end of expression", pos: len(runes)})
	return toks, nil
}

// parser is a recursive-descent evaluator over the token stream.
type parser struct {
	tokens []token
	idx    int
	vars   map[string]float64
}

func (p *parser) peek() token { return p.tokens[p.idx] }

func (p *parser) next() token {
	t := p.tokens[p.idx]
	if t.kind != tokEOF {
		p.idx++
	}
	return t
}

func (p *parser) atEnd() bool { return p.peek().kind == tokEOF }

// parseExpr handles + and - at the lowest precedence.
func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek().kind {
		case tokPlus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case tokMinus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

// parseTerm handles * and /.
func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek().kind {
		case tokStar:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case tokSlash:
			op := p.next()
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("%w at offset %d", ErrDivisionByZero, op.pos)
			}
			left /= right
		default:
			return left, nil
		}
	}
}

// parseUnary handles leading sign.
func (p *parser) parseUnary() (float64, error) {
	switch p.peek().kind {
	case tokMinus:
		p.next()
		v, err := p.parseUnary()
		return -v, err
	case tokPlus:
		p.next()
		return p.parseUnary()
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (float64, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return t.num, nil
	case tokIdent:
		v, ok := p.vars[t.text]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownVariable, t.text)
		}
		return v, nil
	case tokLParen:
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek().kind != tokRParen {
			return 0, fmt.Errorf("%w: missing closing parenthesis at offset %d", ErrMalformedExpression, p.peek().pos)
		}
		p.next()
		return v, nil
	default:
		return 0, fmt.Errorf("%w: unexpected %q at offset %d", ErrMalformedExpression, t.text, t.pos)
	}
}
