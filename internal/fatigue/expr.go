package fatigue

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/javiermolinar/weekfit/internal/grid"
	"github.com/javiermolinar/weekfit/internal/task"
)

// ErrEmptyExpression is returned when compiling a blank formula.
var ErrEmptyExpression = errors.New("fatigue expression is empty")

// UnknownIdentifierError reports an identifier outside the allow-list.
type UnknownIdentifierError struct {
	Name string
}

func (e *UnknownIdentifierError) Error() string {
	return fmt.Sprintf("%v: unknown identifier %q in fatigue expression", grid.ErrConfig, e.Name)
}

// Unwrap makes the error match grid.ErrConfig.
func (e *UnknownIdentifierError) Unwrap() error {
	return grid.ErrConfig
}

// functions callable from an expression, with their arity.
var functions = map[string]struct {
	arity int
	fn    func(args []float64) float64
}{
	"min":  {2, func(a []float64) float64 { return math.Min(a[0], a[1]) }},
	"max":  {2, func(a []float64) float64 { return math.Max(a[0], a[1]) }},
	"abs":  {1, func(a []float64) float64 { return math.Abs(a[0]) }},
	"sqrt": {1, func(a []float64) float64 { return math.Sqrt(a[0]) }},
}

// Expression is a compiled fatigue formula. It is a tree of arithmetic
// nodes over numbered variables; nothing else can be evaluated.
type Expression struct {
	source string
	root   node
}

// String returns the source formula.
func (e *Expression) String() string {
	return e.source
}

// Cost implements Model.
func (e *Expression) Cost(t *task.Task, env Env) float64 {
	vars := bind(t, env)
	return e.root.eval(&vars)
}

// Compile parses expr into an Expression. Every identifier must be in
// allowed; an empty allow-list means all of Variables(). Names in allowed
// that the engine cannot supply are rejected as well.
func Compile(expr string, allowed []string) (*Expression, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("%w: %w", grid.ErrConfig, ErrEmptyExpression)
	}
	if len(allowed) == 0 {
		allowed = variableOrder
	}
	for _, name := range allowed {
		if !slices.Contains(variableOrder, name) {
			return nil, &UnknownIdentifierError{Name: name}
		}
	}

	tokens, err := lex(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, allowed: allowed}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, syntaxError(tok, "unexpected %q", tok.text)
	}
	return &Expression{source: expr, root: root}, nil
}

// MustCompile is like Compile but panics on error. For tests and constants.
func MustCompile(expr string, allowed []string) *Expression {
	e, err := Compile(expr, allowed)
	if err != nil {
		panic(err)
	}
	return e
}

// --- lexer ---

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind  tokenKind
	text  string
	value float64
	pos   int
}

func syntaxError(tok token, format string, args ...any) error {
	return fmt.Errorf("%w: invalid fatigue expression at offset %d: %s",
		grid.ErrConfig, tok.pos, fmt.Sprintf(format, args...))
}

func lex(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		c := rune(src[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			for i < len(src) && (src[i] >= '0' && src[i] <= '9' || src[i] == '.') {
				i++
			}
			if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
				i++
				if i < len(src) && (src[i] == '+' || src[i] == '-') {
					i++
				}
				for i < len(src) && src[i] >= '0' && src[i] <= '9' {
					i++
				}
			}
			v, err := strconv.ParseFloat(src[start:i], 64)
			if err != nil {
				return nil, syntaxError(token{pos: start}, "bad number %q", src[start:i])
			}
			tokens = append(tokens, token{kind: tokNumber, text: src[start:i], value: v, pos: start})
		case c == '_' || unicode.IsLetter(c):
			start := i
			for i < len(src) && (src[i] == '_' || unicode.IsLetter(rune(src[i])) || unicode.IsDigit(rune(src[i]))) {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: src[start:i], pos: start})
		case c == '*' && i+1 < len(src) && src[i+1] == '*':
			tokens = append(tokens, token{kind: tokOp, text: "^", pos: i})
			i += 2
		case strings.ContainsRune("+-*/%^", c):
			tokens = append(tokens, token{kind: tokOp, text: string(c), pos: i})
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == ',':
			tokens = append(tokens, token{kind: tokComma, text: ",", pos: i})
			i++
		default:
			return nil, syntaxError(token{pos: i}, "unexpected character %q", c)
		}
	}
	return append(tokens, token{kind: tokEOF, pos: len(src)}), nil
}

// --- parser ---
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/" | "%") unary }
//	unary   = ("+" | "-") unary | power
//	power   = primary [ ("^" | "**") unary ]
//	primary = number | ident | ident "(" expr { "," expr } ")" | "(" expr ")"

type parser struct {
	tokens  []token
	pos     int
	allowed []string
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) isOp(ops ...string) bool {
	tok := p.peek()
	return tok.kind == tokOp && slices.Contains(ops, tok.text)
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.isOp("+", "-") {
		op := p.next().text
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binary{op: op[0], left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*", "/", "%") {
		op := p.next().text
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binary{op: op[0], left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.isOp("+", "-") {
		op := p.next().text
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			return negate{operand: operand}, nil
		}
		return operand, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.isOp("^") {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return binary{op: '^', left: base, right: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return constant(tok.value), nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, syntaxError(closing, "expected \")\"")
		}
		return inner, nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			return p.parseCall(tok)
		}
		if !slices.Contains(p.allowed, tok.text) {
			return nil, &UnknownIdentifierError{Name: tok.text}
		}
		return variable(slices.Index(variableOrder, tok.text)), nil
	case tokEOF:
		return nil, syntaxError(tok, "unexpected end of expression")
	default:
		return nil, syntaxError(tok, "unexpected %q", tok.text)
	}
}

func (p *parser) parseCall(name token) (node, error) {
	fn, ok := functions[name.text]
	if !ok {
		return nil, &UnknownIdentifierError{Name: name.text}
	}
	p.next() // "("
	var args []node
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().kind != tokComma {
			break
		}
		p.next()
	}
	if closing := p.next(); closing.kind != tokRParen {
		return nil, syntaxError(closing, "expected \")\" after arguments to %s", name.text)
	}
	if len(args) != fn.arity {
		return nil, syntaxError(name, "%s takes %d arguments, got %d", name.text, fn.arity, len(args))
	}
	return call{fn: fn.fn, args: args}, nil
}

// --- evaluation tree ---

type node interface {
	eval(vars *[7]float64) float64
}

type constant float64

func (c constant) eval(*[7]float64) float64 { return float64(c) }

type variable int

func (v variable) eval(vars *[7]float64) float64 { return vars[v] }

type negate struct {
	operand node
}

func (n negate) eval(vars *[7]float64) float64 { return -n.operand.eval(vars) }

type binary struct {
	op          byte
	left, right node
}

func (b binary) eval(vars *[7]float64) float64 {
	l, r := b.left.eval(vars), b.right.eval(vars)
	switch b.op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	case '/':
		return l / r
	case '%':
		return math.Mod(l, r)
	default:
		return math.Pow(l, r)
	}
}

type call struct {
	fn   func([]float64) float64
	args []node
}

func (c call) eval(vars *[7]float64) float64 {
	vals := make([]float64, len(c.args))
	for i, a := range c.args {
		vals[i] = a.eval(vars)
	}
	return c.fn(vals)
}
