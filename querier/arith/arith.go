// Package arith evaluates restricted arithmetic expressions. Query values
// like "2+3" or "math.sqrt(2)" are convenient to accept, but they come from
// user input, so evaluation must never reach a general-purpose interpreter.
// The grammar is fixed: numeric literals, the four arithmetic operators,
// unary minus, parentheses and a whitelisted table of math functions and
// constants. Nothing else resolves.
package arith

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Eval parses and evaluates an arithmetic expression.
func Eval(input string) (float64, error) {
	p := newParser(input)

	result, err := p.parseExpr()
	if err != nil {
		return 0, err
	}

	p.skipWhitespace()
	if p.char != 0 {
		return 0, fmt.Errorf("unexpected character %q at position %d", p.char, p.pos)
	}

	return result, nil
}

// constants are usable bare or with a "math." prefix.
var constants = map[string]float64{
	"pi":  math.Pi,
	"e":   math.E,
	"tau": 2 * math.Pi,
	"inf": math.Inf(1),
	"nan": math.NaN(),
}

var unaryFuncs = map[string]func(float64) float64{
	"sqrt":  math.Sqrt,
	"abs":   math.Abs,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"round": math.Round,
	"trunc": math.Trunc,
	"exp":   math.Exp,
	"log":   math.Log,
	"log2":  math.Log2,
	"log10": math.Log10,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
}

var binaryFuncs = map[string]func(float64, float64) float64{
	"pow":   math.Pow,
	"atan2": math.Atan2,
	"min":   math.Min,
	"max":   math.Max,
}

type parser struct {
	input   []rune
	pos     int  // position of the current character in the input string
	readPos int  // position of the next character to be read
	char    rune // current character being processed
}

func newParser(input string) *parser {
	p := &parser{input: []rune(input)}
	p.readChar()
	return p
}

func (p *parser) readChar() {
	if p.readPos >= len(p.input) {
		p.char = 0
	} else {
		p.char = p.input[p.readPos]
	}
	p.pos = p.readPos
	p.readPos++
}

func (p *parser) skipWhitespace() {
	for p.char == ' ' || p.char == '\t' {
		p.readChar()
	}
}

// parseExpr handles addition and subtraction.
func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for {
		p.skipWhitespace()
		switch p.char {
		case '+':
			p.readChar()
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.readChar()
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

// parseTerm handles multiplication and division.
func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for {
		p.skipWhitespace()
		switch p.char {
		case '*':
			p.readChar()
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case '/':
			p.readChar()
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (float64, error) {
	p.skipWhitespace()

	if p.char == '-' {
		p.readChar()
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	if p.char == '+' {
		p.readChar()
		return p.parseUnary()
	}

	return p.parsePrimary()
}

func (p *parser) parsePrimary() (float64, error) {
	p.skipWhitespace()

	switch {
	case p.char == '(':
		p.readChar()
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipWhitespace()
		if p.char != ')' {
			return 0, fmt.Errorf("missing closing parenthesis at position %d", p.pos)
		}
		p.readChar()
		return v, nil

	case isDigit(p.char) || p.char == '.':
		return p.parseNumber()

	case isLetter(p.char):
		return p.parseName()

	case p.char == 0:
		return 0, fmt.Errorf("unexpected end of expression")

	default:
		return 0, fmt.Errorf("unexpected character %q at position %d", p.char, p.pos)
	}
}

func (p *parser) parseNumber() (float64, error) {
	pos := p.pos

	for isDigit(p.char) || p.char == '.' {
		p.readChar()
	}

	// Optional exponent part, e.g. 1.5e-3.
	if p.char == 'e' || p.char == 'E' {
		p.readChar()
		if p.char == '+' || p.char == '-' {
			p.readChar()
		}
		for isDigit(p.char) {
			p.readChar()
		}
	}

	literal := string(p.input[pos:p.pos])
	v, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", literal)
	}

	return v, nil
}

// parseName resolves a whitelisted constant or function call. Any other
// identifier is rejected so user-supplied expressions cannot reach ambient
// names.
func (p *parser) parseName() (float64, error) {
	pos := p.pos
	for isLetter(p.char) || isDigit(p.char) || p.char == '.' {
		p.readChar()
	}

	name := strings.ToLower(string(p.input[pos:p.pos]))
	name = strings.TrimPrefix(name, "math.")

	p.skipWhitespace()

	if p.char != '(' {
		if v, ok := constants[name]; ok {
			return v, nil
		}
		return 0, fmt.Errorf("unknown name %q", name)
	}

	// Function call.
	p.readChar()
	args, err := p.parseArgs()
	if err != nil {
		return 0, err
	}

	if fn, ok := unaryFuncs[name]; ok {
		if len(args) != 1 {
			return 0, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		return fn(args[0]), nil
	}
	if fn, ok := binaryFuncs[name]; ok {
		if len(args) != 2 {
			return 0, fmt.Errorf("%s expects 2 arguments, got %d", name, len(args))
		}
		return fn(args[0], args[1]), nil
	}

	return 0, fmt.Errorf("unknown function %q", name)
}

func (p *parser) parseArgs() ([]float64, error) {
	var args []float64

	p.skipWhitespace()
	if p.char == ')' {
		p.readChar()
		return args, nil
	}

	for {
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, v)

		p.skipWhitespace()
		switch p.char {
		case ',':
			p.readChar()
		case ')':
			p.readChar()
			return args, nil
		default:
			return nil, fmt.Errorf("missing closing parenthesis at position %d", p.pos)
		}
	}
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_'
}
