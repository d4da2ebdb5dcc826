package querier

// The accepted grammar is intentionally small:
//
//	expression = field ws operator ws value
//	field      = [A-Za-z0-9_]+
//	operator   = "==" | "!=" | ">=" | "<=" | ">" | "<"
//	value      = any non-empty trailing text
//
// Two-character operators must win over their one-character prefixes, so the
// scanner peeks one rune ahead before committing to ">" or "<".

import "strings"

// Parse splits a raw query string into its (field, operator, value)
// components. The second return value is false when the input does not match
// the grammar; malformed input is a non-match, never an error.
func Parse(input string) (Expression, bool) {
	s := newScanner(strings.TrimSpace(input))

	field := s.readField()
	if field == "" {
		return Expression{}, false
	}

	s.skipWhitespace()

	op, ok := s.readOperator()
	if !ok {
		return Expression{}, false
	}

	s.skipWhitespace()

	value := strings.TrimSpace(s.rest())
	if value == "" {
		return Expression{}, false
	}

	return Expression{Field: field, Op: op, Value: stripQuotes(value)}, true
}

// stripQuotes removes one pair of matching outer single or double quotes.
// The interior is kept verbatim; there is no escape processing.
func stripQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if first == last && (first == '"' || first == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}

type scanner struct {
	input   []rune
	pos     int  // position of the current character in the input string
	readPos int  // position of the next character to be read
	char    rune // current character being processed
}

func newScanner(input string) *scanner {
	s := &scanner{input: []rune(input)}
	s.readChar()
	return s
}

func (s *scanner) readChar() {
	if s.readPos >= len(s.input) {
		s.char = 0
	} else {
		s.char = s.input[s.readPos]
	}
	s.pos = s.readPos
	s.readPos++
}

func (s *scanner) peekChar() rune {
	if s.readPos >= len(s.input) {
		return 0
	}
	return s.input[s.readPos]
}

func (s *scanner) skipWhitespace() {
	for s.char == ' ' || s.char == '\t' || s.char == '\n' || s.char == '\r' {
		s.readChar()
	}
}

func (s *scanner) readField() string {
	pos := s.pos
	for isFieldChar(s.char) {
		s.readChar()
	}
	return string(s.input[pos:s.pos])
}

func (s *scanner) readOperator() (Operator, bool) {
	switch s.char {
	case '=':
		if s.peekChar() == '=' {
			s.readChar()
			s.readChar()
			return OpEq, true
		}
	case '!':
		if s.peekChar() == '=' {
			s.readChar()
			s.readChar()
			return OpNe, true
		}
	case '>':
		if s.peekChar() == '=' {
			s.readChar()
			s.readChar()
			return OpGte, true
		}
		s.readChar()
		return OpGt, true
	case '<':
		if s.peekChar() == '=' {
			s.readChar()
			s.readChar()
			return OpLte, true
		}
		s.readChar()
		return OpLt, true
	}
	return "", false
}

// rest returns everything from the current character to the end of input.
func (s *scanner) rest() string {
	if s.char == 0 {
		return ""
	}
	return string(s.input[s.pos:])
}

func isFieldChar(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9' || r == '_'
}
