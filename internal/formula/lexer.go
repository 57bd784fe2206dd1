package formula

import (
	"strconv"
	"unicode"
)

// Variable is the only identifier a formula may reference.
const Variable = "measurement"

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokOperator
	tokLParen
	tokRParen
	tokVariable
)

type token struct {
	text  string
	value float64
	kind  tokenKind
}

// tokenize splits src into numbers, operators, parentheses and, when
// allowVariable is set, the measurement variable. Any other character is an error.
func tokenize(src string, allowVariable bool) ([]token, error) {
	var tokens []token
	runes := []rune(src)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '+' || r == '-' || r == '*' || r == '/':
			tokens = append(tokens, token{kind: tokOperator, text: string(r)})
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "("})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")"})
			i++
		case r == '.' || (r >= '0' && r <= '9'):
			start := i
			for i < len(runes) && (runes[i] == '.' || (runes[i] >= '0' && runes[i] <= '9')) {
				i++
			}
			text := string(runes[start:i])
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, newError(src, "invalid number %q", text)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, value: v})
		case allowVariable && unicode.IsLetter(r):
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || runes[i] == '_') {
				i++
			}
			word := string(runes[start:i])
			if word != Variable {
				return nil, newError(src, "unknown identifier %q", word)
			}
			tokens = append(tokens, token{kind: tokVariable, text: Variable})
		default:
			return nil, newError(src, "unexpected character %q", string(r))
		}
	}

	if len(tokens) == 0 {
		return nil, newError(src, "empty expression")
	}
	return tokens, nil
}
