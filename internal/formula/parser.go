package formula

// parser is a recursive-descent parser over a token stream:
//
//	expr   := term (('+'|'-') term)*
//	term   := factor (('*'|'/') factor)*
//	factor := NUMBER | 'measurement' | '(' expr ')' | '-' factor
type parser struct {
	src    string
	tokens []token
	pos    int
}

func parse(src string, allowVariable bool) (node, error) {
	tokens, err := tokenize(src, allowVariable)
	if err != nil {
		return nil, err
	}

	p := &parser{src: src, tokens: tokens}
	root, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, newError(src, "unexpected token %q", p.tokens[p.pos].text)
	}
	return root, nil
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) expr() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokOperator || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binaryNode{left: left, right: right, op: tok.text[0], src: p.src}
	}
}

func (p *parser) term() (node, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokOperator || (tok.text != "*" && tok.text != "/") {
			return left, nil
		}
		p.pos++
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = binaryNode{left: left, right: right, op: tok.text[0], src: p.src}
	}
}

func (p *parser) factor() (node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, newError(p.src, "unexpected end of expression")
	}

	switch {
	case tok.kind == tokNumber:
		p.pos++
		return numberNode{value: tok.value}, nil
	case tok.kind == tokVariable:
		p.pos++
		return variableNode{}, nil
	case tok.kind == tokLParen:
		p.pos++
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokRParen {
			return nil, newError(p.src, "mismatched parentheses")
		}
		p.pos++
		return inner, nil
	case tok.kind == tokOperator && tok.text == "-":
		p.pos++
		operand, err := p.factor()
		if err != nil {
			return nil, err
		}
		return negateNode{operand: operand}, nil
	case tok.kind == tokRParen:
		return nil, newError(p.src, "mismatched parentheses")
	default:
		return nil, newError(p.src, "expected a number, got %q", tok.text)
	}
}
