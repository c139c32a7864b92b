package parser

import (
	"fmt"
	"strconv"
	"strings"

	"pyviz/internal/ast"
	"pyviz/internal/diag"
	"pyviz/internal/lexer"
	"pyviz/internal/token"
)

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l      *lexer.Lexer
	errors []string
	diags  []diag.Diagnostic

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

/* -------------------- precedence -------------------- */

const (
	_ int = iota
	LOWEST
	ORPREC  // or
	ANDPREC // and
	NOTPREC // not X
	COMPARE // == != < <= > >= is in
	SUM     // + -
	PRODUCT // * / // %
	PREFIX  // -X +X
	POWER   // **
	INDEX   // xs[i]
	CALL    // fn(x), obj.attr
)

var precedences = map[token.Type]int{
	token.OR:       ORPREC,
	token.AND:      ANDPREC,
	token.EQ:       COMPARE,
	token.NE:       COMPARE,
	token.LT:       COMPARE,
	token.LE:       COMPARE,
	token.GT:       COMPARE,
	token.GE:       COMPARE,
	token.IS:       COMPARE,
	token.IN:       COMPARE,
	token.NOT:      COMPARE, // "not in" in infix position
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.STAR:     PRODUCT,
	token.SLASH:    PRODUCT,
	token.DSLASH:   PRODUCT,
	token.PERCENT:  PRODUCT,
	token.DSTAR:    POWER,
	token.LBRACKET: INDEX,
	token.LPAREN:   CALL,
	token.DOT:      CALL,
}

var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"is": true, "is not": true, "in": true, "not in": true,
}

/* -------------------- constructor -------------------- */

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:              l,
		errors:         []string{},
		diags:          []diag.Diagnostic{},
		prefixParseFns: map[token.Type]prefixParseFn{},
		infixParseFns:  map[token.Type]infixParseFn{},
	}

	// read two tokens, so cur and peek are set
	p.nextToken()
	p.nextToken()

	// Prefix parsers
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.FSTRING, p.parseFStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(token.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(token.NONE, p.parseNoneLiteral)
	p.registerPrefix(token.LPAREN, p.parseGroupedOrTuple)
	p.registerPrefix(token.LBRACKET, p.parseListLiteral)
	p.registerPrefix(token.LBRACE, p.parseDictLiteral)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.PLUS, p.parsePrefixExpression)
	p.registerPrefix(token.NOT, p.parseNotExpression)

	// Infix parsers
	for _, tt := range []token.Type{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.DSLASH,
		token.PERCENT, token.DSTAR,
		token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE,
		token.AND, token.OR, token.IN,
	} {
		p.registerInfix(tt, p.parseInfixExpression)
	}
	p.registerInfix(token.IS, p.parseIsExpression)
	p.registerInfix(token.NOT, p.parseNotInExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.DOT, p.parseAttributeExpression)

	return p
}

func (p *Parser) Diagnostics() []diag.Diagnostic { return p.diags }
func (p *Parser) Errors() []string               { return p.errors }

/* -------------------- program -------------------- */

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Statements: []ast.Statement{}}

	for p.curToken.Type != token.EOF {
		if p.curToken.Type == token.NEWLINE {
			p.nextToken()
			continue
		}
		if p.curToken.Type == token.DEDENT || p.curToken.Type == token.INDENT {
			p.errorAt(p.curToken, "unexpected indentation")
			p.nextToken()
			continue
		}

		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}

		p.nextToken()
	}

	return program
}

/* -------------------- statements -------------------- */

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.DEF:
		return p.parseFunctionDef()
	case token.CLASS:
		return p.parseClassDef()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.PASS:
		return &ast.PassStatement{Token: p.curToken}
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	default:
		if p.curToken.Type == token.IDENT && p.isAssignOp(p.peekToken.Type) {
			return p.parseAssignStatement()
		}
		return p.parseExpressionStatement()
	}
}

func (p *Parser) isAssignOp(t token.Type) bool {
	if t == token.ASSIGN {
		return true
	}
	_, ok := token.AugAssignOps[t]
	return ok
}

func (p *Parser) parseAssignStatement() ast.Statement {
	stmt := &ast.AssignStatement{
		Token: p.curToken,
		Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal},
	}

	p.nextToken() // operator
	stmt.OpToken = p.curToken
	stmt.Op = p.curToken.Type

	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	first := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	// Subscript and attribute targets only support plain '='.
	if p.peekToken.Type == token.ASSIGN {
		switch target := expr.(type) {
		case *ast.IndexExpression:
			p.nextToken() // '='
			opTok := p.curToken
			p.nextToken()
			return &ast.IndexAssignStatement{
				Token: opTok,
				Left:  target,
				Value: p.parseExpression(LOWEST),
			}
		case *ast.AttributeExpression:
			p.nextToken() // '='
			opTok := p.curToken
			p.nextToken()
			return &ast.AttrAssignStatement{
				Token:  opTok,
				Object: target.Object,
				Attr:   target.Attr,
				Value:  p.parseExpression(LOWEST),
			}
		}
	}

	return &ast.ExpressionStatement{Token: first, Expression: expr}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.isStatementEnd(p.peekToken.Type) {
		return stmt
	}

	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	return stmt
}

func (p *Parser) isStatementEnd(t token.Type) bool {
	return t == token.NEWLINE || t == token.EOF || t == token.DEDENT
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	p.nextToken()
	stmt.Test = p.parseExpression(LOWEST)

	if !p.expectPeek(token.COLON) {
		return nil
	}
	stmt.Body = p.parseBlock()

	switch p.peekToken.Type {
	case token.ELIF:
		p.nextToken()
		inner := p.parseIfStatement()
		if inner == nil {
			return nil
		}
		stmt.Else = []ast.Statement{inner}
	case token.ELSE:
		p.nextToken()
		if !p.expectPeek(token.COLON) {
			return nil
		}
		stmt.Else = p.parseBlock()
	}

	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	p.nextToken()
	stmt.Test = p.parseExpression(LOWEST)

	if !p.expectPeek(token.COLON) {
		return nil
	}
	stmt.Body = p.parseBlock()
	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Target = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	stmt.Iter = p.parseExpression(LOWEST)

	if !p.expectPeek(token.COLON) {
		return nil
	}
	stmt.Body = p.parseBlock()
	return stmt
}

func (p *Parser) parseFunctionDef() ast.Statement {
	stmt := &ast.FunctionDef{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	stmt.Params = p.parseFunctionParameters()

	if !p.expectPeek(token.COLON) {
		return nil
	}
	stmt.Body = p.parseBlock()
	return stmt
}

func (p *Parser) parseFunctionParameters() []*ast.Identifier {
	params := []*ast.Identifier{}

	// curToken is '('
	if p.peekToken.Type == token.RPAREN {
		p.nextToken() // consume ')'
		return params
	}

	p.nextToken() // first param
	params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})

	for p.peekToken.Type == token.COMMA {
		p.nextToken() // consume ','
		p.nextToken() // next ident
		params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return params
}

func (p *Parser) parseClassDef() ast.Statement {
	stmt := &ast.ClassDef{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	// Optional empty parens; base classes are not supported.
	if p.peekToken.Type == token.LPAREN {
		p.nextToken()
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
	}

	if !p.expectPeek(token.COLON) {
		return nil
	}

	body := p.parseBlock()
	for _, s := range body {
		switch m := s.(type) {
		case *ast.FunctionDef:
			stmt.Methods = append(stmt.Methods, m)
		case *ast.PassStatement:
			// empty class body
		default:
			p.errorAt(s.Pos(), "class bodies may only contain method definitions")
		}
	}
	return stmt
}

// parseBlock parses an indented suite after ':'. A single inline statement
// on the same line is also accepted. On return curToken sits on the block's
// DEDENT (or on the inline statement's last token).
func (p *Parser) parseBlock() []ast.Statement {
	// curToken is ':'
	if p.peekToken.Type != token.NEWLINE {
		p.nextToken()
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		return []ast.Statement{stmt}
	}

	p.nextToken() // NEWLINE
	if !p.expectPeek(token.INDENT) {
		return nil
	}
	p.nextToken() // first token of first statement

	stmts := []ast.Statement{}
	for p.curToken.Type != token.DEDENT && p.curToken.Type != token.EOF {
		if p.curToken.Type == token.NEWLINE {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.nextToken()
	}
	return stmts
}

/* -------------------- expressions -------------------- */

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	left := prefix()

	for !p.isStatementEnd(p.peekToken.Type) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}

	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errorAt(p.curToken, fmt.Sprintf("could not parse %q as integer", p.curToken.Literal))
		return nil
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	lit := &ast.FloatLiteral{Token: p.curToken}
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorAt(p.curToken, fmt.Sprintf("could not parse %q as float", p.curToken.Literal))
		return nil
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curToken.Type == token.TRUE}
}

func (p *Parser) parseNoneLiteral() ast.Expression {
	return &ast.NoneLiteral{Token: p.curToken}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expr := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}
	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)
	return expr
}

func (p *Parser) parseNotExpression() ast.Expression {
	expr := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: "not",
	}
	p.nextToken()
	expr.Right = p.parseExpression(NOTPREC)
	return expr
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	opTok := p.curToken
	operator := p.curToken.Literal
	if opTok.Type == token.IN {
		operator = "in"
	}
	precedence := p.curPrecedence()
	if opTok.Type == token.DSTAR {
		precedence-- // ** is right-associative
	}
	p.nextToken()
	right := p.parseExpression(precedence)

	return p.finishComparison(&ast.InfixExpression{
		Token:    opTok,
		Operator: operator,
		Left:     left,
		Right:    right,
	})
}

// parseIsExpression handles `is` and `is not`.
func (p *Parser) parseIsExpression(left ast.Expression) ast.Expression {
	opTok := p.curToken
	operator := "is"
	if p.peekToken.Type == token.NOT {
		p.nextToken()
		operator = "is not"
	}
	p.nextToken()
	right := p.parseExpression(COMPARE)

	return p.finishComparison(&ast.InfixExpression{
		Token:    opTok,
		Operator: operator,
		Left:     left,
		Right:    right,
	})
}

// parseNotInExpression handles `not in` in infix position.
func (p *Parser) parseNotInExpression(left ast.Expression) ast.Expression {
	opTok := p.curToken
	if !p.expectPeek(token.IN) {
		return left
	}
	p.nextToken()
	right := p.parseExpression(COMPARE)

	return p.finishComparison(&ast.InfixExpression{
		Token:    opTok,
		Operator: "not in",
		Left:     left,
		Right:    right,
	})
}

// finishComparison drops the trailing comparison of a chain like a < b < c,
// keeping only the first operator/operand pair. Chained comparisons are not
// supported; a warning diagnostic records the dropped comparison.
func (p *Parser) finishComparison(expr *ast.InfixExpression) ast.Expression {
	if !comparisonOps[expr.Operator] {
		return expr
	}
	if inner, ok := expr.Left.(*ast.InfixExpression); ok && comparisonOps[inner.Operator] {
		p.diags = append(p.diags, diag.Diagnostic{
			Code:     "PV0002",
			Message:  "chained comparisons are not supported; only the first comparison is evaluated",
			Severity: diag.SeverityWarning,
			Range:    diag.Range{Line: expr.Token.Line, Col: expr.Token.Col, Length: len(expr.Token.Literal)},
		})
		return inner
	}
	return expr
}

func (p *Parser) parseGroupedOrTuple() ast.Expression {
	lparen := p.curToken

	if p.peekToken.Type == token.RPAREN {
		p.nextToken()
		return &ast.TupleLiteral{Token: lparen}
	}

	p.nextToken()
	first := p.parseExpression(LOWEST)

	if p.peekToken.Type == token.COMMA {
		elems := []ast.Expression{first}
		for p.peekToken.Type == token.COMMA {
			p.nextToken() // ','
			if p.peekToken.Type == token.RPAREN {
				break // trailing comma
			}
			p.nextToken()
			elems = append(elems, p.parseExpression(LOWEST))
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
		return &ast.TupleLiteral{Token: lparen, Elements: elems}
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return first
}

func (p *Parser) parseListLiteral() ast.Expression {
	lit := &ast.ListLiteral{Token: p.curToken}
	lit.Elements = p.parseExpressionList(token.RBRACKET)
	return lit
}

func (p *Parser) parseDictLiteral() ast.Expression {
	lit := &ast.DictLiteral{Token: p.curToken}

	if p.peekToken.Type == token.RBRACE {
		p.nextToken()
		return lit
	}

	for {
		p.nextToken()
		key := p.parseExpression(LOWEST)
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(LOWEST)
		lit.Keys = append(lit.Keys, key)
		lit.Values = append(lit.Values, value)

		if p.peekToken.Type != token.COMMA {
			break
		}
		p.nextToken() // ','
		if p.peekToken.Type == token.RBRACE {
			break // trailing comma
		}
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return lit
}

func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	call := &ast.CallExpression{Token: p.curToken, Func: fn}
	call.Args = p.parseExpressionList(token.RPAREN)
	return call
}

func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	list := []ast.Expression{}

	if p.peekToken.Type == end {
		p.nextToken()
		return list
	}

	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))

	for p.peekToken.Type == token.COMMA {
		p.nextToken() // ','
		if p.peekToken.Type == end {
			break // trailing comma
		}
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	expr := &ast.IndexExpression{Token: p.curToken, Left: left}

	p.nextToken()
	expr.Index = p.parseExpression(LOWEST)

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return expr
}

func (p *Parser) parseAttributeExpression(left ast.Expression) ast.Expression {
	expr := &ast.AttributeExpression{Token: p.curToken, Object: left}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	expr.Attr = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return expr
}

/* -------------------- f-strings -------------------- */

// parseFStringLiteral splits the scanned f-string body into literal runs and
// interpolated expressions. One nesting level only: braces inside an
// interpolation (dict literals, subscripts) are tracked, but nested
// f-strings are not.
func (p *Parser) parseFStringLiteral() ast.Expression {
	tok := p.curToken
	lit := &ast.FStringLiteral{Token: tok}
	body := tok.Literal

	var litRun strings.Builder
	i := 0
	for i < len(body) {
		ch := body[i]
		switch {
		case ch == '{' && i+1 < len(body) && body[i+1] == '{':
			litRun.WriteByte('{')
			i += 2
		case ch == '}' && i+1 < len(body) && body[i+1] == '}':
			litRun.WriteByte('}')
			i += 2
		case ch == '}':
			p.errorAt(tok, "single '}' is not allowed in f-string")
			return nil
		case ch == '{':
			if litRun.Len() > 0 {
				lit.Parts = append(lit.Parts, ast.FStringPart{Lit: litRun.String()})
				litRun.Reset()
			}
			end, ok := matchBrace(body, i)
			if !ok {
				p.errorAt(tok, "unterminated '{' in f-string")
				return nil
			}
			inner := body[i+1 : end]
			exprSrc, spec := splitFormatSpec(inner)
			expr := p.parseSubExpression(exprSrc, tok)
			if expr == nil {
				return nil
			}
			lit.Parts = append(lit.Parts, ast.FStringPart{Expr: expr, Spec: spec})
			i = end + 1
		default:
			litRun.WriteByte(ch)
			i++
		}
	}
	if litRun.Len() > 0 {
		lit.Parts = append(lit.Parts, ast.FStringPart{Lit: litRun.String()})
	}
	return lit
}

// matchBrace returns the index of the '}' closing the '{' at start.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{', '[', '(':
			depth++
		case ']', ')':
			depth--
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// splitFormatSpec splits "expr:spec" on the first ':' outside brackets.
func splitFormatSpec(s string) (string, string) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
		case ':':
			if depth == 0 {
				return s[:i], s[i+1:]
			}
		}
	}
	return s, ""
}

// parseSubExpression parses one embedded expression with a fresh parser,
// folding its errors into this parser's.
func (p *Parser) parseSubExpression(src string, at token.Token) ast.Expression {
	src = strings.TrimSpace(src)
	if src == "" {
		p.errorAt(at, "empty expression in f-string")
		return nil
	}
	sub := New(lexer.New(src))
	expr := sub.parseExpression(LOWEST)
	if len(sub.errors) > 0 {
		p.errorAt(at, "invalid expression in f-string: "+sub.errors[0])
		return nil
	}
	return expr
}

/* -------------------- plumbing -------------------- */

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) {
	p.prefixParseFns[t] = fn
}

func (p *Parser) registerInfix(t token.Type, fn infixParseFn) {
	p.infixParseFns[t] = fn
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekToken.Type == t {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) peekError(t token.Type) {
	p.errorAt(p.peekToken, fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekToken.Type))
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	what := string(tok.Type)
	if tok.Literal != "" {
		what = fmt.Sprintf("%q", tok.Literal)
	}
	p.errorAt(tok, "unexpected token "+what)
}

func (p *Parser) errorAt(tok token.Token, msg string) {
	p.errors = append(p.errors, fmt.Sprintf("%d:%d: %s", tok.Line, tok.Col, msg))
	length := len(tok.Literal)
	if length == 0 {
		length = 1
	}
	p.diags = append(p.diags, diag.Diagnostic{
		Code:     "PV0001",
		Message:  msg,
		Severity: diag.SeverityError,
		Range:    diag.Range{Line: tok.Line, Col: tok.Col, Length: length},
	})
}
