package lexer

import (
	"strings"
	"unicode"

	"pyviz/internal/token"
)

// Lexer scans a Python-subset source text. Indentation is significant:
// block structure is emitted as INDENT/DEDENT tokens, and NEWLINE is a real
// token that terminates statements. Newlines inside (), [] and {} are
// swallowed (implicit line joining).
type Lexer struct {
	input string

	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination

	line int // 1-based
	col  int // 1-based column of current char

	atLineStart bool
	indents     []int // indentation stack, always starts with 0
	brackets    int   // depth of open (, [, {
	pending     []token.Token
}

const tabWidth = 4

func New(input string) *Lexer {
	l := &Lexer{
		input:       input,
		line:        1,
		col:         0, // readChar() will advance to col=1 for first char
		atLineStart: true,
		indents:     []int{0},
	}
	l.readChar()
	return l
}

func (l *Lexer) NextToken() token.Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}

	if l.atLineStart && l.brackets == 0 {
		if tok, ok := l.handleIndentation(); ok {
			return tok
		}
	}

	// Skip spaces/tabs and # comments, but NOT newlines.
	for {
		l.skipWhitespace()
		if l.ch == '#' {
			l.skipLineComment()
			continue
		}
		break
	}

	if l.ch == '\n' {
		if l.brackets > 0 {
			// Implicit line joining inside brackets.
			l.readChar()
			return l.NextToken()
		}
		tok := l.newToken(token.NEWLINE, "\n", l.line, l.col)
		l.readChar()
		l.atLineStart = true
		return tok
	}

	if l.ch == 0 {
		return l.drainAtEOF()
	}

	startLine, startCol := l.line, l.col
	startIdx := l.position

	switch l.ch {
	case '(':
		l.brackets++
		return l.single(token.LPAREN, "(", startLine, startCol)
	case ')':
		if l.brackets > 0 {
			l.brackets--
		}
		return l.single(token.RPAREN, ")", startLine, startCol)
	case '[':
		l.brackets++
		return l.single(token.LBRACKET, "[", startLine, startCol)
	case ']':
		if l.brackets > 0 {
			l.brackets--
		}
		return l.single(token.RBRACKET, "]", startLine, startCol)
	case '{':
		l.brackets++
		return l.single(token.LBRACE, "{", startLine, startCol)
	case '}':
		if l.brackets > 0 {
			l.brackets--
		}
		return l.single(token.RBRACE, "}", startLine, startCol)
	case ',':
		return l.single(token.COMMA, ",", startLine, startCol)
	case ':':
		return l.single(token.COLON, ":", startLine, startCol)
	case '.':
		return l.single(token.DOT, ".", startLine, startCol)

	case '+':
		if l.peekChar() == '=' {
			return l.double(token.PLUSEQ, startLine, startCol)
		}
		return l.single(token.PLUS, "+", startLine, startCol)
	case '-':
		if l.peekChar() == '=' {
			return l.double(token.MINUSEQ, startLine, startCol)
		}
		return l.single(token.MINUS, "-", startLine, startCol)
	case '*':
		if l.peekChar() == '*' {
			l.readChar()
			if l.peekChar() == '=' {
				l.readChar()
				tok := l.newToken(token.DSTAREQ, "**=", startLine, startCol)
				l.readChar()
				return tok
			}
			tok := l.newToken(token.DSTAR, "**", startLine, startCol)
			l.readChar()
			return tok
		}
		if l.peekChar() == '=' {
			return l.double(token.STAREQ, startLine, startCol)
		}
		return l.single(token.STAR, "*", startLine, startCol)
	case '/':
		if l.peekChar() == '/' {
			l.readChar()
			if l.peekChar() == '=' {
				l.readChar()
				tok := l.newToken(token.DSLASHEQ, "//=", startLine, startCol)
				l.readChar()
				return tok
			}
			tok := l.newToken(token.DSLASH, "//", startLine, startCol)
			l.readChar()
			return tok
		}
		if l.peekChar() == '=' {
			return l.double(token.SLASHEQ, startLine, startCol)
		}
		return l.single(token.SLASH, "/", startLine, startCol)
	case '%':
		if l.peekChar() == '=' {
			return l.double(token.PCTEQ, startLine, startCol)
		}
		return l.single(token.PERCENT, "%", startLine, startCol)

	case '=':
		if l.peekChar() == '=' {
			return l.double(token.EQ, startLine, startCol)
		}
		return l.single(token.ASSIGN, "=", startLine, startCol)
	case '!':
		if l.peekChar() == '=' {
			return l.double(token.NE, startLine, startCol)
		}
		return l.single(token.ILLEGAL, "!", startLine, startCol)
	case '<':
		if l.peekChar() == '=' {
			return l.double(token.LE, startLine, startCol)
		}
		return l.single(token.LT, "<", startLine, startCol)
	case '>':
		if l.peekChar() == '=' {
			return l.double(token.GE, startLine, startCol)
		}
		return l.single(token.GT, ">", startLine, startCol)

	case '"', '\'':
		return l.readStringToken(l.ch, token.STRING, startLine, startCol, startIdx)
	}

	// f-strings: f"..." or f'...'
	if (l.ch == 'f' || l.ch == 'F') && (l.peekChar() == '"' || l.peekChar() == '\'') {
		l.readChar() // move onto the quote
		return l.readStringToken(l.ch, token.FSTRING, startLine, startCol, startIdx)
	}

	// Identifiers / keywords
	if isIdentStart(l.ch) {
		lit := l.readIdentifier()
		tt := token.LookupIdent(lit)
		return l.newToken(tt, lit, startLine, startCol)
	}

	// Numbers (int or float)
	if isDigit(l.ch) {
		lit, isFloat := l.readNumber()
		if isFloat {
			return l.newToken(token.FLOAT, lit, startLine, startCol)
		}
		return l.newToken(token.INT, lit, startLine, startCol)
	}

	illegal := string(l.ch)
	tok := l.newToken(token.ILLEGAL, illegal, startLine, startCol)
	l.readChar()
	return tok
}

// handleIndentation measures leading whitespace at a logical line start and
// emits INDENT/DEDENT tokens against the indent stack. Blank and
// comment-only lines do not affect indentation.
func (l *Lexer) handleIndentation() (token.Token, bool) {
	for {
		width := 0
		for l.ch == ' ' || l.ch == '\t' {
			if l.ch == '\t' {
				width += tabWidth - width%tabWidth
			} else {
				width++
			}
			l.readChar()
		}

		if l.ch == '#' {
			l.skipLineComment()
		}
		if l.ch == '\n' {
			l.readChar()
			continue // blank line, re-measure
		}
		if l.ch == 0 {
			l.atLineStart = false
			return token.Token{}, false // EOF path emits the dedents
		}

		l.atLineStart = false
		cur := l.indents[len(l.indents)-1]
		switch {
		case width > cur:
			l.indents = append(l.indents, width)
			return l.newToken(token.INDENT, "", l.line, l.col), true
		case width < cur:
			for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
				l.indents = l.indents[:len(l.indents)-1]
				l.pending = append(l.pending, l.newToken(token.DEDENT, "", l.line, l.col))
			}
			if l.indents[len(l.indents)-1] != width {
				l.pending = append(l.pending, l.newToken(token.ILLEGAL, "inconsistent indentation", l.line, l.col))
			}
			tok := l.pending[0]
			l.pending = l.pending[1:]
			return tok, true
		default:
			return token.Token{}, false
		}
	}
}

func (l *Lexer) drainAtEOF() token.Token {
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.pending = append(l.pending, l.newToken(token.DEDENT, "", l.line, l.col))
	}
	l.pending = append(l.pending, l.newToken(token.EOF, "", l.line, l.col))
	tok := l.pending[0]
	l.pending = l.pending[1:]
	return tok
}

func (l *Lexer) single(t token.Type, lit string, line, col int) token.Token {
	tok := l.newToken(t, lit, line, col)
	l.readChar()
	return tok
}

func (l *Lexer) double(t token.Type, line, col int) token.Token {
	first := l.ch
	l.readChar()
	lit := string([]byte{first, l.ch})
	tok := l.newToken(t, lit, line, col)
	l.readChar()
	return tok
}

func (l *Lexer) newToken(t token.Type, lit string, line, col int) token.Token {
	return token.Token{
		Type:    t,
		Literal: lit,
		Line:    line,
		Col:     col,
	}
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}

	l.ch = l.input[l.readPosition]
	l.position = l.readPosition
	l.readPosition++
	l.col++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	// Do not consume the newline; NextToken will emit NEWLINE.
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() (string, bool) {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	isFloat := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position], isFloat
}

func (l *Lexer) readStringToken(quote byte, tt token.Type, startLine, startCol, startIdx int) token.Token {
	// Current l.ch == quote
	l.readChar() // move past opening quote

	var b strings.Builder
	for {
		if l.ch == 0 || l.ch == '\n' {
			return l.newToken(token.ILLEGAL, "unterminated string", startLine, startCol)
		}
		if l.ch == quote {
			break
		}

		if l.ch == '\\' {
			switch l.peekChar() {
			case quote:
				l.readChar()
				b.WriteByte(quote)
				l.readChar()
				continue
			case '\\':
				l.readChar()
				b.WriteByte('\\')
				l.readChar()
				continue
			case 'n':
				l.readChar()
				b.WriteByte('\n')
				l.readChar()
				continue
			case 't':
				l.readChar()
				b.WriteByte('\t')
				l.readChar()
				continue
			default:
				// Unknown escape: keep the backslash literally
				b.WriteByte(l.ch)
				l.readChar()
				continue
			}
		}

		b.WriteByte(l.ch)
		l.readChar()
	}

	l.readChar() // consume closing quote
	tok := l.newToken(tt, b.String(), startLine, startCol)
	tok.Raw = l.input[startIdx:l.position]
	return tok
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= 128 && unicode.IsLetter(rune(ch)))
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
