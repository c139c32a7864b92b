package lexer

import (
	"testing"

	"pyviz/internal/token"
)

type tok struct {
	typ token.Type
	lit string
}

func checkTokens(t *testing.T, input string, want []tok) {
	t.Helper()
	l := New(input)
	for i, w := range want {
		got := l.NextToken()
		if got.Type != w.typ {
			t.Fatalf("tokens[%d] - wrong type. expected=%q, got=%q (%q)", i, w.typ, got.Type, got.Literal)
		}
		if got.Literal != w.lit {
			t.Fatalf("tokens[%d] - wrong literal. expected=%q, got=%q", i, w.lit, got.Literal)
		}
	}
}

func TestOperatorsAndDelimiters(t *testing.T) {
	input := "x = 1 + 2 - 3 * 4 / 5 // 6 % 7 ** 8\n"
	checkTokens(t, input, []tok{
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.INT, "1"},
		{token.PLUS, "+"},
		{token.INT, "2"},
		{token.MINUS, "-"},
		{token.INT, "3"},
		{token.STAR, "*"},
		{token.INT, "4"},
		{token.SLASH, "/"},
		{token.INT, "5"},
		{token.DSLASH, "//"},
		{token.INT, "6"},
		{token.PERCENT, "%"},
		{token.INT, "7"},
		{token.DSTAR, "**"},
		{token.INT, "8"},
		{token.NEWLINE, "\n"},
		{token.EOF, ""},
	})
}

func TestComparisonOperators(t *testing.T) {
	input := "a == b != c < d <= e > f >= g\n"
	checkTokens(t, input, []tok{
		{token.IDENT, "a"},
		{token.EQ, "=="},
		{token.IDENT, "b"},
		{token.NE, "!="},
		{token.IDENT, "c"},
		{token.LT, "<"},
		{token.IDENT, "d"},
		{token.LE, "<="},
		{token.IDENT, "e"},
		{token.GT, ">"},
		{token.IDENT, "f"},
		{token.GE, ">="},
		{token.IDENT, "g"},
		{token.NEWLINE, "\n"},
		{token.EOF, ""},
	})
}

func TestAugmentedAssignOperators(t *testing.T) {
	input := "a += 1\nb -= 2\nc *= 3\nd /= 4\ne //= 5\nf %= 6\ng **= 7\n"
	checkTokens(t, input, []tok{
		{token.IDENT, "a"}, {token.PLUSEQ, "+="}, {token.INT, "1"}, {token.NEWLINE, "\n"},
		{token.IDENT, "b"}, {token.MINUSEQ, "-="}, {token.INT, "2"}, {token.NEWLINE, "\n"},
		{token.IDENT, "c"}, {token.STAREQ, "*="}, {token.INT, "3"}, {token.NEWLINE, "\n"},
		{token.IDENT, "d"}, {token.SLASHEQ, "/="}, {token.INT, "4"}, {token.NEWLINE, "\n"},
		{token.IDENT, "e"}, {token.DSLASHEQ, "//="}, {token.INT, "5"}, {token.NEWLINE, "\n"},
		{token.IDENT, "f"}, {token.PCTEQ, "%="}, {token.INT, "6"}, {token.NEWLINE, "\n"},
		{token.IDENT, "g"}, {token.DSTAREQ, "**="}, {token.INT, "7"}, {token.NEWLINE, "\n"},
		{token.EOF, ""},
	})
}

func TestKeywords(t *testing.T) {
	input := "def return if elif else while for in is class pass True False None and or not\n"
	checkTokens(t, input, []tok{
		{token.DEF, "def"},
		{token.RETURN, "return"},
		{token.IF, "if"},
		{token.ELIF, "elif"},
		{token.ELSE, "else"},
		{token.WHILE, "while"},
		{token.FOR, "for"},
		{token.IN, "in"},
		{token.IS, "is"},
		{token.CLASS, "class"},
		{token.PASS, "pass"},
		{token.TRUE, "True"},
		{token.FALSE, "False"},
		{token.NONE, "None"},
		{token.AND, "and"},
		{token.OR, "or"},
		{token.NOT, "not"},
		{token.NEWLINE, "\n"},
		{token.EOF, ""},
	})
}

func TestIndentDedent(t *testing.T) {
	input := "def f(n):\n    if n:\n        return n\n    return 0\nx = 1\n"
	checkTokens(t, input, []tok{
		{token.DEF, "def"},
		{token.IDENT, "f"},
		{token.LPAREN, "("},
		{token.IDENT, "n"},
		{token.RPAREN, ")"},
		{token.COLON, ":"},
		{token.NEWLINE, "\n"},
		{token.INDENT, ""},
		{token.IF, "if"},
		{token.IDENT, "n"},
		{token.COLON, ":"},
		{token.NEWLINE, "\n"},
		{token.INDENT, ""},
		{token.RETURN, "return"},
		{token.IDENT, "n"},
		{token.NEWLINE, "\n"},
		{token.DEDENT, ""},
		{token.RETURN, "return"},
		{token.INT, "0"},
		{token.NEWLINE, "\n"},
		{token.DEDENT, ""},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.INT, "1"},
		{token.NEWLINE, "\n"},
		{token.EOF, ""},
	})
}

func TestDedentsDrainAtEOF(t *testing.T) {
	input := "if x:\n    if y:\n        pass"
	l := New(input)
	dedents := 0
	for {
		tk := l.NextToken()
		if tk.Type == token.DEDENT {
			dedents++
		}
		if tk.Type == token.EOF {
			break
		}
	}
	if dedents != 2 {
		t.Fatalf("expected 2 dedents at EOF, got %d", dedents)
	}
}

func TestBlankAndCommentLinesDoNotDedent(t *testing.T) {
	input := "if x:\n    a = 1\n\n    # comment\n    b = 2\n"
	l := New(input)
	dedents := 0
	for {
		tk := l.NextToken()
		if tk.Type == token.DEDENT {
			dedents++
		}
		if tk.Type == token.ILLEGAL {
			t.Fatalf("unexpected illegal token: %q", tk.Literal)
		}
		if tk.Type == token.EOF {
			break
		}
	}
	if dedents != 1 {
		t.Fatalf("expected only the closing dedent, got %d", dedents)
	}
}

func TestBracketLineJoining(t *testing.T) {
	input := "xs = [1,\n      2,\n      3]\n"
	checkTokens(t, input, []tok{
		{token.IDENT, "xs"},
		{token.ASSIGN, "="},
		{token.LBRACKET, "["},
		{token.INT, "1"},
		{token.COMMA, ","},
		{token.INT, "2"},
		{token.COMMA, ","},
		{token.INT, "3"},
		{token.RBRACKET, "]"},
		{token.NEWLINE, "\n"},
		{token.EOF, ""},
	})
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`s = "hello"` + "\n", "hello"},
		{`s = 'it\'s'` + "\n", "it's"},
		{`s = "a\nb"` + "\n", "a\nb"},
		{`s = "a\tb"` + "\n", "a\tb"},
		{`s = "back\\slash"` + "\n", `back\slash`},
	}
	for i, tt := range tests {
		l := New(tt.input)
		l.NextToken() // s
		l.NextToken() // =
		got := l.NextToken()
		if got.Type != token.STRING {
			t.Fatalf("tests[%d] - expected STRING, got %q", i, got.Type)
		}
		if got.Literal != tt.want {
			t.Fatalf("tests[%d] - expected %q, got %q", i, tt.want, got.Literal)
		}
	}
}

func TestFStringToken(t *testing.T) {
	l := New("msg = f'pi is {pi:.2f}'\n")
	l.NextToken() // msg
	l.NextToken() // =
	got := l.NextToken()
	if got.Type != token.FSTRING {
		t.Fatalf("expected FSTRING, got %q", got.Type)
	}
	if got.Literal != "pi is {pi:.2f}" {
		t.Fatalf("wrong f-string body: %q", got.Literal)
	}
	if got.Raw != "f'pi is {pi:.2f}'" {
		t.Fatalf("wrong raw lexeme: %q", got.Raw)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New("s = 'oops\n")
	l.NextToken()
	l.NextToken()
	got := l.NextToken()
	if got.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %q (%q)", got.Type, got.Literal)
	}
}

func TestNumbers(t *testing.T) {
	input := "a = 42\nb = 3.14\nc = 10.0\n"
	l := New(input)
	wantTypes := []tok{
		{token.IDENT, "a"}, {token.ASSIGN, "="}, {token.INT, "42"}, {token.NEWLINE, "\n"},
		{token.IDENT, "b"}, {token.ASSIGN, "="}, {token.FLOAT, "3.14"}, {token.NEWLINE, "\n"},
		{token.IDENT, "c"}, {token.ASSIGN, "="}, {token.FLOAT, "10.0"}, {token.NEWLINE, "\n"},
		{token.EOF, ""},
	}
	for i, w := range wantTypes {
		got := l.NextToken()
		if got.Type != w.typ || got.Literal != w.lit {
			t.Fatalf("tokens[%d] - expected %q %q, got %q %q", i, w.typ, w.lit, got.Type, got.Literal)
		}
	}
}

func TestPositions(t *testing.T) {
	l := New("a = 1\nbb = 22\n")
	tests := []struct {
		line, col int
	}{
		{1, 1}, // a
		{1, 3}, // =
		{1, 5}, // 1
		{1, 6}, // newline
		{2, 1}, // bb
		{2, 4}, // =
		{2, 6}, // 22
	}
	for i, w := range tests {
		got := l.NextToken()
		if got.Line != w.line || got.Col != w.col {
			t.Fatalf("tokens[%d] %q - expected %d:%d, got %d:%d", i, got.Literal, w.line, w.col, got.Line, got.Col)
		}
	}
}

func TestInconsistentIndentation(t *testing.T) {
	input := "if x:\n        a = 1\n    b = 2\n"
	l := New(input)
	sawIllegal := false
	for {
		tk := l.NextToken()
		if tk.Type == token.ILLEGAL {
			sawIllegal = true
		}
		if tk.Type == token.EOF {
			break
		}
	}
	if !sawIllegal {
		t.Fatal("expected an illegal token for a dedent to a never-used level")
	}
}
