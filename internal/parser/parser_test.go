package parser

import (
	"strings"
	"testing"

	"pyviz/internal/ast"
	"pyviz/internal/lexer"
	"pyviz/internal/token"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(lexer.New(input))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parser errors for %q: %v", input, errs)
	}
	return program
}

func parseOne(t *testing.T, input string) ast.Statement {
	t.Helper()
	program := parseProgram(t, input)
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d: %s", len(program.Statements), program.String())
	}
	return program.Statements[0]
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"-a * b", "((-a) * b)"},
		{"not a or b", "((not a) or b)"},
		{"a or b and c", "(a or (b and c))"},
		{"a + b < c * d", "((a + b) < (c * d))"},
		{"2 ** 3 ** 2", "(2 ** (3 ** 2))"},
		{"a // b % c", "((a // b) % c)"},
		{"x in ys and z", "((x in ys) and z)"},
		{"not x in ys", "(not (x in ys))"},
		{"a is not None", "(a is not None)"},
		{"a not in b", "(a not in b)"},
		{"xs[0] + 1", "(xs[0] + 1)"},
		{"f(a)(b)", "f(a)(b)"},
		{"obj.attr.deep", "obj.attr.deep"},
		{"-xs[0]", "(-xs[0])"},
	}
	for i, tt := range tests {
		stmt := parseOne(t, tt.input+"\n")
		got := stmt.String()
		if got != tt.want {
			t.Fatalf("tests[%d] %q - expected %s, got %s", i, tt.input, tt.want, got)
		}
	}
}

func TestAssignStatements(t *testing.T) {
	tests := []struct {
		input  string
		name   string
		op     token.Type
		value  string
	}{
		{"x = 5\n", "x", token.ASSIGN, "5"},
		{"x += 1\n", "x", token.PLUSEQ, "1"},
		{"total -= n * 2\n", "total", token.MINUSEQ, "(n * 2)"},
		{"acc //= 10\n", "acc", token.DSLASHEQ, "10"},
	}
	for i, tt := range tests {
		stmt, ok := parseOne(t, tt.input).(*ast.AssignStatement)
		if !ok {
			t.Fatalf("tests[%d] - not an AssignStatement", i)
		}
		if stmt.Name.Value != tt.name {
			t.Fatalf("tests[%d] - expected name %s, got %s", i, tt.name, stmt.Name.Value)
		}
		if stmt.Op != tt.op {
			t.Fatalf("tests[%d] - expected op %s, got %s", i, tt.op, stmt.Op)
		}
		if stmt.Value.String() != tt.value {
			t.Fatalf("tests[%d] - expected value %s, got %s", i, tt.value, stmt.Value.String())
		}
	}
}

func TestIndexAndAttrAssignTargets(t *testing.T) {
	stmt := parseOne(t, "xs[0] = 5\n")
	ia, ok := stmt.(*ast.IndexAssignStatement)
	if !ok {
		t.Fatalf("expected IndexAssignStatement, got %T", stmt)
	}
	if ia.String() != "xs[0] = 5" {
		t.Fatalf("unexpected rendering: %s", ia.String())
	}

	stmt = parseOne(t, "self.x = n + 1\n")
	aa, ok := stmt.(*ast.AttrAssignStatement)
	if !ok {
		t.Fatalf("expected AttrAssignStatement, got %T", stmt)
	}
	if aa.Attr.Value != "x" {
		t.Fatalf("expected attr x, got %s", aa.Attr.Value)
	}
	if aa.Value.String() != "(n + 1)" {
		t.Fatalf("unexpected value: %s", aa.Value.String())
	}
}

func TestFunctionDef(t *testing.T) {
	input := "def add(a, b):\n    return a + b\n"
	fd, ok := parseOne(t, input).(*ast.FunctionDef)
	if !ok {
		t.Fatalf("expected FunctionDef, got %T", parseOne(t, input))
	}
	if fd.Name.Value != "add" {
		t.Fatalf("expected name add, got %s", fd.Name.Value)
	}
	if len(fd.Params) != 2 || fd.Params[0].Value != "a" || fd.Params[1].Value != "b" {
		t.Fatalf("unexpected params: %v", fd.Params)
	}
	if len(fd.Body) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(fd.Body))
	}
	ret, ok := fd.Body[0].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("expected ReturnStatement, got %T", fd.Body[0])
	}
	if ret.Value.String() != "(a + b)" {
		t.Fatalf("unexpected return value: %s", ret.Value.String())
	}
}

func TestBareReturn(t *testing.T) {
	input := "def f():\n    return\n"
	fd := parseOne(t, input).(*ast.FunctionDef)
	ret := fd.Body[0].(*ast.ReturnStatement)
	if ret.Value != nil {
		t.Fatalf("bare return should have nil value, got %s", ret.Value.String())
	}
}

func TestElifChainsNestInElse(t *testing.T) {
	input := `if a:
    x = 1
elif b:
    x = 2
else:
    x = 3
`
	outer, ok := parseOne(t, input).(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected IfStatement, got %T", parseOne(t, input))
	}
	if len(outer.Body) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(outer.Body))
	}
	if len(outer.Else) != 1 {
		t.Fatalf("elif should nest as a single else statement, got %d", len(outer.Else))
	}
	inner, ok := outer.Else[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected nested IfStatement, got %T", outer.Else[0])
	}
	if inner.Test.String() != "b" {
		t.Fatalf("expected test b, got %s", inner.Test.String())
	}
	if len(inner.Else) != 1 {
		t.Fatalf("expected final else branch, got %d statements", len(inner.Else))
	}
}

func TestInlineBlock(t *testing.T) {
	input := "if x: y = 1\n"
	stmt, ok := parseOne(t, input).(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected IfStatement, got %T", parseOne(t, input))
	}
	if len(stmt.Body) != 1 {
		t.Fatalf("expected 1 inline statement, got %d", len(stmt.Body))
	}
}

func TestForStatement(t *testing.T) {
	input := "for i in range(3):\n    total += i\n"
	fs, ok := parseOne(t, input).(*ast.ForStatement)
	if !ok {
		t.Fatalf("expected ForStatement, got %T", parseOne(t, input))
	}
	if fs.Target.Value != "i" {
		t.Fatalf("expected target i, got %s", fs.Target.Value)
	}
	if fs.Iter.String() != "range(3)" {
		t.Fatalf("unexpected iter: %s", fs.Iter.String())
	}
}

func TestClassDef(t *testing.T) {
	input := `class Point:
    def __init__(self, x):
        self.x = x

    def get(self):
        return self.x
`
	cd, ok := parseOne(t, input).(*ast.ClassDef)
	if !ok {
		t.Fatalf("expected ClassDef, got %T", parseOne(t, input))
	}
	if cd.Name.Value != "Point" {
		t.Fatalf("expected name Point, got %s", cd.Name.Value)
	}
	if len(cd.Methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(cd.Methods))
	}
	if cd.Methods[0].Name.Value != "__init__" || cd.Methods[1].Name.Value != "get" {
		t.Fatalf("unexpected methods: %s, %s", cd.Methods[0].Name.Value, cd.Methods[1].Name.Value)
	}
}

func TestClassBodyRejectsStatements(t *testing.T) {
	input := "class C:\n    x = 1\n"
	p := New(lexer.New(input))
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected an error for a non-method class body")
	}
}

func TestCollectionLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"xs = [1, 2, 3]\n", "xs = [1, 2, 3]"},
		{"xs = []\n", "xs = []"},
		{"t = (1, 2)\n", "t = (1, 2)"},
		{"t = (1,)\n", "t = (1,)"},
		{"d = {'a': 1, 'b': 2}\n", "d = {'a': 1, 'b': 2}"},
		{"d = {}\n", "d = {}"},
		{"xs = [1, 2,]\n", "xs = [1, 2]"},
		{"d = {'a': 1,}\n", "d = {'a': 1}"},
	}
	for i, tt := range tests {
		stmt := parseOne(t, tt.input)
		if got := stmt.String(); got != tt.want {
			t.Fatalf("tests[%d] %q - expected %s, got %s", i, tt.input, tt.want, got)
		}
	}
}

func TestGroupedExpressionIsNotTuple(t *testing.T) {
	stmt := parseOne(t, "x = (1 + 2)\n").(*ast.AssignStatement)
	if _, isTuple := stmt.Value.(*ast.TupleLiteral); isTuple {
		t.Fatal("a parenthesized expression must not become a tuple")
	}
}

func TestFStringParts(t *testing.T) {
	stmt := parseOne(t, "m = f'n is {n}, half {n / 2:.1f}, brace {{x}}'\n").(*ast.AssignStatement)
	fl, ok := stmt.Value.(*ast.FStringLiteral)
	if !ok {
		t.Fatalf("expected FStringLiteral, got %T", stmt.Value)
	}
	if len(fl.Parts) != 5 {
		t.Fatalf("expected 5 parts, got %d: %s", len(fl.Parts), fl.String())
	}
	if fl.Parts[0].Lit != "n is " {
		t.Fatalf("part 0: %q", fl.Parts[0].Lit)
	}
	if fl.Parts[1].Expr == nil || fl.Parts[1].Expr.String() != "n" {
		t.Fatalf("part 1 should interpolate n")
	}
	if fl.Parts[3].Spec != ".1f" {
		t.Fatalf("part 3 spec: %q", fl.Parts[3].Spec)
	}
	if fl.Parts[4].Lit != ", brace {x}" {
		t.Fatalf("part 4: %q", fl.Parts[4].Lit)
	}
}

func TestFStringErrors(t *testing.T) {
	tests := []string{
		"m = f'oops {'\n",
		"m = f'oops }'\n",
		"m = f'{}'\n",
		"m = f'{1 +}'\n",
	}
	for i, input := range tests {
		p := New(lexer.New(input))
		p.ParseProgram()
		if len(p.Errors()) == 0 {
			t.Fatalf("tests[%d] %q - expected an error", i, input)
		}
	}
}

func TestChainedComparisonDiagnostic(t *testing.T) {
	p := New(lexer.New("x = 1 < y < 10\n"))
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("chained comparison must not be a hard error: %v", p.Errors())
	}

	found := false
	for _, d := range p.Diagnostics() {
		if d.Code == "PV0002" {
			found = true
			if !strings.Contains(d.Message, "chained comparison") {
				t.Fatalf("unexpected message: %s", d.Message)
			}
		}
	}
	if !found {
		t.Fatal("expected a PV0002 diagnostic")
	}

	// only the first comparison survives
	stmt := program.Statements[0].(*ast.AssignStatement)
	if stmt.Value.String() != "(1 < y)" {
		t.Fatalf("expected (1 < y), got %s", stmt.Value.String())
	}
}

func TestParseErrorsCarryPositions(t *testing.T) {
	p := New(lexer.New("x = = 1\n"))
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected an error")
	}
	diags := p.Diagnostics()
	if len(diags) == 0 {
		t.Fatal("expected diagnostics")
	}
	if diags[0].Range.Line != 1 {
		t.Fatalf("expected line 1, got %d", diags[0].Range.Line)
	}
	if diags[0].Code != "PV0001" {
		t.Fatalf("expected code PV0001, got %s", diags[0].Code)
	}
}

func TestMethodCallParsing(t *testing.T) {
	stmt := parseOne(t, "xs.append(len(xs))\n").(*ast.ExpressionStatement)
	call, ok := stmt.Expression.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected CallExpression, got %T", stmt.Expression)
	}
	attr, ok := call.Func.(*ast.AttributeExpression)
	if !ok {
		t.Fatalf("expected AttributeExpression callee, got %T", call.Func)
	}
	if attr.Attr.Value != "append" {
		t.Fatalf("expected append, got %s", attr.Attr.Value)
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected 1 argument, got %d", len(call.Args))
	}
}

func TestMultilineCollection(t *testing.T) {
	input := "xs = [\n    1,\n    2,\n]\n"
	stmt := parseOne(t, input)
	if stmt.String() != "xs = [1, 2]" {
		t.Fatalf("unexpected rendering: %s", stmt.String())
	}
}
