package semantics

import (
	"testing"

	"pyviz/internal/object"
)

func integer(v int64) *object.Integer  { return &object.Integer{Value: v} }
func float(v float64) *object.Float    { return &object.Float{Value: v} }
func str(s string) *object.String      { return &object.String{Value: s} }
func boolean(v bool) *object.Boolean   { return &object.Boolean{Value: v} }
func list(el ...object.Object) *object.List { return &object.List{Elements: el} }

func TestIntegerArithmetic(t *testing.T) {
	tests := []struct {
		op   string
		a, b int64
		want int64
	}{
		{"+", 2, 3, 5},
		{"-", 2, 5, -3},
		{"*", 4, 6, 24},
		{"//", 7, 2, 3},
		{"//", -7, 2, -4},
		{"//", 7, -2, -4},
		{"//", -7, -2, 3},
		{"%", 7, 3, 1},
		{"%", -7, 3, 2},
		{"%", 7, -3, -2},
		{"%", -7, -3, -1},
		{"**", 2, 10, 1024},
		{"**", 5, 0, 1},
		{"**", -3, 3, -27},
	}
	for i, tt := range tests {
		got, err := BinaryOp(tt.op, integer(tt.a), integer(tt.b))
		if err != nil {
			t.Fatalf("tests[%d] %d %s %d: unexpected error %v", i, tt.a, tt.op, tt.b, err)
		}
		res, ok := got.(*object.Integer)
		if !ok {
			t.Fatalf("tests[%d] %d %s %d: expected int, got %T", i, tt.a, tt.op, tt.b, got)
		}
		if res.Value != tt.want {
			t.Fatalf("tests[%d] %d %s %d: expected %d, got %d", i, tt.a, tt.op, tt.b, tt.want, res.Value)
		}
	}
}

func TestDivisionAlwaysFloat(t *testing.T) {
	tests := []struct {
		a, b object.Object
		want float64
	}{
		{integer(7), integer(2), 3.5},
		{integer(6), integer(3), 2.0},
		{float(1.5), integer(3), 0.5},
	}
	for i, tt := range tests {
		got, err := BinaryOp("/", tt.a, tt.b)
		if err != nil {
			t.Fatalf("tests[%d]: unexpected error %v", i, err)
		}
		res, ok := got.(*object.Float)
		if !ok {
			t.Fatalf("tests[%d]: / must produce float, got %T", i, got)
		}
		if res.Value != tt.want {
			t.Fatalf("tests[%d]: expected %v, got %v", i, tt.want, res.Value)
		}
	}
}

func TestFloatPromotion(t *testing.T) {
	got, err := BinaryOp("+", integer(1), float(0.5))
	if err != nil {
		t.Fatal(err)
	}
	res, ok := got.(*object.Float)
	if !ok || res.Value != 1.5 {
		t.Fatalf("expected 1.5, got %s", got.Inspect())
	}

	got, err = BinaryOp("//", float(7), integer(2))
	if err != nil {
		t.Fatal(err)
	}
	res, ok = got.(*object.Float)
	if !ok || res.Value != 3.0 {
		t.Fatalf("expected 3.0, got %s", got.Inspect())
	}
}

func TestBooleansActAsInts(t *testing.T) {
	got, err := BinaryOp("+", boolean(true), integer(2))
	if err != nil {
		t.Fatal(err)
	}
	if res, ok := got.(*object.Integer); !ok || res.Value != 3 {
		t.Fatalf("True + 2: expected 3, got %s", got.Inspect())
	}
	if !Equal(boolean(true), integer(1)) {
		t.Fatal("True == 1 should hold")
	}
	if Equal(boolean(true), integer(2)) {
		t.Fatal("True == 2 should not hold")
	}
}

func TestDivisionByZero(t *testing.T) {
	ops := []string{"/", "//", "%"}
	for i, op := range ops {
		_, err := BinaryOp(op, integer(1), integer(0))
		if err == nil {
			t.Fatalf("tests[%d] 1 %s 0: expected error", i, op)
		}
		if err.Kind != object.ZeroDivisionKind {
			t.Fatalf("tests[%d] 1 %s 0: expected ZeroDivisionError, got %s", i, op, err.Kind)
		}
	}
}

func TestSequenceOperators(t *testing.T) {
	got, err := BinaryOp("+", str("ab"), str("cd"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Inspect() != "'abcd'" {
		t.Fatalf("expected 'abcd', got %s", got.Inspect())
	}

	got, err = BinaryOp("*", str("ha"), integer(3))
	if err != nil {
		t.Fatal(err)
	}
	if got.Inspect() != "'hahaha'" {
		t.Fatalf("expected 'hahaha', got %s", got.Inspect())
	}

	got, err = BinaryOp("*", integer(0), str("ha"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Inspect() != "''" {
		t.Fatalf("expected empty string, got %s", got.Inspect())
	}

	got, err = BinaryOp("+", list(integer(1)), list(integer(2), integer(3)))
	if err != nil {
		t.Fatal(err)
	}
	if got.Inspect() != "[1, 2, 3]" {
		t.Fatalf("expected [1, 2, 3], got %s", got.Inspect())
	}

	got, err = BinaryOp("*", list(integer(1), integer(2)), integer(2))
	if err != nil {
		t.Fatal(err)
	}
	if got.Inspect() != "[1, 2, 1, 2]" {
		t.Fatalf("expected [1, 2, 1, 2], got %s", got.Inspect())
	}
}

func TestMixedTypeOperatorFails(t *testing.T) {
	_, err := BinaryOp("+", str("a"), integer(1))
	if err == nil {
		t.Fatal("expected error for 'a' + 1")
	}
	if err.Kind != object.TypeErrorKind {
		t.Fatalf("expected TypeError, got %s", err.Kind)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		op   string
		a, b object.Object
		want bool
	}{
		{"<", integer(1), integer(2), true},
		{"<=", integer(2), integer(2), true},
		{">", float(2.5), integer(2), true},
		{">=", integer(1), float(1.5), false},
		{"==", integer(10), float(10), true},
		{"!=", str("a"), str("b"), true},
		{"<", str("apple"), str("banana"), true},
		{"in", integer(2), list(integer(1), integer(2)), true},
		{"not in", integer(3), list(integer(1), integer(2)), true},
		{"in", str("ell"), str("hello"), true},
		{"is", &object.None{}, &object.None{}, true},
		{"is not", boolean(true), boolean(false), true},
		{"is", boolean(true), boolean(true), true},
	}
	for i, tt := range tests {
		got, err := Compare(tt.op, tt.a, tt.b)
		if err != nil {
			t.Fatalf("tests[%d] %s: unexpected error %v", i, tt.op, err)
		}
		if got != tt.want {
			t.Fatalf("tests[%d] %s %s %s: expected %v, got %v",
				i, tt.a.Inspect(), tt.op, tt.b.Inspect(), tt.want, got)
		}
	}
}

func TestIsOnListsIsIdentity(t *testing.T) {
	a := list(integer(1))
	b := list(integer(1))
	if same, _ := Compare("is", a, b); same {
		t.Fatal("distinct lists must not be identical")
	}
	if same, _ := Compare("is", a, a); !same {
		t.Fatal("a list is identical to itself")
	}
	if !Equal(a, b) {
		t.Fatal("equal lists should compare equal")
	}
}

func TestOrderingAcrossTypesFails(t *testing.T) {
	_, err := Compare("<", integer(1), str("a"))
	if err == nil {
		t.Fatal("expected error for 1 < 'a'")
	}
	if err.Kind != object.TypeErrorKind {
		t.Fatalf("expected TypeError, got %s", err.Kind)
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		val  object.Object
		want bool
	}{
		{integer(0), false},
		{integer(-1), true},
		{float(0.0), false},
		{str(""), false},
		{str("x"), true},
		{list(), false},
		{list(integer(0)), true},
		{&object.Dict{}, false},
		{&object.None{}, false},
		{boolean(true), true},
	}
	for i, tt := range tests {
		if got := Truthy(tt.val); got != tt.want {
			t.Fatalf("tests[%d] %s: expected %v, got %v", i, tt.val.Inspect(), tt.want, got)
		}
	}
}

func TestUnaryOp(t *testing.T) {
	got, err := UnaryOp("-", integer(5))
	if err != nil {
		t.Fatal(err)
	}
	if got.Inspect() != "-5" {
		t.Fatalf("expected -5, got %s", got.Inspect())
	}

	got, err = UnaryOp("not", list())
	if err != nil {
		t.Fatal(err)
	}
	if b, ok := got.(*object.Boolean); !ok || !b.Value {
		t.Fatalf("not [] should be True, got %s", got.Inspect())
	}

	got, err = UnaryOp("-", boolean(true))
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := got.(*object.Integer); !ok || n.Value != -1 {
		t.Fatalf("-True should be -1, got %s", got.Inspect())
	}

	if _, err = UnaryOp("-", str("x")); err == nil {
		t.Fatal("expected error for -'x'")
	}
}
