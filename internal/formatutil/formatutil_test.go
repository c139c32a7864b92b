package formatutil

import (
	"strings"
	"testing"

	"pyviz/internal/object"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 4, "hel…"},
		{"hello", 1, "…"},
		{"hello", 0, "hello"},
		{"héllo", 4, "hél…"},
		{"", 3, ""},
	}
	for i, tt := range tests {
		if got := Truncate(tt.input, tt.n); got != tt.want {
			t.Fatalf("tests[%d] Truncate(%q, %d) - expected %q, got %q", i, tt.input, tt.n, tt.want, got)
		}
	}
}

func TestCellTextTruncatesLongValues(t *testing.T) {
	elems := []object.Object{}
	for i := 0; i < 50; i++ {
		elems = append(elems, &object.Integer{Value: int64(i)})
	}
	long := &object.List{Elements: elems}
	got := CellText(long)
	if len([]rune(got)) > MaxCellRunes {
		t.Fatalf("cell text exceeds the cap: %d runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected an ellipsis, got %q", got)
	}

	short := &object.Integer{Value: 5}
	if CellText(short) != "5" {
		t.Fatalf("short values pass through, got %q", CellText(short))
	}
}

func TestArgs(t *testing.T) {
	got := Args(
		[]string{"n", "depth"},
		[]object.Object{&object.Integer{Value: 5}, &object.Integer{Value: 0}},
	)
	if got != "n=5, depth=0" {
		t.Fatalf("expected %q, got %q", "n=5, depth=0", got)
	}

	if Args(nil, nil) != "" {
		t.Fatal("no arguments renders empty")
	}

	// extra names without values render bare
	got = Args([]string{"a", "b"}, []object.Object{&object.Integer{Value: 1}})
	if got != "a=1, b" {
		t.Fatalf("expected %q, got %q", "a=1, b", got)
	}
}

func TestScopeLabel(t *testing.T) {
	if got := ScopeLabel("factorial"); got != "Scope: factorial()" {
		t.Fatalf("unexpected label: %q", got)
	}
}
