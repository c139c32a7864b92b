// Package semantics implements the operator rules of the interpreted
// subset: numeric promotion, Python division and modulo, sequence
// concatenation, comparisons, truthiness, membership. Both the expression
// evaluator and the stepping engine go through these entry points so the
// two call paths cannot drift apart.
package semantics

import (
	"fmt"
	"math"
	"strings"

	"pyviz/internal/object"
)

// Failure is an operator-level error. Callers attach source positions.
type Failure struct {
	Kind    object.ErrorKind
	Message string
}

func (f *Failure) Error() string { return string(f.Kind) + ": " + f.Message }

func failf(kind object.ErrorKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

/* -------------------- binary operators -------------------- */

func BinaryOp(op string, left, right object.Object) (object.Object, *Failure) {
	switch {
	case isNumber(left) && isNumber(right):
		return numericOp(op, left, right)
	case left.Type() == object.STRING_OBJ && right.Type() == object.STRING_OBJ && op == "+":
		return &object.String{Value: left.(*object.String).Value + right.(*object.String).Value}, nil
	case left.Type() == object.STRING_OBJ && right.Type() == object.INTEGER_OBJ && op == "*":
		return repeatString(left.(*object.String).Value, right.(*object.Integer).Value), nil
	case left.Type() == object.INTEGER_OBJ && right.Type() == object.STRING_OBJ && op == "*":
		return repeatString(right.(*object.String).Value, left.(*object.Integer).Value), nil
	case left.Type() == object.LIST_OBJ && right.Type() == object.LIST_OBJ && op == "+":
		l := left.(*object.List)
		r := right.(*object.List)
		elems := make([]object.Object, 0, len(l.Elements)+len(r.Elements))
		elems = append(elems, l.Elements...)
		elems = append(elems, r.Elements...)
		return &object.List{Elements: elems}, nil
	case left.Type() == object.LIST_OBJ && right.Type() == object.INTEGER_OBJ && op == "*":
		return repeatList(left.(*object.List), right.(*object.Integer).Value), nil
	case left.Type() == object.TUPLE_OBJ && right.Type() == object.TUPLE_OBJ && op == "+":
		l := left.(*object.Tuple)
		r := right.(*object.Tuple)
		elems := make([]object.Object, 0, len(l.Elements)+len(r.Elements))
		elems = append(elems, l.Elements...)
		elems = append(elems, r.Elements...)
		return &object.Tuple{Elements: elems}, nil
	default:
		return nil, failf(object.TypeErrorKind,
			"unsupported operand type(s) for %s: %s and %s", op, pyTypeName(left), pyTypeName(right))
	}
}

func numericOp(op string, left, right object.Object) (object.Object, *Failure) {
	li, lIsInt := asInt(left)
	ri, rIsInt := asInt(right)

	if lIsInt && rIsInt && op != "/" {
		switch op {
		case "+":
			return &object.Integer{Value: li + ri}, nil
		case "-":
			return &object.Integer{Value: li - ri}, nil
		case "*":
			return &object.Integer{Value: li * ri}, nil
		case "//":
			if ri == 0 {
				return nil, failf(object.ZeroDivisionKind, "integer division or modulo by zero")
			}
			return &object.Integer{Value: floorDivInt(li, ri)}, nil
		case "%":
			if ri == 0 {
				return nil, failf(object.ZeroDivisionKind, "integer division or modulo by zero")
			}
			return &object.Integer{Value: pyModInt(li, ri)}, nil
		case "**":
			if ri >= 0 {
				return &object.Integer{Value: powInt(li, ri)}, nil
			}
			return &object.Float{Value: math.Pow(float64(li), float64(ri))}, nil
		}
	}

	lf := asFloat(left)
	rf := asFloat(right)
	switch op {
	case "+":
		return &object.Float{Value: lf + rf}, nil
	case "-":
		return &object.Float{Value: lf - rf}, nil
	case "*":
		return &object.Float{Value: lf * rf}, nil
	case "/":
		if rf == 0 {
			if lIsInt && rIsInt {
				return nil, failf(object.ZeroDivisionKind, "division by zero")
			}
			return nil, failf(object.ZeroDivisionKind, "float division by zero")
		}
		return &object.Float{Value: lf / rf}, nil
	case "//":
		if rf == 0 {
			return nil, failf(object.ZeroDivisionKind, "float floor division by zero")
		}
		return &object.Float{Value: math.Floor(lf / rf)}, nil
	case "%":
		if rf == 0 {
			return nil, failf(object.ZeroDivisionKind, "float modulo")
		}
		m := math.Mod(lf, rf)
		if m != 0 && (m < 0) != (rf < 0) {
			m += rf
		}
		return &object.Float{Value: m}, nil
	case "**":
		return &object.Float{Value: math.Pow(lf, rf)}, nil
	}
	return nil, failf(object.TypeErrorKind,
		"unsupported operand type(s) for %s: %s and %s", op, pyTypeName(left), pyTypeName(right))
}

/* -------------------- comparisons -------------------- */

func Compare(op string, left, right object.Object) (bool, *Failure) {
	switch op {
	case "==":
		return Equal(left, right), nil
	case "!=":
		return !Equal(left, right), nil
	case "is":
		return identical(left, right), nil
	case "is not":
		return !identical(left, right), nil
	case "in":
		return contains(right, left)
	case "not in":
		ok, err := contains(right, left)
		return !ok, err
	}

	if isNumber(left) && isNumber(right) {
		lf := asFloat(left)
		rf := asFloat(right)
		switch op {
		case "<":
			return lf < rf, nil
		case "<=":
			return lf <= rf, nil
		case ">":
			return lf > rf, nil
		case ">=":
			return lf >= rf, nil
		}
	}
	if left.Type() == object.STRING_OBJ && right.Type() == object.STRING_OBJ {
		ls := left.(*object.String).Value
		rs := right.(*object.String).Value
		switch op {
		case "<":
			return ls < rs, nil
		case "<=":
			return ls <= rs, nil
		case ">":
			return ls > rs, nil
		case ">=":
			return ls >= rs, nil
		}
	}
	return false, failf(object.TypeErrorKind,
		"'%s' not supported between instances of %s and %s", op, pyTypeName(left), pyTypeName(right))
}

// Equal is deep value equality. Numbers compare across int/float; 1 == True
// holds, matching the host language's bool-as-int behavior.
func Equal(left, right object.Object) bool {
	if isNumber(left) && isNumber(right) {
		return asFloat(left) == asFloat(right)
	}
	switch l := left.(type) {
	case *object.String:
		r, ok := right.(*object.String)
		return ok && l.Value == r.Value
	case *object.None:
		_, ok := right.(*object.None)
		return ok
	case *object.List:
		r, ok := right.(*object.List)
		return ok && equalElements(l.Elements, r.Elements)
	case *object.Tuple:
		r, ok := right.(*object.Tuple)
		return ok && equalElements(l.Elements, r.Elements)
	case *object.Dict:
		r, ok := right.(*object.Dict)
		if !ok || len(l.Pairs) != len(r.Pairs) {
			return false
		}
		for _, pair := range l.Pairs {
			rv, ok := r.Get(pair.Key)
			if !ok || !Equal(pair.Value, rv) {
				return false
			}
		}
		return true
	default:
		return left == right
	}
}

func equalElements(l, r []object.Object) bool {
	if len(l) != len(r) {
		return false
	}
	for i := range l {
		if !Equal(l[i], r[i]) {
			return false
		}
	}
	return true
}

// identical implements `is`. None and booleans compare by value (they are
// singletons in the host language); everything else is pointer identity.
func identical(left, right object.Object) bool {
	if _, ok := left.(*object.None); ok {
		_, ok2 := right.(*object.None)
		return ok2
	}
	if lb, ok := left.(*object.Boolean); ok {
		rb, ok2 := right.(*object.Boolean)
		return ok2 && lb.Value == rb.Value
	}
	return left == right
}

func contains(container, item object.Object) (bool, *Failure) {
	switch c := container.(type) {
	case *object.List:
		for _, el := range c.Elements {
			if Equal(el, item) {
				return true, nil
			}
		}
		return false, nil
	case *object.Tuple:
		for _, el := range c.Elements {
			if Equal(el, item) {
				return true, nil
			}
		}
		return false, nil
	case *object.String:
		s, ok := item.(*object.String)
		if !ok {
			return false, failf(object.TypeErrorKind,
				"'in <string>' requires string as left operand, not %s", pyTypeName(item))
		}
		return strings.Contains(c.Value, s.Value), nil
	case *object.Dict:
		_, ok := c.Get(item)
		return ok, nil
	default:
		return false, failf(object.TypeErrorKind, "argument of type %s is not iterable", pyTypeName(container))
	}
}

/* -------------------- unary, truthiness -------------------- */

func UnaryOp(op string, operand object.Object) (object.Object, *Failure) {
	switch op {
	case "not":
		return &object.Boolean{Value: !Truthy(operand)}, nil
	case "-":
		switch v := operand.(type) {
		case *object.Integer:
			return &object.Integer{Value: -v.Value}, nil
		case *object.Float:
			return &object.Float{Value: -v.Value}, nil
		case *object.Boolean:
			if v.Value {
				return &object.Integer{Value: -1}, nil
			}
			return &object.Integer{Value: 0}, nil
		}
	case "+":
		switch v := operand.(type) {
		case *object.Integer, *object.Float:
			return v, nil
		case *object.Boolean:
			if v.Value {
				return &object.Integer{Value: 1}, nil
			}
			return &object.Integer{Value: 0}, nil
		}
	}
	return nil, failf(object.TypeErrorKind, "bad operand type for unary %s: %s", op, pyTypeName(operand))
}

func Truthy(o object.Object) bool {
	switch v := o.(type) {
	case *object.Boolean:
		return v.Value
	case *object.None:
		return false
	case *object.Integer:
		return v.Value != 0
	case *object.Float:
		return v.Value != 0
	case *object.String:
		return v.Value != ""
	case *object.List:
		return len(v.Elements) > 0
	case *object.Tuple:
		return len(v.Elements) > 0
	case *object.Dict:
		return len(v.Pairs) > 0
	default:
		return true
	}
}

/* -------------------- helpers -------------------- */

func isNumber(o object.Object) bool {
	switch o.Type() {
	case object.INTEGER_OBJ, object.FLOAT_OBJ, object.BOOLEAN_OBJ:
		return true
	}
	return false
}

func asInt(o object.Object) (int64, bool) {
	switch v := o.(type) {
	case *object.Integer:
		return v.Value, true
	case *object.Boolean:
		if v.Value {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func asFloat(o object.Object) float64 {
	switch v := o.(type) {
	case *object.Integer:
		return float64(v.Value)
	case *object.Float:
		return v.Value
	case *object.Boolean:
		if v.Value {
			return 1
		}
		return 0
	}
	return math.NaN()
}

func repeatString(s string, n int64) *object.String {
	if n <= 0 {
		return &object.String{Value: ""}
	}
	return &object.String{Value: strings.Repeat(s, int(n))}
}

func repeatList(l *object.List, n int64) *object.List {
	if n <= 0 {
		return &object.List{Elements: []object.Object{}}
	}
	elems := make([]object.Object, 0, int(n)*len(l.Elements))
	for i := int64(0); i < n; i++ {
		elems = append(elems, l.Elements...)
	}
	return &object.List{Elements: elems}
}

func floorDivInt(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func pyModInt(a, b int64) int64 {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func powInt(base, exp int64) int64 {
	var result int64 = 1
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

// pyTypeName renders a runtime type the way an error message would name it.
func pyTypeName(o object.Object) string {
	switch o.(type) {
	case *object.Integer:
		return "'int'"
	case *object.Float:
		return "'float'"
	case *object.String:
		return "'str'"
	case *object.Boolean:
		return "'bool'"
	case *object.None:
		return "'NoneType'"
	case *object.List:
		return "'list'"
	case *object.Tuple:
		return "'tuple'"
	case *object.Dict:
		return "'dict'"
	case *object.Instance:
		return "'" + o.(*object.Instance).Class.Name + "'"
	case *object.Function, *object.Builtin:
		return "'function'"
	case *object.Class:
		return "'type'"
	default:
		return string(o.Type())
	}
}
