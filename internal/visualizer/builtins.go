package visualizer

import (
	"fmt"
	"strconv"
	"strings"

	"pyviz/internal/object"
	"pyviz/internal/semantics"
)

func berr(kind object.ErrorKind, format string, args ...any) *object.Error {
	return &object.Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// makeBuiltins wires the built-in function table. print is a closure over
// the engine so nested prints still reach the output block.
func (v *Visualizer) makeBuiltins() map[string]*object.Builtin {
	table := map[string]*object.Builtin{}
	reg := func(name string, fn object.BuiltinFunction) {
		table[name] = &object.Builtin{Name: name, Fn: fn}
	}

	reg("print", func(args ...object.Object) object.Object {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, object.Str(a))
		}
		v.emitOutput(strings.Join(parts, " "), "print")
		return noneValue
	})

	reg("len", func(args ...object.Object) object.Object {
		if len(args) != 1 {
			return berr(object.TypeErrorKind, "len() takes exactly one argument (%d given)", len(args))
		}
		switch a := args[0].(type) {
		case *object.String:
			return &object.Integer{Value: int64(len([]rune(a.Value)))}
		case *object.List:
			return &object.Integer{Value: int64(len(a.Elements))}
		case *object.Tuple:
			return &object.Integer{Value: int64(len(a.Elements))}
		case *object.Dict:
			return &object.Integer{Value: int64(len(a.Pairs))}
		default:
			return berr(object.TypeErrorKind, "object of type %s has no len()", a.Type())
		}
	})

	reg("range", func(args ...object.Object) object.Object {
		var start, stop, step int64 = 0, 0, 1
		ints := make([]int64, 0, 3)
		for _, a := range args {
			n, ok := a.(*object.Integer)
			if !ok {
				return berr(object.TypeErrorKind, "range() arguments must be integers")
			}
			ints = append(ints, n.Value)
		}
		switch len(ints) {
		case 1:
			stop = ints[0]
		case 2:
			start, stop = ints[0], ints[1]
		case 3:
			start, stop, step = ints[0], ints[1], ints[2]
			if step == 0 {
				return berr(object.ValueErrorKind, "range() arg 3 must not be zero")
			}
		default:
			return berr(object.TypeErrorKind, "range expected 1 to 3 arguments, got %d", len(ints))
		}
		out := []object.Object{}
		if step > 0 {
			for i := start; i < stop; i += step {
				out = append(out, &object.Integer{Value: i})
			}
		} else {
			for i := start; i > stop; i += step {
				out = append(out, &object.Integer{Value: i})
			}
		}
		return &object.List{Elements: out}
	})

	reg("str", func(args ...object.Object) object.Object {
		if len(args) != 1 {
			return berr(object.TypeErrorKind, "str() takes exactly one argument (%d given)", len(args))
		}
		return &object.String{Value: object.Str(args[0])}
	})

	reg("int", func(args ...object.Object) object.Object {
		if len(args) != 1 {
			return berr(object.TypeErrorKind, "int() takes exactly one argument (%d given)", len(args))
		}
		switch a := args[0].(type) {
		case *object.Integer:
			return a
		case *object.Float:
			return &object.Integer{Value: int64(a.Value)}
		case *object.Boolean:
			if a.Value {
				return &object.Integer{Value: 1}
			}
			return &object.Integer{Value: 0}
		case *object.String:
			n, err := strconv.ParseInt(strings.TrimSpace(a.Value), 10, 64)
			if err != nil {
				return berr(object.ValueErrorKind, "invalid literal for int(): %s", a.Inspect())
			}
			return &object.Integer{Value: n}
		default:
			return berr(object.TypeErrorKind, "int() argument must be a string or a number")
		}
	})

	reg("float", func(args ...object.Object) object.Object {
		if len(args) != 1 {
			return berr(object.TypeErrorKind, "float() takes exactly one argument (%d given)", len(args))
		}
		switch a := args[0].(type) {
		case *object.Float:
			return a
		case *object.Integer:
			return &object.Float{Value: float64(a.Value)}
		case *object.String:
			f, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
			if err != nil {
				return berr(object.ValueErrorKind, "could not convert string to float: %s", a.Inspect())
			}
			return &object.Float{Value: f}
		default:
			return berr(object.TypeErrorKind, "float() argument must be a string or a number")
		}
	})

	reg("bool", func(args ...object.Object) object.Object {
		if len(args) != 1 {
			return berr(object.TypeErrorKind, "bool() takes exactly one argument (%d given)", len(args))
		}
		return boolObj(semantics.Truthy(args[0]))
	})

	reg("abs", func(args ...object.Object) object.Object {
		if len(args) != 1 {
			return berr(object.TypeErrorKind, "abs() takes exactly one argument (%d given)", len(args))
		}
		switch a := args[0].(type) {
		case *object.Integer:
			if a.Value < 0 {
				return &object.Integer{Value: -a.Value}
			}
			return a
		case *object.Float:
			if a.Value < 0 {
				return &object.Float{Value: -a.Value}
			}
			return a
		default:
			return berr(object.TypeErrorKind, "bad operand type for abs(): %s", a.Type())
		}
	})

	reg("min", func(args ...object.Object) object.Object { return v.pickExtreme("min", "<", args) })
	reg("max", func(args ...object.Object) object.Object { return v.pickExtreme("max", ">", args) })

	reg("sum", func(args ...object.Object) object.Object {
		if len(args) != 1 {
			return berr(object.TypeErrorKind, "sum() takes exactly one argument (%d given)", len(args))
		}
		items, err := iterate(args[0])
		if err != nil {
			return berr(object.TypeErrorKind, "%s", err.Error())
		}
		var acc object.Object = &object.Integer{Value: 0}
		for _, item := range items {
			res, fail := semantics.BinaryOp("+", acc, item)
			if fail != nil {
				return berr(fail.Kind, "%s", fail.Message)
			}
			acc = res
		}
		return acc
	})

	return table
}

// pickExtreme implements min/max over either one iterable or two-plus
// direct arguments.
func (v *Visualizer) pickExtreme(name, op string, args []object.Object) object.Object {
	items := args
	if len(args) == 0 {
		return berr(object.TypeErrorKind, "%s expected at least 1 argument, got 0", name)
	}
	if len(args) == 1 {
		var err error
		items, err = iterate(args[0])
		if err != nil {
			return berr(object.TypeErrorKind, "%s", err.Error())
		}
		if len(items) == 0 {
			return berr(object.ValueErrorKind, "%s() arg is an empty sequence", name)
		}
	}
	best := items[0]
	for _, item := range items[1:] {
		wins, fail := semantics.Compare(op, item, best)
		if fail != nil {
			return berr(fail.Kind, "%s", fail.Message)
		}
		if wins {
			best = item
		}
	}
	return best
}
