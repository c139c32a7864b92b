package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"pyviz/internal/ast"
)

type Type string

const (
	INTEGER_OBJ  Type = "INTEGER"
	FLOAT_OBJ    Type = "FLOAT"
	STRING_OBJ   Type = "STRING"
	BOOLEAN_OBJ  Type = "BOOLEAN"
	NONE_OBJ     Type = "NONE"
	LIST_OBJ     Type = "LIST"
	TUPLE_OBJ    Type = "TUPLE"
	DICT_OBJ     Type = "DICT"
	FUNCTION_OBJ Type = "FUNCTION"
	CLASS_OBJ    Type = "CLASS"
	INSTANCE_OBJ Type = "INSTANCE"
	BUILTIN_OBJ  Type = "BUILTIN"
	ERROR_OBJ    Type = "ERROR"
)

type Object interface {
	Type() Type
	Inspect() string
}

type Integer struct{ Value int64 }

func (*Integer) Type() Type        { return INTEGER_OBJ }
func (i *Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }

type Float struct{ Value float64 }

func (*Float) Type() Type        { return FLOAT_OBJ }
func (f *Float) Inspect() string { return FormatPyFloat(f.Value) }

// FormatPyFloat renders a float the way Python's repr does: a whole-number
// float keeps a trailing ".0".
func FormatPyFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "inf") && !strings.Contains(s, "NaN") {
		s += ".0"
	}
	return s
}

type String struct{ Value string }

func (*String) Type() Type        { return STRING_OBJ }
func (s *String) Inspect() string { return "'" + s.Value + "'" }

type Boolean struct{ Value bool }

func (*Boolean) Type() Type { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "True"
	}
	return "False"
}

type None struct{}

func (*None) Type() Type      { return NONE_OBJ }
func (*None) Inspect() string { return "None" }

type List struct {
	Elements []Object
}

func (*List) Type() Type { return LIST_OBJ }
func (l *List) Inspect() string {
	var out bytes.Buffer
	out.WriteString("[")
	for i, el := range l.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(el.Inspect())
	}
	out.WriteString("]")
	return out.String()
}

type Tuple struct {
	Elements []Object
}

func (*Tuple) Type() Type { return TUPLE_OBJ }
func (t *Tuple) Inspect() string {
	var out bytes.Buffer
	out.WriteString("(")
	for i, el := range t.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(el.Inspect())
	}
	if len(t.Elements) == 1 {
		out.WriteString(",")
	}
	out.WriteString(")")
	return out.String()
}

type DictPair struct {
	Key   Object
	Value Object
}

// Dict preserves insertion order, matching Python dict semantics. Lookup
// goes through an index keyed by the hash-key string.
type Dict struct {
	Pairs []DictPair
	index map[string]int
}

func NewDict() *Dict {
	return &Dict{index: map[string]int{}}
}

func (*Dict) Type() Type { return DICT_OBJ }
func (d *Dict) Inspect() string {
	var out bytes.Buffer
	out.WriteString("{")
	for i, pair := range d.Pairs {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(pair.Key.Inspect())
		out.WriteString(": ")
		out.WriteString(pair.Value.Inspect())
	}
	out.WriteString("}")
	return out.String()
}

func (d *Dict) Get(key Object) (Object, bool) {
	hk, ok := HashKeyOf(key)
	if !ok {
		return nil, false
	}
	if d.index == nil {
		return nil, false
	}
	i, ok := d.index[HashKeyString(hk)]
	if !ok {
		return nil, false
	}
	return d.Pairs[i].Value, true
}

func (d *Dict) Set(key, value Object) bool {
	hk, ok := HashKeyOf(key)
	if !ok {
		return false
	}
	if d.index == nil {
		d.index = map[string]int{}
	}
	ks := HashKeyString(hk)
	if i, ok := d.index[ks]; ok {
		d.Pairs[i].Value = value
		return true
	}
	d.index[ks] = len(d.Pairs)
	d.Pairs = append(d.Pairs, DictPair{Key: key, Value: value})
	return true
}

// StringKeys returns the string-typed keys, in insertion order.
func (d *Dict) StringKeys() []string {
	out := []string{}
	for _, pair := range d.Pairs {
		if s, ok := pair.Key.(*String); ok {
			out = append(out, s.Value)
		}
	}
	return out
}

type Function struct {
	Name   string
	Params []*ast.Identifier
	Body   []ast.Statement
	Line   int
}

func (*Function) Type() Type { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	params := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		params = append(params, p.Value)
	}
	return "<function " + f.Name + "(" + strings.Join(params, ", ") + ")>"
}

type Class struct {
	Name    string
	Methods map[string]*Function
	Line    int
}

func (*Class) Type() Type        { return CLASS_OBJ }
func (c *Class) Inspect() string { return "<class " + c.Name + ">" }

// Instance is a user-object with ordered attributes so the attribute panel
// shows fields in assignment order.
type Instance struct {
	Class *Class
	attrs map[string]Object
	order []string
}

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, attrs: map[string]Object{}}
}

func (*Instance) Type() Type { return INSTANCE_OBJ }
func (in *Instance) Inspect() string {
	var out bytes.Buffer
	out.WriteString(in.Class.Name)
	out.WriteString("(")
	for i, name := range in.order {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(name)
		out.WriteString("=")
		out.WriteString(in.attrs[name].Inspect())
	}
	out.WriteString(")")
	return out.String()
}

func (in *Instance) GetAttr(name string) (Object, bool) {
	v, ok := in.attrs[name]
	return v, ok
}

func (in *Instance) SetAttr(name string, value Object) {
	if _, ok := in.attrs[name]; !ok {
		in.order = append(in.order, name)
	}
	in.attrs[name] = value
}

func (in *Instance) AttrNames() []string {
	return append([]string{}, in.order...)
}

type BuiltinFunction func(args ...Object) Object

type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (*Builtin) Type() Type        { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string { return "<built-in function " + b.Name + ">" }

// ErrorKind mirrors the Python exception family the failure corresponds to.
type ErrorKind string

const (
	NameErrorKind        ErrorKind = "NameError"
	TypeErrorKind        ErrorKind = "TypeError"
	AttributeErrorKind   ErrorKind = "AttributeError"
	IndexErrorKind       ErrorKind = "IndexError"
	KeyErrorKind         ErrorKind = "KeyError"
	ValueErrorKind       ErrorKind = "ValueError"
	ZeroDivisionKind     ErrorKind = "ZeroDivisionError"
	UnsupportedNodeKind  ErrorKind = "UnsupportedConstruct"
	RecursionWarningKind ErrorKind = "RecursionWarning"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Line    int
	Col     int
}

func (*Error) Type() Type { return ERROR_OBJ }
func (e *Error) Inspect() string {
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) At() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind, e.Message)
}

// Str renders an object the way print() would: strings bare, everything
// else as its repr.
func Str(o Object) string {
	if s, ok := o.(*String); ok {
		return s.Value
	}
	return o.Inspect()
}
