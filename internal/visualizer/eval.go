package visualizer

import (
	"fmt"
	"strings"

	"pyviz/internal/ast"
	"pyviz/internal/limits"
	"pyviz/internal/object"
	"pyviz/internal/present"
	"pyviz/internal/semantics"
)

var noneValue = &object.None{}

func boolObj(b bool) *object.Boolean { return &object.Boolean{Value: b} }

func isError(o object.Object) bool {
	if o == nil {
		return true
	}
	_, ok := o.(*object.Error)
	return ok
}

func (v *Visualizer) newError(node ast.Node, kind object.ErrorKind, format string, args ...any) *object.Error {
	pos := node.Pos()
	return &object.Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    pos.Line,
		Col:     pos.Col,
	}
}

func (v *Visualizer) wrapFailure(node ast.Node, f *semantics.Failure) *object.Error {
	return v.newError(node, f.Kind, "%s", f.Message)
}

// evalExpression evaluates against the live frame stack. User-function
// calls reached here run to completion synchronously; only statement-level
// call positions get the frame-by-frame treatment.
func (v *Visualizer) evalExpression(node ast.Expression) object.Object {
	switch n := node.(type) {
	case *ast.IntegerLiteral:
		return &object.Integer{Value: n.Value}
	case *ast.FloatLiteral:
		return &object.Float{Value: n.Value}
	case *ast.StringLiteral:
		return &object.String{Value: n.Value}
	case *ast.BooleanLiteral:
		return boolObj(n.Value)
	case *ast.NoneLiteral:
		return noneValue
	case *ast.FStringLiteral:
		return v.evalFString(n)
	case *ast.Identifier:
		return v.evalIdentifier(n)
	case *ast.ListLiteral:
		elems := v.evalExpressions(n.Elements)
		if len(elems) == 1 && isError(elems[0]) {
			return elems[0]
		}
		return &object.List{Elements: elems}
	case *ast.TupleLiteral:
		elems := v.evalExpressions(n.Elements)
		if len(elems) == 1 && isError(elems[0]) {
			return elems[0]
		}
		return &object.Tuple{Elements: elems}
	case *ast.DictLiteral:
		return v.evalDictLiteral(n)
	case *ast.PrefixExpression:
		return v.evalPrefix(n)
	case *ast.InfixExpression:
		return v.evalInfix(n)
	case *ast.CallExpression:
		return v.evalCall(n)
	case *ast.AttributeExpression:
		return v.evalAttribute(n)
	case *ast.IndexExpression:
		return v.evalIndex(n)
	default:
		return v.newError(node, object.UnsupportedNodeKind, "unsupported expression: %s", node.String())
	}
}

func (v *Visualizer) evalExpressions(exprs []ast.Expression) []object.Object {
	out := make([]object.Object, 0, len(exprs))
	for _, e := range exprs {
		val := v.evalExpression(e)
		if isError(val) {
			return []object.Object{val}
		}
		out = append(out, val)
	}
	return out
}

func (v *Visualizer) evalIdentifier(n *ast.Identifier) object.Object {
	if val, _, ok := v.lookup(n.Value); ok {
		return val
	}
	if fn, ok := v.functions[n.Value]; ok {
		return fn
	}
	if cls, ok := v.classes[n.Value]; ok {
		return cls
	}
	if b, ok := v.builtins[n.Value]; ok {
		return b
	}
	return v.newError(n, object.NameErrorKind, "name '%s' is not defined", n.Value)
}

func (v *Visualizer) evalDictLiteral(n *ast.DictLiteral) object.Object {
	d := object.NewDict()
	for i := range n.Keys {
		key := v.evalExpression(n.Keys[i])
		if isError(key) {
			return key
		}
		val := v.evalExpression(n.Values[i])
		if isError(val) {
			return val
		}
		if !d.Set(key, val) {
			return v.newError(n.Keys[i], object.TypeErrorKind, "unhashable type: %s", key.Type())
		}
	}
	return d
}

func (v *Visualizer) evalPrefix(n *ast.PrefixExpression) object.Object {
	operand := v.evalExpression(n.Right)
	if isError(operand) {
		return operand
	}
	res, fail := semantics.UnaryOp(n.Operator, operand)
	if fail != nil {
		return v.wrapFailure(n, fail)
	}
	return res
}

func (v *Visualizer) evalInfix(n *ast.InfixExpression) object.Object {
	// and/or decide before touching the right operand and yield the
	// deciding operand itself, not a coerced boolean.
	if n.Operator == "and" || n.Operator == "or" {
		left := v.evalExpression(n.Left)
		if isError(left) {
			return left
		}
		truthy := semantics.Truthy(left)
		if n.Operator == "and" && !truthy {
			return left
		}
		if n.Operator == "or" && truthy {
			return left
		}
		return v.evalExpression(n.Right)
	}

	left := v.evalExpression(n.Left)
	if isError(left) {
		return left
	}
	right := v.evalExpression(n.Right)
	if isError(right) {
		return right
	}

	switch n.Operator {
	case "==", "!=", "<", "<=", ">", ">=", "is", "is not", "in", "not in":
		res, fail := semantics.Compare(n.Operator, left, right)
		if fail != nil {
			return v.wrapFailure(n, fail)
		}
		return boolObj(res)
	default:
		res, fail := semantics.BinaryOp(n.Operator, left, right)
		if fail != nil {
			return v.wrapFailure(n, fail)
		}
		return res
	}
}

func (v *Visualizer) evalFString(n *ast.FStringLiteral) object.Object {
	var out strings.Builder
	for _, part := range n.Parts {
		if part.Expr == nil {
			out.WriteString(part.Lit)
			continue
		}
		val := v.evalExpression(part.Expr)
		if isError(val) {
			return val
		}
		text, err := formatValue(val, part.Spec)
		if err != nil {
			return v.newError(n, object.ValueErrorKind, "%s", err.Error())
		}
		out.WriteString(text)
	}
	return &object.String{Value: out.String()}
}

// formatValue applies a format spec of the shape the subset supports:
// ".<n>f" for fixed-point floats, "d" for integers, empty for str().
func formatValue(val object.Object, spec string) (string, error) {
	if spec == "" {
		return object.Str(val), nil
	}
	if strings.HasSuffix(spec, "f") {
		prec := 6
		body := strings.TrimSuffix(spec, "f")
		if strings.HasPrefix(body, ".") {
			if _, err := fmt.Sscanf(body, ".%d", &prec); err != nil {
				return "", fmt.Errorf("invalid format spec '%s'", spec)
			}
		} else if body != "" {
			return "", fmt.Errorf("invalid format spec '%s'", spec)
		}
		switch n := val.(type) {
		case *object.Float:
			return fmt.Sprintf("%.*f", prec, n.Value), nil
		case *object.Integer:
			return fmt.Sprintf("%.*f", prec, float64(n.Value)), nil
		}
		return "", fmt.Errorf("unknown format code 'f' for object of type %s", val.Type())
	}
	if spec == "d" {
		if n, ok := val.(*object.Integer); ok {
			return fmt.Sprintf("%d", n.Value), nil
		}
		return "", fmt.Errorf("unknown format code 'd' for object of type %s", val.Type())
	}
	return "", fmt.Errorf("unsupported format spec '%s'", spec)
}

/* -------------------- calls -------------------- */

// directUserCall reports whether an expression is a plain call to a
// user-defined function, the shape the stepping engine animates.
func (v *Visualizer) directUserCall(e ast.Expression) (*object.Function, *ast.CallExpression, bool) {
	call, ok := e.(*ast.CallExpression)
	if !ok {
		return nil, nil, false
	}
	ident, ok := call.Func.(*ast.Identifier)
	if !ok {
		return nil, nil, false
	}
	if _, _, found := v.lookup(ident.Value); found {
		return nil, nil, false
	}
	fn, ok := v.functions[ident.Value]
	if !ok {
		return nil, nil, false
	}
	return fn, call, true
}

func (v *Visualizer) evalCall(n *ast.CallExpression) object.Object {
	if ident, ok := n.Func.(*ast.Identifier); ok {
		// a local binding shadows functions, classes, and builtins alike
		if val, _, found := v.lookup(ident.Value); found {
			return v.newError(n, object.TypeErrorKind, "%s object is not callable", val.Type())
		}
		// a user definition shadows the input builtin, same as print
		if fn, ok := v.functions[ident.Value]; ok {
			args := v.evalExpressions(n.Args)
			if len(args) == 1 && isError(args[0]) {
				return args[0]
			}
			return v.callUserFunctionSync(n, fn, args)
		}
		if cls, ok := v.classes[ident.Value]; ok {
			args := v.evalExpressions(n.Args)
			if len(args) == 1 && isError(args[0]) {
				return args[0]
			}
			return v.instantiate(n, cls, args)
		}
		if ident.Value == "input" {
			return v.evalInput(n)
		}
		if b, ok := v.builtins[ident.Value]; ok {
			args := v.evalExpressions(n.Args)
			if len(args) == 1 && isError(args[0]) {
				return args[0]
			}
			res := b.Fn(args...)
			if e, ok := res.(*object.Error); ok && e.Line == 0 {
				e.Line = n.Pos().Line
				e.Col = n.Pos().Col
			}
			return res
		}
		return v.newError(n, object.NameErrorKind, "name '%s' is not defined", ident.Value)
	}
	if attr, ok := n.Func.(*ast.AttributeExpression); ok {
		return v.evalMethodCall(n, attr)
	}
	return v.newError(n, object.UnsupportedNodeKind, "cannot call %s", n.Func.String())
}

func (v *Visualizer) evalInput(n *ast.CallExpression) object.Object {
	prompt := ""
	if len(n.Args) > 0 {
		p := v.evalExpression(n.Args[0])
		if isError(p) {
			return p
		}
		prompt = object.Str(p)
	}
	line, err := v.readInput(prompt)
	if err != nil {
		return v.newError(n, object.ValueErrorKind, "input unavailable: %s", err.Error())
	}
	v.notify(present.NoticeInfo, fmt.Sprintf("input: %s", line))
	return &object.String{Value: line}
}

// callUserFunctionSync runs a user function to completion through the same
// statement dispatch, muted. Recursion ceilings apply exactly as in the
// stepped path; hitting one substitutes the base-case fallback.
func (v *Visualizer) callUserFunctionSync(site ast.Node, fn *object.Function, args []object.Object) object.Object {
	if len(args) != len(fn.Params) {
		return v.newError(site, object.TypeErrorKind,
			"%s() takes %d arguments but %d were given", fn.Name, len(fn.Params), len(args))
	}
	if !v.tracker.CanRecurse(fn.Name) {
		return v.substituteFallback(fn.Name, args)
	}
	v.tracker.StartCall(fn.Name)
	v.silent++

	frame := newFrame(fn.Name, fn.Body, present.NoScope)
	for i, p := range fn.Params {
		frame.Bind(p.Value, args[i])
	}
	v.frames = append(v.frames, frame)

	base := len(v.frames)
	for len(v.frames) >= base && !v.aborted {
		if v.syncGuard++; v.syncGuard > syncStepCap {
			v.silent--
			return v.newError(site, object.RecursionWarningKind,
				"call to %s() did not finish within the step allowance", fn.Name)
		}
		v.stepOnce()
	}
	v.silent--
	if v.aborted {
		return v.err
	}
	return v.lastReturn
}

func (v *Visualizer) substituteFallback(name string, args []object.Object) object.Object {
	fallback := limits.BaseCaseValue(name, args)
	if !v.approximate {
		v.approximate = true
		v.notify(present.NoticeApproximate,
			fmt.Sprintf("recursion limit reached in %s(); results are approximate beyond depth %d",
				name, limits.MaxSelfRecursion))
	}
	return fallback
}

// instantiate builds an instance and runs the direct self-attribute
// assignments of __init__ with self and the parameters bound. Anything
// else in __init__ is out of the supported subset and skipped.
func (v *Visualizer) instantiate(site ast.Node, cls *object.Class, args []object.Object) object.Object {
	inst := object.NewInstance(cls)
	init, ok := cls.Methods["__init__"]
	if !ok {
		if len(args) != 0 {
			return v.newError(site, object.TypeErrorKind, "%s() takes no arguments", cls.Name)
		}
		return inst
	}
	if len(init.Params) == 0 || init.Params[0].Value != "self" {
		return v.newError(site, object.TypeErrorKind, "%s.__init__ must take self first", cls.Name)
	}
	if len(args) != len(init.Params)-1 {
		return v.newError(site, object.TypeErrorKind,
			"%s() takes %d arguments but %d were given", cls.Name, len(init.Params)-1, len(args))
	}

	frame := newFrame(cls.Name+".__init__", nil, present.NoScope)
	frame.Bind("self", inst)
	for i, p := range init.Params[1:] {
		frame.Bind(p.Value, args[i])
	}
	v.frames = append(v.frames, frame)
	defer func() { v.frames = v.frames[:len(v.frames)-1] }()

	for _, stmt := range init.Body {
		aa, ok := stmt.(*ast.AttrAssignStatement)
		if !ok {
			continue
		}
		target, ok := aa.Object.(*ast.Identifier)
		if !ok || target.Value != "self" {
			continue
		}
		val := v.evalExpression(aa.Value)
		if isError(val) {
			return val
		}
		inst.SetAttr(aa.Attr.Value, val)
	}
	return inst
}

func (v *Visualizer) evalMethodCall(call *ast.CallExpression, attr *ast.AttributeExpression) object.Object {
	recv := v.evalExpression(attr.Object)
	if isError(recv) {
		return recv
	}
	args := v.evalExpressions(call.Args)
	if len(args) == 1 && isError(args[0]) {
		return args[0]
	}

	switch r := recv.(type) {
	case *object.List:
		return v.listMethod(call, r, attr.Attr.Value, args)
	case *object.Dict:
		return v.dictMethod(call, r, attr.Attr.Value, args)
	case *object.String:
		return v.stringMethod(call, r, attr.Attr.Value, args)
	case *object.Instance:
		method, ok := r.Class.Methods[attr.Attr.Value]
		if !ok {
			return v.newError(call, object.AttributeErrorKind,
				"'%s' object has no attribute '%s'", r.Class.Name, attr.Attr.Value)
		}
		return v.callUserFunctionSync(call, method, append([]object.Object{r}, args...))
	default:
		return v.newError(call, object.AttributeErrorKind,
			"%s object has no attribute '%s'", recv.Type(), attr.Attr.Value)
	}
}

func (v *Visualizer) listMethod(site ast.Node, l *object.List, name string, args []object.Object) object.Object {
	switch name {
	case "append":
		if len(args) != 1 {
			return v.newError(site, object.TypeErrorKind, "append() takes exactly one argument (%d given)", len(args))
		}
		l.Elements = append(l.Elements, args[0])
		return noneValue
	case "pop":
		if len(l.Elements) == 0 {
			return v.newError(site, object.IndexErrorKind, "pop from empty list")
		}
		idx := len(l.Elements) - 1
		if len(args) == 1 {
			n, ok := args[0].(*object.Integer)
			if !ok {
				return v.newError(site, object.TypeErrorKind, "pop() argument must be an integer")
			}
			idx = int(n.Value)
			if idx < 0 {
				idx += len(l.Elements)
			}
			if idx < 0 || idx >= len(l.Elements) {
				return v.newError(site, object.IndexErrorKind, "pop index out of range")
			}
		}
		out := l.Elements[idx]
		l.Elements = append(l.Elements[:idx], l.Elements[idx+1:]...)
		return out
	case "remove":
		if len(args) != 1 {
			return v.newError(site, object.TypeErrorKind, "remove() takes exactly one argument (%d given)", len(args))
		}
		for i, el := range l.Elements {
			if semantics.Equal(el, args[0]) {
				l.Elements = append(l.Elements[:i], l.Elements[i+1:]...)
				return noneValue
			}
		}
		return v.newError(site, object.ValueErrorKind, "list.remove(x): x not in list")
	case "insert":
		if len(args) != 2 {
			return v.newError(site, object.TypeErrorKind, "insert() takes exactly two arguments (%d given)", len(args))
		}
		n, ok := args[0].(*object.Integer)
		if !ok {
			return v.newError(site, object.TypeErrorKind, "insert() first argument must be an integer")
		}
		idx := int(n.Value)
		if idx < 0 {
			idx += len(l.Elements)
			if idx < 0 {
				idx = 0
			}
		}
		if idx > len(l.Elements) {
			idx = len(l.Elements)
		}
		l.Elements = append(l.Elements, nil)
		copy(l.Elements[idx+1:], l.Elements[idx:])
		l.Elements[idx] = args[1]
		return noneValue
	default:
		return v.newError(site, object.AttributeErrorKind, "'list' object has no attribute '%s'", name)
	}
}

func (v *Visualizer) dictMethod(site ast.Node, d *object.Dict, name string, args []object.Object) object.Object {
	switch name {
	case "keys":
		out := make([]object.Object, 0, len(d.Pairs))
		for _, pair := range d.Pairs {
			out = append(out, pair.Key)
		}
		return &object.List{Elements: out}
	case "values":
		out := make([]object.Object, 0, len(d.Pairs))
		for _, pair := range d.Pairs {
			out = append(out, pair.Value)
		}
		return &object.List{Elements: out}
	case "get":
		if len(args) == 0 || len(args) > 2 {
			return v.newError(site, object.TypeErrorKind, "get() takes one or two arguments (%d given)", len(args))
		}
		if val, ok := d.Get(args[0]); ok {
			return val
		}
		if len(args) == 2 {
			return args[1]
		}
		return noneValue
	default:
		return v.newError(site, object.AttributeErrorKind, "'dict' object has no attribute '%s'", name)
	}
}

func (v *Visualizer) stringMethod(site ast.Node, s *object.String, name string, args []object.Object) object.Object {
	if len(args) != 0 {
		return v.newError(site, object.TypeErrorKind, "%s() takes no arguments (%d given)", name, len(args))
	}
	switch name {
	case "upper":
		return &object.String{Value: strings.ToUpper(s.Value)}
	case "lower":
		return &object.String{Value: strings.ToLower(s.Value)}
	case "strip":
		return &object.String{Value: strings.TrimSpace(s.Value)}
	default:
		return v.newError(site, object.AttributeErrorKind, "'str' object has no attribute '%s'", name)
	}
}

/* -------------------- attribute and index access -------------------- */

func (v *Visualizer) evalAttribute(n *ast.AttributeExpression) object.Object {
	recv := v.evalExpression(n.Object)
	if isError(recv) {
		return recv
	}
	inst, ok := recv.(*object.Instance)
	if !ok {
		return v.newError(n, object.AttributeErrorKind, "%s object has no attribute '%s'", recv.Type(), n.Attr.Value)
	}
	if val, ok := inst.GetAttr(n.Attr.Value); ok {
		return val
	}
	if _, ok := inst.Class.Methods[n.Attr.Value]; ok {
		return v.newError(n, object.UnsupportedNodeKind,
			"method '%s' must be called, not referenced", n.Attr.Value)
	}
	return v.newError(n, object.AttributeErrorKind,
		"'%s' object has no attribute '%s'", inst.Class.Name, n.Attr.Value)
}

func (v *Visualizer) evalIndex(n *ast.IndexExpression) object.Object {
	recv := v.evalExpression(n.Left)
	if isError(recv) {
		return recv
	}
	idx := v.evalExpression(n.Index)
	if isError(idx) {
		return idx
	}
	switch r := recv.(type) {
	case *object.List:
		return v.indexSequence(n, r.Elements, idx)
	case *object.Tuple:
		return v.indexSequence(n, r.Elements, idx)
	case *object.String:
		i, ok := idx.(*object.Integer)
		if !ok {
			return v.newError(n, object.TypeErrorKind, "string indices must be integers")
		}
		runes := []rune(r.Value)
		at := int(i.Value)
		if at < 0 {
			at += len(runes)
		}
		if at < 0 || at >= len(runes) {
			return v.newError(n, object.IndexErrorKind, "string index out of range")
		}
		return &object.String{Value: string(runes[at])}
	case *object.Dict:
		val, ok := r.Get(idx)
		if !ok {
			return v.newError(n, object.KeyErrorKind, "%s", idx.Inspect())
		}
		return val
	default:
		return v.newError(n, object.TypeErrorKind, "%s object is not subscriptable", recv.Type())
	}
}

func (v *Visualizer) indexSequence(n ast.Node, elems []object.Object, idx object.Object) object.Object {
	i, ok := idx.(*object.Integer)
	if !ok {
		return v.newError(n, object.TypeErrorKind, "sequence indices must be integers")
	}
	at := int(i.Value)
	if at < 0 {
		at += len(elems)
	}
	if at < 0 || at >= len(elems) {
		return v.newError(n, object.IndexErrorKind, "index out of range")
	}
	return elems[at]
}
