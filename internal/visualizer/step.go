// Package visualizer is the stepping engine: it executes one statement per
// Step call against a stack of call frames and reports every observable
// state change to a Presenter. Control flow never recurses into blocks;
// branches and loop bodies are spliced into the running frame's
// instruction list at the instruction pointer.
package visualizer

import (
	"fmt"
	"strings"

	"pyviz/internal/ast"
	"pyviz/internal/formatutil"
	"pyviz/internal/limits"
	"pyviz/internal/object"
	"pyviz/internal/present"
	"pyviz/internal/semantics"
	"pyviz/internal/token"
)

// syncStepCap bounds synchronous (expression-context) execution so a
// runaway loop inside a call cannot hang the host between two Steps.
const syncStepCap = 200_000

// recursiveCloseGrace keeps a returned recursive scope on screen for this
// many further steps before it closes.
const recursiveCloseGrace = 2

// TraceStep is one recorded dispatch, for headless runs and the repl.
type TraceStep struct {
	Line        int
	Description string
	Locals      map[string]string
	CallStack   string
}

// InputSource feeds input() calls. runtimeio provides implementations.
type InputSource interface {
	ReadLine(prompt string) (string, error)
}

type delayedClose struct {
	handle present.ScopeHandle
	steps  int
}

type Visualizer struct {
	p      present.Presenter
	frames []*CallFrame

	functions map[string]*object.Function
	classes   map[string]*object.Class
	builtins  map[string]*object.Builtin

	tracker *limits.RecursionTracker
	budget  *limits.Budget
	input   InputSource

	trace   []TraceStep
	delayed []delayedClose

	silent     int
	syncGuard  int64
	lastReturn object.Object

	finished    bool
	aborted     bool
	err         *object.Error
	approximate bool
}

type Option func(*Visualizer)

func WithBudget(b *limits.Budget) Option {
	return func(v *Visualizer) { v.budget = b }
}

func WithInput(in InputSource) Option {
	return func(v *Visualizer) { v.input = in }
}

func WithTracker(t *limits.RecursionTracker) Option {
	return func(v *Visualizer) { v.tracker = t }
}

// New builds a Visualizer over a parsed program. The module frame opens
// its scope immediately; nothing executes until Step.
func New(program *ast.Program, p present.Presenter, opts ...Option) *Visualizer {
	v := &Visualizer{
		p:         p,
		functions: map[string]*object.Function{},
		classes:   map[string]*object.Class{},
		tracker:   limits.NewRecursionTracker(),
		budget:    limits.NewBudget(limits.DefaultMaxSteps),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.builtins = v.makeBuiltins()
	scope := p.OpenScope(ModuleFrameName, "", 0)
	v.frames = []*CallFrame{newFrame(ModuleFrameName, program.Statements, scope)}
	return v
}

/* -------------------- lifecycle -------------------- */

// Step performs one dispatch. It reports whether the run can continue;
// once the run has finished or aborted it is a no-op.
func (v *Visualizer) Step() bool {
	if v.finished || v.aborted {
		return false
	}
	if err := v.budget.Charge(1); err != nil {
		v.finished = true
		v.notify(present.NoticeInfo, "run stopped: "+err.Error())
		v.p.ClearHighlight()
		v.flushDelayedCloses()
		return false
	}
	v.tickDelayedCloses()
	v.stepOnce()
	return !v.finished && !v.aborted
}

// Run steps until the program finishes, aborts, or exhausts its budget.
func (v *Visualizer) Run() {
	for v.Step() {
	}
}

func (v *Visualizer) Finished() bool           { return v.finished }
func (v *Visualizer) Aborted() bool            { return v.aborted }
func (v *Visualizer) Err() *object.Error       { return v.err }
func (v *Visualizer) Approximate() bool        { return v.approximate }
func (v *Visualizer) Trace() []TraceStep       { return v.trace }
func (v *Visualizer) StepsUsed() int64         { return v.budget.Used() }
func (v *Visualizer) CurrentFrame() *CallFrame { return v.top() }

// Frames returns the live stack, module frame first. Callers must not
// mutate it.
func (v *Visualizer) Frames() []*CallFrame {
	return append([]*CallFrame{}, v.frames...)
}

// stepOnce resolves any ready pending-return marker and dispatches the
// next instruction of the top frame. Marker application plus the dispatch
// it unblocks count as a single visible unit.
func (v *Visualizer) stepOnce() {
	f := v.top()
	if f.pendingReady {
		f.pendingReady = false
		marker := f.pending
		f.pending = nil
		val := f.pendingValue
		f.pendingValue = nil
		if marker != nil && marker.resume != nil {
			marker.resume(val)
		}
		if v.finished || v.aborted {
			return
		}
		// resume may have pushed a new call or popped this frame
		if v.top() != f || f.pending != nil {
			return
		}
	}

	if f.IP >= len(f.Instructions) {
		v.popFrame(noneValue)
		return
	}

	stmt := f.Instructions[f.IP]
	f.IP++
	v.highlight(stmt.Pos().Line)
	v.recordTrace(stmt)
	v.dispatch(f, stmt)
}

func (v *Visualizer) abort(e *object.Error) {
	if v.aborted || v.finished {
		return
	}
	v.aborted = true
	v.err = e
	v.notify(present.NoticeError, e.At())
}

func (v *Visualizer) finishRun() {
	v.finished = true
	v.flushDelayedCloses()
	v.p.ClearHighlight()
}

/* -------------------- dispatch -------------------- */

func (v *Visualizer) dispatch(f *CallFrame, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.AssignStatement:
		v.execAssign(f, s)
	case *ast.IndexAssignStatement:
		v.execIndexAssign(f, s)
	case *ast.AttrAssignStatement:
		v.execAttrAssign(f, s)
	case *ast.ExpressionStatement:
		v.execExpressionStatement(f, s)
	case *ast.ReturnStatement:
		v.execReturn(f, s)
	case *ast.IfStatement:
		v.execIf(f, s)
	case *ast.WhileStatement:
		v.execWhile(f, s)
	case *ast.ForStatement:
		v.execFor(f, s)
	case *ast.FunctionDef:
		v.functions[s.Name.Value] = &object.Function{
			Name:   s.Name.Value,
			Params: s.Params,
			Body:   s.Body,
			Line:   s.Token.Line,
		}
	case *ast.ClassDef:
		methods := map[string]*object.Function{}
		for _, m := range s.Methods {
			methods[m.Name.Value] = &object.Function{
				Name:   s.Name.Value + "." + m.Name.Value,
				Params: m.Params,
				Body:   m.Body,
				Line:   m.Token.Line,
			}
		}
		v.classes[s.Name.Value] = &object.Class{Name: s.Name.Value, Methods: methods, Line: s.Token.Line}
	case *ast.PassStatement:
	default:
		v.abort(v.newError(stmt, object.UnsupportedNodeKind, "unsupported statement: %s", stmt.TokenLiteral()))
	}
}

func (v *Visualizer) execAssign(f *CallFrame, s *ast.AssignStatement) {
	if s.Op == token.ASSIGN {
		if fn, call, ok := v.directUserCall(s.Value); ok {
			name := s.Name.Value
			v.startSteppableCall(f, fn, call, func(ret object.Object) {
				v.bindAndShow(f, name, ret)
			})
			return
		}
		val := v.evalExpression(s.Value)
		if isError(val) {
			v.abort(val.(*object.Error))
			return
		}
		v.bindAndShow(f, s.Name.Value, val)
		// a method call on the right side can mutate its receiver
		if call, ok := s.Value.(*ast.CallExpression); ok {
			if attr, ok := call.Func.(*ast.AttributeExpression); ok {
				v.reshowReceiver(attr.Object)
			}
		}
		return
	}

	// augmented assignment updates the frame that owns the binding
	base, ok := token.AugAssignOps[s.Op]
	if !ok {
		v.abort(v.newError(s, object.UnsupportedNodeKind, "unsupported assignment operator %s", s.Op))
		return
	}
	cur, owner, found := v.lookup(s.Name.Value)
	if !found {
		v.abort(v.newError(s.Name, object.NameErrorKind, "name '%s' is not defined", s.Name.Value))
		return
	}
	if fn, call, ok := v.directUserCall(s.Value); ok {
		name := s.Name.Value
		v.startSteppableCall(f, fn, call, func(ret object.Object) {
			res, fail := semantics.BinaryOp(string(base), cur, ret)
			if fail != nil {
				v.abort(v.wrapFailure(s, fail))
				return
			}
			owner.Bind(name, res)
			v.showVar(owner, name, res)
		})
		return
	}
	rhs := v.evalExpression(s.Value)
	if isError(rhs) {
		v.abort(rhs.(*object.Error))
		return
	}
	res, fail := semantics.BinaryOp(string(base), cur, rhs)
	if fail != nil {
		v.abort(v.wrapFailure(s, fail))
		return
	}
	owner.Bind(s.Name.Value, res)
	v.showVar(owner, s.Name.Value, res)
}

func (v *Visualizer) execIndexAssign(f *CallFrame, s *ast.IndexAssignStatement) {
	recv := v.evalExpression(s.Left.Left)
	if isError(recv) {
		v.abort(recv.(*object.Error))
		return
	}
	idx := v.evalExpression(s.Left.Index)
	if isError(idx) {
		v.abort(idx.(*object.Error))
		return
	}
	val := v.evalExpression(s.Value)
	if isError(val) {
		v.abort(val.(*object.Error))
		return
	}
	switch r := recv.(type) {
	case *object.List:
		i, ok := idx.(*object.Integer)
		if !ok {
			v.abort(v.newError(s, object.TypeErrorKind, "list indices must be integers"))
			return
		}
		at := int(i.Value)
		if at < 0 {
			at += len(r.Elements)
		}
		if at < 0 || at >= len(r.Elements) {
			v.abort(v.newError(s, object.IndexErrorKind, "list assignment index out of range"))
			return
		}
		r.Elements[at] = val
	case *object.Dict:
		if !r.Set(idx, val) {
			v.abort(v.newError(s, object.TypeErrorKind, "unhashable type: %s", idx.Type()))
			return
		}
	default:
		v.abort(v.newError(s, object.TypeErrorKind, "%s object does not support item assignment", recv.Type()))
		return
	}
	v.reshowReceiver(s.Left.Left)
}

func (v *Visualizer) execAttrAssign(f *CallFrame, s *ast.AttrAssignStatement) {
	recv := v.evalExpression(s.Object)
	if isError(recv) {
		v.abort(recv.(*object.Error))
		return
	}
	inst, ok := recv.(*object.Instance)
	if !ok {
		v.abort(v.newError(s, object.TypeErrorKind, "%s object has no settable attributes", recv.Type()))
		return
	}
	val := v.evalExpression(s.Value)
	if isError(val) {
		v.abort(val.(*object.Error))
		return
	}
	inst.SetAttr(s.Attr.Value, val)
	v.reshowReceiver(s.Object)
}

// reshowReceiver refreshes the variable cell after in-place mutation, when
// the mutated container is a plain named binding.
func (v *Visualizer) reshowReceiver(e ast.Expression) {
	ident, ok := e.(*ast.Identifier)
	if !ok {
		return
	}
	if val, owner, found := v.lookup(ident.Value); found {
		v.showVar(owner, ident.Value, val)
	}
}

func (v *Visualizer) execExpressionStatement(f *CallFrame, s *ast.ExpressionStatement) {
	if call, ok := s.Expression.(*ast.CallExpression); ok {
		if ident, ok := call.Func.(*ast.Identifier); ok && ident.Value == "print" {
			if _, user := v.functions["print"]; !user {
				v.execPrint(s, call)
				return
			}
		}
	}
	if fn, call, ok := v.directUserCall(s.Expression); ok {
		v.startSteppableCall(f, fn, call, func(object.Object) {})
		return
	}
	val := v.evalExpression(s.Expression)
	if isError(val) {
		v.abort(val.(*object.Error))
		return
	}
	// a method call can mutate its receiver; keep the cell current
	if call, ok := s.Expression.(*ast.CallExpression); ok {
		if attr, ok := call.Func.(*ast.AttributeExpression); ok {
			v.reshowReceiver(attr.Object)
		}
	}
}

// execPrint evaluates all arguments atomically and emits one output line
// carrying the source text it came from.
func (v *Visualizer) execPrint(s *ast.ExpressionStatement, call *ast.CallExpression) {
	args := v.evalExpressions(call.Args)
	if len(args) == 1 && isError(args[0]) {
		v.abort(args[0].(*object.Error))
		return
	}
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, object.Str(a))
	}
	v.emitOutput(strings.Join(parts, " "), s.Expression.String())
}

func (v *Visualizer) execReturn(f *CallFrame, s *ast.ReturnStatement) {
	if s.Value == nil {
		v.popFrame(noneValue)
		return
	}
	if fn, call, ok := v.directUserCall(s.Value); ok {
		v.startSteppableCall(f, fn, call, func(ret object.Object) {
			v.popFrame(ret)
		})
		return
	}
	if v.returnWithNestedCalls(f, s) {
		return
	}
	val := v.evalExpression(s.Value)
	if isError(val) {
		v.abort(val.(*object.Error))
		return
	}
	v.popFrame(val)
}

// returnWithNestedCalls animates `return a <op> b` when either operand is a
// direct user call, so recursive shapes like n * factorial(n - 1) open
// nested scopes instead of collapsing into one synchronous evaluation.
func (v *Visualizer) returnWithNestedCalls(f *CallFrame, s *ast.ReturnStatement) bool {
	inf, ok := s.Value.(*ast.InfixExpression)
	if !ok || inf.Operator == "and" || inf.Operator == "or" {
		return false
	}
	leftFn, leftCall, lok := v.directUserCall(inf.Left)
	rightFn, rightCall, rok := v.directUserCall(inf.Right)
	if !lok && !rok {
		return false
	}

	finish := func(lv, rv object.Object) {
		res := v.combine(inf, lv, rv)
		if res == nil {
			return
		}
		v.popFrame(res)
	}

	switch {
	case lok && rok:
		v.startSteppableCall(f, leftFn, leftCall, func(lv object.Object) {
			v.startSteppableCall(f, rightFn, rightCall, func(rv object.Object) {
				finish(lv, rv)
			})
		})
	case lok:
		v.startSteppableCall(f, leftFn, leftCall, func(lv object.Object) {
			rv := v.evalExpression(inf.Right)
			if isError(rv) {
				v.abort(rv.(*object.Error))
				return
			}
			finish(lv, rv)
		})
	default:
		lv := v.evalExpression(inf.Left)
		if isError(lv) {
			v.abort(lv.(*object.Error))
			return true
		}
		v.startSteppableCall(f, rightFn, rightCall, func(rv object.Object) {
			finish(lv, rv)
		})
	}
	return true
}

// combine applies an infix operator to already-evaluated operands. On
// failure it aborts and returns nil.
func (v *Visualizer) combine(n *ast.InfixExpression, left, right object.Object) object.Object {
	switch n.Operator {
	case "==", "!=", "<", "<=", ">", ">=", "is", "is not", "in", "not in":
		res, fail := semantics.Compare(n.Operator, left, right)
		if fail != nil {
			v.abort(v.wrapFailure(n, fail))
			return nil
		}
		return boolObj(res)
	default:
		res, fail := semantics.BinaryOp(n.Operator, left, right)
		if fail != nil {
			v.abort(v.wrapFailure(n, fail))
			return nil
		}
		return res
	}
}

func (v *Visualizer) execIf(f *CallFrame, s *ast.IfStatement) {
	test := v.evalExpression(s.Test)
	if isError(test) {
		v.abort(test.(*object.Error))
		return
	}
	truth := semantics.Truthy(test)
	v.emitCondition(s.Test.String(), truth)
	if truth {
		f.Splice(s.Body)
	} else if s.Else != nil {
		f.Splice(s.Else)
	}
}

func (v *Visualizer) execWhile(f *CallFrame, s *ast.WhileStatement) {
	ls := f.loopState(s)
	test := v.evalExpression(s.Test)
	if isError(test) {
		v.abort(test.(*object.Error))
		return
	}
	truth := semantics.Truthy(test)
	v.emitCondition(s.Test.String(), truth)
	if !truth {
		v.emitLoopProgress("Loop finished: false")
		delete(f.LoopStates, s)
		return
	}
	ls.count++
	v.spliceLoop(f, s.Body, s)
}

func (v *Visualizer) execFor(f *CallFrame, s *ast.ForStatement) {
	ls := f.loopState(s)
	if !ls.primed {
		iter := v.evalExpression(s.Iter)
		if isError(iter) {
			v.abort(iter.(*object.Error))
			return
		}
		items, err := iterate(iter)
		if err != nil {
			v.abort(v.newError(s.Iter, object.TypeErrorKind, "%s", err.Error()))
			return
		}
		ls.items = items
		ls.primed = true
	}

	if ls.idx >= len(ls.items) {
		v.emitLoopProgress("Loop completed")
		delete(f.LoopStates, s)
		return
	}

	item := ls.items[ls.idx]
	ls.idx++
	ls.count++
	// loop variables live in the frame enclosing the loop, so they remain
	// visible after the loop and shadow correctly during it
	f.Bind(s.Target.Value, item)
	v.showVar(f, s.Target.Value, item)
	v.emitLoopProgress(fmt.Sprintf("Iteration %d: %s = %s", ls.count, s.Target.Value, object.Str(item)))
	v.spliceLoop(f, s.Body, s)
}

// spliceLoop inserts body followed by the loop node itself, so the loop is
// re-dispatched after its body runs.
func (v *Visualizer) spliceLoop(f *CallFrame, body []ast.Statement, self ast.Statement) {
	stmts := make([]ast.Statement, 0, len(body)+1)
	stmts = append(stmts, body...)
	stmts = append(stmts, self)
	f.Splice(stmts)
}

func iterate(o object.Object) ([]object.Object, error) {
	switch c := o.(type) {
	case *object.List:
		return append([]object.Object{}, c.Elements...), nil
	case *object.Tuple:
		return append([]object.Object{}, c.Elements...), nil
	case *object.String:
		out := []object.Object{}
		for _, r := range c.Value {
			out = append(out, &object.String{Value: string(r)})
		}
		return out, nil
	case *object.Dict:
		out := []object.Object{}
		for _, pair := range c.Pairs {
			out = append(out, pair.Key)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s object is not iterable", o.Type())
	}
}

/* -------------------- calls and frames -------------------- */

// startSteppableCall evaluates arguments in the caller's scope, parks a
// pending-return marker on the caller, and pushes the callee frame. At the
// recursion ceiling no frame is pushed; the fallback value is parked
// directly.
func (v *Visualizer) startSteppableCall(caller *CallFrame, fn *object.Function, call *ast.CallExpression, resume func(object.Object)) {
	args := v.evalExpressions(call.Args)
	if len(args) == 1 && isError(args[0]) {
		v.abort(args[0].(*object.Error))
		return
	}
	if len(args) != len(fn.Params) {
		v.abort(v.newError(call, object.TypeErrorKind,
			"%s() takes %d arguments but %d were given", fn.Name, len(fn.Params), len(args)))
		return
	}

	caller.pending = &pendingReturn{resume: resume}

	if !v.tracker.CanRecurse(fn.Name) {
		caller.pendingValue = v.substituteFallback(fn.Name, args)
		caller.pendingReady = true
		return
	}

	recursive := v.tracker.IsRecursive(fn.Name)
	v.tracker.StartCall(fn.Name)

	paramNames := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		paramNames = append(paramNames, p.Value)
	}
	argsText := formatutil.Args(paramNames, args)

	scope := v.openScope(fn.Name, argsText, len(v.frames))
	frame := newFrame(fn.Name, fn.Body, scope)
	frame.RecursionLevel = v.tracker.SelfDepth(fn.Name)
	frame.CallArgs = argsText
	frame.IsRecursive = recursive
	for i, p := range fn.Params {
		frame.Bind(p.Value, args[i])
		v.showVar(frame, p.Value, args[i])
	}
	v.frames = append(v.frames, frame)
}

// popFrame ends the top frame with a return value. Popping the module
// frame finishes the run. Recursive scopes close after a short grace so
// the unwind stays readable.
func (v *Visualizer) popFrame(ret object.Object) {
	f := v.top()
	if len(v.frames) == 1 {
		v.finishRun()
		return
	}
	v.frames = v.frames[:len(v.frames)-1]
	v.tracker.EndCall()
	if f.Scope != present.NoScope {
		if f.IsRecursive {
			v.delayed = append(v.delayed, delayedClose{handle: f.Scope, steps: recursiveCloseGrace})
		} else {
			v.closeScope(f.Scope)
		}
	}
	v.lastReturn = ret
	caller := v.top()
	if caller.pending != nil {
		caller.pendingValue = ret
		caller.pendingReady = true
	}
}

func (v *Visualizer) bindAndShow(f *CallFrame, name string, val object.Object) {
	f.Bind(name, val)
	v.showVar(f, name, val)
}

/* -------------------- delayed closes -------------------- */

func (v *Visualizer) tickDelayedCloses() {
	keep := v.delayed[:0]
	for _, d := range v.delayed {
		d.steps--
		if d.steps <= 0 {
			v.closeScope(d.handle)
			continue
		}
		keep = append(keep, d)
	}
	v.delayed = keep
}

func (v *Visualizer) flushDelayedCloses() {
	for _, d := range v.delayed {
		v.closeScope(d.handle)
	}
	v.delayed = nil
}

/* -------------------- presenter seam -------------------- */

// Presenter calls are muted while synchronous (expression-context)
// execution is in flight; output and notifications stay live because they
// are program effects, not animation.

func (v *Visualizer) highlight(line int) {
	if v.silent == 0 {
		v.p.HighlightLine(line)
	}
}

func (v *Visualizer) openScope(name, args string, level int) present.ScopeHandle {
	if v.silent > 0 {
		return present.NoScope
	}
	return v.p.OpenScope(name, args, level)
}

func (v *Visualizer) closeScope(h present.ScopeHandle) {
	if v.silent == 0 && h != present.NoScope {
		v.p.CloseScope(h)
	}
}

func (v *Visualizer) showVar(f *CallFrame, name string, val object.Object) {
	if v.silent > 0 || f.Scope == present.NoScope {
		return
	}
	v.p.ShowVariable(f.Scope, name, formatutil.CellText(val), object.ShapeOf(val))
}

func (v *Visualizer) emitOutput(text, source string) {
	v.p.EmitOutput(text, source)
}

func (v *Visualizer) emitCondition(expr string, result bool) {
	if v.silent == 0 {
		v.p.EmitCondition(expr, result)
	}
}

func (v *Visualizer) emitLoopProgress(label string) {
	if v.silent == 0 {
		v.p.EmitLoopProgress(label)
	}
}

func (v *Visualizer) notify(kind present.NoticeKind, message string) {
	v.p.Notify(kind, message)
}

func (v *Visualizer) readInput(prompt string) (string, error) {
	if v.input != nil {
		return v.input.ReadLine(prompt)
	}
	return v.p.RequestInput(prompt)
}

/* -------------------- trace -------------------- */

func (v *Visualizer) recordTrace(stmt ast.Statement) {
	if v.silent > 0 {
		return
	}
	f := v.top()
	locals := map[string]string{}
	for name, val := range f.Locals {
		locals[name] = val.Inspect()
	}
	stack := make([]string, 0, len(v.frames))
	for _, fr := range v.frames {
		stack = append(stack, fr.Name)
	}
	desc := stmt.String()
	if i := strings.IndexByte(desc, '\n'); i >= 0 {
		desc = desc[:i]
	}
	v.trace = append(v.trace, TraceStep{
		Line:        stmt.Pos().Line,
		Description: desc,
		Locals:      locals,
		CallStack:   strings.Join(stack, " > "),
	})
}
