package visualizer

import (
	"pyviz/internal/ast"
	"pyviz/internal/object"
	"pyviz/internal/present"
)

// ModuleFrameName is the name of the outermost frame.
const ModuleFrameName = "<module>"

// loopState is per-loop-node bookkeeping inside one frame. For loops hold
// the materialized iterable; both kinds count iterations.
type loopState struct {
	items  []object.Object
	idx    int
	count  int
	primed bool
}

// pendingReturn is the marker left on a caller frame while a steppable
// call runs. resume receives the callee's return value; it may itself
// start another steppable call, in which case the engine re-parks.
type pendingReturn struct {
	resume func(ret object.Object)
}

// CallFrame is one entry of the execution stack. Its instruction list is
// mutable: control flow is implemented by splicing statements in at the
// instruction pointer rather than by recursing into blocks.
type CallFrame struct {
	Name         string
	Instructions []ast.Statement
	IP           int

	Locals map[string]object.Object
	names  []string

	LoopStates map[ast.Statement]*loopState

	RecursionLevel int
	CallArgs       string
	IsRecursive    bool

	Scope present.ScopeHandle

	pending      *pendingReturn
	pendingValue object.Object
	pendingReady bool
}

func newFrame(name string, body []ast.Statement, scope present.ScopeHandle) *CallFrame {
	instrs := make([]ast.Statement, len(body))
	copy(instrs, body)
	return &CallFrame{
		Name:         name,
		Instructions: instrs,
		Locals:       map[string]object.Object{},
		LoopStates:   map[ast.Statement]*loopState{},
		Scope:        scope,
	}
}

// Bind sets a local, tracking first-assignment order for display.
func (f *CallFrame) Bind(name string, v object.Object) {
	if _, ok := f.Locals[name]; !ok {
		f.names = append(f.names, name)
	}
	f.Locals[name] = v
}

// Names returns local names in first-assignment order.
func (f *CallFrame) Names() []string {
	return append([]string{}, f.names...)
}

// Splice inserts statements at the instruction pointer, so they execute
// next, before whatever followed.
func (f *CallFrame) Splice(stmts []ast.Statement) {
	if len(stmts) == 0 {
		return
	}
	rest := make([]ast.Statement, len(f.Instructions[f.IP:]))
	copy(rest, f.Instructions[f.IP:])
	f.Instructions = append(f.Instructions[:f.IP:f.IP], stmts...)
	f.Instructions = append(f.Instructions, rest...)
}

func (f *CallFrame) loopState(node ast.Statement) *loopState {
	ls, ok := f.LoopStates[node]
	if !ok {
		ls = &loopState{}
		f.LoopStates[node] = ls
	}
	return ls
}

// lookup walks the frame stack innermost to outermost. The module frame is
// always index 0 and always searched last.
func (v *Visualizer) lookup(name string) (object.Object, *CallFrame, bool) {
	for i := len(v.frames) - 1; i >= 0; i-- {
		if val, ok := v.frames[i].Locals[name]; ok {
			return val, v.frames[i], true
		}
	}
	return nil, nil, false
}

func (v *Visualizer) top() *CallFrame {
	return v.frames[len(v.frames)-1]
}
