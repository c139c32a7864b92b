// Package theater is the desktop execution theater: an ebiten window that
// plays a program step by step, drawing source, scopes, variables, and
// output. It is a thin adapter over the Presenter seam; everything it
// knows arrives through presenter calls.
package theater

import (
	"errors"

	"pyviz/internal/object"
	"pyviz/internal/present"
)

var errNoInteractiveInput = errors.New("interactive input is not available in theater mode; script inputs in the scene")

type varCell struct {
	name  string
	value string
	shape object.Shape
}

type scopeBox struct {
	handle present.ScopeHandle
	name   string
	args   string
	level  int
	vars   []varCell
	open   bool
}

type outputLine struct {
	text   string
	source string
}

// Theater implements present.Presenter by accumulating a draw model. The
// engine runs on the game loop goroutine, so no locking is needed.
type Theater struct {
	scopes     []*scopeBox
	outputs    []outputLine
	events     []string // recent conditions, loop labels, notices
	highlight  int      // 1-based; 0 = none
	nextHandle present.ScopeHandle
}

func New() *Theater {
	return &Theater{}
}

func (t *Theater) HighlightLine(line int) { t.highlight = line }
func (t *Theater) ClearHighlight()        { t.highlight = 0 }

func (t *Theater) OpenScope(name, args string, level int) present.ScopeHandle {
	h := t.nextHandle
	t.nextHandle++
	t.scopes = append(t.scopes, &scopeBox{handle: h, name: name, args: args, level: level, open: true})
	return h
}

func (t *Theater) CloseScope(h present.ScopeHandle) {
	for _, box := range t.scopes {
		if box.handle == h {
			box.open = false
			return
		}
	}
}

func (t *Theater) ShowVariable(h present.ScopeHandle, name, value string, shape object.Shape) {
	box := t.scope(h)
	if box == nil {
		return
	}
	for i := range box.vars {
		if box.vars[i].name == name {
			box.vars[i].value = value
			box.vars[i].shape = shape
			return
		}
	}
	box.vars = append(box.vars, varCell{name: name, value: value, shape: shape})
}

func (t *Theater) RemoveVariable(h present.ScopeHandle, name string) {
	box := t.scope(h)
	if box == nil {
		return
	}
	for i := range box.vars {
		if box.vars[i].name == name {
			box.vars = append(box.vars[:i], box.vars[i+1:]...)
			return
		}
	}
}

func (t *Theater) EmitOutput(text, source string) {
	t.outputs = append(t.outputs, outputLine{text: text, source: source})
}

func (t *Theater) EmitCondition(expr string, result bool) {
	verdict := "False"
	if result {
		verdict = "True"
	}
	t.pushEvent(expr + " -> " + verdict)
}

func (t *Theater) EmitLoopProgress(label string) {
	t.pushEvent(label)
}

func (t *Theater) RequestInput(string) (string, error) {
	return "", errNoInteractiveInput
}

func (t *Theater) Notify(kind present.NoticeKind, message string) {
	t.pushEvent("[" + string(kind) + "] " + message)
}

func (t *Theater) scope(h present.ScopeHandle) *scopeBox {
	for _, box := range t.scopes {
		if box.handle == h {
			return box
		}
	}
	return nil
}

const maxEvents = 6

func (t *Theater) pushEvent(s string) {
	t.events = append(t.events, s)
	if len(t.events) > maxEvents {
		t.events = t.events[len(t.events)-maxEvents:]
	}
}

func (t *Theater) openScopes() []*scopeBox {
	out := []*scopeBox{}
	for _, box := range t.scopes {
		if box.open {
			out = append(out, box)
		}
	}
	return out
}
