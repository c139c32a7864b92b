package present

import (
	"fmt"

	"pyviz/internal/object"
)

// EventKind tags a recorded presenter call.
type EventKind string

const (
	EvHighlight      EventKind = "highlight"
	EvClearHighlight EventKind = "clear_highlight"
	EvOpenScope      EventKind = "open_scope"
	EvCloseScope     EventKind = "close_scope"
	EvShowVariable   EventKind = "show_variable"
	EvRemoveVariable EventKind = "remove_variable"
	EvOutput         EventKind = "output"
	EvCondition      EventKind = "condition"
	EvLoopProgress   EventKind = "loop_progress"
	EvInput          EventKind = "input"
	EvNotify         EventKind = "notify"
)

type Event struct {
	Kind  EventKind
	Scope ScopeHandle
	Line  int
	Name  string
	Value string
	Shape object.Shape
	Level int
	Bool  bool
}

// Recorder is a Presenter that remembers every call in order. Tests assert
// against its event log instead of driving a real display.
type Recorder struct {
	Events []Event

	// InputLines feeds RequestInput; when exhausted, RequestInput errors.
	InputLines []string

	nextHandle ScopeHandle
	open       map[ScopeHandle]bool
}

func NewRecorder() *Recorder {
	return &Recorder{open: map[ScopeHandle]bool{}}
}

func (r *Recorder) HighlightLine(line int) {
	r.Events = append(r.Events, Event{Kind: EvHighlight, Line: line})
}

func (r *Recorder) ClearHighlight() {
	r.Events = append(r.Events, Event{Kind: EvClearHighlight})
}

func (r *Recorder) OpenScope(name, args string, level int) ScopeHandle {
	h := r.nextHandle
	r.nextHandle++
	r.open[h] = true
	r.Events = append(r.Events, Event{Kind: EvOpenScope, Scope: h, Name: name, Value: args, Level: level})
	return h
}

func (r *Recorder) CloseScope(h ScopeHandle) {
	delete(r.open, h)
	r.Events = append(r.Events, Event{Kind: EvCloseScope, Scope: h})
}

func (r *Recorder) ShowVariable(h ScopeHandle, name, value string, shape object.Shape) {
	r.Events = append(r.Events, Event{Kind: EvShowVariable, Scope: h, Name: name, Value: value, Shape: shape})
}

func (r *Recorder) RemoveVariable(h ScopeHandle, name string) {
	r.Events = append(r.Events, Event{Kind: EvRemoveVariable, Scope: h, Name: name})
}

func (r *Recorder) EmitOutput(text, source string) {
	r.Events = append(r.Events, Event{Kind: EvOutput, Value: text, Name: source})
}

func (r *Recorder) EmitCondition(expr string, result bool) {
	r.Events = append(r.Events, Event{Kind: EvCondition, Name: expr, Bool: result})
}

func (r *Recorder) EmitLoopProgress(label string) {
	r.Events = append(r.Events, Event{Kind: EvLoopProgress, Value: label})
}

func (r *Recorder) RequestInput(prompt string) (string, error) {
	if len(r.InputLines) == 0 {
		return "", fmt.Errorf("no scripted input for prompt %q", prompt)
	}
	line := r.InputLines[0]
	r.InputLines = r.InputLines[1:]
	r.Events = append(r.Events, Event{Kind: EvInput, Name: prompt, Value: line})
	return line, nil
}

func (r *Recorder) Notify(kind NoticeKind, message string) {
	r.Events = append(r.Events, Event{Kind: EvNotify, Name: string(kind), Value: message})
}

/* -------------------- test helpers -------------------- */

func (r *Recorder) Count(kind EventKind) int {
	n := 0
	for _, ev := range r.Events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// Outputs returns the print lines in order.
func (r *Recorder) Outputs() []string {
	out := []string{}
	for _, ev := range r.Events {
		if ev.Kind == EvOutput {
			out = append(out, ev.Value)
		}
	}
	return out
}

// OpenScopeNames returns scope names in open order, the module scope
// included.
func (r *Recorder) OpenScopeNames() []string {
	out := []string{}
	for _, ev := range r.Events {
		if ev.Kind == EvOpenScope {
			out = append(out, ev.Name)
		}
	}
	return out
}

// OpenCount reports how many scopes are open right now.
func (r *Recorder) OpenCount() int { return len(r.open) }

// LastShown returns the most recent value shown for name in scope h.
func (r *Recorder) LastShown(h ScopeHandle, name string) (string, bool) {
	for i := len(r.Events) - 1; i >= 0; i-- {
		ev := r.Events[i]
		if ev.Kind == EvShowVariable && ev.Scope == h && ev.Name == name {
			return ev.Value, true
		}
		if ev.Kind == EvRemoveVariable && ev.Scope == h && ev.Name == name {
			return "", false
		}
	}
	return "", false
}

// Notices returns notify messages for one kind.
func (r *Recorder) Notices(kind NoticeKind) []string {
	out := []string{}
	for _, ev := range r.Events {
		if ev.Kind == EvNotify && ev.Name == string(kind) {
			out = append(out, ev.Value)
		}
	}
	return out
}
