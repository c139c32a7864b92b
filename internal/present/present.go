// Package present defines the outbound contract between the stepping
// engine and whatever renders it. The engine calls these methods
// synchronously from Step; implementations must not block except in
// RequestInput.
package present

import "pyviz/internal/object"

// ScopeHandle identifies an open scope box. Handles are engine-issued and
// never reused within a run.
type ScopeHandle int

// NoScope is the zero handle, valid before any scope is open.
const NoScope ScopeHandle = -1

type NoticeKind string

const (
	NoticeInfo        NoticeKind = "info"
	NoticeApproximate NoticeKind = "approximate"
	NoticeError       NoticeKind = "error"
)

type Presenter interface {
	// HighlightLine marks the source line about to execute.
	HighlightLine(line int)
	ClearHighlight()

	// OpenScope announces a new call frame. args is the rendered argument
	// list, level the nesting depth starting at 0 for the module scope.
	OpenScope(name, args string, level int) ScopeHandle
	CloseScope(h ScopeHandle)

	// ShowVariable creates or updates a variable cell inside a scope.
	ShowVariable(h ScopeHandle, name, value string, shape object.Shape)

	// RemoveVariable deletes a single cell. The engine does not use it for
	// scope teardown; CloseScope removes the whole box.
	RemoveVariable(h ScopeHandle, name string)

	// EmitOutput delivers one print line; source is the expression text it
	// came from, for provenance display.
	EmitOutput(text, source string)

	// EmitCondition reports an evaluated branch or loop test.
	EmitCondition(expr string, result bool)

	// EmitLoopProgress reports iteration labels such as
	// "Iteration 3: i = 2" or "Loop finished: false".
	EmitLoopProgress(label string)

	// RequestInput blocks until a line of user input is available.
	RequestInput(prompt string) (string, error)

	Notify(kind NoticeKind, message string)
}
