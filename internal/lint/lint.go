// Package lint runs static checks over a parsed program before it is
// visualized: unused bindings, shadowing, returns outside functions, and
// statically undefined names.
package lint

import (
	"pyviz/internal/ast"
	"pyviz/internal/diag"
)

type Options struct {
	CheckShadowing bool
	CheckUndefined bool
}

func DefaultOptions() Options {
	return Options{CheckShadowing: true, CheckUndefined: true}
}

type Linter struct {
	opts Options
}

func New() *Linter {
	return &Linter{opts: DefaultOptions()}
}

func NewWithOptions(opts Options) *Linter {
	return &Linter{opts: opts}
}

func Run(program *ast.Program) []diag.Diagnostic {
	return New().Run(program)
}

func RunWithOptions(program *ast.Program, opts Options) []diag.Diagnostic {
	return NewWithOptions(opts).Run(program)
}

func (l *Linter) Run(program *ast.Program) []diag.Diagnostic {
	if program == nil {
		return nil
	}
	r := &runner{sc: newScope(nil), opts: l.opts}
	r.walkProgram(program)
	r.pop()
	return r.diags
}
