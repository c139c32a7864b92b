package lint

import (
	"fmt"

	"pyviz/internal/ast"
	"pyviz/internal/diag"
	"pyviz/internal/token"
)

type symKind int

const (
	kindVar symKind = iota
	kindParam
	kindFunc
	kindClass
)

type sym struct {
	name string
	tok  token.Token
	used bool
	kind symKind
}

type scope struct {
	parent *scope
	syms   map[string]*sym
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, syms: map[string]*sym{}}
}

func (s *scope) lookup(name string) *sym {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.syms[name]; ok {
			return v
		}
	}
	return nil
}

func (s *scope) lookupHere(name string) *sym {
	return s.syms[name]
}

// builtinNames are callable without declaration.
var builtinNames = map[string]bool{
	"print": true, "input": true, "len": true, "range": true,
	"str": true, "int": true, "float": true, "bool": true,
	"abs": true, "min": true, "max": true, "sum": true,
}

type runner struct {
	diags   []diag.Diagnostic
	sc      *scope
	opts    Options
	inFunc  int
	inClass bool
}

func (r *runner) warn(tok token.Token, code, msg string) {
	r.report(tok, code, msg, diag.SeverityWarning)
}

func (r *runner) errorAt(tok token.Token, code, msg string) {
	r.report(tok, code, msg, diag.SeverityError)
}

func (r *runner) report(tok token.Token, code, msg string, sev diag.Severity) {
	r.diags = append(r.diags, diag.Diagnostic{
		Code:     code,
		Message:  msg,
		Severity: sev,
		Range: diag.Range{
			Line:   tok.Line,
			Col:    tok.Col,
			Length: tokLength(tok),
		},
	})
}

func tokLength(tok token.Token) int {
	if tok.Literal == "" {
		return 1
	}
	return len([]rune(tok.Literal))
}

func (r *runner) push() { r.sc = newScope(r.sc) }

func (r *runner) pop() {
	for name, sm := range r.sc.syms {
		if name == "_" || name == "self" {
			continue
		}
		switch sm.kind {
		case kindVar:
			if !sm.used {
				r.warn(sm.tok, "PV1001", fmt.Sprintf("unused variable: %s", name))
			}
		case kindParam:
			if !sm.used {
				r.warn(sm.tok, "PV1002", fmt.Sprintf("unused parameter: %s", name))
			}
		}
	}
	r.sc = r.sc.parent
}

func (r *runner) declare(name string, tok token.Token, k symKind) {
	if name == "" {
		return
	}
	if r.opts.CheckShadowing && r.sc.parent != nil && r.sc.parent.lookup(name) != nil && r.sc.lookupHere(name) == nil {
		r.warn(tok, "PV1004", fmt.Sprintf("'%s' shadows an outer name", name))
	}
	if existing := r.sc.lookupHere(name); existing != nil {
		existing.tok = tok
		existing.kind = k
		return
	}
	r.sc.syms[name] = &sym{name: name, tok: tok, kind: k}
}

func (r *runner) use(name string, tok token.Token) {
	if name == "" {
		return
	}
	if sm := r.sc.lookup(name); sm != nil {
		sm.used = true
		return
	}
	if builtinNames[name] {
		return
	}
	if r.opts.CheckUndefined {
		r.warn(tok, "PV1003", fmt.Sprintf("name '%s' may be undefined", name))
	}
}

func (r *runner) walkProgram(p *ast.Program) {
	// functions and classes are hoisted so call-before-def at module level
	// does not warn; the engine registers them on dispatch anyway
	for _, st := range p.Statements {
		switch s := st.(type) {
		case *ast.FunctionDef:
			r.declare(s.Name.Value, s.Name.Token, kindFunc)
			r.sc.syms[s.Name.Value].used = true
		case *ast.ClassDef:
			r.declare(s.Name.Value, s.Name.Token, kindClass)
			r.sc.syms[s.Name.Value].used = true
		}
	}
	for _, st := range p.Statements {
		r.walkStmt(st)
	}
}

func (r *runner) walkBlock(stmts []ast.Statement) {
	for _, st := range stmts {
		r.walkStmt(st)
	}
}

func (r *runner) walkStmt(st ast.Statement) {
	switch s := st.(type) {
	case *ast.ExpressionStatement:
		r.walkExpr(s.Expression)
	case *ast.AssignStatement:
		if _, ok := token.AugAssignOps[s.Op]; ok {
			r.use(s.Name.Value, s.Name.Token)
		}
		r.walkExpr(s.Value)
		r.declare(s.Name.Value, s.Name.Token, kindVar)
	case *ast.IndexAssignStatement:
		r.walkExpr(s.Left.Left)
		r.walkExpr(s.Left.Index)
		r.walkExpr(s.Value)
	case *ast.AttrAssignStatement:
		r.walkExpr(s.Object)
		r.walkExpr(s.Value)
	case *ast.ReturnStatement:
		if r.inFunc == 0 {
			r.errorAt(s.Token, "PV1006", "'return' outside function")
		}
		if s.Value != nil {
			r.walkExpr(s.Value)
		}
	case *ast.IfStatement:
		r.walkExpr(s.Test)
		r.walkBlock(s.Body)
		if s.Else != nil {
			r.walkBlock(s.Else)
		}
	case *ast.WhileStatement:
		r.walkExpr(s.Test)
		r.walkBlock(s.Body)
	case *ast.ForStatement:
		r.walkExpr(s.Iter)
		r.declare(s.Target.Value, s.Target.Token, kindVar)
		r.sc.lookupHere(s.Target.Value).used = true
		r.walkBlock(s.Body)
	case *ast.FunctionDef:
		r.declare(s.Name.Value, s.Name.Token, kindFunc)
		r.walkFunction(s)
	case *ast.ClassDef:
		r.declare(s.Name.Value, s.Name.Token, kindClass)
		wasInClass := r.inClass
		r.inClass = true
		for _, m := range s.Methods {
			r.walkFunction(m)
		}
		r.inClass = wasInClass
	case *ast.PassStatement:
	}
}

func (r *runner) walkFunction(fd *ast.FunctionDef) {
	r.push()
	r.inFunc++
	for _, p := range fd.Params {
		r.declare(p.Value, p.Token, kindParam)
	}
	r.walkBlock(fd.Body)
	r.inFunc--
	r.pop()
}

func (r *runner) walkExpr(e ast.Expression) {
	switch n := e.(type) {
	case *ast.Identifier:
		r.use(n.Value, n.Token)
	case *ast.FStringLiteral:
		for _, part := range n.Parts {
			if part.Expr != nil {
				r.walkExpr(part.Expr)
			}
		}
	case *ast.ListLiteral:
		for _, el := range n.Elements {
			r.walkExpr(el)
		}
	case *ast.TupleLiteral:
		for _, el := range n.Elements {
			r.walkExpr(el)
		}
	case *ast.DictLiteral:
		for i := range n.Keys {
			r.walkExpr(n.Keys[i])
			r.walkExpr(n.Values[i])
		}
	case *ast.PrefixExpression:
		r.walkExpr(n.Right)
	case *ast.InfixExpression:
		r.walkExpr(n.Left)
		r.walkExpr(n.Right)
	case *ast.CallExpression:
		r.walkExpr(n.Func)
		for _, a := range n.Args {
			r.walkExpr(a)
		}
	case *ast.AttributeExpression:
		r.walkExpr(n.Object)
	case *ast.IndexExpression:
		r.walkExpr(n.Left)
		r.walkExpr(n.Index)
	}
}
