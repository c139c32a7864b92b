// Package complexity estimates a program's time and space complexity
// from its syntax. The estimate is a teaching heuristic: maximum loop
// nesting depth drives the time bound, and growing a list inside a loop
// drives the space bound.
package complexity

import (
	"fmt"

	"pyviz/internal/ast"
)

// Report holds the estimated bounds in big-O notation.
type Report struct {
	Time  string
	Space string
}

func (r Report) String() string {
	return fmt.Sprintf("time %s, space %s", r.Time, r.Space)
}

// Estimate walks the whole program, including function and method bodies.
func Estimate(program *ast.Program) Report {
	a := &analyzer{}
	if program != nil {
		a.walkStatements(program.Statements)
	}
	return Report{Time: timeBound(a.maxDepth), Space: spaceBound(a.linearSpace)}
}

func timeBound(depth int) string {
	switch depth {
	case 0:
		return "O(1)"
	case 1:
		return "O(n)"
	case 2:
		return "O(n^2)"
	default:
		return fmt.Sprintf("O(n^%d)", depth)
	}
}

func spaceBound(linear bool) string {
	if linear {
		return "O(n)"
	}
	return "O(1)"
}

type analyzer struct {
	depth       int
	maxDepth    int
	linearSpace bool
}

func (a *analyzer) enterLoop() {
	a.depth++
	if a.depth > a.maxDepth {
		a.maxDepth = a.depth
	}
}

func (a *analyzer) leaveLoop() { a.depth-- }

func (a *analyzer) walkStatements(stmts []ast.Statement) {
	for _, s := range stmts {
		a.walkStatement(s)
	}
}

func (a *analyzer) walkStatement(s ast.Statement) {
	switch n := s.(type) {
	case *ast.AssignStatement:
		a.walkExpression(n.Value)
	case *ast.IndexAssignStatement:
		a.walkExpression(n.Left)
		a.walkExpression(n.Value)
	case *ast.AttrAssignStatement:
		a.walkExpression(n.Object)
		a.walkExpression(n.Value)
	case *ast.ExpressionStatement:
		a.walkExpression(n.Expression)
	case *ast.ReturnStatement:
		if n.Value != nil {
			a.walkExpression(n.Value)
		}
	case *ast.IfStatement:
		a.walkExpression(n.Test)
		a.walkStatements(n.Body)
		a.walkStatements(n.Else)
	case *ast.WhileStatement:
		a.enterLoop()
		a.walkExpression(n.Test)
		a.walkStatements(n.Body)
		a.leaveLoop()
	case *ast.ForStatement:
		a.enterLoop()
		a.walkExpression(n.Iter)
		a.walkStatements(n.Body)
		a.leaveLoop()
	case *ast.FunctionDef:
		a.walkStatements(n.Body)
	case *ast.ClassDef:
		for _, m := range n.Methods {
			a.walkStatements(m.Body)
		}
	}
}

func (a *analyzer) walkExpression(e ast.Expression) {
	switch n := e.(type) {
	case *ast.CallExpression:
		if attr, ok := n.Func.(*ast.AttributeExpression); ok {
			if attr.Attr.Value == "append" && a.depth > 0 {
				a.linearSpace = true
			}
			a.walkExpression(attr.Object)
		} else {
			a.walkExpression(n.Func)
		}
		for _, arg := range n.Args {
			a.walkExpression(arg)
		}
	case *ast.PrefixExpression:
		a.walkExpression(n.Right)
	case *ast.InfixExpression:
		a.walkExpression(n.Left)
		a.walkExpression(n.Right)
	case *ast.AttributeExpression:
		a.walkExpression(n.Object)
	case *ast.IndexExpression:
		a.walkExpression(n.Left)
		a.walkExpression(n.Index)
	case *ast.ListLiteral:
		for _, el := range n.Elements {
			a.walkExpression(el)
		}
	case *ast.TupleLiteral:
		for _, el := range n.Elements {
			a.walkExpression(el)
		}
	case *ast.DictLiteral:
		for i := range n.Keys {
			a.walkExpression(n.Keys[i])
			a.walkExpression(n.Values[i])
		}
	case *ast.FStringLiteral:
		for _, part := range n.Parts {
			if part.Expr != nil {
				a.walkExpression(part.Expr)
			}
		}
	}
}
