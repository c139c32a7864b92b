package ast

import (
	"bytes"
	"strings"

	"pyviz/internal/token"
)

type Node interface {
	TokenLiteral() string
	String() string
	Pos() token.Token
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Pos() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Token{Line: 1, Col: 1}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

/* -------------------- Statements -------------------- */

type ExpressionStatement struct {
	Token      token.Token // first token of expression
	Expression Expression
}

func (*ExpressionStatement) statementNode()          {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Pos() token.Token     { return es.Token }
func (es *ExpressionStatement) String() string {
	if es.Expression == nil {
		return ""
	}
	return es.Expression.String()
}

// AssignStatement covers plain and augmented assignment to a name.
// Op is token.ASSIGN for `x = e` or an augmented token like token.PLUSEQ.
type AssignStatement struct {
	Token   token.Token // identifier token
	OpToken token.Token // assignment operator token
	Op      token.Type
	Name    *Identifier
	Value   Expression
}

func (*AssignStatement) statementNode()          {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) Pos() token.Token     { return as.Token }
func (as *AssignStatement) String() string {
	var out bytes.Buffer
	out.WriteString(as.Name.String())
	out.WriteString(" ")
	if as.OpToken.Literal != "" {
		out.WriteString(as.OpToken.Literal)
	} else {
		out.WriteString("=")
	}
	out.WriteString(" ")
	if as.Value != nil {
		out.WriteString(as.Value.String())
	}
	return out.String()
}

type IndexAssignStatement struct {
	Token token.Token // assignment operator
	Left  *IndexExpression
	Value Expression
}

func (*IndexAssignStatement) statementNode()         {}
func (s *IndexAssignStatement) TokenLiteral() string { return s.Token.Literal }
func (s *IndexAssignStatement) Pos() token.Token     { return s.Left.Pos() }
func (s *IndexAssignStatement) String() string {
	return s.Left.String() + " = " + s.Value.String()
}

// AttrAssignStatement is `obj.attr = e`; in practice `self.x = e` inside
// an initializer body.
type AttrAssignStatement struct {
	Token  token.Token // assignment operator
	Object Expression
	Attr   *Identifier
	Value  Expression
}

func (*AttrAssignStatement) statementNode()         {}
func (s *AttrAssignStatement) TokenLiteral() string { return s.Token.Literal }
func (s *AttrAssignStatement) Pos() token.Token     { return s.Object.Pos() }
func (s *AttrAssignStatement) String() string {
	return s.Object.String() + "." + s.Attr.String() + " = " + s.Value.String()
}

type ReturnStatement struct {
	Token token.Token // 'return'
	Value Expression  // may be nil
}

func (*ReturnStatement) statementNode()          {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Pos() token.Token     { return rs.Token }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return"
	}
	return "return " + rs.Value.String()
}

type PassStatement struct {
	Token token.Token // 'pass'
}

func (*PassStatement) statementNode()          {}
func (ps *PassStatement) TokenLiteral() string { return ps.Token.Literal }
func (ps *PassStatement) Pos() token.Token     { return ps.Token }
func (ps *PassStatement) String() string       { return "pass" }

// IfStatement holds flat statement lists so the stepping engine can splice
// the chosen branch directly into a frame's instruction list. `elif` chains
// are parsed as an IfStatement inside Else.
type IfStatement struct {
	Token token.Token // 'if'
	Test  Expression
	Body  []Statement
	Else  []Statement // nil when absent
}

func (*IfStatement) statementNode()          {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) Pos() token.Token     { return is.Token }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if ")
	out.WriteString(is.Test.String())
	out.WriteString(":")
	writeBlock(&out, is.Body)
	if is.Else != nil {
		out.WriteString("\nelse:")
		writeBlock(&out, is.Else)
	}
	return out.String()
}

type WhileStatement struct {
	Token token.Token // 'while'
	Test  Expression
	Body  []Statement
}

func (*WhileStatement) statementNode()          {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) Pos() token.Token     { return ws.Token }
func (ws *WhileStatement) String() string {
	var out bytes.Buffer
	out.WriteString("while ")
	out.WriteString(ws.Test.String())
	out.WriteString(":")
	writeBlock(&out, ws.Body)
	return out.String()
}

type ForStatement struct {
	Token  token.Token // 'for'
	Target *Identifier
	Iter   Expression
	Body   []Statement
}

func (*ForStatement) statementNode()          {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) Pos() token.Token     { return fs.Token }
func (fs *ForStatement) String() string {
	var out bytes.Buffer
	out.WriteString("for ")
	out.WriteString(fs.Target.String())
	out.WriteString(" in ")
	out.WriteString(fs.Iter.String())
	out.WriteString(":")
	writeBlock(&out, fs.Body)
	return out.String()
}

type FunctionDef struct {
	Token  token.Token // 'def'
	Name   *Identifier
	Params []*Identifier
	Body   []Statement
}

func (*FunctionDef) statementNode()          {}
func (fd *FunctionDef) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDef) Pos() token.Token     { return fd.Token }
func (fd *FunctionDef) String() string {
	var out bytes.Buffer
	params := []string{}
	for _, p := range fd.Params {
		params = append(params, p.String())
	}
	out.WriteString("def ")
	out.WriteString(fd.Name.String())
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString("):")
	writeBlock(&out, fd.Body)
	return out.String()
}

type ClassDef struct {
	Token   token.Token // 'class'
	Name    *Identifier
	Methods []*FunctionDef
}

func (*ClassDef) statementNode()          {}
func (cd *ClassDef) TokenLiteral() string { return cd.Token.Literal }
func (cd *ClassDef) Pos() token.Token     { return cd.Token }
func (cd *ClassDef) String() string {
	var out bytes.Buffer
	out.WriteString("class ")
	out.WriteString(cd.Name.String())
	out.WriteString(":")
	for _, m := range cd.Methods {
		out.WriteString("\n")
		out.WriteString(indent(m.String()))
	}
	return out.String()
}

func writeBlock(out *bytes.Buffer, body []Statement) {
	for _, s := range body {
		out.WriteString("\n")
		out.WriteString(indent(s.String()))
	}
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = "    " + ln
	}
	return strings.Join(lines, "\n")
}

/* -------------------- Expressions -------------------- */

type Identifier struct {
	Token token.Token
	Value string
}

func (*Identifier) expressionNode()        {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Pos() token.Token     { return i.Token }
func (i *Identifier) String() string       { return i.Value }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (*IntegerLiteral) expressionNode()         {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) Pos() token.Token     { return il.Token }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (*FloatLiteral) expressionNode()         {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) Pos() token.Token     { return fl.Token }
func (fl *FloatLiteral) String() string       { return fl.Token.Literal }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (*StringLiteral) expressionNode()         {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) Pos() token.Token     { return sl.Token }
func (sl *StringLiteral) String() string       { return "'" + sl.Value + "'" }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (*BooleanLiteral) expressionNode()         {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) Pos() token.Token     { return bl.Token }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }

type NoneLiteral struct {
	Token token.Token
}

func (*NoneLiteral) expressionNode()         {}
func (nl *NoneLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NoneLiteral) Pos() token.Token     { return nl.Token }
func (nl *NoneLiteral) String() string       { return "None" }

// FStringPart is either a literal run (Expr nil) or an interpolated
// expression with an optional format spec after ':'.
type FStringPart struct {
	Lit  string
	Expr Expression
	Spec string
}

type FStringLiteral struct {
	Token token.Token
	Parts []FStringPart
}

func (*FStringLiteral) expressionNode()         {}
func (fl *FStringLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FStringLiteral) Pos() token.Token     { return fl.Token }
func (fl *FStringLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("f'")
	for _, p := range fl.Parts {
		if p.Expr == nil {
			out.WriteString(p.Lit)
			continue
		}
		out.WriteString("{")
		out.WriteString(p.Expr.String())
		if p.Spec != "" {
			out.WriteString(":")
			out.WriteString(p.Spec)
		}
		out.WriteString("}")
	}
	out.WriteString("'")
	return out.String()
}

type ListLiteral struct {
	Token    token.Token // '['
	Elements []Expression
}

func (*ListLiteral) expressionNode()         {}
func (ll *ListLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *ListLiteral) Pos() token.Token     { return ll.Token }
func (ll *ListLiteral) String() string {
	return "[" + joinExprs(ll.Elements) + "]"
}

type TupleLiteral struct {
	Token    token.Token // '('
	Elements []Expression
}

func (*TupleLiteral) expressionNode()         {}
func (tl *TupleLiteral) TokenLiteral() string { return tl.Token.Literal }
func (tl *TupleLiteral) Pos() token.Token     { return tl.Token }
func (tl *TupleLiteral) String() string {
	if len(tl.Elements) == 1 {
		return "(" + tl.Elements[0].String() + ",)"
	}
	return "(" + joinExprs(tl.Elements) + ")"
}

type DictLiteral struct {
	Token  token.Token // '{'
	Keys   []Expression
	Values []Expression
}

func (*DictLiteral) expressionNode()         {}
func (dl *DictLiteral) TokenLiteral() string { return dl.Token.Literal }
func (dl *DictLiteral) Pos() token.Token     { return dl.Token }
func (dl *DictLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("{")
	for i := range dl.Keys {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(dl.Keys[i].String())
		out.WriteString(": ")
		out.WriteString(dl.Values[i].String())
	}
	out.WriteString("}")
	return out.String()
}

type PrefixExpression struct {
	Token    token.Token
	Operator string // "-", "+", "not"
	Right    Expression
}

func (*PrefixExpression) expressionNode()         {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) Pos() token.Token     { return pe.Token }
func (pe *PrefixExpression) String() string {
	if pe.Operator == "not" {
		return "(not " + pe.Right.String() + ")"
	}
	return "(" + pe.Operator + pe.Right.String() + ")"
}

type InfixExpression struct {
	Token    token.Token
	Operator string // "+", "==", "is not", "in", "and", ...
	Left     Expression
	Right    Expression
}

func (*InfixExpression) expressionNode()         {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) Pos() token.Token     { return ie.Token }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

type CallExpression struct {
	Token token.Token // '('
	Func  Expression
	Args  []Expression
}

func (*CallExpression) expressionNode()         {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) Pos() token.Token     { return ce.Func.Pos() }
func (ce *CallExpression) String() string {
	return ce.Func.String() + "(" + joinExprs(ce.Args) + ")"
}

type AttributeExpression struct {
	Token  token.Token // '.'
	Object Expression
	Attr   *Identifier
}

func (*AttributeExpression) expressionNode()         {}
func (ae *AttributeExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AttributeExpression) Pos() token.Token     { return ae.Object.Pos() }
func (ae *AttributeExpression) String() string {
	return ae.Object.String() + "." + ae.Attr.String()
}

type IndexExpression struct {
	Token token.Token // '['
	Left  Expression
	Index Expression
}

func (*IndexExpression) expressionNode()         {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) Pos() token.Token     { return ie.Left.Pos() }
func (ie *IndexExpression) String() string {
	return ie.Left.String() + "[" + ie.Index.String() + "]"
}

func joinExprs(exprs []Expression) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}
