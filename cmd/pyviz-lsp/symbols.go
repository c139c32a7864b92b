package main

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"pyviz/internal/ast"
	"pyviz/internal/lexer"
	"pyviz/internal/parser"
	"pyviz/internal/token"
)

// documentSymbols reports top-level functions and classes, with methods
// nested under their class.
func documentSymbols(text string) []protocol.DocumentSymbol {
	lx := lexer.New(text)
	p := parser.New(lx)
	prog := p.ParseProgram()
	if prog == nil || len(p.Errors()) > 0 {
		return []protocol.DocumentSymbol{}
	}

	out := []protocol.DocumentSymbol{}
	for _, st := range prog.Statements {
		switch s := st.(type) {
		case *ast.FunctionDef:
			out = append(out, symbolFor(s.Name.Value, protocol.SymbolKindFunction, s.Name.Token, nil))
		case *ast.ClassDef:
			children := []protocol.DocumentSymbol{}
			for _, m := range s.Methods {
				children = append(children, symbolFor(m.Name.Value, protocol.SymbolKindMethod, m.Name.Token, nil))
			}
			out = append(out, symbolFor(s.Name.Value, protocol.SymbolKindClass, s.Name.Token, children))
		}
	}
	return out
}

func symbolFor(name string, kind protocol.SymbolKind, tok token.Token, children []protocol.DocumentSymbol) protocol.DocumentSymbol {
	line := uint32(max(tok.Line-1, 0))
	col := uint32(max(tok.Col-1, 0))
	rng := protocol.Range{
		Start: protocol.Position{Line: line, Character: col},
		End:   protocol.Position{Line: line, Character: col + uint32(len([]rune(name)))},
	}
	return protocol.DocumentSymbol{
		Name:           name,
		Kind:           kind,
		Range:          rng,
		SelectionRange: rng,
		Children:       children,
	}
}
