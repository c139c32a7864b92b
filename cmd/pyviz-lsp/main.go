// pyviz-lsp is a language server for the visualizer's Python subset. It
// publishes parse and lint diagnostics and document symbols, enough for an
// editor to flag a program before it is loaded into the theater.
package main

import (
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"pyviz/internal/diag"
	"pyviz/internal/lexer"
	"pyviz/internal/lint"
	"pyviz/internal/parser"
)

const (
	lsName  = "pyviz-lsp"
	version = "0.1"
)

var handler protocol.Handler

type docStore struct {
	mu   sync.RWMutex
	docs map[string]string
}

var store = &docStore{docs: map[string]string{}}

func (s *docStore) Set(uri, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = text
}

func (s *docStore) Get(uri string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.docs[uri]
	return text, ok
}

func (s *docStore) Delete(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

func main() {
	commonlog.Configure(1, nil)

	handler = protocol.Handler{
		Initialize:                 initialize,
		Initialized:                initialized,
		Shutdown:                   shutdown,
		TextDocumentDidOpen:        textDocumentDidOpen,
		TextDocumentDidChange:      textDocumentDidChange,
		TextDocumentDidSave:        textDocumentDidSave,
		TextDocumentDidClose:       textDocumentDidClose,
		TextDocumentDocumentSymbol: textDocumentDocumentSymbol,
	}

	srv := server.NewServer(&handler, lsName, false)
	srv.RunStdio()
}

func initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	full := protocol.TextDocumentSyncKindFull
	caps := protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: &protocol.True,
			Change:    &full,
			Save:      protocol.SaveOptions{IncludeText: &protocol.False},
		},
		DocumentSymbolProvider: true,
	}
	return protocol.InitializeResult{
		Capabilities: caps,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: ptrString(version),
		},
	}, nil
}

func initialized(*glsp.Context, *protocol.InitializedParams) error { return nil }

func shutdown(*glsp.Context) error { return nil }

func textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	store.Set(uri, params.TextDocument.Text)
	return publishDiagnostics(ctx, uri, params.TextDocument.Text)
}

func textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	if len(params.ContentChanges) == 0 {
		return nil
	}
	text, ok := extractFullText(params.ContentChanges[len(params.ContentChanges)-1])
	if !ok {
		return nil
	}
	store.Set(uri, text)
	return publishDiagnostics(ctx, uri, text)
}

func textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	if text, ok := store.Get(uri); ok {
		return publishDiagnostics(ctx, uri, text)
	}
	return nil
}

func textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	store.Delete(uri)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(uri),
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	text, ok := store.Get(string(params.TextDocument.URI))
	if !ok {
		return []protocol.DocumentSymbol{}, nil
	}
	return documentSymbols(text), nil
}

func publishDiagnostics(ctx *glsp.Context, uri, text string) error {
	if !strings.HasSuffix(strings.ToLower(uri), ".py") {
		ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
			URI:         protocol.DocumentUri(uri),
			Diagnostics: []protocol.Diagnostic{},
		})
		return nil
	}

	lx := lexer.New(text)
	p := parser.New(lx)
	prog := p.ParseProgram()

	diags := append([]diag.Diagnostic{}, p.Diagnostics()...)
	if prog != nil && len(p.Errors()) == 0 {
		diags = append(diags, lint.Run(prog)...)
	}

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(uri),
		Diagnostics: toLspDiagnostics(diags),
	})
	return nil
}

func toLspDiagnostics(diags []diag.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	src := lsName
	for _, d := range diags {
		sev := protocol.DiagnosticSeverityError
		switch d.Severity {
		case diag.SeverityWarning:
			sev = protocol.DiagnosticSeverityWarning
		case diag.SeverityInfo:
			sev = protocol.DiagnosticSeverityInformation
		}
		length := d.Range.Length
		if length < 1 {
			length = 1
		}
		line := uint32(max(d.Range.Line-1, 0))
		col := uint32(max(d.Range.Col-1, 0))
		pd := protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: line, Character: col},
				End:   protocol.Position{Line: line, Character: col + uint32(length)},
			},
			Severity: &sev,
			Message:  d.Message,
			Source:   &src,
		}
		if d.Code != "" {
			pd.Code = &protocol.IntegerOrString{Value: d.Code}
		}
		out = append(out, pd)
	}
	return out
}

func extractFullText(change any) (string, bool) {
	switch typed := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		return typed.Text, true
	case protocol.TextDocumentContentChangeEvent:
		return typed.Text, true
	default:
		return "", false
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func ptrString(s string) *string { return &s }
