package main

import (
	"github.com/kieli-lang/kieli/internal/lexer"
	"github.com/kieli-lang/kieli/internal/parser"
	"github.com/kieli-lang/kieli/internal/prettyprinter"
)

// handleFormatting returns a single edit spanning the whole document
// with the reprinted source.
func (s *LanguageServer) handleFormatting(id interface{}, params DocumentFormattingParams) error {
	docId, err := s.documentId(params.TextDocument.URI)
	if err != nil {
		return s.replyError(id, codeInvalidParams, err.Error())
	}

	// Reparse from the current text; the scratch parse must not leak
	// diagnostics or tokens into the document's collected info.
	document := s.db.Documents.Get(docId)
	savedInfo := document.Info
	tokens, _ := lexer.New(document.Text).Lex()
	arena, module := parser.Parse(s.db, docId, tokens)
	s.db.Documents.Get(docId).Info = savedInfo

	printer := prettyprinter.NewCodePrinter(arena, s.db.StringPool)
	formatted := printer.PrintModule(module)

	wholeDocument := Range{
		Start: Position{Line: 0, Character: 0},
		End:   Position{Line: 999999999, Character: 0},
	}
	return s.reply(id, []TextEdit{{Range: wholeDocument, NewText: formatted}})
}
