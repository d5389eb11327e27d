package main

import (
	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/hir"
)

// handleHover renders a markdown description of the symbol under the
// cursor, or null when nothing is there.
func (s *LanguageServer) handleHover(id interface{}, params HoverParams) error {
	docId, err := s.documentId(params.TextDocument.URI)
	if err != nil {
		return s.replyError(id, codeInvalidParams, err.Error())
	}

	document := s.db.Documents.Get(docId)
	reference, ok := db.ReferenceAt(&document.Info, fromProtocolPosition(params.Position))
	if !ok {
		return s.reply(id, nil)
	}

	arena := &document.Arena
	symbol := arena.Symbols.Get(reference.Symbol)
	name := s.db.StringPool.Get(symbol.Name.Id)

	signature := name
	if typeId, ok := db.SymbolType(arena, reference.Symbol); ok {
		signature = name + ": " + hir.TypeToString(&arena.Hir, s.db.StringPool, typeId)
	}
	markdown := "```kieli\n" + signature + "\n```\n" + db.DescribeSymbolKind(symbol.Variant)

	hoverRange := toProtocolRange(reference.Reference.Range)
	return s.reply(id, Hover{
		Contents: MarkupContent{Kind: "markdown", Value: markdown},
		Range:    &hoverRange,
	})
}
