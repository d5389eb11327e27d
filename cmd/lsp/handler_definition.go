package main

import "github.com/kieli-lang/kieli/internal/db"

// handleDefinition returns the defining name's location for the
// symbol at the cursor, or null.
func (s *LanguageServer) handleDefinition(id interface{}, params DefinitionParams) error {
	docId, err := s.documentId(params.TextDocument.URI)
	if err != nil {
		return s.replyError(id, codeInvalidParams, err.Error())
	}

	document := s.db.Documents.Get(docId)
	reference, ok := db.ReferenceAt(&document.Info, fromProtocolPosition(params.Position))
	if !ok {
		return s.reply(id, nil)
	}

	symbol := document.Arena.Symbols.Get(reference.Symbol)
	return s.reply(id, Location{
		URI:   params.TextDocument.URI,
		Range: toProtocolRange(symbol.Name.Range),
	})
}
