package main

import "github.com/kieli-lang/kieli/internal/lsp"

func fromProtocolPosition(position Position) lsp.Position {
	return lsp.Position{Line: uint32(position.Line), Character: uint32(position.Character)}
}

func toProtocolPosition(position lsp.Position) Position {
	return Position{Line: int(position.Line), Character: int(position.Character)}
}

func fromProtocolRange(r Range) lsp.Range {
	return lsp.Range{Start: fromProtocolPosition(r.Start), Stop: fromProtocolPosition(r.End)}
}

func toProtocolRange(r lsp.Range) Range {
	return Range{Start: toProtocolPosition(r.Start), End: toProtocolPosition(r.Stop)}
}

func (s *LanguageServer) publishDiagnostics(uri string, docId lsp.DocumentId) error {
	info := &s.db.Documents.Get(docId).Info

	diagnostics := make([]Diagnostic, 0, len(info.Diagnostics))
	for _, diagnostic := range info.Diagnostics {
		converted := Diagnostic{
			Range:    toProtocolRange(diagnostic.Range),
			Severity: int(diagnostic.Severity),
			Message:  diagnostic.Message,
			Source:   "kieli",
		}
		if diagnostic.Tag == lsp.TagUnnecessary {
			converted.Tags = []int{1}
		}
		for _, related := range diagnostic.Related {
			converted.RelatedInformation = append(
				converted.RelatedInformation, DiagnosticRelatedInformation{
					Location: Location{
						URI:   pathToURI(s.db.DocumentPath(related.Location.DocId)),
						Range: toProtocolRange(related.Location.Range),
					},
					Message: related.Message,
				})
		}
		diagnostics = append(diagnostics, converted)
	}

	return s.sendNotification("textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}
