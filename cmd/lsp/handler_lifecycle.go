package main

func (s *LanguageServer) handleInitialize(id interface{}) error {
	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: TextDocumentSyncOptions{
				OpenClose: true,
				Change:    syncIncremental,
			},
			HoverProvider:              true,
			DefinitionProvider:         true,
			DocumentFormattingProvider: true,
		},
	}
	return s.reply(id, result)
}
