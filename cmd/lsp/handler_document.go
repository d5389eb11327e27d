package main

import (
	"errors"
	"log"
	"strings"

	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/desugar"
	"github.com/kieli-lang/kieli/internal/lexer"
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/parser"
	"github.com/kieli-lang/kieli/internal/pipeline"
	"github.com/kieli-lang/kieli/internal/resolver"
)

var errUnsupportedScheme = errors.New("URI with unsupported scheme")

// uriToPath accepts file:// URIs only; any other scheme is an error.
func uriToPath(uri string) (string, error) {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path, nil
	}
	return "", errUnsupportedScheme
}

func pathToURI(path string) string {
	return "file://" + path
}

func (s *LanguageServer) documentId(uri string) (lsp.DocumentId, error) {
	path, err := uriToPath(uri)
	if err != nil {
		return 0, err
	}
	if docId, ok := s.db.Paths[path]; ok {
		return docId, nil
	}
	return s.db.ReadDocument(path)
}

// analyzeDocument re-runs the full pipeline over one document.
func (s *LanguageServer) analyzeDocument(docId lsp.DocumentId) {
	s.db.ResetAnalysis(docId)
	stages := pipeline.New(
		&lexer.Processor{},
		&parser.Processor{},
		&desugar.Processor{},
		&resolver.Processor{},
	)
	stages.Run(pipeline.NewContext(s.db, docId))
}

func (s *LanguageServer) handleDidOpen(params DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	docId := s.db.ClientOpenDocument(path, params.TextDocument.Text)
	s.analyzeDocument(docId)
	log.Printf("Opened document: %s", path)
	return s.publishDiagnostics(params.TextDocument.URI, docId)
}

// handleDidChange applies the content changes left to right; each
// change's range is interpreted against the document state after the
// prior changes in the same message.
func (s *LanguageServer) handleDidChange(params DidChangeTextDocumentParams) error {
	docId, err := s.documentId(params.TextDocument.URI)
	if err != nil {
		return err
	}
	document := s.db.Documents.Get(docId)
	for _, change := range params.ContentChanges {
		if change.Range != nil {
			document.Text = db.EditText(document.Text, fromProtocolRange(*change.Range), change.Text)
			position := fromProtocolPosition(change.Range.Start)
			document.EditPosition = &position
		} else {
			document.Text = change.Text
			document.EditPosition = nil
		}
	}
	s.analyzeDocument(docId)
	return s.publishDiagnostics(params.TextDocument.URI, docId)
}

func (s *LanguageServer) handleDidClose(params DidCloseTextDocumentParams) error {
	docId, err := s.documentId(params.TextDocument.URI)
	if err != nil {
		return err
	}
	s.db.ClientCloseDocument(docId)
	log.Printf("Closed document: %s", params.TextDocument.URI)
	return nil
}
