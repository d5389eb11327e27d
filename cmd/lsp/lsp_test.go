package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/kieli-lang/kieli/internal/db"
)

func newTestServer() (*LanguageServer, *bytes.Buffer) {
	buffer := &bytes.Buffer{}
	return NewLanguageServer(db.New(db.ServerConfiguration()), buffer), buffer
}

// decodeMessages splits Content-Length framed output into the JSON
// payloads.
func decodeMessages(t *testing.T, output string) []map[string]interface{} {
	t.Helper()
	var messages []map[string]interface{}
	rest := output
	for len(rest) > 0 {
		separator := strings.Index(rest, "\r\n\r\n")
		if separator < 0 {
			t.Fatalf("missing header separator in %q", rest)
		}
		body := rest[separator+4:]
		var message map[string]interface{}
		decoder := json.NewDecoder(strings.NewReader(body))
		if err := decoder.Decode(&message); err != nil {
			t.Fatalf("failed to decode message: %v", err)
		}
		messages = append(messages, message)
		rest = body[decoder.InputOffset():]
	}
	return messages
}

func send(t *testing.T, server *LanguageServer, message string) {
	t.Helper()
	if err := server.HandleMessage([]byte(message)); err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
}

func TestInitialize(t *testing.T) {
	server, buffer := newTestServer()
	send(t, server, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)

	messages := decodeMessages(t, buffer.String())
	if len(messages) != 1 {
		t.Fatalf("expected one response, got %d", len(messages))
	}
	result := messages[0]["result"].(map[string]interface{})
	capabilities := result["capabilities"].(map[string]interface{})
	if capabilities["hoverProvider"] != true {
		t.Error("hoverProvider must be advertised")
	}
	if capabilities["definitionProvider"] != true {
		t.Error("definitionProvider must be advertised")
	}
	if capabilities["documentFormattingProvider"] != true {
		t.Error("documentFormattingProvider must be advertised")
	}
	sync := capabilities["textDocumentSync"].(map[string]interface{})
	if sync["openClose"] != true || sync["change"] != float64(syncIncremental) {
		t.Errorf("unexpected sync options: %v", sync)
	}
}

func TestUnknownMethod(t *testing.T) {
	server, buffer := newTestServer()
	send(t, server, `{"jsonrpc":"2.0","id":7,"method":"textDocument/rename","params":{}}`)

	messages := decodeMessages(t, buffer.String())
	if len(messages) != 1 {
		t.Fatalf("expected one response, got %d", len(messages))
	}
	errorObject := messages[0]["error"].(map[string]interface{})
	if errorObject["code"] != float64(codeMethodNotFound) {
		t.Errorf("unexpected error code: %v", errorObject["code"])
	}
}

func TestDidOpenPublishesDiagnostics(t *testing.T) {
	server, buffer := newTestServer()
	send(t, server, `{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{
		"textDocument":{"uri":"file:///test.ki","languageId":"kieli","version":1,
		"text":"fn f() = g()"}}}`)

	messages := decodeMessages(t, buffer.String())
	if len(messages) != 1 {
		t.Fatalf("expected one notification, got %d", len(messages))
	}
	if messages[0]["method"] != "textDocument/publishDiagnostics" {
		t.Fatalf("unexpected method: %v", messages[0]["method"])
	}
	params := messages[0]["params"].(map[string]interface{})
	diagnostics := params["diagnostics"].([]interface{})
	if len(diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(diagnostics))
	}
	diagnostic := diagnostics[0].(map[string]interface{})
	if diagnostic["message"] != "Undeclared identifier: 'g'" {
		t.Errorf("unexpected message: %v", diagnostic["message"])
	}
}

func TestUnsupportedScheme(t *testing.T) {
	server, _ := newTestServer()
	err := server.handleDidOpen(DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: "untitled:Untitled-1", Text: ""},
	})
	if err == nil {
		t.Fatal("non-file URIs must be rejected")
	}
}

func TestDidChangeAppliesIncrementalEdits(t *testing.T) {
	server, buffer := newTestServer()
	send(t, server, `{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{
		"textDocument":{"uri":"file:///test.ki","languageId":"kieli","version":1,
		"text":"fn f(): I32 = x"}}}`)

	// Replace the undeclared `x` with a literal; the range is
	// interpreted against the prior document state.
	send(t, server, `{"jsonrpc":"2.0","method":"textDocument/didChange","params":{
		"textDocument":{"uri":"file:///test.ki","version":2},
		"contentChanges":[{"range":{"start":{"line":0,"character":14},
		"end":{"line":0,"character":15}},"text":"1"}]}}`)

	docId, ok := server.db.Paths["/test.ki"]
	if !ok {
		t.Fatal("document not registered")
	}
	if text := server.db.Documents.Get(docId).Text; text != "fn f(): I32 = 1" {
		t.Fatalf("text after edit = %q", text)
	}

	messages := decodeMessages(t, buffer.String())
	last := messages[len(messages)-1]
	params := last["params"].(map[string]interface{})
	diagnostics := params["diagnostics"].([]interface{})
	if len(diagnostics) != 0 {
		t.Fatalf("expected clean diagnostics after edit, got %v", diagnostics)
	}
}

func TestHoverOverParameter(t *testing.T) {
	server, buffer := newTestServer()
	send(t, server, `{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{
		"textDocument":{"uri":"file:///test.ki","languageId":"kieli","version":1,
		"text":"fn f(x: I32): I32 = x"}}}`)
	buffer.Reset()

	// Hover over the body's `x` at character 20.
	send(t, server, `{"jsonrpc":"2.0","id":2,"method":"textDocument/hover","params":{
		"textDocument":{"uri":"file:///test.ki"},
		"position":{"line":0,"character":20}}}`)

	messages := decodeMessages(t, buffer.String())
	if len(messages) != 1 {
		t.Fatalf("expected one response, got %d", len(messages))
	}
	result, ok := messages[0]["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected a hover result, got %v", messages[0])
	}
	contents := result["contents"].(map[string]interface{})
	value := contents["value"].(string)
	if !strings.Contains(value, "x: I32") {
		t.Errorf("hover should mention the type, got %q", value)
	}
	if !strings.Contains(value, "a local variable") {
		t.Errorf("hover should mention the kind, got %q", value)
	}
}

func TestDefinitionOfParameter(t *testing.T) {
	server, buffer := newTestServer()
	send(t, server, `{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{
		"textDocument":{"uri":"file:///test.ki","languageId":"kieli","version":1,
		"text":"fn f(x: I32): I32 = x"}}}`)
	buffer.Reset()

	send(t, server, `{"jsonrpc":"2.0","id":3,"method":"textDocument/definition","params":{
		"textDocument":{"uri":"file:///test.ki"},
		"position":{"line":0,"character":20}}}`)

	messages := decodeMessages(t, buffer.String())
	result, ok := messages[0]["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected a location, got %v", messages[0])
	}
	locationRange := result["range"].(map[string]interface{})
	start := locationRange["start"].(map[string]interface{})
	// The parameter name `x` is declared at character 5.
	if start["character"] != float64(5) {
		t.Errorf("definition start = %v, want 5", start["character"])
	}
}

func TestFormattingReturnsWholeDocumentEdit(t *testing.T) {
	server, buffer := newTestServer()
	send(t, server, `{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{
		"textDocument":{"uri":"file:///test.ki","languageId":"kieli","version":1,
		"text":"fn   f( x : I32 ) : I32 =  x"}}}`)
	buffer.Reset()

	send(t, server, `{"jsonrpc":"2.0","id":4,"method":"textDocument/formatting","params":{
		"textDocument":{"uri":"file:///test.ki"},
		"options":{"tabSize":4,"insertSpaces":true}}}`)

	messages := decodeMessages(t, buffer.String())
	edits, ok := messages[0]["result"].([]interface{})
	if !ok || len(edits) != 1 {
		t.Fatalf("expected one edit, got %v", messages[0])
	}
	edit := edits[0].(map[string]interface{})
	if edit["newText"] != "fn f(x: I32): I32 = x\n" {
		t.Errorf("formatted text = %q", edit["newText"])
	}
}
